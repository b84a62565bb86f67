package cycles

import (
	"slices"
	"strings"

	"github.com/ritzau/spyglass/pkg/model"
)

// PluginCycle is a group of plugins that (transitively) depend on each other
type PluginCycle struct {
	IDs []string `json:"ids"` // sorted
}

// FindPluginCycles reports every dependency cycle in the graph. IDs within
// a cycle are sorted, and cycles are ordered by their first ID.
func FindPluginCycles(g *model.Graph) []PluginCycle {
	comps := newSCCFinder(g.DependencyGraph()).components()

	cycles := make([]PluginCycle, 0, len(comps))
	for _, comp := range comps {
		indices := make([]int, len(comp))
		for i, id := range comp {
			indices[i] = int(id)
		}
		ids := g.IDs(indices)
		slices.Sort(ids)
		cycles = append(cycles, PluginCycle{IDs: ids})
	}

	slices.SortFunc(cycles, func(a, b PluginCycle) int {
		return strings.Compare(a.IDs[0], b.IDs[0])
	})
	return cycles
}

// Membership returns the set of plugin IDs that take part in any cycle
func Membership(cycles []PluginCycle) map[string]bool {
	in := make(map[string]bool)
	for _, c := range cycles {
		for _, id := range c.IDs {
			in[id] = true
		}
	}
	return in
}
