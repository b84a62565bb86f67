package model

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/logging"
)

// Build creates a fresh graph from plugin records. Records rejected by the
// filter produce no node, and dependency IDs that do not resolve to a
// surviving node are dropped. The records slice is not modified.
func Build(records []PluginRecord, opts BuildOptions) *Graph {
	g := NewGraph()
	categories := make(map[string]int)

	if opts.Root {
		idx, _ := g.addNode(Node{
			ID:            RootID,
			Category:      RootID,
			CategoryIndex: -1,
			IsEnabled:     true,
			IsRoot:        true,
		})
		g.RootIndex = idx
	}

	// recordOf maps arena index -> record index for edge resolution
	recordOf := make(map[int]int)
	duplicates := 0
	for ri := range records {
		rec := records[ri]
		if rec.ID == "" || !opts.Filter.Accepts(&rec) {
			continue
		}

		category := rec.Category
		if category == "" {
			category = DefaultCategory
		}
		catIdx, seen := categories[category]
		if !seen {
			catIdx = len(g.Categories)
			categories[category] = catIdx
			g.Categories = append(g.Categories, category)
		}

		idx, ok := g.addNode(Node{
			ID:            rec.ID,
			Category:      category,
			CategoryIndex: catIdx,
			IsEngine:      rec.IsEngine,
			IsEnabled:     rec.IsEnabled,
			Record:        &rec,
		})
		if !ok {
			// First record wins; the root name is reserved too
			duplicates++
			continue
		}
		recordOf[idx] = ri
	}

	dropped := 0
	for i := range g.Nodes {
		ri, ok := recordOf[i]
		if !ok {
			continue
		}
		for _, depID := range records[ri].DependencyIDs {
			dep, ok := g.index[depID]
			if !ok || (opts.Root && dep == g.RootIndex) {
				dropped++
				continue
			}
			g.addDependency(i, dep)
		}

		if opts.Root && len(g.Nodes[i].Dependencies) == 0 {
			g.addDependency(i, g.RootIndex)
		}
	}

	g.updateMasses()
	g.computeImpact()
	g.seedPositions(opts.SeedRadius)

	logging.Debug("built plugin graph",
		"records", len(records),
		"nodes", len(g.Nodes),
		"categories", len(g.Categories),
		"droppedEdges", dropped,
		"duplicates", duplicates)

	return g
}

// seedPositions places non-root nodes evenly on a circle; the root sits
// at the origin. Distinct starting points keep repulsion well defined.
func (g *Graph) seedPositions(radius float64) {
	if radius <= 0 {
		radius = DefaultSeedRadius
	}

	count := len(g.Nodes)
	if g.HasRoot() {
		count--
	}
	if count <= 0 {
		return
	}

	step := 2 * math.Pi / float64(count)
	k := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Velocity = r2.Vec{}
		n.Fixed = false
		if n.IsRoot {
			n.Position = r2.Vec{}
			continue
		}
		angle := step * float64(k)
		n.Position = r2.Vec{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
		k++
	}
}
