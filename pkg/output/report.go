package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/ritzau/spyglass/pkg/cycles"
	"github.com/ritzau/spyglass/pkg/model"
)

// ImpactRow is one line of the impact ranking
type ImpactRow struct {
	ID          string
	Category    string
	ClosureSize int
	Strength    float64
	Dependents  int
}

// RankByImpact orders plugins by transitive closure size, largest first.
// Ties are broken by ID. The synthetic root is left out.
func RankByImpact(g *model.Graph) []ImpactRow {
	rows := make([]ImpactRow, 0, g.Len())
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsRoot {
			continue
		}
		rows = append(rows, ImpactRow{
			ID:          n.ID,
			Category:    n.Category,
			ClosureSize: g.ClosureSize(i),
			Strength:    n.ImpactStrength,
			Dependents:  len(n.Dependents),
		})
	}
	slices.SortFunc(rows, func(a, b ImpactRow) int {
		return cmp.Or(cmp.Compare(b.ClosureSize, a.ClosureSize), strings.Compare(a.ID, b.ID))
	})
	return rows
}

// PrintImpactReport prints the impact ranking and any dependency cycles.
// limit caps the ranking length; zero prints every plugin.
func PrintImpactReport(w io.Writer, source string, g *model.Graph, found []cycles.PluginCycle, limit int) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintln(w, "Spyglass - Plugin Impact Report")
	bold.Fprintln(w, "===============================")
	fmt.Fprintf(w, "Manifest: %s\n", source)
	fmt.Fprintf(w, "Plugins: %d, dependencies: %d, categories: %d\n", g.Len(), len(g.Edges()), len(g.Categories))
	fmt.Fprintln(w)

	rows := RankByImpact(g)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	bold.Fprintln(w, "HIGHEST IMPACT:")
	for _, r := range rows {
		c := green
		switch {
		case r.Strength >= 0.75:
			c = red
		case r.Strength >= 0.4:
			c = yellow
		}
		c.Fprintf(w, "  %-32s", r.ID)
		cyan.Fprintf(w, " %-12s", r.Category)
		fmt.Fprintf(w, " reaches %3d  used by %3d  %s\n", r.ClosureSize, r.Dependents, bar(r.Strength))
	}
	fmt.Fprintln(w)

	if len(found) == 0 {
		green.Fprintln(w, "✓ No dependency cycles")
		return
	}

	red.Fprintf(w, "DEPENDENCY CYCLES: %d\n", len(found))
	for _, c := range found {
		yellow.Fprintf(w, "  %s\n", strings.Join(c.IDs, " <-> "))
	}
}

// bar renders a strength in [0,1] as a ten-cell bar
func bar(strength float64) string {
	filled := int(strength*10 + 0.5)
	filled = max(0, min(10, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 10-filled) + "]"
}
