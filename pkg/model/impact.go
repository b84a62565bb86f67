package model

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// ClosureSize counts the nodes reachable from i over dependency edges,
// excluding i itself. Cycles are handled by the walker's visited set.
func (g *Graph) ClosureSize(i int) int {
	if !g.Valid(i) || len(g.Nodes[i].Dependencies) == 0 {
		return 0
	}

	count := 0
	walker := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			if n.ID() != int64(i) {
				count++
			}
		},
	}
	walker.Walk(g.deps, g.deps.Node(int64(i)), nil)
	return count
}

// computeImpact assigns ImpactStrength = closure / max closure. All
// strengths are zero when no node has a dependency.
func (g *Graph) computeImpact() {
	sizes := make([]int, len(g.Nodes))
	maxSize := 0
	for i := range g.Nodes {
		sizes[i] = g.ClosureSize(i)
		if sizes[i] > maxSize {
			maxSize = sizes[i]
		}
	}

	for i := range g.Nodes {
		if maxSize == 0 {
			g.Nodes[i].ImpactStrength = 0
			continue
		}
		g.Nodes[i].ImpactStrength = float64(sizes[i]) / float64(maxSize)
	}
}
