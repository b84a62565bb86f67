package reach

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/ritzau/spyglass/pkg/model"
)

// Highlight is the reachability result for one focused plugin. The focus
// itself is never part of Downstream or Upstream, even when it sits on a
// cycle.
type Highlight struct {
	Focus      string
	Downstream Set // everything the focus depends on, transitively
	Upstream   Set // everything that depends on the focus, transitively
}

// Empty reports whether there is no focus
func (h Highlight) Empty() bool {
	return h.Focus == ""
}

// Related reports whether id is the focus or in either closure
func (h Highlight) Related(id string) bool {
	return id == h.Focus || h.Downstream.Has(id) || h.Upstream.Has(id)
}

// Analyzer computes transitive closures over a model graph
type Analyzer struct {
	g *model.Graph
}

// NewAnalyzer creates an analyzer for g
func NewAnalyzer(g *model.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// Downstream returns the transitive dependencies of id
func (a *Analyzer) Downstream(id string) Set {
	return a.walk(a.g.DependencyGraph(), id)
}

// Upstream returns the transitive dependents of id
func (a *Analyzer) Upstream(id string) Set {
	return a.walk(reversed{a.g.DependencyGraph()}, id)
}

// Highlight computes both closures for focus. An empty or unknown focus
// yields empty sets.
func (a *Analyzer) Highlight(focus string) Highlight {
	if _, ok := a.g.Index(focus); !ok {
		return Highlight{Downstream: Set{}, Upstream: Set{}}
	}
	return Highlight{
		Focus:      focus,
		Downstream: a.Downstream(focus),
		Upstream:   a.Upstream(focus),
	}
}

func (a *Analyzer) walk(g traverse.Graph, id string) Set {
	out := make(Set)
	start, ok := a.g.Index(id)
	if !ok {
		return out
	}

	walker := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			if i := int(n.ID()); i != start {
				out.add(a.g.Nodes[i].ID)
			}
		},
	}
	walker.Walk(g, a.g.DependencyGraph().Node(int64(start)), nil)
	return out
}

// reversed walks dependency edges from dependency to dependent
type reversed struct {
	g graph.Directed
}

func (r reversed) From(id int64) graph.Nodes {
	return r.g.To(id)
}

func (r reversed) Edge(uid, vid int64) graph.Edge {
	e := r.g.Edge(vid, uid)
	if e == nil {
		return nil
	}
	return e.ReversedEdge()
}
