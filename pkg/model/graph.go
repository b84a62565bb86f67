package model

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// Node is one plugin (or the synthetic root) in the dependency graph.
// Cross references are indices into Graph.Nodes and are only valid for the
// build that produced them.
type Node struct {
	ID            string
	Category      string
	CategoryIndex int
	IsEngine      bool
	IsEnabled     bool
	IsRoot        bool

	Position r2.Vec
	Velocity r2.Vec
	Mass     float64 // 1 + number of links

	Links        []int // undirected, simulation only
	Dependencies []int // this -> dependency
	Dependents   []int // dependent -> this

	ImpactStrength float64 // normalized transitive dependency count in [0,1]

	// Fixed excludes the node from position updates (dragged or pinned in place)
	Fixed bool

	// Record is nil for the synthetic root
	Record *PluginRecord
}

// Movable reports whether the integrator may move the node
func (n *Node) Movable() bool {
	return !n.Fixed && !n.IsRoot
}

// Edge is a directed dependency edge between two node IDs
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a dense node arena with index based adjacency. It is rebuilt as
// a whole whenever the plugin set or the filters change.
type Graph struct {
	Nodes      []Node
	Categories []string // category names in first-seen order
	RootIndex  int      // -1 when there is no root

	index map[string]int
	deps  *simple.DirectedGraph // gonum node ID == arena index
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make([]Node, 0),
		RootIndex: -1,
		index:     make(map[string]int),
		deps:      simple.NewDirectedGraph(),
	}
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// Index returns the arena index of the node with the given ID
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Node returns the node with the given ID, or nil
func (g *Graph) Node(id string) *Node {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.Nodes[i]
}

// Valid reports whether i is an index into the arena
func (g *Graph) Valid(i int) bool {
	return i >= 0 && i < len(g.Nodes)
}

// HasRoot reports whether the graph carries a synthetic root
func (g *Graph) HasRoot() bool {
	return g.Valid(g.RootIndex)
}

// HasLink reports whether nodes i and j are adjacent for the simulation
func (g *Graph) HasLink(i, j int) bool {
	return g.deps.HasEdgeBetween(int64(i), int64(j))
}

// DependsOn reports whether node i directly depends on node j
func (g *Graph) DependsOn(i, j int) bool {
	return g.deps.HasEdgeFromTo(int64(i), int64(j))
}

// DependencyGraph exposes the directed dependency edges. Node IDs in the
// returned graph are arena indices.
func (g *Graph) DependencyGraph() graph.Directed {
	return g.deps
}

// Edges returns all directed dependency edges in arena order
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0)
	for i := range g.Nodes {
		for _, dep := range g.Nodes[i].Dependencies {
			edges = append(edges, Edge{From: g.Nodes[i].ID, To: g.Nodes[dep].ID})
		}
	}
	return edges
}

// IDs maps arena indices to node IDs
func (g *Graph) IDs(indices []int) []string {
	ids := make([]string, 0, len(indices))
	for _, i := range indices {
		if g.Valid(i) {
			ids = append(ids, g.Nodes[i].ID)
		}
	}
	return ids
}

// addNode appends a node and registers it in the index. Returns false if
// the ID is already taken.
func (g *Graph) addNode(n Node) (int, bool) {
	if _, exists := g.index[n.ID]; exists {
		return -1, false
	}
	i := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = i
	g.deps.AddNode(simple.Node(int64(i)))
	return i, true
}

// addDependency records "from depends on to", keeping links symmetric and
// dependents the inverse of dependencies. Self edges and duplicates are ignored.
func (g *Graph) addDependency(from, to int) bool {
	if from == to || !g.Valid(from) || !g.Valid(to) {
		return false
	}
	if g.deps.HasEdgeFromTo(int64(from), int64(to)) {
		return false
	}

	linked := g.deps.HasEdgeBetween(int64(from), int64(to))
	g.deps.SetEdge(g.deps.NewEdge(g.deps.Node(int64(from)), g.deps.Node(int64(to))))

	g.Nodes[from].Dependencies = append(g.Nodes[from].Dependencies, to)
	g.Nodes[to].Dependents = append(g.Nodes[to].Dependents, from)

	// A reverse dependency already linked the pair
	if !linked {
		g.Nodes[from].Links = append(g.Nodes[from].Links, to)
		g.Nodes[to].Links = append(g.Nodes[to].Links, from)
	}
	return true
}

// updateMasses recomputes mass = 1 + degree for every node
func (g *Graph) updateMasses() {
	for i := range g.Nodes {
		g.Nodes[i].Mass = 1 + float64(len(g.Nodes[i].Links))
	}
}

// ResetTransient zeroes velocities and clears fixed flags
func (g *Graph) ResetTransient() {
	for i := range g.Nodes {
		g.Nodes[i].Velocity = r2.Vec{}
		g.Nodes[i].Fixed = false
	}
}
