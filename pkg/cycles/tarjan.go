package cycles

import (
	"gonum.org/v1/gonum/graph"
)

// sccFinder collects the strongly connected components of a directed graph
// using Tarjan's algorithm. Only components with more than one node are
// kept; self edges are never present in a plugin graph.
type sccFinder struct {
	graph   graph.Directed
	next    int
	stack   []int64
	onStack map[int64]bool
	order   map[int64]int
	low     map[int64]int
	found   [][]int64
}

func newSCCFinder(g graph.Directed) *sccFinder {
	return &sccFinder{
		graph:   g,
		onStack: make(map[int64]bool),
		order:   make(map[int64]int),
		low:     make(map[int64]int),
	}
}

// components returns every cyclic component. Visiting order follows the
// graph's node iteration, so callers sort the result when they need stability.
func (f *sccFinder) components() [][]int64 {
	nodes := f.graph.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if _, seen := f.order[id]; !seen {
			f.visit(id)
		}
	}
	return f.found
}

func (f *sccFinder) visit(id int64) {
	f.order[id] = f.next
	f.low[id] = f.next
	f.next++

	f.stack = append(f.stack, id)
	f.onStack[id] = true

	succ := f.graph.From(id)
	for succ.Next() {
		to := succ.Node().ID()
		if _, seen := f.order[to]; !seen {
			f.visit(to)
			f.low[id] = min(f.low[id], f.low[to])
		} else if f.onStack[to] {
			f.low[id] = min(f.low[id], f.order[to])
		}
	}

	if f.low[id] != f.order[id] {
		return
	}

	// id roots a component; pop it off the stack
	var comp []int64
	for {
		w := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		f.onStack[w] = false
		comp = append(comp, w)
		if w == id {
			break
		}
	}
	if len(comp) > 1 {
		f.found = append(f.found, comp)
	}
}
