// Package graph is a generic directed graph with a cycle-detecting
// topological sort, shared by internal/imports (program import graph) and
// internal/callgraph (function call graph). Grounded on the teacher's
// internal/link/topo.go TopoSortFromRoot: a DFS with discovered/finished
// node coloring that reports the exact cycle path instead of just "cycle
// found" (spec.md §4.F "Flow diagnostics must name the cycle").
package graph

import "fmt"

// color tracks a node's DFS state: white (unvisited), grey (on the
// current DFS stack, i.e. "discovered but not finished"), black (fully
// processed with all descendants visited).
type color int

const (
	white color = iota
	grey
	black
)

// DiGraph is a directed graph over comparable node keys.
type DiGraph[K comparable] struct {
	edges map[K][]K
	nodes []K
	seen  map[K]bool
}

func New[K comparable]() *DiGraph[K] {
	return &DiGraph[K]{edges: make(map[K][]K), seen: make(map[K]bool)}
}

func (g *DiGraph[K]) AddNode(k K) {
	if !g.seen[k] {
		g.seen[k] = true
		g.nodes = append(g.nodes, k)
	}
}

func (g *DiGraph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// ContainsNode reports whether k has been added as a node or edge endpoint.
func (g *DiGraph[K]) ContainsNode(k K) bool { return g.seen[k] }

// CycleError names the exact cycle found, as a sequence of node keys
// from the repeated node back to itself.
type CycleError[K comparable] struct {
	Cycle []K
}

func (e *CycleError[K]) Error() string {
	s := "cycle: "
	for i, k := range e.Cycle {
		if i > 0 {
			s += " -> "
		}
		s += fmt.Sprintf("%v", k)
	}
	return s
}

// TopoSort returns the graph's nodes in dependency order (a node appears
// after everything it points to), or a *CycleError if the graph is not a
// DAG.
func (g *DiGraph[K]) TopoSort() ([]K, error) {
	state := make(map[K]color, len(g.nodes))
	var order []K
	var stack []K

	var visit func(k K) error
	visit = func(k K) error {
		switch state[k] {
		case black:
			return nil
		case grey:
			// Backtrack the discovered stack to the offending node so the
			// reported path is the cycle itself, not the whole DFS spine.
			start := 0
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == k {
					start = i
					break
				}
			}
			cycle := append(append([]K{}, stack[start:]...), k)
			return &CycleError[K]{Cycle: cycle}
		}
		state[k] = grey
		stack = append(stack, k)
		for _, dep := range g.edges[k] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[k] = black
		order = append(order, k)
		return nil
	}

	for _, n := range g.nodes {
		if state[n] == white {
			if err := visit(n); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// StronglyConnectedAcyclic reports whether every strongly-connected
// component in the graph is a single node with no self-edge — i.e. the
// graph has no cycles of any size. Used by internal/passes/inline
// (through internal/callgraph's CheckAcyclic) to enforce spec.md's "no
// recursive inline functions" invariant without duplicating the DFS.
func (g *DiGraph[K]) StronglyConnectedAcyclic() error {
	_, err := g.TopoSort()
	return err
}
