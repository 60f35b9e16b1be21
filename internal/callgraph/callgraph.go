// Package callgraph builds the local program's function call graph and
// checks that the call edges it was given form no cycle; internal/passes/
// inline uses this so inline functions never recurse (spec.md §4.I.8
// monomorphization would diverge). Grounded on the teacher's
// internal/elaborate/scc.go strongly-connected-components pass, reused
// here over internal/graph instead of duplicating Tarjan's algorithm.
package callgraph

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/graph"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// Graph is the local program's call graph: one node per function
// Location, one edge per direct call site. Nodes are keyed by the
// Location's rendered string (a Location holds a path slice, so it
// cannot itself key a map); locs maps each key back to its Location.
type Graph struct {
	g    *graph.DiGraph[string]
	locs map[string]ast.Location
}

func Build(program *ast.ProgramScope, calls func(fn *ast.Function) []ast.Location) *Graph {
	g := graph.New[string]()
	locs := map[string]ast.Location{}
	key := func(l ast.Location) string {
		k := l.String()
		locs[k] = l
		return k
	}
	for _, fn := range program.Functions {
		from := ast.Location{Program: program.Program, Path: []session.Symbol{fn.Name}}
		g.AddNode(key(from))
		for _, to := range calls(fn) {
			g.AddEdge(key(from), key(to))
		}
	}
	return &Graph{g: g, locs: locs}
}

// CheckAcyclic returns a *graph.CycleError if any cycle exists
// among inline-function call edges (the only call edges this func is
// given — callers pass a `calls` closure that filters to inline callees).
func (c *Graph) CheckAcyclic() error {
	return c.g.StronglyConnectedAcyclic()
}

// CallOrder returns functions in dependency order (callees before
// callers), used by internal/passes/inline to process post-order so a
// callee is already fully inlined before it's spliced into a caller.
func (c *Graph) CallOrder() ([]ast.Location, error) {
	order, err := c.g.TopoSort()
	if err != nil {
		return nil, err
	}
	out := make([]ast.Location, 0, len(order))
	for _, k := range order {
		out = append(out, c.locs[k])
	}
	return out, nil
}
