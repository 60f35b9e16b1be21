// Package imports builds a compilation unit's program-import graph and
// topologically orders the imported stubs so every later pass sees
// dependencies compiled/disassembled before dependents (spec.md §3.2
// "Import topology"). Grounded on the teacher's internal/link/linker.go
// dependency-ordering pass, generalized from AILANG module imports to
// Leo's flat program-id import list.
package imports

import (
	"fmt"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/graph"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// renderCycle rewrites a *graph.CycleError over program symbols into the
// "a.aleo -> b.aleo -> a.aleo" form a user can read. The graph package
// is generic and prints raw keys; the translation lives here because
// only this caller knows its keys are interned program symbols.
func renderCycle(err error) string {
	ce, ok := err.(*graph.CycleError[session.Symbol])
	if !ok {
		return err.Error()
	}
	names := make([]string, len(ce.Cycle))
	for i, sym := range ce.Cycle {
		names[i] = session.Resolve(sym)
	}
	return strings.Join(names, " -> ")
}

// Fetcher resolves an imported program id to its disassembled Stub.
// internal/network is the production implementation; tests substitute an
// in-memory map.
type Fetcher interface {
	Fetch(program session.Symbol) (*ast.Stub, error)
}

// Resolve walks mainProgram's (and every transitively imported stub's)
// import list, fetching each with f, and returns the stubs topologically
// ordered so that Stubs[i] never imports Stubs[j] for j > i.
func Resolve(mainProgram session.Symbol, directImports []session.Symbol, f Fetcher, h *diag.Handler) []*ast.Stub {
	g := graph.New[session.Symbol]()
	stubs := make(map[session.Symbol]*ast.Stub)

	var visit func(prog session.Symbol)
	visit = func(prog session.Symbol) {
		if _, ok := stubs[prog]; ok {
			return
		}
		stub, err := f.Fetch(prog)
		if err != nil {
			h.Emit(&diag.Report{
				Code: diag.ExtImportUnresolved, Kind: diag.KindExternal, Severity: diag.SeverityError,
				Message: fmt.Sprintf("failed to resolve import %s: %v", session.Resolve(prog), err),
			})
			return
		}
		stubs[prog] = stub
		g.AddNode(prog)
		for _, dep := range stub.Imports {
			g.AddEdge(prog, dep)
			visit(dep)
		}
	}

	for _, prog := range directImports {
		g.AddEdge(mainProgram, prog)
		visit(prog)
	}

	order, err := g.TopoSort()
	if err != nil {
		h.Emit(&diag.Report{
			Code: diag.ExtImportUnresolved, Kind: diag.KindExternal, Severity: diag.SeverityError,
			Message: "cycle detected in import graph: " + renderCycle(err),
		})
		return nil
	}

	var out []*ast.Stub
	for _, prog := range order {
		if prog == mainProgram {
			continue
		}
		if s, ok := stubs[prog]; ok {
			out = append(out, s)
		}
	}
	return out
}
