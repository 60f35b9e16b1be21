// Package network is the §4.J "External collaborators" program-bytecode
// fetcher: it satisfies internal/imports.Fetcher, turning a program id
// into its disassembled *ast.Stub via internal/disasm. Per spec.md's
// non-goals, no real network transport is implemented — this package is
// the interface boundary an external fetch would live behind, plus a
// MapFetcher stub backed by an in-memory registry of already-retrieved
// assembly text, grounded on the teacher's testctx mock-context pattern
// (internal/effects/testctx/mock_context.go), which substitutes a
// deterministic in-memory stand-in for an effect the teacher also never
// wires to a real external system in its test suite.
package network

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/disasm"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// MapFetcher satisfies imports.Fetcher from a fixed table of assembly
// text, keyed by program id, known in advance (e.g. loaded from a local
// build cache or supplied by a test). A production fetch implementation
// (HTTP, a local node's RPC, ...) would share this same
// disassemble-then-return shape, substituting its own lookup for the map.
type MapFetcher struct {
	Sources map[string]string
	nb      *ast.NodeBuilder
}

// NewMapFetcher builds a MapFetcher that disassembles every Fetch result
// using nb, so stub types/functions share the compilation unit's
// NodeBuilder-owned id space (internal/ast.NodeBuilder).
func NewMapFetcher(nb *ast.NodeBuilder, sources map[string]string) *MapFetcher {
	return &MapFetcher{Sources: sources, nb: nb}
}

// Fetch implements internal/imports.Fetcher.
func (f *MapFetcher) Fetch(program session.Symbol) (*ast.Stub, error) {
	name := session.Resolve(program)
	src, ok := f.Sources[name]
	if !ok {
		return nil, fmt.Errorf("network: no bytecode registered for program %s", name)
	}
	stub, err := disasm.Disassemble(src, f.nb)
	if err != nil {
		return nil, fmt.Errorf("network: disassembling %s: %w", name, err)
	}
	return stub, nil
}

// UnavailableFetcher is the default Fetcher when no bytecode source was
// configured: every Fetch fails with an EXT001 diagnostic-shaped error,
// rather than panicking or silently skipping the import. cmd/leoc uses
// this unless the caller supplies program bytecode via -stub.
type UnavailableFetcher struct{}

func (UnavailableFetcher) Fetch(program session.Symbol) (*ast.Stub, error) {
	return nil, fmt.Errorf("network: fetching %s: no bytecode source configured (%s)",
		session.Resolve(program), diag.ExtImportUnresolved)
}
