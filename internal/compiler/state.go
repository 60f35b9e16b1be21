// Package compiler owns CompilerState, the single mutable bundle every
// lowering pass reads and rewrites (spec.md §5 "CompilerState"), and the
// fixed-order driver that runs the 14 passes in sequence. Grounded on the
// teacher's internal/pipeline package: Config/Source/Artifacts/Result
// mirrors pipeline.go's shape, generalized from AILANG's
// Check/Eval-mode single pipeline to Leo's fixed lowering-pass sequence.
package compiler

import (
	"fmt"
	"time"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/symtab"
	"github.com/ProvableHQ/leo-sub007/internal/types"
)

// CompilerState bundles everything a Pass needs: node identity, the
// accumulated symbol/type information, the diagnostics sink, and the
// program tree itself. It is interior-mutable by design (single-threaded
// compilation, spec.md §9) so passes rewrite Program.Scopes in place
// rather than threading a new tree through return values.
type CompilerState struct {
	Handler  *diag.Handler
	Nodes    *ast.NodeBuilder
	Symbols  *symtab.Table
	Types    *types.Table
	Program  *ast.Program
	Config   *session.Config
	Assigner *Assigner

	// PhaseTimings records each pass's wall-clock duration in
	// milliseconds, surfaced by cmd/leoc's --timings flag.
	PhaseTimings map[string]int64
}

func NewState(program *ast.Program, nb *ast.NodeBuilder, h *diag.Handler, cfg *session.Config) *CompilerState {
	return &CompilerState{
		Handler:      h,
		Nodes:        nb,
		Symbols:      symtab.New(),
		Types:        types.NewTable(),
		Program:      program,
		Config:       cfg,
		Assigner:     &Assigner{},
		PhaseTimings: make(map[string]int64),
	}
}

// Assigner mints fresh symbol names by suffixing a state-wide counter, so
// two passes (or two calls within one pass) can never hand out the same
// synthesized name. The "$" separator cannot appear in a user identifier,
// which keeps every minted name collision-free against source names too.
type Assigner struct {
	counter int
}

// Unique returns a fresh symbol derived from base, e.g. Unique("flag")
// -> "$flag$7".
func (a *Assigner) Unique(base string) session.Symbol {
	a.counter++
	return session.Intern(fmt.Sprintf("$%s$%d", base, a.counter))
}

// UniqueFrom renames an existing symbol, keeping its text as the stem so
// lowered assembly still reads like the source (`acc$3`).
func (a *Assigner) UniqueFrom(base session.Symbol, sep string) session.Symbol {
	a.counter++
	return session.Intern(fmt.Sprintf("%s%s%d", session.Resolve(base), sep, a.counter))
}

// Pass is one lowering stage. A Pass must only ever stop the pipeline by
// emitting a non-recoverable diagnostic kind (spec.md §7); it signals
// "do not continue" to the driver by returning false.
type Pass interface {
	Name() string
	Run(st *CompilerState) (ok bool)
}

// Driver runs passes in the fixed order spec.md §4.I mandates, stopping
// at the first pass that returns false or that left the handler holding
// an unrecoverable error.
type Driver struct {
	Passes []Pass
}

func NewDriver(passes ...Pass) *Driver {
	return &Driver{Passes: passes}
}

// Run executes every pass in order against st, recording per-pass timing.
// It returns false (and leaves st.Handler populated with why) the moment
// a pass fails.
func (d *Driver) Run(st *CompilerState) bool {
	for _, pass := range d.Passes {
		start := timeNow()
		ok := pass.Run(st)
		st.PhaseTimings[pass.Name()] = int64(timeNow().Sub(start) / time.Millisecond)
		if !ok {
			return false
		}
		if st.Handler.HadErrors() {
			return false
		}
	}
	return true
}

// timeNow is indirected so tests can fake wall-clock time without this
// package importing a mockable clock abstraction the corpus doesn't use.
var timeNow = time.Now

// Summary renders one line per program scope giving its function count
// ("program <name>: <n> functions").
func (st *CompilerState) Summary() string {
	s := ""
	for _, p := range st.Program.Scopes {
		s += fmt.Sprintf("program %s: %d functions\n", session.Resolve(p.Program), len(p.Functions))
	}
	return s
}
