// Package symcreate is lowering pass 2 (spec.md §4.I.2): walks the parsed
// program once, inserting every function/composite/mapping/const
// declaration into the compile state's symbol table before any pass that
// needs to resolve a reference runs. Grounded on the teacher's
// module/resolver.go top-level declaration registration step.
package symcreate

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/compiler"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/session"
	"github.com/ProvableHQ/leo-sub007/internal/symtab"
)

type Pass struct{}

func (Pass) Name() string { return "symbol-table-creation" }

func (p Pass) Run(st *compiler.CompilerState) bool {
	ok := true
	for _, scope := range st.Program.Scopes {
		if !insertScope(st, scope.Program, nil, scope.Consts, scope.Composites, scope.Mappings, scope.Functions) {
			ok = false
		}
		if scope.Constructor != nil {
			if !insertFunction(st, scope.Program, nil, scope.Constructor) {
				ok = false
			}
		}
		for _, mod := range scope.Modules {
			if !insertModule(st, scope.Program, mod) {
				ok = false
			}
		}
	}
	for _, stub := range st.Program.Stubs {
		if !insertStub(st, stub) {
			ok = false
		}
	}
	return ok
}

// insertStub registers one imported program's disassembled Stub
// (internal/disasm) into the symbol table under its own program symbol,
// so a cross-program call/struct reference (parsed as a LOCATOR
// expression, already Program-qualified — see internal/parser's
// splitLocatorLiteral) resolves the same way a local declaration does.
// Each FunctionStub is wrapped in a bodyless *ast.Function so
// internal/passes/typecheck's inferCall needs no stub-specific branch.
// For a VariantAsyncTransition stub, synthesizes the `finalize/<name>`
// finalizer Location spec.md §4.I.2 describes.
func insertStub(st *compiler.CompilerState, stub *ast.Stub) bool {
	ok := true
	for _, fs := range stub.Functions {
		loc := ast.Location{Program: stub.Program, Path: []session.Symbol{fs.Name}}
		fn := &ast.Function{
			Name: fs.Name, Variant: fs.Variant,
			Inputs: fs.Inputs, Outputs: fs.Outputs, Finalizer: fs.Finalizer,
		}
		if fn.Finalizer == nil && fs.Variant == ast.VariantAsyncTransition {
			fn.Finalizer = &ast.Location{
				Program: stub.Program,
				Path:    []session.Symbol{session.Intern("finalize/" + session.Resolve(fs.Name))},
			}
		}
		if err := st.Symbols.InsertFunction(&symtab.FuncEntry{Location: loc, Decl: fn, Finalizer: fn.Finalizer}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	for _, c := range stub.Composites {
		loc := ast.Location{Program: stub.Program, Path: []session.Symbol{c.Name}}
		if err := st.Symbols.InsertStruct(&symtab.CompositeEntry{Location: loc, Decl: c}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	for _, m := range stub.Mappings {
		loc := ast.Location{Program: stub.Program, Path: []session.Symbol{m.Name}}
		if err := st.Symbols.InsertMapping(&symtab.MappingEntry{Location: loc, Decl: m}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	return ok
}

func insertModule(st *compiler.CompilerState, program session.Symbol, mod *ast.ModuleScope) bool {
	ok := insertScope(st, program, mod.Path, mod.Consts, mod.Composites, mod.Mappings, mod.Functions)
	for _, child := range mod.Modules {
		if !insertModule(st, program, child) {
			ok = false
		}
	}
	return ok
}

func insertScope(
	st *compiler.CompilerState,
	program session.Symbol,
	path []session.Symbol,
	consts []*ast.ConstDecl,
	composites []*ast.Composite,
	mappings []*ast.Mapping,
	functions []*ast.Function,
) bool {
	ok := true
	for _, c := range consts {
		loc := ast.Location{Program: program, Path: append(append([]session.Symbol{}, path...), c.Name)}
		if err := st.Symbols.InsertConst(&symtab.ConstEntry{Location: loc, Decl: c}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	for _, c := range composites {
		loc := ast.Location{Program: program, Path: append(append([]session.Symbol{}, path...), c.Name)}
		if err := st.Symbols.InsertStruct(&symtab.CompositeEntry{Location: loc, Decl: c}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	for _, m := range mappings {
		loc := ast.Location{Program: program, Path: append(append([]session.Symbol{}, path...), m.Name)}
		if err := st.Symbols.InsertMapping(&symtab.MappingEntry{Location: loc, Decl: m}); err != nil {
			emitDup(st, err)
			ok = false
		}
	}
	for _, f := range functions {
		if !insertFunction(st, program, path, f) {
			ok = false
		}
	}
	return ok
}

func insertFunction(st *compiler.CompilerState, program session.Symbol, path []session.Symbol, f *ast.Function) bool {
	loc := ast.Location{Program: program, Path: append(append([]session.Symbol{}, path...), f.Name)}
	if err := st.Symbols.InsertFunction(&symtab.FuncEntry{Location: loc, Decl: f, Finalizer: f.Finalizer}); err != nil {
		emitDup(st, err)
		return false
	}
	return true
}

func emitDup(st *compiler.CompilerState, err error) {
	st.Handler.Emit(&diag.Report{
		Code: diag.SymDuplicateDef, Kind: diag.KindSymbolPath, Severity: diag.SeverityError,
		Message: fmt.Sprintf("%v", err),
	})
}
