package parser_test

import (
	"testing"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/parser"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

func parseProgram(t *testing.T, src string) (*ast.ProgramScope, *diag.Handler) {
	t.Helper()
	toks := lexer.StripTrivia(lexer.New(src).Tokenize())
	nb := ast.NewNodeBuilder()
	h := diag.NewHandler(diag.ModeBuffered, nil)
	p := parser.New(toks, nb, h, "basic.leo")
	return p.ParseProgramFile(), h
}

// TestParseProgramFile_Scenario1 covers spec.md §8 Scenario 1: a program
// importing nothing, declaring one transition that adds two u32 inputs.
func TestParseProgramFile_Scenario1(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		src := `program basic.aleo {
			transition add(a: u32, b: u32) -> u32 {
				return a + b;
			}
		}`
		scope, h := parseProgram(t, src)
		if h.HadErrors() {
			t.Fatalf("unexpected parse errors: %+v", h.Errors())
		}
		if scope == nil {
			t.Fatal("expected a non-nil program scope")
		}
		if got := session.Resolve(scope.Program); got != "basic.aleo" {
			t.Fatalf("expected program name basic.aleo, got %s", got)
		}
		if len(scope.Functions) != 1 {
			t.Fatalf("expected exactly one function, got %d", len(scope.Functions))
		}
		fn := scope.Functions[0]
		if fn.Variant != ast.VariantTransition {
			t.Fatalf("expected a transition, got variant %v", fn.Variant)
		}
		if session.Resolve(fn.Name) != "add" {
			t.Fatalf("expected function name add, got %s", session.Resolve(fn.Name))
		}
		if len(fn.Inputs) != 2 || len(fn.Outputs) != 1 {
			t.Fatalf("expected 2 inputs and 1 output, got %d inputs, %d outputs", len(fn.Inputs), len(fn.Outputs))
		}
		if fn.Body == nil || len(fn.Body.Statements) != 1 {
			t.Fatalf("expected a single-statement body, got %#v", fn.Body)
		}
		ret, ok := fn.Body.Statements[0].(*ast.ReturnStmt)
		if !ok {
			t.Fatalf("expected the one statement to be a return, got %T", fn.Body.Statements[0])
		}
		if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
			t.Fatalf("expected the return value to be a binary expression, got %T", ret.Value)
		}
	})
}

func TestParseProgramFile_RecordsImports(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		src := `import token.aleo;
		program basic.aleo {
			transition noop() {
				return;
			}
		}`
		_, h := parseProgram(t, src)
		if h.HadErrors() {
			t.Fatalf("unexpected parse errors: %+v", h.Errors())
		}
		toks := lexer.StripTrivia(lexer.New(src).Tokenize())
		nb := ast.NewNodeBuilder()
		h2 := diag.NewHandler(diag.ModeBuffered, nil)
		p := parser.New(toks, nb, h2, "basic.leo")
		p.ParseProgramFile()
		imports := p.Imports()
		if len(imports) != 1 || session.Resolve(imports[0]) != "token.aleo" {
			t.Fatalf("expected a single recorded import token.aleo, got %v", imports)
		}
	})
}

func TestParseProgramFile_ConstAndMappingDeclarations(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		src := `program basic.aleo {
			const MAX: u32 = 100u32;
			mapping balances: address => u64;
		}`
		scope, h := parseProgram(t, src)
		if h.HadErrors() {
			t.Fatalf("unexpected parse errors: %+v", h.Errors())
		}
		if len(scope.Consts) != 1 || session.Resolve(scope.Consts[0].Name) != "MAX" {
			t.Fatalf("expected one const MAX, got %+v", scope.Consts)
		}
		if len(scope.Mappings) != 1 || session.Resolve(scope.Mappings[0].Name) != "balances" {
			t.Fatalf("expected one mapping balances, got %+v", scope.Mappings)
		}
	})
}

func TestParseProgramFile_UnexpectedTokenEmitsParDiagnostic(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		src := `program basic.aleo {
			42
		}`
		_, h := parseProgram(t, src)
		if !h.HadErrors() {
			t.Fatal("expected a stray literal at program scope to be a parse error")
		}
		found := false
		for _, e := range h.Errors() {
			if e.Code == diag.ParUnexpectedToken {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected diag.ParUnexpectedToken among errors, got %+v", h.Errors())
		}
	})
}

func TestParseModuleFile_NestedModulePath(t *testing.T) {
	session.CreateSessionIfNotSetThen(func() {
		src := `util {
			inline helper() -> u32 {
				return 1u32;
			}
		}`
		toks := lexer.StripTrivia(lexer.New(src).Tokenize())
		nb := ast.NewNodeBuilder()
		h := diag.NewHandler(diag.ModeBuffered, nil)
		p := parser.New(toks, nb, h, "util.leo")

		mod := p.ParseModuleFile()
		if h.HadErrors() {
			t.Fatalf("unexpected parse errors: %+v", h.Errors())
		}
		if len(mod.Path) != 1 || session.Resolve(mod.Path[0]) != "util" {
			t.Fatalf("expected module path [util], got %v", mod.Path)
		}
		if len(mod.Functions) != 1 || session.Resolve(mod.Functions[0].Name) != "helper" {
			t.Fatalf("expected one function helper, got %+v", mod.Functions)
		}
	})
}
