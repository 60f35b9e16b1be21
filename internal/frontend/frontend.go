// Package frontend turns source text into the ast.Program that
// internal/pipeline.Compile consumes: it drives the lexer and parser over
// the main program file and its module tree, derives each module's path
// key from its file path (spec.md §6.1), and resolves imports to
// topologically-ordered stubs (internal/imports) before handing the
// result to the lowering pipeline. Grounded on the teacher's
// internal/module/loader.go, which performs the same
// source-tree-to-in-memory-tree walk for AILANG's module system.
package frontend

import (
	"sort"
	"strings"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/imports"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/parser"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// ModuleFile is one file under a program's module directory, keyed by its
// path relative to the source root (e.g. "foo/bar.leo").
type ModuleFile struct {
	RelPath string
	Src     string
}

// Sources is everything frontend.Parse needs to build one program's AST:
// the main `src/main.leo` text and every module file beneath it.
type Sources struct {
	MainName string // e.g. "src/main.leo", used only for diagnostics/source-map labeling
	MainSrc  string
	Modules  []ModuleFile
}

// moduleKey strips the ".leo" suffix and splits the remaining path on "/"
// (spec.md §6.1: "foo/bar.leo" -> ["foo", "bar"]).
func moduleKey(relPath string) []string {
	trimmed := strings.TrimSuffix(relPath, ".leo")
	return strings.Split(trimmed, "/")
}

func tokenize(nb *ast.NodeBuilder, h *diag.Handler, file *session.SourceFile) []lexer.Token {
	toks := lexer.New(file.Src).Tokenize()
	toks = lexer.Rebase(toks, file.AbsoluteStart)
	return lexer.StripTrivia(toks)
}

// Parse lexes and parses src into an *ast.Program with one ProgramScope
// (the main file, with its module tree attached) and no Stubs or Imports
// resolved yet — call ResolveImports afterward once a Fetcher is
// available. Parse errors (diag.KindLexParse) are never recoverable,
// matching spec.md §7; callers should check h.HadErrors() before
// proceeding to ResolveImports or pipeline.Compile.
func Parse(src Sources, nb *ast.NodeBuilder, h *diag.Handler) *ast.Program {
	sm := session.Current().SourceMap

	mainFile := sm.NewSourceFile(src.MainSrc, src.MainName)
	mainToks := tokenize(nb, h, mainFile)
	p := parser.New(mainToks, nb, h, src.MainName)
	scope := p.ParseProgramFile()
	if scope == nil {
		return &ast.Program{}
	}

	// Sort module files so a parent module directory is always parsed
	// (and its Modules slice extended) before any child; lexical order of
	// path-segment count is sufficient since a child's RelPath is always
	// strictly longer than any ancestor's directory prefix.
	mods := make([]ModuleFile, len(src.Modules))
	copy(mods, src.Modules)
	sort.Slice(mods, func(i, j int) bool { return mods[i].RelPath < mods[j].RelPath })

	for _, mf := range mods {
		key := moduleKey(mf.RelPath)
		badSegment := false
		for _, seg := range key {
			if lexer.IsKeyword(lexer.LookupIdent(seg)) {
				h.Emit(&diag.Report{
					Code: diag.ParKeywordAsModule, Kind: diag.KindLexParse, Severity: diag.SeverityError,
					Message: "module path segment " + seg + " collides with a reserved keyword",
					Span:    &diag.SpanInfo{File: mf.RelPath},
				})
				badSegment = true
			}
		}
		if badSegment {
			continue
		}

		file := sm.NewSourceFile(mf.Src, mf.RelPath)
		toks := tokenize(nb, h, file)
		mp := parser.New(toks, nb, h, mf.RelPath)
		modScope := mp.ParseModuleFile()
		if modScope == nil {
			continue
		}
		modScope.Path = internPath(key)
		attachModule(scope, modScope)
	}

	return &ast.Program{
		MainProgram: scope.Program,
		Scopes:      []*ast.ProgramScope{scope},
		Imports:     p.Imports(),
	}
}

func internPath(segs []string) []session.Symbol {
	out := make([]session.Symbol, len(segs))
	for i, s := range segs {
		out[i] = session.Intern(s)
	}
	return out
}

// attachModule nests mod under scope.Modules according to its Path,
// creating intermediate ModuleScope wrappers as needed so a two-segment
// path like ["foo","bar"] lands at scope.Modules["foo"].Modules["bar"]
// rather than being flattened.
func attachModule(scope *ast.ProgramScope, mod *ast.ModuleScope) {
	if len(mod.Path) <= 1 {
		scope.Modules = append(scope.Modules, mod)
		return
	}
	parentPath := mod.Path[:len(mod.Path)-1]
	for _, existing := range scope.Modules {
		if pathEqual(existing.Path, parentPath) {
			existing.Modules = append(existing.Modules, mod)
			return
		}
	}
	// No parent wrapper parsed yet (module directories need not each have
	// their own file): synthesize an empty one.
	parent := &ast.ModuleScope{Path: parentPath, Modules: []*ast.ModuleScope{mod}}
	scope.Modules = append(scope.Modules, parent)
}

func pathEqual(a, b []session.Symbol) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ResolveImports fetches and topologically orders program.Imports'
// transitive stub graph via internal/imports, attaching the result to
// program.Stubs. program.Imports (the direct import list) must already be
// populated, e.g. by Parse.
func ResolveImports(program *ast.Program, f imports.Fetcher, h *diag.Handler) {
	program.Stubs = imports.Resolve(program.MainProgram, program.Imports, f, h)
}
