// Package parser builds Leo's semantic AST directly from a trivia-stripped
// token stream (spec.md §4.B: "Parsing produces two trees... a semantic
// AST produced either directly from tokens or by a to_main/to_module
// conversion from the CST"). Syntax errors are Lex/Parse-kind diagnostics
// (spec.md §7). The parser reports each one to the Handler and keeps
// going to the end of the file; it does not stop at the first one.
package parser

import (
	"fmt"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// Parser turns one file's token stream into an *ast.ProgramScope (for a
// `program foo.aleo { ... }` file) or an *ast.ModuleScope (for a module
// file under a module directory).
type Parser struct {
	toks        []lexer.Token
	pos         int
	nb          *ast.NodeBuilder
	handler     *diag.Handler
	file        string
	lastImports []session.Symbol
}

// New creates a Parser. toks must already be trivia-stripped and rebased
// to absolute source-map offsets (lexer.Rebase then lexer.StripTrivia).
func New(toks []lexer.Token, nb *ast.NodeBuilder, h *diag.Handler, file string) *Parser {
	return &Parser{toks: toks, nb: nb, handler: h, file: file}
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) span(lo lexer.Token) session.Span {
	hi := p.toks[max(0, p.pos-1)]
	return session.Span{Lo: lo.Lo, Hi: hi.Hi}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (p *Parser) errorf(code string, tok lexer.Token, format string, args ...any) {
	p.handler.Emit(&diag.Report{
		Code:     code,
		Kind:     diag.KindLexParse,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Span: &diag.SpanInfo{
			File: p.file, StartLine: tok.Line, StartCol: tok.Column,
			Line: session.Current().SourceMap.LineText(p.file, tok.Line),
		},
	})
}

// expect consumes a token of type tt or emits a PAR001 diagnostic.
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, bool) {
	if p.cur().Type != tt {
		p.errorf(diag.ParUnexpectedToken, p.cur(), "expected %s, found %q", tt, p.cur().Literal)
		return p.cur(), false
	}
	return p.advance(), true
}

func (p *Parser) id(b ast.Base) ast.Base {
	b.NID = p.nb.NextID()
	return b
}

func (p *Parser) newBase(lo lexer.Token) ast.Base {
	return ast.Base{NID: p.nb.NextID(), Sp: session.Span{Lo: lo.Lo, Hi: lo.Hi}}
}

func (p *Parser) closeBase(b *ast.Base, lo lexer.Token) {
	b.Sp = p.span(lo)
}

func (p *Parser) intern(tok lexer.Token) session.Symbol { return session.Intern(tok.Literal) }

// ---------------------------------------------------------------------
// Top level
// ---------------------------------------------------------------------

// ParseProgramFile parses `import ...; program foo.aleo { ... }`.
func (p *Parser) ParseProgramFile() *ast.ProgramScope {
	var imports []session.Symbol
	for p.at(lexer.IMPORT) {
		p.advance()
		tok := p.cur()
		if tok.Type != lexer.PROGRAM_ID && tok.Type != lexer.IDENT {
			p.errorf(diag.ParUnexpectedToken, tok, "expected program id after import")
		} else {
			imports = append(imports, p.intern(tok))
			p.advance()
		}
		p.expect(lexer.SEMICOLON)
	}

	lo := p.cur()
	if _, ok := p.expect(lexer.PROGRAM); !ok {
		return nil
	}
	nameTok := p.cur()
	progName := p.intern(nameTok)
	p.advance()
	p.expect(lexer.LBRACE)

	scope := &ast.ProgramScope{Base: p.newBase(lo), Program: progName}
	p.parseScopeBody(scope)
	p.expect(lexer.RBRACE)
	p.closeBase(&scope.Base, lo)
	scope.Modules = nil // main file has no nested module wrapper itself
	p.lastImports = imports
	return scope
}

// Imports returns the program file's `import a.aleo;` list, populated by
// the most recent ParseProgramFile call. internal/imports reads this
// immediately after parsing to build the program's import graph.
func (p *Parser) Imports() []session.Symbol { return p.lastImports }

func (p *Parser) parseScopeBody(scope *ast.ProgramScope) {
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.skipAnnotations()
		switch p.cur().Type {
		case lexer.CONST:
			scope.Consts = append(scope.Consts, p.parseConst())
		case lexer.STRUCT:
			scope.Composites = append(scope.Composites, p.parseComposite(false))
		case lexer.RECORD:
			scope.Composites = append(scope.Composites, p.parseComposite(true))
		case lexer.MAPPING:
			scope.Mappings = append(scope.Mappings, p.parseMapping(scope.Program))
		case lexer.INLINE, lexer.FUNCTION, lexer.TRANSITION, lexer.ASYNC, lexer.SCRIPT:
			scope.Functions = append(scope.Functions, p.parseFunction())
		case lexer.CONSTRUCTOR:
			scope.Constructor = p.parseConstructor()
		default:
			p.errorf(diag.ParUnexpectedToken, p.cur(), "unexpected token %q at program scope", p.cur().Literal)
			p.advance()
		}
	}
}

// ParseModuleFile parses a standalone module file's body: a path header
// (`a::b`, a single IDENT for a one-segment module, or PATH for a nested
// one) followed by a `{ ... }` block, as found under a program's module
// directory (spec.md §3.1 "module tree"). Leo has no `module` keyword —
// the path alone introduces the scope.
func (p *Parser) ParseModuleFile() *ast.ModuleScope {
	return p.parseModuleScope(p.cur())
}

func (p *Parser) parseModuleScope(lo lexer.Token) *ast.ModuleScope {
	path := splitPathLiteral(p.cur())
	p.advance()
	p.expect(lexer.LBRACE)
	mod := &ast.ModuleScope{Base: p.newBase(lo), Path: path}
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.skipAnnotations()
		switch p.cur().Type {
		case lexer.CONST:
			mod.Consts = append(mod.Consts, p.parseConst())
		case lexer.STRUCT:
			mod.Composites = append(mod.Composites, p.parseComposite(false))
		case lexer.RECORD:
			mod.Composites = append(mod.Composites, p.parseComposite(true))
		case lexer.INLINE, lexer.FUNCTION, lexer.TRANSITION, lexer.ASYNC, lexer.SCRIPT:
			mod.Functions = append(mod.Functions, p.parseFunction())
		case lexer.IDENT:
			nestedLo := p.cur()
			mod.Modules = append(mod.Modules, p.parseModuleScope(nestedLo))
		default:
			p.errorf(diag.ParUnexpectedToken, p.cur(), "unexpected token %q at module scope", p.cur().Literal)
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	p.closeBase(&mod.Base, lo)
	return mod
}

func (p *Parser) skipAnnotations() {
	for p.at(lexer.AT) {
		p.advance()
		if p.cur().Type == lexer.IDENT {
			p.advance()
		}
		if p.at(lexer.LPAREN) {
			depth := 0
			for {
				if p.at(lexer.LPAREN) {
					depth++
				} else if p.at(lexer.RPAREN) {
					depth--
				}
				p.advance()
				if depth == 0 || p.at(lexer.EOF) {
					break
				}
			}
		}
	}
}

func (p *Parser) parseConst() *ast.ConstDecl {
	lo := p.cur()
	p.advance() // const
	nameTok := p.cur()
	name := p.intern(nameTok)
	p.advance()
	p.expect(lexer.COLON)
	ty := p.parseType()
	p.expect(lexer.ASSIGN)
	val := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	c := &ast.ConstDecl{Base: p.newBase(lo), Name: name, Type: ty, Value: val}
	p.closeBase(&c.Base, lo)
	return c
}

func (p *Parser) parseMapping(prog session.Symbol) *ast.Mapping {
	lo := p.cur()
	p.advance() // mapping
	name := p.intern(p.cur())
	p.advance()
	p.expect(lexer.COLON)
	key := p.parseType()
	p.expect(lexer.FATARROW)
	value := p.parseType()
	p.expect(lexer.SEMICOLON)
	m := &ast.Mapping{Base: p.newBase(lo), Name: name, Key: key, Value: value, Program: prog}
	p.closeBase(&m.Base, lo)
	return m
}
