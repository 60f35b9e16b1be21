package parser

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// parseFunction parses any of inline/function/transition/async
// function/async transition/script, including const-generic parameters
// (`function sum[N: u32](xs: [u32; N]) -> u32`). It links no finalizer:
// the returned Function's Finalizer is left nil.
func (p *Parser) parseFunction() *ast.Function {
	lo := p.cur()
	variant := ast.VariantFunction
	isAsync := false
	if p.at(lexer.ASYNC) {
		isAsync = true
		p.advance()
	}
	switch p.cur().Type {
	case lexer.INLINE:
		variant = ast.VariantInline
		p.advance()
	case lexer.FUNCTION:
		variant = ast.VariantFunction
		if isAsync {
			variant = ast.VariantAsyncFunction
		}
		p.advance()
	case lexer.TRANSITION:
		variant = ast.VariantTransition
		if isAsync {
			variant = ast.VariantAsyncTransition
		}
		p.advance()
	case lexer.SCRIPT:
		variant = ast.VariantScript
		p.advance()
	default:
		p.advance()
	}

	name := p.intern(p.cur())
	p.advance()

	var constParams []*ast.Param
	if p.at(lexer.LBRACKET) {
		p.advance()
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			constParams = append(constParams, p.parseParam(ast.ModeConst))
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACKET)
	}

	p.expect(lexer.LPAREN)
	var inputs []*ast.Param
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		inputs = append(inputs, p.parseParam(ast.ModeNone))
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)

	var outputs []*ast.Param
	if p.at(lexer.ARROW) {
		p.advance()
		outputs = append(outputs, p.parseOutputType())
		for p.at(lexer.COMMA) {
			p.advance()
			outputs = append(outputs, p.parseOutputType())
		}
	}

	body := p.parseBlock()

	fn := &ast.Function{
		Base: p.newBase(lo), Name: name, Variant: variant,
		ConstParams: constParams, Inputs: inputs, Outputs: outputs, Body: body,
	}
	p.closeBase(&fn.Base, lo)
	return fn
}

// parseParam parses one `name: T` or `name: mode T` input/const-generic
// parameter.
func (p *Parser) parseParam(defaultMode ast.Mode) *ast.Param {
	lo := p.cur()
	name := p.intern(p.cur())
	p.advance()
	p.expect(lexer.COLON)
	mode := p.parseModeIfPresent(defaultMode)
	ty := p.parseType()
	param := &ast.Param{Base: p.newBase(lo), Name: name, Type: ty, Mode: mode}
	p.closeBase(&param.Base, lo)
	return param
}

// parseOutputType parses a bare return type, optionally mode-qualified
// (`public T`), as one synthesized unnamed Param.
func (p *Parser) parseOutputType() *ast.Param {
	lo := p.cur()
	mode := p.parseModeIfPresent(ast.ModeNone)
	ty := p.parseType()
	param := &ast.Param{Base: p.newBase(lo), Type: ty, Mode: mode}
	p.closeBase(&param.Base, lo)
	return param
}

func (p *Parser) parseModeIfPresent(def ast.Mode) ast.Mode {
	switch p.cur().Type {
	case lexer.PUBLIC:
		p.advance()
		return ast.ModePublic
	case lexer.PRIVATE:
		p.advance()
		return ast.ModePrivate
	case lexer.CONST:
		p.advance()
		return ast.ModeConstant
	default:
		return def
	}
}

// parseComposite parses a `struct Name { ... }` or `record Name { ... }`.
// A record's `owner` member is tagged ModeRecord per Leo's fixed-owner
// convention (spec.md §4.I.15 "record owner reordering").
func (p *Parser) parseComposite(isRecord bool) *ast.Composite {
	lo := p.cur()
	p.advance() // struct / record
	name := p.intern(p.cur())
	p.advance()
	p.expect(lexer.LBRACE)
	var members []*ast.Member
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		mlo := p.cur()
		mname := p.intern(p.cur())
		p.advance()
		p.expect(lexer.COLON)
		mode := ast.ModeNone
		if isRecord {
			mode = p.parseModeIfPresent(ast.ModeNone)
		}
		ty := p.parseType()
		if isRecord && session.Resolve(mname) == "owner" {
			mode = ast.ModeRecord
		}
		m := &ast.Member{Base: p.newBase(mlo), Name: mname, Type: ty, Mode: mode}
		p.closeBase(&m.Base, mlo)
		members = append(members, m)
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	c := &ast.Composite{Base: p.newBase(lo), Name: name, Members: members, IsRecord: isRecord}
	p.closeBase(&c.Base, lo)
	return c
}

// parseConstructor parses a program's `constructor() { ... }` upgrade
// entrypoint as a zero-input, zero-output Function of VariantConstructor.
func (p *Parser) parseConstructor() *ast.Function {
	lo := p.cur()
	p.advance() // constructor
	p.expect(lexer.LPAREN)
	p.expect(lexer.RPAREN)
	body := p.parseBlock()
	fn := &ast.Function{Base: p.newBase(lo), Variant: ast.VariantConstructor, Body: body}
	p.closeBase(&fn.Base, lo)
	return fn
}
