package parser

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

var primitiveTypeTokens = map[lexer.TokenType]bool{
	lexer.ADDRESS_TY: true, lexer.BOOL: true, lexer.CHAR_TY: true, lexer.FIELD: true,
	lexer.GROUP: true, lexer.SCALAR: true, lexer.SIGNATURE: true, lexer.STRING_TY: true,
	lexer.I8: true, lexer.I16: true, lexer.I32: true, lexer.I64: true, lexer.I128: true,
	lexer.U8: true, lexer.U16: true, lexer.U32: true, lexer.U64: true, lexer.U128: true,
}

// parseType parses a single type annotation: a primitive keyword, a struct
// or record name (optionally `other.aleo/Name`-qualified via LOCATOR), a
// fixed or unsized array `[T; N]`/`[T]`, a tuple `(T1, T2, ...)`, or
// `Future<T1, T2, ...>`.
func (p *Parser) parseType() ast.TypeExpr {
	lo := p.cur()
	switch {
	case primitiveTypeTokens[p.cur().Type]:
		name := p.intern(p.cur())
		p.advance()
		nt := &ast.NamedType{Base: p.newBase(lo), Name: name}
		p.closeBase(&nt.Base, lo)
		return nt

	case p.at(lexer.IDENT):
		if p.cur().Literal == "Future" {
			return p.parseFutureType(lo)
		}
		name := p.intern(p.cur())
		p.advance()
		nt := &ast.NamedType{Base: p.newBase(lo), Name: name}
		p.closeBase(&nt.Base, lo)
		return nt

	case p.at(lexer.LOCATOR):
		// `other.aleo/Name` — split at '/' for the qualifying program.
		lit := p.cur().Literal
		slash := indexByte(lit, '/')
		prog := session.Intern(lit[:slash])
		name := session.Intern(lit[slash+1:])
		p.advance()
		nt := &ast.NamedType{Base: p.newBase(lo), Name: name, Program: &prog}
		p.closeBase(&nt.Base, lo)
		return nt

	case p.at(lexer.LBRACKET):
		p.advance()
		elem := p.parseType()
		var ln ast.Expr
		if p.at(lexer.SEMICOLON) {
			p.advance()
			ln = p.parseExpr()
		}
		p.expect(lexer.RBRACKET)
		at := &ast.ArrayType{Base: p.newBase(lo), Element: elem, Len: ln}
		p.closeBase(&at.Base, lo)
		return at

	case p.at(lexer.LPAREN):
		p.advance()
		var elems []ast.TypeExpr
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
		if len(elems) == 0 {
			ut := &ast.UnitType{Base: p.newBase(lo)}
			p.closeBase(&ut.Base, lo)
			return ut
		}
		tt := &ast.TupleType{Base: p.newBase(lo), Elements: elems}
		p.closeBase(&tt.Base, lo)
		return tt

	case p.at(lexer.MAPPING):
		p.advance()
		key := p.parseType()
		p.expect(lexer.FATARROW)
		val := p.parseType()
		mt := &ast.MappingType{Base: p.newBase(lo), Key: key, Value: val}
		p.closeBase(&mt.Base, lo)
		return mt

	default:
		p.errorf(diag.ParUnexpectedToken, p.cur(), "expected a type, found %q", p.cur().Literal)
		p.advance()
		nt := &ast.NamedType{Base: p.newBase(lo), Name: p.intern(lo)}
		return nt
	}
}

func (p *Parser) parseFutureType(lo lexer.Token) ast.TypeExpr {
	p.advance() // Future
	var inputs []ast.TypeExpr
	if p.at(lexer.LT) {
		p.advance()
		for !p.at(lexer.GT) && !p.at(lexer.EOF) {
			inputs = append(inputs, p.parseType())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.GT)
	}
	ft := &ast.FutureType{Base: p.newBase(lo), Inputs: inputs}
	p.closeBase(&ft.Base, lo)
	return ft
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
