package parser

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

// intrinsicNames is the seeded table of cryptographic/ledger primitives
// resolved directly against IntrinsicCallExpr rather than user symbols
// (SPEC_FULL.md "Supplemented features" #2: core-library intrinsic table).
var intrinsicNames = map[string]bool{
	"BHP256::hash": true, "BHP256::commit": true,
	"BHP512::hash": true, "BHP512::commit": true,
	"BHP768::hash": true, "BHP768::commit": true,
	"BHP1024::hash": true, "BHP1024::commit": true,
	"Pedersen64::hash": true, "Pedersen64::commit": true,
	"Pedersen128::hash": true, "Pedersen128::commit": true,
	"Poseidon2::hash": true, "Poseidon4::hash": true, "Poseidon8::hash": true,
	"Keccak256::hash": true, "Keccak384::hash": true, "Keccak512::hash": true,
	"SHA3_256::hash": true, "SHA3_384::hash": true, "SHA3_512::hash": true,
	"ChaCha::rand_address": true, "ChaCha::rand_bool": true, "ChaCha::rand_field": true,
	"ChaCha::rand_group": true, "ChaCha::rand_scalar": true,
	"ChaCha::rand_i8": true, "ChaCha::rand_i16": true, "ChaCha::rand_i32": true,
	"ChaCha::rand_i64": true, "ChaCha::rand_i128": true,
	"ChaCha::rand_u8": true, "ChaCha::rand_u16": true, "ChaCha::rand_u32": true,
	"ChaCha::rand_u64": true, "ChaCha::rand_u128": true,
	"signature::verify": true, "group::to_x_coordinate": true, "group::to_y_coordinate": true,
	"Mapping::get": true, "Mapping::get_or_use": true, "Mapping::set": true,
	"Mapping::remove": true, "Mapping::contains": true,
}

// Precedence climbing over Leo's binary operators, loosest to tightest:
// ||, &&, comparisons, |, ^, &, shifts, + -, * / %, **. Ternary binds
// looser than ||; `as` casts bind tighter than **, and unary/postfix bind
// tighter than casts.
var binPrec = map[lexer.TokenType]int{
	lexer.PIPEPIPE: 1,
	lexer.AMPAMP:   2,
	lexer.EQ:       3, lexer.NEQ: 3, lexer.LT: 3, lexer.LTE: 3, lexer.GT: 3, lexer.GTE: 3,
	lexer.PIPE: 4,
	lexer.CARET: 5,
	lexer.AMP:   6,
	lexer.SHL:   7, lexer.SHR: 7,
	lexer.PLUS: 8, lexer.MINUS: 8,
	lexer.STAR: 9, lexer.SLASH: 9, lexer.PERCENT: 9,
	lexer.STARSTAR: 10,
}

var binOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpRem, lexer.STARSTAR: ast.OpPow,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq, lexer.LT: ast.OpLt, lexer.LTE: ast.OpLe,
	lexer.GT: ast.OpGt, lexer.GTE: ast.OpGe, lexer.AMPAMP: ast.OpAnd, lexer.PIPEPIPE: ast.OpOr,
	lexer.AMP: ast.OpBitAnd, lexer.PIPE: ast.OpBitOr, lexer.CARET: ast.OpXor,
	lexer.SHL: ast.OpShl, lexer.SHR: ast.OpShr,
}

// parseExpr parses a full expression, starting at the ternary level (the
// loosest Leo has; `as` casts are folded in by `parseCast` beneath every
// binary level).
func (p *Parser) parseExpr() ast.Expr {
	return p.parseTernary()
}

func (p *Parser) parseTernary() ast.Expr {
	lo := p.cur()
	cond := p.parseBinary(0)
	if p.at(lexer.QUESTION) {
		p.advance()
		then := p.parseExpr()
		p.expect(lexer.COLON)
		els := p.parseExpr()
		t := &ast.TernaryExpr{Base: p.newBase(lo), Cond: cond, Then: then, Else: els}
		p.closeBase(&t.Base, lo)
		return t
	}
	return cond
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	lo := p.cur()
	left := p.parseCast()
	for {
		prec, ok := binPrec[p.cur().Type]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		// Left-associative: next level requires prec+1, except ** which is
		// right-associative (handled by recursing at the same prec).
		nextMin := prec + 1
		if opTok.Type == lexer.STARSTAR {
			nextMin = prec
		}
		right := p.parseBinary(nextMin)
		b := &ast.BinaryExpr{Base: p.newBase(lo), Op: binOps[opTok.Type], Left: left, Right: right}
		p.closeBase(&b.Base, lo)
		left = b
	}
}

// parseCast handles `expr as T`, which binds tighter than any binary
// operator but looser than unary/postfix.
func (p *Parser) parseCast() ast.Expr {
	lo := p.cur()
	e := p.parseUnary()
	for p.at(lexer.AS) {
		p.advance()
		ty := p.parseType()
		c := &ast.CastExpr{Base: p.newBase(lo), Expr: e, Type: ty}
		p.closeBase(&c.Base, lo)
		e = c
	}
	return e
}

func (p *Parser) parseUnary() ast.Expr {
	lo := p.cur()
	switch p.cur().Type {
	case lexer.MINUS:
		p.advance()
		u := &ast.UnaryExpr{Base: p.newBase(lo), Op: ast.OpNeg, Expr: p.parseUnary()}
		p.closeBase(&u.Base, lo)
		return u
	case lexer.BANG:
		p.advance()
		u := &ast.UnaryExpr{Base: p.newBase(lo), Op: ast.OpNot, Expr: p.parseUnary()}
		p.closeBase(&u.Base, lo)
		return u
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles calls, array/tuple/member access, and const-generic
// call arguments `f[3u32](xs)`, left-to-right after a primary expression.
func (p *Parser) parsePostfix() ast.Expr {
	lo := p.cur()
	e := p.parsePrimary()
	for {
		switch p.cur().Type {
		case lexer.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.RBRACKET)
			a := &ast.ArrayAccessExpr{Base: p.newBase(lo), Array: e, Index: idx}
			p.closeBase(&a.Base, lo)
			e = a

		case lexer.LPAREN:
			p.advance()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseExpr())
				if p.at(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RPAREN)
			c := &ast.CallExpr{Base: p.newBase(lo), Callee: e, Arguments: args}
			p.closeBase(&c.Base, lo)
			e = c

		case lexer.DOT:
			p.advance()
			if p.at(lexer.INT) {
				idx := parseTupleIndex(p.cur().Literal)
				p.advance()
				t := &ast.TupleAccessExpr{Base: p.newBase(lo), Tuple: e, Index: idx}
				p.closeBase(&t.Base, lo)
				e = t
			} else {
				name := p.intern(p.cur())
				p.advance()
				m := &ast.MemberAccessExpr{Base: p.newBase(lo), Receiver: e, Member: name}
				p.closeBase(&m.Base, lo)
				e = m
			}

		default:
			return e
		}
	}
}

func parseTupleIndex(lit string) int {
	n := 0
	for i := 0; i < len(lit); i++ {
		if lit[i] < '0' || lit[i] > '9' {
			break
		}
		n = n*10 + int(lit[i]-'0')
	}
	return n
}

// parseConstCallArgsIfPresent parses `[3u32, true]` const-generic arguments
// preceding a call's value arguments, used for inline-function
// monomorphization sites (spec.md §4.I.8). A `[...]` not followed by `(`
// is left untouched for parsePostfix to read as an array access.
func (p *Parser) parseConstCallArgsIfPresent(callee ast.Expr) ast.Expr {
	if !p.at(lexer.LBRACKET) {
		return callee
	}
	depth, i := 0, p.pos
	for ; i < len(p.toks); i++ {
		if p.toks[i].Type == lexer.LBRACKET {
			depth++
		} else if p.toks[i].Type == lexer.RBRACKET {
			if depth--; depth == 0 {
				break
			}
		}
	}
	if i+1 >= len(p.toks) || p.toks[i+1].Type != lexer.LPAREN {
		return callee
	}
	lo := p.cur()
	p.advance()
	var constArgs []ast.Expr
	for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
		constArgs = append(constArgs, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACKET)
	if _, ok := p.expect(lexer.LPAREN); !ok {
		return callee
	}
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	c := &ast.CallExpr{Base: p.newBase(lo), Callee: callee, Arguments: args, ConstArguments: constArgs}
	p.closeBase(&c.Base, lo)
	return c
}

func (p *Parser) parsePrimary() ast.Expr {
	lo := p.cur()
	switch p.cur().Type {
	case lexer.INT:
		lit := p.advance().Literal
		kind, val, sub := splitIntLiteral(lit)
		l := &ast.Literal{Base: p.newBase(lo), Kind: kind, Value: val, Subtype: sub}
		p.closeBase(&l.Base, lo)
		return l

	case lexer.TRUE, lexer.FALSE:
		lit := p.advance().Literal
		l := &ast.Literal{Base: p.newBase(lo), Kind: ast.LitBool, Value: lit}
		p.closeBase(&l.Base, lo)
		return l

	case lexer.STRING:
		lit := p.advance().Literal
		l := &ast.Literal{Base: p.newBase(lo), Kind: ast.LitString, Value: lit}
		p.closeBase(&l.Base, lo)
		return l

	case lexer.CHAR:
		lit := p.advance().Literal
		l := &ast.Literal{Base: p.newBase(lo), Kind: ast.LitChar, Value: lit}
		p.closeBase(&l.Base, lo)
		return l

	case lexer.SELF:
		p.advance()
		if p.at(lexer.DOT) {
			p.advance()
			field := p.cur()
			name := p.intern(field)
			p.advance()
			intr := &ast.IntrinsicCallExpr{Base: p.newBase(lo), Name: "self." + session.Resolve(name)}
			p.closeBase(&intr.Base, lo)
			return intr
		}
		pe := &ast.PathExpr{Base: p.newBase(lo), Segments: []session.Symbol{p.intern(lo)}}
		p.closeBase(&pe.Base, lo)
		return pe

	case lexer.LOCATOR:
		// `other.aleo/transfer` names a function/mapping belonging to an
		// imported program directly, fully qualified already: unlike a
		// bare PATH or IDENT, path resolution never needs to search the
		// current program or its lexical scopes for this, so Global is
		// set here rather than left for internal/passes/resolve.
		prog, name := splitLocatorLiteral(p.cur())
		p.advance()
		loc := &ast.Location{Program: prog, Path: []session.Symbol{name}}
		pe := &ast.PathExpr{Base: p.newBase(lo), Segments: []session.Symbol{prog, name}, Global: loc}
		p.closeBase(&pe.Base, lo)
		return pe

	case lexer.IDENT, lexer.PATH:
		segs := splitPathLiteral(p.cur())
		p.advance()
		pe := &ast.PathExpr{Base: p.newBase(lo), Segments: segs}
		p.closeBase(&pe.Base, lo)
		var e ast.Expr = pe
		if name := pathIntrinsicName(segs); name != "" && p.at(lexer.LPAREN) {
			p.advance()
			var args []ast.Expr
			for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
				args = append(args, p.parseExpr())
				if p.at(lexer.COMMA) {
					p.advance()
				}
			}
			p.expect(lexer.RPAREN)
			ic := &ast.IntrinsicCallExpr{Base: p.newBase(lo), Name: name, Arguments: args}
			p.closeBase(&ic.Base, lo)
			return ic
		}
		if p.at(lexer.LBRACE) && looksLikeStructLit(p) {
			return p.parseStructLit(pe, lo)
		}
		return p.parseConstCallArgsIfPresent(e)

	case lexer.LPAREN:
		p.advance()
		var elems []ast.Expr
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseExpr())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
		if len(elems) == 0 {
			u := &ast.UnitExpr{Base: p.newBase(lo)}
			p.closeBase(&u.Base, lo)
			return u
		}
		if len(elems) == 1 {
			return elems[0]
		}
		t := &ast.TupleLit{Base: p.newBase(lo), Elements: elems}
		p.closeBase(&t.Base, lo)
		return t

	case lexer.LBRACKET:
		p.advance()
		var elems []ast.Expr
		for !p.at(lexer.RBRACKET) && !p.at(lexer.EOF) {
			elems = append(elems, p.parseExpr())
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RBRACKET)
		a := &ast.ArrayLit{Base: p.newBase(lo), Elements: elems}
		p.closeBase(&a.Base, lo)
		return a

	default:
		p.errorf(diag.ParUnexpectedToken, p.cur(), "expected an expression, found %q", p.cur().Literal)
		p.advance()
		return &ast.UnitExpr{Base: p.newBase(lo)}
	}
}

func (p *Parser) parseStructLit(name *ast.PathExpr, lo lexer.Token) ast.Expr {
	p.advance() // {
	var fields []ast.StructLitField
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fname := p.intern(p.cur())
		p.advance()
		var val ast.Expr
		if p.at(lexer.COLON) {
			p.advance()
			val = p.parseExpr()
		} else {
			// field-init shorthand `{ x }` == `{ x: x }`
			val = &ast.PathExpr{Base: p.newBase(p.toks[p.pos-1]), Segments: []session.Symbol{fname}}
		}
		fields = append(fields, ast.StructLitField{Name: fname, Value: val})
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	nm := session.Symbol(0)
	if len(name.Segments) > 0 {
		nm = name.Segments[len(name.Segments)-1]
	}
	s := &ast.StructLit{Base: p.newBase(lo), Name: nm, Fields: fields}
	p.closeBase(&s.Base, lo)
	return s
}

// looksLikeStructLit disambiguates `if cond { ... }` (not a literal) from
// `Point { x: 1 }` (a literal): with the current token at `{`, it is a
// literal only when an identifier follows and that identifier is followed
// by `:`, `,` or `}` (a field init or field-init shorthand). An empty
// `{ }` is read as a block.
func looksLikeStructLit(p *Parser) bool {
	if p.peek(1).Type != lexer.IDENT {
		return false
	}
	switch p.peek(2).Type {
	case lexer.COLON, lexer.COMMA, lexer.RBRACE:
		return true
	}
	return false
}

func pathIntrinsicName(segs []session.Symbol) string {
	if len(segs) < 2 {
		return ""
	}
	full := session.Resolve(segs[0])
	for _, s := range segs[1:] {
		full += "::" + session.Resolve(s)
	}
	if intrinsicNames[full] {
		return full
	}
	return ""
}

// splitPathLiteral turns a PATH token's "a::b::c" literal (or a plain
// IDENT) into interned segments.
func splitPathLiteral(tok lexer.Token) []session.Symbol {
	lit := tok.Literal
	var segs []session.Symbol
	start := 0
	for i := 0; i+1 < len(lit); i++ {
		if lit[i] == ':' && lit[i+1] == ':' {
			segs = append(segs, session.Intern(lit[start:i]))
			i++
			start = i + 1
		}
	}
	segs = append(segs, session.Intern(lit[start:]))
	return segs
}

// splitLocatorLiteral splits a LOCATOR token's "other.aleo/name" literal
// into its program-id and local-name symbols.
func splitLocatorLiteral(tok lexer.Token) (program, name session.Symbol) {
	lit := tok.Literal
	for i := 0; i < len(lit); i++ {
		if lit[i] == '/' {
			return session.Intern(lit[:i]), session.Intern(lit[i+1:])
		}
	}
	return session.Intern(lit), session.Intern("")
}

func splitIntLiteral(lit string) (ast.LiteralKind, string, string) {
	i := 0
	for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
		i++
	}
	digits, suffix := lit[:i], lit[i:]
	switch suffix {
	case "field":
		return ast.LitField, digits, suffix
	case "group":
		return ast.LitGroup, digits, suffix
	case "scalar":
		return ast.LitScalar, digits, suffix
	case "":
		return ast.LitInt, digits, ""
	default:
		return ast.LitInt, digits, suffix
	}
}
