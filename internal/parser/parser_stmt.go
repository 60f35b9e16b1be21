package parser

import (
	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/lexer"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

func (p *Parser) parseBlock() *ast.BlockStmt {
	lo := p.cur()
	p.expect(lexer.LBRACE)
	var stmts []ast.Stmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(lexer.RBRACE)
	b := &ast.BlockStmt{Base: p.newBase(lo), Statements: stmts}
	p.closeBase(&b.Base, lo)
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	lo := p.cur()
	switch p.cur().Type {
	case lexer.LET, lexer.CONST:
		return p.parseDefinitionStmt()

	case lexer.LBRACE:
		return p.parseBlock()

	case lexer.IF:
		return p.parseConditional()

	case lexer.FOR:
		return p.parseIteration()

	case lexer.RETURN:
		p.advance()
		var val ast.Expr
		if !p.at(lexer.SEMICOLON) {
			val = p.parseExpr()
		}
		p.expect(lexer.SEMICOLON)
		r := &ast.ReturnStmt{Base: p.newBase(lo), Value: val}
		p.closeBase(&r.Base, lo)
		return r

	case lexer.CONSOLE:
		return p.parseConsoleDotStmt()

	case lexer.ASSERT:
		return p.parseConsoleStmt(ast.ConsoleAssert)
	case lexer.ASSERT_EQ:
		return p.parseConsoleStmt(ast.ConsoleAssertEq)
	case lexer.ASSERT_NEQ:
		return p.parseConsoleStmt(ast.ConsoleAssertNeq)

	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseConsoleDotStmt handles the legacy `console.assert(...)`,
// `console.assert_eq(...)`, `console.assert_neq(...)`, and `console.log(...)`
// forms into the same ConsoleStmt shape that parseConsoleStmt builds for
// the bare `assert(...)`/`assert_eq(...)`/`assert_neq(...)` forms, so every
// downstream pass sees one ConsoleStmt shape. Bang forms such as
// `assert_eq!(...)` are not accepted.
func (p *Parser) parseConsoleDotStmt() ast.Stmt {
	lo := p.cur()
	p.advance() // console
	p.expect(lexer.DOT)
	nameTok := p.cur()
	var kind ast.ConsoleKind
	switch nameTok.Literal {
	case "assert":
		kind = ast.ConsoleAssert
	case "assert_eq":
		kind = ast.ConsoleAssertEq
	case "assert_neq":
		kind = ast.ConsoleAssertNeq
	case "log":
		kind = ast.ConsoleLog
	default:
		p.errorf(diag.ParUnexpectedToken, nameTok, "unknown console method %q", nameTok.Literal)
	}
	p.advance()
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.SEMICOLON)
	c := &ast.ConsoleStmt{Base: p.newBase(lo), Kind: kind, Args: args}
	p.closeBase(&c.Base, lo)
	return c
}

func (p *Parser) parseConsoleStmt(kind ast.ConsoleKind) ast.Stmt {
	lo := p.cur()
	p.advance() // assert / assert_eq / assert_neq keyword
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
		if p.at(lexer.COMMA) {
			p.advance()
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.SEMICOLON)
	c := &ast.ConsoleStmt{Base: p.newBase(lo), Kind: kind, Args: args}
	p.closeBase(&c.Base, lo)
	return c
}

// parseDefinitionStmt handles `let x: T = e;`, `const x: T = e;`, and tuple
// destructuring `let (a, b): (T1, T2) = e;` / `let (a, b) = e;`.
func (p *Parser) parseDefinitionStmt() ast.Stmt {
	lo := p.cur()
	kind := ast.DeclLet
	if p.at(lexer.CONST) {
		kind = ast.DeclConst
	}
	p.advance()

	var names []session.Symbol
	var types []ast.TypeExpr
	if p.at(lexer.LPAREN) {
		p.advance()
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			names = append(names, p.intern(p.cur()))
			p.advance()
			var ty ast.TypeExpr
			if p.at(lexer.COLON) {
				p.advance()
				ty = p.parseType()
			}
			types = append(types, ty)
			if p.at(lexer.COMMA) {
				p.advance()
			}
		}
		p.expect(lexer.RPAREN)
	} else {
		names = append(names, p.intern(p.cur()))
		p.advance()
		var ty ast.TypeExpr
		if p.at(lexer.COLON) {
			p.advance()
			ty = p.parseType()
		}
		types = append(types, ty)
	}

	p.expect(lexer.ASSIGN)
	val := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	d := &ast.DefinitionStmt{Base: p.newBase(lo), Kind: kind, Names: names, Types: types, Value: val}
	p.closeBase(&d.Base, lo)
	return d
}

func (p *Parser) parseConditional() ast.Stmt {
	lo := p.cur()
	p.advance() // if
	cond := p.parseExpr()
	then := p.parseBlock()
	var els *ast.BlockStmt
	if p.at(lexer.ELSE) {
		p.advance()
		if p.at(lexer.IF) {
			innerLo := p.cur()
			inner := p.parseConditional()
			els = &ast.BlockStmt{Base: p.newBase(innerLo), Statements: []ast.Stmt{inner}}
			p.closeBase(&els.Base, innerLo)
		} else {
			els = p.parseBlock()
		}
	}
	c := &ast.ConditionalStmt{Base: p.newBase(lo), Cond: cond, Then: then, Else: els}
	p.closeBase(&c.Base, lo)
	return c
}

func (p *Parser) parseIteration() ast.Stmt {
	lo := p.cur()
	p.advance() // for
	varName := p.intern(p.cur())
	p.advance()
	p.expect(lexer.COLON)
	varType := p.parseType()
	p.expect(lexer.IN)
	start := p.parseExpr()
	inclusive := false
	if p.at(lexer.DOTDOTEQ) {
		inclusive = true
		p.advance()
	} else {
		p.expect(lexer.DOTDOT)
	}
	stop := p.parseExpr()
	body := p.parseBlock()
	it := &ast.IterationStmt{
		Base: p.newBase(lo), Variable: varName, VarType: varType,
		Start: start, Stop: stop, Inclusive: inclusive, Body: body,
	}
	p.closeBase(&it.Base, lo)
	return it
}

// parseExprOrAssignStmt parses a leading expression and then decides
// between a bare ExprStmt (a call used for effect) and an AssignStmt
// (expression is a valid place followed by `=`).
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	lo := p.cur()
	e := p.parseExpr()
	if p.at(lexer.ASSIGN) {
		p.advance()
		val := p.parseExpr()
		p.expect(lexer.SEMICOLON)
		a := &ast.AssignStmt{Base: p.newBase(lo), Place: e, Value: val}
		p.closeBase(&a.Base, lo)
		return a
	}
	p.expect(lexer.SEMICOLON)
	s := &ast.ExprStmt{Base: p.newBase(lo), Expr: e}
	p.closeBase(&s.Base, lo)
	return s
}
