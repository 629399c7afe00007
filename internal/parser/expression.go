package parser

import (
	"strings"

	"capycop/internal/ast"
	"capycop/internal/token"
)

// parseExpr is the argument-level expression: assignment or ternary.
func (p *Parser) parseExpr() *ast.Node {
	p.enter()
	defer p.leave()

	tok := p.peek()
	if p.peekAt(1).Kind == token.Assign {
		switch {
		case tok.Kind == token.Ident && isAssignableName(tok.Text):
			p.advance()
			p.advance()
			p.skipLineBreaks()
			// the name is visible inside its own initializer, `x = x` reads nil
			p.declare(tok.Text)
			value := p.parseExpr()
			return ast.NewNode(ast.LVAsgn, tok.Span.Cover(value.Span()), ast.SymAtom(tok.Text, tok.Span), value)
		case tok.Kind == token.IVar:
			p.advance()
			p.advance()
			p.skipLineBreaks()
			value := p.parseExpr()
			return ast.NewNode(ast.IVAsgn, tok.Span.Cover(value.Span()), ast.SymAtom(tok.Text, tok.Span), value)
		}
	}
	return p.parseTernary()
}

func isAssignableName(name string) bool {
	return !strings.HasSuffix(name, "?") && !strings.HasSuffix(name, "!")
}

func (p *Parser) parseTernary() *ast.Node {
	cond := p.parseBinaryExpr(0)
	if !p.at(token.Question) {
		return cond
	}
	p.advance()
	p.skipLineBreaks()
	then := p.parseTernary()
	p.skipLineBreaks()
	p.expect(token.Colon, "':' in conditional expression")
	p.skipLineBreaks()
	alt := p.parseTernary()
	return ast.NewNode(ast.If, cond.Span().Cover(alt.Span()), cond, then, alt)
}

// parseBinaryExpr: Pratt по таблице приоритетов
func (p *Parser) parseBinaryExpr(minPrec int) *ast.Node {
	left := p.parseUnary()
	for {
		tok := p.peek()
		prec := getBinaryOperatorPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			return left
		}
		op := p.advance()
		p.skipLineBreaks()
		right := p.parseBinaryExpr(prec + 1)
		sp := left.Span().Cover(right.Span())
		switch op.Kind {
		case token.OrOr:
			left = ast.NewNode(ast.Or, sp, left, right)
		case token.AndAnd:
			left = ast.NewNode(ast.And, sp, left, right)
		default:
			left = ast.NewNode(ast.Send, sp, left, ast.SymAtom(op.Text, op.Span), right)
		}
	}
}

func (p *Parser) parseUnary() *ast.Node {
	p.enter()
	defer p.leave()

	tok := p.peek()
	switch tok.Kind {
	case token.Bang:
		p.advance()
		operand := p.parseUnary()
		return ast.NewNode(ast.Send, tok.Span.Cover(operand.Span()), operand, ast.SymAtom("!", tok.Span))
	case token.Minus, token.Plus:
		p.advance()
		next := p.peek()
		if tok.Kind == token.Minus && (next.Kind == token.IntLit || next.Kind == token.FloatLit) && !next.Has(token.SpaceBefore) {
			return p.parsePostfix(p.parseNumber(&tok))
		}
		operand := p.parseUnary()
		return ast.NewNode(ast.Send, tok.Span.Cover(operand.Span()), operand, ast.SymAtom(tok.Text+"@", tok.Span))
	}
	return p.parsePostfix(p.parsePrimary())
}
