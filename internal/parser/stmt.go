package parser

import (
	"capycop/internal/ast"
	"capycop/internal/source"
	"capycop/internal/token"
)

// parseStmts reads statements separated by newlines or ';' until one of the
// terminators (or EOF) is next. The terminator is left unconsumed.
func (p *Parser) parseStmts(terminators ...token.Kind) []*ast.Node {
	var out []*ast.Node
	for {
		p.skipNewlines()
		if p.at(token.EOF) || p.atOr(terminators...) {
			return out
		}
		out = append(out, p.parseStmt())
		if p.at(token.EOF) || p.atOr(terminators...) || p.atOr(token.Newline, token.Semicolon) {
			continue
		}
		p.failAt(p.peek(), "expected newline or ';' after statement")
	}
}

// parseBody wraps a statement list the way bodies are stored: nil when
// empty, the statement itself when single, begin otherwise.
func (p *Parser) parseBody(terminators ...token.Kind) *ast.Node {
	stmts := p.parseStmts(terminators...)
	switch len(stmts) {
	case 0:
		return nil
	case 1:
		return stmts[0]
	default:
		sp := stmts[0].Span().Cover(stmts[len(stmts)-1].Span())
		return ast.NewNode(ast.Begin, sp, toChildren(stmts)...)
	}
}

// parseStmt handles trailing `if`/`unless` modifiers.
func (p *Parser) parseStmt() *ast.Node {
	p.enter()
	defer p.leave()

	n := p.parseExprStmt()
	for p.atOr(token.KwIf, token.KwUnless) {
		kw := p.advance()
		cond := p.parseExprStmt()
		sp := n.Span().Cover(cond.Span())
		if kw.Kind == token.KwIf {
			n = ast.NewNode(ast.If, sp, cond, n, nil)
		} else {
			n = ast.NewNode(ast.If, sp, cond, nil, n)
		}
	}
	return n
}

// parseExprStmt is the loosest expression level: `and`, `or`, `not`.
func (p *Parser) parseExprStmt() *ast.Node {
	left := p.parseNotExpr()
	for p.atOr(token.KwAnd, token.KwOr) {
		op := p.advance()
		p.skipLineBreaks()
		right := p.parseNotExpr()
		cat := ast.And
		if op.Kind == token.KwOr {
			cat = ast.Or
		}
		left = ast.NewNode(cat, left.Span().Cover(right.Span()), left, right)
	}
	return left
}

func (p *Parser) parseNotExpr() *ast.Node {
	if !p.at(token.KwNot) {
		return p.parseExpr()
	}
	kw := p.advance()
	operand := p.parseNotExpr()
	return ast.NewNode(ast.Send, kw.Span.Cover(operand.Span()), operand, ast.SymAtom("!", kw.Span))
}

// parseConditional parses if/unless/elsif ... end. An elsif chain nests as
// the else branch and shares the closing `end`.
func (p *Parser) parseConditional() *ast.Node {
	p.enter()
	defer p.leave()

	kw := p.advance()
	cond := p.parseExprStmt()
	p.eat(token.KwThen)
	body := p.parseBody(token.KwElsif, token.KwElse, token.KwEnd)

	var alt *ast.Node
	switch {
	case p.at(token.KwElsif):
		if kw.Kind == token.KwUnless {
			p.failAt(p.peek(), "unexpected elsif in unless")
		}
		alt = p.parseConditional()
	default:
		if p.eat(token.KwElse) {
			alt = p.parseBody(token.KwEnd)
		}
		p.expect(token.KwEnd, "'end' to close conditional")
	}

	sp := p.spanFrom(kw.Span)
	if kw.Kind == token.KwUnless {
		return ast.NewNode(ast.If, sp, cond, optional(alt), optional(body))
	}
	return ast.NewNode(ast.If, sp, cond, optional(body), optional(alt))
}

func (p *Parser) parseDef() *ast.Node {
	kw := p.advance()
	name := p.peek()
	switch {
	case name.Kind == token.Ident || name.Kind == token.Const || name.IsKeyword():
		p.advance()
	default:
		p.failAt(name, "expected method name after def")
	}
	nameText := name.Text
	if p.at(token.Assign) && !p.peek().Has(token.SpaceBefore) && name.Kind == token.Ident {
		eq := p.advance()
		nameText += "="
		name.Span = name.Span.Cover(eq.Span)
	}

	p.pushScope(true)
	defer p.popScope()

	var params *ast.Node
	switch {
	case p.at(token.LParen):
		open := p.advance()
		list := p.parseParamList(token.RParen)
		p.expect(token.RParen, "')' to close parameter list")
		params = ast.NewNode(ast.Args, p.spanFrom(open.Span), toChildren(list)...)
	case p.at(token.Ident):
		list := p.parseParamList(token.Newline, token.Semicolon)
		params = ast.NewNode(ast.Args, list[0].Span().Cover(list[len(list)-1].Span()), toChildren(list)...)
	default:
		params = ast.NewNode(ast.Args, emptyAfter(name.Span))
	}

	body := p.parseBody(token.KwEnd)
	p.expect(token.KwEnd, "'end' to close method definition")
	return ast.NewNode(ast.Def, p.spanFrom(kw.Span), ast.SymAtom(nameText, name.Span), params, optional(body))
}

// parseParamList reads `a, *rest, &blk` up to (not including) a closer.
func (p *Parser) parseParamList(closers ...token.Kind) []*ast.Node {
	var out []*ast.Node
	p.skipLineBreaksUnless(closers...)
	for !p.atOr(closers...) {
		start := p.peek().Span
		if p.atOr(token.Star, token.Amp) {
			p.advance()
		}
		tok := p.expect(token.Ident, "parameter name")
		p.declare(tok.Text)
		out = append(out, ast.NewNode(ast.Arg, p.spanFrom(start), ast.SymAtom(tok.Text, tok.Span)))
		if !p.eat(token.Comma) {
			break
		}
		p.skipLineBreaks()
	}
	p.skipLineBreaksUnless(closers...)
	return out
}

// skipLineBreaksUnless skips newlines when a newline does not itself close
// the construct being parsed.
func (p *Parser) skipLineBreaksUnless(closers ...token.Kind) {
	for _, k := range closers {
		if k == token.Newline {
			return
		}
	}
	p.skipLineBreaks()
}

func (p *Parser) parseReturn() *ast.Node {
	kw := p.advance()
	if p.atOr(token.Newline, token.Semicolon, token.EOF, token.KwEnd, token.RBrace, token.RParen,
		token.KwIf, token.KwUnless, token.KwAnd, token.KwOr) {
		return ast.NewNode(ast.Return, kw.Span)
	}
	value := p.parseExpr()
	return ast.NewNode(ast.Return, kw.Span.Cover(value.Span()), value)
}

// emptyAfter is a zero-width span right after sp, used for implicit nodes
// such as an omitted parameter list.
func emptyAfter(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}
