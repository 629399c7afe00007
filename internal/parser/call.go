package parser

import (
	"capycop/internal/ast"
	"capycop/internal/source"
	"capycop/internal/token"
)

func (p *Parser) parsePrimary() *ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLit, token.FloatLit:
		return p.parseNumber(nil)
	case token.StringLit:
		return p.parseString()
	case token.SymbolLit:
		return p.parseSymbol()
	case token.KwNil:
		p.advance()
		return ast.NewNode(ast.Nil, tok.Span)
	case token.KwTrue:
		p.advance()
		return ast.NewNode(ast.True, tok.Span)
	case token.KwFalse:
		p.advance()
		return ast.NewNode(ast.False, tok.Span)
	case token.KwSelf:
		p.advance()
		return ast.NewNode(ast.Self, tok.Span)
	case token.IVar:
		p.advance()
		return ast.NewNode(ast.IVar, tok.Span, ast.SymAtom(tok.Text, tok.Span))
	case token.Const:
		p.advance()
		if p.at(token.LParen) && !p.peek().Has(token.SpaceBefore) {
			// Integer("1") style conversion call
			return p.parseCallRest(ast.Send, nil, tok, tok.Span)
		}
		return ast.NewNode(ast.Const, tok.Span, nil, ast.SymAtom(tok.Text, tok.Span))
	case token.Ident:
		return p.parseIdentifier()
	case token.LParen:
		return p.parseParen()
	case token.LBracket:
		return p.parseArray()
	case token.LBrace:
		return p.parseHash()
	case token.KwIf, token.KwUnless:
		return p.parseConditional()
	case token.KwDef:
		return p.parseDef()
	case token.KwReturn:
		return p.parseReturn()
	}
	p.failAt(tok, "expected expression")
	return nil
}

// parseIdentifier resolves the local-variable/method-call ambiguity: a
// known local is a read unless immediately followed by '('.
func (p *Parser) parseIdentifier() *ast.Node {
	tok := p.advance()
	callParens := p.at(token.LParen) && !p.peek().Has(token.SpaceBefore)
	if p.isLocal(tok.Text) && !callParens {
		return ast.NewNode(ast.LVar, tok.Span, ast.SymAtom(tok.Text, tok.Span))
	}
	return p.parseCallRest(ast.Send, nil, tok, tok.Span)
}

// parseCallRest parses the arguments and optional block of a call whose
// receiver and method name were already consumed.
func (p *Parser) parseCallRest(cat ast.Category, recv *ast.Node, name token.Token, start source.Span) *ast.Node {
	children := []ast.Child{optional(recv), ast.SymAtom(name.Text, name.Span)}
	switch {
	case p.at(token.LParen) && !p.peek().Has(token.SpaceBefore):
		p.advance()
		saved := p.noDo
		p.noDo = false
		children = append(children, p.parseArgList(token.RParen)...)
		p.noDo = saved
		p.expect(token.RParen, "')' to close argument list")
	case p.startsCommandArgs():
		saved := p.noDo
		p.noDo = true
		children = append(children, p.parseCommandArgs()...)
		p.noDo = saved
	}
	call := ast.NewNode(cat, p.spanFrom(start), children...)
	return p.parseBlock(call)
}

// startsCommandArgs decides whether a call is followed by arguments written
// without parentheses. Ruby uses the space before the token for this:
// `foo -1` and `foo *args` pass arguments, `foo - 1` subtracts.
func (p *Parser) startsCommandArgs() bool {
	tok := p.peek()
	if !tok.Has(token.SpaceBefore) {
		return false
	}
	if tok.StartsArgument() {
		return true
	}
	switch tok.Kind {
	case token.Star, token.Amp, token.Minus:
		return !p.peekAt(1).Has(token.SpaceBefore)
	}
	return false
}

func (p *Parser) parseArgList(closer token.Kind) []ast.Child {
	var args argAccumulator
	p.skipLineBreaks()
	for !p.at(closer) {
		p.parseArgInto(&args)
		p.skipLineBreaks()
		if !p.eat(token.Comma) {
			break
		}
		p.skipLineBreaks()
	}
	return args.finish()
}

func (p *Parser) parseCommandArgs() []ast.Child {
	var args argAccumulator
	for {
		p.parseArgInto(&args)
		if !p.eat(token.Comma) {
			break
		}
		p.skipLineBreaks()
	}
	return args.finish()
}

// argAccumulator collects positional arguments, the trailing keyword
// pairs, which become one implicit hash argument, and an optional `&blk`
// that closes the list.
type argAccumulator struct {
	positional []ast.Child
	pairs      []*ast.Node
	block      *ast.Node
}

func (a *argAccumulator) finish() []ast.Child {
	out := a.positional
	if len(a.pairs) > 0 {
		sp := a.pairs[0].Span().Cover(a.pairs[len(a.pairs)-1].Span())
		out = append(out, ast.NewNode(ast.Hash, sp, toChildren(a.pairs)...))
	}
	if a.block != nil {
		out = append(out, a.block)
	}
	return out
}

func (p *Parser) parseArgInto(acc *argAccumulator) {
	tok := p.peek()
	if acc.block != nil {
		p.failAt(tok, "block argument should be the last argument")
	}
	switch tok.Kind {
	case token.Label:
		acc.pairs = append(acc.pairs, p.parseLabelPair())
		return
	case token.Star, token.Amp:
		p.advance()
		value := p.parseTernary()
		sp := tok.Span.Cover(value.Span())
		if tok.Kind == token.Amp {
			acc.block = ast.NewNode(ast.BlockPass, sp, value)
			return
		}
		p.appendPositional(acc, ast.NewNode(ast.Splat, sp, value))
		return
	}

	value := p.parseExpr()
	if p.at(token.FatArrow) {
		p.advance()
		p.skipLineBreaks()
		v := p.parseExpr()
		acc.pairs = append(acc.pairs, ast.NewNode(ast.Pair, value.Span().Cover(v.Span()), value, v))
		return
	}
	p.appendPositional(acc, value)
}

func (p *Parser) appendPositional(acc *argAccumulator, n *ast.Node) {
	if len(acc.pairs) > 0 {
		p.fail(n.Span(), "positional argument after keyword arguments")
	}
	acc.positional = append(acc.positional, n)
}

// parseLabelPair parses `key: value`; the key becomes a sym node.
func (p *Parser) parseLabelPair() *ast.Node {
	label := p.advance()
	keySpan := label.Span
	keySpan.End--
	key := ast.NewLiteral(ast.Sym, keySpan, ast.SymAtom(label.Text[:len(label.Text)-1], keySpan))
	p.skipLineBreaks()
	value := p.parseExpr()
	return ast.NewNode(ast.Pair, label.Span.Cover(value.Span()), key, value)
}

// parsePostfix applies method calls, indexing and scope resolution to n.
func (p *Parser) parsePostfix(n *ast.Node) *ast.Node {
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.Dot || tok.Kind == token.AmpDot:
			p.advance()
			p.skipLineBreaks()
			name := p.peek()
			if name.Kind != token.Ident && name.Kind != token.Const && !name.IsKeyword() {
				p.failAt(name, "expected method name after '"+tok.Text+"'")
			}
			p.advance()
			cat := ast.Send
			if tok.Kind == token.AmpDot {
				cat = ast.CSend
			}
			if name.Kind == token.Ident && isAssignableName(name.Text) && p.at(token.Assign) {
				n = p.parseAttrAssign(cat, n, name)
				continue
			}
			n = p.parseCallRest(cat, n, name, n.Span())
		case tok.Kind == token.ColonColon:
			p.advance()
			name := p.expect(token.Const, "constant name after '::'")
			n = ast.NewNode(ast.Const, n.Span().Cover(name.Span), n, ast.SymAtom(name.Text, name.Span))
		case tok.Kind == token.LBracket && !tok.Has(token.SpaceBefore):
			open := p.advance()
			args := p.parseArgList(token.RBracket)
			p.expect(token.RBracket, "']' to close index")
			if p.at(token.Assign) {
				p.advance()
				p.skipLineBreaks()
				value := p.parseExpr()
				children := append([]ast.Child{n, ast.SymAtom("[]=", open.Span)}, args...)
				children = append(children, value)
				n = ast.NewNode(ast.Send, n.Span().Cover(value.Span()), children...)
				continue
			}
			children := append([]ast.Child{n, ast.SymAtom("[]", open.Span)}, args...)
			n = ast.NewNode(ast.Send, p.spanFrom(n.Span()), children...)
		case tok.Kind == token.Newline && p.continuesOnNextLine():
			p.skipLineBreaks()
		default:
			return n
		}
	}
}

// continuesOnNextLine reports a leading-dot method chain:
//
//	expect(page)
//	  .to have_css(".a")
func (p *Parser) continuesOnNextLine() bool {
	for i := 0; ; i++ {
		switch p.peekAt(i).Kind {
		case token.Newline:
			continue
		case token.Dot, token.AmpDot:
			return true
		default:
			return false
		}
	}
}

// parseAttrAssign builds `recv.name = value` as (send recv :name= value).
func (p *Parser) parseAttrAssign(cat ast.Category, recv *ast.Node, name token.Token) *ast.Node {
	p.advance()
	p.skipLineBreaks()
	value := p.parseExpr()
	return ast.NewNode(cat, recv.Span().Cover(value.Span()), recv, ast.SymAtom(name.Text+"=", name.Span), value)
}

// parseBlock attaches a `{ }` or `do end` block to call. Inside command
// arguments a `do` belongs to the outer call and is left alone.
func (p *Parser) parseBlock(call *ast.Node) *ast.Node {
	var closer token.Kind
	switch {
	case p.at(token.LBrace):
		closer = token.RBrace
	case p.at(token.KwDo) && !p.noDo:
		closer = token.KwEnd
	default:
		return call
	}
	open := p.advance()

	p.pushScope(false)
	defer p.popScope()
	saved := p.noDo
	p.noDo = false
	defer func() { p.noDo = saved }()

	params := p.parseBlockParams(open.Span)
	body := p.parseBody(closer)
	p.expect(closer, "'"+closer.String()+"' to close block")
	return ast.NewNode(ast.Block, p.spanFrom(call.Span()), call, params, optional(body))
}

func (p *Parser) parseBlockParams(open source.Span) *ast.Node {
	p.skipLineBreaks()
	switch {
	case p.at(token.OrOr):
		tok := p.advance()
		return ast.NewNode(ast.Args, tok.Span)
	case p.at(token.Pipe):
		start := p.advance()
		list := p.parseParamList(token.Pipe)
		p.expect(token.Pipe, "'|' to close block parameters")
		return ast.NewNode(ast.Args, p.spanFrom(start.Span), toChildren(list)...)
	default:
		return ast.NewNode(ast.Args, emptyAfter(open))
	}
}

func (p *Parser) parseParen() *ast.Node {
	open := p.advance()
	saved := p.noDo
	p.noDo = false
	stmts := p.parseStmts(token.RParen)
	p.noDo = saved
	p.expect(token.RParen, "')'")
	return ast.NewNode(ast.Begin, p.spanFrom(open.Span), toChildren(stmts)...)
}

func (p *Parser) parseArray() *ast.Node {
	open := p.advance()
	var elems []ast.Child
	p.skipLineBreaks()
	for !p.at(token.RBracket) {
		if p.at(token.Star) {
			star := p.advance()
			v := p.parseTernary()
			elems = append(elems, ast.NewNode(ast.Splat, star.Span.Cover(v.Span()), v))
		} else {
			elems = append(elems, p.parseExpr())
		}
		p.skipLineBreaks()
		if !p.eat(token.Comma) {
			break
		}
		p.skipLineBreaks()
	}
	p.expect(token.RBracket, "']' to close array")
	return ast.NewNode(ast.Array, p.spanFrom(open.Span), elems...)
}

func (p *Parser) parseHash() *ast.Node {
	open := p.advance()
	var pairs []ast.Child
	p.skipLineBreaks()
	for !p.at(token.RBrace) {
		if p.at(token.Label) {
			pairs = append(pairs, p.parseLabelPair())
		} else {
			key := p.parseExpr()
			p.skipLineBreaks()
			p.expect(token.FatArrow, "'=>' in hash literal")
			p.skipLineBreaks()
			value := p.parseExpr()
			pairs = append(pairs, ast.NewNode(ast.Pair, key.Span().Cover(value.Span()), key, value))
		}
		p.skipLineBreaks()
		if !p.eat(token.Comma) {
			break
		}
		p.skipLineBreaks()
	}
	p.expect(token.RBrace, "'}' to close hash")
	return ast.NewNode(ast.Hash, p.spanFrom(open.Span), pairs...)
}
