package parser

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"capycop/internal/ast"
	"capycop/internal/lexer"
	"capycop/internal/source"
	"capycop/internal/token"
)

// ParseError reports malformed source. Parsing stops at the first error and
// no partial tree is returned.
type ParseError struct {
	Span source.Span
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Span.Start, e.Msg)
}

// bailout carries a ParseError up the recursive descent to ParseFile.
type bailout struct{ err *ParseError }

// Parser: состояние парсера на один файл
type Parser struct {
	file   *source.File
	toks   []token.Token
	pos    int
	prev   token.Token // последний съеденный токен, для конца спанов
	scopes []scope
	noDo   bool // внутри аргументов команды do-блок принадлежит внешнему вызову
	depth  int
}

// maxDepth bounds recursion so hostile input fails cleanly instead of
// exhausting the stack.
const maxDepth = 512

// ParseFile is the entry point for one source file. The returned root is a
// single statement node, or a begin node when the file holds several (or
// no) statements.
func ParseFile(file *source.File) (root *ast.Node, err error) {
	errs := &lexer.ErrorCollector{}
	lx := lexer.New(file, lexer.Options{Reporter: errs})
	toks := lx.All()
	if len(errs.Errors) > 0 {
		first := errs.Errors[0]
		return nil, &ParseError{Span: first.Span, Msg: first.Msg}
	}

	p := &Parser{
		file:   file,
		toks:   toks,
		scopes: []scope{newScope(false)},
	}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			root, err = nil, b.err
		}
	}()

	stmts := p.parseStmts(token.EOF)
	p.expect(token.EOF, "end of input")

	end, convErr := safecast.Conv[uint32](len(file.Content))
	if convErr != nil {
		return nil, fmt.Errorf("file too large: %w", convErr)
	}
	fileSpan := source.Span{File: file.ID, Start: 0, End: end}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	return ast.NewNode(ast.Begin, fileSpan, toChildren(stmts)...), nil
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

// peekAt looks n tokens ahead; past the end it returns EOF.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) advance() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	p.prev = tok
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) token.Token {
	if !p.at(k) {
		p.failAt(p.peek(), "expected "+what)
	}
	return p.advance()
}

func (p *Parser) skipNewlines() {
	for p.atOr(token.Newline, token.Semicolon) {
		p.advance()
	}
}

func (p *Parser) skipLineBreaks() {
	for p.at(token.Newline) {
		p.advance()
	}
}

func (p *Parser) failAt(tok token.Token, msg string) {
	if tok.Kind == token.EOF {
		msg += ", found end of input"
	} else {
		msg += fmt.Sprintf(", found %s", describe(tok))
	}
	p.fail(tok.Span, msg)
}

func (p *Parser) fail(sp source.Span, msg string) {
	panic(bailout{err: &ParseError{Span: sp, Msg: msg}})
}

func (p *Parser) enter() {
	p.depth++
	if p.depth > maxDepth {
		p.fail(p.peek().Span, "expression nesting too deep")
	}
}

func (p *Parser) leave() { p.depth-- }

// spanFrom covers start up to the end of the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.prev.Span)
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.Newline:
		return "newline"
	case token.Ident, token.Const, token.IVar, token.Label, token.StringLit, token.SymbolLit, token.IntLit, token.FloatLit:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Text)
	default:
		return fmt.Sprintf("%q", tok.Kind.String())
	}
}

func toChildren(nodes []*ast.Node) []ast.Child {
	out := make([]ast.Child, len(nodes))
	for i, n := range nodes {
		if n == nil {
			out[i] = nil
			continue
		}
		out[i] = n
	}
	return out
}

// optional converts a possibly nil node into a child slot without creating
// a typed nil interface.
func optional(n *ast.Node) ast.Child {
	if n == nil {
		return nil
	}
	return n
}
