package lexer

import (
	"capycop/internal/source"
	"capycop/internal/token"
)

// Lexer turns a source file into tokens on demand.
type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token // 1 элементный буфер для токена
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	spaced := lx.skipBlanks()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '\n':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		tok = lx.make(token.Newline, start)
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isUpper(ch):
		tok = lx.scanConst()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"' || ch == '\'':
		tok = lx.scanString(ch)
	case ch == '@':
		tok = lx.scanIVar()
	case ch == ':' && lx.startsSymbol():
		tok = lx.scanSymbol()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	if spaced {
		tok.Flags |= token.SpaceBefore
	}
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// All drains the lexer, returning every token up to and including EOF.
func (lx *Lexer) All() []token.Token {
	out := make([]token.Token, 0, len(lx.file.Content)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// EmptySpan returns a zero-length span at the cursor.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) make(kind token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
