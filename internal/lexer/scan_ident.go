package lexer

import (
	"capycop/internal/token"
)

// scanIdentOrKeyword scans an identifier, its optional ?/! suffix and a
// trailing label colon. Token.Text is exactly the source slice.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	lx.bumpWord()
	lx.eatMethodSuffix()

	if lx.eatLabelColon() {
		return lx.make(token.Label, start)
	}

	tok := lx.make(token.Ident, start)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		// после точки ключевые слова это обычные методы (foo.end), это решает парсер
		tok.Kind = k
	}
	return tok
}

func (lx *Lexer) scanConst() token.Token {
	start := lx.cursor.Mark()
	lx.bumpWord()
	if lx.eatLabelColon() {
		return lx.make(token.Label, start)
	}
	return lx.make(token.Const, start)
}

func (lx *Lexer) scanIVar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '@'
	lx.cursor.Eat('@')
	if !isIdentStartByte(lx.cursor.Peek()) && !isUpper(lx.cursor.Peek()) {
		sp := lx.cursor.SpanFrom(start)
		lx.report(sp, "'@' without identifiers is not allowed as an instance variable name")
		return lx.make(token.Invalid, start)
	}
	lx.bumpWord()
	return lx.make(token.IVar, start)
}

func (lx *Lexer) bumpWord() {
	lx.cursor.Bump()
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
}

// eatMethodSuffix attaches a directly following ? or ! unless it starts an
// operator such as != or ?=.
func (lx *Lexer) eatMethodSuffix() {
	b := lx.cursor.Peek()
	if (b == '?' || b == '!') && lx.cursor.PeekAt(1) != '=' {
		lx.cursor.Bump()
	}
}

func (lx *Lexer) eatLabelColon() bool {
	if lx.cursor.Peek() == ':' && lx.cursor.PeekAt(1) != ':' {
		lx.cursor.Bump()
		return true
	}
	return false
}
