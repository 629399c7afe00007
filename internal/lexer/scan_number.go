package lexer

import (
	"capycop/internal/token"
)

// scanNumber handles 42, 1_000, 3.14 and 1e9. A dot is part of the number
// only when a digit follows it, so 1.to_s stays a method call.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit
	lx.bumpDigits()

	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		lx.bumpDigits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			kind = token.FloatLit
			lx.cursor.Bump()
			if next == '+' || next == '-' {
				lx.cursor.Bump()
			}
			lx.bumpDigits()
		}
	}
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		lx.report(sp, "numeric literal without digits or with trailing garbage")
		return lx.make(token.Invalid, start)
	}
	return lx.make(kind, start)
}

func (lx *Lexer) bumpDigits() {
	for isDec(lx.cursor.Peek()) || (lx.cursor.Peek() == '_' && isDec(lx.cursor.PeekAt(1))) {
		lx.cursor.Bump()
	}
}
