package lexer

import (
	"capycop/internal/token"
)

// scanString scans '...' or "..." literals. Escapes are validated later by
// the parser; here we only find the closing quote. Double-quoted strings
// with #{...} get the Interpolated flag, the braces may nest.
func (lx *Lexer) scanString(quote byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	interpolated := false

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == quote:
			lx.cursor.Bump()
			tok := lx.make(token.StringLit, start)
			if interpolated {
				tok.Flags |= token.Interpolated
			}
			return tok
		case b == '\\':
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
		case b == '#' && quote == '"' && lx.cursor.PeekAt(1) == '{':
			interpolated = true
			if !lx.skipInterpolation() {
				sp := lx.cursor.SpanFrom(start)
				lx.report(sp, "unterminated string interpolation")
				return lx.make(token.Invalid, start)
			}
		default:
			lx.cursor.Bump()
		}
	}

	sp := lx.cursor.SpanFrom(start)
	lx.report(sp, "unterminated string meets end of file")
	return lx.make(token.Invalid, start)
}

// skipInterpolation consumes #{ ... } including nested braces and nested
// string literals. Returns false on EOF.
func (lx *Lexer) skipInterpolation() bool {
	lx.cursor.Bump() // '#'
	lx.cursor.Bump() // '{'
	depth := 1
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Bump(); b {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return true
			}
		case '"', '\'':
			for !lx.cursor.EOF() {
				c := lx.cursor.Bump()
				if c == '\\' {
					lx.cursor.Bump()
					continue
				}
				if c == b {
					break
				}
			}
		}
	}
	return false
}

func (lx *Lexer) startsSymbol() bool {
	next := lx.cursor.PeekAt(1)
	return isIdentStartByte(next) || isUpper(next) || next == '"' || next == '\''
}

// scanSymbol scans :name, :name?, :Name and :"quoted".
func (lx *Lexer) scanSymbol() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // ':'
	if q := lx.cursor.Peek(); q == '"' || q == '\'' {
		str := lx.scanString(q)
		if str.Kind == token.Invalid {
			return lx.make(token.Invalid, start)
		}
		return lx.make(token.SymbolLit, start)
	}
	lx.bumpWord()
	lx.eatMethodSuffix()
	return lx.make(token.SymbolLit, start)
}
