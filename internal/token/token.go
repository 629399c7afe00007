package token

import (
	"capycop/internal/source"
)

// Flags carries lexical context the parser needs for Ruby's
// whitespace-sensitive forms (foo [1] vs foo[1], x ? y vs x?).
type Flags uint8

const (
	// SpaceBefore is set when blanks or a comment precede the token on its line.
	SpaceBefore Flags = 1 << iota
	// Interpolated marks a double-quoted string containing #{...}.
	Interpolated
)

// Token represents a single source token with its location.
type Token struct {
	Kind  Kind
	Span  source.Span
	Text  string
	Flags Flags
}

// Has reports whether all bits of f are set.
func (t Token) Has(f Flags) bool { return t.Flags&f == f }

// IsLiteral reports whether the token is a string, symbol or numeric literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case StringLit, SymbolLit, IntLit, FloatLit:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwNil && t.Kind <= KwReturn
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// StartsArgument reports whether a token can begin a command-call argument
// written without parentheses, e.g. `visit "/"` or `be true`.
func (t Token) StartsArgument() bool {
	switch t.Kind {
	case Ident, Const, IVar, Label, StringLit, SymbolLit, IntLit, FloatLit,
		KwNil, KwTrue, KwFalse, KwSelf, KwNot:
		return true
	case LBracket, Bang, LParen:
		return t.Has(SpaceBefore)
	default:
		return false
	}
}
