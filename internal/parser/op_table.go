package parser

import (
	"capycop/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 2  // ||
	precLogicalAnd     = 3  // &&
	precEquality       = 4  // == != =~ !~ <=>
	precComparison     = 5  // < <= > >=
	precBitwiseOr      = 6  // | ^
	precBitwiseAnd     = 7  // &
	precShift          = 8  // << >>
	precAdditive       = 9  // + -
	precMultiplicative = 10 // * / %
)

// getBinaryOperatorPrec returns the precedence of a binary operator token,
// or -1 when the token does not continue a binary expression.
func getBinaryOperatorPrec(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return precLogicalOr
	case token.AndAnd:
		return precLogicalAnd
	case token.EqEq, token.BangEq, token.MatchOp, token.NotMatchOp, token.Spaceship:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.Pipe, token.Caret:
		return precBitwiseOr
	case token.Amp:
		return precBitwiseAnd
	case token.Shl, token.Shr:
		return precShift
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiplicative
	default:
		return -1
	}
}
