package lexer

import (
	"capycop/internal/token"
)

type opEntry struct {
	text string
	kind token.Kind
}

// ops is ordered longest first so the scanner picks maximal munch.
var ops = []opEntry{
	{"<=>", token.Spaceship},
	{"&&", token.AndAnd},
	{"||", token.OrOr},
	{"==", token.EqEq},
	{"!=", token.BangEq},
	{"=~", token.MatchOp},
	{"!~", token.NotMatchOp},
	{"<=", token.LtEq},
	{">=", token.GtEq},
	{"<<", token.Shl},
	{">>", token.Shr},
	{"::", token.ColonColon},
	{"&.", token.AmpDot},
	{"=>", token.FatArrow},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"/", token.Slash},
	{"%", token.Percent},
	{"=", token.Assign},
	{"!", token.Bang},
	{"<", token.Lt},
	{">", token.Gt},
	{"&", token.Amp},
	{"|", token.Pipe},
	{"^", token.Caret},
	{"?", token.Question},
	{":", token.Colon},
	{";", token.Semicolon},
	{",", token.Comma},
	{".", token.Dot},
	{"(", token.LParen},
	{")", token.RParen},
	{"{", token.LBrace},
	{"}", token.RBrace},
	{"[", token.LBracket},
	{"]", token.RBracket},
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	for _, op := range ops {
		if lx.cursor.HasPrefix(op.text) {
			for range len(op.text) {
				lx.cursor.Bump()
			}
			return lx.make(op.kind, start)
		}
	}
	lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	lx.report(sp, "unexpected character")
	return lx.make(token.Invalid, start)
}
