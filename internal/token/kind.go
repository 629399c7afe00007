package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline terminates a statement unless an expression is still open.
	Newline

	// Ident represents a lowercase identifier, possibly ending in ? or !.
	Ident
	// Const represents a capitalised identifier.
	Const
	// IVar represents an instance variable such as @user.
	IVar
	// Label represents a keyword-argument key such as visible:.
	Label

	// KwNil represents the 'nil' keyword.
	KwNil // nil
	// KwTrue represents the 'true' keyword.
	KwTrue // true
	// KwFalse represents the 'false' keyword.
	KwFalse // false
	// KwSelf represents the 'self' keyword.
	KwSelf // self
	// KwAnd represents the 'and' keyword.
	KwAnd // and
	// KwOr represents the 'or' keyword.
	KwOr // or
	// KwNot represents the 'not' keyword.
	KwNot // not
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwUnless represents the 'unless' keyword.
	KwUnless // unless
	// KwElsif represents the 'elsif' keyword.
	KwElsif // elsif
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwThen represents the 'then' keyword.
	KwThen // then
	// KwEnd represents the 'end' keyword.
	KwEnd // end
	// KwDo represents the 'do' keyword.
	KwDo // do
	// KwDef represents the 'def' keyword.
	KwDef // def
	// KwReturn represents the 'return' keyword.
	KwReturn // return

	// StringLit represents a single- or double-quoted string literal.
	StringLit
	// SymbolLit represents a symbol literal such as :foo or :"foo bar".
	SymbolLit
	// IntLit represents an integer literal.
	IntLit
	// FloatLit represents a float literal.
	FloatLit

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Assign     // =
	EqEq       // ==
	BangEq     // !=
	MatchOp    // =~
	NotMatchOp // !~
	Bang       // !
	Lt         // <
	LtEq       // <=
	Gt         // >
	GtEq       // >=
	Spaceship  // <=>
	Shl        // <<
	Shr        // >>
	Amp        // &
	Pipe       // |
	Caret      // ^
	AndAnd     // &&
	OrOr       // ||
	Question   // ?
	Colon      // :
	ColonColon // ::
	Semicolon  // ;
	Comma      // ,
	Dot        // .
	AmpDot     // &.
	FatArrow   // =>
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
)

var kindNames = [...]string{
	Invalid:    "invalid",
	EOF:        "EOF",
	Newline:    "newline",
	Ident:      "identifier",
	Const:      "constant",
	IVar:       "instance variable",
	Label:      "label",
	KwNil:      "nil",
	KwTrue:     "true",
	KwFalse:    "false",
	KwSelf:     "self",
	KwAnd:      "and",
	KwOr:       "or",
	KwNot:      "not",
	KwIf:       "if",
	KwUnless:   "unless",
	KwElsif:    "elsif",
	KwElse:     "else",
	KwThen:     "then",
	KwEnd:      "end",
	KwDo:       "do",
	KwDef:      "def",
	KwReturn:   "return",
	StringLit:  "string literal",
	SymbolLit:  "symbol literal",
	IntLit:     "integer literal",
	FloatLit:   "float literal",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Assign:     "=",
	EqEq:       "==",
	BangEq:     "!=",
	MatchOp:    "=~",
	NotMatchOp: "!~",
	Bang:       "!",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	Spaceship:  "<=>",
	Shl:        "<<",
	Shr:        ">>",
	Amp:        "&",
	Pipe:       "|",
	Caret:      "^",
	AndAnd:     "&&",
	OrOr:       "||",
	Question:   "?",
	Colon:      ":",
	ColonColon: "::",
	Semicolon:  ";",
	Comma:      ",",
	Dot:        ".",
	AmpDot:     "&.",
	FatArrow:   "=>",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}
