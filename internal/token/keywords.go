package token

var keywords = map[string]Kind{
	"nil":    KwNil,
	"true":   KwTrue,
	"false":  KwFalse,
	"self":   KwSelf,
	"and":    KwAnd,
	"or":     KwOr,
	"not":    KwNot,
	"if":     KwIf,
	"unless": KwUnless,
	"elsif":  KwElsif,
	"else":   KwElse,
	"then":   KwThen,
	"end":    KwEnd,
	"do":     KwDo,
	"def":    KwDef,
	"return": KwReturn,
}

// LookupKeyword reports whether ident is a reserved word. Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
