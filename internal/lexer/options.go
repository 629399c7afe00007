package lexer

import (
	"capycop/internal/source"
)

// Reporter: тонкий интерфейс, чтобы не тянуть diag сюда.
type Reporter interface {
	Report(span source.Span, msg string)
}

// Options configures a Lexer.
type Options struct {
	Reporter Reporter // может быть nil, тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) report(sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(sp, msg)
	}
}

// ErrorCollector is a Reporter that keeps every lexical error in order.
type ErrorCollector struct {
	Errors []Error
}

// Error is one lexical problem.
type Error struct {
	Span source.Span
	Msg  string
}

func (c *ErrorCollector) Report(span source.Span, msg string) {
	c.Errors = append(c.Errors, Error{Span: span, Msg: msg})
}
