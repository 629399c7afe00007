// Package token defines lexical token kinds for the Ruby expression subset
// analysed by capycop.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Method names keep their ? or ! suffix (has_css? is one Ident).
//   - Comments and blanks are dropped; newlines are tokens because they end
//     statements.
package token
