// Package fuzztests houses Go fuzz harnesses for the front end (source ->
// lexer -> parser), the pattern compiler and the autocorrect loop. They
// guard against panics, hangs and corrections that break the source.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
