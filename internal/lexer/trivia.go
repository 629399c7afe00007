package lexer

// skipBlanks consumes spaces, comments, line continuations and =begin/=end
// blocks. Newlines are left in place because they terminate statements.
// Returns true when anything was skipped.
func (lx *Lexer) skipBlanks() bool {
	skipped := false
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\r' || b == '\f':
			lx.cursor.Bump()
		case b == '\\' && lx.cursor.PeekAt(1) == '\n':
			lx.cursor.Bump()
			lx.cursor.Bump()
		case b == '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '=' && lx.cursor.AtLineStart() && lx.cursor.HasPrefix("=begin"):
			lx.skipEmbeddedDoc()
		default:
			return skipped
		}
		skipped = true
	}
	return skipped
}

// skipEmbeddedDoc skips from =begin up to the end of the =end line.
func (lx *Lexer) skipEmbeddedDoc() {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if lx.cursor.AtLineStart() && lx.cursor.HasPrefix("=end") {
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			return
		}
		lx.cursor.Bump()
	}
	lx.report(lx.cursor.SpanFrom(start), "embedded document meets end of file")
}
