package lexer

const utf8RuneSelf = 0x80

// ===== Классификаторы =====

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isDec(b byte) bool { return b >= '0' && b <= '9' }

// isIdentStartByte covers lowercase identifiers; constants start with an
// uppercase letter and are scanned separately.
func isIdentStartByte(b byte) bool { return isLower(b) || b == '_' }

// isIdentContinueByte treats any non-ASCII byte as part of an identifier so
// UTF-8 names survive without decoding.
func isIdentContinueByte(b byte) bool {
	return isLower(b) || isUpper(b) || isDec(b) || b == '_' || b >= utf8RuneSelf
}
