package pattern

import (
	"strconv"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLAngle
	tokRAngle
	tokDollar
	tokBang
	tokBacktick
	tokRest   // ...
	tokIdent  // send, nil?, _
	tokGuard  // #name
	tokSymbol // :name
	tokString // "text"
	tokNumber // 42, -1, 1.5
)

type tok struct {
	kind   tokKind
	text   string // decoded value for strings and symbols
	offset int
}

var punctuation = map[byte]tokKind{
	'(': tokLParen, ')': tokRParen,
	'{': tokLBrace, '}': tokRBrace,
	'<': tokLAngle, '>': tokRAngle,
	'$': tokDollar, '!': tokBang, '`': tokBacktick,
}

// scanner tokenizes pattern source. It works on bytes, pattern sources are
// ASCII apart from string contents.
type scanner struct {
	src string
	pos int
}

func (s *scanner) next() (tok, error) {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
	start := s.pos
	if s.pos >= len(s.src) {
		return tok{kind: tokEOF, offset: start}, nil
	}
	c := s.src[s.pos]
	switch {
	case c == '.' && len(s.src)-s.pos >= 3 && s.src[s.pos:s.pos+3] == "...":
		s.pos += 3
		return tok{kind: tokRest, text: "...", offset: start}, nil
	case c == ':':
		return s.scanSymbol()
	case c == '"':
		return s.scanString()
	case c == '#':
		s.pos++
		name := s.word()
		if name == "" {
			return tok{}, &SyntaxError{Offset: start, Msg: "expected guard name after '#'"}
		}
		if s.pos < len(s.src) && (s.src[s.pos] == '?' || s.src[s.pos] == '!') {
			name += string(s.src[s.pos])
			s.pos++
		}
		return tok{kind: tokGuard, text: name, offset: start}, nil
	case isDigit(c) || (c == '-' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])):
		s.pos++
		for s.pos < len(s.src) && (isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
			s.pos++
		}
		if s.pos+1 < len(s.src) && s.src[s.pos] == '.' && isDigit(s.src[s.pos+1]) {
			s.pos++
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		}
		return tok{kind: tokNumber, text: s.src[start:s.pos], offset: start}, nil
	case isWordStart(c):
		name := s.word()
		if s.pos < len(s.src) && s.src[s.pos] == '?' {
			s.pos++
			name += "?"
		}
		return tok{kind: tokIdent, text: name, offset: start}, nil
	}
	if k, ok := punctuation[c]; ok {
		s.pos++
		return tok{kind: k, text: string(c), offset: start}, nil
	}
	return tok{}, &SyntaxError{Offset: start, Msg: "unexpected character " + strconv.QuoteRune(rune(c))}
}

func (s *scanner) word() string {
	start := s.pos
	for s.pos < len(s.src) && isWordPart(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// scanSymbol reads :name, :name?, :name= and operator symbols like :== or :[].
func (s *scanner) scanSymbol() (tok, error) {
	start := s.pos
	s.pos++
	if s.pos < len(s.src) && isWordStart(s.src[s.pos]) {
		name := s.word()
		if s.pos < len(s.src) {
			switch s.src[s.pos] {
			case '?', '!', '=':
				name += string(s.src[s.pos])
				s.pos++
			}
		}
		return tok{kind: tokSymbol, text: name, offset: start}, nil
	}
	opStart := s.pos
	for s.pos < len(s.src) && isOperatorByte(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == opStart {
		return tok{}, &SyntaxError{Offset: start, Msg: "expected symbol name after ':'"}
	}
	return tok{kind: tokSymbol, text: s.src[opStart:s.pos], offset: start}, nil
}

func (s *scanner) scanString() (tok, error) {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case '"':
			s.pos++
			v, err := strconv.Unquote(s.src[start:s.pos])
			if err != nil {
				return tok{}, &SyntaxError{Offset: start, Msg: "invalid string literal"}
			}
			return tok{kind: tokString, text: v, offset: start}, nil
		}
		s.pos++
	}
	return tok{}, &SyntaxError{Offset: start, Msg: "unterminated string literal"}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool { return isWordStart(c) || isDigit(c) }

func isOperatorByte(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '~', '&', '|', '^', '[', ']':
		return true
	}
	return false
}
