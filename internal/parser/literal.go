package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"capycop/internal/ast"
	"capycop/internal/token"
)

// parseNumber builds an int or float node. minus is the already consumed
// sign token for negative literals.
func (p *Parser) parseNumber(minus *token.Token) *ast.Node {
	tok := p.advance()
	text := strings.ReplaceAll(tok.Text, "_", "")
	sp := tok.Span
	if minus != nil {
		text = "-" + text
		sp = minus.Span.Cover(tok.Span)
	}
	if tok.Kind == token.FloatLit {
		return ast.NewLiteral(ast.Float, sp, ast.Atom{Kind: ast.AtomFloat, Text: text, Span: sp})
	}
	return ast.NewLiteral(ast.Int, sp, ast.Atom{Kind: ast.AtomInt, Text: text, Span: sp})
}

// parseString builds a str node with the decoded value, or a dstr node when
// the literal interpolates. dstr keeps the raw body: rules never look
// inside it, they only need to know it is not a plain string.
func (p *Parser) parseString() *ast.Node {
	tok := p.advance()
	body := tok.Text[1 : len(tok.Text)-1]
	if tok.Has(token.Interpolated) {
		return ast.NewNode(ast.DStr, tok.Span, ast.Atom{Kind: ast.AtomString, Text: body, Span: tok.Span})
	}
	value, err := unquote(tok.Text[0], body)
	if err != nil {
		p.fail(tok.Span, err.Error())
	}
	return ast.NewLiteral(ast.Str, tok.Span, ast.Atom{Kind: ast.AtomString, Text: value, Span: tok.Span})
}

func (p *Parser) parseSymbol() *ast.Node {
	tok := p.advance()
	name := tok.Text[1:]
	if q := name[0]; q == '"' || q == '\'' {
		value, err := unquote(q, name[1:len(name)-1])
		if err != nil {
			p.fail(tok.Span, err.Error())
		}
		name = value
	}
	return ast.NewLiteral(ast.Sym, tok.Span, ast.SymAtom(name, tok.Span))
}

// unquote decodes the escapes of a string body. Single quotes only know
// \\ and \'; double quotes know the usual control escapes and \u.
func unquote(quote byte, body string) (string, error) {
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		e := body[i]
		if quote == '\'' {
			if e != '\\' && e != '\'' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(e)
			continue
		}
		switch e {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 's':
			sb.WriteByte(' ')
		case 'e':
			sb.WriteByte(0x1b)
		case '0':
			sb.WriteByte(0)
		case 'u':
			r, n, err := decodeUnicodeEscape(body[i+1:])
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i += n
		default:
			// \\ \" \# and unknown escapes yield the character itself
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}

// decodeUnicodeEscape reads the part after \u: four hex digits or {hex}.
func decodeUnicodeEscape(s string) (rune, int, error) {
	var digits string
	var consumed int
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, errors.New("unterminated \\u{...} escape")
		}
		digits, consumed = s[1:end], end+1
	} else {
		if len(s) < 4 {
			return 0, 0, errors.New("invalid \\u escape")
		}
		digits, consumed = s[:4], 4
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, 0, errors.New("invalid Unicode escape")
	}
	return rune(v), consumed, nil
}
