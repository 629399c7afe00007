package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/lexer"
	"capycop/internal/source"
	"capycop/internal/token"
)

// makeTestLexer создаёт лексер для тестовой строки
func makeTestLexer(input string) (*lexer.Lexer, *lexer.ErrorCollector) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rb", []byte(input))
	errs := &lexer.ErrorCollector{}
	return lexer.New(fs.Get(id), lexer.Options{Reporter: errs}), errs
}

func kindsOf(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexer_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "predicate call with or",
			input: `has_css?(".first") || has_css?(".second")`,
			want: []token.Kind{
				token.Ident, token.LParen, token.StringLit, token.RParen, token.OrOr,
				token.Ident, token.LParen, token.StringLit, token.RParen, token.EOF,
			},
		},
		{
			name:  "bang-equal is not a method suffix",
			input: "a!=b",
			want:  []token.Kind{token.Ident, token.BangEq, token.Ident, token.EOF},
		},
		{
			name:  "safe navigation and constants",
			input: "page&.find Foo::Bar",
			want:  []token.Kind{token.Ident, token.AmpDot, token.Ident, token.Const, token.ColonColon, token.Const, token.EOF},
		},
		{
			name:  "labels symbols and numbers",
			input: "visible: :all, wait: 1.5, count: 2",
			want: []token.Kind{
				token.Label, token.SymbolLit, token.Comma, token.Label, token.FloatLit,
				token.Comma, token.Label, token.IntLit, token.EOF,
			},
		},
		{
			name:  "keywords and newlines",
			input: "if x and not y\nend",
			want:  []token.Kind{token.KwIf, token.Ident, token.KwAnd, token.KwNot, token.Ident, token.Newline, token.KwEnd, token.EOF},
		},
		{
			name:  "comments and continuation are skipped",
			input: "a # trailing\n  \\\n b",
			want:  []token.Kind{token.Ident, token.Newline, token.Ident, token.EOF},
		},
		{
			name:  "embedded documentation",
			input: "=begin\nnot code\n=end\nx",
			want:  []token.Kind{token.Newline, token.Ident, token.EOF},
		},
		{
			name:  "instance variables and ternary",
			input: "@user ? 1 : 2",
			want:  []token.Kind{token.IVar, token.Question, token.IntLit, token.Colon, token.IntLit, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, errs := makeTestLexer(tt.input)
			got := kindsOf(lx.All())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
			if len(errs.Errors) != 0 {
				t.Errorf("unexpected lexer errors: %+v", errs.Errors)
			}
		})
	}
}

func TestLexer_TextMatchesSpan(t *testing.T) {
	input := `expect(has_css?(".a")).to be true`
	lx, _ := makeTestLexer(input)
	for _, tok := range lx.All() {
		if tok.Text != input[tok.Span.Start:tok.Span.End] {
			t.Fatalf("token %v text %q does not match span %v", tok.Kind, tok.Text, tok.Span)
		}
	}
}

func TestLexer_SpaceBeforeFlag(t *testing.T) {
	lx, _ := makeTestLexer("foo [1] bar[2]")
	toks := lx.All()
	if toks[1].Kind != token.LBracket || !toks[1].Has(token.SpaceBefore) {
		t.Fatalf("expected spaced [, got %+v", toks[1])
	}
	if toks[5].Kind != token.LBracket || toks[5].Has(token.SpaceBefore) {
		t.Fatalf("expected attached [, got %+v", toks[5])
	}
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		interp bool
	}{
		{"double quoted", `"a \"b\""`, false},
		{"single quoted", `'it''s'`, false},
		{"interpolation", `"#{user.name} {x}"`, true},
		{"nested braces", `"#{h.map { |k| "#{k}" }}"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, errs := makeTestLexer(tt.input)
			tok := lx.Next()
			if tok.Kind != token.StringLit {
				t.Fatalf("expected string literal, got %v (%+v)", tok.Kind, errs.Errors)
			}
			if tok.Has(token.Interpolated) != tt.interp {
				t.Fatalf("interpolated = %v, want %v", tok.Has(token.Interpolated), tt.interp)
			}
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `has_css?(".a`},
		{"bad char", "a ` b"},
		{"bare at", "@ x"},
		{"number garbage", "12abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, errs := makeTestLexer(tt.input)
			toks := lx.All()
			if len(errs.Errors) == 0 {
				t.Fatal("expected a lexer error")
			}
			found := false
			for _, tok := range toks {
				if tok.Kind == token.Invalid {
					found = true
				}
			}
			if !found {
				t.Fatal("expected an Invalid token")
			}
		})
	}
}

func TestLexer_PeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if p := lx.Peek(); p.Text != "a" {
		t.Fatalf("peek = %q", p.Text)
	}
	if n := lx.Next(); n.Text != "a" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Text != "b" {
		t.Fatalf("next = %q", n.Text)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", n.Kind)
	}
	if n := lx.Next(); n.Kind != token.EOF {
		t.Fatalf("expected EOF after EOF, got %v", n.Kind)
	}
}
