package parser_test

import (
	"errors"
	"testing"

	"capycop/internal/ast"
	"capycop/internal/parser"
	"capycop/internal/source"
)

func parseString(t *testing.T, input string) (*ast.Node, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rb", []byte(input))
	return parser.ParseFile(fs.Get(id))
}

func TestParseFile_Sexp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "or of predicate calls",
			input: `has_css?(".first") || has_css?(".second")`,
			want:  `(or (send nil :has_css? (str ".first")) (send nil :has_css? (str ".second")))`,
		},
		{
			name:  "and of predicate calls",
			input: `has_css?("a") && has_css?("b")`,
			want:  `(and (send nil :has_css? (str "a")) (send nil :has_css? (str "b")))`,
		},
		{
			name:  "keyword or",
			input: `has_css?("a") or has_css?("b")`,
			want:  `(or (send nil :has_css? (str "a")) (send nil :has_css? (str "b")))`,
		},
		{
			name:  "explicit receiver",
			input: `page.has_css?(".a")`,
			want:  `(send (send nil :page) :has_css? (str ".a"))`,
		},
		{
			name:  "safe navigation",
			input: `user&.name`,
			want:  `(csend (send nil :user) :name)`,
		},
		{
			name:  "local variable after assignment",
			input: "x = 1\nx",
			want:  `(begin (lvasgn :x (int 1)) (lvar :x))`,
		},
		{
			name:  "command call with keyword arguments",
			input: `visit "/", wait: 5`,
			want:  `(send nil :visit (str "/") (hash (pair (sym :wait) (int 5))))`,
		},
		{
			name:  "block pass after keyword arguments",
			input: `foo(key: 1, &blk)`,
			want:  `(send nil :foo (hash (pair (sym :key) (int 1))) (block_pass (send nil :blk)))`,
		},
		{
			name:  "every argument kind",
			input: `foo(a, *rest, key: 1, &blk)`,
			want:  `(send nil :foo (send nil :a) (splat (send nil :rest)) (hash (pair (sym :key) (int 1))) (block_pass (send nil :blk)))`,
		},
		{
			name:  "do block binds to the command call",
			input: "it \"works\" do\n  expect(page).to have_css(\".a\")\nend",
			want:  `(block (send nil :it (str "works")) (args) (send (send nil :expect (send nil :page)) :to (send nil :have_css (str ".a"))))`,
		},
		{
			name:  "brace block with params",
			input: `items.each { |i| puts i }`,
			want:  `(block (send (send nil :items) :each) (args (arg :i)) (send nil :puts (lvar :i)))`,
		},
		{
			name:  "modifier if",
			input: `foo if bar`,
			want:  `(if (send nil :bar) (send nil :foo) nil)`,
		},
		{
			name:  "modifier unless",
			input: `foo unless bar`,
			want:  `(if (send nil :bar) nil (send nil :foo))`,
		},
		{
			name:  "ternary",
			input: `a ? 1 : 2`,
			want:  `(if (send nil :a) (int 1) (int 2))`,
		},
		{
			name:  "if elsif else",
			input: "if a\n  1\nelsif b\n  2\nelse\n  3\nend",
			want:  `(if (send nil :a) (int 1) (if (send nil :b) (int 2) (int 3)))`,
		},
		{
			name:  "interpolated string",
			input: `"a#{b}c"`,
			want:  `(dstr "a#{b}c")`,
		},
		{
			name:  "keyword not",
			input: `not x`,
			want:  `(send (send nil :x) :!)`,
		},
		{
			name:  "bang",
			input: `!x`,
			want:  `(send (send nil :x) :!)`,
		},
		{
			name:  "precedence",
			input: `1 + 2 * 3`,
			want:  `(send (int 1) :+ (send (int 2) :* (int 3)))`,
		},
		{
			name:  "scoped constant",
			input: `Foo::Bar`,
			want:  `(const (const nil :Foo) :Bar)`,
		},
		{
			name:  "method definition",
			input: "def foo(a)\n  a\nend",
			want:  `(def :foo (args (arg :a)) (lvar :a))`,
		},
		{
			name:  "single quoted escapes",
			input: `'it\'s'`,
			want:  `(str "it's")`,
		},
		{
			name:  "double quoted escapes",
			input: `"a\tb"`,
			want:  `(str "a\tb")`,
		},
		{
			name:  "negative literal",
			input: `-1`,
			want:  `(int -1)`,
		},
		{
			name:  "index",
			input: `a[1]`,
			want:  `(send (send nil :a) :[] (int 1))`,
		},
		{
			name:  "attribute assignment",
			input: `a.b = 1`,
			want:  `(send (send nil :a) :b= (int 1))`,
		},
		{
			name:  "leading dot chain",
			input: "expect(page)\n  .to have_css(\".a\")",
			want:  `(send (send nil :expect (send nil :page)) :to (send nil :have_css (str ".a")))`,
		},
		{
			name:  "parenthesised expression",
			input: `(a || b)`,
			want:  `(begin (or (send nil :a) (send nil :b)))`,
		},
		{
			name:  "hash and array literals",
			input: `[1, {a: :b, "c" => nil}]`,
			want:  `(array (int 1) (hash (pair (sym :a) (sym :b)) (pair (str "c") (nil))))`,
		},
		{
			name:  "empty file",
			input: "# nothing here\n",
			want:  `(begin)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parseString(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := root.String(); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			if err := ast.Verify(root); err != nil {
				t.Fatalf("span invariant violated: %v", err)
			}
		})
	}
}

func TestParseFile_Spans(t *testing.T) {
	input := `has_css?(".first") || has_css?(".second")`
	root, err := parseString(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := []byte(input)
	if got := root.Text(src); got != input {
		t.Fatalf("expected root text %q, got %q", input, got)
	}
	left, right := root.NodeAt(0), root.NodeAt(1)
	if got := left.Text(src); got != `has_css?(".first")` {
		t.Fatalf("expected left operand text, got %q", got)
	}
	if got := right.Text(src); got != `has_css?(".second")` {
		t.Fatalf("expected right operand text, got %q", got)
	}
	str := left.Arguments()[0]
	if got := str.Text(src); got != `".first"` {
		t.Fatalf("expected literal text with quotes, got %q", got)
	}
}

func TestParseFile_BlockLocalsDoNotLeak(t *testing.T) {
	root, err := parseString(t, "items.each { |i| i }\ni")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := root.NodeAt(1)
	if !last.Is(ast.Send) {
		t.Fatalf("expected i outside the block to be a call, got %s", last)
	}
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed call", `foo(`},
		{"unterminated string", `"abc`},
		{"missing end", "if x\n  1\n"},
		{"dangling operator", `1 +`},
		{"stray paren", `)`},
		{"two expressions on a line", `1 2`},
		{"bad unicode escape", `"\u{zz}"`},
		{"argument after block pass", `foo(&blk, 1)`},
		{"positional after keywords", `foo(key: 1, 2)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parseString(t, tt.input)
			if err == nil {
				t.Fatalf("expected error, got tree %s", root)
			}
			var pe *parser.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if root != nil {
				t.Fatalf("expected no partial tree")
			}
		})
	}
}
