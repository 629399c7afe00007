package pattern_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/ast"
	"capycop/internal/parser"
	"capycop/internal/pattern"
	"capycop/internal/source"
)

const hasCss = "(or (`send nil? :has_css? $...) (`send nil? :has_css? $...))"

func parse(t *testing.T, input string) *ast.Node {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rb", []byte(input))
	root, err := parser.ParseFile(fs.Get(id))
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return root
}

func values(r *pattern.Result) []string {
	var out []string
	for _, v := range r.Values() {
		out = append(out, v.Text)
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		match   bool
		values  []string
	}{
		{"or of predicates", hasCss, `has_css?(".first") || has_css?(".second")`, true, []string{".first", ".second"}},
		{"single call", hasCss, `has_css?(".foobar")`, false, nil},
		{"and is not or", hasCss, `has_css?(".foobar") && has_css?(".barfoo")`, false, nil},
		{"explicit receiver left", hasCss, `page.has_css?("a") || has_css?("b")`, false, nil},
		{"explicit receiver right", hasCss, `has_css?("a") || page.has_css?("b")`, false, nil},
		{"other method", hasCss, `has_text?("a") || has_text?("b")`, false, nil},
		{"keyword or", hasCss, `has_css?("a") or has_css?("b")`, true, []string{"a", "b"}},
		{"string atom against literal node", `(send nil? :f "a")`, `f("a")`, true, nil},
		{"int atom", `(send nil? :f 42)`, `f(42)`, true, nil},
		{"union of names", `(send nil? {:a :b} ...)`, `b(1)`, true, nil},
		{"union miss", `(send nil? {:a :b} ...)`, `c(1)`, false, nil},
		{"negation", `(send !nil? :x)`, `y.x`, true, nil},
		{"negation miss", `(send !nil? :x)`, `x`, false, nil},
		{"exact category rejects csend", `(send _ :x)`, `a&.x`, false, nil},
		{"backtick accepts csend", "(`send _ :x)", `a&.x`, true, nil},
		{"abstract category", `(call _ :x)`, `a&.x`, true, nil},
		{"category predicate", `(send nil? :f str?)`, `f("a")`, true, nil},
		{"category predicate miss", `(send nil? :f str?)`, `f(1)`, false, nil},
		{"explicit permutation", `(send nil? :f <(int 1) (int 2)>)`, `f(2, 1)`, true, nil},
		{"permutation with rest", `(send nil? :f <(int 1) ...>)`, `f(3, 2, 1)`, true, nil},
		{"permutation wrong size", `(send nil? :f <(int 1) (int 2)>)`, `f(2, 1, 3)`, false, nil},
		{"any node head", `(_ nil? :f ...)`, `f`, true, nil},
		{"too many children", `(send nil? :f)`, `f(1)`, false, nil},
		{"absent pattern vs nil literal", `(send nil :f)`, `nil.f`, false, nil},
		{"nil literal node", `(send (nil) :f)`, `nil.f`, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := pattern.Compile(tt.pattern)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			res, ok := p.Match(parse(t, tt.input))
			if ok != tt.match {
				t.Fatalf("expected match=%v, got %v", tt.match, ok)
			}
			if !ok {
				if res != nil {
					t.Fatalf("expected nil result on no match")
				}
				return
			}
			if tt.values != nil {
				if diff := cmp.Diff(tt.values, values(res)); diff != "" {
					t.Fatalf("captured values mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

// Captures fill their slots in the order they are written, whichever
// operand of a commutative node they matched.
func TestMatch_PermutationCaptureOrder(t *testing.T) {
	p := pattern.MustCompile(`(or $(send nil? :foo ...) $(send nil? :bar ...))`)

	for _, input := range []string{`foo(1) || bar(2)`, `bar(2) || foo(1)`} {
		res, ok := p.Match(parse(t, input))
		if !ok {
			t.Fatalf("%s: expected match", input)
		}
		if got := res.Node(0).MethodName(); got != "foo" {
			t.Fatalf("%s: expected slot 0 to hold foo, got %s", input, got)
		}
		if got := res.Node(1).MethodName(); got != "bar" {
			t.Fatalf("%s: expected slot 1 to hold bar, got %s", input, got)
		}
	}
}

// With symmetric sub-patterns the identity order wins.
func TestMatch_PermutationTriesTreeOrderFirst(t *testing.T) {
	res, ok := pattern.MustCompile(hasCss).Match(parse(t, `has_css?("b") || has_css?("a")`))
	if !ok {
		t.Fatalf("expected match")
	}
	if diff := cmp.Diff([]string{"b", "a"}, values(res)); diff != "" {
		t.Fatalf("captured values mismatch (-want +got):\n%s", diff)
	}
}

func TestMatch_RestIsMinimal(t *testing.T) {
	root := parse(t, `f(1, 2, 3)`)

	res, ok := pattern.MustCompile(`(send nil? :f $... $_)`).Match(root)
	if !ok {
		t.Fatalf("expected match")
	}
	if got := len(res.Get(0)); got != 2 {
		t.Fatalf("expected rest to absorb 2 children, got %d", got)
	}
	if got := res.Node(1).String(); got != "(int 3)" {
		t.Fatalf("expected last capture (int 3), got %s", got)
	}

	res, ok = pattern.MustCompile(`(send nil? :f $... ...)`).Match(root)
	if !ok {
		t.Fatalf("expected match")
	}
	if got := len(res.Get(0)); got != 0 {
		t.Fatalf("expected leading rest to absorb nothing, got %d", got)
	}
}

func TestMatch_Guard(t *testing.T) {
	short := func(c ast.Child) bool {
		n, ok := c.(*ast.Node)
		if !ok {
			return false
		}
		s, ok := n.StringValue()
		return ok && len(s) < 3
	}
	p, err := pattern.Compile(`(send nil? :f #short)`, pattern.WithGuard("short", short))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !p.Matches(parse(t, `f("ab")`)) {
		t.Fatalf("expected guard to accept short string")
	}
	if p.Matches(parse(t, `f("abcdef")`)) {
		t.Fatalf("expected guard to reject long string")
	}
}

func TestMatch_PredicateGuardName(t *testing.T) {
	literal := func(c ast.Child) bool {
		n, ok := c.(*ast.Node)
		return ok && n.Is(ast.Str)
	}
	p, err := pattern.Compile(`(send nil? :f #literal? !#literal?)`, pattern.WithGuard("literal?", literal))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if got := p.String(); got != `(send nil? :f #literal? !#literal?)` {
		t.Fatalf("expected the guard name to keep its '?', got %s", got)
	}
	if !p.Matches(parse(t, `f("a", b)`)) {
		t.Fatalf("expected a literal then a non-literal to match")
	}
	if p.Matches(parse(t, `f(a, "b")`)) {
		t.Fatalf("expected the guards to reject swapped arguments")
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		offset  int
	}{
		{"unclosed node", `(send nil?`, 10},
		{"unknown category", `(frob _)`, 1},
		{"unknown predicate", `(send frob? _)`, 6},
		{"unknown guard", `(send nil? #nope)`, 11},
		{"top level rest", `...`, 0},
		{"capture in negation", `(send !$_ :x)`, 6},
		{"union capture mismatch", `(send {$_ _} :x)`, 6},
		{"trailing input", `(send _ :x) _`, 12},
		{"empty input", ``, 0},
		{"bad character", `(send _ @x)`, 8},
		{"two rests in permutation", `(send _ :x <... ...>)`, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pattern.Compile(tt.pattern)
			var se *pattern.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if se.Offset != tt.offset {
				t.Fatalf("expected offset %d, got %d (%s)", tt.offset, se.Offset, se.Msg)
			}
		})
	}
}

func TestPattern_Metadata(t *testing.T) {
	p := pattern.MustCompile(hasCss)
	if got := p.Captures(); got != 2 {
		t.Fatalf("expected 2 captures, got %d", got)
	}
	if got := p.Category(); got != ast.Or {
		t.Fatalf("expected root category or, got %s", got)
	}
	if got := p.String(); got != hasCss {
		t.Fatalf("expected canonical form %s, got %s", hasCss, got)
	}
}

func TestPattern_StringRecompiles(t *testing.T) {
	sources := []string{
		hasCss,
		`(send nil? {:a :b} $... #g)`,
		"(`send !nil? :x <(int 1) ...>)",
		`(_ _ :f "quoted \"x\"" -1 2.5 str?)`,
	}
	g := pattern.WithGuard("g", func(ast.Child) bool { return true })
	for _, src := range sources {
		p := pattern.MustCompile(src, g)
		again, err := pattern.Compile(p.String(), g)
		if err != nil {
			t.Fatalf("recompile %s: %v", p.String(), err)
		}
		if again.String() != p.String() {
			t.Fatalf("expected stable canonical form, got %s then %s", p.String(), again.String())
		}
	}
}

func TestFind(t *testing.T) {
	root := parse(t, "has_css?(\"a\") || has_css?(\"b\")\nfoo\nx = has_css?(\"c\") || has_css?(\"d\")")
	found := pattern.Find(pattern.MustCompile(hasCss), root)
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}
	if found[0].Span().Start >= found[1].Span().Start {
		t.Fatalf("expected matches in source order")
	}
}

func TestCache(t *testing.T) {
	c := pattern.NewCache()
	a, err := c.Compile(hasCss)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, _ := c.Compile(hasCss)
	if a != b {
		t.Fatalf("expected the same compiled pattern from the cache")
	}
	if _, err := c.Compile("("); err == nil {
		t.Fatalf("expected error for malformed pattern")
	}
	if got := c.Len(); got != 2 {
		t.Fatalf("expected 2 cached entries, got %d", got)
	}
}
