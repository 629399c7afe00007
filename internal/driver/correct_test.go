package driver

import (
	"context"
	"errors"
	"testing"

	"capycop/internal/ast"
	"capycop/internal/rule"
	"capycop/internal/source"
)

func TestCorrect_Chain(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("it do\n  has_css?('a') || has_css?('b') || has_css?('c')\nend\n"))

	res, err := Correct(context.Background(), fs, id, hasCssWalker(t), CorrectOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "it do\n  has_css?(\"a, b, c\")\nend\n"
	if string(res.After) != want {
		t.Fatalf("expected %q, got %q", want, res.After)
	}
	if res.Iterations != 2 || res.Applied != 2 {
		t.Fatalf("expected 2 passes and 2 edits, got %d and %d", res.Iterations, res.Applied)
	}
}

func TestCorrect_NothingToDo(t *testing.T) {
	src := []byte("has_css?('a') && has_css?('b')\n")
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", src)

	res, err := Correct(context.Background(), fs, id, hasCssWalker(t), CorrectOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed() || string(res.After) != string(src) {
		t.Fatalf("expected the source untouched, got %q", res.After)
	}
}

func TestCorrect_SkipsUnparsableFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("has_css?(\n"))

	res, err := Correct(context.Background(), fs, id, hasCssWalker(t), CorrectOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed() {
		t.Fatal("expected no correction")
	}
}

func TestCorrect_BrokenCorrection(t *testing.T) {
	breaker := &rule.Rule{
		Name:            "Test/Breaker",
		Categories:      []ast.Category{ast.Send},
		Enabled:         true,
		SafeAutocorrect: true,
		Check: func(_ *rule.Context, n *ast.Node) *rule.Finding {
			return &rule.Finding{Message: "x", Correction: &rule.Correction{Span: n.Span(), Text: "("}}
		},
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("foo\n"))

	res, err := Correct(context.Background(), fs, id, rule.NewWalker([]*rule.Rule{breaker}), CorrectOptions{})
	if !errors.Is(err, ErrCorrectionBrokeSyntax) {
		t.Fatalf("expected ErrCorrectionBrokeSyntax, got %v", err)
	}
	if string(res.After) != "foo\n" {
		t.Fatalf("expected the original source back, got %q", res.After)
	}
}

func TestCorrect_UnsafeRulesNeedOptIn(t *testing.T) {
	upcase := &rule.Rule{
		Name:       "Test/Upcase",
		Categories: []ast.Category{ast.Send},
		Enabled:    true,
		Check: func(_ *rule.Context, n *ast.Node) *rule.Finding {
			if n.MethodName() != "foo" {
				return nil
			}
			return &rule.Finding{Message: "x", Correction: &rule.Correction{Span: n.Span(), Text: "bar"}}
		},
	}
	w := rule.NewWalker([]*rule.Rule{upcase})
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("foo\n"))

	res, err := Correct(context.Background(), fs, id, w, CorrectOptions{})
	if err != nil || res.Changed() {
		t.Fatalf("expected no change without Unsafe, got %q, %v", res.After, err)
	}
	res, err = Correct(context.Background(), fs, id, w, CorrectOptions{Unsafe: true})
	if err != nil || string(res.After) != "bar\n" {
		t.Fatalf("expected correction with Unsafe, got %q, %v", res.After, err)
	}
}
