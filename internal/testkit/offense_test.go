package testkit

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/diag"
	"capycop/internal/source"
)

func TestDedent(t *testing.T) {
	got := Dedent(`
		foo
		  bar

		baz
	`)
	want := "foo\n  bar\n\nbaz\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dedent mismatch (-want +got):\n%s", diff)
	}
}

func TestStripAnnotations(t *testing.T) {
	got := StripAnnotations("a || b\n^^^^^^ msg\nc\n")
	if got != "a || b\nc\n" {
		t.Fatalf("expected annotations stripped, got %q", got)
	}
}

func TestAnnotate(t *testing.T) {
	src := "x = 1\nfoo(a) ||\n  bar\n"
	ds := []diag.Diagnostic{
		{Primary: source.Span{Start: 0, End: 1}, Message: "first"},
		// multi-line offense is clipped to its first line
		{Primary: source.Span{Start: 6, End: 22}, Message: "second"},
	}
	want := "x = 1\n^ first\nfoo(a) ||\n^^^^^^^^^ second\n  bar\n"
	if diff := cmp.Diff(want, Annotate(src, ds)); diff != "" {
		t.Fatalf("annotate mismatch (-want +got):\n%s", diff)
	}
}
