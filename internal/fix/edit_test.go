package fix

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/source"
)

func sp(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		edits []Edit
		want  string
	}{
		{"replace", "a || b", []Edit{{Span: sp(0, 6), NewText: "c"}}, "c"},
		{"two disjoint", "foo bar", []Edit{{Span: sp(4, 7), NewText: "BAR"}, {Span: sp(0, 3), NewText: "FOO"}}, "FOO BAR"},
		{"adjacent", "abcd", []Edit{{Span: sp(0, 2), NewText: "x"}, {Span: sp(2, 4), NewText: "y"}}, "xy"},
		{"insertions keep order", "ab", []Edit{{Span: sp(1, 1), NewText: "1"}, {Span: sp(1, 1), NewText: "2"}}, "a12b"},
		{"insertion at replacement start", "abc", []Edit{{Span: sp(0, 3), NewText: "x"}, {Span: sp(0, 0), NewText: "<"}}, "<x"},
		{"insertion at replacement end", "abc", []Edit{{Span: sp(0, 3), NewText: "x"}, {Span: sp(3, 3), NewText: ">"}}, "x>"},
		{"delete", "a;", []Edit{{Span: sp(1, 2), OldText: ";"}}, "a"},
		{"unicode untouched", "é || ü", []Edit{{Span: sp(3, 5), NewText: "&&"}}, "é && ü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply([]byte(tt.src), tt.edits)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestApply_NoEditsReturnsSource(t *testing.T) {
	src := []byte("has_css?('a')\r\n")
	got, err := Apply(src, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &got[0] != &src[0] {
		t.Fatalf("expected the source slice itself")
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name  string
		edits []Edit
		want  error
	}{
		{"overlap", []Edit{{Span: sp(0, 3), NewText: "x"}, {Span: sp(2, 5), NewText: "y"}}, ErrConflict},
		{"nested", []Edit{{Span: sp(0, 6), NewText: "x"}, {Span: sp(1, 2), NewText: "y"}}, ErrConflict},
		{"insertion strictly inside", []Edit{{Span: sp(0, 3), NewText: "x"}, {Span: sp(1, 1), NewText: "y"}}, ErrConflict},
		{"out of range", []Edit{{Span: sp(4, 9), NewText: "x"}}, ErrOutOfRange},
		{"inverted", []Edit{{Span: sp(3, 1), NewText: "x"}}, ErrOutOfRange},
		{"stale", []Edit{{Span: sp(0, 3), NewText: "x", OldText: "bar"}}, ErrStaleEdit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply([]byte("foo bar"), tt.edits)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if got != nil {
				t.Fatalf("expected no output on error, got %q", got)
			}
		})
	}
}

func TestApply_ConflictErrorNamesPair(t *testing.T) {
	a := Edit{Span: sp(0, 3), NewText: "x"}
	b := Edit{Span: sp(2, 5), NewText: "y"}
	_, err := Apply([]byte("foo bar"), []Edit{b, a})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if diff := cmp.Diff(a, conflict.A); diff != "" {
		t.Fatalf("first edit mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(b, conflict.B); diff != "" {
		t.Fatalf("second edit mismatch (-want +got):\n%s", diff)
	}
}

func TestSpansConflict_DifferentFiles(t *testing.T) {
	a := Edit{Span: source.Span{File: 1, Start: 0, End: 5}}
	b := Edit{Span: source.Span{File: 2, Start: 0, End: 5}}
	if spansConflict(a, b) {
		t.Fatalf("edits in different files must not conflict")
	}
}

func TestMerge_Deterministic(t *testing.T) {
	edits := []Edit{
		{Span: sp(5, 6), NewText: "b"},
		{Span: sp(0, 1), NewText: "z"},
		{Span: sp(5, 6), NewText: "a"},
	}
	reversed := []Edit{edits[2], edits[1], edits[0]}

	if diff := cmp.Diff(Merge(edits), Merge(reversed)); diff != "" {
		t.Fatalf("merge depends on input order (-a +b):\n%s", diff)
	}
	want := []Edit{
		{Span: sp(0, 1), NewText: "z"},
		{Span: sp(5, 6), NewText: "a"},
		{Span: sp(5, 6), NewText: "b"},
	}
	if diff := cmp.Diff(want, Merge(edits)); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectDisjoint(t *testing.T) {
	outer := Edit{Span: sp(0, 20), NewText: "x"}
	inner := Edit{Span: sp(0, 10), NewText: "y"}
	other := Edit{Span: sp(25, 30), NewText: "z"}

	kept, dropped := SelectDisjoint([]Edit{other, outer, inner})

	if diff := cmp.Diff([]Edit{inner, other}, kept); diff != "" {
		t.Fatalf("kept mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Edit{outer}, dropped); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan(t *testing.T) {
	var p Plan
	p.Add(Edit{Span: sp(4, 7), NewText: "baz"})
	p.Add(Edit{Span: sp(0, 0), NewText: "# "})

	if p.Len() != 2 {
		t.Fatalf("expected 2 edits, got %d", p.Len())
	}
	got, err := p.Apply([]byte("foo bar"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "# foo baz" {
		t.Fatalf("expected %q, got %q", "# foo baz", got)
	}
}
