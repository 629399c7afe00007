package diagfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/diag"
	"capycop/internal/fix"
	"capycop/internal/source"
)

// mergeEdits rewrites the offense on offenseSrc's second line with two
// edits instead of one replacement.
func mergeEdits(id source.FileID) []diag.TextEdit {
	a := uint32(strings.Index(offenseSrc, `"a"`))
	tail := ` || has_css?("b")`
	b := uint32(strings.Index(offenseSrc, tail))
	return []diag.TextEdit{
		{Span: source.Span{File: id, Start: b, End: b + uint32(len(tail))}, NewText: ""},
		{Span: source.Span{File: id, Start: a, End: a + 3}, NewText: `"a, b"`, OldText: `"a"`},
	}
}

func TestPreviewFix_AppliesAllEdits(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte(offenseSrc))

	got, err := previewFix(fs, diag.Fix{Title: "merge", Edits: mergeEdits(id)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{`  expect(has_css?("a") || has_css?("b")).to be(true)`}, got.before); diff != "" {
		t.Fatalf("before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`  expect(has_css?("a, b")).to be(true)`}, got.after); diff != "" {
		t.Fatalf("after mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviewFix_Errors(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte(offenseSrc))
	other := fs.AddVirtual("b_spec.rb", []byte(offenseSrc))
	start := uint32(strings.Index(offenseSrc, "has_css?"))
	span := source.Span{File: id, Start: start, End: start + 8}

	tests := []struct {
		name string
		fix  diag.Fix
		want error
	}{
		{"stale", fix.Replace("merge", span, "x", "has_xpath"), fix.ErrStaleEdit},
		{"past end", diag.Fix{Edits: []diag.TextEdit{{Span: source.Span{File: id, Start: 0, End: 999}}}}, fix.ErrOutOfRange},
		{"conflict", diag.Fix{Edits: []diag.TextEdit{{Span: span, NewText: "a"}, {Span: span, NewText: "b"}}}, fix.ErrConflict},
	}
	for _, tt := range tests {
		if _, err := previewFix(fs, tt.fix); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}

	twoFiles := diag.Fix{Edits: []diag.TextEdit{{Span: span}, {Span: source.Span{File: other}}}}
	if _, err := previewFix(fs, twoFiles); err == nil {
		t.Fatalf("expected an error for a fix editing two files")
	}
	if _, err := previewFix(fs, diag.Fix{}); err == nil {
		t.Fatalf("expected an error for a fix without edits")
	}
}

func TestLineBounds(t *testing.T) {
	content := []byte("ab\ncd\nef")
	tests := []struct {
		from, to   uint32
		start, end uint32
	}{
		{0, 0, 0, 3},
		{4, 5, 3, 6},
		{1, 3, 0, 3},
		{3, 7, 3, 8},
		{8, 8, 6, 8},
	}
	for _, tt := range tests {
		start, end := lineBounds(content, tt.from, tt.to)
		if start != tt.start || end != tt.end {
			t.Fatalf("lineBounds(%d, %d): expected [%d, %d), got [%d, %d)", tt.from, tt.to, tt.start, tt.end, start, end)
		}
	}
}

func TestPrettyFixPreview_OncePerFix(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte(offenseSrc))
	d := offenseBag(fs, id).Items()[0].WithFix("merge selectors", mergeEdits(id)...)
	bag := diag.NewBag(1)
	bag.Add(d)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	out := buf.String()

	if n := strings.Count(out, "    edit "); n != 2 {
		t.Fatalf("expected 2 edit lines, got %d:\n%s", n, out)
	}
	if n := strings.Count(out, "preview:"); n != 1 {
		t.Fatalf("expected one preview for the fix, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, `+ `+`  expect(has_css?("a, b")).to be(true)`) {
		t.Fatalf("expected the merged line in the preview, got:\n%s", out)
	}
}
