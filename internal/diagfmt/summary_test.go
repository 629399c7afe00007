package diagfmt

import (
	"bytes"
	"testing"

	"capycop/internal/diag"
	"capycop/internal/source"
)

func TestNewSummary(t *testing.T) {
	bag := diag.NewBag(3)
	sp := source.Span{Start: 0, End: 1}
	bag.Add(diag.NewOffense("R", diag.SevConvention, sp, "fixable").WithFix("fix", diag.TextEdit{Span: sp, NewText: "x"}))
	bag.Add(diag.NewOffense("R", diag.SevConvention, sp, "plain"))
	bag.Add(diag.NewError(diag.ParseSyntax, sp, "broken"))
	bag.Add(diag.NewError(diag.ParseSyntax, sp, "dropped"))

	got := NewSummary(bag, 4)
	want := Summary{Files: 4, Offenses: 2, Correctable: 1, Errors: 1, Dropped: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSummaryString(t *testing.T) {
	tests := []struct {
		s    Summary
		want string
	}{
		{Summary{Files: 1}, "1 file inspected, no offenses detected"},
		{Summary{Files: 3, Offenses: 2, Correctable: 2}, "3 files inspected, 2 offenses detected, 2 offenses autocorrectable"},
		{Summary{Files: 2, Offenses: 1, Corrected: 1}, "2 files inspected, 1 offense detected, 1 offense corrected"},
		{Summary{Files: 2, Errors: 1, Dropped: 5}, "2 files inspected, no offenses detected, 1 error, 5 not shown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestWriteSummary_Plain(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, Summary{Files: 1, Offenses: 1}, false)
	if got, want := buf.String(), "1 file inspected, 1 offense detected\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
