package diag

import (
	"testing"

	"capycop/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		b.Add(New(SevWarning, LintOffense, source.Span{Start: uint32(i), End: uint32(i + 1)}, "x"))
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", b.Len())
	}
	if b.Dropped() != 1 {
		t.Fatalf("expected 1 dropped, got %d", b.Dropped())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	sp := func(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }
	b := NewBag(0)
	b.Add(NewOffense("B/Rule", SevConvention, sp(10, 20), "later"))
	b.Add(NewOffense("A/Rule", SevConvention, sp(0, 5), "first"))
	b.Add(NewError(ParseSyntax, sp(0, 5), "syntax"))
	b.Add(NewOffense("A/Rule", SevConvention, sp(0, 5), "first again"))

	b.Sort()
	b.Dedup()

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedup, got %d", len(items))
	}
	if items[0].Code != ParseSyntax {
		t.Fatalf("expected error first at equal span, got %s", items[0].Code.ID())
	}
	if items[1].Rule != "A/Rule" || items[2].Rule != "B/Rule" {
		t.Fatalf("expected A/Rule then B/Rule, got %s then %s", items[1].Rule, items[2].Rule)
	}
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := NewOffense("A/Rule", SevConvention, source.Span{Start: 1, End: 2}, "msg")
	r.Report(d)
	r.Report(d)
	ReportOffense(r, "A/Rule", SevConvention, source.Span{Start: 3, End: 4}, "msg").
		WithFix("fix", TextEdit{Span: source.Span{Start: 3, End: 4}, NewText: "y"}).
		Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if !bag.Items()[1].Correctable() {
		t.Fatalf("expected second diagnostic to carry a fix")
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{LintOffense, "LNT1001"},
		{ParseSyntax, "SYN2001"},
		{FixConflict, "FIX3001"},
		{IOLoadFileError, "IO4001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Fatalf("expected %s, got %s", tt.want, got)
		}
	}
}
