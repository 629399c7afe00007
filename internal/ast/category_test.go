package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/source"
)

func TestIsA(t *testing.T) {
	tests := []struct {
		c, target Category
		want      bool
	}{
		{Send, Send, true},
		{CSend, Send, true},
		{CSend, Call, true},
		{Send, CSend, false},
		{Or, Logical, true},
		{And, Or, false},
		{Str, Literal, true},
		{Block, Call, false},
	}
	for _, tt := range tests {
		t.Run(tt.c.String()+"_"+tt.target.String(), func(t *testing.T) {
			if got := IsA(tt.c, tt.target); got != tt.want {
				t.Errorf("IsA(%s, %s) = %v, want %v", tt.c, tt.target, got, tt.want)
			}
		})
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for c := Category(1); c < categoryCount; c++ {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("lambda"); ok {
		t.Error("unknown category should not parse")
	}
}

func TestSubtypes(t *testing.T) {
	if diff := cmp.Diff([]Category{Send, CSend}, Subtypes(Send)); diff != "" {
		t.Errorf("Subtypes(send) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Category{Or, And}, Subtypes(Logical)); diff != "" {
		t.Errorf("Subtypes(logical) mismatch (-want +got):\n%s", diff)
	}
	if !Call.Abstract() || Send.Abstract() {
		t.Error("abstract flags are wrong")
	}
}

func TestNodeAccessors(t *testing.T) {
	sp := func(a, b uint32) source.Span { return source.Span{Start: a, End: b} }
	arg := NewLiteral(Str, sp(9, 13), Atom{Kind: AtomString, Text: ".a", Span: sp(9, 13)})
	call := NewNode(Send, sp(0, 14), nil, SymAtom("has_css?", sp(0, 8)), arg)

	if call.Receiver() != nil {
		t.Error("expected implicit receiver")
	}
	if !IsAbsent(call.Child(0)) {
		t.Error("receiver slot should be absent")
	}
	if call.MethodName() != "has_css?" {
		t.Errorf("method = %q", call.MethodName())
	}
	if args := call.Arguments(); len(args) != 1 || args[0] != arg {
		t.Errorf("arguments = %v", args)
	}
	if v, ok := arg.StringValue(); !ok || v != ".a" {
		t.Errorf("string value = %q, %v", v, ok)
	}
	if got := call.String(); got != `(send nil :has_css? (str ".a"))` {
		t.Errorf("String() = %s", got)
	}
	if err := Verify(call); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if Count(call) != 2 {
		t.Errorf("Count = %d", Count(call))
	}
}

func TestVerifyRejectsEscapingChild(t *testing.T) {
	child := NewNode(Nil, source.Span{Start: 5, End: 20})
	parent := NewNode(Begin, source.Span{Start: 0, End: 10}, child)
	if err := Verify(parent); err == nil {
		t.Fatal("expected span violation")
	}
}

func TestWalkOrder(t *testing.T) {
	a := NewNode(Nil, source.Span{Start: 1, End: 2})
	b := NewNode(True, source.Span{Start: 5, End: 6})
	or := NewNode(Or, source.Span{Start: 0, End: 7}, a, b)
	var got []Category
	Walk(or, func(n *Node) bool {
		got = append(got, n.Category())
		return true
	})
	if diff := cmp.Diff([]Category{Or, Nil, True}, got); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}
