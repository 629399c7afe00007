package token

import "testing"

func TestKindStringCoversAllKinds(t *testing.T) {
	for k := Invalid; k <= RBracket; k++ {
		if k.String() == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(250).String() != "unknown" {
		t.Error("out of range kind should be unknown")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		text string
		want Kind
		ok   bool
	}{
		{"nil", KwNil, true},
		{"or", KwOr, true},
		{"unless", KwUnless, true},
		{"Nil", Invalid, false},
		{"has_css?", Invalid, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := LookupKeyword(tt.text)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("LookupKeyword(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStartsArgument(t *testing.T) {
	if !(Token{Kind: StringLit}).StartsArgument() {
		t.Error("string literal should start an argument")
	}
	if (Token{Kind: LBracket}).StartsArgument() {
		t.Error("attached [ is an index, not an argument")
	}
	if !(Token{Kind: LBracket, Flags: SpaceBefore}).StartsArgument() {
		t.Error("spaced [ should start an array argument")
	}
	if (Token{Kind: OrOr, Flags: SpaceBefore}).StartsArgument() {
		t.Error("operator should not start an argument")
	}
}
