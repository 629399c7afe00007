package diag

import (
	"capycop/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes covered by Span with NewText. A non-empty
// OldText guards the edit: it applies only while the span still holds
// exactly that text.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Rule     string // имя правила, пусто для ошибок парсера и IO
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Correctable reports whether the diagnostic carries at least one fix with
// edits.
func (d Diagnostic) Correctable() bool {
	for _, f := range d.Fixes {
		if len(f.Edits) > 0 {
			return true
		}
	}
	return false
}
