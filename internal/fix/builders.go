package fix

import (
	"fmt"

	"capycop/internal/diag"
	"capycop/internal/source"
)

// Option adjusts a fix built by Replace.
type Option func(*diag.Fix)

// WithID sets the identifier `fix --id` selects the fix by.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// Preferred marks the fix applied for its diagnostic when several exist.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

// WithApplicability overrides how safe the fix is to apply in bulk.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

// Unsafe marks the correction of a rule without safe autocorrect. Bulk
// application skips it unless unsafe fixes are requested.
func Unsafe() Option {
	return WithApplicability(diag.FixApplicabilitySafeWithHeuristics)
}

// Replace builds a one-edit quick fix swapping the text under span for
// newText. oldText is what the rule saw there; ApplyFiles refuses the fix
// once the file holds something else. An empty oldText is not checked.
func Replace(title string, span source.Span, newText, oldText string, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{{Span: span, NewText: newText, OldText: oldText}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// CorrectionID names the correction rule proposes for span of path, e.g.
// "Capybara/HasCssMatcher@spec/a_spec.rb:0-30". Byte offsets keep it
// stable across runs on the same text.
func CorrectionID(rule, path string, span source.Span) string {
	return fmt.Sprintf("%s@%s:%d-%d", rule, path, span.Start, span.End)
}
