package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"capycop/internal/diag"
)

// Edit replaces a span of source text. OldText, when set, must equal the
// text currently in the span.
type Edit = diag.TextEdit

var (
	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("conflicting edits")
	// ErrOutOfRange is returned for spans outside the source.
	ErrOutOfRange = errors.New("edit span out of range")
	// ErrStaleEdit is returned when OldText no longer matches the source.
	ErrStaleEdit = errors.New("existing text does not match expected content")
)

// ConflictError names the first pair of overlapping edits.
type ConflictError struct {
	A, B Edit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting edits at %s and %s", e.A.Span, e.B.Span)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Apply rewrites src with edits. Edits are ordered by span start (stably,
// so insertions at one offset keep their given order) and the bytes
// between them are copied verbatim. On any error nothing is produced:
// either every edit applies or none does. No edits returns src itself.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return src, nil
	}
	sorted := sortedByStart(edits)
	if err := validate(src, sorted); err != nil {
		return nil, err
	}

	size := len(src)
	for _, e := range sorted {
		size += len(e.NewText) - int(e.Span.End-e.Span.Start)
	}
	out := make([]byte, 0, max(size, 0))
	pos := uint32(0)
	for _, e := range sorted {
		out = append(out, src[pos:e.Span.Start]...)
		out = append(out, e.NewText...)
		pos = e.Span.End
	}
	out = append(out, src[pos:]...)
	return out, nil
}

func validate(src []byte, sorted []Edit) error {
	var widest *Edit
	for i := range sorted {
		e := &sorted[i]
		if e.Span.Start > e.Span.End || int(e.Span.End) > len(src) {
			return fmt.Errorf("%w: %s in %d bytes", ErrOutOfRange, e.Span, len(src))
		}
		if e.OldText != "" && string(src[e.Span.Start:e.Span.End]) != e.OldText {
			return fmt.Errorf("%w at %s", ErrStaleEdit, e.Span)
		}
		if widest != nil && spansConflict(*widest, *e) {
			return &ConflictError{A: *widest, B: *e}
		}
		if !e.Span.Empty() && (widest == nil || e.Span.End > widest.Span.End) {
			widest = e
		}
	}
	return nil
}

// sortedByStart returns a copy ordered by start, then end, keeping input
// order for ties.
func sortedByStart(edits []Edit) []Edit {
	out := slices.Clone(edits)
	slices.SortStableFunc(out, func(a, b Edit) int {
		if a.Span.Start != b.Span.Start {
			return cmp.Compare(a.Span.Start, b.Span.Start)
		}
		return cmp.Compare(a.Span.End, b.Span.End)
	})
	return out
}

// spansConflict reports whether two edits overlap. Spans are half-open
// [Start, End). Insertions (Start == End) never conflict with each other
// and conflict with a replacement only strictly inside it; at either
// boundary the order is unambiguous.
func spansConflict(a, b Edit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if a.Span.File != b.Span.File {
		return false
	}
	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// Merge returns edits in a deterministic order: file, start, end, then
// replacement text. Use it when edits are gathered concurrently.
func Merge(edits []Edit) []Edit {
	out := slices.Clone(edits)
	slices.SortStableFunc(out, func(a, b Edit) int {
		switch {
		case a.Span.File != b.Span.File:
			return cmp.Compare(a.Span.File, b.Span.File)
		case a.Span.Start != b.Span.Start:
			return cmp.Compare(a.Span.Start, b.Span.Start)
		case a.Span.End != b.Span.End:
			return cmp.Compare(a.Span.End, b.Span.End)
		}
		return strings.Compare(a.NewText, b.NewText)
	})
	return out
}

// SelectDisjoint keeps the edits that can be applied together, earliest
// first, and returns the rest as dropped. Dropped edits are usually found
// again on the next pass over the corrected source.
func SelectDisjoint(edits []Edit) (kept, dropped []Edit) {
	for _, e := range Merge(edits) {
		ok := true
		for _, k := range kept {
			if spansConflict(k, e) {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	return kept, dropped
}

// Plan accumulates the edits of one correction pass. Edits are never
// changed once added.
type Plan struct {
	edits []Edit
}

func (p *Plan) Add(e Edit) { p.edits = append(p.edits, e) }

func (p *Plan) Len() int { return len(p.edits) }

// Edits returns a sorted copy.
func (p *Plan) Edits() []Edit { return Merge(p.edits) }

// Apply applies every edit of the plan to src.
func (p *Plan) Apply(src []byte) ([]byte, error) { return Apply(src, p.Edits()) }
