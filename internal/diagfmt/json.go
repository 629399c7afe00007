package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"capycop/internal/diag"
	"capycop/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
	// BeforeLines and AfterLines show the whole lines the fix touches,
	// with every edit applied; set with IncludePreviews.
	BeforeLines []string `json:"before_lines,omitempty"`
	AfterLines  []string `json:"after_lines,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity    string       `json:"severity"`
	Code        string       `json:"code"`
	Rule        string       `json:"rule,omitempty"`
	Message     string       `json:"message"`
	Correctable bool         `json:"correctable"`
	Location    LocationJSON `json:"location"`
	Notes       []NoteJSON   `json:"notes,omitempty"`
	Fixes       []FixJSON    `json:"fixes,omitempty"`
}

// SummaryJSON counts what the run inspected and found.
type SummaryJSON struct {
	Files       int `json:"files"`
	Offenses    int `json:"offenses"`
	Correctable int `json:"correctable"`
	Dropped     int `json:"dropped,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Summary     *SummaryJSON     `json:"summary,omitempty"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(fs.Get(span.File), fs, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}

	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}

	return loc
}

// sortFixes puts preferred and safer fixes first.
func sortFixes(fixes []diag.Fix) {
	sort.SliceStable(fixes, func(i, j int) bool {
		fi, fj := fixes[i], fixes[j]
		if fi.IsPreferred != fj.IsPreferred {
			return fi.IsPreferred && !fj.IsPreferred
		}
		if fi.Applicability != fj.Applicability {
			return fi.Applicability < fj.Applicability
		}
		if fi.Kind != fj.Kind {
			return fi.Kind < fj.Kind
		}
		if fi.Title != fj.Title {
			return fi.Title < fj.Title
		}
		return fi.ID < fj.ID
	})
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for i := range maxItems {
		d := items[i]

		diagJSON := DiagnosticJSON{
			Severity:    d.Severity.String(),
			Code:        d.Code.ID(),
			Rule:        d.Rule,
			Message:     d.Message,
			Correctable: d.Correctable(),
			Location:    makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}

		if opts.IncludeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			fixes := append([]diag.Fix(nil), d.Fixes...)
			sortFixes(fixes)

			diagJSON.Fixes = make([]FixJSON, 0, len(fixes))
			for _, fix := range fixes {
				fixJSON := FixJSON{
					ID:            fix.ID,
					Title:         fix.Title,
					Kind:          fix.Kind.String(),
					Applicability: fix.Applicability.String(),
					IsPreferred:   fix.IsPreferred,
				}
				if len(fix.Edits) > 0 {
					fixJSON.Edits = make([]FixEditJSON, len(fix.Edits))
					for k, edit := range fix.Edits {
						fixJSON.Edits[k] = FixEditJSON{
							Location: makeLocation(edit.Span, fs, opts.PathMode, opts.IncludePositions),
							NewText:  edit.NewText,
							OldText:  edit.OldText,
						}
					}
					if opts.IncludePreviews {
						if preview, err := previewFix(fs, fix); err == nil {
							fixJSON.BeforeLines = preview.before
							fixJSON.AfterLines = preview.after
						}
					}
				}
				diagJSON.Fixes = append(diagJSON.Fixes, fixJSON)
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON форматирует диагностики в JSON формат.
// Выводит массив диагностик с полной информацией о местоположении, заметках и исправлениях.
// summary may be nil.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts, summary *Summary) error {
	output := BuildDiagnosticsOutput(bag, fs, opts)
	if summary != nil {
		output.Summary = &SummaryJSON{
			Files:       summary.Files,
			Offenses:    summary.Offenses,
			Correctable: summary.Correctable,
			Dropped:     summary.Dropped,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
