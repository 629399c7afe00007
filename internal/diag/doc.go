// Package diag defines the diagnostic model shared by the parser, the rule
// walker, the fix engine and the output formats.
//
// Diagnostic is the central record:
//
//   - Severity – Info, Convention, Warning or Error.
//   - Code – numeric identifier with a stable string form (LNT1001, SYN2001).
//   - Rule – the department-qualified rule name for offenses.
//   - Message – human oriented text.
//   - Primary span – the source.Span of the offending node.
//   - Fixes – structured corrections made of TextEdits.
//
// Fixes are data only. Producers never mutate source; internal/fix applies
// the edits and rejects overlapping ones.
//
// Producers emit through a Reporter (BagReporter, DedupReporter) or build a
// Diagnostic directly. Bag supports limits, sorting and deduplication so
// output order stays deterministic across runs and worker counts.
//
// Package diag performs no formatting or IO; rendering lives in
// internal/diagfmt.
package diag
