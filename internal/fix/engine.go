package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"capycop/internal/diag"
	"capycop/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota
	ApplyModeAll
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// Unsafe also selects fixes that are not AlwaysSafe in ApplyModeAll.
	Unsafe bool
	// DryRun computes FileChange.After without writing files.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Rule          string
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
	Before    []byte
	After     []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

// ApplyFiles collects fixes from diagnostics, selects a subset according
// to opts, and applies them to the files of fs. A fix whose edits overlap
// an already accepted fix is skipped with a reason, never merged.
func ApplyFiles(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates, buildSkips := gatherCandidates(diagnostics)
	result.Skipped = append(result.Skipped, buildSkips...)

	if len(candidates) == 0 {
		return result, ErrNoFixes
	}

	sortCandidates(candidates)

	selected, selectionSkips := selectCandidates(candidates, opts)
	result.Skipped = append(result.Skipped, selectionSkips...)

	if len(selected) == 0 {
		return result, ErrNoFixes
	}

	applied, skippedDuringApply, changes, err := applyCandidates(fs, selected, opts.DryRun)
	result.Applied = append(result.Applied, applied...)
	result.Skipped = append(result.Skipped, skippedDuringApply...)
	result.FileChanges = append(result.FileChanges, changes...)

	if err != nil {
		return result, err
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

// gatherCandidates flattens the fixes of all diagnostics into candidates.
// Fixes without edits and repeated fix IDs are skipped. A missing ID is
// synthesised from the diagnostic code, file, start and fix index. Each
// candidate gets an increasing order for stable sorting later.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	cands := make([]candidate, 0)
	skips := make([]SkippedFix, 0)
	seenIDs := make(map[string]struct{})

	order := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "fix has no edits",
				})
				continue
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			if _, dup := seenIDs[f.ID]; dup {
				skips = append(skips, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "duplicate fix id",
				})
				continue
			}
			seenIDs[f.ID] = struct{}{}
			cands = append(cands, candidate{
				diag:  d,
				fix:   f,
				order: order,
			})
			order++
		}
	}
	return cands, skips
}

// sortCandidates sorts the candidate slice in-place to produce a deterministic
// selection order used by the apply pipeline.
//
// The sort keys, in precedence order, are: file (Primary.File), span start
// (Primary.Start), span end (Primary.End, widest first, so an enclosing fix
// wins over the ones it contains), candidate insertion order
// (candidate.order), diagnostic code (diag.Code), fix preference (IsPreferred,
// preferred first), fix ID, and finally fix Title.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End > dj.Primary.End
		}
		if candidates[i].order != candidates[j].order {
			return candidates[i].order < candidates[j].order
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if candidates[i].fix.IsPreferred != candidates[j].fix.IsPreferred {
			return candidates[i].fix.IsPreferred && !candidates[j].fix.IsPreferred
		}
		if candidates[i].fix.ID != candidates[j].fix.ID {
			return candidates[i].fix.ID < candidates[j].fix.ID
		}
		return candidates[i].fix.Title < candidates[j].fix.Title
	})
}

func selectCandidates(candidates []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		for _, cand := range candidates {
			if cand.fix.ID == opts.TargetID {
				return []candidate{cand}, nil
			}
		}
		return nil, []SkippedFix{{
			ID:     opts.TargetID,
			Reason: "fix id not found",
		}}
	case ApplyModeAll:
		selected := make([]candidate, 0, len(candidates))
		skipped := make([]SkippedFix, 0)
		for _, cand := range candidates {
			if cand.fix.Applicability == diag.FixApplicabilityAlwaysSafe ||
				(opts.Unsafe && cand.fix.Applicability != diag.FixApplicabilityManualReview) {
				selected = append(selected, cand)
				continue
			}
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: fmt.Sprintf("applicability is %s", cand.fix.Applicability.String()),
			})
		}
		return selected, skipped
	case ApplyModeOnce:
		var fallback *candidate
		for i := range candidates {
			cand := candidates[i]
			if cand.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
				return []candidate{cand}, nil
			}
			if fallback == nil {
				fallback = &candidates[i]
			}
		}
		if fallback != nil {
			return []candidate{*fallback}, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

// applyCandidates accepts fixes in order, per file, as long as their edits
// are disjoint from the edits accepted so far and their guards still match
// the file content. Each touched file is then rewritten in one Apply.
func applyCandidates(fs *source.FileSet, selected []candidate, dryRun bool) ([]AppliedFix, []SkippedFix, []FileChange, error) {
	accepted := make(map[source.FileID][]Edit)

	applied := make([]AppliedFix, 0, len(selected))
	skipped := make([]SkippedFix, 0)

	baseDir := fs.BaseDir()

	for _, cand := range selected {
		buckets := groupEditsByFile(cand.fix.Edits)
		var skipReason string

		for fileID, edits := range buckets {
			file := fs.Get(fileID)
			if file == nil {
				skipReason = "target file is unknown"
				break
			}
			if file.Flags&source.FileVirtual != 0 && !dryRun {
				skipReason = "target file is virtual"
				break
			}
			if conflictsWithExisting(accepted[fileID], edits) {
				skipReason = fmt.Sprintf("conflicts with previously applied edits in %s", file.FormatPath("auto", baseDir))
				break
			}
			for _, e := range edits {
				if int(e.Span.End) > len(file.Content) || e.Span.Start > e.Span.End {
					skipReason = ErrOutOfRange.Error()
					break
				}
				if e.OldText != "" && string(file.Content[e.Span.Start:e.Span.End]) != e.OldText {
					skipReason = ErrStaleEdit.Error()
					break
				}
			}
			if skipReason != "" {
				break
			}
		}

		if skipReason != "" {
			skipped = append(skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: skipReason,
			})
			continue
		}

		total := 0
		for fileID, edits := range buckets {
			accepted[fileID] = append(accepted[fileID], edits...)
			total += len(edits)
		}

		applied = append(applied, AppliedFix{
			ID:            cand.fix.ID,
			Title:         cand.fix.Title,
			Code:          cand.diag.Code,
			Rule:          cand.diag.Rule,
			Message:       cand.diag.Message,
			Applicability: cand.fix.Applicability,
			PrimaryPath:   formatFilePath(fs, cand.diag.Primary.File),
			EditCount:     total,
		})
	}

	if len(applied) == 0 {
		return applied, skipped, nil, nil
	}

	fileChanges := make([]FileChange, 0, len(accepted))
	for fileID, edits := range accepted {
		file := fs.Get(fileID)
		buf, err := Apply(file.Content, edits)
		if err != nil {
			return applied, skipped, fileChanges, fmt.Errorf("%s: %w", file.Path, err)
		}

		if !dryRun {
			mode := os.FileMode(0o644)
			if info, err := os.Stat(file.Path); err == nil {
				mode = info.Mode()
			}
			if err := os.WriteFile(file.Path, file.Denormalize(buf), mode); err != nil {
				return applied, skipped, fileChanges, fmt.Errorf("write %s: %w", file.Path, err)
			}
		}

		fileChanges = append(fileChanges, FileChange{
			Path:      file.FormatPath("relative", baseDir),
			EditCount: len(edits),
			Before:    file.Content,
			After:     buf,
		})
	}

	sort.SliceStable(fileChanges, func(i, j int) bool {
		return fileChanges[i].Path < fileChanges[j].Path
	})

	return applied, skipped, fileChanges, nil
}

func conflictsWithExisting(existing []Edit, edits []Edit) bool {
	for _, prev := range existing {
		for _, cand := range edits {
			if spansConflict(prev, cand) {
				return true
			}
		}
	}
	// edits of one fix must be disjoint among themselves too
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if spansConflict(edits[i], edits[j]) {
				return true
			}
		}
	}
	return false
}

func groupEditsByFile(edits []Edit) map[source.FileID][]Edit {
	buckets := make(map[source.FileID][]Edit)
	for _, edit := range edits {
		buckets[edit.Span.File] = append(buckets[edit.Span.File], edit)
	}
	return buckets
}

func formatFilePath(fs *source.FileSet, fileID source.FileID) string {
	if fs == nil {
		return ""
	}
	file := fs.Get(fileID)
	if file == nil {
		return ""
	}
	return file.FormatPath("auto", fs.BaseDir())
}
