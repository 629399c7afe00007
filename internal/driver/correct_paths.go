package driver

import (
	"bytes"
	"context"
	"errors"
	"os"

	"capycop/internal/rule"
	"capycop/internal/source"
)

// CorrectPathsOptions configures correcting files on disk.
type CorrectPathsOptions struct {
	CorrectOptions
	// DryRun computes corrections without writing files.
	DryRun bool
	// Progress receives one event per file; nil disables them.
	Progress ProgressSink
}

// CorrectFileResult captures the correction of a single file.
type CorrectFileResult struct {
	*CorrectResult
	// Written is set when the corrected content was saved.
	Written bool
	Err     error
}

// CorrectPaths runs Correct over every file and writes the corrected ones
// back, keeping the file mode, the BOM and CRLF line endings. A file that
// fails to load or to correct gets its Err set and the others proceed;
// the returned error is reserved for cancellation.
func CorrectPaths(ctx context.Context, baseDir string, files []string, w *rule.Walker, opts CorrectPathsOptions) ([]CorrectFileResult, error) {
	fileSet := source.NewFileSetWithBase(baseDir)
	results := make([]CorrectFileResult, 0, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		id, err := fileSet.Load(path)
		if err != nil {
			results = append(results, CorrectFileResult{CorrectResult: &CorrectResult{Path: path}, Err: err})
			emitProgress(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
			continue
		}

		res, err := Correct(ctx, fileSet, id, w, opts.CorrectOptions)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return results, err
		}
		result := CorrectFileResult{CorrectResult: res, Err: err}
		if err == nil && !opts.DryRun && !bytes.Equal(res.Before, res.After) {
			result.Err = writeCorrected(fileSet.Get(id), res.After)
			result.Written = result.Err == nil
		}
		status := StatusDone
		if result.Err != nil {
			status = StatusError
		}
		emitProgress(opts.Progress, Event{File: res.Path, Stage: StageCheck, Status: status, Err: result.Err})
		results = append(results, result)
	}
	return results, nil
}

func writeCorrected(file *source.File, content []byte) error {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(file.Path); statErr == nil {
		mode = info.Mode()
	}
	return os.WriteFile(file.Path, file.Denormalize(content), mode.Perm())
}

func emitProgress(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
