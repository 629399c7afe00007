package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capycop/internal/fix"
	"capycop/internal/observ"
	"capycop/internal/parser"
	"capycop/internal/rule"
	"capycop/internal/source"
	"capycop/internal/trace"
)

// ErrCorrectionBrokeSyntax is returned when corrected source no longer
// parses. The file is left as it was.
var ErrCorrectionBrokeSyntax = errors.New("correction produced source that does not parse")

// CorrectOptions configure the autocorrect loop.
type CorrectOptions struct {
	// MaxIterations bounds the loop, 0 means fix.DefaultMaxIterations.
	MaxIterations int
	// Unsafe also applies corrections of rules without SafeAutocorrect.
	Unsafe bool
	Timer  *observ.Timer
}

// CorrectResult reports the autocorrect loop over one file.
type CorrectResult struct {
	Path       string
	Before     []byte
	After      []byte
	Iterations int
	Applied    int
	Deferred   int
}

// Changed reports whether any correction was applied.
func (r *CorrectResult) Changed() bool { return r.Applied > 0 }

// Correct runs the rules over file id and applies their corrections until
// no rule has anything left to correct. Every pass re-parses the corrected
// text, so a correction that enables another (a chain of three || calls)
// is picked up on the next pass. A file that does not parse to begin with
// has nothing to correct.
func Correct(ctx context.Context, fs *source.FileSet, id source.FileID, w *rule.Walker, opts CorrectOptions) (*CorrectResult, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	path := file.FormatPath("relative", fs.BaseDir())

	span := trace.BeginFile(ctx, "correct", path)

	pass := 0
	analyse := func(src []byte) ([]fix.Edit, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pass++
		pspan := span.Child(trace.ScopePass, fmt.Sprintf("pass %d", pass))
		defer pspan.End("")

		scratch := source.NewFileSet()
		f := scratch.Get(scratch.AddVirtual(file.Path, src))
		root, err := parser.ParseFile(f)
		if err != nil {
			if pass == 1 {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %w", ErrCorrectionBrokeSyntax, err)
		}
		offenses, err := w.Run(&rule.Context{File: f}, root)
		if err != nil {
			return nil, err
		}
		var edits []fix.Edit
		for _, o := range offenses {
			if o.Correction == nil || (!o.Rule.SafeAutocorrect && !opts.Unsafe) {
				continue
			}
			edits = append(edits, fix.Edit{
				Span:    o.Correction.Span,
				NewText: o.Correction.Text,
				OldText: f.Text(o.Correction.Span),
			})
		}
		return edits, nil
	}

	start := time.Now()
	conv, err := fix.Converge(file.Content, analyse, opts.MaxIterations)
	opts.Timer.Add("correct", time.Since(start))
	res := &CorrectResult{
		Path:       path,
		Before:     file.Content,
		After:      conv.Source,
		Iterations: conv.Iterations,
		Applied:    conv.Applied,
		Deferred:   conv.Deferred,
	}
	span.End(fmt.Sprintf("%d edits in %d passes", res.Applied, res.Iterations))
	if err != nil {
		// ничего не пишем: результат может быть промежуточным
		res.After = file.Content
		return res, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}
