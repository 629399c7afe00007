package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capycop/internal/ast"
	"capycop/internal/diag"
	"capycop/internal/fix"
	"capycop/internal/observ"
	"capycop/internal/parser"
	"capycop/internal/rule"
	"capycop/internal/source"
	"capycop/internal/trace"
)

// Options configure one analysis run.
type Options struct {
	// MaxDiagnostics caps the diagnostics kept per file, 0 means no limit.
	MaxDiagnostics int
	// Jobs bounds parallel file analysis, 0 means GOMAXPROCS.
	Jobs int
	// Cache stores results between runs; nil disables caching.
	Cache *Cache
	// Timer collects phase timings; nil disables them.
	Timer *observ.Timer
	// Progress receives per-file events; nil disables them.
	Progress ProgressSink
}

// FileResult holds what was found in one file.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Root is nil on a parse error and for results served from the cache.
	Root   *ast.Node
	Bag    *diag.Bag
	Cached bool
}

// Offenses counts the rule offenses in the result.
func (r *FileResult) Offenses() int {
	n := 0
	for _, d := range r.Bag.Items() {
		if d.Code == diag.LintOffense {
			n++
		}
	}
	return n
}

// AnalyzeSource parses one file of fs, runs the walker over it and converts
// findings to diagnostics. Parse errors and failing rules are diagnostics
// too; the returned error is reserved for cancellation and unknown files.
func AnalyzeSource(ctx context.Context, fs *source.FileSet, id source.FileID, w *rule.Walker, opts Options) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("unknown file id %d", id)
	}
	path := file.FormatPath("relative", fs.BaseDir())

	span := trace.BeginFile(ctx, "analyze", path)
	defer span.End("")

	res := &FileResult{
		Path:   path,
		FileID: id,
		Bag:    diag.NewBag(opts.MaxDiagnostics),
	}
	started := time.Now()

	var key Key
	if opts.Cache != nil {
		key = opts.Cache.Key(file.Content, w.Rules())
		ok, err := opts.Cache.Get(key, id, res.Bag)
		switch {
		case err != nil:
			span.Note("cache", "read failed: "+err.Error())
		case ok:
			res.Cached = true
			span.MarkCached()
			opts.emit(Event{File: path, Stage: StageCheck, Status: StatusCached, Elapsed: time.Since(started)})
			return res, nil
		}
	}

	opts.emit(Event{File: path, Stage: StageParse, Status: StatusWorking})
	parseStart := time.Now()
	pspan := span.Child(trace.ScopePass, "parse")
	root, err := parser.ParseFile(file)
	pspan.End("")
	opts.Timer.Add("parse", time.Since(parseStart))

	rep := diag.BagReporter{Bag: res.Bag}
	var perr *parser.ParseError
	switch {
	case errors.As(err, &perr):
		diag.ReportError(rep, diag.ParseSyntax, perr.Span, perr.Msg).Emit()
	case err != nil:
		diag.ReportError(rep, diag.ParseSyntax, source.Span{File: id}, err.Error()).Emit()
	default:
		res.Root = root
		opts.emit(Event{File: path, Stage: StageCheck, Status: StatusWorking})
		walkStart := time.Now()
		wspan := span.Child(trace.ScopePass, "walk")
		offenses, werr := w.Run(&rule.Context{File: file}, root)
		wspan.SetOffenses(len(offenses))
		span.SetOffenses(len(offenses))
		wspan.End("")
		opts.Timer.Add("walk", time.Since(walkStart))

		for _, o := range offenses {
			wspan.Finding(o.Rule.Name, o.Span.String())
			res.Bag.Add(OffenseDiagnostic(file, path, o))
		}
		for _, re := range ruleErrors(werr) {
			diag.ReportError(rep, diag.LintRuleFailure, re.Node.Span(), re.Error()).
				WithNote(re.Node.Span(), "other rules still ran on this node").
				Emit()
		}
	}
	res.Bag.Sort()
	if err != nil {
		opts.emit(Event{File: path, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(started)})
	} else {
		opts.emit(Event{File: path, Stage: StageCheck, Status: StatusDone, Elapsed: time.Since(started)})
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, res.Bag.Items()); err != nil {
			span.Note("cache", "write failed: "+err.Error())
		}
	}
	return res, nil
}

// AnalyzeFile loads path into a fresh FileSet and analyses it.
func AnalyzeFile(ctx context.Context, path string, w *rule.Walker, opts Options) (*source.FileSet, *FileResult, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return fs, nil, fmt.Errorf("load %s: %w", path, err)
	}
	res, err := AnalyzeSource(ctx, fs, id, w, opts)
	return fs, res, err
}

// OffenseDiagnostic converts a rule offense found in file. A correction
// becomes a preferred fix guarded by the text it replaces; corrections of
// rules without SafeAutocorrect need review.
func OffenseDiagnostic(file *source.File, path string, o rule.Offense) diag.Diagnostic {
	d := diag.NewOffense(o.Rule.Name, o.Rule.Severity, o.Span, o.Message)
	c := o.Correction
	if c == nil {
		return d
	}
	fixOpts := []fix.Option{
		fix.WithID(fix.CorrectionID(o.Rule.Name, path, c.Span)),
		fix.Preferred(),
	}
	if !o.Rule.SafeAutocorrect {
		fixOpts = append(fixOpts, fix.Unsafe())
	}
	return d.WithFixSuggestion(fix.Replace(
		"Autocorrect "+o.Rule.Name, c.Span, c.Text, file.Text(c.Span), fixOpts...,
	))
}

// ruleErrors extracts the RuleErrors joined by Walker.Run.
func ruleErrors(err error) []*rule.RuleError {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	out := make([]*rule.RuleError, 0, len(errs))
	for _, e := range errs {
		var re *rule.RuleError
		if errors.As(e, &re) {
			out = append(out, re)
		}
	}
	return out
}
