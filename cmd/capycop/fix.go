package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"capycop/internal/diagfmt"
	"capycop/internal/driver"
	"capycop/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.rb|directory]...",
	Short: "Apply corrections to Ruby spec files",
	Long: `Run the rules and apply their corrections until nothing is left to correct.
With --once or --id a single fix is applied instead.`,
	RunE: runFix,
}

func init() {
	addRunFlags(fixCmd)
	fixCmd.Flags().Bool("unsafe", false, "also apply corrections that may change behaviour")
	fixCmd.Flags().Bool("dry-run", false, "compute corrections without writing files")
	fixCmd.Flags().Bool("diff", false, "print a unified diff of every change")
	fixCmd.Flags().Int("max-iterations", 0, "bound the correction loop (0 = default)")
	fixCmd.Flags().Bool("once", false, "apply the first available fix only")
	fixCmd.Flags().String("id", "", "apply the fix with this identifier")
	fixCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
}

type fixOptions struct {
	unsafe        bool
	dryRun        bool
	diff          bool
	maxIterations int
	once          bool
	id            string
	ui            uiMode
}

func readFixOptions(cmd *cobra.Command) (fixOptions, error) {
	var opts fixOptions
	flags := cmd.Flags()
	var err error
	if opts.unsafe, err = flags.GetBool("unsafe"); err != nil {
		return opts, err
	}
	if opts.dryRun, err = flags.GetBool("dry-run"); err != nil {
		return opts, err
	}
	if opts.diff, err = flags.GetBool("diff"); err != nil {
		return opts, err
	}
	if opts.maxIterations, err = flags.GetInt("max-iterations"); err != nil {
		return opts, err
	}
	if opts.maxIterations < 0 {
		return opts, fmt.Errorf("--max-iterations must not be negative")
	}
	if opts.once, err = flags.GetBool("once"); err != nil {
		return opts, err
	}
	if opts.id, err = flags.GetString("id"); err != nil {
		return opts, err
	}
	if opts.id != "" && opts.once {
		return opts, fmt.Errorf("--id cannot be combined with --once")
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	return opts, nil
}

func runFix(cmd *cobra.Command, args []string) (retErr error) {
	fopts, err := readFixOptions(cmd)
	if err != nil {
		return err
	}

	finishTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { finishTrace(retErr) }()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.printTimings(cmd)

	if fopts.once || fopts.id != "" {
		return runFixSingle(cmd, s, fopts)
	}
	return runFixAll(cmd, s, fopts)
}

// runFixAll drives the correction loop over every file.
func runFixAll(cmd *cobra.Command, s *session, fopts fixOptions) error {
	copts := driver.CorrectPathsOptions{
		CorrectOptions: driver.CorrectOptions{
			MaxIterations: fopts.maxIterations,
			Unsafe:        fopts.unsafe,
			Timer:         s.timer,
		},
		DryRun: fopts.dryRun,
	}

	var (
		results []driver.CorrectFileResult
		err     error
	)
	if shouldUseTUI(fopts.ui, len(s.files), fopts.diff) {
		results, err = runCorrectWithUI(cmd.Context(), "fix", s.baseDir, s.files, s.walker, copts)
	} else {
		results, err = driver.CorrectPaths(cmd.Context(), s.baseDir, s.files, s.walker, copts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary := diagfmt.Summary{Files: len(results)}
	var failed []error
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Err)
			fmt.Fprintf(cmd.ErrOrStderr(), "capycop: %s: %v\n", r.Path, r.Err)
			continue
		}
		if !r.Changed() {
			continue
		}
		summary.Corrected += r.Applied
		if err := reportCorrection(out, r, fopts, s.quiet); err != nil {
			return err
		}
	}
	if !s.quiet {
		diagfmt.WriteSummary(out, summary, useColor)
	}
	return errors.Join(failed...)
}

func reportCorrection(out io.Writer, r driver.CorrectFileResult, fopts fixOptions, quiet bool) error {
	if fopts.diff {
		return diagfmt.WriteDiff(out, r.Path, string(r.Before), string(r.After), useColor)
	}
	if quiet {
		return nil
	}
	verb := "Corrected"
	if fopts.dryRun {
		verb = "Would correct"
	}
	var err error
	if r.Deferred > 0 {
		_, err = fmt.Fprintf(out, "%s %s (%d edits in %d passes, %d left for a later run)\n", verb, r.Path, r.Applied, r.Iterations, r.Deferred)
	} else {
		_, err = fmt.Fprintf(out, "%s %s (%d edits in %d passes)\n", verb, r.Path, r.Applied, r.Iterations)
	}
	return err
}

// runFixSingle applies exactly one fix picked from the current diagnostics.
func runFixSingle(cmd *cobra.Command, s *session, fopts fixOptions) error {
	res, err := driver.AnalyzeFiles(cmd.Context(), s.baseDir, s.files, s.walker, s.opts)
	if err != nil {
		return fmt.Errorf("fix: analyze failed: %w", err)
	}
	opts := fix.ApplyOptions{
		Mode:     fix.ApplyModeOnce,
		TargetID: fopts.id,
		Unsafe:   fopts.unsafe,
		DryRun:   fopts.dryRun,
	}
	if fopts.id != "" {
		opts.Mode = fix.ApplyModeID
	}
	applied, applyErr := fix.ApplyFiles(res.FileSet, res.Bag(0).Items(), opts)
	return handleApplyResult(cmd.OutOrStdout(), applied, applyErr, fopts.diff)
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, showDiff bool) error {
	if res == nil {
		return applyErr
	}
	var printErr error

	if len(res.Applied) > 0 {
		_, printErr = fmt.Fprintf(out, "Applied %d fix(es):\n", len(res.Applied))
		if printErr != nil {
			return printErr
		}
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			_, printErr = fmt.Fprintf(out, "  %s [%s] %s: %s (%d edits, %s)\n",
				item.Title, item.ID, item.Rule, location, item.EditCount, item.Applicability.String())
			if printErr != nil {
				return printErr
			}
		}
	}

	if len(res.FileChanges) > 0 {
		_, printErr = fmt.Fprintln(out, "Updated files:")
		if printErr != nil {
			return printErr
		}
		for _, change := range res.FileChanges {
			_, printErr = fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
			if printErr != nil {
				return printErr
			}
			if showDiff {
				if printErr = diagfmt.WriteDiff(out, change.Path, string(change.Before), string(change.After), useColor); printErr != nil {
					return printErr
				}
			}
		}
	}

	if len(res.Skipped) > 0 {
		_, printErr = fmt.Fprintln(out, "Skipped fixes:")
		if printErr != nil {
			return printErr
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				_, printErr = fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				_, printErr = fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
			if printErr != nil {
				return printErr
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			_, printErr = fmt.Fprintln(out, "No applicable fixes found.")
			return printErr
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		_, printErr = fmt.Fprintln(out, "No fixes applied.")
		return printErr
	}
	return nil
}
