package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"capycop/internal/diag"
	"capycop/internal/diagfmt"
	"capycop/internal/driver"
	"capycop/internal/source"
	"capycop/internal/version"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] [file.rb|directory]...",
	Short: "Report offenses in Ruby spec files",
	Long: `Parse the given files (or every *.rb under the given directories), run the
enabled rules and print what they find. Exits with status 1 when offenses
or errors remain.`,
	RunE: runLint,
}

func init() {
	addRunFlags(lintCmd)
	lintCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	lintCmd.Flags().String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	lintCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
	lintCmd.Flags().Bool("fix", false, "apply safe corrections before reporting")
	lintCmd.Flags().Bool("unsafe", false, "with --fix, also apply unsafe corrections")
	lintCmd.Flags().Bool("with-notes", false, "include notes")
	lintCmd.Flags().Bool("suggest", false, "include suggested fixes")
	lintCmd.Flags().Bool("preview", false, "with --suggest, show a preview of each fix")
	lintCmd.Flags().Int8("context", 0, "source lines shown around each offense")
	lintCmd.Flags().Uint8("width", 0, "clip messages to this many columns (0 = no limit)")
}

type lintOptions struct {
	format    string
	pathMode  diagfmt.PathMode
	ui        uiMode
	fix       bool
	unsafe    bool
	withNotes bool
	suggest   bool
	preview   bool
	context   int8
	width     uint8
}

func readLintOptions(cmd *cobra.Command) (lintOptions, error) {
	var opts lintOptions
	flags := cmd.Flags()

	format, err := flags.GetString("format")
	if err != nil {
		return opts, err
	}
	opts.format = strings.ToLower(format)
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", format)
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return opts, err
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return opts, fmt.Errorf("invalid --path-mode value %q (expected auto|absolute|relative|basename)", pathMode)
	}

	uiValue, err := flags.GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}

	if opts.fix, err = flags.GetBool("fix"); err != nil {
		return opts, err
	}
	if opts.unsafe, err = flags.GetBool("unsafe"); err != nil {
		return opts, err
	}
	if opts.unsafe && !opts.fix {
		return opts, fmt.Errorf("--unsafe requires --fix")
	}
	if opts.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, err
	}
	if opts.suggest, err = flags.GetBool("suggest"); err != nil {
		return opts, err
	}
	if opts.preview, err = flags.GetBool("preview"); err != nil {
		return opts, err
	}
	if opts.context, err = flags.GetInt8("context"); err != nil {
		return opts, err
	}
	if opts.width, err = flags.GetUint8("width"); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o lintOptions) machineOutput() bool {
	return o.format == "json" || o.format == "sarif"
}

func runLint(cmd *cobra.Command, args []string) (retErr error) {
	lopts, err := readLintOptions(cmd)
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
	ctx := cmd.Context()
	useUI := shouldUseTUI(lopts.ui, len(s.files), lopts.machineOutput())

	corrected := 0
	if lopts.fix {
		copts := driver.CorrectPathsOptions{
			CorrectOptions: driver.CorrectOptions{Unsafe: lopts.unsafe, Timer: s.timer},
		}
		var results []driver.CorrectFileResult
		if useUI {
			results, err = runCorrectWithUI(ctx, "fix", s.baseDir, s.files, s.walker, copts)
		} else {
			results, err = driver.CorrectPaths(ctx, s.baseDir, s.files, s.walker, copts)
		}
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "capycop: %s: %v\n", r.Path, r.Err)
				continue
			}
			if r.Written {
				corrected += r.Applied
			}
		}
	}

	var res *driver.RunResult
	if useUI {
		res, err = runAnalyzeWithUI(ctx, "lint", s.baseDir, s.files, s.walker, s.opts)
	} else {
		res, err = driver.AnalyzeFiles(ctx, s.baseDir, s.files, s.walker, s.opts)
	}
	if err != nil {
		return err
	}

	all := res.Bag(0)
	shown := res.Bag(s.maxDiagnostics)
	summary := diagfmt.NewSummary(all, len(s.files))
	summary.Dropped = shown.Dropped()
	summary.Corrected = corrected

	out := cmd.OutOrStdout()
	if err := writeDiagnostics(out, shown, res.FileSet, lopts, s, &summary); err != nil {
		return err
	}
	if !s.quiet && !lopts.machineOutput() {
		if shown.Len() > 0 {
			fmt.Fprintln(out)
		}
		diagfmt.WriteSummary(out, summary, useColor)
	}
	s.printTimings(cmd)

	if summary.Offenses > 0 || all.HasErrors() {
		return errOffenses
	}
	return nil
}

func writeDiagnostics(out io.Writer, bag *diag.Bag, fs *source.FileSet, lopts lintOptions, s *session, summary *diagfmt.Summary) error {
	switch lopts.format {
	case "short":
		diagfmt.Short(out, bag, fs, lopts.pathMode)
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         lopts.pathMode,
			IncludeNotes:     lopts.withNotes,
			IncludeFixes:     lopts.suggest,
			IncludePreviews:  lopts.preview,
		}, summary)
	case "sarif":
		return diagfmt.Sarif(out, bag, fs, sarifMeta(s))
	default:
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     lopts.context,
			PathMode:    lopts.pathMode,
			Width:       lopts.width,
			ShowNotes:   lopts.withNotes,
			ShowFixes:   lopts.suggest,
			ShowPreview: lopts.preview,
		})
	}
	return nil
}

func sarifMeta(s *session) diagfmt.SarifRunMeta {
	meta := diagfmt.SarifRunMeta{
		ToolName:       "capycop",
		ToolVersion:    version.Version,
		InvocationArgs: os.Args,
	}
	for _, rl := range s.walker.Rules() {
		meta.Rules = append(meta.Rules, diagfmt.SarifRule{
			Name:        rl.Name,
			Description: rl.Description,
			Severity:    rl.Severity.String(),
		})
	}
	return meta
}
