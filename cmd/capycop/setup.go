package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"capycop/internal/config"
	"capycop/internal/driver"
	"capycop/internal/observ"
	"capycop/internal/rule"
	"capycop/internal/rules"
)

// session is everything a lint or fix run needs, resolved from flags and
// the configuration file.
type session struct {
	cfg            *config.Config
	registry       *rule.Registry
	walker         *rule.Walker
	baseDir        string
	files          []string
	timer          *observ.Timer
	quiet          bool
	maxDiagnostics int
	// opts keeps every diagnostic so the summary counts them all;
	// maxDiagnostics only caps what is printed.
	opts driver.Options
}

// addRunFlags registers the flags shared by lint and fix.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("only", nil, "run only these rules or departments")
	cmd.Flags().StringSlice("except", nil, "skip these rules or departments")
	cmd.Flags().Int("jobs", 0, "parallel jobs (0 = number of CPUs)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
}

func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	start := "."
	if len(args) > 0 {
		start = args[0]
	}
	return config.Discover(start)
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	registry, errs := rules.Builtin(cfg.RuleSettings())
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	only, err := cmd.Flags().GetStringSlice("only")
	if err != nil {
		return nil, err
	}
	except, err := cmd.Flags().GetStringSlice("except")
	if err != nil {
		return nil, err
	}
	selected, err := registry.Select(only, except)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, registry: registry, walker: rule.NewWalker(selected)}

	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return nil, err
	}
	if err := s.resolveOptions(cmd); err != nil {
		return nil, err
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := driver.ExpandPaths(args)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if !cfg.Excluded(f) {
			s.files = append(s.files, f)
		}
	}
	if s.baseDir, err = os.Getwd(); err != nil {
		return nil, err
	}
	return s, nil
}

// resolveOptions merges the run options: explicit flags win over the
// configuration file, which wins over the flag defaults.
func (s *session) resolveOptions(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()

	maxDiagnostics, err := root.GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	if !root.Changed("max-diagnostics") && s.cfg.Run.MaxDiagnostics != nil {
		maxDiagnostics = *s.cfg.Run.MaxDiagnostics
	}
	s.maxDiagnostics = maxDiagnostics

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("jobs") && s.cfg.Run.Jobs != nil {
		jobs = *s.cfg.Run.Jobs
	}
	s.opts.Jobs = jobs

	showTimings, err := root.GetBool("timings")
	if err != nil {
		return err
	}
	if showTimings {
		s.timer = observ.NewTimer()
		s.opts.Timer = s.timer
	}

	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	useCache := !noCache
	if !cmd.Flags().Changed("no-cache") && s.cfg.Run.Cache != nil {
		useCache = *s.cfg.Run.Cache
	}
	if useCache {
		cache, err := driver.OpenCache("capycop")
		if err != nil {
			// без кэша всё работает, только медленнее
			if !s.quiet {
				fmt.Fprintf(os.Stderr, "capycop: cache disabled: %v\n", err)
			}
		} else {
			s.opts.Cache = cache
		}
	}
	return nil
}

func (s *session) printTimings(cmd *cobra.Command) {
	if s.timer == nil {
		return
	}
	printTimings(cmd.ErrOrStderr(), s.timer)
}
