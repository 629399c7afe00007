package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"capycop/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// The returned finish function takes the command's error: a failed command
// also dumps the ring buffer, if the tracer keeps one.
func setupTracing(cmd *cobra.Command) (func(error), error) {
	root := cmd.Root()

	// Read trace configuration from flags
	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}

	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	// Parse level
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && traceOutput == "" {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return func(error) {}, nil
	}

	// Parse mode
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	// Create tracer config
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	}

	// Create tracer
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	// Attach tracer to context
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	// Start heartbeat if configured
	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
	}

	// в режиме both файл уже занят потоком
	dumpPath := traceOutput
	if mode == trace.ModeBoth && level != trace.LevelError {
		dumpPath = "-"
	}

	finish := func(runErr error) {
		// Stop heartbeat first
		if heartbeat != nil {
			heartbeat.Stop()
		}
		if ring := trace.RingOf(tracer); ring != nil && failed(runErr) {
			if err := dumpRing(ring, dumpPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}

		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}

	return finish, nil
}

// failed tells real failures from the exit-code-only errors.
func failed(err error) bool {
	return err != nil && !errors.Is(err, errOffenses) && !errors.Is(err, errNoMatches)
}

func dumpRing(ring *trace.RingTracer, path string) (err error) {
	if path == "" || path == "-" {
		return ring.Dump(os.Stderr, trace.FormatText)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return ring.Dump(f, trace.FormatForPath(path))
}
