package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives trace events. Implementations must be goroutine-safe:
// the driver emits from every worker.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff.
	Enabled() bool
}

// StorageMode determines where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped on failure
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode converts a --trace-mode value to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode // ModeStream when zero
	Format     Format      // FormatAuto picks by OutputPath extension
	Output     io.Writer   // overrides OutputPath
	OutputPath string      // "" or "-" for stderr
	RingSize   int         // 4096 when zero
}

// FormatForPath picks NDJSON for .ndjson and .json files and text
// otherwise.
func FormatForPath(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".json") {
		return FormatNDJSON
	}
	return FormatText
}

// New builds the tracer cfg describes. At LevelError nothing is streamed
// and events are only kept for the failure dump.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	mode := cfg.Mode
	if mode == 0 {
		mode = ModeStream
	}
	if cfg.Level == LevelError {
		mode = ModeRing
	}
	if _, ok := modeNames[mode]; !ok {
		return nil, fmt.Errorf("unknown storage mode: %v", mode)
	}

	var sinks []Tracer
	if mode != ModeRing {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		format := cfg.Format
		if format == FormatAuto {
			format = FormatForPath(cfg.OutputPath)
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, format))
	}
	if mode != ModeStream {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}
