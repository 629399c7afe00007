package driver

import "time"

// Stage describes a phase of per-file analysis.
type Stage string

const (
	// StageLoad is reading the file from disk.
	StageLoad Stage = "load"
	// StageParse is building the syntax tree.
	StageParse Stage = "parse"
	// StageCheck is running the rules.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusDone indicates the file is analysed.
	StatusDone Status = "done"
	// StatusCached indicates the result came from the cache.
	StatusCached Status = "cached"
	// StatusError indicates the file could not be loaded or parsed.
	StatusError Status = "error"
)

// Event reports progress for a file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel. The channel is closed by
// whoever created it, after the run returns.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	s.Ch <- ev
}

// FuncSink adapts a function to ProgressSink.
type FuncSink func(Event)

func (f FuncSink) OnEvent(ev Event) {
	f(ev)
}

func (o Options) emit(ev Event) {
	emitProgress(o.Progress, ev)
}
