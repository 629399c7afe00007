package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindHeartbeat // periodic liveness signal
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers a whole CLI command: lint run, fix run.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers the analysis of one source file.
	ScopeFile
	// ScopePass covers one phase inside a file: load, parse, walk, correct.
	ScopePass
	// ScopeRule covers a single rule finding.
	ScopeRule
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopePass:
		return "pass"
	case ScopeRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Event is one trace record. File and Rule are empty outside a file
// span and outside findings respectively.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the sink that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "lint", "analyze", "parse", "walk", "pass 2"
	File     string // path relative to the run's base directory
	Rule     string // qualified rule name, e.g. "Capybara/HasCssMatcher"
	Offenses int    // set on walk ends and file ends
	Cached   bool   // file result came from the cache
	Detail   string
}
