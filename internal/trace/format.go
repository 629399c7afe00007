package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path extension
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// processStart anchors relative timestamps in text output.
var processStart = time.Now()

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	type jsonEvent struct {
		Time     string `json:"time"`
		Seq      uint64 `json:"seq"`
		Kind     string `json:"kind"`
		Scope    string `json:"scope"`
		SpanID   uint64 `json:"span_id"`
		ParentID uint64 `json:"parent_id,omitempty"`
		Name     string `json:"name"`
		File     string `json:"file,omitempty"`
		Rule     string `json:"rule,omitempty"`
		Offenses int    `json:"offenses,omitempty"`
		Cached   bool   `json:"cached,omitempty"`
		Detail   string `json:"detail,omitempty"`
	}

	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		File:     ev.File,
		Rule:     ev.Rule,
		Offenses: ev.Offenses,
		Cached:   ev.Cached,
		Detail:   ev.Detail,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText formats an event as one human-readable line:
// [elapsed] indent →/← name file rule (detail) offenses=N cached
//
// Pass and rule events repeat the file only in NDJSON; in text the file
// span above them already names it.
func formatText(ev *Event) []byte {
	var sb strings.Builder

	elapsed := ev.Time.Sub(processStart)
	fmt.Fprintf(&sb, "[%9.3fms] ", float64(elapsed)/float64(time.Millisecond))

	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	case KindHeartbeat:
		sb.WriteString("♡ ")
	}

	sb.WriteString(ev.Name)
	if ev.File != "" && (ev.Scope <= ScopeFile || ev.Kind == KindHeartbeat) {
		sb.WriteString(" ")
		sb.WriteString(ev.File)
	}
	if ev.Rule != "" {
		sb.WriteString(" ")
		sb.WriteString(ev.Rule)
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}
	if ev.Kind == KindSpanEnd && ev.Offenses > 0 {
		fmt.Fprintf(&sb, " offenses=%d", ev.Offenses)
	}
	if ev.Cached {
		sb.WriteString(" cached")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}
