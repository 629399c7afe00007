package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. The CLI dumps it
// when a run fails, which is why it records even at LevelError.
type RingTracer struct {
	mu      sync.Mutex
	buf     []Event
	next    int    // slot the next event goes to
	stored  int    // number of live slots, at most len(buf)
	dropped uint64 // events overwritten since creation
	level   Level
}

// NewRingTracer creates a ring holding up to capacity events (4096 when
// capacity is not positive).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev, overwriting the oldest event when full.
// Heartbeats are kept at every level.
func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stored == len(t.buf) {
		t.dropped++
	} else {
		t.stored++
	}
	t.buf[t.next] = *ev
	t.buf[t.next].Seq = nextSeq()
	t.next = (t.next + 1) % len(t.buf)
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, 0, t.stored)
	first := (t.next - t.stored + len(t.buf)) % len(t.buf)
	for i := range t.stored {
		out = append(out, t.buf[(first+i)%len(t.buf)])
	}
	return out
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Dump writes the stored events to w. Text dumps start with a header line
// saying how much of the run was lost to wrap-around.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if format != FormatNDJSON {
		if _, err := fmt.Fprintf(w, "# last %d trace events (%d dropped)\n", len(events), t.Dropped()); err != nil {
			return err
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
