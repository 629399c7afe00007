package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a liveness event every interval while a directory run is
// in progress. Each beat names the longest-running open file, so a trace
// that ends in heartbeats points at the file a pattern got stuck on.
type Heartbeat struct {
	tracer Tracer
	every  time.Duration
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// StartHeartbeat starts beating on t. It returns nil when t is disabled or
// interval is not positive; Stop on a nil Heartbeat is a no-op.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: t, every: interval, done: make(chan struct{})}
	h.wg.Add(1)
	go h.loop()
	return h
}

func (h *Heartbeat) loop() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.every)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(beatEvent(now, beat))
		case <-h.done:
			return
		}
	}
}

func beatEvent(now time.Time, beat int) *Event {
	ev := &Event{Time: now, Kind: KindHeartbeat, Scope: ScopeDriver, Name: "heartbeat"}
	file, since, n := inflight.oldest()
	if n == 0 {
		ev.Detail = fmt.Sprintf("#%d, idle", beat)
		return ev
	}
	ev.File = file
	ev.Detail = fmt.Sprintf("#%d, %d open, oldest for %s", beat, n, now.Sub(since).Round(time.Millisecond))
	return ev
}

// Stop ends the heartbeat and waits for the goroutine to exit.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.done) })
	h.wg.Wait()
}
