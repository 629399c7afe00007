package trace

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

func nextSeq() uint64 { return seqCounter.Add(1) }

// Span is an open trace span. Spans filtered out by the tracer level stay
// usable: their children inherit the file and are filtered the same way.
type Span struct {
	tracer   Tracer
	id       uint64 // 0 when the begin event was not emitted
	parent   uint64
	scope    Scope
	name     string
	file     string
	started  time.Time
	offenses int
	cached   bool
}

// Begin opens a span under the span carried by ctx, on the tracer carried
// by ctx. The new span inherits the parent's file.
func Begin(ctx context.Context, scope Scope, name string) *Span {
	parent := SpanFrom(ctx)
	if parent != nil {
		return parent.Child(scope, name)
	}
	return open(FromContext(ctx), nil, scope, name, "")
}

// BeginFile opens a file-scope span for path. Heartbeats report it until
// it ends.
func BeginFile(ctx context.Context, name, path string) *Span {
	s := open(FromContext(ctx), SpanFrom(ctx), ScopeFile, name, path)
	if s.tracer.Enabled() {
		inflight.add(s)
	}
	return s
}

// Child opens a span under s.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil {
		return open(Nop, nil, scope, name, "")
	}
	return open(s.tracer, s, scope, name, s.file)
}

func open(t Tracer, parent *Span, scope Scope, name, file string) *Span {
	if t == nil {
		t = Nop
	}
	s := &Span{tracer: t, scope: scope, name: name, file: file, started: time.Now()}
	if parent != nil {
		s.parent = parent.id
	}
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return s
	}
	s.id = spanCounter.Add(1)
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		File:     s.file,
		Detail:   detail,
	}
}

// SetOffenses records the number of offenses reported on the end event.
func (s *Span) SetOffenses(n int) {
	if s != nil {
		s.offenses = n
	}
}

// MarkCached flags the span's file as served from the cache.
func (s *Span) MarkCached() {
	if s != nil {
		s.cached = true
	}
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	if s.scope == ScopeFile {
		inflight.remove(s)
	}
	if s.id == 0 {
		return 0
	}
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	ev.Offenses = s.offenses
	ev.Cached = s.cached
	s.tracer.Emit(ev)
	return now.Sub(s.started)
}

// ID returns the span ID, 0 for a span that was filtered out.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Note emits an instant pass-scope event under s.
func (s *Span) Note(name, detail string) {
	s.point(ScopePass, name, "", detail)
}

// Finding emits a rule-scope event for one offense of rule under s.
func (s *Span) Finding(rule, detail string) {
	s.point(ScopeRule, "finding", rule, detail)
}

func (s *Span) point(scope Scope, name, rule, detail string) {
	if s == nil || !s.tracer.Enabled() || !s.tracer.Level().ShouldEmit(scope) {
		return
	}
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		SpanID:   spanCounter.Add(1),
		ParentID: s.id,
		Name:     name,
		File:     s.file,
		Rule:     rule,
		Detail:   detail,
	})
}

// openFiles tracks file spans that have begun and not ended.
type openFiles struct {
	mu    sync.Mutex
	spans map[*Span]struct{}
}

var inflight = &openFiles{spans: make(map[*Span]struct{})}

func (o *openFiles) add(s *Span) {
	o.mu.Lock()
	o.spans[s] = struct{}{}
	o.mu.Unlock()
}

func (o *openFiles) remove(s *Span) {
	o.mu.Lock()
	delete(o.spans, s)
	o.mu.Unlock()
}

// oldest returns the longest-running open file and the number open.
func (o *openFiles) oldest() (file string, since time.Time, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for s := range o.spans {
		if n == 0 || s.started.Before(since) {
			file, since = s.file, s.started
		}
		n++
	}
	return file, since, n
}
