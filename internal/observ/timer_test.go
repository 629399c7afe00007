package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimer_AddAccumulates(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("parse", time.Millisecond)
		}()
	}
	wg.Wait()

	rep := tm.Report()
	if len(rep.Phases) != 1 {
		t.Fatalf("expected 1 phase, got %d", len(rep.Phases))
	}
	if rep.Phases[0].Count != 8 {
		t.Fatalf("expected count 8, got %d", rep.Phases[0].Count)
	}
	if rep.TotalMS != 8 {
		t.Fatalf("expected 8ms total, got %v", rep.TotalMS)
	}
}

func TestTimer_BeginEnd(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	tm.End(42, "ignored")

	s := tm.Summary()
	if !strings.Contains(s, "load") || !strings.Contains(s, "// 3 files") {
		t.Fatalf("unexpected summary:\n%s", s)
	}
}

func TestTimer_Nil(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Add("x", time.Second)
	if rep := tm.Report(); len(rep.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", rep)
	}
}
