package ui

import (
	"strings"
	"testing"

	"capycop/internal/driver"
)

func TestProgressModel_ApplyEvents(t *testing.T) {
	m := NewProgressModel("lint", nil).(*progressModel)

	events := []driver.Event{
		{File: "a_spec.rb", Stage: driver.StageLoad, Status: driver.StatusQueued},
		{File: "b_spec.rb", Stage: driver.StageLoad, Status: driver.StatusQueued},
		{File: "a_spec.rb", Stage: driver.StageParse, Status: driver.StatusWorking},
		{File: "b_spec.rb", Stage: driver.StageCheck, Status: driver.StatusCached},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}

	if len(m.items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.items))
	}
	if m.items[0].status != "parsing" {
		t.Fatalf("expected a_spec.rb parsing, got %q", m.items[0].status)
	}
	if m.items[1].status != "cached" {
		t.Fatalf("expected b_spec.rb cached, got %q", m.items[1].status)
	}
	if got, want := m.percent(), (0.3+1.0)/2; got != want {
		t.Fatalf("expected percent %v, got %v", want, got)
	}

	view := m.View()
	for _, want := range []string{"lint 1/2", "a_spec.rb", "parsing", "cached"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestProgressModel_DoneOnClose(t *testing.T) {
	ch := make(chan driver.Event)
	close(ch)
	m := NewProgressModel("lint", ch).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg on closed channel, got %T", msg)
	}
	m.Update(msg)
	if !m.done {
		t.Fatalf("expected model to be done")
	}
}

func TestVisibleHidesFinishedInLargeRuns(t *testing.T) {
	m := NewProgressModel("lint", nil).(*progressModel)
	for i := range maxVisible + 3 {
		file := string(rune('a'+i)) + "_spec.rb"
		m.applyEvent(driver.Event{File: file, Status: driver.StatusQueued})
		if i < 5 {
			m.applyEvent(driver.Event{File: file, Stage: driver.StageCheck, Status: driver.StatusDone})
		}
	}
	got := m.visible()
	if len(got) != 10 {
		t.Fatalf("expected 10 unfinished items, got %d", len(got))
	}
	for _, item := range got {
		if isFinal(item.status) {
			t.Fatalf("finished item %s should be hidden", item.path)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"spec/features/login_spec.rb", 0, "spec/features/login_spec.rb"},
		{"short.rb", 20, "short.rb"},
		{"spec/features/login_spec.rb", 10, "spec/fe..."},
		{"abcdef", 3, "abc"},
		{"日本語テスト.rb", 8, "日本..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d): expected %q, got %q", tt.in, tt.width, tt.want, got)
		}
	}
}
