package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"srcdef/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("indexing", []string{"a.rs", "b.rs"}, nil).(*progressModel)

	m.applyEvent(driver.Event{Stage: driver.StageIndex, Status: driver.StatusWorking})
	if m.stageLabel != "indexing" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	m.applyEvent(driver.Event{File: "a.rs", Stage: driver.StageIndex, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.rs", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "unknown.rs", Stage: driver.StageIndex, Status: driver.StatusDone})

	if m.items[0].status != "done" || m.items[1].status != "parsing" {
		t.Fatalf("items = %+v", m.items)
	}
	if got := m.percent(); got < 0.64 || got > 0.66 {
		t.Fatalf("percent = %v, want 0.65", got)
	}
	view := m.View()
	if !strings.Contains(view, "a.rs") || !strings.Contains(view, "parsing") {
		t.Fatalf("view:\n%s", view)
	}
}

func TestMismatchCountsAsFinished(t *testing.T) {
	m := NewProgressModel("indexing", []string{"a.rs"}, nil).(*progressModel)
	m.applyEvent(driver.Event{File: "a.rs", Stage: driver.StageIndex, Status: driver.StatusError})
	if m.items[0].status != "mismatch" || m.percent() != 1 {
		t.Fatalf("item = %+v, percent = %v", m.items[0], m.percent())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("very/long/path/name.rs", 10); got != "very/lo..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short.rs", 20); got != "short.rs" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("日本語.rs", 4); runewidth.StringWidth(got) > 4 {
		t.Fatalf("truncate wide = %q", got)
	}
}
