package observ

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	tm.End(42, "ignored")

	err := tm.Track("index", func() (string, error) { return "", errors.New("boom") })
	if err == nil {
		t.Fatal("Track must return the phase error")
	}

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(rep.Phases))
	}
	if rep.Phases[0].Note != "3 files" {
		t.Errorf("note = %q", rep.Phases[0].Note)
	}
	if rep.Phases[1].Note != "failed: boom" {
		t.Errorf("note = %q", rep.Phases[1].Note)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "load") || !strings.Contains(sum, "total") {
		t.Errorf("summary missing lines:\n%s", sum)
	}
}

func TestEmptyTimer(t *testing.T) {
	if rep := NewTimer().Report(); rep.Phases != nil || rep.TotalMS != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestCountersConcurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				c.Add("nodes", 1)
			}
		}()
	}
	wg.Wait()
	c.Add("files", 2)
	if got := c.Get("nodes"); got != 1600 {
		t.Fatalf("nodes = %d", got)
	}
	if names := c.Names(); len(names) != 2 || names[0] != "files" {
		t.Fatalf("names = %v", names)
	}
	if snap := c.Snapshot(); snap["files"] != 2 {
		t.Fatalf("snapshot = %v", snap)
	}
}
