package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withBuild(t *testing.T, v, commit, date string) {
	t.Helper()
	origV, origC, origD, origNo := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = v, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = origV, origC, origD, origNo
	})
}

func TestStringPlain(t *testing.T) {
	withBuild(t, "1.2.3", "", "")
	if got := String(); got != "srcdef 1.2.3" {
		t.Fatalf("String() = %q", got)
	}
}

func TestStringShortensCommit(t *testing.T) {
	withBuild(t, "1.2.3", "abc123def4567890", "2026-01-15")
	got := String()
	if !strings.Contains(got, "(abc123def456)") {
		t.Errorf("commit not shortened: %q", got)
	}
	if !strings.HasSuffix(got, "built 2026-01-15") {
		t.Errorf("date missing: %q", got)
	}
}

func TestDetails(t *testing.T) {
	withBuild(t, "0.9.0", "ff00", "")
	d := Details()
	if !strings.Contains(d, "version: 0.9.0") || !strings.Contains(d, "commit:  ff00") {
		t.Fatalf("Details() = %q", d)
	}
	if strings.Contains(d, "built") {
		t.Fatalf("empty date printed: %q", d)
	}
}
