package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"srcdef/internal/observ"
	"srcdef/internal/project"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func sampleWorkspace(t *testing.T) string {
	return writeTree(t, map[string]string{
		"srcdef.toml": `
[[crate]]
name = "app"
root = "app/main.rs"
deps = ["util"]

[[crate]]
name = "util"
root = "util/lib.rs"
`,
		"util/lib.rs": `
#[macro_export]
macro_rules! point { () => { struct Point { x: i32, y: i32 } } }
pub mod shapes;
`,
		"util/shapes.rs": "pub enum Shape { Circle(f64), Square { side: f64 } }\n",
		"app/main.rs": `
point!();
trait Area<T> { fn area(&self) -> T; }
fn main() {
    let total = 0;
    'outer: loop { break 'outer; }
}
`,
		"app/.hidden/skip.rs": "fn hidden() {}\n",
	})
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func TestLoadRegistersCratesInDependencyOrder(t *testing.T) {
	dir := sampleWorkspace(t)
	ws, err := LoadDir(context.Background(), filepath.Join(dir, "app"), LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(ws.Paths) != 3 {
		t.Fatalf("paths = %v, want 3 files", ws.Paths)
	}
	if ws.Crates["util"] >= ws.Crates["app"] {
		t.Fatalf("util (%d) must be registered before app (%d)", ws.Crates["util"], ws.Crates["app"])
	}
	deps := ws.DB.Crate(ws.Crates["app"]).Deps
	if len(deps) != 1 || deps[0] != ws.Crates["util"] {
		t.Fatalf("app deps = %v", deps)
	}
	if _, ok := ws.FileID(filepath.Join(dir, "util", "shapes.rs")); !ok {
		t.Fatal("shapes.rs not loaded")
	}
}

func TestLoadWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	_, err := project.Discover(dir)
	if err == nil {
		t.Skip("a manifest exists above the temp dir")
	}
	if _, err := LoadDir(context.Background(), dir, LoadOptions{}); err == nil {
		t.Fatal("expected an error without a manifest")
	}
}

func TestIndexRoundTrips(t *testing.T) {
	dir := sampleWorkspace(t)
	ctx := context.Background()
	timer := observ.NewTimer()
	sink := &recordingSink{}
	ws, err := LoadDir(ctx, dir, LoadOptions{Timer: timer, Sink: sink})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	rep, err := Index(ctx, ws, IndexOptions{Jobs: 2, Timer: timer, Sink: sink})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if n := rep.Mismatches(); n != 0 {
		for _, f := range rep.Files {
			for _, m := range f.Mismatches {
				t.Errorf("%s: %s", f.Path, m)
			}
		}
		t.Fatalf("%d round-trip mismatches", n)
	}
	if rep.Totals["files"] != 3 {
		t.Fatalf("totals = %v", rep.Totals)
	}

	kinds := map[string]int{}
	for _, f := range rep.Files {
		if len(f.Modules) == 0 {
			t.Errorf("%s belongs to no module", f.Path)
		}
		for _, d := range f.Definitions {
			kinds[d.Kind]++
		}
	}
	for _, k := range []string{"module", "function", "trait", "enum", "enum_variant", "tuple_field", "record_field", "type_param", "binding", "self_param", "label", "macro_rules", "macro_call"} {
		if kinds[k] == 0 {
			t.Errorf("no %s indexed (got %v)", k, kinds)
		}
	}

	if len(timer.Report().Phases) != 3 {
		t.Errorf("phases = %+v", timer.Report().Phases)
	}
	var done int
	for _, ev := range sink.events {
		if ev.Stage == StageIndex && ev.File != "" && ev.Status == StatusDone {
			done++
		}
	}
	if done != 3 {
		t.Errorf("index done events = %d, want 3", done)
	}
}

func TestReportFormats(t *testing.T) {
	dir := sampleWorkspace(t)
	ctx := context.Background()
	ws, err := LoadDir(ctx, dir, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	rep, err := Index(ctx, ws, IndexOptions{Jobs: 1})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	var js bytes.Buffer
	if err := WriteReport(&js, rep, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var decoded Report
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(decoded.Files) != len(rep.Files) {
		t.Fatalf("json files = %d", len(decoded.Files))
	}

	var mp bytes.Buffer
	if err := WriteReport(&mp, rep, FormatMsgpack); err != nil {
		t.Fatal(err)
	}
	back, err := ReadReport(&mp)
	if err != nil {
		t.Fatal(err)
	}
	if back.Totals["definitions"] != rep.Totals["definitions"] {
		t.Fatalf("msgpack totals = %v, want %v", back.Totals, rep.Totals)
	}

	var pretty bytes.Buffer
	if err := WriteReport(&pretty, rep, FormatPretty); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(pretty.String(), "app/main.rs") || !strings.Contains(pretty.String(), "totals:") {
		t.Fatalf("pretty output:\n%s", pretty.String())
	}

	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("xml accepted")
	}
}

func TestIndexHonoursCancellation(t *testing.T) {
	dir := sampleWorkspace(t)
	ws, err := LoadDir(context.Background(), dir, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Index(ctx, ws, IndexOptions{Jobs: 1}); err == nil {
		t.Fatal("expected cancellation error")
	}
}
