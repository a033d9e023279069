// Package driver loads a workspace described by a manifest into a hir.DB
// and indexes every definition in it.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"srcdef/internal/cfg"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/observ"
	"srcdef/internal/parse"
	"srcdef/internal/project"
	"srcdef/internal/source"
	"srcdef/internal/trace"
)

// Workspace is a loaded manifest.
type Workspace struct {
	Manifest *project.Manifest
	Files    *source.FileSet
	DB       *hir.DB
	Crates   map[string]hir.CrateID
	// Paths lists every loaded source file, sorted.
	Paths []string
}

type LoadOptions struct {
	Timer *observ.Timer
	Sink  ProgressSink
}

// listRSFiles returns all *.rs files under dir, sorted. Hidden directories
// are skipped.
func listRSFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rs") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// Load reads every source file under the crate root directories and
// registers the crates in dependency order.
func Load(ctx context.Context, m *project.Manifest, opts LoadOptions) (*Workspace, error) {
	ctx, sp := trace.Start(ctx, trace.ScopeDriver, "load_workspace")
	sink := sinkOrNop(opts.Sink)
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	start := time.Now()
	sink.OnEvent(Event{Stage: StageLoad, Status: StatusWorking})

	ordered, err := m.Ordered()
	if err != nil {
		sp.End("invalid crate graph")
		return nil, err
	}

	ws := &Workspace{
		Manifest: m,
		Files:    source.NewFileSet(),
		Crates:   make(map[string]hir.CrateID, len(ordered)),
	}
	phase := timer.Begin("load")
	seen := make(map[string]struct{})
	for _, dir := range m.Dirs() {
		paths, err := listRSFiles(dir)
		if err != nil {
			sp.End("walk failed")
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, p := range paths {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			if _, err := ws.Files.Load(p); err != nil {
				sp.End("read failed")
				return nil, fmt.Errorf("failed to load %s: %w", p, err)
			}
			ws.Paths = append(ws.Paths, p)
		}
	}
	slices.Sort(ws.Paths)
	timer.End(phase, fmt.Sprintf("%d files", len(ws.Paths)))

	parser := parse.New()
	ws.DB = hir.New(ws.Files, parser, expand.Verbatim{Parse: parser.Parse}, hir.WithTracer(trace.FromContext(ctx)))
	for _, c := range ordered {
		root, ok := ws.Files.Lookup(c.Root)
		if !ok {
			sp.End("missing root")
			return nil, fmt.Errorf("crate %q: %w: %s", c.Name, project.ErrCrateRootMissing, c.Root)
		}
		deps := make([]hir.CrateID, 0, len(c.Deps))
		for _, d := range c.Deps {
			deps = append(deps, ws.Crates[d])
		}
		ws.Crates[c.Name] = ws.DB.AddCrate(hir.Crate{
			Name:      c.Name,
			Root:      root,
			Cfg:       cfg.NewOptions(c.Cfg...),
			Deps:      deps,
			ProcMacro: c.ProcMacro,
		})
	}

	sink.OnEvent(Event{Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)})
	sp.Endf("%d files, %d crates", len(ws.Paths), len(ws.Crates))
	return ws, nil
}

// LoadDir discovers the manifest governing dir and loads it.
func LoadDir(ctx context.Context, dir string, opts LoadOptions) (*Workspace, error) {
	m, err := project.Discover(dir)
	if err != nil {
		return nil, err
	}
	return Load(ctx, m, opts)
}

// FileID returns the id of a loaded path.
func (ws *Workspace) FileID(path string) (source.FileID, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, false
	}
	return ws.Files.Lookup(abs)
}

// Rel returns path relative to the manifest directory when possible.
func (ws *Workspace) Rel(path string) string {
	if rel, err := filepath.Rel(ws.Manifest.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
