package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"srcdef/internal/expand"
	"srcdef/internal/observ"
	"srcdef/internal/semantics"
	"srcdef/internal/source"
	"srcdef/internal/trace"
)

type IndexOptions struct {
	Jobs  int
	Timer *observ.Timer
	Sink  ProgressSink
}

// DefEntry is one definition found in a file.
type DefEntry struct {
	Kind       string `json:"kind" msgpack:"kind"`
	Name       string `json:"name,omitempty" msgpack:"name,omitempty"`
	Line       uint32 `json:"line" msgpack:"line"`
	Col        uint32 `json:"col" msgpack:"col"`
	Definition string `json:"definition" msgpack:"definition"`
}

type FileReport struct {
	Path        string     `json:"path" msgpack:"path"`
	Modules     []string   `json:"modules" msgpack:"modules"`
	Definitions []DefEntry `json:"definitions" msgpack:"definitions"`
	// Mismatches lists definitions whose source does not resolve back to them.
	Mismatches []string        `json:"mismatches,omitempty" msgpack:"mismatches,omitempty"`
	Cache      semantics.Stats `json:"cache" msgpack:"cache"`
}

type Report struct {
	Files   []FileReport   `json:"files" msgpack:"files"`
	Totals  map[string]int `json:"totals" msgpack:"totals"`
	Timings observ.Report  `json:"timings" msgpack:"timings"`
}

// Mismatches counts failed round trips over all files.
func (r *Report) Mismatches() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Mismatches)
	}
	return n
}

// Index parses every file of ws and resolves every definition-bearing node,
// one session per file.
func Index(ctx context.Context, ws *Workspace, opts IndexOptions) (*Report, error) {
	ctx, sp := trace.Start(ctx, trace.ScopeDriver, "index")
	sink := sinkOrNop(opts.Sink)
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	jobs = max(1, min(jobs, len(ws.Paths)))

	for _, p := range ws.Paths {
		sink.OnEvent(Event{File: p, Stage: StageParse, Status: StatusQueued})
	}

	ids := make([]source.FileID, len(ws.Paths))
	for i, p := range ws.Paths {
		id, ok := ws.Files.Lookup(p)
		if !ok {
			sp.End("file vanished")
			return nil, fmt.Errorf("file %s is not loaded", p)
		}
		ids[i] = id
	}

	err := timer.Track("parse", func() (string, error) {
		sink.OnEvent(Event{Stage: StageParse, Status: StatusWorking})
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for i, p := range ws.Paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				sink.OnEvent(Event{File: p, Stage: StageParse, Status: StatusWorking})
				ws.DB.ItemTree(expand.FromFile(ids[i]))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
		// def maps are shared by all files; build them once up front
		for _, krate := range ws.DB.Crates() {
			ws.DB.CrateDefMap(krate)
		}
		return fmt.Sprintf("%d files", len(ids)), nil
	})
	if err != nil {
		sp.End("parse cancelled")
		return nil, err
	}

	counters := observ.NewCounters()
	results := make([]FileReport, len(ids))
	err = timer.Track("index", func() (string, error) {
		sink.OnEvent(Event{Stage: StageIndex, Status: StatusWorking})
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for i, p := range ws.Paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				sink.OnEvent(Event{File: p, Stage: StageIndex, Status: StatusWorking})
				results[i] = indexFile(gctx, ws, ids[i], p, counters)
				status := StatusDone
				if len(results[i].Mismatches) > 0 {
					status = StatusError
				}
				sink.OnEvent(Event{File: p, Stage: StageIndex, Status: status, Elapsed: time.Since(start)})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d definitions", counters.Get("definitions")), nil
	})
	if err != nil {
		sp.End("index cancelled")
		return nil, err
	}

	sink.OnEvent(Event{Stage: StageIndex, Status: StatusDone})
	rep := &Report{Files: results, Totals: counters.Snapshot(), Timings: timer.Report()}
	sp.Endf("%d files, %d definitions, %d mismatches",
		len(results), counters.Get("definitions"), rep.Mismatches())
	return rep, nil
}

func indexFile(ctx context.Context, ws *Workspace, id source.FileID, path string, counters *observ.Counters) FileReport {
	s := semantics.New(ctx, ws.DB)
	rep := FileReport{Path: ws.Rel(path), Modules: []string{}, Definitions: []DefEntry{}}
	for _, m := range s.FileToDef(id) {
		rep.Modules = append(rep.Modules, m.String())
	}

	file := expand.FromFile(id)
	nodes := 0
	for n := range ws.DB.ParseOrExpand(file).All() {
		nodes++
		node := expand.NewInFile(file, n)
		d, ok := s.Resolve(node)
		if !ok {
			continue
		}
		pos := ws.Files.Position(id, n.Range().Start)
		rep.Definitions = append(rep.Definitions, DefEntry{
			Kind:       d.Kind.String(),
			Name:       n.Name(),
			Line:       pos.Line,
			Col:        pos.Col,
			Definition: d.String(),
		})
		if msg, ok := roundTrip(s, d); !ok {
			rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("%d:%d %s: %s", pos.Line, pos.Col, d, msg))
		}
	}
	rep.Cache = s.Stats()
	counters.Add("files", 1)
	counters.Add("nodes", nodes)
	counters.Add("definitions", len(rep.Definitions))
	counters.Add("mismatches", len(rep.Mismatches))
	return rep
}

// roundTrip checks that the source of d resolves back to d.
func roundTrip(s *semantics.Session, d semantics.Definition) (string, bool) {
	src, ok := s.SourceOfDefinition(d)
	if !ok {
		return "no source", false
	}
	back, ok := s.Resolve(src)
	if !ok {
		return "source does not resolve", false
	}
	if back != d {
		return "source resolves to " + back.String(), false
	}
	return "", true
}
