// Package testkit assembles in-memory workspaces for tests: files parsed
// with the real parser or built node by node, crates, and macro tables.
package testkit

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"srcdef/internal/cfg"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/parse"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

type CrateSpec struct {
	Name      string
	Root      string
	Cfg       []string
	Deps      []string
	ProcMacro bool
}

// Fixture is a workspace under construction.
type Fixture struct {
	tb     testing.TB
	Files  *source.FileSet
	Macros expand.Table
	parser *parse.Parser
	crates []CrateSpec

	mu    sync.Mutex
	built map[string]*syntax.Tree // by file content
}

func New(tb testing.TB) *Fixture {
	tb.Helper()
	return &Fixture{
		tb:     tb,
		Files:  source.NewFileSet(),
		Macros: expand.Table{},
		parser: parse.New(),
		built:  make(map[string]*syntax.Tree),
	}
}

// File adds a source file parsed by the tree-sitter parser.
func (f *Fixture) File(path, text string) source.FileID {
	return f.Files.AddVirtual(path, []byte(text))
}

// Tree adds a file whose syntax tree is built by hand. Useful for
// constructs the grammar has no syntax for, such as trait aliases.
func (f *Fixture) Tree(path string, build func(b *syntax.Builder)) source.FileID {
	text := fmt.Sprintf("// built tree %s\n", path)
	b := syntax.NewBuilder()
	b.Node(syntax.SourceFile, "", func() { build(b) })
	f.mu.Lock()
	f.built[text] = b.Finish([]byte(text))
	f.mu.Unlock()
	return f.Files.AddVirtual(path, []byte(text))
}

// Macro registers a macro expanded by name.
func (f *Fixture) Macro(name string, expansion func(arg string) *syntax.Tree) {
	f.Macros[name] = expansion
}

// ItemsMacro registers a macro whose expansion is text parsed as items.
func (f *Fixture) ItemsMacro(name, text string) {
	f.Macros[name] = func(string) *syntax.Tree { return f.parser.Parse([]byte(text)) }
}

func (f *Fixture) Crate(spec CrateSpec) *Fixture {
	f.crates = append(f.crates, spec)
	return f
}

// Parse implements hir.Parser.
func (f *Fixture) Parse(text []byte) *syntax.Tree {
	f.mu.Lock()
	tree, ok := f.built[string(text)]
	f.mu.Unlock()
	if ok {
		return tree
	}
	return f.parser.Parse(text)
}

// Workspace is a built fixture.
type Workspace struct {
	tb     testing.TB
	DB     *hir.DB
	Files  *source.FileSet
	Crates map[string]hir.CrateID
}

// Build registers crates in declaration order. Dependencies must be
// declared before their dependents.
func (f *Fixture) Build(opts ...hir.Option) *Workspace {
	f.tb.Helper()
	exp := expand.Chain{f.Macros, expand.Verbatim{Parse: f.Parse}}
	db := hir.New(f.Files, f, exp, opts...)
	ws := &Workspace{tb: f.tb, DB: db, Files: f.Files, Crates: make(map[string]hir.CrateID)}
	for _, spec := range f.crates {
		root, ok := f.Files.Lookup(spec.Root)
		require.Truef(f.tb, ok, "crate %s: root %s not added", spec.Name, spec.Root)
		var deps []hir.CrateID
		for _, d := range spec.Deps {
			id, ok := ws.Crates[d]
			require.Truef(f.tb, ok, "crate %s: unknown dependency %s", spec.Name, d)
			deps = append(deps, id)
		}
		ws.Crates[spec.Name] = db.AddCrate(hir.Crate{
			Name:      spec.Name,
			Root:      root,
			Cfg:       cfg.NewOptions(spec.Cfg...),
			Deps:      deps,
			ProcMacro: spec.ProcMacro,
		})
	}
	return ws
}

// Single is the common one-crate, one-file fixture.
func Single(tb testing.TB, text string) *Workspace {
	tb.Helper()
	f := New(tb)
	f.File("/ws/lib.rs", text)
	return f.Crate(CrateSpec{Name: "main", Root: "/ws/lib.rs"}).Build()
}

func (w *Workspace) FileID(path string) source.FileID {
	w.tb.Helper()
	id, ok := w.Files.Lookup(path)
	require.Truef(w.tb, ok, "no file %s", path)
	return id
}

// Node returns the n-th (0-based) node of kind with the given name in the
// file. An empty name matches any node of the kind.
func (w *Workspace) Node(path string, kind syntax.Kind, name string, n int) expand.InFileNode {
	w.tb.Helper()
	file := expand.FromFile(w.FileID(path))
	node, ok := FindNth(w.DB.ParseOrExpand(file), kind, name, n)
	require.Truef(w.tb, ok, "%s: no %s %q #%d", path, kind, name, n)
	return expand.NewInFile(file, node)
}

// First is Node with n = 0.
func (w *Workspace) First(path string, kind syntax.Kind, name string) expand.InFileNode {
	w.tb.Helper()
	return w.Node(path, kind, name, 0)
}

// At returns the innermost node covering the first occurrence of marker.
func (w *Workspace) At(path, marker string) expand.InFileNode {
	w.tb.Helper()
	id := w.FileID(path)
	off := strings.Index(string(w.Files.Get(id).Content), marker)
	require.GreaterOrEqualf(w.tb, off, 0, "%s: marker %q not found", path, marker)
	file := expand.FromFile(id)
	return expand.NewInFile(file, w.DB.ParseOrExpand(file).CoveringNode(uint32(off)))
}

// FindNth walks tree in preorder.
func FindNth(tree *syntax.Tree, kind syntax.Kind, name string, n int) (syntax.Node, bool) {
	for node := range tree.All() {
		if node.Kind() != kind || (name != "" && node.Name() != name) {
			continue
		}
		if n == 0 {
			return node, true
		}
		n--
	}
	return syntax.Node{}, false
}

// FindIn searches the subtree of root, root excluded.
func FindIn(root syntax.Node, kind syntax.Kind, name string) (syntax.Node, bool) {
	for node := range root.Descendants() {
		if node.Kind() == kind && (name == "" || node.Name() == name) {
			return node, true
		}
	}
	return syntax.Node{}, false
}
