package hir

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/sync/singleflight"

	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
	"srcdef/internal/trace"
)

// Parser turns file text into a syntax tree. It never fails; broken input
// yields a partial tree.
type Parser interface {
	Parse(text []byte) *syntax.Tree
}

// DB is the semantic database. Every query is computed on first use and
// memoised until the next revision. Interned ids survive revisions.
//
// DB is safe for concurrent use. Concurrent requests for the same query
// share one computation.
type DB struct {
	files    *source.FileSet
	parser   Parser
	expander expand.Expander
	tracer   trace.Tracer
	sf       singleflight.Group

	mu     sync.Mutex
	rev    uint64
	crates []Crate // index 0 reserved

	functions    *interner[FunctionID, ItemLoc]
	structs      *interner[StructID, ItemLoc]
	unions       *interner[UnionID, ItemLoc]
	enums        *interner[EnumID, ItemLoc]
	consts       *interner[ConstID, ItemLoc]
	statics      *interner[StaticID, ItemLoc]
	traits       *interner[TraitID, ItemLoc]
	traitAliases *interner[TraitAliasID, ItemLoc]
	typeAliases  *interner[TypeAliasID, ItemLoc]
	impls        *interner[ImplID, ItemLoc]
	macroRules   *interner[MacroRulesID, ItemLoc]
	macro2s      *interner[Macro2ID, ItemLoc]
	procMacros   *interner[ProcMacroID, ItemLoc]
	externCrates *interner[ExternCrateID, ItemLoc]
	uses         *interner[UseID, ItemLoc]
	variants     *interner[EnumVariantID, EnumVariantLoc]
	blocks       *interner[BlockID, BlockLoc]
	calls        *interner[expand.MacroCallID, MacroCallLoc]

	trees        map[expand.HirFileID]*syntax.Tree
	itemTrees    map[expand.HirFileID]*ItemTree
	defMaps      map[CrateID]*DefMap
	blockMaps    map[BlockID]*DefMap
	enumVariants map[EnumID][]EnumVariantID
	implItems    map[ImplID]*AssocItems
	traitItems   map[TraitID]*AssocItems
	generics     map[GenericDefID]*GenericParams
	variantData  map[VariantID]*VariantData
	bodies       map[DefWithBodyID]*bodyResult
}

type Option func(*DB)

// WithTracer makes the database emit a span per computed query.
func WithTracer(t trace.Tracer) Option {
	return func(db *DB) { db.tracer = t }
}

func New(files *source.FileSet, parser Parser, expander expand.Expander, opts ...Option) *DB {
	db := &DB{
		files:        files,
		parser:       parser,
		expander:     expander,
		tracer:       trace.Nop,
		crates:       make([]Crate, 1, 4),
		functions:    newInterner[FunctionID, ItemLoc](),
		structs:      newInterner[StructID, ItemLoc](),
		unions:       newInterner[UnionID, ItemLoc](),
		enums:        newInterner[EnumID, ItemLoc](),
		consts:       newInterner[ConstID, ItemLoc](),
		statics:      newInterner[StaticID, ItemLoc](),
		traits:       newInterner[TraitID, ItemLoc](),
		traitAliases: newInterner[TraitAliasID, ItemLoc](),
		typeAliases:  newInterner[TypeAliasID, ItemLoc](),
		impls:        newInterner[ImplID, ItemLoc](),
		macroRules:   newInterner[MacroRulesID, ItemLoc](),
		macro2s:      newInterner[Macro2ID, ItemLoc](),
		procMacros:   newInterner[ProcMacroID, ItemLoc](),
		externCrates: newInterner[ExternCrateID, ItemLoc](),
		uses:         newInterner[UseID, ItemLoc](),
		variants:     newInterner[EnumVariantID, EnumVariantLoc](),
		blocks:       newInterner[BlockID, BlockLoc](),
		calls:        newInterner[expand.MacroCallID, MacroCallLoc](),
		trees:        make(map[expand.HirFileID]*syntax.Tree),
		itemTrees:    make(map[expand.HirFileID]*ItemTree),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.resetDerived()
	return db
}

// resetDerived drops everything computed from item trees. Caller holds mu
// or owns db exclusively.
func (db *DB) resetDerived() {
	db.defMaps = make(map[CrateID]*DefMap)
	db.blockMaps = make(map[BlockID]*DefMap)
	db.enumVariants = make(map[EnumID][]EnumVariantID)
	db.implItems = make(map[ImplID]*AssocItems)
	db.traitItems = make(map[TraitID]*AssocItems)
	db.generics = make(map[GenericDefID]*GenericParams)
	db.variantData = make(map[VariantID]*VariantData)
	db.bodies = make(map[DefWithBodyID]*bodyResult)
}

func (db *DB) Files() *source.FileSet { return db.files }

func (db *DB) Revision() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.rev
}

// AddCrate registers a crate. Dependencies must already be registered,
// which keeps the crate graph acyclic.
func (db *DB) AddCrate(c Crate) CrateID {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, dep := range c.Deps {
		if !dep.IsValid() || int(dep) >= len(db.crates) {
			panic(fmt.Sprintf("hir: crate %q depends on unknown crate %d", c.Name, dep))
		}
	}
	n, err := safecast.Conv[uint32](len(db.crates))
	if err != nil {
		panic(fmt.Errorf("crate overflow: %w", err))
	}
	db.crates = append(db.crates, c)
	return CrateID(n)
}

func (db *DB) Crate(id CrateID) Crate {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !id.IsValid() || int(id) >= len(db.crates) {
		panic(fmt.Sprintf("hir: unknown crate %d", id))
	}
	return db.crates[id]
}

func (db *DB) Crates() []CrateID {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]CrateID, 0, len(db.crates)-1)
	for i := 1; i < len(db.crates); i++ {
		out = append(out, CrateID(i))
	}
	return out
}

// RelevantCrates returns the crates whose source tree contains file, that
// is whose root file's directory is an ancestor of file.
func (db *DB) RelevantCrates(file source.FileID) []CrateID {
	f := db.files.Get(file)
	if f == nil {
		return nil
	}
	dir := f.Dir()
	var out []CrateID
	for _, id := range db.Crates() {
		root := db.files.Get(db.Crate(id).Root)
		if root == nil {
			continue
		}
		rootDir := root.Dir()
		if dir == rootDir || rootDir == "." || strings.HasPrefix(dir, strings.TrimSuffix(rootDir, "/")+"/") {
			out = append(out, id)
		}
	}
	return out
}

// SetFileText replaces a file's text and starts a new revision. Syntax and
// item trees of files that do not depend on the changed file are kept.
func (db *DB) SetFileText(id source.FileID, text []byte) {
	db.files.Replace(id, text)

	db.mu.Lock()
	defer db.mu.Unlock()
	db.rev++
	for h := range db.trees {
		if db.dependsOn(h, id) {
			delete(db.trees, h)
		}
	}
	for h := range db.itemTrees {
		if db.dependsOn(h, id) {
			delete(db.itemTrees, h)
		}
	}
	db.resetDerived()
	trace.Point(db.tracer, trace.ScopeQuery, "set_file_text", fmt.Sprintf("file#%d rev=%d", id, db.rev), 0)
}

// dependsOn reports whether the tree of h is computed from file.
func (db *DB) dependsOn(h expand.HirFileID, file source.FileID) bool {
	call, ok := h.MacroCall()
	if !ok {
		id, _ := h.FileID()
		return id == file
	}
	loc := db.calls.lookup(call)
	if loc.HasInclude && loc.IncludeFile == file {
		return true
	}
	if db.dependsOn(loc.Call.File, file) {
		return true
	}
	return loc.Def.IsValid() && db.dependsOn(db.macroLoc(loc.Def).Tree.File, file)
}

// query memoises compute under key for the current revision.
func query[K comparable, V any](db *DB, table *map[K]V, name string, key K, compute func() V) V {
	db.mu.Lock()
	if v, ok := (*table)[key]; ok {
		db.mu.Unlock()
		return v
	}
	rev := db.rev
	db.mu.Unlock()

	res, _, _ := db.sf.Do(fmt.Sprintf("%s/%d/%v", name, rev, key), func() (any, error) {
		db.mu.Lock()
		if v, ok := (*table)[key]; ok {
			db.mu.Unlock()
			return v, nil
		}
		db.mu.Unlock()

		sp := trace.Begin(db.tracer, trace.ScopeQuery, name, 0)
		v := compute()
		sp.Endf("%v", key)

		db.mu.Lock()
		if db.rev == rev {
			(*table)[key] = v
		}
		db.mu.Unlock()
		return v, nil
	})
	return res.(V)
}

// ParseOrExpand returns the syntax tree of a real file or of a macro
// expansion. Failed expansions yield an empty tree.
func (db *DB) ParseOrExpand(file expand.HirFileID) *syntax.Tree {
	return query(db, &db.trees, "parse_or_expand", file, func() *syntax.Tree {
		call, ok := file.MacroCall()
		if !ok {
			id, _ := file.FileID()
			f := db.files.Get(id)
			if f == nil {
				panic(fmt.Sprintf("hir: parse of unknown file %d", id))
			}
			return db.parser.Parse(f.Content)
		}
		return db.expandCall(call)
	})
}

func (db *DB) expandCall(call expand.MacroCallID) *syntax.Tree {
	loc := db.calls.lookup(call)
	if loc.Kind == CallInclude {
		if !loc.HasInclude {
			return emptyTree()
		}
		return db.ParseOrExpand(expand.FromFile(loc.IncludeFile))
	}
	site := db.node(loc.Call)
	req := expand.Request{Name: loc.Name, Arg: site.ChildOfKind(syntax.TokenTree)}
	if loc.Def.IsValid() {
		req.Def = db.node(db.MacroSource(loc.Def))
	}
	tree, err := db.expander.Expand(req)
	if err != nil || tree == nil {
		trace.Point(db.tracer, trace.ScopeQuery, "expand_failed", fmt.Sprintf("%s! %v", loc.Name, err), 0)
		return emptyTree()
	}
	return tree
}

func emptyTree() *syntax.Tree {
	b := syntax.NewBuilder()
	b.Open(syntax.SourceFile, "")
	b.Close()
	return b.Finish(nil)
}

// node resolves a located pointer. The pointer must come from the current
// revision of its file.
func (db *DB) node(p expand.InFilePtr) syntax.Node {
	n, ok := p.Value.ToNode(db.ParseOrExpand(p.File))
	if !ok {
		panic(fmt.Sprintf("hir: stale pointer %s in %s", p.Value, p.File))
	}
	return n
}

// Node is the exported form of node for callers holding pointers from
// this database.
func (db *DB) Node(p expand.InFilePtr) (syntax.Node, bool) {
	return p.Value.ToNode(db.ParseOrExpand(p.File))
}

func (db *DB) ItemTree(file expand.HirFileID) *ItemTree {
	return query(db, &db.itemTrees, "item_tree", file, func() *ItemTree {
		return lowerItemTree(file, db.ParseOrExpand(file))
	})
}

// CrateDefMap builds the module tree of a crate.
func (db *DB) CrateDefMap(k CrateID) *DefMap {
	return query(db, &db.defMaps, "crate_def_map", k, func() *DefMap {
		return db.collectCrate(k)
	})
}

// BlockDefMap builds the scope of an item-bearing block expression.
func (db *DB) BlockDefMap(b BlockID) *DefMap {
	return query(db, &db.blockMaps, "block_def_map", b, func() *DefMap {
		return db.collectBlock(b)
	})
}

// DefMapOf returns the def map that owns m.
func (db *DB) DefMapOf(m ModuleID) *DefMap {
	if m.Block.IsValid() {
		return db.BlockDefMap(m.Block)
	}
	return db.CrateDefMap(m.Krate)
}

func (db *DB) MacroCallLoc(call expand.MacroCallID) MacroCallLoc { return db.calls.lookup(call) }

// ExpansionInfo describes where the expansion of call came from.
func (db *DB) ExpansionInfo(call expand.MacroCallID) expand.ExpansionInfo {
	loc := db.calls.lookup(call)
	site := db.node(loc.Call)
	file := expand.FromMacro(call)
	return expand.ExpansionInfo{
		Call:     call,
		CallSite: expand.NewInFile(loc.Call.File, site),
		Arg:      expand.NewInFile(loc.Call.File, site.ChildOfKind(syntax.TokenTree)),
		Expanded: expand.NewInFile(file, db.ParseOrExpand(file).Root()),
	}
}

// OriginalFile follows macro files back to the real file of the outermost
// call site.
func (db *DB) OriginalFile(file expand.HirFileID) source.FileID {
	for {
		call, ok := file.MacroCall()
		if !ok {
			id, _ := file.FileID()
			return id
		}
		file = db.calls.lookup(call).Call.File
	}
}

func (db *DB) fileDir(file expand.HirFileID) string {
	f := db.files.Get(db.OriginalFile(file))
	if f == nil {
		return ""
	}
	return f.Dir()
}

func (db *DB) lookupFile(dir, rel string) (source.FileID, bool) {
	if rel == "" {
		return 0, false
	}
	p := rel
	if !path.IsAbs(rel) {
		p = path.Join(dir, rel)
	}
	return db.files.Lookup(p)
}
