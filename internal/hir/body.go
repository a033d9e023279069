package hir

import (
	"fmt"

	"fortio.org/safecast"

	"srcdef/internal/cfg"
	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

type BindingData struct {
	Name string
}

type LabelData struct {
	Name string
}

// Body is the lowered expression body of a function, constant, static or
// enum variant discriminant. Only what names can refer to is kept.
type Body struct {
	Owner        DefWithBodyID
	Bindings     []BindingData
	Labels       []LabelData
	SelfParam    BindingID
	HasSelfParam bool
	// Blocks lists the block expressions that declare items, in source order.
	Blocks     []BlockID
	MacroCalls []MacroCallEntry
}

// BodySourceMap maps body-local ids back to syntax. Entries may point into
// macro files expanded inside the body.
type BodySourceMap struct {
	bindings []expand.InFilePtr
	labels   []expand.InFilePtr
}

func (sm *BodySourceMap) BindingSource(id BindingID) expand.InFilePtr { return sm.bindings[id] }
func (sm *BodySourceMap) LabelSource(id LabelID) expand.InFilePtr     { return sm.labels[id] }

type bodyResult struct {
	body *Body
	sm   *BodySourceMap
}

func (db *DB) Body(owner DefWithBodyID) *Body {
	body, _ := db.BodyWithSourceMap(owner)
	return body
}

func (db *DB) BodyWithSourceMap(owner DefWithBodyID) (*Body, *BodySourceMap) {
	res := query(db, &db.bodies, "body", owner, func() *bodyResult {
		return db.lowerBody(owner)
	})
	return res.body, res.sm
}

type bodyLowerer struct {
	db   *DB
	body *Body
	sm   *BodySourceMap
	opts cfg.Options
}

func (db *DB) lowerBody(owner DefWithBodyID) *bodyResult {
	src := db.BodyOwnerSource(owner)
	module := db.bodyOwnerModule(owner)
	l := &bodyLowerer{
		db:   db,
		body: &Body{Owner: owner},
		sm:   &BodySourceMap{},
		opts: db.Crate(module.Krate).Cfg,
	}
	node := db.node(src)
	switch owner.Kind {
	case DefFunction:
		for _, p := range node.ChildOfKind(syntax.ParamList).Children() {
			if !cfgEnabled(p, l.opts) {
				continue
			}
			switch p.Kind() {
			case syntax.SelfParam:
				l.body.SelfParam = l.binding("self", src.File, p)
				l.body.HasSelfParam = true
			case syntax.Param:
				l.walk(p, src.File, module, 0)
			}
		}
		if blk := node.ChildOfKind(syntax.BlockExpr); blk.IsValid() {
			l.walk(blk, src.File, module, 0)
		}
	default:
		if e := node.ChildOfKind(syntax.Expr); e.IsValid() {
			l.walk(e, src.File, module, 0)
		}
	}
	return &bodyResult{body: l.body, sm: l.sm}
}

func (l *bodyLowerer) walk(n syntax.Node, file expand.HirFileID, module ModuleID, depth int) {
	switch k := n.Kind(); {
	case k == syntax.IdentPat:
		l.binding(n.Name(), file, n)
	case k == syntax.Label:
		l.label(n, file)
	case k == syntax.BlockExpr:
		if declaresItems(n) {
			b := l.db.blocks.intern(BlockLoc{Ast: inFilePtr(file, n.Ptr()), Module: module})
			l.body.Blocks = append(l.body.Blocks, b)
			module = ModuleID{Krate: module.Krate, Block: b, Local: RootModule}
		}
	case k == syntax.MacroCall:
		if n.Parent().Kind() != syntax.BlockExpr {
			l.macroCall(n, file, module, depth)
		}
		return
	case k.IsItem(), k == syntax.Attr:
		return
	}
	for _, c := range n.Children() {
		l.walk(c, file, module, depth)
	}
}

// declaresItems reports whether block gets its own def map: it declares
// items directly or through statement macro calls.
func declaresItems(block syntax.Node) bool {
	for _, c := range block.Children() {
		if c.Kind().IsItem() {
			return true
		}
	}
	return false
}

func (l *bodyLowerer) macroCall(n syntax.Node, file expand.HirFileID, module ModuleID, depth int) {
	ast := inFilePtr(file, n.Ptr())
	def, _ := l.db.resolveMacroName(l.db.DefMapOf(module), n.Name())
	call := l.db.calls.intern(MacroCallLoc{
		Kind:  CallFnLike,
		Krate: module.Krate,
		Call:  ast,
		Name:  n.Name(),
		Def:   def,
	})
	l.body.MacroCalls = append(l.body.MacroCalls, MacroCallEntry{Ast: ast, Call: call})
	if depth >= MaxExpansionDepth {
		return
	}
	exp := expand.FromMacro(call)
	l.walk(l.db.ParseOrExpand(exp).Root(), exp, module, depth+1)
}

func (l *bodyLowerer) binding(name string, file expand.HirFileID, n syntax.Node) BindingID {
	id := BindingID(index(len(l.body.Bindings)))
	l.body.Bindings = append(l.body.Bindings, BindingData{Name: source.NormalizeName(name)})
	l.sm.bindings = append(l.sm.bindings, inFilePtr(file, n.Ptr()))
	return id
}

func (l *bodyLowerer) label(n syntax.Node, file expand.HirFileID) {
	l.body.Labels = append(l.body.Labels, LabelData{Name: source.NormalizeName(n.Name())})
	l.sm.labels = append(l.sm.labels, inFilePtr(file, n.Ptr()))
}

func index(n int) uint32 {
	u, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("body arena overflow: %w", err))
	}
	return u
}
