package hir

import (
	"srcdef/internal/expand"
	"srcdef/internal/syntax"
)

// AssocItem is a function, constant or type alias of a trait or impl.
type AssocItem struct {
	Kind DefKind
	ID   uint32
}

type AssocItems struct {
	Items      []AssocItem
	MacroCalls []MacroCallEntry
}

func (db *DB) ImplItems(id ImplID) *AssocItems {
	return query(db, &db.implItems, "impl_items", id, func() *AssocItems {
		return db.collectAssoc(ItemContainerID{Kind: InImpl, ID: uint32(id)}, db.ImplLoc(id))
	})
}

func (db *DB) TraitItems(id TraitID) *AssocItems {
	return query(db, &db.traitItems, "trait_items", id, func() *AssocItems {
		return db.collectAssoc(ItemContainerID{Kind: InTrait, ID: uint32(id)}, db.TraitLoc(id))
	})
}

func (db *DB) collectAssoc(container ItemContainerID, loc ItemLoc) *AssocItems {
	module := db.ContainerModule(loc.Container)
	a := &assocCollector{
		db:        db,
		out:       &AssocItems{},
		container: container,
		defMap:    db.DefMapOf(module),
		crate:     db.Crate(module.Krate),
	}
	tree := db.ItemTree(loc.Tree.File)
	a.collect(tree, tree.Item(loc.Tree.Index).Children, 0)
	return a.out
}

type assocCollector struct {
	db        *DB
	out       *AssocItems
	container ItemContainerID
	defMap    *DefMap
	crate     Crate
}

func (a *assocCollector) collect(tree *ItemTree, items []ItemIdx, depth int) {
	for _, idx := range items {
		item := tree.Item(idx)
		if !item.Attrs.Enabled(a.crate.Cfg) {
			continue
		}
		loc := ItemLoc{Container: a.container, Tree: ItemTreeID{File: tree.File, Index: idx}}
		switch item.Kind {
		case syntax.Fn:
			a.add(DefFunction, uint32(a.db.functions.intern(loc)))
		case syntax.Const:
			a.add(DefConst, uint32(a.db.consts.intern(loc)))
		case syntax.TypeAlias:
			a.add(DefTypeAlias, uint32(a.db.typeAliases.intern(loc)))
		case syntax.MacroCall:
			ast := inFilePtr(tree.File, item.Ptr)
			def, _ := a.db.resolveMacroName(a.defMap, item.Name)
			call := a.db.calls.intern(MacroCallLoc{
				Kind:  CallFnLike,
				Krate: a.defMap.Krate,
				Call:  ast,
				Name:  item.Name,
				Def:   def,
			})
			a.out.MacroCalls = append(a.out.MacroCalls, MacroCallEntry{Ast: ast, Call: call})
			if depth < MaxExpansionDepth {
				sub := a.db.ItemTree(expand.FromMacro(call))
				a.collect(sub, sub.Top, depth+1)
			}
		}
	}
}

func (a *assocCollector) add(kind DefKind, id uint32) {
	a.out.Items = append(a.out.Items, AssocItem{Kind: kind, ID: id})
}

// EnumVariants lists the cfg-enabled variants of an enum in declaration order.
func (db *DB) EnumVariants(id EnumID) []EnumVariantID {
	return query(db, &db.enumVariants, "enum_variants", id, func() []EnumVariantID {
		loc := db.EnumLoc(id)
		opts := db.Crate(db.ContainerModule(loc.Container).Krate).Cfg
		src := db.ItemSource(loc)
		list := db.node(src).ChildOfKind(syntax.VariantList)
		var out []EnumVariantID
		var index uint32
		for _, v := range list.ChildrenOfKind(syntax.Variant) {
			if !cfgEnabled(v, opts) {
				continue
			}
			out = append(out, db.variants.intern(EnumVariantLoc{
				Parent: id,
				Ast:    inFilePtr(src.File, v.Ptr()),
				Index:  index,
			}))
			index++
		}
		return out
	})
}
