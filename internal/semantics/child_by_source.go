package semantics

import (
	"fmt"

	"fortio.org/safecast"

	"srcdef/internal/dynmap"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/syntax"
)

// childBySource fills m with the children of c declared in file.
func (s *Session) childBySource(c ChildContainer, file expand.HirFileID, m *dynmap.Map) {
	switch c.Kind {
	case ContainerModule:
		s.moduleChildren(c.Module, file, m)
	case ContainerTrait:
		s.assocChildren(s.db.TraitItems(hir.TraitID(c.ID)), file, m)
	case ContainerImpl:
		s.assocChildren(s.db.ImplItems(hir.ImplID(c.ID)), file, m)
	case ContainerEnum:
		for _, v := range s.db.EnumVariants(hir.EnumID(c.ID)) {
			if loc := s.db.EnumVariantLoc(v); loc.Ast.File == file {
				dynmap.Insert(m, dynmap.EnumVariant, loc.Ast.Value, v)
			}
		}
	case ContainerVariant:
		s.fieldChildren(c.Variant(), file, m)
	case ContainerBody:
		s.bodyChildren(c.Body(), file, m)
	case ContainerGenerics:
		s.genericChildren(c.Generics(), file, m)
	case ContainerTraitAlias, ContainerTypeAlias:
		// nothing is declared inside
	default:
		panic(fmt.Sprintf("semantics: no child strategy for %s", c))
	}
}

func (s *Session) moduleChildren(module hir.ModuleID, file expand.HirFileID, m *dynmap.Map) {
	db := s.db
	scope := &db.DefMapOf(module).Module(module.Local).Scope
	for _, d := range scope.Decls {
		loc := db.ModuleDefLoc(d)
		if loc.Tree.File != file {
			continue
		}
		ptr := db.Item(loc).Ptr
		switch d.Kind {
		case hir.DefFunction:
			dynmap.Insert(m, dynmap.Function, ptr, hir.FunctionID(d.ID))
		case hir.DefStruct:
			dynmap.Insert(m, dynmap.Struct, ptr, hir.StructID(d.ID))
		case hir.DefUnion:
			dynmap.Insert(m, dynmap.Union, ptr, hir.UnionID(d.ID))
		case hir.DefEnum:
			dynmap.Insert(m, dynmap.Enum, ptr, hir.EnumID(d.ID))
		case hir.DefConst:
			dynmap.Insert(m, dynmap.Const, ptr, hir.ConstID(d.ID))
		case hir.DefStatic:
			dynmap.Insert(m, dynmap.Static, ptr, hir.StaticID(d.ID))
		case hir.DefTrait:
			dynmap.Insert(m, dynmap.Trait, ptr, hir.TraitID(d.ID))
		case hir.DefTraitAlias:
			dynmap.Insert(m, dynmap.TraitAlias, ptr, hir.TraitAliasID(d.ID))
		case hir.DefTypeAlias:
			dynmap.Insert(m, dynmap.TypeAlias, ptr, hir.TypeAliasID(d.ID))
		}
	}
	for _, id := range scope.Impls {
		if loc := db.ImplLoc(id); loc.Tree.File == file {
			dynmap.Insert(m, dynmap.Impl, db.Item(loc).Ptr, id)
		}
	}
	for _, id := range scope.Uses {
		if loc := db.UseLoc(id); loc.Tree.File == file {
			dynmap.Insert(m, dynmap.Use, db.Item(loc).Ptr, id)
		}
	}
	for _, id := range scope.ExternCrates {
		if loc := db.ExternCrateLoc(id); loc.Tree.File == file {
			dynmap.Insert(m, dynmap.ExternCrate, db.Item(loc).Ptr, id)
		}
	}
	for _, mac := range scope.Macros {
		loc := db.MacroLoc(mac)
		if loc.Tree.File != file {
			continue
		}
		ptr := db.Item(loc).Ptr
		switch mac.Kind {
		case hir.DefMacroRules:
			dynmap.Insert(m, dynmap.MacroRules, ptr, hir.MacroRulesID(mac.ID))
		case hir.DefMacro2:
			dynmap.Insert(m, dynmap.Macro2, ptr, hir.Macro2ID(mac.ID))
		case hir.DefProcMacro:
			dynmap.Insert(m, dynmap.ProcMacro, ptr, hir.ProcMacroID(mac.ID))
		}
	}
	insertCalls(scope.MacroCalls, file, m)
}

func insertCalls(calls []hir.MacroCallEntry, file expand.HirFileID, m *dynmap.Map) {
	for _, mc := range calls {
		if mc.Ast.File == file {
			dynmap.Insert(m, dynmap.MacroCall, mc.Ast.Value, mc.Call)
		}
	}
}

func (s *Session) assocChildren(items *hir.AssocItems, file expand.HirFileID, m *dynmap.Map) {
	db := s.db
	for _, it := range items.Items {
		switch it.Kind {
		case hir.DefFunction:
			if loc := db.FunctionLoc(hir.FunctionID(it.ID)); loc.Tree.File == file {
				dynmap.Insert(m, dynmap.Function, db.Item(loc).Ptr, hir.FunctionID(it.ID))
			}
		case hir.DefConst:
			if loc := db.ConstLoc(hir.ConstID(it.ID)); loc.Tree.File == file {
				dynmap.Insert(m, dynmap.Const, db.Item(loc).Ptr, hir.ConstID(it.ID))
			}
		case hir.DefTypeAlias:
			if loc := db.TypeAliasLoc(hir.TypeAliasID(it.ID)); loc.Tree.File == file {
				dynmap.Insert(m, dynmap.TypeAlias, db.Item(loc).Ptr, hir.TypeAliasID(it.ID))
			}
		}
	}
	insertCalls(items.MacroCalls, file, m)
}

// fieldChildren re-runs field lowering in source mode so field numbering
// matches VariantData exactly.
func (s *Session) fieldChildren(v hir.VariantID, file expand.HirFileID, m *dynmap.Map) {
	f, ptrs := s.db.VariantFieldSources(v)
	if f != file {
		return
	}
	for i, p := range ptrs {
		id := hir.FieldID{Parent: v, Local: local(i)}
		if p.Kind == syntax.RecordField {
			dynmap.Insert(m, dynmap.RecordField, p, id)
		} else {
			dynmap.Insert(m, dynmap.TupleField, p, id)
		}
	}
}

func (s *Session) bodyChildren(d hir.DefWithBodyID, file expand.HirFileID, m *dynmap.Map) {
	db := s.db
	if d.Kind == hir.DefEnumVariant {
		s.fieldChildren(hir.EnumVariant(hir.EnumVariantID(d.ID)), file, m)
	}
	body, sm := db.BodyWithSourceMap(d)
	for _, b := range body.Blocks {
		s.moduleChildren(db.BlockDefMap(b).Root(), file, m)
		if loc := db.BlockLoc(b); loc.Ast.File == file {
			dynmap.Insert(m, dynmap.Block, loc.Ast.Value, b)
		}
	}
	for i := range body.Bindings {
		id := hir.BindingID(local(i))
		src := sm.BindingSource(id)
		if src.File != file {
			continue
		}
		lb := hir.LocalBinding{Owner: d, Binding: id}
		if body.HasSelfParam && id == body.SelfParam {
			dynmap.Insert(m, dynmap.SelfParam, src.Value, lb)
		} else {
			dynmap.Insert(m, dynmap.Binding, src.Value, lb)
		}
	}
	for i := range body.Labels {
		id := hir.LabelID(local(i))
		if src := sm.LabelSource(id); src.File == file {
			dynmap.Insert(m, dynmap.Label, src.Value, hir.LocalLabel{Owner: d, Label: id})
		}
	}
	insertCalls(body.MacroCalls, file, m)
}

func (s *Session) genericChildren(g hir.GenericDefID, file expand.HirFileID, m *dynmap.Map) {
	gp := s.db.GenericParams(g)
	if gp.File != file {
		return
	}
	for i, p := range gp.TypeOrConsts {
		id := hir.TypeOrConstParamID{Parent: g, Local: local(i)}
		switch {
		case p.ImplicitSelf:
			dynmap.Insert(m, dynmap.TraitSelf, p.Ptr, id)
		case p.Const:
			dynmap.Insert(m, dynmap.ConstParam, p.Ptr, id)
		default:
			dynmap.Insert(m, dynmap.TypeParam, p.Ptr, id)
		}
	}
	for i, p := range gp.Lifetimes {
		dynmap.Insert(m, dynmap.LifetimeParam, p.Ptr, hir.LifetimeParamID{Parent: g, Local: local(i)})
	}
}

func local(i int) uint32 {
	u, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("local index overflow: %w", err))
	}
	return u
}
