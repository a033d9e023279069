package hir

import (
	"fmt"

	"srcdef/internal/expand"
)

func (db *DB) FunctionLoc(id FunctionID) ItemLoc       { return db.functions.lookup(id) }
func (db *DB) StructLoc(id StructID) ItemLoc           { return db.structs.lookup(id) }
func (db *DB) UnionLoc(id UnionID) ItemLoc             { return db.unions.lookup(id) }
func (db *DB) EnumLoc(id EnumID) ItemLoc               { return db.enums.lookup(id) }
func (db *DB) ConstLoc(id ConstID) ItemLoc             { return db.consts.lookup(id) }
func (db *DB) StaticLoc(id StaticID) ItemLoc           { return db.statics.lookup(id) }
func (db *DB) TraitLoc(id TraitID) ItemLoc             { return db.traits.lookup(id) }
func (db *DB) TraitAliasLoc(id TraitAliasID) ItemLoc   { return db.traitAliases.lookup(id) }
func (db *DB) TypeAliasLoc(id TypeAliasID) ItemLoc     { return db.typeAliases.lookup(id) }
func (db *DB) ImplLoc(id ImplID) ItemLoc               { return db.impls.lookup(id) }
func (db *DB) MacroRulesLoc(id MacroRulesID) ItemLoc   { return db.macroRules.lookup(id) }
func (db *DB) Macro2Loc(id Macro2ID) ItemLoc           { return db.macro2s.lookup(id) }
func (db *DB) ProcMacroLoc(id ProcMacroID) ItemLoc     { return db.procMacros.lookup(id) }
func (db *DB) ExternCrateLoc(id ExternCrateID) ItemLoc { return db.externCrates.lookup(id) }
func (db *DB) UseLoc(id UseID) ItemLoc                 { return db.uses.lookup(id) }
func (db *DB) BlockLoc(id BlockID) BlockLoc            { return db.blocks.lookup(id) }

func (db *DB) EnumVariantLoc(id EnumVariantID) EnumVariantLoc { return db.variants.lookup(id) }

// ItemSource returns the declaration pointer of an item.
func (db *DB) ItemSource(loc ItemLoc) expand.InFilePtr {
	tree := db.ItemTree(loc.Tree.File)
	return inFilePtr(loc.Tree.File, tree.Item(loc.Tree.Index).Ptr)
}

// Item returns the item tree entry of loc.
func (db *DB) Item(loc ItemLoc) *Item {
	return db.ItemTree(loc.Tree.File).Item(loc.Tree.Index)
}

func (db *DB) macroLoc(m MacroID) ItemLoc {
	switch m.Kind {
	case DefMacroRules:
		return db.macroRules.lookup(MacroRulesID(m.ID))
	case DefMacro2:
		return db.macro2s.lookup(Macro2ID(m.ID))
	case DefProcMacro:
		return db.procMacros.lookup(ProcMacroID(m.ID))
	default:
		panic(fmt.Sprintf("hir: %s is not a macro", m.Kind))
	}
}

func (db *DB) MacroSource(m MacroID) expand.InFilePtr { return db.ItemSource(db.macroLoc(m)) }

// ContainerModule returns the module an item ultimately lives in.
func (db *DB) ContainerModule(c ItemContainerID) ModuleID {
	switch c.Kind {
	case InImpl:
		return db.ContainerModule(db.ImplLoc(ImplID(c.ID)).Container)
	case InTrait:
		return db.ContainerModule(db.TraitLoc(TraitID(c.ID)).Container)
	default:
		return c.Module
	}
}

// VariantSource returns the struct, union or enum variant node of v.
func (db *DB) VariantSource(v VariantID) expand.InFilePtr {
	switch v.Kind {
	case DefStruct:
		return db.ItemSource(db.StructLoc(StructID(v.ID)))
	case DefUnion:
		return db.ItemSource(db.UnionLoc(UnionID(v.ID)))
	case DefEnumVariant:
		return db.EnumVariantLoc(EnumVariantID(v.ID)).Ast
	default:
		panic(fmt.Sprintf("hir: %s is not a variant", v.Kind))
	}
}

func (db *DB) variantModule(v VariantID) ModuleID {
	switch v.Kind {
	case DefStruct:
		return db.ContainerModule(db.StructLoc(StructID(v.ID)).Container)
	case DefUnion:
		return db.ContainerModule(db.UnionLoc(UnionID(v.ID)).Container)
	default:
		parent := db.EnumVariantLoc(EnumVariantID(v.ID)).Parent
		return db.ContainerModule(db.EnumLoc(parent).Container)
	}
}

// BodyOwnerSource returns the node owning the body of d.
func (db *DB) BodyOwnerSource(d DefWithBodyID) expand.InFilePtr {
	switch d.Kind {
	case DefFunction:
		return db.ItemSource(db.FunctionLoc(FunctionID(d.ID)))
	case DefConst:
		return db.ItemSource(db.ConstLoc(ConstID(d.ID)))
	case DefStatic:
		return db.ItemSource(db.StaticLoc(StaticID(d.ID)))
	case DefEnumVariant:
		return db.EnumVariantLoc(EnumVariantID(d.ID)).Ast
	default:
		panic(fmt.Sprintf("hir: %s has no body", d.Kind))
	}
}

func (db *DB) bodyOwnerModule(d DefWithBodyID) ModuleID {
	switch d.Kind {
	case DefFunction:
		return db.ContainerModule(db.FunctionLoc(FunctionID(d.ID)).Container)
	case DefConst:
		return db.ContainerModule(db.ConstLoc(ConstID(d.ID)).Container)
	case DefStatic:
		return db.ContainerModule(db.StaticLoc(StaticID(d.ID)).Container)
	default:
		return db.variantModule(EnumVariant(EnumVariantID(d.ID)))
	}
}

// GenericDefSource returns the node declaring the generic parameters of g.
func (db *DB) GenericDefSource(g GenericDefID) expand.InFilePtr {
	return db.ItemSource(db.genericDefLoc(g))
}

func (db *DB) genericDefLoc(g GenericDefID) ItemLoc {
	switch g.Kind {
	case DefFunction:
		return db.FunctionLoc(FunctionID(g.ID))
	case DefStruct:
		return db.StructLoc(StructID(g.ID))
	case DefUnion:
		return db.UnionLoc(UnionID(g.ID))
	case DefEnum:
		return db.EnumLoc(EnumID(g.ID))
	case DefTrait:
		return db.TraitLoc(TraitID(g.ID))
	case DefTraitAlias:
		return db.TraitAliasLoc(TraitAliasID(g.ID))
	case DefTypeAlias:
		return db.TypeAliasLoc(TypeAliasID(g.ID))
	case DefImpl:
		return db.ImplLoc(ImplID(g.ID))
	default:
		panic(fmt.Sprintf("hir: %s has no generic parameters", g.Kind))
	}
}

// ModuleDefLoc returns the location of a module-scope declaration.
func (db *DB) ModuleDefLoc(d ModuleDefID) ItemLoc {
	switch d.Kind {
	case DefFunction:
		return db.FunctionLoc(FunctionID(d.ID))
	case DefStruct:
		return db.StructLoc(StructID(d.ID))
	case DefUnion:
		return db.UnionLoc(UnionID(d.ID))
	case DefEnum:
		return db.EnumLoc(EnumID(d.ID))
	case DefConst:
		return db.ConstLoc(ConstID(d.ID))
	case DefStatic:
		return db.StaticLoc(StaticID(d.ID))
	case DefTrait:
		return db.TraitLoc(TraitID(d.ID))
	case DefTraitAlias:
		return db.TraitAliasLoc(TraitAliasID(d.ID))
	case DefTypeAlias:
		return db.TypeAliasLoc(TypeAliasID(d.ID))
	default:
		panic(fmt.Sprintf("hir: %s is not a module declaration", d.Kind))
	}
}

// MacroLoc returns the location of a macro definition.
func (db *DB) MacroLoc(m MacroID) ItemLoc { return db.macroLoc(m) }
