package semantics

import (
	"slices"

	"srcdef/internal/dynmap"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/syntax"
)

type lookupScope uint8

const (
	scopeItem lookupScope = iota
	scopeGenericParam
	scopeBodyLocal
	scopeTraitSelf
)

// Descriptor describes one kind of definition: which nodes declare it,
// which identity map key holds it, how its container is found and how the
// definition maps back to syntax.
type Descriptor[ID comparable] struct {
	name   string
	kinds  []syntax.Kind
	key    *dynmap.Key[ID]
	scope  lookupScope
	source func(s *Session, id ID) (expand.InFilePtr, bool)
}

func (d *Descriptor[ID]) String() string { return d.name }

// ToDef returns the definition declared by node.
func ToDef[ID comparable](s *Session, d *Descriptor[ID], node expand.InFileNode) (ID, bool) {
	var zero ID
	if !slices.Contains(d.kinds, node.Value.Kind()) {
		return zero, false
	}
	var c ChildContainer
	var ok bool
	switch d.scope {
	case scopeGenericParam:
		c, ok = s.findGenericParamContainer(node)
	case scopeBodyLocal:
		c, ok = s.findPatOrLabelContainer(node)
	case scopeTraitSelf:
		c, ok = s.traitSelfContainer(node)
	default:
		c, ok = s.FindContainer(node)
	}
	if !ok {
		return zero, false
	}
	return dynmap.Get(s.cacheFor(c, node.File), d.key, node.Value.Ptr())
}

// SourceOf returns the syntax that declares id.
func SourceOf[ID comparable](s *Session, d *Descriptor[ID], id ID) (expand.InFileNode, bool) {
	src, ok := d.source(s, id)
	if !ok {
		return expand.InFileNode{}, false
	}
	n, ok := s.db.Node(src)
	if !ok {
		return expand.InFileNode{}, false
	}
	return expand.NewInFile(src.File, n), true
}

func itemSource[ID comparable](loc func(*hir.DB, ID) hir.ItemLoc) func(*Session, ID) (expand.InFilePtr, bool) {
	return func(s *Session, id ID) (expand.InFilePtr, bool) {
		return s.db.ItemSource(loc(s.db, id)), true
	}
}

// childSource looks id up in the identity map of its container.
func childSource[ID comparable](s *Session, c ChildContainer, file expand.HirFileID, key *dynmap.Key[ID], id ID) (expand.InFilePtr, bool) {
	ptr, ok := dynmap.Source(s.cacheFor(c, file), key, id)
	return expand.NewInFile(file, ptr), ok
}

func fieldSource(key *dynmap.Key[hir.FieldID]) func(*Session, hir.FieldID) (expand.InFilePtr, bool) {
	return func(s *Session, id hir.FieldID) (expand.InFilePtr, bool) {
		file := s.db.VariantSource(id.Parent).File
		return childSource(s, fieldContainer(id.Parent), file, key, id)
	}
}

func paramSource(key *dynmap.Key[hir.TypeOrConstParamID]) func(*Session, hir.TypeOrConstParamID) (expand.InFilePtr, bool) {
	return func(s *Session, id hir.TypeOrConstParamID) (expand.InFilePtr, bool) {
		file := s.db.GenericParams(id.Parent).File
		return childSource(s, GenericContainer(id.Parent), file, key, id)
	}
}

func bindingSource(key *dynmap.Key[hir.LocalBinding]) func(*Session, hir.LocalBinding) (expand.InFilePtr, bool) {
	return func(s *Session, id hir.LocalBinding) (expand.InFilePtr, bool) {
		body, sm := s.db.BodyWithSourceMap(id.Owner)
		if int(id.Binding) >= len(body.Bindings) {
			return expand.InFilePtr{}, false
		}
		file := sm.BindingSource(id.Binding).File
		return childSource(s, BodyContainer(id.Owner), file, key, id)
	}
}

func itemKind[ID comparable](name string, kind syntax.Kind, key *dynmap.Key[ID], loc func(*hir.DB, ID) hir.ItemLoc) *Descriptor[ID] {
	return &Descriptor[ID]{name: name, kinds: []syntax.Kind{kind}, key: key, scope: scopeItem, source: itemSource(loc)}
}

var (
	Function    = itemKind("function", syntax.Fn, dynmap.Function, (*hir.DB).FunctionLoc)
	Struct      = itemKind("struct", syntax.Struct, dynmap.Struct, (*hir.DB).StructLoc)
	Union       = itemKind("union", syntax.Union, dynmap.Union, (*hir.DB).UnionLoc)
	Enum        = itemKind("enum", syntax.Enum, dynmap.Enum, (*hir.DB).EnumLoc)
	Const       = itemKind("const", syntax.Const, dynmap.Const, (*hir.DB).ConstLoc)
	Static      = itemKind("static", syntax.Static, dynmap.Static, (*hir.DB).StaticLoc)
	Trait       = itemKind("trait", syntax.Trait, dynmap.Trait, (*hir.DB).TraitLoc)
	TraitAlias  = itemKind("trait_alias", syntax.TraitAlias, dynmap.TraitAlias, (*hir.DB).TraitAliasLoc)
	TypeAlias   = itemKind("type_alias", syntax.TypeAlias, dynmap.TypeAlias, (*hir.DB).TypeAliasLoc)
	Impl        = itemKind("impl", syntax.Impl, dynmap.Impl, (*hir.DB).ImplLoc)
	ExternCrate = itemKind("extern_crate", syntax.ExternCrate, dynmap.ExternCrate, (*hir.DB).ExternCrateLoc)
	Use         = itemKind("use", syntax.Use, dynmap.Use, (*hir.DB).UseLoc)
	MacroRules  = itemKind("macro_rules", syntax.MacroRules, dynmap.MacroRules, (*hir.DB).MacroRulesLoc)
	Macro2      = itemKind("macro2", syntax.MacroDef, dynmap.Macro2, (*hir.DB).Macro2Loc)
	ProcMacro   = itemKind("proc_macro", syntax.Fn, dynmap.ProcMacro, (*hir.DB).ProcMacroLoc)

	EnumVariant = &Descriptor[hir.EnumVariantID]{
		name:  "enum_variant",
		kinds: []syntax.Kind{syntax.Variant},
		key:   dynmap.EnumVariant,
		source: func(s *Session, id hir.EnumVariantID) (expand.InFilePtr, bool) {
			return s.db.EnumVariantLoc(id).Ast, true
		},
	}
	Block = &Descriptor[hir.BlockID]{
		name:  "block",
		kinds: []syntax.Kind{syntax.BlockExpr},
		key:   dynmap.Block,
		source: func(s *Session, id hir.BlockID) (expand.InFilePtr, bool) {
			return s.db.BlockLoc(id).Ast, true
		},
	}
	MacroCall = &Descriptor[expand.MacroCallID]{
		name:  "macro_call",
		kinds: []syntax.Kind{syntax.MacroCall},
		key:   dynmap.MacroCall,
		source: func(s *Session, id expand.MacroCallID) (expand.InFilePtr, bool) {
			return s.db.MacroCallLoc(id).Call, true
		},
	}
	RecordField = &Descriptor[hir.FieldID]{
		name:   "record_field",
		kinds:  []syntax.Kind{syntax.RecordField},
		key:    dynmap.RecordField,
		source: fieldSource(dynmap.RecordField),
	}
	TupleField = &Descriptor[hir.FieldID]{
		name:   "tuple_field",
		kinds:  []syntax.Kind{syntax.TupleField},
		key:    dynmap.TupleField,
		source: fieldSource(dynmap.TupleField),
	}
	TypeParam = &Descriptor[hir.TypeOrConstParamID]{
		name:   "type_param",
		kinds:  []syntax.Kind{syntax.TypeParam},
		key:    dynmap.TypeParam,
		scope:  scopeGenericParam,
		source: paramSource(dynmap.TypeParam),
	}
	ConstParam = &Descriptor[hir.TypeOrConstParamID]{
		name:   "const_param",
		kinds:  []syntax.Kind{syntax.ConstParam},
		key:    dynmap.ConstParam,
		scope:  scopeGenericParam,
		source: paramSource(dynmap.ConstParam),
	}
	TraitSelf = &Descriptor[hir.TypeOrConstParamID]{
		name:   "trait_self",
		kinds:  []syntax.Kind{syntax.Trait, syntax.TraitAlias},
		key:    dynmap.TraitSelf,
		scope:  scopeTraitSelf,
		source: paramSource(dynmap.TraitSelf),
	}
	LifetimeParam = &Descriptor[hir.LifetimeParamID]{
		name:  "lifetime_param",
		kinds: []syntax.Kind{syntax.LifetimeParam},
		key:   dynmap.LifetimeParam,
		scope: scopeGenericParam,
		source: func(s *Session, id hir.LifetimeParamID) (expand.InFilePtr, bool) {
			file := s.db.GenericParams(id.Parent).File
			return childSource(s, GenericContainer(id.Parent), file, dynmap.LifetimeParam, id)
		},
	}
	Binding = &Descriptor[hir.LocalBinding]{
		name:   "binding",
		kinds:  []syntax.Kind{syntax.IdentPat},
		key:    dynmap.Binding,
		scope:  scopeBodyLocal,
		source: bindingSource(dynmap.Binding),
	}
	SelfParam = &Descriptor[hir.LocalBinding]{
		name:   "self_param",
		kinds:  []syntax.Kind{syntax.SelfParam},
		key:    dynmap.SelfParam,
		scope:  scopeBodyLocal,
		source: bindingSource(dynmap.SelfParam),
	}
	Label = &Descriptor[hir.LocalLabel]{
		name:  "label",
		kinds: []syntax.Kind{syntax.Label},
		key:   dynmap.Label,
		scope: scopeBodyLocal,
		source: func(s *Session, id hir.LocalLabel) (expand.InFilePtr, bool) {
			body, sm := s.db.BodyWithSourceMap(id.Owner)
			if int(id.Label) >= len(body.Labels) {
				return expand.InFilePtr{}, false
			}
			file := sm.LabelSource(id.Label).File
			return childSource(s, BodyContainer(id.Owner), file, dynmap.Label, id)
		},
	}
)
