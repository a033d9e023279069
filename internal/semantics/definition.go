package semantics

import (
	"fmt"

	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

type DefinitionKind uint8

const (
	DefNone DefinitionKind = iota
	DefModule
	DefFunction
	DefStruct
	DefUnion
	DefEnum
	DefEnumVariant
	DefConst
	DefStatic
	DefTrait
	DefTraitAlias
	DefTypeAlias
	DefImpl
	DefRecordField
	DefTupleField
	DefBlock
	DefExternCrate
	DefUse
	DefUseTree
	DefMacroRules
	DefMacro2
	DefProcMacro
	DefMacroCall
	DefTypeParam
	DefConstParam
	DefLifetimeParam
	DefTraitSelf
	DefBinding
	DefSelfParam
	DefLabel
)

var definitionKindNames = [...]string{
	DefNone:          "none",
	DefModule:        "module",
	DefFunction:      "function",
	DefStruct:        "struct",
	DefUnion:         "union",
	DefEnum:          "enum",
	DefEnumVariant:   "enum_variant",
	DefConst:         "const",
	DefStatic:        "static",
	DefTrait:         "trait",
	DefTraitAlias:    "trait_alias",
	DefTypeAlias:     "type_alias",
	DefImpl:          "impl",
	DefRecordField:   "record_field",
	DefTupleField:    "tuple_field",
	DefBlock:         "block",
	DefExternCrate:   "extern_crate",
	DefUse:           "use",
	DefUseTree:       "use_tree",
	DefMacroRules:    "macro_rules",
	DefMacro2:        "macro2",
	DefProcMacro:     "proc_macro",
	DefMacroCall:     "macro_call",
	DefTypeParam:     "type_param",
	DefConstParam:    "const_param",
	DefLifetimeParam: "lifetime_param",
	DefTraitSelf:     "trait_self",
	DefBinding:       "binding",
	DefSelfParam:     "self_param",
	DefLabel:         "label",
}

func (k DefinitionKind) String() string {
	if int(k) < len(definitionKindNames) {
		return definitionKindNames[k]
	}
	return "definition(?)"
}

// Definition is any semantic id a node can declare. Only the field that
// matches Kind is set; ID carries the plain item ids.
type Definition struct {
	Kind     DefinitionKind
	Module   hir.ModuleID
	ID       uint32
	Field    hir.FieldID
	Param    hir.TypeOrConstParamID
	Lifetime hir.LifetimeParamID
	Local    hir.LocalBinding
	Label    hir.LocalLabel
	UseTree  hir.UseTreeID
}

func (d Definition) String() string {
	switch d.Kind {
	case DefModule:
		return "module " + d.Module.String()
	case DefRecordField, DefTupleField:
		return d.Kind.String() + " " + d.Field.String()
	case DefTypeParam, DefConstParam, DefTraitSelf:
		return d.Kind.String() + " " + d.Param.String()
	case DefLifetimeParam:
		return d.Kind.String() + " " + d.Lifetime.String()
	case DefBinding, DefSelfParam:
		return d.Kind.String() + " " + d.Local.String()
	case DefLabel:
		return d.Kind.String() + " " + d.Label.String()
	case DefUseTree:
		return d.Kind.String() + " " + d.UseTree.String()
	default:
		return fmt.Sprintf("%s#%d", d.Kind, d.ID)
	}
}

func resolveID[ID ~uint32](s *Session, desc *Descriptor[ID], node expand.InFileNode, kind DefinitionKind) (Definition, bool) {
	id, ok := ToDef(s, desc, node)
	if !ok {
		return Definition{}, false
	}
	return Definition{Kind: kind, ID: uint32(id)}, true
}

// Resolve returns the definition node declares, dispatching on its kind.
func (s *Session) Resolve(node expand.InFileNode) (Definition, bool) {
	switch node.Value.Kind() {
	case syntax.SourceFile:
		file, ok := node.File.FileID()
		if !ok {
			return Definition{}, false
		}
		m, ok := s.SourceFileToDef(file)
		return Definition{Kind: DefModule, Module: m}, ok
	case syntax.Module:
		m, ok := s.ModuleToDef(node)
		return Definition{Kind: DefModule, Module: m}, ok
	case syntax.Fn:
		return resolveID(s, Function, node, DefFunction)
	case syntax.Struct:
		return resolveID(s, Struct, node, DefStruct)
	case syntax.Union:
		return resolveID(s, Union, node, DefUnion)
	case syntax.Enum:
		return resolveID(s, Enum, node, DefEnum)
	case syntax.Variant:
		return resolveID(s, EnumVariant, node, DefEnumVariant)
	case syntax.Const:
		return resolveID(s, Const, node, DefConst)
	case syntax.Static:
		return resolveID(s, Static, node, DefStatic)
	case syntax.Trait:
		return resolveID(s, Trait, node, DefTrait)
	case syntax.TraitAlias:
		return resolveID(s, TraitAlias, node, DefTraitAlias)
	case syntax.TypeAlias:
		return resolveID(s, TypeAlias, node, DefTypeAlias)
	case syntax.Impl:
		return resolveID(s, Impl, node, DefImpl)
	case syntax.BlockExpr:
		return resolveID(s, Block, node, DefBlock)
	case syntax.ExternCrate:
		return resolveID(s, ExternCrate, node, DefExternCrate)
	case syntax.Use:
		return resolveID(s, Use, node, DefUse)
	case syntax.MacroRules:
		return resolveID(s, MacroRules, node, DefMacroRules)
	case syntax.MacroDef:
		return resolveID(s, Macro2, node, DefMacro2)
	case syntax.MacroCall:
		return resolveID(s, MacroCall, node, DefMacroCall)
	case syntax.UseTree:
		id, ok := s.UseTreeToDef(node)
		return Definition{Kind: DefUseTree, UseTree: id}, ok
	case syntax.RecordField:
		id, ok := ToDef(s, RecordField, node)
		return Definition{Kind: DefRecordField, Field: id}, ok
	case syntax.TupleField:
		id, ok := ToDef(s, TupleField, node)
		return Definition{Kind: DefTupleField, Field: id}, ok
	case syntax.TypeParam:
		id, ok := ToDef(s, TypeParam, node)
		return Definition{Kind: DefTypeParam, Param: id}, ok
	case syntax.ConstParam:
		id, ok := ToDef(s, ConstParam, node)
		return Definition{Kind: DefConstParam, Param: id}, ok
	case syntax.LifetimeParam:
		id, ok := ToDef(s, LifetimeParam, node)
		return Definition{Kind: DefLifetimeParam, Lifetime: id}, ok
	case syntax.IdentPat:
		id, ok := ToDef(s, Binding, node)
		return Definition{Kind: DefBinding, Local: id}, ok
	case syntax.SelfParam:
		id, ok := ToDef(s, SelfParam, node)
		return Definition{Kind: DefSelfParam, Local: id}, ok
	case syntax.Label:
		id, ok := ToDef(s, Label, node)
		return Definition{Kind: DefLabel, Label: id}, ok
	default:
		return Definition{}, false
	}
}

// SourceOfDefinition is the inverse of Resolve: Resolve(SourceOfDefinition(d))
// yields d again. Modules map to their declaration when they have one.
func (s *Session) SourceOfDefinition(d Definition) (expand.InFileNode, bool) {
	switch d.Kind {
	case DefModule:
		src, ok := s.ModuleSource(d.Module)
		if !ok {
			return expand.InFileNode{}, false
		}
		if src.Declaration.Value.IsValid() {
			return src.Declaration, true
		}
		return src.Definition, src.Definition.Value.IsValid()
	case DefFunction:
		return SourceOf(s, Function, hir.FunctionID(d.ID))
	case DefStruct:
		return SourceOf(s, Struct, hir.StructID(d.ID))
	case DefUnion:
		return SourceOf(s, Union, hir.UnionID(d.ID))
	case DefEnum:
		return SourceOf(s, Enum, hir.EnumID(d.ID))
	case DefEnumVariant:
		return SourceOf(s, EnumVariant, hir.EnumVariantID(d.ID))
	case DefConst:
		return SourceOf(s, Const, hir.ConstID(d.ID))
	case DefStatic:
		return SourceOf(s, Static, hir.StaticID(d.ID))
	case DefTrait:
		return SourceOf(s, Trait, hir.TraitID(d.ID))
	case DefTraitAlias:
		return SourceOf(s, TraitAlias, hir.TraitAliasID(d.ID))
	case DefTypeAlias:
		return SourceOf(s, TypeAlias, hir.TypeAliasID(d.ID))
	case DefImpl:
		return SourceOf(s, Impl, hir.ImplID(d.ID))
	case DefBlock:
		return SourceOf(s, Block, hir.BlockID(d.ID))
	case DefExternCrate:
		return SourceOf(s, ExternCrate, hir.ExternCrateID(d.ID))
	case DefUse:
		return SourceOf(s, Use, hir.UseID(d.ID))
	case DefUseTree:
		return s.UseTreeSource(d.UseTree)
	case DefMacroRules:
		return SourceOf(s, MacroRules, hir.MacroRulesID(d.ID))
	case DefMacro2:
		return SourceOf(s, Macro2, hir.Macro2ID(d.ID))
	case DefProcMacro:
		return SourceOf(s, ProcMacro, hir.ProcMacroID(d.ID))
	case DefMacroCall:
		return SourceOf(s, MacroCall, expand.MacroCallID(d.ID))
	case DefRecordField:
		return SourceOf(s, RecordField, d.Field)
	case DefTupleField:
		return SourceOf(s, TupleField, d.Field)
	case DefTypeParam:
		return SourceOf(s, TypeParam, d.Param)
	case DefConstParam:
		return SourceOf(s, ConstParam, d.Param)
	case DefTraitSelf:
		return SourceOf(s, TraitSelf, d.Param)
	case DefLifetimeParam:
		return SourceOf(s, LifetimeParam, d.Lifetime)
	case DefBinding:
		return SourceOf(s, Binding, d.Local)
	case DefSelfParam:
		return SourceOf(s, SelfParam, d.Local)
	case DefLabel:
		return SourceOf(s, Label, d.Label)
	default:
		return expand.InFileNode{}, false
	}
}

// NodeAt returns the innermost node of file covering offset.
func (s *Session) NodeAt(file source.FileID, offset uint32) expand.InFileNode {
	h := expand.FromFile(file)
	return expand.NewInFile(h, s.db.ParseOrExpand(h).CoveringNode(offset))
}

// DefinitionAt resolves the innermost definition-bearing node covering
// offset.
func (s *Session) DefinitionAt(file source.FileID, offset uint32) (Definition, expand.InFileNode, bool) {
	node := s.NodeAt(file, offset)
	for n := node.Value; n.IsValid(); n = n.Parent() {
		at := expand.NewInFile(node.File, n)
		if d, ok := s.Resolve(at); ok {
			return d, at, true
		}
	}
	return Definition{}, expand.InFileNode{}, false
}
