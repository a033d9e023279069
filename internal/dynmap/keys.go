package dynmap

import (
	"srcdef/internal/expand"
	"srcdef/internal/hir"
)

var (
	Block         = &Key[hir.BlockID]{"block", func(m *Map) **slot[hir.BlockID] { return &m.block }}
	Function      = &Key[hir.FunctionID]{"function", func(m *Map) **slot[hir.FunctionID] { return &m.function }}
	Const         = &Key[hir.ConstID]{"const", func(m *Map) **slot[hir.ConstID] { return &m.konst }}
	Static        = &Key[hir.StaticID]{"static", func(m *Map) **slot[hir.StaticID] { return &m.static }}
	TypeAlias     = &Key[hir.TypeAliasID]{"type_alias", func(m *Map) **slot[hir.TypeAliasID] { return &m.typeAlias }}
	Impl          = &Key[hir.ImplID]{"impl", func(m *Map) **slot[hir.ImplID] { return &m.impl }}
	Trait         = &Key[hir.TraitID]{"trait", func(m *Map) **slot[hir.TraitID] { return &m.trait }}
	TraitAlias    = &Key[hir.TraitAliasID]{"trait_alias", func(m *Map) **slot[hir.TraitAliasID] { return &m.traitAlias }}
	Struct        = &Key[hir.StructID]{"struct", func(m *Map) **slot[hir.StructID] { return &m.strukt }}
	Union         = &Key[hir.UnionID]{"union", func(m *Map) **slot[hir.UnionID] { return &m.union }}
	Enum          = &Key[hir.EnumID]{"enum", func(m *Map) **slot[hir.EnumID] { return &m.enum }}
	ExternCrate   = &Key[hir.ExternCrateID]{"extern_crate", func(m *Map) **slot[hir.ExternCrateID] { return &m.externCrate }}
	Use           = &Key[hir.UseID]{"use", func(m *Map) **slot[hir.UseID] { return &m.use }}
	EnumVariant   = &Key[hir.EnumVariantID]{"enum_variant", func(m *Map) **slot[hir.EnumVariantID] { return &m.enumVariant }}
	TupleField    = &Key[hir.FieldID]{"tuple_field", func(m *Map) **slot[hir.FieldID] { return &m.tupleField }}
	RecordField   = &Key[hir.FieldID]{"record_field", func(m *Map) **slot[hir.FieldID] { return &m.recordField }}
	TypeParam     = &Key[hir.TypeOrConstParamID]{"type_param", func(m *Map) **slot[hir.TypeOrConstParamID] { return &m.typeParam }}
	ConstParam    = &Key[hir.TypeOrConstParamID]{"const_param", func(m *Map) **slot[hir.TypeOrConstParamID] { return &m.constParam }}
	LifetimeParam = &Key[hir.LifetimeParamID]{"lifetime_param", func(m *Map) **slot[hir.LifetimeParamID] { return &m.lifetimeParam }}
	// TraitSelf holds the implicit Self parameter, keyed by the trait node.
	TraitSelf  = &Key[hir.TypeOrConstParamID]{"trait_self", func(m *Map) **slot[hir.TypeOrConstParamID] { return &m.traitSelf }}
	MacroRules = &Key[hir.MacroRulesID]{"macro_rules", func(m *Map) **slot[hir.MacroRulesID] { return &m.macroRules }}
	Macro2     = &Key[hir.Macro2ID]{"macro2", func(m *Map) **slot[hir.Macro2ID] { return &m.macro2 }}
	ProcMacro  = &Key[hir.ProcMacroID]{"proc_macro", func(m *Map) **slot[hir.ProcMacroID] { return &m.procMacro }}
	MacroCall  = &Key[expand.MacroCallID]{"macro_call", func(m *Map) **slot[expand.MacroCallID] { return &m.macroCall }}
	Binding    = &Key[hir.LocalBinding]{"binding", func(m *Map) **slot[hir.LocalBinding] { return &m.binding }}
	SelfParam  = &Key[hir.LocalBinding]{"self_param", func(m *Map) **slot[hir.LocalBinding] { return &m.selfParam }}
	Label      = &Key[hir.LocalLabel]{"label", func(m *Map) **slot[hir.LocalLabel] { return &m.label }}
)
