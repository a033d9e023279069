package hir

import "fmt"

// DefKind tags the members of the id unions below.
type DefKind uint8

const (
	DefNone DefKind = iota
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
	DefMacroRules
	DefMacro2
	DefProcMacro
	DefExternCrate
	DefUse
)

var defKindNames = [...]string{
	DefNone:        "None",
	DefFunction:    "Function",
	DefStruct:      "Struct",
	DefUnion:       "Union",
	DefEnum:        "Enum",
	DefEnumVariant: "EnumVariant",
	DefConst:       "Const",
	DefStatic:      "Static",
	DefTrait:       "Trait",
	DefTraitAlias:  "TraitAlias",
	DefTypeAlias:   "TypeAlias",
	DefImpl:        "Impl",
	DefMacroRules:  "MacroRules",
	DefMacro2:      "Macro2",
	DefProcMacro:   "ProcMacro",
	DefExternCrate: "ExternCrate",
	DefUse:         "Use",
}

func (k DefKind) String() string {
	if int(k) < len(defKindNames) {
		return defKindNames[k]
	}
	return "DefKind(?)"
}

// ModuleDefID is an item declared in a module scope.
type ModuleDefID struct {
	Kind DefKind
	ID   uint32
}

func (d ModuleDefID) String() string { return fmt.Sprintf("%s#%d", d.Kind, d.ID) }

// VariantID is anything with fields: a struct, a union or an enum variant.
type VariantID struct {
	Kind DefKind
	ID   uint32
}

func StructVariant(id StructID) VariantID    { return VariantID{Kind: DefStruct, ID: uint32(id)} }
func UnionVariant(id UnionID) VariantID      { return VariantID{Kind: DefUnion, ID: uint32(id)} }
func EnumVariant(id EnumVariantID) VariantID { return VariantID{Kind: DefEnumVariant, ID: uint32(id)} }
func (v VariantID) String() string           { return fmt.Sprintf("%s#%d", v.Kind, v.ID) }

// DefWithBodyID is an owner of an expression body.
type DefWithBodyID struct {
	Kind DefKind
	ID   uint32
}

func FunctionBody(id FunctionID) DefWithBodyID {
	return DefWithBodyID{Kind: DefFunction, ID: uint32(id)}
}
func ConstBody(id ConstID) DefWithBodyID   { return DefWithBodyID{Kind: DefConst, ID: uint32(id)} }
func StaticBody(id StaticID) DefWithBodyID { return DefWithBodyID{Kind: DefStatic, ID: uint32(id)} }
func VariantBody(id EnumVariantID) DefWithBodyID {
	return DefWithBodyID{Kind: DefEnumVariant, ID: uint32(id)}
}
func (d DefWithBodyID) String() string { return fmt.Sprintf("%s#%d", d.Kind, d.ID) }

// GenericDefID is an owner of generic parameters.
type GenericDefID struct {
	Kind DefKind
	ID   uint32
}

func GenericFunction(id FunctionID) GenericDefID {
	return GenericDefID{Kind: DefFunction, ID: uint32(id)}
}
func GenericStruct(id StructID) GenericDefID { return GenericDefID{Kind: DefStruct, ID: uint32(id)} }
func GenericUnion(id UnionID) GenericDefID   { return GenericDefID{Kind: DefUnion, ID: uint32(id)} }
func GenericEnum(id EnumID) GenericDefID     { return GenericDefID{Kind: DefEnum, ID: uint32(id)} }
func GenericTrait(id TraitID) GenericDefID   { return GenericDefID{Kind: DefTrait, ID: uint32(id)} }
func GenericTraitAlias(id TraitAliasID) GenericDefID {
	return GenericDefID{Kind: DefTraitAlias, ID: uint32(id)}
}
func GenericTypeAlias(id TypeAliasID) GenericDefID {
	return GenericDefID{Kind: DefTypeAlias, ID: uint32(id)}
}
func GenericImpl(id ImplID) GenericDefID { return GenericDefID{Kind: DefImpl, ID: uint32(id)} }
func (g GenericDefID) String() string    { return fmt.Sprintf("%s#%d", g.Kind, g.ID) }

// MacroID is a macro definition of any flavour.
type MacroID struct {
	Kind DefKind
	ID   uint32
}

func MacroRulesMacro(id MacroRulesID) MacroID { return MacroID{Kind: DefMacroRules, ID: uint32(id)} }
func Macro2Macro(id Macro2ID) MacroID         { return MacroID{Kind: DefMacro2, ID: uint32(id)} }
func ProcMacroMacro(id ProcMacroID) MacroID   { return MacroID{Kind: DefProcMacro, ID: uint32(id)} }
func (m MacroID) IsValid() bool               { return m.Kind != DefNone && m.ID != 0 }
func (m MacroID) String() string              { return fmt.Sprintf("%s#%d", m.Kind, m.ID) }
