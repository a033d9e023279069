package syntax

// Kind tags a syntax node.
type Kind uint8

const (
	KindInvalid Kind = iota
	SourceFile
	Module
	ItemList
	Fn
	Struct
	Union
	Enum
	VariantList
	Variant
	RecordFieldList
	RecordField
	TupleFieldList
	TupleField
	Trait
	TraitAlias
	Impl
	AssocItemList
	Const
	Static
	TypeAlias
	MacroRules
	MacroDef
	MacroCall
	TokenTree
	Use
	UseTree
	UseTreeList
	ExternCrate
	GenericParamList
	TypeParam
	ConstParam
	LifetimeParam
	ParamList
	SelfParam
	Param
	IdentPat
	BlockExpr
	LetStmt
	Label
	Attr
	Expr
	Type
	Other
	kindCount
)

var kindNames = [...]string{
	KindInvalid:      "Invalid",
	SourceFile:       "SourceFile",
	Module:           "Module",
	ItemList:         "ItemList",
	Fn:               "Fn",
	Struct:           "Struct",
	Union:            "Union",
	Enum:             "Enum",
	VariantList:      "VariantList",
	Variant:          "Variant",
	RecordFieldList:  "RecordFieldList",
	RecordField:      "RecordField",
	TupleFieldList:   "TupleFieldList",
	TupleField:       "TupleField",
	Trait:            "Trait",
	TraitAlias:       "TraitAlias",
	Impl:             "Impl",
	AssocItemList:    "AssocItemList",
	Const:            "Const",
	Static:           "Static",
	TypeAlias:        "TypeAlias",
	MacroRules:       "MacroRules",
	MacroDef:         "MacroDef",
	MacroCall:        "MacroCall",
	TokenTree:        "TokenTree",
	Use:              "Use",
	UseTree:          "UseTree",
	UseTreeList:      "UseTreeList",
	ExternCrate:      "ExternCrate",
	GenericParamList: "GenericParamList",
	TypeParam:        "TypeParam",
	ConstParam:       "ConstParam",
	LifetimeParam:    "LifetimeParam",
	ParamList:        "ParamList",
	SelfParam:        "SelfParam",
	Param:            "Param",
	IdentPat:         "IdentPat",
	BlockExpr:        "BlockExpr",
	LetStmt:          "LetStmt",
	Label:            "Label",
	Attr:             "Attr",
	Expr:             "Expr",
	Type:             "Type",
	Other:            "Other",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsItem reports whether nodes of this kind can appear in an item list.
func (k Kind) IsItem() bool {
	switch k {
	case Module, Fn, Struct, Union, Enum, Trait, TraitAlias, Impl, Const, Static,
		TypeAlias, MacroRules, MacroDef, MacroCall, Use, ExternCrate:
		return true
	default:
		return false
	}
}

// IsGenericParam reports whether the kind is one of the generic parameter kinds.
func (k Kind) IsGenericParam() bool {
	return k == TypeParam || k == ConstParam || k == LifetimeParam
}
