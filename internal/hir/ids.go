package hir

import "fmt"

type (
	CrateID       uint32
	LocalModuleID uint32 // index into a DefMap's modules, root is 1
	BlockID       uint32

	FunctionID    uint32
	StructID      uint32
	UnionID       uint32
	EnumID        uint32
	EnumVariantID uint32
	ConstID       uint32
	StaticID      uint32
	TraitID       uint32
	TraitAliasID  uint32
	TypeAliasID   uint32
	ImplID        uint32
	MacroRulesID  uint32
	Macro2ID      uint32
	ProcMacroID   uint32
	ExternCrateID uint32
	UseID         uint32

	// body-local
	BindingID uint32
	LabelID   uint32
)

const (
	NoCrateID       CrateID       = 0
	NoLocalModuleID LocalModuleID = 0
	RootModule      LocalModuleID = 1
	NoBlockID       BlockID       = 0
)

func (id CrateID) IsValid() bool       { return id != NoCrateID }
func (id LocalModuleID) IsValid() bool { return id != NoLocalModuleID }
func (id BlockID) IsValid() bool       { return id != NoBlockID }

// ModuleID names a module of a crate def map, or of a block def map when
// Block is set.
type ModuleID struct {
	Krate CrateID
	Block BlockID
	Local LocalModuleID
}

func (m ModuleID) IsValid() bool { return m.Krate.IsValid() && m.Local.IsValid() }

// IsBlockRoot reports whether m is the implicit module of a block expression.
func (m ModuleID) IsBlockRoot() bool { return m.Block.IsValid() && m.Local == RootModule }

func (m ModuleID) String() string {
	if m.Block.IsValid() {
		return fmt.Sprintf("crate%d/block%d::mod%d", m.Krate, m.Block, m.Local)
	}
	return fmt.Sprintf("crate%d::mod%d", m.Krate, m.Local)
}

// FieldID is a field of a struct, union or enum variant, numbered in
// declaration order among cfg-enabled fields.
type FieldID struct {
	Parent VariantID
	Local  uint32
}

func (f FieldID) String() string { return fmt.Sprintf("%s.field%d", f.Parent, f.Local) }

// TypeOrConstParamID indexes the shared type/const parameter list of an
// owner. For traits and trait aliases index 0 is the implicit Self.
type TypeOrConstParamID struct {
	Parent GenericDefID
	Local  uint32
}

func (p TypeOrConstParamID) String() string { return fmt.Sprintf("%s.param%d", p.Parent, p.Local) }

type LifetimeParamID struct {
	Parent GenericDefID
	Local  uint32
}

func (p LifetimeParamID) String() string { return fmt.Sprintf("%s.lifetime%d", p.Parent, p.Local) }

// LocalBinding is a binding (or self parameter) inside a body.
type LocalBinding struct {
	Owner   DefWithBodyID
	Binding BindingID
}

func (b LocalBinding) String() string { return fmt.Sprintf("%s.binding%d", b.Owner, b.Binding) }

type LocalLabel struct {
	Owner DefWithBodyID
	Label LabelID
}

func (l LocalLabel) String() string { return fmt.Sprintf("%s.label%d", l.Owner, l.Label) }

// UseTreeID is one tree of a use declaration, indexed in the flattened
// preorder list of its trees.
type UseTreeID struct {
	Use   UseID
	Index uint32
}

func (u UseTreeID) String() string { return fmt.Sprintf("Use#%d.tree%d", u.Use, u.Index) }
