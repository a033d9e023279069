package semantics

import (
	"fmt"

	"srcdef/internal/hir"
)

type ContainerKind uint8

const (
	ContainerNone ContainerKind = iota
	ContainerModule
	ContainerTrait
	ContainerTraitAlias
	ContainerImpl
	ContainerEnum
	ContainerVariant
	ContainerBody
	ContainerGenerics
	ContainerTypeAlias
)

var containerKindNames = [...]string{
	ContainerNone:       "none",
	ContainerModule:     "module",
	ContainerTrait:      "trait",
	ContainerTraitAlias: "trait_alias",
	ContainerImpl:       "impl",
	ContainerEnum:       "enum",
	ContainerVariant:    "variant",
	ContainerBody:       "body",
	ContainerGenerics:   "generics",
	ContainerTypeAlias:  "type_alias",
}

func (k ContainerKind) String() string {
	if int(k) < len(containerKindNames) {
		return containerKindNames[k]
	}
	return "container(?)"
}

// ChildContainer is a definition that owns child definitions. Def and ID
// carry the wrapped id for every kind but modules.
type ChildContainer struct {
	Kind   ContainerKind
	Module hir.ModuleID
	Def    hir.DefKind
	ID     uint32
}

func ModuleContainer(m hir.ModuleID) ChildContainer {
	return ChildContainer{Kind: ContainerModule, Module: m}
}

func TraitContainer(id hir.TraitID) ChildContainer {
	return ChildContainer{Kind: ContainerTrait, Def: hir.DefTrait, ID: uint32(id)}
}

func TraitAliasContainer(id hir.TraitAliasID) ChildContainer {
	return ChildContainer{Kind: ContainerTraitAlias, Def: hir.DefTraitAlias, ID: uint32(id)}
}

func ImplContainer(id hir.ImplID) ChildContainer {
	return ChildContainer{Kind: ContainerImpl, Def: hir.DefImpl, ID: uint32(id)}
}

func EnumContainer(id hir.EnumID) ChildContainer {
	return ChildContainer{Kind: ContainerEnum, Def: hir.DefEnum, ID: uint32(id)}
}

func TypeAliasContainer(id hir.TypeAliasID) ChildContainer {
	return ChildContainer{Kind: ContainerTypeAlias, Def: hir.DefTypeAlias, ID: uint32(id)}
}

func VariantContainer(v hir.VariantID) ChildContainer {
	return ChildContainer{Kind: ContainerVariant, Def: v.Kind, ID: v.ID}
}

func BodyContainer(d hir.DefWithBodyID) ChildContainer {
	return ChildContainer{Kind: ContainerBody, Def: d.Kind, ID: d.ID}
}

func GenericContainer(g hir.GenericDefID) ChildContainer {
	return ChildContainer{Kind: ContainerGenerics, Def: g.Kind, ID: g.ID}
}

func (c ChildContainer) Variant() hir.VariantID     { return hir.VariantID{Kind: c.Def, ID: c.ID} }
func (c ChildContainer) Body() hir.DefWithBodyID    { return hir.DefWithBodyID{Kind: c.Def, ID: c.ID} }
func (c ChildContainer) Generics() hir.GenericDefID { return hir.GenericDefID{Kind: c.Def, ID: c.ID} }
func (c ChildContainer) IsValid() bool              { return c.Kind != ContainerNone }

func (c ChildContainer) String() string {
	switch c.Kind {
	case ContainerNone:
		return "none"
	case ContainerModule:
		return "module(" + c.Module.String() + ")"
	default:
		return fmt.Sprintf("%s(%s#%d)", c.Kind, c.Def, c.ID)
	}
}

// fieldContainer is where the fields of v are enumerated: enum variants
// own a body, so their fields live in the body container.
func fieldContainer(v hir.VariantID) ChildContainer {
	if v.Kind == hir.DefEnumVariant {
		return BodyContainer(hir.VariantBody(hir.EnumVariantID(v.ID)))
	}
	return VariantContainer(v)
}
