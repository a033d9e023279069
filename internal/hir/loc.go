package hir

import (
	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

// ContainerKind says what directly owns an item.
type ContainerKind uint8

const (
	InModule ContainerKind = iota
	InImpl
	InTrait
)

type ItemContainerID struct {
	Kind   ContainerKind
	Module ModuleID // set when Kind == InModule
	ID     uint32   // ImplID or TraitID otherwise
}

func ModuleContainer(m ModuleID) ItemContainerID {
	return ItemContainerID{Kind: InModule, Module: m}
}

// ItemIdx indexes ItemTree.Items.
type ItemIdx uint32

// ItemTreeID locates an item in the item tree of a real or macro file.
type ItemTreeID struct {
	File  expand.HirFileID
	Index ItemIdx
}

// ItemLoc is the interned location of every item kind.
type ItemLoc struct {
	Container ItemContainerID
	Tree      ItemTreeID
}

type EnumVariantLoc struct {
	Parent EnumID
	Ast    expand.InFilePtr
	Index  uint32 // among cfg-enabled variants
}

type BlockLoc struct {
	Ast    expand.InFilePtr
	Module ModuleID // module the block is nested in
}

// MacroCallKind distinguishes function-like calls from include!.
type MacroCallKind uint8

const (
	CallFnLike MacroCallKind = iota
	CallInclude
)

type MacroCallLoc struct {
	Kind        MacroCallKind
	Krate       CrateID
	Call        expand.InFilePtr
	Name        string
	Def         MacroID       // invalid for built-ins and unresolved macros
	IncludeFile source.FileID // CallInclude only
	HasInclude  bool
}

// MacroCallEntry records a call site together with its id.
type MacroCallEntry struct {
	Ast  expand.InFilePtr
	Call expand.MacroCallID
}

func inFilePtr(file expand.HirFileID, p syntax.Ptr) expand.InFilePtr {
	return expand.NewInFile(file, p)
}
