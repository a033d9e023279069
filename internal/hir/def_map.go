package hir

import (
	"fmt"
	"iter"
	"slices"

	"fortio.org/safecast"

	"srcdef/internal/expand"
	"srcdef/internal/source"
)

type OriginKind uint8

const (
	OriginCrateRoot OriginKind = iota
	OriginFile                 // mod foo; with its own file
	OriginInline               // mod foo { ... }
	OriginBlock                // implicit module of a block expression
)

// ModuleOrigin records where a module is defined and declared.
type ModuleOrigin struct {
	Kind    OriginKind
	DefFile source.FileID    // CrateRoot and File
	Decl    expand.InFilePtr // the mod item, File and Inline
	Block   BlockID          // Block
}

// DefinitionFile returns the file holding the module's items and whether
// the module is file-backed.
func (o ModuleOrigin) DefinitionFile() (source.FileID, bool) {
	switch o.Kind {
	case OriginCrateRoot, OriginFile:
		return o.DefFile, true
	default:
		return 0, false
	}
}

// ItemScope lists what a module declares directly.
type ItemScope struct {
	Decls        []ModuleDefID
	Impls        []ImplID
	Uses         []UseID
	ExternCrates []ExternCrateID
	MacroCalls   []MacroCallEntry
	Macros       []MacroID
}

type ModuleData struct {
	Name     string
	Parent   LocalModuleID
	Children map[string]LocalModuleID
	Origin   ModuleOrigin
	Scope    ItemScope

	order []LocalModuleID
	dir   string // directory searched for `mod foo;` children
}

// ChildModules returns the child modules in declaration order.
func (m *ModuleData) ChildModules() []LocalModuleID { return slices.Clone(m.order) }

// IncludeInvoc is an include!("file") call collected into a def map.
type IncludeInvoc struct {
	Call expand.MacroCallID
	File source.FileID
}

// DefMap is the module tree of a crate, or of a block expression.
type DefMap struct {
	Krate  CrateID
	Block  BlockID
	Parent ModuleID // enclosing module, block maps only

	modules  []ModuleData // index 0 reserved
	Includes []IncludeInvoc
	// Macros holds macro_rules and macro definitions by name, last one wins.
	Macros map[string]MacroID
	// Exported holds #[macro_export] macro_rules visible to dependents.
	Exported map[string]MacroID
	// Unresolved lists `mod foo;` declarations whose file was not found.
	Unresolved []expand.InFilePtr
}

func newDefMap(krate CrateID, block BlockID) *DefMap {
	return &DefMap{
		Krate:    krate,
		Block:    block,
		modules:  make([]ModuleData, 1, 8),
		Macros:   make(map[string]MacroID),
		Exported: make(map[string]MacroID),
	}
}

func (m *DefMap) addModule(data ModuleData) LocalModuleID {
	n, err := safecast.Conv[uint32](len(m.modules))
	if err != nil {
		panic(fmt.Errorf("module overflow: %w", err))
	}
	id := LocalModuleID(n)
	if data.Children == nil {
		data.Children = make(map[string]LocalModuleID)
	}
	m.modules = append(m.modules, data)
	if data.Parent.IsValid() {
		parent := &m.modules[data.Parent]
		parent.Children[data.Name] = id
		parent.order = append(parent.order, id)
	}
	return id
}

func (m *DefMap) Module(id LocalModuleID) *ModuleData {
	if !id.IsValid() || int(id) >= len(m.modules) {
		panic(fmt.Sprintf("hir: module %d out of range", id))
	}
	return &m.modules[id]
}

func (m *DefMap) ModuleID(local LocalModuleID) ModuleID {
	return ModuleID{Krate: m.Krate, Block: m.Block, Local: local}
}

func (m *DefMap) Root() ModuleID { return m.ModuleID(RootModule) }

func (m *DefMap) Len() int { return len(m.modules) - 1 }

// Modules iterates over all modules in creation order.
func (m *DefMap) Modules() iter.Seq2[LocalModuleID, *ModuleData] {
	return func(yield func(LocalModuleID, *ModuleData) bool) {
		for i := 1; i < len(m.modules); i++ {
			if !yield(LocalModuleID(i), &m.modules[i]) {
				return
			}
		}
	}
}

// ModulesForFile returns the modules whose definition file is file.
func (m *DefMap) ModulesForFile(file source.FileID) []LocalModuleID {
	var out []LocalModuleID
	for id, data := range m.Modules() {
		if f, ok := data.Origin.DefinitionFile(); ok && f == file {
			out = append(out, id)
		}
	}
	return out
}

// Child looks up a child module by name.
func (m *DefMap) Child(parent LocalModuleID, name string) (LocalModuleID, bool) {
	id, ok := m.Module(parent).Children[source.NormalizeName(name)]
	return id, ok
}
