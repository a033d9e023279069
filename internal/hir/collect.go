package hir

import (
	"path"

	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

// MaxExpansionDepth bounds nested macro expansion during collection.
const MaxExpansionDepth = 32

type collector struct {
	db     *DB
	defMap *DefMap
	crate  Crate
	active map[source.FileID]bool // files on the current mod/include chain
}

func (db *DB) newCollector(dm *DefMap) *collector {
	return &collector{
		db:     db,
		defMap: dm,
		crate:  db.Crate(dm.Krate),
		active: make(map[source.FileID]bool),
	}
}

func (db *DB) collectCrate(k CrateID) *DefMap {
	dm := newDefMap(k, NoBlockID)
	c := db.newCollector(dm)
	file := expand.FromFile(c.crate.Root)
	root := dm.addModule(ModuleData{
		Origin: ModuleOrigin{Kind: OriginCrateRoot, DefFile: c.crate.Root},
		dir:    db.fileDir(file),
	})
	tree := db.ItemTree(file)
	c.active[c.crate.Root] = true
	c.collectItems(root, tree, tree.Top, 0)
	return dm
}

func (db *DB) collectBlock(b BlockID) *DefMap {
	loc := db.BlockLoc(b)
	dm := newDefMap(loc.Module.Krate, b)
	dm.Parent = loc.Module
	c := db.newCollector(dm)
	root := dm.addModule(ModuleData{Origin: ModuleOrigin{Kind: OriginBlock, Block: b}})
	tree := db.ItemTree(loc.Ast.File)
	c.collectItems(root, tree, tree.Blocks[loc.Ast.Value], 0)
	return dm
}

func (c *collector) scope(module LocalModuleID) *ItemScope {
	return &c.defMap.Module(module).Scope
}

func (c *collector) decl(module LocalModuleID, kind DefKind, id uint32) {
	s := c.scope(module)
	s.Decls = append(s.Decls, ModuleDefID{Kind: kind, ID: id})
}

func (c *collector) collectItems(module LocalModuleID, tree *ItemTree, items []ItemIdx, depth int) {
	container := ModuleContainer(c.defMap.ModuleID(module))
	for _, idx := range items {
		item := tree.Item(idx)
		if !item.Attrs.Enabled(c.crate.Cfg) {
			continue
		}
		loc := ItemLoc{Container: container, Tree: ItemTreeID{File: tree.File, Index: idx}}
		switch item.Kind {
		case syntax.Fn:
			c.decl(module, DefFunction, uint32(c.db.functions.intern(loc)))
			if c.crate.ProcMacro && item.Attrs.ProcMacro {
				m := ProcMacroMacro(c.db.procMacros.intern(loc))
				s := c.scope(module)
				s.Macros = append(s.Macros, m)
				c.defMap.Exported[item.Name] = m
			}
		case syntax.Struct:
			c.decl(module, DefStruct, uint32(c.db.structs.intern(loc)))
		case syntax.Union:
			c.decl(module, DefUnion, uint32(c.db.unions.intern(loc)))
		case syntax.Enum:
			c.decl(module, DefEnum, uint32(c.db.enums.intern(loc)))
		case syntax.Const:
			c.decl(module, DefConst, uint32(c.db.consts.intern(loc)))
		case syntax.Static:
			c.decl(module, DefStatic, uint32(c.db.statics.intern(loc)))
		case syntax.Trait:
			c.decl(module, DefTrait, uint32(c.db.traits.intern(loc)))
		case syntax.TraitAlias:
			c.decl(module, DefTraitAlias, uint32(c.db.traitAliases.intern(loc)))
		case syntax.TypeAlias:
			c.decl(module, DefTypeAlias, uint32(c.db.typeAliases.intern(loc)))
		case syntax.Impl:
			s := c.scope(module)
			s.Impls = append(s.Impls, c.db.impls.intern(loc))
		case syntax.Use:
			s := c.scope(module)
			s.Uses = append(s.Uses, c.db.uses.intern(loc))
		case syntax.ExternCrate:
			s := c.scope(module)
			s.ExternCrates = append(s.ExternCrates, c.db.externCrates.intern(loc))
		case syntax.MacroRules:
			m := MacroRulesMacro(c.db.macroRules.intern(loc))
			c.defineMacro(module, item, m)
		case syntax.MacroDef:
			m := Macro2Macro(c.db.macro2s.intern(loc))
			c.defineMacro(module, item, m)
		case syntax.Module:
			c.collectModule(module, tree, idx, depth)
		case syntax.MacroCall:
			c.collectMacroCall(module, tree, idx, depth)
		}
	}
}

func (c *collector) defineMacro(module LocalModuleID, item *Item, m MacroID) {
	s := c.scope(module)
	s.Macros = append(s.Macros, m)
	c.defMap.Macros[item.Name] = m
	if item.Attrs.MacroExport || m.Kind == DefMacro2 {
		c.defMap.Exported[item.Name] = m
	}
}

func (c *collector) collectModule(parent LocalModuleID, tree *ItemTree, idx ItemIdx, depth int) {
	item := tree.Item(idx)
	decl := inFilePtr(tree.File, item.Ptr)
	parentDir := c.defMap.Module(parent).dir

	if item.Inline {
		id := c.defMap.addModule(ModuleData{
			Name:   item.Name,
			Parent: parent,
			Origin: ModuleOrigin{Kind: OriginInline, Decl: decl},
			dir:    path.Join(parentDir, item.Name),
		})
		c.collectItems(id, tree, item.Children, depth)
		return
	}

	// out-of-line modules are not allowed inside blocks
	if c.defMap.Block.IsValid() {
		c.defMap.Unresolved = append(c.defMap.Unresolved, decl)
		return
	}
	file, dir, ok := c.resolveModFile(parentDir, tree.File, item)
	if !ok || c.active[file] {
		c.defMap.Unresolved = append(c.defMap.Unresolved, decl)
		return
	}
	id := c.defMap.addModule(ModuleData{
		Name:   item.Name,
		Parent: parent,
		Origin: ModuleOrigin{Kind: OriginFile, DefFile: file, Decl: decl},
		dir:    dir,
	})
	sub := c.db.ItemTree(expand.FromFile(file))
	c.active[file] = true
	c.collectItems(id, sub, sub.Top, depth)
	delete(c.active, file)
}

// resolveModFile finds the file of `mod name;`: name.rs or name/mod.rs in
// the parent's directory, or the #[path] target relative to the declaring
// file.
func (c *collector) resolveModFile(dir string, declFile expand.HirFileID, item *Item) (source.FileID, string, bool) {
	if item.Attrs.Path != "" {
		id, ok := c.db.lookupFile(c.db.fileDir(declFile), item.Attrs.Path)
		if !ok {
			return 0, "", false
		}
		f := c.db.files.Get(id)
		childDir := f.Dir()
		if f.Stem() != "mod" {
			childDir = path.Join(childDir, f.Stem())
		}
		return id, childDir, true
	}
	for _, rel := range []string{item.Name + ".rs", path.Join(item.Name, "mod.rs")} {
		if id, ok := c.db.lookupFile(dir, rel); ok {
			return id, path.Join(dir, item.Name), true
		}
	}
	return 0, "", false
}

func (c *collector) collectMacroCall(module LocalModuleID, tree *ItemTree, idx ItemIdx, depth int) {
	item := tree.Item(idx)
	ast := inFilePtr(tree.File, item.Ptr)
	if item.Name == "include" {
		c.collectInclude(module, tree, item, ast, depth)
		return
	}

	def, _ := c.db.resolveMacroName(c.defMap, item.Name)
	call := c.db.calls.intern(MacroCallLoc{
		Kind:  CallFnLike,
		Krate: c.defMap.Krate,
		Call:  ast,
		Name:  item.Name,
		Def:   def,
	})
	s := c.scope(module)
	s.MacroCalls = append(s.MacroCalls, MacroCallEntry{Ast: ast, Call: call})
	if depth >= MaxExpansionDepth {
		return
	}
	sub := c.db.ItemTree(expand.FromMacro(call))
	c.collectItems(module, sub, sub.Top, depth+1)
}

// collectInclude records include!("file") and collects the included file's
// items into module. The items keep the included file as their location.
func (c *collector) collectInclude(module LocalModuleID, tree *ItemTree, item *Item, ast expand.InFilePtr, depth int) {
	file, ok := c.db.lookupFile(c.db.fileDir(tree.File), unquote(item.MacroArg))
	call := c.db.calls.intern(MacroCallLoc{
		Kind:        CallInclude,
		Krate:       c.defMap.Krate,
		Call:        ast,
		Name:        item.Name,
		IncludeFile: file,
		HasInclude:  ok,
	})
	s := c.scope(module)
	s.MacroCalls = append(s.MacroCalls, MacroCallEntry{Ast: ast, Call: call})
	if !ok {
		return
	}
	c.defMap.Includes = append(c.defMap.Includes, IncludeInvoc{Call: call, File: file})
	if depth >= MaxExpansionDepth || c.active[file] {
		return
	}
	sub := c.db.ItemTree(expand.FromFile(file))
	c.active[file] = true
	c.collectItems(module, sub, sub.Top, depth+1)
	delete(c.active, file)
}

// resolveMacroName looks a macro up by name in dm, the def maps enclosing
// it, and then among the exported macros of the crate's dependencies.
func (db *DB) resolveMacroName(dm *DefMap, name string) (MacroID, bool) {
	for m := dm; ; {
		if id, ok := m.Macros[name]; ok {
			return id, true
		}
		if !m.Block.IsValid() {
			break
		}
		m = db.DefMapOf(m.Parent)
	}
	for _, dep := range db.Crate(dm.Krate).Deps {
		if id, ok := db.CrateDefMap(dep).Exported[name]; ok {
			return id, true
		}
	}
	return MacroID{}, false
}
