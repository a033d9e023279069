package semantics

import (
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

// ModuleToDef resolves a `mod` item to the module it declares.
func (s *Session) ModuleToDef(node expand.InFileNode) (hir.ModuleID, bool) {
	if node.Value.Kind() != syntax.Module {
		return hir.ModuleID{}, false
	}
	outer, found := ancestorsWithMacros(s, node, func(n expand.InFileNode) (expand.InFileNode, bool) {
		k := n.Value.Kind()
		return n, k == syntax.Module || k == syntax.BlockExpr
	})

	var parent hir.ModuleID
	switch {
	case !found:
		mods := s.FileToDef(s.db.OriginalFile(node.File))
		if len(mods) == 0 {
			return hir.ModuleID{}, false
		}
		parent = mods[0]
	case outer.Value.Kind() == syntax.BlockExpr:
		b, ok := ToDef(s, Block, outer)
		if !ok {
			return hir.ModuleID{}, false
		}
		parent = s.db.BlockDefMap(b).Root()
	default:
		p, ok := s.ModuleToDef(outer)
		if !ok {
			return hir.ModuleID{}, false
		}
		parent = p
	}

	dm := s.db.DefMapOf(parent)
	child, ok := dm.Child(parent.Local, node.Value.Name())
	if !ok {
		return hir.ModuleID{}, false
	}
	return dm.ModuleID(child), true
}

// SourceFileToDef returns the first module defined by file.
func (s *Session) SourceFileToDef(file source.FileID) (hir.ModuleID, bool) {
	mods := s.FileToDef(file)
	if len(mods) == 0 {
		return hir.ModuleID{}, false
	}
	return mods[0], true
}

// ModuleSource holds both sides of a module: where its items live and the
// `mod` item declaring it.
type ModuleSource struct {
	Definition  expand.InFileNode // file root, inline module or block
	Declaration expand.InFileNode // invalid for crate roots and blocks
}

func (s *Session) ModuleSource(m hir.ModuleID) (ModuleSource, bool) {
	db := s.db
	origin := db.DefMapOf(m).Module(m.Local).Origin
	var src ModuleSource
	switch origin.Kind {
	case hir.OriginCrateRoot, hir.OriginFile:
		file := expand.FromFile(origin.DefFile)
		src.Definition = expand.NewInFile(file, db.ParseOrExpand(file).Root())
	case hir.OriginInline:
	case hir.OriginBlock:
		ast := db.BlockLoc(origin.Block).Ast
		n, ok := db.Node(ast)
		if !ok {
			return src, false
		}
		src.Definition = expand.NewInFile(ast.File, n)
	}
	if origin.Kind == hir.OriginFile || origin.Kind == hir.OriginInline {
		n, ok := db.Node(origin.Decl)
		if !ok {
			return src, false
		}
		src.Declaration = expand.NewInFile(origin.Decl.File, n)
		if origin.Kind == hir.OriginInline {
			src.Definition = src.Declaration
		}
	}
	return src, true
}

// UseTreeToDef resolves one tree of a use declaration.
func (s *Session) UseTreeToDef(node expand.InFileNode) (hir.UseTreeID, bool) {
	if node.Value.Kind() != syntax.UseTree {
		return hir.UseTreeID{}, false
	}
	var decl syntax.Node
	for a := range node.Value.Ancestors() {
		if a.Kind() == syntax.Use {
			decl = a
			break
		}
	}
	if !decl.IsValid() {
		return hir.UseTreeID{}, false
	}
	use, ok := ToDef(s, Use, expand.NewInFile(node.File, decl))
	if !ok {
		return hir.UseTreeID{}, false
	}
	idx, ok := s.db.Item(s.db.UseLoc(use)).UseTreeIndex(node.Value.Ptr())
	if !ok {
		return hir.UseTreeID{}, false
	}
	return hir.UseTreeID{Use: use, Index: idx}, true
}

func (s *Session) UseTreeSource(id hir.UseTreeID) (expand.InFileNode, bool) {
	loc := s.db.UseLoc(id.Use)
	trees := s.db.Item(loc).UseTrees
	if int(id.Index) >= len(trees) {
		return expand.InFileNode{}, false
	}
	src := expand.NewInFile(loc.Tree.File, trees[id.Index].Ptr)
	n, ok := s.db.Node(src)
	return expand.NewInFile(src.File, n), ok
}

// MacroCallToMacroID finds the macro a call invokes by resolving the
// definition's syntax, which may itself sit in a macro expansion.
func (s *Session) MacroCallToMacroID(call expand.MacroCallID) (hir.MacroID, bool) {
	loc := s.db.MacroCallLoc(call)
	if !loc.Def.IsValid() {
		return hir.MacroID{}, false
	}
	src := s.db.MacroSource(loc.Def)
	n, ok := s.db.Node(src)
	if !ok {
		return hir.MacroID{}, false
	}
	node := expand.NewInFile(src.File, n)
	switch n.Kind() {
	case syntax.MacroRules:
		id, ok := ToDef(s, MacroRules, node)
		return hir.MacroRulesMacro(id), ok
	case syntax.MacroDef:
		id, ok := ToDef(s, Macro2, node)
		return hir.Macro2Macro(id), ok
	case syntax.Fn:
		id, ok := ToDef(s, ProcMacro, node)
		return hir.ProcMacroMacro(id), ok
	default:
		return hir.MacroID{}, false
	}
}
