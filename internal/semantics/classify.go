package semantics

import (
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/syntax"
	"srcdef/internal/trace"
)

// parentWithMacros steps to the syntactic parent, or out of a macro file to
// the call that produced it.
func (s *Session) parentWithMacros(n expand.InFileNode) (expand.InFileNode, bool) {
	if p := n.Value.Parent(); p.IsValid() {
		return expand.NewInFile(n.File, p), true
	}
	call, ok := n.File.MacroCall()
	if !ok {
		return expand.InFileNode{}, false
	}
	info := s.expansionInfo(call)
	if !info.Arg.Value.IsValid() {
		// no token tree: continue at the call itself, Arg's parent
		return info.CallSite, info.CallSite.Value.IsValid()
	}
	p := info.Arg.Value.Parent()
	return expand.NewInFile(info.Arg.File, p), p.IsValid()
}

// ancestorsWithMacros walks the ancestors of node, starting at its parent
// and crossing macro boundaries, and returns the first value f accepts.
func ancestorsWithMacros[T any](s *Session, node expand.InFileNode, f func(expand.InFileNode) (T, bool)) (T, bool) {
	cur := node
	for {
		parent, ok := s.parentWithMacros(cur)
		if !ok {
			var zero T
			return zero, false
		}
		if v, ok := f(parent); ok {
			return v, true
		}
		cur = parent
	}
}

// FindContainer returns the nearest definition that owns node. Nodes with
// no owning item belong to the first module of their original file.
func (s *Session) FindContainer(node expand.InFileNode) (ChildContainer, bool) {
	sp := s.span.Child(trace.ScopeNode, "find_container")
	c, ok := ancestorsWithMacros(s, node, s.containerToDef)
	if !ok {
		if mods := s.FileToDef(s.db.OriginalFile(node.File)); len(mods) > 0 {
			c, ok = ModuleContainer(mods[0]), true
		}
	}
	sp.End(c.String())
	return c, ok
}

func (s *Session) containerToDef(n expand.InFileNode) (ChildContainer, bool) {
	switch n.Value.Kind() {
	case syntax.Module:
		m, ok := s.ModuleToDef(n)
		return ModuleContainer(m), ok
	case syntax.Trait:
		id, ok := ToDef(s, Trait, n)
		return TraitContainer(id), ok
	case syntax.TraitAlias:
		id, ok := ToDef(s, TraitAlias, n)
		return TraitAliasContainer(id), ok
	case syntax.Impl:
		id, ok := ToDef(s, Impl, n)
		return ImplContainer(id), ok
	case syntax.Enum:
		id, ok := ToDef(s, Enum, n)
		return EnumContainer(id), ok
	case syntax.TypeAlias:
		id, ok := ToDef(s, TypeAlias, n)
		return TypeAliasContainer(id), ok
	case syntax.Struct:
		id, ok := ToDef(s, Struct, n)
		return VariantContainer(hir.StructVariant(id)), ok
	case syntax.Union:
		id, ok := ToDef(s, Union, n)
		return VariantContainer(hir.UnionVariant(id)), ok
	case syntax.Fn:
		id, ok := ToDef(s, Function, n)
		return BodyContainer(hir.FunctionBody(id)), ok
	case syntax.Static:
		id, ok := ToDef(s, Static, n)
		return BodyContainer(hir.StaticBody(id)), ok
	case syntax.Const:
		id, ok := ToDef(s, Const, n)
		return BodyContainer(hir.ConstBody(id)), ok
	case syntax.Variant:
		id, ok := ToDef(s, EnumVariant, n)
		return BodyContainer(hir.VariantBody(id)), ok
	default:
		return ChildContainer{}, false
	}
}

func (s *Session) findGenericParamContainer(node expand.InFileNode) (ChildContainer, bool) {
	return ancestorsWithMacros(s, node, func(n expand.InFileNode) (ChildContainer, bool) {
		switch n.Value.Kind() {
		case syntax.Fn:
			id, ok := ToDef(s, Function, n)
			return GenericContainer(hir.GenericFunction(id)), ok
		case syntax.Struct:
			id, ok := ToDef(s, Struct, n)
			return GenericContainer(hir.GenericStruct(id)), ok
		case syntax.Union:
			id, ok := ToDef(s, Union, n)
			return GenericContainer(hir.GenericUnion(id)), ok
		case syntax.Enum:
			id, ok := ToDef(s, Enum, n)
			return GenericContainer(hir.GenericEnum(id)), ok
		case syntax.Trait:
			id, ok := ToDef(s, Trait, n)
			return GenericContainer(hir.GenericTrait(id)), ok
		case syntax.TraitAlias:
			id, ok := ToDef(s, TraitAlias, n)
			return GenericContainer(hir.GenericTraitAlias(id)), ok
		case syntax.TypeAlias:
			id, ok := ToDef(s, TypeAlias, n)
			return GenericContainer(hir.GenericTypeAlias(id)), ok
		case syntax.Impl:
			id, ok := ToDef(s, Impl, n)
			return GenericContainer(hir.GenericImpl(id)), ok
		default:
			return ChildContainer{}, false
		}
	})
}

func (s *Session) findPatOrLabelContainer(node expand.InFileNode) (ChildContainer, bool) {
	return ancestorsWithMacros(s, node, func(n expand.InFileNode) (ChildContainer, bool) {
		switch n.Value.Kind() {
		case syntax.Fn:
			id, ok := ToDef(s, Function, n)
			return BodyContainer(hir.FunctionBody(id)), ok
		case syntax.Const:
			id, ok := ToDef(s, Const, n)
			return BodyContainer(hir.ConstBody(id)), ok
		case syntax.Static:
			id, ok := ToDef(s, Static, n)
			return BodyContainer(hir.StaticBody(id)), ok
		case syntax.Variant:
			id, ok := ToDef(s, EnumVariant, n)
			return BodyContainer(hir.VariantBody(id)), ok
		default:
			return ChildContainer{}, false
		}
	})
}

// traitSelfContainer handles the implicit Self parameter, whose pointer is
// the trait node itself rather than a descendant of it.
func (s *Session) traitSelfContainer(node expand.InFileNode) (ChildContainer, bool) {
	switch node.Value.Kind() {
	case syntax.Trait:
		id, ok := ToDef(s, Trait, node)
		return GenericContainer(hir.GenericTrait(id)), ok
	case syntax.TraitAlias:
		id, ok := ToDef(s, TraitAlias, node)
		return GenericContainer(hir.GenericTraitAlias(id)), ok
	default:
		return ChildContainer{}, false
	}
}
