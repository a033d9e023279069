// Package dynmap is a typed identity map from syntax pointers to semantic
// ids, keyed by definition kind. Each key statically fixes the id type it
// stores, so lookups never need a type assertion.
package dynmap

import (
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/syntax"
)

// Key selects one typed slot of a Map.
type Key[ID comparable] struct {
	name string
	slot func(m *Map) **slot[ID]
}

func (k *Key[ID]) String() string { return k.name }

type Entry[ID comparable] struct {
	Ptr syntax.Ptr
	ID  ID
}

type slot[ID comparable] struct {
	entries []Entry[ID]
	bySrc   map[syntax.Ptr]int
	byDef   map[ID]syntax.Ptr // built on first reverse lookup
}

// Map holds the children of one container within one file. Entries are
// never removed.
type Map struct {
	n int

	block         *slot[hir.BlockID]
	function      *slot[hir.FunctionID]
	konst         *slot[hir.ConstID]
	static        *slot[hir.StaticID]
	typeAlias     *slot[hir.TypeAliasID]
	impl          *slot[hir.ImplID]
	trait         *slot[hir.TraitID]
	traitAlias    *slot[hir.TraitAliasID]
	strukt        *slot[hir.StructID]
	union         *slot[hir.UnionID]
	enum          *slot[hir.EnumID]
	externCrate   *slot[hir.ExternCrateID]
	use           *slot[hir.UseID]
	enumVariant   *slot[hir.EnumVariantID]
	tupleField    *slot[hir.FieldID]
	recordField   *slot[hir.FieldID]
	typeParam     *slot[hir.TypeOrConstParamID]
	constParam    *slot[hir.TypeOrConstParamID]
	lifetimeParam *slot[hir.LifetimeParamID]
	traitSelf     *slot[hir.TypeOrConstParamID]
	macroRules    *slot[hir.MacroRulesID]
	macro2        *slot[hir.Macro2ID]
	procMacro     *slot[hir.ProcMacroID]
	macroCall     *slot[expand.MacroCallID]
	binding       *slot[hir.LocalBinding]
	selfParam     *slot[hir.LocalBinding]
	label         *slot[hir.LocalLabel]
}

func New() *Map { return &Map{} }

// Len counts entries over all keys.
func (m *Map) Len() int { return m.n }

// Insert maps ptr to id under k. Re-inserting a pointer replaces its id and
// drops the reverse index; the next Source call rebuilds it.
func Insert[ID comparable](m *Map, k *Key[ID], ptr syntax.Ptr, id ID) {
	sp := k.slot(m)
	if *sp == nil {
		*sp = &slot[ID]{bySrc: make(map[syntax.Ptr]int)}
	}
	s := *sp
	if i, ok := s.bySrc[ptr]; ok {
		if s.entries[i].ID != id {
			s.entries[i].ID = id
			s.byDef = nil
		}
		return
	}
	s.bySrc[ptr] = len(s.entries)
	s.entries = append(s.entries, Entry[ID]{Ptr: ptr, ID: id})
	if s.byDef != nil {
		if _, ok := s.byDef[id]; !ok {
			s.byDef[id] = ptr
		}
	}
	m.n++
}

func Get[ID comparable](m *Map, k *Key[ID], ptr syntax.Ptr) (ID, bool) {
	var zero ID
	if m == nil {
		return zero, false
	}
	s := *k.slot(m)
	if s == nil {
		return zero, false
	}
	i, ok := s.bySrc[ptr]
	if !ok {
		return zero, false
	}
	return s.entries[i].ID, true
}

// Source is the reverse lookup. The first pointer inserted for id wins.
func Source[ID comparable](m *Map, k *Key[ID], id ID) (syntax.Ptr, bool) {
	if m == nil {
		return syntax.Ptr{}, false
	}
	s := *k.slot(m)
	if s == nil {
		return syntax.Ptr{}, false
	}
	if s.byDef == nil {
		s.byDef = make(map[ID]syntax.Ptr, len(s.entries))
		for _, e := range s.entries {
			if _, ok := s.byDef[e.ID]; !ok {
				s.byDef[e.ID] = e.Ptr
			}
		}
	}
	ptr, ok := s.byDef[id]
	return ptr, ok
}

// Entries returns the entries of k in insertion order.
func Entries[ID comparable](m *Map, k *Key[ID]) []Entry[ID] {
	if m == nil {
		return nil
	}
	s := *k.slot(m)
	if s == nil {
		return nil
	}
	return s.entries
}

func IsEmpty[ID comparable](m *Map, k *Key[ID]) bool {
	return len(Entries(m, k)) == 0
}

// reverseBuilt reports whether the reverse index of k exists. Tests only.
func reverseBuilt[ID comparable](m *Map, k *Key[ID]) bool {
	s := *k.slot(m)
	return s != nil && s.byDef != nil
}
