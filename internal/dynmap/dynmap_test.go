package dynmap

import (
	"testing"

	"srcdef/internal/hir"
	"srcdef/internal/syntax"
)

func ptr(kind syntax.Kind, i uint32) syntax.Ptr {
	return syntax.Ptr{Kind: kind, Index: syntax.NodeID(i)}
}

func TestInsertGetKeepsOrder(t *testing.T) {
	m := New()
	Insert(m, Function, ptr(syntax.Fn, 7), hir.FunctionID(3))
	Insert(m, Function, ptr(syntax.Fn, 2), hir.FunctionID(1))
	Insert(m, Struct, ptr(syntax.Struct, 4), hir.StructID(1))

	if id, ok := Get(m, Function, ptr(syntax.Fn, 2)); !ok || id != hir.FunctionID(1) {
		t.Fatalf("Get = %v, %v", id, ok)
	}
	if _, ok := Get(m, Function, ptr(syntax.Fn, 4)); ok {
		t.Fatalf("unknown pointer found")
	}
	// same pointer, other key
	if _, ok := Get(m, Struct, ptr(syntax.Fn, 7)); ok {
		t.Fatalf("pointer found under the wrong key")
	}

	entries := Entries(m, Function)
	if len(entries) != 2 || entries[0].ID != hir.FunctionID(3) || entries[1].ID != hir.FunctionID(1) {
		t.Fatalf("entries = %v", entries)
	}
	if m.Len() != 3 {
		t.Fatalf("len = %d", m.Len())
	}
	if !IsEmpty(m, Enum) || IsEmpty(m, Struct) {
		t.Fatalf("IsEmpty is wrong")
	}
}

func TestReverseIndexIsLazy(t *testing.T) {
	m := New()
	owner := hir.FunctionBody(5)
	x := hir.LocalBinding{Owner: owner, Binding: 0}
	y := hir.LocalBinding{Owner: owner, Binding: 1}
	Insert(m, Binding, ptr(syntax.IdentPat, 10), x)
	if reverseBuilt(m, Binding) {
		t.Fatalf("reverse index built by Insert")
	}

	if src, ok := Source(m, Binding, x); !ok || src != ptr(syntax.IdentPat, 10) {
		t.Fatalf("Source = %v, %v", src, ok)
	}
	if !reverseBuilt(m, Binding) || reverseBuilt(m, Label) {
		t.Fatalf("reverse index built for the wrong keys")
	}

	// inserts after the reverse index exists stay visible both ways
	Insert(m, Binding, ptr(syntax.IdentPat, 12), y)
	src, ok := Source(m, Binding, y)
	if !ok || src != ptr(syntax.IdentPat, 12) {
		t.Fatalf("Source after insert = %v, %v", src, ok)
	}
	if got, ok := Get(m, Binding, src); !ok || got != y {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestSharedIDTypesStayApart(t *testing.T) {
	m := New()
	param := hir.TypeOrConstParamID{Parent: hir.GenericTrait(1), Local: 0}
	Insert(m, TraitSelf, ptr(syntax.Trait, 1), param)

	if _, ok := Get(m, TypeParam, ptr(syntax.Trait, 1)); ok {
		t.Fatalf("TraitSelf entry visible as TypeParam")
	}
	if _, ok := Source(m, ConstParam, param); ok {
		t.Fatalf("TraitSelf entry visible as ConstParam")
	}
	if src, ok := Source(m, TraitSelf, param); !ok || src.Kind != syntax.Trait {
		t.Fatalf("Source = %v, %v", src, ok)
	}
}

func TestReinsertReplaces(t *testing.T) {
	m := New()
	p := ptr(syntax.Fn, 3)
	Insert(m, Function, p, hir.FunctionID(1))
	Insert(m, Function, p, hir.FunctionID(2))
	if id, _ := Get(m, Function, p); id != hir.FunctionID(2) {
		t.Fatalf("Get = %v, want 2", id)
	}
	if m.Len() != 1 {
		t.Fatalf("len = %d", m.Len())
	}
	if _, ok := Source(m, Function, hir.FunctionID(1)); ok {
		t.Fatalf("replaced id still has a source")
	}
}

func TestReinsertKeepsOtherPointersOfOldID(t *testing.T) {
	m := New()
	p1, p2 := ptr(syntax.Fn, 1), ptr(syntax.Fn, 2)
	Insert(m, Function, p1, hir.FunctionID(1))
	Insert(m, Function, p2, hir.FunctionID(1))
	if src, _ := Source(m, Function, hir.FunctionID(1)); src != p1 {
		t.Fatalf("first pointer lost: %v", src)
	}

	Insert(m, Function, p2, hir.FunctionID(2))
	if src, ok := Source(m, Function, hir.FunctionID(1)); !ok || src != p1 {
		t.Fatalf("Source(1) = %v, %v; want %v", src, ok, p1)
	}
	if src, ok := Source(m, Function, hir.FunctionID(2)); !ok || src != p2 {
		t.Fatalf("Source(2) = %v, %v; want %v", src, ok, p2)
	}
}

func TestReinsertKeepsFirstPointerWinning(t *testing.T) {
	m := New()
	p1, p2 := ptr(syntax.Fn, 1), ptr(syntax.Fn, 2)
	Insert(m, Function, p1, hir.FunctionID(1))
	Insert(m, Function, p2, hir.FunctionID(2))
	Source(m, Function, hir.FunctionID(2))

	// p1 now also maps to 2 and precedes p2
	Insert(m, Function, p1, hir.FunctionID(2))
	if src, _ := Source(m, Function, hir.FunctionID(2)); src != p1 {
		t.Fatalf("Source(2) = %v, want %v", src, p1)
	}
}

func TestNilMapLookups(t *testing.T) {
	var m *Map
	if _, ok := Get(m, Function, ptr(syntax.Fn, 1)); ok {
		t.Fatalf("nil map found a pointer")
	}
	if !IsEmpty(m, Function) {
		t.Fatalf("nil map not empty")
	}
}
