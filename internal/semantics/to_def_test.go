package semantics_test

import (
	"context"
	"slices"
	"testing"

	"srcdef/internal/dynmap"
	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/semantics"
	"srcdef/internal/syntax"
	"srcdef/internal/testkit"
)

const lib = "/ws/lib.rs"

func session(ws *testkit.Workspace) *semantics.Session {
	return semantics.New(context.Background(), ws.DB)
}

func rootScope(ws *testkit.Workspace, crate string) *hir.ItemScope {
	return &ws.DB.CrateDefMap(ws.Crates[crate]).Module(hir.RootModule).Scope
}

func toDef[ID comparable](t *testing.T, s *semantics.Session, d *semantics.Descriptor[ID], node expand.InFileNode) ID {
	t.Helper()
	id, ok := semantics.ToDef(s, d, node)
	if !ok {
		t.Fatalf("%s: %s in %s does not resolve", d, node.Value, node.File)
	}
	return id
}

func sourceOf[ID comparable](t *testing.T, s *semantics.Session, d *semantics.Descriptor[ID], id ID) expand.InFileNode {
	t.Helper()
	src, ok := semantics.SourceOf(s, d, id)
	if !ok {
		t.Fatalf("%s: no source for %v", d, id)
	}
	return src
}

func findContainer(t *testing.T, s *semantics.Session, node expand.InFileNode) semantics.ChildContainer {
	t.Helper()
	c, ok := s.FindContainer(node)
	if !ok {
		t.Fatalf("no container for %s", node.Value)
	}
	return c
}

// inExpansion finds the n-th node of kind and name in the expansion of call.
func inExpansion(t *testing.T, ws *testkit.Workspace, call expand.MacroCallID, kind syntax.Kind, name string) expand.InFileNode {
	t.Helper()
	exp := expand.FromMacro(call)
	n, ok := testkit.FindNth(ws.DB.ParseOrExpand(exp), kind, name, 0)
	if !ok {
		t.Fatalf("expansion of %v has no %s %q", call, kind, name)
	}
	return expand.NewInFile(exp, n)
}

func TestFunctionToDef(t *testing.T) {
	ws := testkit.Single(t, "fn first() {}\nfn second() {}\n")
	s := session(ws)
	second := ws.First(lib, syntax.Fn, "second")

	id := toDef(t, s, semantics.Function, second)
	if name := ws.DB.Item(ws.DB.FunctionLoc(id)).Name; name != "second" {
		t.Fatalf("resolved to %s", name)
	}
	if src := sourceOf(t, s, semantics.Function, id); src != second {
		t.Fatalf("source = %s", src.Value)
	}
	if _, ok := semantics.ToDef(s, semantics.Struct, ws.First(lib, syntax.Fn, "first")); ok {
		t.Fatalf("a function resolved as a struct")
	}
}

func TestRoundTripEveryDefinition(t *testing.T) {
	ws := testkit.Single(t, `
mod inner {
    pub struct Nested;
}
struct S<T> { a: T, b: i32 }
union U { x: u32 }
enum E { A, B(i32) }
const C: i32 = 0;
static ST: i32 = 0;
trait Tr { fn req(&self); }
type Alias = S<i32>;
impl Tr for U { fn req(&self) {} }
extern crate core;
use inner::Nested;
macro_rules! m { () => {} }
fn f<'a, T, const N: usize>(x: &'a T) {
    let y = 1;
    'l: loop { break 'l; }
}
`)
	s := session(ws)
	file := expand.FromFile(ws.FileID(lib))

	seen := map[semantics.DefinitionKind]int{}
	for n := range ws.DB.ParseOrExpand(file).All() {
		node := expand.NewInFile(file, n)
		d, ok := s.Resolve(node)
		if !ok {
			continue
		}
		seen[d.Kind]++
		src, ok := s.SourceOfDefinition(d)
		if !ok {
			t.Fatalf("no source for %s", d)
		}
		back, ok := s.Resolve(src)
		if !ok {
			t.Fatalf("source of %s does not resolve", d)
		}
		if back != d {
			t.Errorf("%s came back as %s", d, back)
		}
		if d.Kind != semantics.DefModule && src != node {
			t.Errorf("source of %s is %s, want %s", d, src.Value, n)
		}
	}

	for _, k := range []semantics.DefinitionKind{
		semantics.DefModule, semantics.DefStruct, semantics.DefUnion, semantics.DefEnum,
		semantics.DefEnumVariant, semantics.DefConst, semantics.DefStatic, semantics.DefTrait,
		semantics.DefTypeAlias, semantics.DefImpl, semantics.DefExternCrate, semantics.DefUse,
		semantics.DefUseTree, semantics.DefMacroRules, semantics.DefFunction,
		semantics.DefRecordField, semantics.DefTupleField, semantics.DefTypeParam,
		semantics.DefConstParam, semantics.DefLifetimeParam, semantics.DefBinding,
		semantics.DefSelfParam, semantics.DefLabel,
	} {
		if seen[k] == 0 {
			t.Errorf("no %s resolved", k)
		}
	}
	counts := map[semantics.DefinitionKind]int{
		semantics.DefFunction:    3, // f and both req
		semantics.DefRecordField: 3,
		semantics.DefSelfParam:   2,
	}
	for k, want := range counts {
		if seen[k] != want {
			t.Errorf("%s resolved %d times, want %d", k, seen[k], want)
		}
	}
}

func TestMacroExpandedItems(t *testing.T) {
	ws := testkit.Single(t, `
macro_rules! make {
    () => { fn generated() {} }
}
make!();
`)
	s := session(ws)
	scope := rootScope(ws, "main")
	if len(scope.MacroCalls) != 1 {
		t.Fatalf("macro calls = %v", scope.MacroCalls)
	}
	call := scope.MacroCalls[0].Call
	node := inExpansion(t, ws, call, syntax.Fn, "generated")

	root := semantics.ModuleContainer(ws.DB.CrateDefMap(ws.Crates["main"]).Root())
	if c := findContainer(t, s, node); c != root {
		t.Fatalf("container = %s, want %s", c, root)
	}

	id := toDef(t, s, semantics.Function, node)
	if uint32(id) != scope.Decls[0].ID {
		t.Fatalf("generated = %v, want %v", id, scope.Decls[0])
	}
	if src := sourceOf(t, s, semantics.Function, id); src.File != node.File {
		t.Fatalf("source file = %v, want %v", src.File, node.File)
	}

	if got := toDef(t, s, semantics.MacroCall, ws.First(lib, syntax.MacroCall, "")); got != call {
		t.Fatalf("macro call = %v, want %v", got, call)
	}
	mac, ok := s.MacroCallToMacroID(call)
	if !ok || mac != scope.Macros[0] {
		t.Fatalf("macro of call = %v, %v", mac, ok)
	}
}

func TestStatementMacroItemsInBody(t *testing.T) {
	ws := testkit.Single(t, `
macro_rules! make { () => { fn generated() {} } }
fn host() {
    make!();
}
`)
	s := session(ws)
	host := toDef(t, s, semantics.Function, ws.First(lib, syntax.Fn, "host"))

	call := toDef(t, s, semantics.MacroCall, ws.First(lib, syntax.MacroCall, "make"))
	if c := findContainer(t, s, ws.First(lib, syntax.MacroCall, "make")); c != semantics.BodyContainer(hir.FunctionBody(host)) {
		t.Fatalf("macro call container = %s", c)
	}

	node := inExpansion(t, ws, call, syntax.Fn, "generated")
	if c := findContainer(t, s, node); c != semantics.BodyContainer(hir.FunctionBody(host)) {
		t.Fatalf("generated container = %s", c)
	}
	id := toDef(t, s, semantics.Function, node)
	if !ws.DB.FunctionLoc(id).Container.Module.IsBlockRoot() {
		t.Fatalf("generated lives in %v, want the body block", ws.DB.FunctionLoc(id).Container.Module)
	}
	if src := sourceOf(t, s, semantics.Function, id); src != node {
		t.Fatalf("source = %s in %v", src.Value, src.File)
	}

	d, ok := s.Resolve(node)
	if !ok || d.Kind != semantics.DefFunction || d.ID != uint32(id) {
		t.Fatalf("Resolve = %s, %v", d, ok)
	}
}

func TestCallWithoutTokenTreeKeepsEnclosingModule(t *testing.T) {
	f := testkit.New(t)
	f.Tree(lib, func(b *syntax.Builder) {
		b.Node(syntax.Module, "inner", func() {
			b.Node(syntax.ItemList, "", func() {
				b.Leaf(syntax.MacroCall, "gen")
			})
		})
	})
	f.Macro("gen", func(string) *syntax.Tree {
		b := syntax.NewBuilder()
		b.Node(syntax.SourceFile, "", func() { b.Leaf(syntax.Fn, "made") })
		return b.Finish(nil)
	})
	ws := f.Crate(testkit.CrateSpec{Name: "main", Root: lib}).Build()
	s := session(ws)

	inner, ok := s.ModuleToDef(ws.First(lib, syntax.Module, "inner"))
	if !ok {
		t.Fatalf("inner module does not resolve")
	}
	call := toDef(t, s, semantics.MacroCall, ws.First(lib, syntax.MacroCall, "gen"))
	node := inExpansion(t, ws, call, syntax.Fn, "made")

	if c := findContainer(t, s, node); c != semantics.ModuleContainer(inner) {
		t.Fatalf("container = %s, want %s", c, semantics.ModuleContainer(inner))
	}
	id := toDef(t, s, semantics.Function, node)
	if m := ws.DB.FunctionLoc(id).Container.Module; m != inner {
		t.Fatalf("made lives in %v", m)
	}
}

func TestMacroExpandedAssocItem(t *testing.T) {
	ws := testkit.Single(t, `
macro_rules! method {
    () => { fn produced(&self) {} }
}
struct S;
impl S {
    method!();
}
`)
	s := session(ws)
	scope := rootScope(ws, "main")
	if len(scope.Impls) != 1 {
		t.Fatalf("impls = %v", scope.Impls)
	}
	items := ws.DB.ImplItems(scope.Impls[0])
	if len(items.Items) != 1 || len(items.MacroCalls) != 1 {
		t.Fatalf("impl items = %+v", items)
	}

	node := inExpansion(t, ws, items.MacroCalls[0].Call, syntax.Fn, "produced")
	if c := findContainer(t, s, node); c != semantics.ImplContainer(scope.Impls[0]) {
		t.Fatalf("container = %s", c)
	}
	id := toDef(t, s, semantics.Function, node)
	if uint32(id) != items.Items[0].ID {
		t.Fatalf("produced = %v, want %v", id, items.Items[0])
	}

	self, ok := testkit.FindIn(node.Value, syntax.SelfParam, "")
	if !ok {
		t.Fatalf("produced has no self param")
	}
	local := toDef(t, s, semantics.SelfParam, expand.NewInFile(node.File, self))
	if local.Owner != hir.FunctionBody(id) {
		t.Fatalf("self belongs to %v", local.Owner)
	}
}

func TestIncludedFileInTwoCrates(t *testing.T) {
	f := testkit.New(t)
	f.File("/ws/a.rs", `include!("shared.rs");`)
	f.File("/ws/b.rs", `include!("shared.rs");`)
	shared := f.File("/ws/shared.rs", "fn common() {}\n")
	ws := f.Crate(testkit.CrateSpec{Name: "a", Root: "/ws/a.rs"}).
		Crate(testkit.CrateSpec{Name: "b", Root: "/ws/b.rs"}).
		Build()
	s := session(ws)

	mods := s.FileToDef(shared)
	var krates []hir.CrateID
	for _, m := range mods {
		krates = append(krates, m.Krate)
	}
	if want := []hir.CrateID{ws.Crates["a"], ws.Crates["b"]}; !slices.Equal(krates, want) {
		t.Fatalf("crates of shared.rs = %v, want %v", krates, want)
	}
	for _, m := range mods {
		if m.Local != hir.RootModule || m.Block.IsValid() {
			t.Fatalf("shared.rs maps to %v, want a crate root", m)
		}
	}

	id := toDef(t, s, semantics.Function, ws.First("/ws/shared.rs", syntax.Fn, "common"))
	loc := ws.DB.FunctionLoc(id)
	if loc.Container.Module != mods[0] {
		t.Fatalf("common lives in %v, want %v", loc.Container.Module, mods[0])
	}
	if loc.Tree.File != expand.FromFile(shared) {
		t.Fatalf("common located in %v", loc.Tree.File)
	}
}

func TestDetachedFile(t *testing.T) {
	f := testkit.New(t)
	f.File(lib, "fn attached() {}\n")
	lone := f.File("/elsewhere/x.rs", "fn lone() {}\n")
	ws := f.Crate(testkit.CrateSpec{Name: "main", Root: lib}).Build()
	s := session(ws)

	mods := s.FileToDef(lone)
	if mods == nil || len(mods) != 0 {
		t.Fatalf("modules of a detached file = %#v, want empty non-nil", mods)
	}
	if _, ok := semantics.ToDef(s, semantics.Function, ws.First("/elsewhere/x.rs", syntax.Fn, "lone")); ok {
		t.Fatalf("item of a detached file resolved")
	}
	if _, ok := s.SourceFileToDef(lone); ok {
		t.Fatalf("detached file has a module")
	}
}

func TestTraitSelfParam(t *testing.T) {
	ws := testkit.Single(t, "trait Tr<T> {}\n")
	s := session(ws)
	trNode := ws.First(lib, syntax.Trait, "Tr")

	tr := toDef(t, s, semantics.Trait, trNode)
	self := toDef(t, s, semantics.TraitSelf, trNode)
	if want := (hir.TypeOrConstParamID{Parent: hir.GenericTrait(tr), Local: 0}); self != want {
		t.Fatalf("Self = %v, want %v", self, want)
	}
	if src := sourceOf(t, s, semantics.TraitSelf, self); src != trNode {
		t.Fatalf("Self source = %s", src.Value)
	}

	param := toDef(t, s, semantics.TypeParam, ws.First(lib, syntax.TypeParam, "T"))
	if param.Local != 1 {
		t.Fatalf("T local = %d, want 1", param.Local)
	}

	m := s.ChildrenOf(semantics.GenericContainer(hir.GenericTrait(tr)))
	if n := len(dynmap.Entries(m, dynmap.TraitSelf)); n != 1 {
		t.Fatalf("TraitSelf entries = %d", n)
	}
	if n := len(dynmap.Entries(m, dynmap.TypeParam)); n != 1 {
		t.Fatalf("TypeParam entries = %d", n)
	}
}

func TestTraitWithoutParamsHasOnlySelf(t *testing.T) {
	ws := testkit.Single(t, "trait Marker {}\n")
	s := session(ws)
	node := ws.First(lib, syntax.Trait, "Marker")
	tr := toDef(t, s, semantics.Trait, node)

	m := s.ChildrenOf(semantics.GenericContainer(hir.GenericTrait(tr)))
	if m.Len() != 1 {
		t.Fatalf("children of Marker generics = %d, want 1", m.Len())
	}
	entries := dynmap.Entries(m, dynmap.TraitSelf)
	if len(entries) != 1 || entries[0].Ptr != node.Value.Ptr() || entries[0].ID.Local != 0 {
		t.Fatalf("TraitSelf entries = %v", entries)
	}
}

func TestTraitAliasFromBuiltTree(t *testing.T) {
	f := testkit.New(t)
	f.Tree(lib, func(b *syntax.Builder) {
		b.Node(syntax.TraitAlias, "Both", func() {
			b.Node(syntax.GenericParamList, "", func() {
				b.Leaf(syntax.TypeParam, "T")
			})
		})
	})
	ws := f.Crate(testkit.CrateSpec{Name: "main", Root: lib}).Build()
	s := session(ws)
	node := ws.First(lib, syntax.TraitAlias, "Both")

	alias := toDef(t, s, semantics.TraitAlias, node)
	self := toDef(t, s, semantics.TraitSelf, node)
	if self.Parent != hir.GenericTraitAlias(alias) || self.Local != 0 {
		t.Fatalf("Self = %v", self)
	}

	param := toDef(t, s, semantics.TypeParam, ws.First(lib, syntax.TypeParam, "T"))
	if want := (hir.TypeOrConstParamID{Parent: hir.GenericTraitAlias(alias), Local: 1}); param != want {
		t.Fatalf("T = %v, want %v", param, want)
	}
	if n := s.ChildrenOf(semantics.TraitAliasContainer(alias)).Len(); n != 0 {
		t.Fatalf("trait alias declares %d children", n)
	}
}

func TestRecordFieldsInDeclarationOrder(t *testing.T) {
	ws := testkit.Single(t, "struct S { a: i32, b: i32 }\n")
	s := session(ws)
	st := toDef(t, s, semantics.Struct, ws.First(lib, syntax.Struct, "S"))
	v := hir.StructVariant(st)

	entries := dynmap.Entries(s.ChildrenOf(semantics.VariantContainer(v)), dynmap.RecordField)
	want := []struct {
		name string
		id   hir.FieldID
	}{
		{"a", hir.FieldID{Parent: v, Local: 0}},
		{"b", hir.FieldID{Parent: v, Local: 1}},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %v", entries)
	}
	for i, w := range want {
		if entries[i].ID != w.id || entries[i].Ptr != ws.First(lib, syntax.RecordField, w.name).Value.Ptr() {
			t.Errorf("entry %d = %v, want field %s %v", i, entries[i], w.name, w.id)
		}
	}
}

func TestFieldNumberingSkipsDisabledFields(t *testing.T) {
	ws := testkit.Single(t, `
struct S {
    a: i32,
    #[cfg(never)]
    b: i32,
    c: i32,
}
struct T(u8, #[cfg(never)] u16, u32);
`)
	s := session(ws)

	c := toDef(t, s, semantics.RecordField, ws.First(lib, syntax.RecordField, "c"))
	if c.Local != 1 || c.Parent.Kind != hir.DefStruct {
		t.Fatalf("c = %v", c)
	}
	if _, ok := semantics.ToDef(s, semantics.RecordField, ws.First(lib, syntax.RecordField, "b")); ok {
		t.Fatalf("disabled field has an id")
	}

	last := toDef(t, s, semantics.TupleField, ws.Node(lib, syntax.TupleField, "", 2))
	if last.Local != 1 {
		t.Fatalf("last tuple field local = %d", last.Local)
	}
	if n := len(ws.DB.VariantData(last.Parent).Fields); n != 2 {
		t.Fatalf("T has %d fields", n)
	}
}

func TestEnumVariantFieldsLiveInBody(t *testing.T) {
	ws := testkit.Single(t, "enum E { V { x: i32 }, W(u8) }\n")
	s := session(ws)
	x := ws.First(lib, syntax.RecordField, "x")

	v := toDef(t, s, semantics.EnumVariant, ws.First(lib, syntax.Variant, "V"))
	c := findContainer(t, s, x)
	if c != semantics.BodyContainer(hir.VariantBody(v)) {
		t.Fatalf("container = %s", c)
	}

	field := toDef(t, s, semantics.RecordField, x)
	if want := (hir.FieldID{Parent: hir.EnumVariant(v), Local: 0}); field != want {
		t.Fatalf("x = %v, want %v", field, want)
	}
	if n := len(dynmap.Entries(s.ChildrenOf(c), dynmap.RecordField)); n != 1 {
		t.Fatalf("record fields in V body = %d", n)
	}
}

func TestBlockItemsAndNestedFunctions(t *testing.T) {
	ws := testkit.Single(t, `
fn outer() {
    struct Local;
    fn nested() { let z = 0; }
    mod inside { fn deep() {} }
}
`)
	s := session(ws)
	db := ws.DB

	st := toDef(t, s, semantics.Struct, ws.First(lib, syntax.Struct, "Local"))
	if !db.StructLoc(st).Container.Module.IsBlockRoot() {
		t.Fatalf("Local lives in %v", db.StructLoc(st).Container.Module)
	}

	outer := ws.First(lib, syntax.Fn, "outer")
	body := outer.Value.ChildOfKind(syntax.BlockExpr)
	if !body.IsValid() {
		t.Fatalf("outer has no body")
	}
	block := toDef(t, s, semantics.Block, expand.NewInFile(outer.File, body))
	if db.StructLoc(st).Container.Module != db.BlockDefMap(block).Root() {
		t.Fatalf("Local is not in the body block")
	}

	nested := toDef(t, s, semantics.Function, ws.First(lib, syntax.Fn, "nested"))
	if z := toDef(t, s, semantics.Binding, ws.First(lib, syntax.IdentPat, "z")); z.Owner != hir.FunctionBody(nested) {
		t.Fatalf("z belongs to %v", z.Owner)
	}

	inside, ok := s.ModuleToDef(ws.First(lib, syntax.Module, "inside"))
	if !ok || inside.Block != block {
		t.Fatalf("inside = %v, %v", inside, ok)
	}
	deep := toDef(t, s, semantics.Function, ws.First(lib, syntax.Fn, "deep"))
	if m := db.FunctionLoc(deep).Container.Module; m != inside {
		t.Fatalf("deep lives in %v", m)
	}
}

func TestModuleSource(t *testing.T) {
	f := testkit.New(t)
	f.File(lib, "mod a;\nmod b {}\n")
	a := f.File("/ws/a.rs", "fn in_a() {}\n")
	ws := f.Crate(testkit.CrateSpec{Name: "main", Root: lib}).Build()
	s := session(ws)

	decl := ws.First(lib, syntax.Module, "a")
	m, ok := s.ModuleToDef(decl)
	if !ok {
		t.Fatalf("mod a does not resolve")
	}
	src, ok := s.ModuleSource(m)
	if !ok {
		t.Fatalf("no source for %v", m)
	}
	if src.Declaration != decl {
		t.Fatalf("declaration = %s", src.Declaration.Value)
	}
	if src.Definition.File != expand.FromFile(a) || src.Definition.Value.Kind() != syntax.SourceFile {
		t.Fatalf("definition = %s in %v", src.Definition.Value, src.Definition.File)
	}
	if viaFile, ok := s.SourceFileToDef(a); !ok || viaFile != m {
		t.Fatalf("SourceFileToDef(a.rs) = %v, %v", viaFile, ok)
	}

	inline, ok := s.ModuleToDef(ws.First(lib, syntax.Module, "b"))
	if !ok {
		t.Fatalf("mod b does not resolve")
	}
	if src, _ := s.ModuleSource(inline); src.Declaration != src.Definition {
		t.Fatalf("inline module sides differ")
	}

	root, ok := s.SourceFileToDef(ws.FileID(lib))
	if !ok {
		t.Fatalf("lib.rs has no module")
	}
	if src, _ := s.ModuleSource(root); src.Declaration.Value.IsValid() {
		t.Fatalf("crate root has a declaration")
	}
}

func TestUseTrees(t *testing.T) {
	ws := testkit.Single(t, `
mod inner { pub struct A; pub struct B; }
use inner::{A, B as C};
`)
	s := session(ws)
	file := expand.FromFile(ws.FileID(lib))

	seen := map[uint32]bool{}
	for n := range ws.DB.ParseOrExpand(file).All() {
		if n.Kind() != syntax.UseTree {
			continue
		}
		node := expand.NewInFile(file, n)
		id, ok := s.UseTreeToDef(node)
		if !ok {
			t.Fatalf("use tree %s does not resolve", n)
		}
		if seen[id.Index] {
			t.Fatalf("duplicate use tree index %d", id.Index)
		}
		seen[id.Index] = true

		if src, ok := s.UseTreeSource(id); !ok || src != node {
			t.Fatalf("source of %v = %s, %v", id, src.Value, ok)
		}
	}
	if len(seen) != 3 {
		t.Fatalf("use trees = %d, want 3", len(seen))
	}
}

func TestDefinitionAt(t *testing.T) {
	ws := testkit.Single(t, "fn target() {}\n\nstruct Other;\n")
	s := session(ws)
	file := ws.FileID(lib)

	d, node, ok := s.DefinitionAt(file, 4)
	if !ok || d.Kind != semantics.DefFunction || node.Value.Kind() != syntax.Fn {
		t.Fatalf("DefinitionAt(4) = %s at %s, %v", d, node.Value, ok)
	}

	d, _, ok = s.DefinitionAt(file, 15)
	if !ok || d.Kind != semantics.DefModule {
		t.Fatalf("DefinitionAt(15) = %s, %v", d, ok)
	}
	if want := "module " + d.Module.String(); d.String() != want {
		t.Fatalf("String() = %q, want %q", d.String(), want)
	}
}
