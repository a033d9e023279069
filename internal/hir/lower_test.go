package hir_test

import (
	"testing"

	"srcdef/internal/expand"
	"srcdef/internal/hir"
	"srcdef/internal/syntax"
	"srcdef/internal/testkit"
)

func firstDecl(t *testing.T, ws *testkit.Workspace, kind hir.DefKind) uint32 {
	t.Helper()
	for _, d := range ws.DB.CrateDefMap(ws.Crates["main"]).Module(hir.RootModule).Scope.Decls {
		if d.Kind == kind {
			return d.ID
		}
	}
	t.Fatalf("no %s in root module", kind)
	return 0
}

func TestVariantDataSkipsDisabledFields(t *testing.T) {
	ws := testkit.Single(t, `
struct S {
    a: i32,
    #[cfg(never)]
    b: i32,
    c: i32,
}
struct T(u8, #[cfg(never)] u16, u32);
`)
	db := ws.DB
	s := hir.StructVariant(hir.StructID(firstDecl(t, ws, hir.DefStruct)))
	data := db.VariantData(s)
	if data.Shape != hir.ShapeRecord {
		t.Fatalf("shape = %v", data.Shape)
	}
	if len(data.Fields) != 2 || data.Fields[0].Name != "a" || data.Fields[1].Name != "c" {
		t.Fatalf("fields = %+v", data.Fields)
	}

	file, ptrs := db.VariantFieldSources(s)
	if len(ptrs) != 2 {
		t.Fatalf("field sources = %v", ptrs)
	}
	if c, ok := ptrs[1].ToNode(db.ParseOrExpand(file)); !ok || c.Name() != "c" {
		t.Fatalf("second field source = %v, %v", c, ok)
	}

	tuple := db.CrateDefMap(ws.Crates["main"]).Module(hir.RootModule).Scope.Decls[1]
	td := db.VariantData(hir.StructVariant(hir.StructID(tuple.ID)))
	if td.Shape != hir.ShapeTuple {
		t.Fatalf("tuple shape = %v", td.Shape)
	}
	if len(td.Fields) != 2 || td.Fields[1].Name != "1" {
		t.Fatalf("tuple fields = %+v", td.Fields)
	}
}

func TestEnumVariants(t *testing.T) {
	ws := testkit.Single(t, `
enum E {
    A,
    #[cfg(never)]
    Gone,
    B { x: i32 },
    C = 3,
}
`)
	db := ws.DB
	e := hir.EnumID(firstDecl(t, ws, hir.DefEnum))
	vs := db.EnumVariants(e)
	if len(vs) != 3 {
		t.Fatalf("variants = %v", vs)
	}
	loc := db.EnumVariantLoc(vs[1])
	if loc.Index != 1 || loc.Parent != e || loc.Ast.Value.Kind != syntax.Variant {
		t.Fatalf("variant loc = %+v", loc)
	}
	if n := len(db.VariantData(hir.EnumVariant(vs[1])).Fields); n != 1 {
		t.Fatalf("B has %d fields", n)
	}
	if &vs[0] != &db.EnumVariants(e)[0] {
		t.Fatalf("enum variants recomputed")
	}
}

func TestGenericParamsOfTrait(t *testing.T) {
	ws := testkit.Single(t, `
trait Tr<'a, T, const N: usize> {}
struct Plain;
`)
	db := ws.DB
	tr := hir.GenericTrait(hir.TraitID(firstDecl(t, ws, hir.DefTrait)))
	gp := db.GenericParams(tr)
	if len(gp.TypeOrConsts) != 3 {
		t.Fatalf("type or const params = %+v", gp.TypeOrConsts)
	}
	if !gp.TypeOrConsts[0].ImplicitSelf || gp.TypeOrConsts[0].Ptr != db.GenericDefSource(tr).Value {
		t.Fatalf("Self param = %+v", gp.TypeOrConsts[0])
	}
	if gp.TypeOrConsts[1].Name != "T" || !gp.TypeOrConsts[2].Const {
		t.Fatalf("params = %+v", gp.TypeOrConsts)
	}
	if len(gp.Lifetimes) != 1 || gp.Lifetimes[0].Name != "'a" {
		t.Fatalf("lifetimes = %+v", gp.Lifetimes)
	}

	plain := db.GenericParams(hir.GenericStruct(hir.StructID(firstDecl(t, ws, hir.DefStruct))))
	if len(plain.TypeOrConsts) != 0 {
		t.Fatalf("Plain has params %+v", plain.TypeOrConsts)
	}
}

func TestGenericParamsSkipDisabledParams(t *testing.T) {
	f := testkit.New(t)
	f.File("/ws/lib.rs", `struct S<#[cfg(feature = "x")] T, #[cfg(not(feature = "x"))] U, V>(V);`)
	ws := f.Crate(testkit.CrateSpec{Name: "main", Root: "/ws/lib.rs", Cfg: []string{`feature="x"`}}).Build()

	gp := ws.DB.GenericParams(hir.GenericStruct(hir.StructID(firstDecl(t, ws, hir.DefStruct))))
	if len(gp.TypeOrConsts) != 2 {
		t.Fatalf("params = %+v", gp.TypeOrConsts)
	}
	if gp.TypeOrConsts[0].Name != "T" || gp.TypeOrConsts[1].Name != "V" {
		t.Fatalf("params = %s, %s", gp.TypeOrConsts[0].Name, gp.TypeOrConsts[1].Name)
	}
}

func TestImplItemsAndBody(t *testing.T) {
	ws := testkit.Single(t, `
struct S;
impl S {
    const K: i32 = 1;
    fn m(&self, x: i32) -> i32 {
        let y = x;
        'outer: loop {
            break 'outer;
        }
        fn inner() {}
        y
    }
}
`)
	db := ws.DB
	scope := db.CrateDefMap(ws.Crates["main"]).Module(hir.RootModule).Scope
	if len(scope.Impls) != 1 {
		t.Fatalf("impls = %v", scope.Impls)
	}
	items := db.ImplItems(scope.Impls[0])
	if len(items.Items) != 2 || items.Items[0].Kind != hir.DefConst || items.Items[1].Kind != hir.DefFunction {
		t.Fatalf("impl items = %+v", items.Items)
	}

	m := hir.FunctionID(items.Items[1].ID)
	if k := db.FunctionLoc(m).Container.Kind; k != hir.InImpl {
		t.Fatalf("m lives in %v", k)
	}

	body, sm := db.BodyWithSourceMap(hir.FunctionBody(m))
	if len(body.Bindings) != 3 || !body.HasSelfParam {
		t.Fatalf("bindings = %+v, self = %v", body.Bindings, body.HasSelfParam)
	}
	if body.Bindings[body.SelfParam].Name != "self" || body.Bindings[1].Name != "x" || body.Bindings[2].Name != "y" {
		t.Fatalf("binding names = %+v", body.Bindings)
	}
	if k := sm.BindingSource(body.SelfParam).Value.Kind; k != syntax.SelfParam {
		t.Fatalf("self source kind = %s", k)
	}
	if len(body.Labels) != 1 || body.Labels[0].Name != "'outer" {
		t.Fatalf("labels = %+v", body.Labels)
	}

	if len(body.Blocks) != 1 {
		t.Fatalf("blocks = %v", body.Blocks)
	}
	block := db.BlockDefMap(body.Blocks[0])
	if !block.Root().IsBlockRoot() {
		t.Fatalf("block def map root %v is not a block root", block.Root())
	}
	decls := block.Module(hir.RootModule).Scope.Decls
	if len(decls) != 1 {
		t.Fatalf("block decls = %v", decls)
	}
	if inner := db.FunctionLoc(hir.FunctionID(decls[0].ID)); inner.Container.Module != block.Root() {
		t.Fatalf("inner lives in %v", inner.Container.Module)
	}
}

func TestStatementMacroItemsGoToBlockScope(t *testing.T) {
	ws := testkit.Single(t, `
macro_rules! make { () => { fn generated() {} } }
fn host() {
    let before = 1;
    make!();
}
`)
	db := ws.DB
	body := db.Body(hir.FunctionBody(hir.FunctionID(firstDecl(t, ws, hir.DefFunction))))
	if len(body.Blocks) != 1 {
		t.Fatalf("block with a statement macro has no def map: %v", body.Blocks)
	}
	if len(body.MacroCalls) != 0 {
		t.Fatalf("statement macro also lowered with the body: %v", body.MacroCalls)
	}
	if len(body.Bindings) != 1 {
		t.Fatalf("bindings = %+v", body.Bindings)
	}

	scope := db.BlockDefMap(body.Blocks[0]).Module(hir.RootModule).Scope
	if len(scope.MacroCalls) != 1 || len(scope.Decls) != 1 {
		t.Fatalf("block scope calls = %v, decls = %v", scope.MacroCalls, scope.Decls)
	}
	call := scope.MacroCalls[0].Call
	fn := db.FunctionLoc(hir.FunctionID(scope.Decls[0].ID))
	if fn.Tree.File != expand.FromMacro(call) {
		t.Fatalf("generated lives in %v, want the expansion of %v", fn.Tree.File, call)
	}
	if name := db.Item(fn).Name; name != "generated" {
		t.Fatalf("block item = %s", name)
	}
	if loc := db.MacroCallLoc(call); !loc.Def.IsValid() {
		t.Fatalf("make! not resolved from the block")
	}
}
