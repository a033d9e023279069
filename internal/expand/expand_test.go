package expand

import (
	"errors"
	"testing"

	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

func TestHirFileIDRoundTrip(t *testing.T) {
	file := FromFile(source.FileID(7))
	if file.IsMacro() {
		t.Fatalf("real file reported as macro file")
	}
	if id, ok := file.FileID(); !ok || id != source.FileID(7) {
		t.Fatalf("FileID() = %v, %v", id, ok)
	}
	if _, ok := file.MacroCall(); ok {
		t.Fatalf("real file has a macro call")
	}

	mac := FromMacro(MacroCallID(3))
	if !mac.IsMacro() {
		t.Fatalf("macro file not reported as macro file")
	}
	if call, ok := mac.MacroCall(); !ok || call != MacroCallID(3) {
		t.Fatalf("MacroCall() = %v, %v", call, ok)
	}
	if got := mac.String(); got != "macro#3" {
		t.Fatalf("String() = %q", got)
	}
	if file == FromMacro(MacroCallID(7)) {
		t.Fatalf("file 7 and macro 7 share an id")
	}
}

func TestFirstRuleBody(t *testing.T) {
	cases := []struct {
		rules string
		want  string
		ok    bool
	}{
		{`() => { fn generated() {} }; ($x:ident) => { struct $x; }`, "fn generated() {}", true},
		{`() => ( mod m { fn f() { {} } } )`, "mod m { fn f() { {} } }", true},
		{`() => `, "", false},
	}
	for _, c := range cases {
		body, ok := FirstRuleBody(c.rules)
		if ok != c.ok || body != c.want {
			t.Errorf("FirstRuleBody(%q) = %q, %v; want %q, %v", c.rules, body, ok, c.want, c.ok)
		}
	}
}

func TestTableExpand(t *testing.T) {
	tab := Table{
		"make_fn": func(string) *syntax.Tree {
			b := syntax.NewBuilder()
			b.Node(syntax.SourceFile, "", func() { b.Leaf(syntax.Fn, "made") })
			return b.Finish(nil)
		},
	}
	tree, err := tab.Expand(Request{Name: "make_fn"})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got := tree.Node(2).Name(); got != "made" {
		t.Fatalf("expanded item = %q", got)
	}

	if _, err := tab.Expand(Request{Name: "missing"}); !errors.Is(err, ErrNoExpansion) {
		t.Fatalf("expected ErrNoExpansion, got %v", err)
	}
}

func TestVerbatimUsesArgumentWithoutDefinition(t *testing.T) {
	var got string
	v := Verbatim{Parse: func(text []byte) *syntax.Tree {
		got = string(text)
		b := syntax.NewBuilder()
		b.Leaf(syntax.SourceFile, "")
		return b.Finish(text)
	}}

	b := syntax.NewBuilder()
	b.Node(syntax.MacroCall, "items", func() {
		b.Node(syntax.TokenTree, "", func() { b.SetValue("fn a() {}") })
	})
	call := b.Finish(nil)

	if _, err := v.Expand(Request{Name: "items", Arg: call.Node(2)}); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != "fn a() {}" {
		t.Fatalf("parsed %q", got)
	}
}

func TestChainFallsThrough(t *testing.T) {
	first := Table{}
	second := Table{
		"m": func(arg string) *syntax.Tree {
			b := syntax.NewBuilder()
			b.Node(syntax.SourceFile, "", func() { b.Leaf(syntax.Struct, arg) })
			return b.Finish(nil)
		},
	}
	tree, err := Chain{first, second}.Expand(Request{Name: "m"})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if k := tree.Node(2).Kind(); k != syntax.Struct {
		t.Fatalf("expanded kind = %s", k)
	}

	if _, err := (Chain{first}).Expand(Request{Name: "m"}); !errors.Is(err, ErrNoExpansion) {
		t.Fatalf("expected ErrNoExpansion, got %v", err)
	}
}
