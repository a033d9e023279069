// Package parse turns Rust-like source text into a syntax.Tree using the
// tree-sitter rust grammar. Only the shapes the resolver cares about are
// kept: items, fields, variants, generic parameters, parameters, patterns,
// labels, blocks, attributes and macro calls. Everything else is flattened
// away, so ranges of kept nodes still nest.
package parse

import (
	"context"
	"fmt"
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"srcdef/internal/syntax"
)

// Parser is safe for concurrent use; every call gets its own tree-sitter parser.
type Parser struct {
	lang *sitter.Language
}

func New() *Parser {
	return &Parser{lang: rust.GetLanguage()}
}

// ParseCtx parses text. Syntax errors are recovered by tree-sitter and do not
// fail the parse; only cancellation does.
func (p *Parser) ParseCtx(ctx context.Context, text []byte) (*syntax.Tree, error) {
	sp := sitter.NewParser()
	defer sp.Close()
	sp.SetLanguage(p.lang)

	cst, err := sp.ParseCtx(ctx, nil, text)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter: %w", err)
	}
	defer cst.Close()

	l := &lowerer{b: syntax.NewBuilder(), src: text}
	root := cst.RootNode()
	l.b.OpenRange(syntax.SourceFile, "", syntax.TextRange{End: textLen(text)})
	l.items(root)
	l.b.Close()
	return l.b.Finish(text), nil
}

// Parse is ParseCtx without cancellation. A failed parse yields an empty file.
func (p *Parser) Parse(text []byte) *syntax.Tree {
	tree, err := p.ParseCtx(context.Background(), text)
	if err != nil {
		b := syntax.NewBuilder()
		b.OpenRange(syntax.SourceFile, "", syntax.TextRange{End: textLen(text)})
		b.Close()
		return b.Finish(text)
	}
	return tree
}

func textLen(text []byte) uint32 {
	n, err := safecast.Conv[uint32](len(text))
	if err != nil {
		panic(fmt.Errorf("source too large: %w", err))
	}
	return n
}

type lowerer struct {
	b   *syntax.Builder
	src []byte
}

func rangeOf(n *sitter.Node) syntax.TextRange {
	return syntax.TextRange{Start: n.StartByte(), End: n.EndByte()}
}

func (l *lowerer) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(l.src)
}

func (l *lowerer) field(n *sitter.Node, name string) string {
	return l.text(n.ChildByFieldName(name))
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// open starts a node whose range is widened to cover the leading attributes.
func (l *lowerer) open(kind syntax.Kind, name string, n *sitter.Node, attrs []*sitter.Node) {
	rng := rangeOf(n)
	if len(attrs) > 0 {
		rng.Start = attrs[0].StartByte()
	}
	l.b.OpenRange(kind, name, rng)
	for _, a := range attrs {
		l.attr(a)
	}
}

// list walks a sequence where attributes are siblings of what they annotate.
func (l *lowerer) list(n *sitter.Node, elem func(c *sitter.Node, attrs []*sitter.Node)) {
	var pending []*sitter.Node
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "attribute_item":
			pending = append(pending, c)
			continue
		case "inner_attribute_item", "line_comment", "block_comment":
			continue
		}
		elem(c, pending)
		pending = nil
	}
}

func (l *lowerer) items(n *sitter.Node) {
	l.list(n, l.item)
}

func (l *lowerer) attr(n *sitter.Node) {
	var a *sitter.Node
	for _, c := range namedChildren(n) {
		if c.Type() == "attribute" {
			a = c
		}
	}
	if a == nil {
		return
	}
	var path string
	var value string
	for _, c := range namedChildren(a) {
		switch c.Type() {
		case "identifier", "scoped_identifier", "crate", "self", "super":
			if path == "" {
				path = l.text(c)
			}
		}
	}
	if args := a.ChildByFieldName("arguments"); args != nil {
		value = stripDelims(l.text(args))
	} else if v := a.ChildByFieldName("value"); v != nil {
		value = l.text(v)
	}
	l.b.OpenRange(syntax.Attr, path, rangeOf(n))
	l.b.SetValue(value)
	l.b.Close()
}

func stripDelims(s string) string {
	if len(s) >= 2 {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func (l *lowerer) item(n *sitter.Node, attrs []*sitter.Node) {
	switch n.Type() {
	case "function_item", "function_signature_item":
		l.open(syntax.Fn, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.params(n.ChildByFieldName("parameters"))
		if body := n.ChildByFieldName("body"); body != nil {
			l.block(body)
		}
		l.b.Close()
	case "struct_item":
		l.open(syntax.Struct, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.fields(n.ChildByFieldName("body"))
		l.b.Close()
	case "union_item":
		l.open(syntax.Union, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.fields(n.ChildByFieldName("body"))
		l.b.Close()
	case "enum_item":
		l.open(syntax.Enum, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		if body := n.ChildByFieldName("body"); body != nil {
			l.b.OpenRange(syntax.VariantList, "", rangeOf(body))
			l.list(body, l.variant)
			l.b.Close()
		}
		l.b.Close()
	case "trait_item":
		l.open(syntax.Trait, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.assocItems(n.ChildByFieldName("body"))
		l.b.Close()
	case "impl_item":
		l.open(syntax.Impl, "", n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.assocItems(n.ChildByFieldName("body"))
		l.b.Close()
	case "const_item":
		l.valueItem(syntax.Const, n, attrs)
	case "static_item":
		l.valueItem(syntax.Static, n, attrs)
	case "type_item", "associated_type":
		l.open(syntax.TypeAlias, l.field(n, "name"), n, attrs)
		l.generics(n.ChildByFieldName("type_parameters"))
		l.b.Close()
	case "mod_item":
		l.open(syntax.Module, l.field(n, "name"), n, attrs)
		if body := n.ChildByFieldName("body"); body != nil {
			l.b.OpenRange(syntax.ItemList, "", rangeOf(body))
			l.items(body)
			l.b.Close()
		}
		l.b.Close()
	case "macro_definition":
		l.macroRules(n, attrs)
	case "macro_invocation":
		l.macroCall(n, attrs)
	case "use_declaration":
		l.open(syntax.Use, "", n, attrs)
		if arg := n.ChildByFieldName("argument"); arg != nil {
			l.useTree(arg)
		}
		l.b.Close()
	case "extern_crate_declaration":
		l.open(syntax.ExternCrate, l.field(n, "name"), n, attrs)
		l.b.Close()
	case "ERROR", "declaration_list":
		l.items(n)
	case "expression_statement", "let_declaration":
		// statements at the top of a macro expansion
		l.stmt(n)
	}
}

func (l *lowerer) valueItem(kind syntax.Kind, n *sitter.Node, attrs []*sitter.Node) {
	l.open(kind, l.field(n, "name"), n, attrs)
	if v := n.ChildByFieldName("value"); v != nil {
		l.b.OpenRange(syntax.Expr, "", rangeOf(v))
		l.expr(v)
		l.b.Close()
	}
	l.b.Close()
}

func (l *lowerer) assocItems(body *sitter.Node) {
	if body == nil {
		return
	}
	l.b.OpenRange(syntax.AssocItemList, "", rangeOf(body))
	l.items(body)
	l.b.Close()
}

func (l *lowerer) macroRules(n *sitter.Node, attrs []*sitter.Node) {
	l.open(syntax.MacroRules, l.field(n, "name"), n, attrs)
	var first, last *sitter.Node
	for _, c := range namedChildren(n) {
		if c.Type() == "macro_rule" {
			if first == nil {
				first = c
			}
			last = c
		}
	}
	if first != nil {
		rng := syntax.TextRange{Start: first.StartByte(), End: last.EndByte()}
		l.b.OpenRange(syntax.TokenTree, "", rng)
		l.b.SetValue(string(l.src[rng.Start:rng.End]))
		l.b.Close()
	}
	l.b.Close()
}

func (l *lowerer) macroCall(n *sitter.Node, attrs []*sitter.Node) {
	name := strings.TrimSuffix(l.field(n, "macro"), "!")
	l.open(syntax.MacroCall, name, n, attrs)
	for _, c := range namedChildren(n) {
		if c.Type() == "token_tree" {
			l.b.OpenRange(syntax.TokenTree, "", rangeOf(c))
			l.b.SetValue(stripDelims(l.text(c)))
			l.b.Close()
			break
		}
	}
	l.b.Close()
}

func (l *lowerer) useTree(n *sitter.Node) {
	switch n.Type() {
	case "use_as_clause":
		l.b.OpenRange(syntax.UseTree, l.field(n, "path"), rangeOf(n))
		l.b.SetValue(l.field(n, "alias"))
		l.b.Close()
	case "use_wildcard":
		path := strings.TrimSuffix(strings.TrimSuffix(l.text(n), "*"), "::")
		l.b.OpenRange(syntax.UseTree, path, rangeOf(n))
		l.b.SetValue("*")
		l.b.Close()
	case "scoped_use_list":
		l.b.OpenRange(syntax.UseTree, l.field(n, "path"), rangeOf(n))
		if list := n.ChildByFieldName("list"); list != nil {
			l.useList(list)
		}
		l.b.Close()
	case "use_list":
		l.b.OpenRange(syntax.UseTree, "", rangeOf(n))
		l.useList(n)
		l.b.Close()
	default:
		l.b.OpenRange(syntax.UseTree, l.text(n), rangeOf(n))
		l.b.Close()
	}
}

func (l *lowerer) useList(n *sitter.Node) {
	l.b.OpenRange(syntax.UseTreeList, "", rangeOf(n))
	for _, c := range namedChildren(n) {
		l.useTree(c)
	}
	l.b.Close()
}

func (l *lowerer) fields(body *sitter.Node) {
	if body == nil {
		return
	}
	switch body.Type() {
	case "field_declaration_list":
		l.b.OpenRange(syntax.RecordFieldList, "", rangeOf(body))
		l.list(body, func(c *sitter.Node, attrs []*sitter.Node) {
			if c.Type() != "field_declaration" {
				return
			}
			l.open(syntax.RecordField, l.field(c, "name"), c, attrs)
			l.b.Close()
		})
		l.b.Close()
	case "ordered_field_declaration_list":
		l.b.OpenRange(syntax.TupleFieldList, "", rangeOf(body))
		l.list(body, func(c *sitter.Node, attrs []*sitter.Node) {
			if c.Type() == "visibility_modifier" {
				return
			}
			l.open(syntax.TupleField, "", c, attrs)
			l.b.Close()
		})
		l.b.Close()
	}
}

func (l *lowerer) variant(n *sitter.Node, attrs []*sitter.Node) {
	if n.Type() != "enum_variant" {
		return
	}
	l.open(syntax.Variant, l.field(n, "name"), n, attrs)
	l.fields(n.ChildByFieldName("body"))
	if v := n.ChildByFieldName("value"); v != nil {
		l.b.OpenRange(syntax.Expr, "", rangeOf(v))
		l.expr(v)
		l.b.Close()
	}
	l.b.Close()
}

func (l *lowerer) generics(n *sitter.Node) {
	if n == nil {
		return
	}
	l.b.OpenRange(syntax.GenericParamList, "", rangeOf(n))
	l.list(n, func(c *sitter.Node, attrs []*sitter.Node) {
		kind, name := l.genericParam(c)
		if kind == syntax.KindInvalid {
			return
		}
		l.open(kind, name, c, attrs)
		l.b.Close()
	})
	l.b.Close()
}

func (l *lowerer) genericParam(c *sitter.Node) (syntax.Kind, string) {
	switch c.Type() {
	case "lifetime":
		return syntax.LifetimeParam, l.text(c)
	case "lifetime_parameter":
		return syntax.LifetimeParam, l.field(c, "name")
	case "type_identifier":
		return syntax.TypeParam, l.text(c)
	case "constrained_type_parameter":
		left := c.ChildByFieldName("left")
		if left != nil && left.Type() == "lifetime" {
			return syntax.LifetimeParam, l.text(left)
		}
		return syntax.TypeParam, l.text(left)
	case "optional_type_parameter", "type_parameter":
		return syntax.TypeParam, l.field(c, "name")
	case "const_parameter":
		return syntax.ConstParam, l.field(c, "name")
	}
	return syntax.KindInvalid, ""
}

func (l *lowerer) leaf(kind syntax.Kind, name string, n *sitter.Node) {
	l.b.OpenRange(kind, name, rangeOf(n))
	l.b.Close()
}

func (l *lowerer) params(n *sitter.Node) {
	if n == nil {
		return
	}
	l.b.OpenRange(syntax.ParamList, "", rangeOf(n))
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "self_parameter":
			l.leaf(syntax.SelfParam, "self", c)
		case "parameter":
			l.b.OpenRange(syntax.Param, "", rangeOf(c))
			l.pat(c.ChildByFieldName("pattern"))
			l.b.Close()
		}
	}
	l.b.Close()
}
