package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"srcdef/internal/syntax"
)

var itemTypes = map[string]bool{
	"function_item":            true,
	"struct_item":              true,
	"union_item":               true,
	"enum_item":                true,
	"trait_item":               true,
	"impl_item":                true,
	"const_item":               true,
	"static_item":              true,
	"type_item":                true,
	"mod_item":                 true,
	"macro_definition":         true,
	"use_declaration":          true,
	"extern_crate_declaration": true,
}

func (l *lowerer) block(n *sitter.Node) {
	l.b.OpenRange(syntax.BlockExpr, "", rangeOf(n))
	l.blockBody(n)
	l.b.Close()
}

// blockBody lowers statements; items declared in a block become children of
// the BlockExpr so block scopes can find them.
func (l *lowerer) blockBody(n *sitter.Node) {
	l.list(n, func(c *sitter.Node, attrs []*sitter.Node) {
		if itemTypes[c.Type()] {
			l.item(c, attrs)
			return
		}
		l.stmt(c)
	})
}

func (l *lowerer) stmt(n *sitter.Node) {
	switch n.Type() {
	case "let_declaration":
		l.b.OpenRange(syntax.LetStmt, "", rangeOf(n))
		l.pat(n.ChildByFieldName("pattern"))
		if v := n.ChildByFieldName("value"); v != nil {
			l.expr(v)
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			l.expr(alt)
		}
		l.b.Close()
	case "expression_statement":
		for _, c := range namedChildren(n) {
			l.expr(c)
		}
	default:
		l.expr(n)
	}
}

// expr keeps only nodes that own definitions or scopes and flattens the rest.
func (l *lowerer) expr(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "block":
		l.block(n)
		return
	case "label":
		l.leaf(syntax.Label, l.text(n), n)
		return
	case "break_expression", "continue_expression":
		// the label here is a use, not a definition
		for _, c := range namedChildren(n) {
			if c.Type() != "label" {
				l.expr(c)
			}
		}
		return
	case "macro_invocation":
		l.macroCall(n, nil)
		return
	case "let_condition":
		l.pat(n.ChildByFieldName("pattern"))
		l.expr(n.ChildByFieldName("value"))
		return
	case "for_expression":
		pattern := n.ChildByFieldName("pattern")
		for _, c := range namedChildren(n) {
			if sameNode(c, pattern) {
				l.pat(c)
				continue
			}
			l.expr(c)
		}
		return
	case "match_arm":
		if p := n.ChildByFieldName("pattern"); p != nil {
			for _, c := range namedChildren(p) {
				if sameNode(c, p.ChildByFieldName("condition")) {
					l.expr(c)
					continue
				}
				l.pat(c)
			}
		}
		l.expr(n.ChildByFieldName("value"))
		return
	case "closure_expression":
		if ps := n.ChildByFieldName("parameters"); ps != nil {
			for _, c := range namedChildren(ps) {
				if c.Type() == "parameter" {
					l.pat(c.ChildByFieldName("pattern"))
					continue
				}
				l.pat(c)
			}
		}
		l.expr(n.ChildByFieldName("body"))
		return
	}
	if itemTypes[n.Type()] {
		l.item(n, nil)
		return
	}
	for _, c := range namedChildren(n) {
		l.expr(c)
	}
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// pat lowers a pattern, turning every binding identifier into an IdentPat.
func (l *lowerer) pat(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "shorthand_field_identifier":
		l.leaf(syntax.IdentPat, l.text(n), n)
	case "captured_pattern":
		// x @ pat
		kids := namedChildren(n)
		if len(kids) == 0 {
			return
		}
		l.b.OpenRange(syntax.IdentPat, l.text(kids[0]), rangeOf(n))
		for _, c := range kids[1:] {
			l.pat(c)
		}
		l.b.Close()
	case "tuple_struct_pattern", "struct_pattern":
		typ := n.ChildByFieldName("type")
		for _, c := range namedChildren(n) {
			if sameNode(c, typ) {
				continue
			}
			l.pat(c)
		}
	case "field_pattern":
		if p := n.ChildByFieldName("pattern"); p != nil {
			l.pat(p)
			return
		}
		if name := n.ChildByFieldName("name"); name != nil && name.Type() == "shorthand_field_identifier" {
			l.leaf(syntax.IdentPat, l.text(name), n)
		}
	case "scoped_identifier", "scoped_type_identifier", "generic_type", "type_identifier",
		"field_identifier", "integer_literal", "string_literal", "char_literal", "boolean_literal",
		"range_pattern", "negative_literal":
		// paths and literals never bind
	default:
		for _, c := range namedChildren(n) {
			l.pat(c)
		}
	}
}
