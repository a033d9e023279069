package hir

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"srcdef/internal/expand"
	"srcdef/internal/source"
	"srcdef/internal/syntax"
)

// Item is one item of an item tree: a summary of an item node that is
// enough to build def maps without touching the syntax tree again.
type Item struct {
	Kind  syntax.Kind
	Name  string
	Ptr   syntax.Ptr
	Attrs Attrs

	// Inline is set for modules with a body. Children then holds the
	// module's items; for traits and impls it holds the associated items.
	Inline   bool
	Children []ItemIdx

	UseTrees []UseTree // Use only, flattened in preorder
	MacroArg string    // MacroCall only
}

// UseTree is one entry of a flattened use declaration.
type UseTree struct {
	Ptr    syntax.Ptr
	Path   string // full path including the prefixes of enclosing trees
	Alias  string
	Glob   bool
	Parent int // -1 for the root tree
}

// ItemTree summarises the items of one real or macro file, including the
// items declared directly inside block expressions. Statement macro calls
// count as block items: their expansions are collected by the block def map.
type ItemTree struct {
	File   expand.HirFileID
	Items  []Item
	Top    []ItemIdx
	Blocks map[syntax.Ptr][]ItemIdx
}

func (t *ItemTree) Item(idx ItemIdx) *Item { return &t.Items[idx] }

func lowerItemTree(file expand.HirFileID, tree *syntax.Tree) *ItemTree {
	it := &ItemTree{File: file, Blocks: make(map[syntax.Ptr][]ItemIdx)}
	it.Top = it.lowerItems(tree.Root().Children())
	for n := range tree.All() {
		if n.Kind() != syntax.BlockExpr {
			continue
		}
		if items := it.lowerItems(n.Children()); len(items) > 0 {
			it.Blocks[n.Ptr()] = items
		}
	}
	return it
}

func (t *ItemTree) lowerItems(nodes []syntax.Node) []ItemIdx {
	var out []ItemIdx
	for _, n := range nodes {
		if !n.Kind().IsItem() {
			continue
		}
		out = append(out, t.lowerItem(n))
	}
	return out
}

func (t *ItemTree) lowerItem(n syntax.Node) ItemIdx {
	n32, err := safecast.Conv[uint32](len(t.Items))
	if err != nil {
		panic(fmt.Errorf("item tree overflow: %w", err))
	}
	idx := ItemIdx(n32)
	t.Items = append(t.Items, Item{
		Kind:  n.Kind(),
		Name:  source.NormalizeName(n.Name()),
		Ptr:   n.Ptr(),
		Attrs: lowerAttrs(n),
	})

	var item Item
	switch n.Kind() {
	case syntax.Module:
		if list := n.ChildOfKind(syntax.ItemList); list.IsValid() {
			item.Inline = true
			item.Children = t.lowerItems(list.Children())
		}
	case syntax.Trait, syntax.Impl:
		if list := n.ChildOfKind(syntax.AssocItemList); list.IsValid() {
			item.Children = t.lowerItems(list.Children())
		}
	case syntax.Use:
		if root := n.ChildOfKind(syntax.UseTree); root.IsValid() {
			item.UseTrees = flattenUseTree(nil, root, "", -1)
		}
	case syntax.MacroCall:
		if tt := n.ChildOfKind(syntax.TokenTree); tt.IsValid() {
			item.MacroArg = tt.Value()
		}
	}
	// the slice may have grown while lowering children
	dst := &t.Items[idx]
	dst.Inline = item.Inline
	dst.Children = item.Children
	dst.UseTrees = item.UseTrees
	dst.MacroArg = item.MacroArg
	return idx
}

func flattenUseTree(out []UseTree, n syntax.Node, prefix string, parent int) []UseTree {
	path := joinPath(prefix, n.Name())
	ut := UseTree{Ptr: n.Ptr(), Path: path, Parent: parent}
	switch v := n.Value(); v {
	case "":
	case "*":
		ut.Glob = true
	default:
		ut.Alias = v
	}
	self := len(out)
	out = append(out, ut)
	if list := n.ChildOfKind(syntax.UseTreeList); list.IsValid() {
		for _, c := range list.ChildrenOfKind(syntax.UseTree) {
			out = flattenUseTree(out, c, path, self)
		}
	}
	return out
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "::" + strings.TrimPrefix(name, "::")
	}
}

// UseTreeIndex finds the position of ptr in the flattened trees of a use item.
func (it *Item) UseTreeIndex(ptr syntax.Ptr) (uint32, bool) {
	for i, ut := range it.UseTrees {
		if ut.Ptr == ptr {
			u, err := safecast.Conv[uint32](i)
			return u, err == nil
		}
	}
	return 0, false
}
