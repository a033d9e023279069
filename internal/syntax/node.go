package syntax

import (
	"fmt"
	"iter"
)

// Node is a cheap handle to one node of a Tree. The zero Node is invalid.
// Two handles are equal iff they point at the same node of the same tree.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) IsValid() bool { return n.tree != nil && n.id.IsValid() }

func (n Node) Tree() *Tree { return n.tree }

func (n Node) ID() NodeID { return n.id }

func (n Node) data() *nodeData { return &n.tree.nodes[n.id] }

func (n Node) Kind() Kind {
	if !n.IsValid() {
		return KindInvalid
	}
	return n.data().kind
}

func (n Node) Range() TextRange {
	if !n.IsValid() {
		return TextRange{}
	}
	return n.data().rng
}

// Name is the declared name for named nodes, the path for attributes,
// macro calls and use trees.
func (n Node) Name() string {
	if !n.IsValid() {
		return ""
	}
	return n.data().name
}

// Value carries auxiliary text: attribute arguments, token tree contents,
// use-tree aliases.
func (n Node) Value() string {
	if !n.IsValid() {
		return ""
	}
	return n.data().value
}

// Parent returns the syntactic parent, or an invalid Node at the root.
func (n Node) Parent() Node {
	if !n.IsValid() {
		return Node{}
	}
	p := n.data().parent
	if !p.IsValid() {
		return Node{}
	}
	return Node{tree: n.tree, id: p}
}

func (n Node) Children() []Node {
	if !n.IsValid() {
		return nil
	}
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// ChildOfKind returns the first direct child of kind k.
func (n Node) ChildOfKind(k Kind) Node {
	if !n.IsValid() {
		return Node{}
	}
	for _, id := range n.data().children {
		if n.tree.nodes[id].kind == k {
			return Node{tree: n.tree, id: id}
		}
	}
	return Node{}
}

func (n Node) ChildrenOfKind(k Kind) []Node {
	var out []Node
	if !n.IsValid() {
		return out
	}
	for _, id := range n.data().children {
		if n.tree.nodes[id].kind == k {
			out = append(out, Node{tree: n.tree, id: id})
		}
	}
	return out
}

// Ancestors yields the parent chain, nearest first, not including n.
func (n Node) Ancestors() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := n.Parent(); p.IsValid(); p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Descendants yields the subtree below n in preorder, not including n.
func (n Node) Descendants() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		last := n.lastDescendant()
		for id := n.id + 1; id <= last; id++ {
			if !yield(Node{tree: n.tree, id: id}) {
				return
			}
		}
	}
}

// SubtreeEnd returns the id just past n's subtree.
func (n Node) SubtreeEnd() NodeID {
	return n.lastDescendant() + 1
}

func (n Node) lastDescendant() NodeID {
	id := n.id
	for {
		ch := n.tree.nodes[id].children
		if len(ch) == 0 {
			return id
		}
		id = ch[len(ch)-1]
	}
}

// Ptr returns a structural pointer to n.
func (n Node) Ptr() Ptr {
	if !n.IsValid() {
		return Ptr{}
	}
	return Ptr{Kind: n.Kind(), Index: n.id}
}

// Text returns the source text spanned by n, if the tree carries text.
func (n Node) Text() string {
	rng := n.Range()
	text := n.tree.text
	if int(rng.End) > len(text) || rng.Start > rng.End {
		return ""
	}
	return string(text[rng.Start:rng.End])
}

func (n Node) String() string {
	if !n.IsValid() {
		return "<invalid>"
	}
	if name := n.Name(); name != "" {
		return fmt.Sprintf("%s(%s)@%s", n.Kind(), name, n.Range())
	}
	return fmt.Sprintf("%s@%s", n.Kind(), n.Range())
}
