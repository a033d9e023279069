package syntax

import "fmt"

// Ptr locates a node without holding the tree: its kind plus its preorder
// index. Trees of the same shape agree on every Ptr, so a Ptr taken from one
// parse resolves against a re-parse of unchanged text.
type Ptr struct {
	Kind  Kind
	Index NodeID
}

func (p Ptr) IsValid() bool { return p.Kind != KindInvalid && p.Index.IsValid() }

// ToNode resolves p against t. It fails when the index is out of range or
// the node there has a different kind.
func (p Ptr) ToNode(t *Tree) (Node, bool) {
	n := t.Node(p.Index)
	if !n.IsValid() || n.Kind() != p.Kind {
		return Node{}, false
	}
	return n, true
}

// Less orders pointers by position, which is declaration order.
func (p Ptr) Less(other Ptr) bool {
	if p.Index != other.Index {
		return p.Index < other.Index
	}
	return p.Kind < other.Kind
}

func (p Ptr) String() string {
	return fmt.Sprintf("%s#%d", p.Kind, p.Index)
}
