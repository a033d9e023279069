package syntax

import (
	"fmt"
	"iter"
)

// NodeID is the preorder index of a node inside its Tree, starting at 1.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// TextRange is a half-open byte range in the tree's text.
type TextRange struct {
	Start uint32
	End   uint32
}

func (r TextRange) Contains(offset uint32) bool {
	return r.Start <= offset && offset < r.End
}

func (r TextRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

type nodeData struct {
	kind     Kind
	rng      TextRange
	parent   NodeID
	children []NodeID
	name     string
	value    string
}

// Tree is an immutable syntax tree. Nodes are stored in preorder so a node's
// id doubles as its structural coordinate.
type Tree struct {
	nodes []nodeData // index 0 reserved
	text  []byte
}

// Root returns the first node, usually a SourceFile.
func (t *Tree) Root() Node {
	if t == nil || len(t.nodes) < 2 {
		return Node{}
	}
	return Node{tree: t, id: 1}
}

// Node returns the handle for id, or an invalid Node when id is out of range.
func (t *Tree) Node(id NodeID) Node {
	if t == nil || !id.IsValid() || int(id) >= len(t.nodes) {
		return Node{}
	}
	return Node{tree: t, id: id}
}

// Len reports the number of nodes.
func (t *Tree) Len() int {
	if t == nil || len(t.nodes) == 0 {
		return 0
	}
	return len(t.nodes) - 1
}

func (t *Tree) Text() []byte {
	if t == nil {
		return nil
	}
	return t.text
}

// All yields every node in preorder.
func (t *Tree) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := 1; i < len(t.nodes); i++ {
			if !yield(Node{tree: t, id: NodeID(i)}) {
				return
			}
		}
	}
}

// CoveringNode returns the deepest node whose range contains offset. An
// offset equal to the end of the root still hits the root.
func (t *Tree) CoveringNode(offset uint32) Node {
	n := t.Root()
	if !n.IsValid() {
		return Node{}
	}
	rng := n.Range()
	if !rng.Contains(offset) && offset != rng.End {
		return Node{}
	}
descend:
	for {
		for _, c := range t.nodes[n.id].children {
			if t.nodes[c].rng.Contains(offset) {
				n = Node{tree: t, id: c}
				continue descend
			}
		}
		return n
	}
}
