package syntax

import (
	"fmt"

	"fortio.org/safecast"
)

// Builder assembles a Tree in preorder. Parsers pass real ranges through
// OpenRange; hand-built trees use Open and get synthetic, properly nested
// ranges.
type Builder struct {
	nodes  []nodeData
	stack  []NodeID
	synth  []bool
	cursor uint32
}

func NewBuilder() *Builder {
	return &Builder{nodes: make([]nodeData, 1, 64)}
}

func (b *Builder) alloc(kind Kind, name string, rng TextRange) NodeID {
	n, err := safecast.Conv[uint32](len(b.nodes))
	if err != nil {
		panic(fmt.Errorf("syntax node overflow: %w", err))
	}
	id := NodeID(n)
	var parent NodeID
	if len(b.stack) > 0 {
		parent = b.stack[len(b.stack)-1]
		b.nodes[parent].children = append(b.nodes[parent].children, id)
	}
	b.nodes = append(b.nodes, nodeData{kind: kind, rng: rng, parent: parent, name: name})
	return id
}

// Open starts a node with a synthetic range.
func (b *Builder) Open(kind Kind, name string) NodeID {
	id := b.alloc(kind, name, TextRange{Start: b.cursor})
	b.cursor++
	b.stack = append(b.stack, id)
	b.synth = append(b.synth, true)
	return id
}

// OpenRange starts a node covering rng.
func (b *Builder) OpenRange(kind Kind, name string, rng TextRange) NodeID {
	id := b.alloc(kind, name, rng)
	b.stack = append(b.stack, id)
	b.synth = append(b.synth, false)
	return id
}

// SetValue sets the auxiliary text of the innermost open node.
func (b *Builder) SetValue(v string) {
	if len(b.stack) == 0 {
		panic("syntax: SetValue without an open node")
	}
	b.nodes[b.stack[len(b.stack)-1]].value = v
}

// SetName overrides the name of the innermost open node.
func (b *Builder) SetName(name string) {
	if len(b.stack) == 0 {
		panic("syntax: SetName without an open node")
	}
	b.nodes[b.stack[len(b.stack)-1]].name = name
}

func (b *Builder) Close() {
	top := len(b.stack) - 1
	if top < 0 {
		panic("syntax: Close without Open")
	}
	id := b.stack[top]
	if b.synth[top] {
		b.nodes[id].rng.End = b.cursor
		b.cursor++
	}
	b.stack = b.stack[:top]
	b.synth = b.synth[:top]
}

// Leaf adds a childless node with a synthetic range.
func (b *Builder) Leaf(kind Kind, name string) NodeID {
	id := b.Open(kind, name)
	b.Close()
	return id
}

// Node opens a node, runs body to add its children, and closes it.
func (b *Builder) Node(kind Kind, name string, body func()) NodeID {
	id := b.Open(kind, name)
	if body != nil {
		body()
	}
	b.Close()
	return id
}

// Finish returns the tree. All nodes must be closed.
func (b *Builder) Finish(text []byte) *Tree {
	if len(b.stack) != 0 {
		panic(fmt.Sprintf("syntax: %d unclosed nodes", len(b.stack)))
	}
	t := &Tree{nodes: b.nodes, text: text}
	b.nodes = nil
	return t
}
