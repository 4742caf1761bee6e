// Package squeezetree implements Squeeze's static Huffman tree: unlike a
// canonical tree rebuilt from code lengths (as bzip2 does), a Squeeze stream
// carries its tree directly on the wire as an array of (left, right) node
// pairs, so this package only needs a traversal, not a builder.
package squeezetree

import "github.com/cosnicolaou/cpmarc/internal/bitio"

// EOF is the symbol value that terminates a Squeeze literal stream.
const EOF = 256

// node mirrors one (left, right) pair as stored in a Squeeze header. A
// non-negative value is the index of a child node; a negative value v
// encodes a leaf with symbol -(v+1).
type node struct {
	left, right int32
}

// Tree is a deserialized Squeeze Huffman tree, ready for bit-by-bit decode
// starting at the root (node index 0).
type Tree struct {
	nodes []node
}

// ErrBadIndex is the error Decode returns when a node pair references a
// child index outside the tree (or the tree has no nodes).
var ErrBadIndex = &indexError{}

type indexError struct{}

func (*indexError) Error() string { return "node index out of range" }

// New builds a Tree from the raw (left, right) values read off the wire,
// two per node, in the order they appear in the header.
func New(rawPairs [][2]int16) *Tree {
	nodes := make([]node, len(rawPairs))
	for i, p := range rawPairs {
		nodes[i] = node{left: int32(p[0]), right: int32(p[1])}
	}
	return &Tree{nodes: nodes}
}

// Decode walks the tree from the root, consuming one bit per step (0
// selects left, 1 selects right) until a leaf is reached, and returns its
// symbol. It reports an error if a child index leaves the tree's bounds.
func (t *Tree) Decode(br *bitio.Reader) (int, error) {
	if len(t.nodes) == 0 {
		return 0, ErrBadIndex
	}
	idx := int32(0)
	for {
		if idx < 0 || int(idx) >= len(t.nodes) {
			return 0, ErrBadIndex
		}
		n := t.nodes[idx]
		var next int32
		if br.GetBit() == 0 {
			next = n.left
		} else {
			next = n.right
		}
		if next < 0 {
			return int(-(next + 1)), nil
		}
		idx = next
	}
}
