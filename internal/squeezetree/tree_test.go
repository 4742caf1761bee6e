package squeezetree

import (
	"github.com/cosnicolaou/cpmarc/internal/bitio"
	"testing"
)

func TestDecodeSingleNodeTree(t *testing.T) {
	// node0: left='A' (65), right=EOF (256)
	tr := New([][2]int16{{-66, -257}})
	br := bitio.New([]byte{0x00}, 0) // bit 0 -> left -> 'A'
	sym, err := tr.Decode(br)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sym != 'A' {
		t.Errorf("got %d, want %d", sym, 'A')
	}

	br2 := bitio.New([]byte{0x80}, 0) // bit 1 -> right -> EOF
	sym2, err := tr.Decode(br2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sym2 != EOF {
		t.Errorf("got %d, want %d", sym2, EOF)
	}
}

func TestDecodeMultiLevelTree(t *testing.T) {
	// node0: left=leaf('A'), right=node1
	// node1: left=leaf('B'), right=leaf(EOF)
	tr := New([][2]int16{
		{-66, 1},
		{-67, -257},
	})
	// bits 1,0 -> node0.right=node1, node1.left='B'
	br := bitio.New([]byte{0b10000000}, 0)
	sym, err := tr.Decode(br)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sym != 'B' {
		t.Errorf("got %d, want %d", sym, 'B')
	}
}

func TestDecodeBadIndex(t *testing.T) {
	tr := New([][2]int16{{5, -1}}) // left points out of range
	br := bitio.New([]byte{0x00}, 0)
	_, err := tr.Decode(br)
	if err != ErrBadIndex {
		t.Errorf("got %v, want ErrBadIndex", err)
	}
}
