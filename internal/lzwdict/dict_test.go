package lzwdict

import (
	"bytes"
	"testing"
)

func TestNewSeedsLiterals(t *testing.T) {
	d := New(257)
	out, first, ok := d.Expand(nil, 'A')
	if !ok || first != 'A' || !bytes.Equal(out, []byte{'A'}) {
		t.Fatalf("Expand('A') = %v, %v, %v", out, first, ok)
	}
	if d.NextCode() != 257 {
		t.Errorf("got NextCode()=%d, want 257", d.NextCode())
	}
}

func TestAddAndExpandMultiByteEntry(t *testing.T) {
	d := New(257)
	// "AA": prefix 'A' (65) followed by suffix 'A'.
	if !d.Add(65, 'A') {
		t.Fatal("Add failed")
	}
	if !d.Defined(257) {
		t.Fatal("code 257 should be defined after Add")
	}
	out, first, ok := d.Expand(nil, 257)
	if !ok || first != 'A' || !bytes.Equal(out, []byte("AA")) {
		t.Fatalf("Expand(257) = %v, %v, %v", out, first, ok)
	}
}

func TestDefinedRejectsUnassignedCode(t *testing.T) {
	d := New(257)
	if d.Defined(257) {
		t.Error("code 257 should not be defined before any Add")
	}
	if d.Defined(-1) {
		t.Error("negative code should never be defined")
	}
}

func TestResetRestoresInitialNext(t *testing.T) {
	d := New(258)
	d.Add(65, 'A')
	d.Add(66, 'B')
	if d.NextCode() != 260 {
		t.Fatalf("got NextCode()=%d, want 260", d.NextCode())
	}
	d.Reset()
	if d.NextCode() != 258 {
		t.Errorf("got NextCode()=%d after Reset, want 258", d.NextCode())
	}
	if d.Defined(258) {
		t.Error("code 258 should not be defined immediately after Reset")
	}
}

func TestAddReportsFalseWhenFull(t *testing.T) {
	d := New(MaxCode - 1)
	if !d.Add(65, 'A') {
		t.Fatal("Add should still succeed for the last free slot")
	}
	if d.Add(65, 'B') {
		t.Fatal("Add should report false once the dictionary is full")
	}
}
