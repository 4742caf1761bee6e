package cpmarc

import (
	"bytes"
	"testing"
)

func TestUncrunchBadMagic(t *testing.T) {
	_, err := Uncrunch([]byte{0x00, 0x00})
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
	cerr, ok := err.(*CrunchError)
	if !ok {
		t.Fatalf("got error type %T, want *CrunchError", err)
	}
	if cerr.Kind() != KindMagicMismatch {
		t.Errorf("got kind %v, want %v", cerr.Kind(), KindMagicMismatch)
	}
}

func TestGetCrunchedFilename(t *testing.T) {
	data := []byte{0x76, 0xFE, 'T', 0x00, 0x01, 0x00, 0x00, 0x00}
	name, err := GetCrunchedFilename(data)
	if err != nil {
		t.Fatalf("GetCrunchedFilename: %v", err)
	}
	if name != "T" {
		t.Errorf("got %q, want %q", name, "T")
	}
}

// TestUncrunchAAA exercises a hand-encoded v1 LZW stream for the string
// "AAA": code 65 ('A' as a literal), then code 257, which in a v1 stream
// (no special code reserved) is the dictionary's first ordinary entry,
// reached through the KwKwK case since it is exactly the code the
// decoder is about to assign itself.
func TestUncrunchAAA(t *testing.T) {
	data := []byte{
		0x76, 0xFE, // magic
		'T', 0x00, // filename "T"
		0x01, 0x00, 0x00, 0x00, // version region: byte 0 < 2 selects v1
		0x20, 0xC0, 0x40, // 9-bit codes 65, 257, zero-padded to 3 bytes
	}
	got, err := Uncrunch(data)
	if err != nil {
		t.Fatalf("Uncrunch: %v", err)
	}
	if want := []byte("AAA"); !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}
