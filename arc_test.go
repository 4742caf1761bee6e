package cpmarc

import (
	"bytes"
	"testing"
)

// buildArcStoredEntry returns one ARC "stored" header (method 2) plus its
// payload, for the fixed 13-byte name field, 4-byte size fields, and
// trailing original-size field present for every method but
// ArcStoredNoExt.
func buildArcStoredEntry(name string, payload []byte) []byte {
	var b []byte
	b = append(b, arcMarker, byte(ArcStored))
	nameField := make([]byte, 13)
	copy(nameField, name)
	b = append(b, nameField...)
	b = append(b, le32bytes(uint32(len(payload)))...) // compressed size
	b = append(b, 0x00, 0x00)                         // date
	b = append(b, 0x00, 0x00)                         // time
	b = append(b, 0x00, 0x00)                         // crc
	b = append(b, le32bytes(uint32(len(payload)))...) // original size
	b = append(b, payload...)
	return b
}

func le32bytes(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func arcEndSentinel() []byte {
	return []byte{arcMarker, byte(ArcEnd)}
}

func TestListARCStoredMember(t *testing.T) {
	data := append(buildArcStoredEntry("A", []byte("HELLO")), arcEndSentinel()...)

	entries, err := ListARC(data)
	if err != nil {
		t.Fatalf("ListARC: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "A" || e.Method != ArcStored || e.CompSize != 5 || e.OrigSize != 5 {
		t.Errorf("got %+v", e)
	}
}

func TestExtractARCMemberStored(t *testing.T) {
	data := append(buildArcStoredEntry("A", []byte("HELLO")), arcEndSentinel()...)
	entries, err := ListARC(data)
	if err != nil {
		t.Fatalf("ListARC: %v", err)
	}
	member, err := ExtractARCMember(data, entries[0])
	if err != nil {
		t.Fatalf("ExtractARCMember: %v", err)
	}
	if !bytes.Equal(member, []byte("HELLO")) {
		t.Errorf("got %q, want %q", member, "HELLO")
	}
}

func TestListARCUnknownMethod(t *testing.T) {
	data := []byte{arcMarker, 0x7F} // not a known ArcMethod value
	_, err := ListARC(data)
	if err == nil {
		t.Fatal("expected an error for unknown method byte")
	}
	aerr, ok := err.(*ARCError)
	if !ok {
		t.Fatalf("got error type %T, want *ARCError", err)
	}
	if aerr.Kind() != KindInvalidArchive {
		t.Errorf("got kind %v, want %v", aerr.Kind(), KindInvalidArchive)
	}
}

func TestListARCMissingMarker(t *testing.T) {
	_, err := ListARC([]byte{0x00, 0x00})
	if err == nil {
		t.Fatal("expected an error for missing 0x1A marker")
	}
	aerr, ok := err.(*ARCError)
	if !ok {
		t.Fatalf("got error type %T, want *ARCError", err)
	}
	if aerr.Kind() != KindMagicMismatch {
		t.Errorf("got kind %v, want %v", aerr.Kind(), KindMagicMismatch)
	}
}

func TestArcMethodString(t *testing.T) {
	if got := ArcSqueezed.String(); got != "squeezed" {
		t.Errorf("got %q, want %q", got, "squeezed")
	}
	if got := ArcCrunched.String(); got != "crunched" {
		t.Errorf("got %q, want %q", got, "crunched")
	}
}
