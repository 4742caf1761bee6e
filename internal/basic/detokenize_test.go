package basic

import "testing"

func TestIsTokenized(t *testing.T) {
	if !IsTokenized([]byte{0xFF, 0x00}) {
		t.Error("expected true for data starting with the magic byte")
	}
	if IsTokenized([]byte("10 PRINT 5")) {
		t.Error("expected false for plain-text listing")
	}
	if IsTokenized(nil) {
		t.Error("expected false for empty input")
	}
}

func TestDetokenizePlainTextPassesThrough(t *testing.T) {
	src := "10 PRINT 5\n"
	if got := Detokenize([]byte(src)); got != src {
		t.Errorf("got %q, want %q", got, src)
	}
}

// TestDetokenizeSingleLine builds one tokenized line, "10 PRINT 5", using
// the PRINT keyword token and a single-byte integer-constant token for 5.
func TestDetokenizeSingleLine(t *testing.T) {
	data := []byte{
		0xFF,       // magic
		0x10, 0x00, // link to next line (nonzero, value itself unused)
		0x0A, 0x00, // line number 10
		0x91, 0x16, // PRINT, literal constant 5 (0x11+5)
		0x00,       // line terminator
		0x00, 0x00, // next link == 0: end of program
	}
	want := "10 PRINT 5\n"
	if got := Detokenize(data); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDetokenizeUnknownTokenIsMarked(t *testing.T) {
	data := []byte{
		0xFF,
		0x10, 0x00,
		0x01, 0x00, // line 1
		0xFE, // not in the keyword table
		0x00,
		0x00, 0x00,
	}
	want := "1 <?254>\n"
	if got := Detokenize(data); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
