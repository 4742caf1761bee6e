package textfilter

import (
	"bytes"
	"testing"
)

func TestStripEOF(t *testing.T) {
	cases := []struct {
		in, want []byte
	}{
		{[]byte("hello\x1a\x1a\x1a"), []byte("hello")},
		{[]byte("hello"), []byte("hello")},
		{[]byte("\x1a\x1a\x1a"), []byte{}},
		{[]byte("hel\x1alo"), []byte("hel\x1alo")}, // interior 0x1A is not EOF padding
	}
	for _, tc := range cases {
		if got := StripEOF(tc.in); !bytes.Equal(got, tc.want) {
			t.Errorf("StripEOF(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCRLFToLF(t *testing.T) {
	cases := []struct {
		in, want []byte
	}{
		{[]byte("a\r\nb\r\n"), []byte("a\nb\n")},
		{[]byte("a\nb"), []byte("a\nb")},
		{[]byte("a\rb"), []byte("a\rb")},       // lone CR untouched
		{[]byte("a\r"), []byte("a\r")},         // trailing lone CR untouched
	}
	for _, tc := range cases {
		if got := CRLFToLF(tc.in); !bytes.Equal(got, tc.want) {
			t.Errorf("CRLFToLF(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
