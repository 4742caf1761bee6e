// Package lzwdict implements Crunch's variable-width LZW dictionary: an
// array-indexed prefix/suffix table in the style of
// compress/lzw and the pdfcpu LZWDecode reader, rather than a pointer-based
// trie, so that expanding a code is a bounded walk over primitive arrays.
package lzwdict

// MaxCode is the number of codes a 12-bit Crunch dictionary can hold
// (codes 0..MaxCode-1).
const MaxCode = 1 << 12

const noPrefix = -1

// Dict is a Crunch LZW dictionary: codes 0..255 are always the single-byte
// literals; codes from the initial next-code upward are assigned as the
// stream is decoded.
type Dict struct {
	prefix [MaxCode]int32
	suffix [MaxCode]byte
	next   int
	initial int
}

// New returns a Dict whose dynamic entries start being assigned at
// initialNext (258 for Crunch v2, 257 for v1).
func New(initialNext int) *Dict {
	d := &Dict{initial: initialNext}
	for i := 0; i < 256; i++ {
		d.prefix[i] = noPrefix
		d.suffix[i] = byte(i)
	}
	d.next = initialNext
	return d
}

// Reset restores the dictionary to its just-constructed state, as happens
// on a Crunch clear code.
func (d *Dict) Reset() {
	d.next = d.initial
}

// NextCode returns the code that will be assigned by the next call to Add.
func (d *Dict) NextCode() int {
	return d.next
}

// Defined reports whether code is a valid, already-assigned dictionary
// entry (either a literal or a previously added string).
func (d *Dict) Defined(code int) bool {
	return code >= 0 && code < d.next
}

// Add assigns a new dictionary entry expanding to the string for prefixCode
// followed by firstByte. It reports false without modifying the dictionary
// if it is already full.
func (d *Dict) Add(prefixCode int32, firstByte byte) bool {
	if d.next >= MaxCode {
		return false
	}
	d.prefix[d.next] = prefixCode
	d.suffix[d.next] = firstByte
	d.next++
	return true
}

// Expand appends the byte string for code to dst and returns the extended
// slice along with the string's first byte. It reports ok=false if code is
// not a defined entry.
func (d *Dict) Expand(dst []byte, code int) (out []byte, first byte, ok bool) {
	if !d.Defined(code) {
		return dst, 0, false
	}
	start := len(dst)
	c := int32(code)
	for c != noPrefix {
		dst = append(dst, d.suffix[c])
		c = d.prefix[c]
	}
	// dst[start:] was appended last-byte-first; reverse it in place.
	seg := dst[start:]
	for i, j := 0, len(seg)-1; i < j; i, j = i+1, j-1 {
		seg[i], seg[j] = seg[j], seg[i]
	}
	return dst, seg[0], true
}
