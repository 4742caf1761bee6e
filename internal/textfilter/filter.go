// Package textfilter implements the two CP/M text-convention
// normalizations the CLI applies to extracted payloads, never to LBR/ARC
// container bytes themselves: stripping a trailing run of Ctrl-Z
// end-of-file markers, and rewriting CR+LF line endings to bare LF.
package textfilter

// StripEOF removes a trailing run of 0x1A (Ctrl-Z) bytes, the CP/M
// convention for padding a file out to the next sector boundary.
func StripEOF(data []byte) []byte {
	end := len(data)
	for end > 0 && data[end-1] == 0x1A {
		end--
	}
	out := make([]byte, end)
	copy(out, data[:end])
	return out
}

// CRLFToLF rewrites every 0x0D 0x0A pair to a single 0x0A, leaving any
// lone 0x0D or 0x0A untouched.
func CRLFToLF(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == 0x0D && i+1 < len(data) && data[i+1] == 0x0A {
			continue
		}
		out = append(out, data[i])
	}
	return out
}
