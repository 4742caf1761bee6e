package cpmarc

import (
	"fmt"

	"github.com/cosnicolaou/cpmarc/internal/adaptivehuffman"
	"github.com/cosnicolaou/cpmarc/internal/bitio"
)

// crlzhMagic is the two-byte magic at offset 0 of a CrLZH stream.
var crlzhMagic = [2]byte{0x76, 0xFD}

const (
	crlzhStopCode    = 256
	crlzhWindowSize  = 256
	crlzhWindowMask  = crlzhWindowSize - 1
	crlzhLookahead   = 60
	crlzhLenCodeBase = 254 // match_len = symbol - crlzhLenCodeBase (257..314 -> 3..60)
	// crlzhMaxOutputFactor bounds total output relative to input length, so
	// that a truncated stream whose zero-padded tail keeps decoding stop-free
	// literals or matches cannot loop forever; see §9 of the runaway-input
	// protection requirement.
	crlzhMaxOutputFactor = 256
)

func parseCrLZHHeader(data []byte) (filename string, dataOffset int, err error) {
	if len(data) < 2 || data[0] != crlzhMagic[0] || data[1] != crlzhMagic[1] {
		return "", 0, newCrLZHError(KindMagicMismatch, "bad magic")
	}

	pos := 2
	nameEnd := pos
	for pos < len(data) && data[pos] != 0 {
		if data[pos]&0x80 != 0 && nameEnd == 2 {
			nameEnd = pos + 1
		}
		pos++
	}
	if pos >= len(data) {
		return "", 0, newCrLZHError(KindTruncatedHeader, "filename not null-terminated")
	}

	var nameBytes []byte
	if nameEnd > 2 {
		nameBytes = append(nameBytes, data[2:nameEnd]...)
	} else {
		nameBytes = append(nameBytes, data[2:pos]...)
	}
	if len(nameBytes) > 0 && nameBytes[len(nameBytes)-1]&0x80 != 0 {
		nameBytes[len(nameBytes)-1] &= 0x7F
	}
	name := trimBracketedAnnotation(string(nameBytes))

	pos++ // skip null terminator

	// The byte immediately following the filename is a version/flags
	// marker: a byte value of at most 0x20 (0x20 being the conventional
	// "no real version" padding seen in real CrLZH v2.0 samples) or
	// outright absence is accepted. Any value above 0x20 is a version this
	// decoder does not know how to interpret, so it is rejected before any
	// bits are spent on payload.
	if pos < len(data) && data[pos] > 0x20 {
		return "", 0, newCrLZHError(KindUnsupportedVersion, fmt.Sprintf("unsupported version byte 0x%02X", data[pos]))
	}

	if pos+4 <= len(data) {
		looksLikePadding := true
		for _, b := range data[pos : pos+4] {
			if b > 0x20 {
				looksLikePadding = false
				break
			}
		}
		if looksLikePadding {
			pos += 4
		}
	}

	return name, pos, nil
}

// trimBracketedAnnotation strips a trailing "[...]" BBS stamp and leading/
// trailing whitespace from a CrLZH header filename.
func trimBracketedAnnotation(name string) string {
	name = trimSpace(name)
	if i := indexByte(name, '['); i >= 0 {
		name = trimSpace(name[:i])
	}
	return name
}

func trimSpace(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Uncrlzh decompresses a complete CrLZH stream (magic 0x76 0xFD) and returns
// its decoded bytes.
func Uncrlzh(data []byte) ([]byte, error) {
	_, dataOffset, err := parseCrLZHHeader(data)
	if err != nil {
		return nil, err
	}

	br := bitio.New(data, dataOffset)
	tree := adaptivehuffman.New()

	var window [crlzhWindowSize]byte
	for i := range window {
		window[i] = ' '
	}
	r := crlzhWindowSize - crlzhLookahead

	maxOut := len(data) * crlzhMaxOutputFactor
	if maxOut < 1<<16 {
		maxOut = 1 << 16
	}

	out := make([]byte, 0, len(data)*4)

	for {
		if len(out) > maxOut {
			return nil, newCrLZHError(KindTruncatedStream, "output exceeded safety bound before stop code")
		}
		if br.Remaining() < 0 {
			return nil, newCrLZHError(KindTruncatedStream, "bit reader exhausted before stop code")
		}

		c := tree.DecodeChar(br)
		tree.Update(c)

		switch {
		case c < 256:
			out = append(out, byte(c))
			window[r] = byte(c)
			r = (r + 1) & crlzhWindowMask
		case c == crlzhStopCode:
			return out, nil
		default:
			matchLen := c - crlzhLenCodeBase
			if matchLen < 3 || matchLen > crlzhLookahead {
				return nil, newCrLZHError(KindInvalidTreeOrDictionary, "match length out of range")
			}
			p := int(br.GetByte())
			i := (r - p - 1) & crlzhWindowMask
			for k := 0; k < matchLen; k++ {
				b := window[i]
				out = append(out, b)
				window[r] = b
				r = (r + 1) & crlzhWindowMask
				i = (i + 1) & crlzhWindowMask
			}
		}
	}
}

// GetCrLZHFilename returns the original filename embedded in a CrLZH
// header, or an error if the header cannot be parsed.
func GetCrLZHFilename(data []byte) (string, error) {
	name, _, err := parseCrLZHHeader(data)
	return name, err
}
