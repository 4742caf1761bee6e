package cpmarc

import (
	"bytes"
	"encoding/binary"

	"github.com/cosnicolaou/cpmarc/internal/bitio"
	"github.com/cosnicolaou/cpmarc/internal/squeezetree"
)

// squeezeMagic is the two-byte magic stored little-endian (0x76 first,
// 0xFF second) at offset 0 of a Squeeze stream.
var squeezeMagic = [2]byte{0x76, 0xFF}

const squeezeMaxNodes = 257

// dleEscape is the literal byte value that introduces a repeat-run in a
// Squeeze stream's decoded output.
const dleEscape = 0x90

type squeezeHeader struct {
	checksum   uint16
	filename   string
	dataOffset int
	tree       *squeezetree.Tree
}

func parseSqueezeHeader(data []byte) (*squeezeHeader, error) {
	if len(data) < 2 || data[0] != squeezeMagic[0] || data[1] != squeezeMagic[1] {
		return nil, newSqueezeError(KindMagicMismatch, "bad magic")
	}
	if len(data) < 4 {
		return nil, newSqueezeError(KindTruncatedHeader, "missing checksum")
	}
	checksum := binary.LittleEndian.Uint16(data[2:4])

	nameEnd := bytes.IndexByte(data[4:], 0)
	if nameEnd < 0 {
		return nil, newSqueezeError(KindTruncatedHeader, "filename not null-terminated")
	}
	filename := string(data[4 : 4+nameEnd])
	pos := 4 + nameEnd + 1

	if pos+2 > len(data) {
		return nil, newSqueezeError(KindTruncatedHeader, "missing tree node count")
	}
	n := int(binary.LittleEndian.Uint16(data[pos : pos+2]))
	pos += 2
	if n > squeezeMaxNodes {
		return nil, newSqueezeError(KindInvalidTreeOrDictionary, "tree node count out of range")
	}
	if pos+4*n > len(data) {
		return nil, newSqueezeError(KindTruncatedHeader, "truncated tree table")
	}
	pairs := make([][2]int16, n)
	for i := 0; i < n; i++ {
		left := int16(binary.LittleEndian.Uint16(data[pos : pos+2]))
		right := int16(binary.LittleEndian.Uint16(data[pos+2 : pos+4]))
		pairs[i] = [2]int16{left, right}
		pos += 4
	}

	return &squeezeHeader{
		checksum:   checksum,
		filename:   filename,
		dataOffset: pos,
		tree:       squeezetree.New(pairs),
	}, nil
}

// Unsqueeze decompresses a complete Squeeze stream (magic 0x76 0xFF) and
// returns its decoded bytes.
func Unsqueeze(data []byte) ([]byte, error) {
	hdr, err := parseSqueezeHeader(data)
	if err != nil {
		return nil, err
	}

	br := bitio.New(data, hdr.dataOffset)
	out := make([]byte, 0, len(data)*2)

	var lastByte byte
	haveLast := false

	for {
		sym, err := hdr.tree.Decode(br)
		if err != nil {
			return nil, newSqueezeError(KindInvalidTreeOrDictionary, err.Error())
		}
		if sym == squeezetree.EOF {
			break
		}
		b := byte(sym)
		if b != dleEscape {
			out = append(out, b)
			lastByte, haveLast = b, true
			continue
		}

		countSym, err := hdr.tree.Decode(br)
		if err != nil {
			return nil, newSqueezeError(KindInvalidTreeOrDictionary, err.Error())
		}
		if countSym == squeezetree.EOF {
			return nil, newSqueezeError(KindTruncatedStream, "escape count missing before EOF")
		}
		count := byte(countSym)
		switch {
		case count == 0:
			out = append(out, dleEscape)
			lastByte, haveLast = dleEscape, true
		case !haveLast:
			return nil, newSqueezeError(KindInvalidTreeOrDictionary, "repeat escape at stream start with no prior byte")
		default:
			for i := byte(0); i < count-1; i++ {
				out = append(out, lastByte)
			}
		}
	}

	return out, nil
}

// GetSqueezedFilename returns the original filename embedded in a Squeeze
// header, or an error if the header cannot be parsed.
func GetSqueezedFilename(data []byte) (string, error) {
	hdr, err := parseSqueezeHeader(data)
	if err != nil {
		return "", err
	}
	return hdr.filename, nil
}
