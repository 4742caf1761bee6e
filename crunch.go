package cpmarc

import (
	"bytes"

	"github.com/cosnicolaou/cpmarc/internal/bitio"
	"github.com/cosnicolaou/cpmarc/internal/lzwdict"
)

// crunchMagic is the two-byte magic at offset 0 of a Crunch stream.
var crunchMagic = [2]byte{0x76, 0xFE}

const (
	crunchClearCode   = 256
	crunchSpecialCode = 257 // v2 only
	minCodeWidth      = 9
	maxCodeWidth      = 12
)

type crunchHeader struct {
	filename   string
	v2         bool
	dataOffset int
}

func parseCrunchHeader(data []byte) (*crunchHeader, error) {
	if len(data) < 2 || data[0] != crunchMagic[0] || data[1] != crunchMagic[1] {
		return nil, newCrunchError(KindMagicMismatch, "bad magic")
	}
	nameEnd := bytes.IndexByte(data[2:], 0)
	if nameEnd < 0 {
		return nil, newCrunchError(KindTruncatedHeader, "filename not null-terminated")
	}
	filename := string(data[2 : 2+nameEnd])
	pos := 2 + nameEnd + 1

	if pos+4 > len(data) {
		return nil, newCrunchError(KindTruncatedHeader, "missing version/flags region")
	}
	// The first of the four version/flags bytes distinguishes Crunch v1
	// (no special code, 257 entries at dictionary reset) from v2.x (special
	// code 257 reserved, 258 entries at reset).
	v2 := data[pos] >= 2
	pos += 4

	return &crunchHeader{filename: filename, v2: v2, dataOffset: pos}, nil
}

// initialNextCode returns the first code assignable to a new dictionary
// entry just after a reset.
func initialNextCode(v2 bool) int {
	if v2 {
		return 258
	}
	return 257
}

// Uncrunch decompresses a complete Crunch stream (magic 0x76 0xFE) and
// returns its decoded bytes.
func Uncrunch(data []byte) ([]byte, error) {
	hdr, err := parseCrunchHeader(data)
	if err != nil {
		return nil, err
	}

	br := bitio.New(data, hdr.dataOffset)
	dict := lzwdict.New(initialNextCode(hdr.v2))
	out := make([]byte, 0, len(data)*2)

	width := uint(minCodeWidth)
	havePrefix := false
	var prefix int
	// deferred is set by the special code (v2) and postpones the next
	// width growth by one dictionary slot: while it is set, growth fires
	// when NextCode reaches 2^width+1 rather than 2^width. It is consumed
	// (cleared) when that postponed growth fires.
	deferred := false

	growIfDue := func() {
		threshold := 1 << width
		if deferred {
			threshold++
		}
		if width < maxCodeWidth && dict.NextCode() >= threshold {
			width++
			deferred = false
		}
	}

	for {
		// Fewer real bits left than the current code width means whatever
		// remains is trailing pad within the stream's last byte, not a
		// genuine code: a width-wide read here would silently manufacture
		// zero-padded codes the encoder never wrote.
		if br.Remaining() < int(width) {
			break
		}
		code := int(br.GetBits(width))

		if code == crunchClearCode {
			dict.Reset()
			havePrefix = false
			width = minCodeWidth
			deferred = false
			continue
		}
		// crunchSpecialCode (257) is only reserved in v2 streams. In v1
		// there is no reserved special code at all, so 257 is simply the
		// first ordinary dictionary entry, reachable through the KwKwK
		// case below once the dictionary has grown that far.
		if hdr.v2 && code == crunchSpecialCode {
			deferred = true
			continue
		}

		var (
			entryFirst byte
			ok         bool
		)
		if dict.Defined(code) {
			start := len(out)
			out, entryFirst, ok = dict.Expand(out, code)
			if !ok {
				return nil, newCrunchError(KindInvalidTreeOrDictionary, "code failed to expand")
			}
			_ = start
		} else if havePrefix && code == dict.NextCode() {
			// KwKwK: the code being referenced is the one about to be
			// created from the previous prefix.
			start := len(out)
			out, entryFirst, ok = dict.Expand(out, prefix)
			if !ok {
				return nil, newCrunchError(KindInvalidTreeOrDictionary, "KwKwK prefix undefined")
			}
			out = append(out, entryFirst)
			_ = start
		} else {
			return nil, newCrunchError(KindInvalidTreeOrDictionary, "code out of range for current dictionary")
		}

		if havePrefix {
			if !dict.Add(int32(prefix), entryFirst) {
				return nil, newCrunchError(KindInvalidTreeOrDictionary, "dictionary overflow without clear")
			}
			growIfDue()
		}
		prefix = code
		havePrefix = true
	}

	return out, nil
}

// GetCrunchedFilename returns the original filename embedded in a Crunch
// header, or an error if the header cannot be parsed.
func GetCrunchedFilename(data []byte) (string, error) {
	hdr, err := parseCrunchHeader(data)
	if err != nil {
		return "", err
	}
	return hdr.filename, nil
}
