package cpmarc

import "strings"

// arcMarker begins every ARC directory header.
const arcMarker = 0x1A

// ArcMethod identifies how one ARC member's payload is stored.
type ArcMethod byte

const (
	ArcEnd          ArcMethod = 0 // end-of-archive sentinel, not a real member
	ArcStoredNoExt  ArcMethod = 1 // stored, header carries no original-size field
	ArcStored       ArcMethod = 2
	ArcPacked       ArcMethod = 3 // RLE ("packed")
	ArcSqueezed     ArcMethod = 4
	ArcCrunched     ArcMethod = 8
	ArcSquashed     ArcMethod = 9 // LZW ("squashed")
)

func (m ArcMethod) known() bool {
	switch m {
	case ArcStoredNoExt, ArcStored, ArcPacked, ArcSqueezed, ArcCrunched, ArcSquashed:
		return true
	}
	return false
}

func (m ArcMethod) String() string {
	switch m {
	case ArcEnd:
		return "end"
	case ArcStoredNoExt:
		return "stored"
	case ArcStored:
		return "stored"
	case ArcPacked:
		return "packed"
	case ArcSqueezed:
		return "squeezed"
	case ArcCrunched:
		return "crunched"
	case ArcSquashed:
		return "squashed"
	default:
		return "unknown"
	}
}

// ArcEntry describes one member of an ARC archive's header chain.
type ArcEntry struct {
	Method     ArcMethod
	Name       string
	CompSize   int
	Date       uint16
	Time       uint16
	CRC        uint16
	OrigSize   int
	dataOffset int
}

// le16 reads a little-endian uint16 at b[0:2].
func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// le32 reads a little-endian uint32 at b[0:4].
func le32(b []byte) uint32 { return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24 }

// ListARC walks an ARC archive's chained variable-size headers and returns
// every member up to (not including) the end-of-archive sentinel.
func ListARC(data []byte) ([]ArcEntry, error) {
	var entries []ArcEntry
	pos := 0
	for {
		if pos >= len(data) {
			return nil, newARCError(KindTruncatedHeader, "header runs past end of archive")
		}
		if data[pos] != arcMarker {
			return nil, newARCError(KindMagicMismatch, "missing 0x1A header marker")
		}
		if pos+2 > len(data) {
			return nil, newARCError(KindTruncatedHeader, "missing method byte")
		}
		method := ArcMethod(data[pos+1])
		if method == ArcEnd {
			break
		}
		if !method.known() {
			return nil, newARCError(KindInvalidArchive, "unknown ARC method byte")
		}

		fixedLen := 2 + 13 + 4 + 2 + 2 + 2
		if method != ArcStoredNoExt {
			fixedLen += 4
		}
		if pos+fixedLen > len(data) {
			return nil, newARCError(KindTruncatedHeader, "header runs past end of archive")
		}

		name := strings.TrimRight(strings.TrimRight(string(data[pos+2:pos+15]), "\x00"), " ")
		off := pos + 15
		compSize := int(le32(data[off : off+4]))
		off += 4
		date := le16(data[off : off+2])
		off += 2
		timeVal := le16(data[off : off+2])
		off += 2
		crc := le16(data[off : off+2])
		off += 2

		var origSize int
		if method == ArcStoredNoExt {
			origSize = compSize
		} else {
			origSize = int(le32(data[off : off+4]))
			off += 4
		}

		dataOffset := off
		if dataOffset+compSize > len(data) {
			return nil, newARCError(KindInvalidArchive, "member payload runs past end of archive")
		}

		entries = append(entries, ArcEntry{
			Method:     method,
			Name:       name,
			CompSize:   compSize,
			Date:       date,
			Time:       timeVal,
			CRC:        crc,
			OrigSize:   origSize,
			dataOffset: dataOffset,
		})

		pos = dataOffset + compSize
	}
	return entries, nil
}

// ExtractARCMember returns the decompressed bytes for entry, dispatching
// to the decoder appropriate for its method.
func ExtractARCMember(data []byte, entry ArcEntry) ([]byte, error) {
	if entry.dataOffset < 0 || entry.CompSize < 0 || entry.dataOffset+entry.CompSize > len(data) {
		return nil, newARCError(KindInvalidArchive, "member byte range outside archive bounds")
	}
	payload := data[entry.dataOffset : entry.dataOffset+entry.CompSize]

	switch entry.Method {
	case ArcStoredNoExt, ArcStored:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case ArcSqueezed:
		return Unsqueeze(payload)
	case ArcCrunched:
		return Uncrunch(payload)
	case ArcPacked, ArcSquashed:
		return nil, newARCError(KindUnsupportedVersion, "RLE-packed and LZW-squashed ARC members are not supported")
	default:
		return nil, newARCError(KindInvalidArchive, "unknown ARC method")
	}
}
