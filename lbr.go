package cpmarc

import "strings"

// lbrSectorSize is CP/M's allocation unit, and the unit in which LBR
// directory entries express offsets and lengths.
const lbrSectorSize = 128

// lbrDirEntrySize is the fixed size of one LBR directory record.
const lbrDirEntrySize = 32

const (
	lbrStatusActive  = 0x00
	lbrStatusDeleted = 0xFE
	lbrStatusFree    = 0xFF
)

// LbrEntry describes one active member of an LBR archive.
type LbrEntry struct {
	Name   string
	Offset int // byte offset of the member's data within the archive
	Length int // byte length of the member's data
}

// lbrDirEntry mirrors one 32-byte on-disk LBR directory record.
type lbrDirEntry struct {
	status      byte
	name        [8]byte
	ext         [3]byte
	startSector uint16
	length      uint16 // in sectors
	padCount    byte
}

func parseLbrDirEntry(b []byte) lbrDirEntry {
	var e lbrDirEntry
	e.status = b[0]
	copy(e.name[:], b[1:9])
	copy(e.ext[:], b[9:12])
	e.startSector = uint16(b[12]) | uint16(b[13])<<8
	e.length = uint16(b[14]) | uint16(b[15])<<8
	e.padCount = b[16]
	return e
}

func (e lbrDirEntry) filename() string {
	name := strings.TrimRight(string(e.name[:]), " ")
	ext := strings.TrimRight(string(e.ext[:]), " ")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// ListLBR returns every active member of an LBR archive. The archive's
// directory occupies sector 0; slot 0 of the directory is always the
// sentinel header record regardless of its status byte (§4.5: a status byte
// of 0x00 also marks an ordinary active entry, so slot index, not status,
// disambiguates the sentinel).
func ListLBR(data []byte) ([]LbrEntry, error) {
	if len(data) < lbrDirEntrySize {
		return nil, newLBRError(KindTruncatedHeader, "archive shorter than one directory entry")
	}
	header := parseLbrDirEntry(data[:lbrDirEntrySize])
	dirSectors := int(header.length)
	if dirSectors <= 0 {
		return nil, newLBRError(KindInvalidArchive, "directory sector count must be positive")
	}
	dirBytes := dirSectors * lbrSectorSize
	if dirBytes > len(data) {
		return nil, newLBRError(KindInvalidArchive, "directory extends past end of archive")
	}

	var entries []LbrEntry
	type byteRange struct{ start, end int }
	var ranges []byteRange

	for off := lbrDirEntrySize; off+lbrDirEntrySize <= dirBytes; off += lbrDirEntrySize {
		e := parseLbrDirEntry(data[off : off+lbrDirEntrySize])
		switch e.status {
		case lbrStatusDeleted, lbrStatusFree:
			continue
		case lbrStatusActive:
			name := e.filename()
			if name == "" {
				continue
			}
			start := int(e.startSector) * lbrSectorSize
			length := int(e.length)*lbrSectorSize - int(e.padCount)
			if length < 0 || start+length > len(data) {
				return nil, newLBRError(KindInvalidArchive, "member byte range outside archive bounds")
			}
			for _, r := range ranges {
				if start < r.end && r.start < start+length {
					return nil, newLBRError(KindInvalidArchive, "overlapping member byte ranges")
				}
			}
			ranges = append(ranges, byteRange{start, start + length})
			entries = append(entries, LbrEntry{Name: name, Offset: start, Length: length})
		}
	}
	return entries, nil
}

// ExtractLBRMember returns the raw bytes for a member previously returned
// by ListLBR.
func ExtractLBRMember(data []byte, entry LbrEntry) ([]byte, error) {
	if entry.Offset < 0 || entry.Length < 0 || entry.Offset+entry.Length > len(data) {
		return nil, newLBRError(KindInvalidArchive, "member byte range outside archive bounds")
	}
	out := make([]byte, entry.Length)
	copy(out, data[entry.Offset:entry.Offset+entry.Length])
	return out, nil
}
