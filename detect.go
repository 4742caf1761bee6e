package cpmarc

import (
	"fmt"
	"strings"
)

// FormatTag identifies which decoder a byte stream should be routed to.
type FormatTag int

const (
	FormatUnknown FormatTag = iota
	FormatSqueeze
	FormatCrunch
	FormatCrLZH
	FormatLBR
	FormatARC
)

func (f FormatTag) String() string {
	switch f {
	case FormatSqueeze:
		return "squeeze"
	case FormatCrunch:
		return "crunch"
	case FormatCrLZH:
		return "crlzh"
	case FormatLBR:
		return "lbr"
	case FormatARC:
		return "arc"
	default:
		return "unknown"
	}
}

// Detect identifies the format of data from its leading bytes, falling
// back to ext (a filename extension, with or without the leading dot) when
// the bytes alone are ambiguous, per §4.7's dispatch order: compressor
// magic, then ARC marker+method, then extension middle-character, then
// extension suffix.
func Detect(data []byte, ext string) FormatTag {
	if len(data) >= 2 {
		switch [2]byte{data[0], data[1]} {
		case squeezeMagic:
			return FormatSqueeze
		case crunchMagic:
			return FormatCrunch
		case crlzhMagic:
			return FormatCrLZH
		}
	}
	if len(data) >= 2 && data[0] == arcMarker && ArcMethod(data[1]).known() {
		return FormatARC
	}
	if len(data) >= 2 && data[0] == arcMarker && data[1] == byte(ArcEnd) {
		return FormatARC
	}

	ext = strings.TrimPrefix(strings.ToUpper(ext), ".")
	if len(ext) == 3 {
		switch ext[1] {
		case 'Q':
			return FormatSqueeze
		case 'Z':
			return FormatCrunch
		case 'Y':
			return FormatCrLZH
		}
	}
	switch ext {
	case "LBR", "LQR", "LZR":
		return FormatLBR
	case "ARC", "ARK":
		return FormatARC
	}
	return FormatUnknown
}

// GetOriginalFilename returns the filename embedded in a compressed
// stream's header, for the three single-file stream formats. LBR and ARC
// carry a directory of names instead of a single embedded name and are not
// handled here.
func GetOriginalFilename(data []byte, format FormatTag) (string, error) {
	switch format {
	case FormatSqueeze:
		return GetSqueezedFilename(data)
	case FormatCrunch:
		return GetCrunchedFilename(data)
	case FormatCrLZH:
		return GetCrLZHFilename(data)
	default:
		return "", fmt.Errorf("%s: no single embedded filename", format)
	}
}
