// Package basic detokenizes MBASIC-style tokenized CP/M BASIC programs
// back into their listing text. Tokenized programs are not one of the core
// archive/compression formats; this package exists purely as a payload
// post-processor the CLI can apply to a .BAS member after extraction.
package basic

import (
	"fmt"
	"strconv"
	"strings"
)

// Magic is the byte every tokenized MBASIC program begins with.
const Magic = 0xFF

// keywords maps a single-byte statement/operator token to its listing
// text. Anchored on the handful of token values a CP/M BASIC sample
// exercises (END, FOR, NEXT, PRINT, TO); surrounding entries follow the
// keyword ordering commonly published for MBASIC-80 token tables.
var keywords = map[byte]string{
	0x81: "END", 0x82: "FOR", 0x83: "NEXT", 0x84: "DATA", 0x85: "INPUT",
	0x86: "DIM", 0x87: "READ", 0x88: "LET", 0x89: "GOTO", 0x8A: "RUN",
	0x8B: "IF", 0x8C: "RESTORE", 0x8D: "GOSUB", 0x8E: "RETURN", 0x8F: "REM",
	0x90: "STOP", 0x91: "PRINT", 0x92: "CLEAR", 0x93: "LIST", 0x94: "NEW",
	0x95: "ON", 0x96: "WAIT", 0x97: "DEF", 0x98: "POKE", 0x99: "CONT",
	0x9A: "OUT", 0x9B: "LPRINT", 0x9C: "LLIST", 0x9D: "WIDTH", 0x9E: "ELSE",
	0x9F: "TRON", 0xA0: "TROFF", 0xA1: "SWAP", 0xA2: "ERASE", 0xA3: "EDIT",
	0xA4: "ERROR", 0xA5: "RESUME", 0xA6: "DELETE", 0xA7: "AUTO", 0xA8: "RENUM",
	0xA9: "DEFSTR", 0xAA: "DEFINT", 0xAB: "DEFSNG", 0xAC: "DEFDBL", 0xAD: "LINE",
	0xAE: "WHILE", 0xAF: "WEND", 0xB0: "CALL", 0xB1: "WRITE", 0xB2: "OPTION",
	0xB3: "RANDOMIZE", 0xB4: "OPEN", 0xB5: "CLOSE", 0xB6: "LOAD", 0xB7: "MERGE",
	0xB8: "SAVE", 0xB9: "COLOR", 0xBA: "CLS", 0xBB: "MOTOR", 0xBC: "BSAVE",
	0xBD: "BLOAD", 0xBE: "SOUND", 0xBF: "BEEP", 0xC0: "PSET", 0xC1: "PRESET",
	0xC2: "SCREEN", 0xC3: "KEY", 0xC4: "LOCATE",
	0xCD: "THEN", 0xCE: "TO", 0xCF: "STEP", 0xD0: "USR", 0xD1: "FN",
	0xD2: "SPC(", 0xD3: "NOT", 0xD4: "ERL", 0xD5: "ERR", 0xD6: "STRING$",
	0xD7: "USING", 0xD8: "INSTR", 0xD9: "VARPTR", 0xDA: "CSRLIN",
	0xDB: "POINT", 0xDC: "OFF", 0xDD: "INKEY$",
	0xE1: "AND", 0xE2: "OR", 0xE3: "XOR", 0xE4: "EQV", 0xE5: "IMP",
	0xE6: "MOD",
}

// IsTokenized reports whether data begins with the tokenized-program
// magic byte.
func IsTokenized(data []byte) bool {
	return len(data) > 0 && data[0] == Magic
}

// Detokenize renders a tokenized (or, if untokenized, passed-through)
// BASIC program as listing text, one line per source line.
func Detokenize(data []byte) string {
	return string(DetokenizeBytes(data))
}

// DetokenizeBytes is Detokenize returning the raw output bytes (CP/M BASIC
// listings are not guaranteed valid UTF-8, so callers that need bytes
// rather than a string should use this to avoid a round-trip).
func DetokenizeBytes(data []byte) []byte {
	if !IsTokenized(data) {
		return data
	}

	var out []byte
	pos := 1
	for pos+4 <= len(data) {
		link := int(data[pos]) | int(data[pos+1])<<8
		if link == 0 {
			break
		}
		lineNum := int(data[pos+2]) | int(data[pos+3])<<8
		pos += 4

		start := pos
		for pos < len(data) && data[pos] != 0 {
			pos++
		}
		body := data[start:pos]
		if pos < len(data) {
			pos++ // skip line terminator
		}

		out = append(out, strconv.Itoa(lineNum)...)
		out = append(out, ' ')
		out = append(out, detokenizeLine(body)...)
		out = append(out, '\n')
	}
	return out
}

// detokenizeLine renders one line's token bytes as listing text.
func detokenizeLine(tokens []byte) []byte {
	var b strings.Builder
	inString := false

	lastIsSpace := func() bool {
		s := b.String()
		return s == "" || s[len(s)-1] == ' '
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		if tok == '"' {
			inString = !inString
			b.WriteByte(tok)
			i++
			continue
		}
		isConst := tok == 0x0E || tok == 0x0F || (tok >= 0x11 && tok <= 0x1C)
		if inString || (tok < 0x80 && !isConst) {
			b.WriteByte(tok)
			i++
			continue
		}

		switch {
		case tok >= 0x11 && tok <= 0x1B:
			// Single-byte literal integer constants 0..10.
			fmt.Fprintf(&b, "%d", tok-0x11)
			i++
		case tok == 0x0F && i+1 < len(tokens):
			// One-byte integer constant, values 10..255.
			fmt.Fprintf(&b, "%d", tokens[i+1])
			i += 2
		case tok == 0x1C && i+2 < len(tokens):
			v := int16(uint16(tokens[i+1]) | uint16(tokens[i+2])<<8)
			fmt.Fprintf(&b, "%d", v)
			i += 3
		case tok == 0x0E && i+2 < len(tokens):
			// Unsigned 16-bit line-number pointer (GOTO/GOSUB targets).
			v := int(tokens[i+1]) | int(tokens[i+2])<<8
			fmt.Fprintf(&b, "%d", v)
			i += 3
		default:
			word, ok := keywords[tok]
			if !ok {
				word = fmt.Sprintf("<?%d>", tok)
			}
			if !lastIsSpace() {
				b.WriteByte(' ')
			}
			b.WriteString(word)
			b.WriteByte(' ')
			i++
		}
	}

	return []byte(strings.TrimRight(b.String(), " "))
}
