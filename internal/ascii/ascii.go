// Package ascii holds the C0 control characters used by the ASTM and HL7 wire
// formats, and the bracketed hex notation used to log them.
package ascii

import (
	"strings"
)

// Control characters.
const (
	SOH byte = 0x01 // start of heading
	STX byte = 0x02 // start of text
	ETX byte = 0x03 // end of text
	EOT byte = 0x04 // end of transmission
	ENQ byte = 0x05 // enquiry
	ACK byte = 0x06 // acknowledge
	LF  byte = 0x0A // line feed
	VT  byte = 0x0B // vertical tab, HL7 MLLP start block
	CR  byte = 0x0D // carriage return
	NAK byte = 0x15 // negative acknowledge
	ETB byte = 0x17 // end of transmission block
	FS  byte = 0x1C // file separator, HL7 MLLP end block
)

// firstPrintable is the lowest byte value written as-is by Printable.
const firstPrintable = 0x20

const hexDigits = "0123456789ABCDEF"

// Printable replaces every byte below 0x20 with '<', its upper-case hex value without
// padding, and '>'. 0x0D becomes "<D>", 0x17 becomes "<17>". All other bytes are copied
// unchanged.
func Printable(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) + len(data)/2)

	for _, b := range data {
		if b >= firstPrintable {
			sb.WriteByte(b)
			continue
		}

		sb.WriteByte('<')
		if b >= 0x10 {
			sb.WriteByte(hexDigits[b>>4])
		}
		sb.WriteByte(hexDigits[b&0x0F])
		sb.WriteByte('>')
	}

	return sb.String()
}

// Unprintable reverses Printable: every marker in the exact form Printable writes
// ("<D>", "<17>") is turned back into its control byte. Anything else, including
// markers for values of 0x20 and above, is copied unchanged.
//
// Content that already contains marker-shaped text is ambiguous and does not
// survive a Printable/Unprintable round trip.
func Unprintable(s string) []byte {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '<' {
			if b, n, ok := parseMarker(s[i:]); ok {
				out = append(out, b)
				i += n - 1

				continue
			}
		}
		out = append(out, s[i])
	}

	return out
}

// parseMarker decodes a canonical marker at the start of s and returns the byte and
// the marker length.
func parseMarker(s string) (byte, int, bool) {
	end := strings.IndexByte(s, '>')
	if end != 2 && end != 3 {
		return 0, 0, false
	}

	digits := s[1:end]
	var v byte
	for i := 0; i < len(digits); i++ {
		d := strings.IndexByte(hexDigits, digits[i])
		if d < 0 {
			return 0, 0, false
		}
		v = v<<4 | byte(d)
	}

	// Only the exact spelling Printable produces counts.
	if v >= firstPrintable || (len(digits) == 2) != (v >= 0x10) {
		return 0, 0, false
	}

	return v, end + 1, true
}
