// Package codepage converts Go (UTF-8) text into the single-byte windows-1252 code
// page that laboratory instruments and LIS endpoints expect on the wire.
package codepage

import (
	"golang.org/x/text/encoding/charmap"
)

// replacement stands in for runes the code page cannot represent.
const replacement = '?'

// Encode returns s encoded as windows-1252. Runes without a windows-1252 mapping
// (and invalid UTF-8) are replaced by '?', so the result always has one byte per rune.
func Encode(s string) []byte {
	if isASCII(s) {
		return []byte(s)
	}

	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = replacement
		}
		out = append(out, b)
	}

	return out
}

// Decode converts windows-1252 bytes back into UTF-8 text.
func Decode(b []byte) string {
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}

	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
