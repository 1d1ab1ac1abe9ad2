package codepage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"ascii passthrough", "R|1|^^^tHb^M", []byte("R|1|^^^tHb^M")},
		{"control bytes kept", "\x02A\r", []byte{0x02, 'A', 0x0D}},
		{"latin-1 range", "Müller", []byte{'M', 0xFC, 'l', 'l', 'e', 'r'}},
		{"windows-1252 extras", "µg/dL €", []byte{0xB5, 'g', '/', 'd', 'L', ' ', 0x80}},
		{"unmapped rune", "O₂", []byte{'O', '?'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "Müller €", Decode([]byte{'M', 0xFC, 'l', 'l', 'e', 'r', ' ', 0x80}))
}
