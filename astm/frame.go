package astm

import (
	"slices"
	"strconv"

	"github.com/arloliu/go-astm/internal/ascii"
	"github.com/arloliu/go-astm/internal/codepage"
)

// ASTM E1381 control characters.
const (
	STX = ascii.STX // start of frame
	ETX = ascii.ETX // end of final frame
	ETB = ascii.ETB // end of intermediate frame
	EOT = ascii.EOT // end of transmission
	ENQ = ascii.ENQ // establishment request
	CR  = ascii.CR
	LF  = ascii.LF
)

// frameOverhead is the number of bytes a frame adds around its content:
// STX, one frame-number digit, ETX/ETB, two checksum digits, CR and LF.
const frameOverhead = 7

// Frame is a single ASTM frame, intermediate or final.
//
// Depending on the receiver a frame holds either a whole record or a size-bounded
// slice of the joined records of a message. Content may be appended until the frame
// is encoded; Encode itself never modifies the frame.
type Frame struct {
	content []byte
	final   bool
}

// NewFrame creates a frame holding content, encoded as windows-1252.
func NewFrame(content string, final bool) *Frame {
	return &Frame{content: codepage.Encode(content), final: final}
}

// NewIntermediateFrame creates a frame terminated by ETB.
func NewIntermediateFrame(content string) *Frame {
	return NewFrame(content, false)
}

// NewFinalFrame creates a frame terminated by ETX.
func NewFinalFrame(content string) *Frame {
	return NewFrame(content, true)
}

// newFrameBytes takes ownership of content.
func newFrameBytes(content []byte, final bool) *Frame {
	return &Frame{content: content, final: final}
}

// Add appends content to the frame.
func (f *Frame) Add(content string) *Frame {
	f.content = append(f.content, codepage.Encode(content)...)
	return f
}

// AddLine appends content followed by the CR record terminator.
func (f *Frame) AddLine(content string) *Frame {
	f.content = append(f.content, codepage.Encode(content)...)
	f.content = append(f.content, CR)

	return f
}

// Content returns a copy of the frame content without any framing.
func (f *Frame) Content() []byte {
	return slices.Clone(f.content)
}

// Len returns the content length in bytes.
func (f *Frame) Len() int {
	return len(f.content)
}

// IsFinal reports whether the frame is terminated by ETX rather than ETB.
func (f *Frame) IsFinal() bool {
	return f.final
}

// Encode renders the frame with frame number seq.
func (f *Frame) Encode(seq int, cfg EncodeConfig) []byte {
	return EncodeFrame(f.content, f.final, seq, cfg)
}

// Log renders the frame like Encode, with control characters shown as hex markers.
func (f *Frame) Log(seq int, cfg EncodeConfig) string {
	return ascii.Printable(f.Encode(seq, cfg))
}

// EncodeFrame renders a single frame:
//
//	STX [seq] content (ETX|ETB) C1 C2 CR LF
//
// seq is written in decimal when cfg.IncludeSequenceNumbers is set; it is not range
// checked. The checksum covers everything from STX (or from the byte after STX when
// cfg.IncludeLeadInChecksum is false) through ETX/ETB.
func EncodeFrame(content []byte, final bool, seq int, cfg EncodeConfig) []byte {
	return appendFrame(make([]byte, 0, len(content)+frameOverhead), content, final, seq, cfg)
}

// LogFrame is EncodeFrame in log form.
func LogFrame(content []byte, final bool, seq int, cfg EncodeConfig) string {
	return ascii.Printable(EncodeFrame(content, final, seq, cfg))
}

// appendFrame appends the encoded frame to dst and returns the extended slice.
func appendFrame(dst, content []byte, final bool, seq int, cfg EncodeConfig) []byte {
	start := len(dst)

	dst = append(dst, STX)
	if cfg.IncludeSequenceNumbers {
		dst = strconv.AppendInt(dst, int64(seq), 10)
	}
	dst = append(dst, content...)
	if final {
		dst = append(dst, ETX)
	} else {
		dst = append(dst, ETB)
	}

	scope := dst[start:]
	if !cfg.IncludeLeadInChecksum {
		scope = scope[1:]
	}
	dst = appendChecksum(dst, Checksum(scope))

	return append(dst, CR, LF)
}
