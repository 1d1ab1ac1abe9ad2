package astm

import (
	"slices"

	"github.com/arloliu/go-astm/internal/ascii"
	"github.com/arloliu/go-astm/internal/codepage"
)

// entryKind tells which representation an entry of a Message belongs to.
type entryKind uint8

const (
	// lineEntry is a record added with AddLine; it is framed at render time.
	lineEntry entryKind = iota
	// frameEntry is a frame the caller built explicitly.
	frameEntry
)

type entry struct {
	kind  entryKind
	line  []byte
	frame *Frame
}

// Message is an ASTM message: an ordered list of records (lines) and explicitly built
// frames.
//
// How the message is framed is decided when it is rendered, from the EncodeConfig
// passed to Frames, Output or Log:
//
//   - MaxFrameSize > 0: the lines, each terminated by CR, are joined and cut into
//     frames of MaxFrameSize bytes. Explicit frames are not rendered.
//   - otherwise: every entry becomes a frame in the order it was added; a line becomes
//     a final frame holding the line as-is.
//
// Rendering never modifies the message and may be repeated.
// A Message is not safe for concurrent use.
type Message struct {
	entries []entry
}

// NewMessage creates an empty message.
func NewMessage() *Message {
	return &Message{}
}

// AddLine adds a record. The content is not validated.
func (m *Message) AddLine(content string) {
	m.entries = append(m.entries, entry{kind: lineEntry, line: codepage.Encode(content)})
}

// AddIntermediateFrame appends an explicit ETB-terminated frame and returns it, so the
// caller can keep adding content to it.
func (m *Message) AddIntermediateFrame(content string) *Frame {
	return m.addFrame(NewIntermediateFrame(content))
}

// AddFinalFrame appends an explicit ETX-terminated frame and returns it.
func (m *Message) AddFinalFrame(content string) *Frame {
	return m.addFrame(NewFinalFrame(content))
}

func (m *Message) addFrame(f *Frame) *Frame {
	m.entries = append(m.entries, entry{kind: frameEntry, frame: f})
	return f
}

// Len returns the number of lines and explicit frames added so far.
func (m *Message) Len() int {
	return len(m.entries)
}

// Lines returns the records added with AddLine, without terminators.
func (m *Message) Lines() [][]byte {
	lines := make([][]byte, 0, len(m.entries))
	for _, e := range m.entries {
		if e.kind == lineEntry {
			lines = append(lines, slices.Clone(e.line))
		}
	}

	return lines
}

// Reset removes all lines and frames.
func (m *Message) Reset() {
	clear(m.entries)
	m.entries = m.entries[:0]
}

// Frames resolves the message into the frames that Output renders, in order.
//
// Explicit frames are returned as-is (not copied); frames built from lines are new on
// every call.
func (m *Message) Frames(cfg EncodeConfig) []*Frame {
	if cfg.Splitting() {
		return SplitFrames(m.lineBuffer(), cfg.MaxFrameSize)
	}

	frames := make([]*Frame, 0, len(m.entries))
	for _, e := range m.entries {
		switch e.kind {
		case lineEntry:
			frames = append(frames, newFrameBytes(slices.Clone(e.line), true))
		case frameEntry:
			frames = append(frames, e.frame)
		}
	}

	return frames
}

// Output renders the complete transmission:
//
//	EOT ENQ frame(1) frame(2) ... frame(n) EOT
//
// Frames are numbered with FrameNumber, so the numbers run 1..7,0,1,...
func (m *Message) Output(cfg EncodeConfig) []byte {
	frames := m.Frames(cfg)

	size := 3
	for _, f := range frames {
		size += f.Len() + frameOverhead
	}

	buf := make([]byte, 0, size)
	buf = append(buf, EOT, ENQ)
	for i, f := range frames {
		buf = appendFrame(buf, f.content, f.final, FrameNumber(i), cfg)
	}

	return append(buf, EOT)
}

// Log renders Output with control characters shown as hex markers.
func (m *Message) Log(cfg EncodeConfig) string {
	return ascii.Printable(m.Output(cfg))
}

// lineBuffer joins all lines, each followed by CR.
func (m *Message) lineBuffer() []byte {
	size := 0
	for _, e := range m.entries {
		if e.kind == lineEntry {
			size += len(e.line) + 1
		}
	}

	buf := make([]byte, 0, size)
	for _, e := range m.entries {
		if e.kind == lineEntry {
			buf = append(buf, e.line...)
			buf = append(buf, CR)
		}
	}

	return buf
}

// SplitFrames cuts data into frames of maxSize bytes. Every frame but the last one is
// intermediate; the last one is final even when it is exactly maxSize bytes long.
// Empty data yields no frames. A maxSize <= 0 yields a single final frame.
func SplitFrames(data []byte, maxSize int) []*Frame {
	if len(data) == 0 {
		return nil
	}
	if maxSize <= 0 {
		return []*Frame{newFrameBytes(slices.Clone(data), true)}
	}

	frames := make([]*Frame, 0, (len(data)+maxSize-1)/maxSize)
	for offset := 0; offset < len(data); offset += maxSize {
		end := min(offset+maxSize, len(data))
		isLast := end == len(data)

		frames = append(frames, newFrameBytes(slices.Clone(data[offset:end]), isLast))
	}

	return frames
}
