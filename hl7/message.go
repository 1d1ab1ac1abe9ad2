// Package hl7 builds HL7 v2 messages framed with the MLLP envelope:
//
//	VT segment CR segment CR ... FS CR
//
// Segments are opaque text; no field or component addressing is done.
package hl7

import (
	"slices"

	"github.com/arloliu/go-astm/internal/ascii"
	"github.com/arloliu/go-astm/internal/codepage"
)

// MLLP block characters.
const (
	StartBlock       = ascii.VT
	EndBlock         = ascii.FS
	SegmentSeparator = ascii.CR
)

// Message is an ordered list of HL7 segments.
type Message struct {
	segments []string
}

// NewMessage creates an empty message.
func NewMessage() *Message {
	return &Message{}
}

// AddLine appends a segment, including all of its field and component separators, e.g.
//
//	msg.AddLine("MSH|^~\\&|Hospital|H|HL7|HL7|20240102030405||ADT^A01|35745881|P|2.2")
func (m *Message) AddLine(segment string) {
	m.segments = append(m.segments, segment)
}

// Segments returns a copy of the segments in order.
func (m *Message) Segments() []string {
	return slices.Clone(m.segments)
}

// Len returns the number of segments.
func (m *Message) Len() int {
	return len(m.segments)
}

// Render returns the message in its MLLP envelope, encoded as windows-1252.
func (m *Message) Render() []byte {
	size := 3
	for _, s := range m.segments {
		size += len(s) + 1
	}

	buf := make([]byte, 0, size)
	buf = append(buf, StartBlock)
	for _, s := range m.segments {
		buf = append(buf, codepage.Encode(s)...)
		buf = append(buf, SegmentSeparator)
	}

	return append(buf, EndBlock, SegmentSeparator)
}

// Log returns Render with control characters shown as hex markers.
func (m *Message) Log() string {
	return ascii.Printable(m.Render())
}
