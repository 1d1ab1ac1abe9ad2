// Package astm implements the ASTM E1381 low-level framing used to carry ASTM E1394
// records between clinical instruments and a laboratory information system.
//
// # Wire Layout
//
// A rendered message is a complete transmission:
//
//	EOT ENQ [frame]+ EOT
//
// and every frame is
//
//	STX [FN] <content> (ETX|ETB) <C1 C2> CR LF
//
// where FN is the optional single-digit frame number cycling 1..7,0 and C1 C2 is the
// modulo-256 byte sum rendered as two upper-case hex digits. Intermediate frames end
// with ETB, the last frame of a message (or of a record, when records are not split)
// ends with ETX.
//
// # Encoding Configuration
//
// Receivers disagree on a few details, so they are switches on [EncodeConfig]:
//
//   - IncludeLeadInChecksum: whether the leading STX is part of the checksum.
//   - IncludeSequenceNumbers: whether the frame number is written after STX.
//   - MaxFrameSize: when positive, all records are joined (each terminated by CR) and
//     cut into frames of at most MaxFrameSize content bytes; otherwise each record is
//     sent as its own final frame.
//
// The configuration is a plain value passed to every Encode/Output call. Nothing
// caches it, so the same [Message] renders differently under different configurations.
//
// # Logging
//
// Log variants return the rendered bytes with every control character replaced by a
// bracketed hex marker, e.g. "<2>1H|\^&<D><3>E7<D><A>".
package astm
