package astm

// FrameNumberModulus is the number of distinct frame numbers.
const FrameNumberModulus = 8

// FrameNumber returns the frame number of the frame at the zero-based position index
// within a message. Numbering starts at 1 and wraps from 7 to 0:
//
//	index:  0 1 2 3 4 5 6 7 8 ...
//	number: 1 2 3 4 5 6 7 0 1 ...
//
// Receivers rely on the 0 after 7, so the cycle must not be "fixed" to restart at 1.
func FrameNumber(index int) int {
	n := (index + 1) % FrameNumberModulus
	if n < 0 {
		n += FrameNumberModulus
	}

	return n
}
