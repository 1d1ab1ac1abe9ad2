package astm

const hexDigits = "0123456789ABCDEF"

// Checksum returns the arithmetic sum of all unsigned byte values in data, modulo 256.
//
// Whether the leading STX of a frame belongs in data depends on the receiver,
// see EncodeConfig.IncludeLeadInChecksum.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}

	return sum
}

// ChecksumHex returns Checksum(data) as exactly two upper-case hex digits.
func ChecksumHex(data []byte) string {
	return string(appendChecksum(make([]byte, 0, 2), Checksum(data)))
}

func appendChecksum(dst []byte, sum byte) []byte {
	return append(dst, hexDigits[sum>>4], hexDigits[sum&0x0F])
}
