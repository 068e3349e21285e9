package packet

// Checksum computes the RFC 1071 internet checksum over b: 16-bit words
// are summed into a 32-bit accumulator, an odd trailing byte is padded
// with zero, carries are folded back twice and the one's complement of
// the low 16 bits is returned.
//
// The checksum field inside b must be zero when this is called; the
// caller stores the returned value into that field afterwards.
func Checksum(b []byte) uint16 {
	var sum uint32

	i := 0
	for ; i+1 < len(b); i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if i < len(b) {
		sum += uint32(b[i]) << 8
	}

	// One fold can leave a carry, so fold twice.
	sum = (sum >> 16) + (sum & 0xffff)
	sum += sum >> 16

	return ^uint16(sum)
}

// VerifyChecksum reports whether b, with its checksum field already in
// place, sums to the all-ones identity.
func VerifyChecksum(b []byte) bool {
	var sum uint32

	i := 0
	for ; i+1 < len(b); i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if i < len(b) {
		sum += uint32(b[i]) << 8
	}

	sum = (sum >> 16) + (sum & 0xffff)
	sum += sum >> 16

	return uint16(sum) == 0xffff
}
