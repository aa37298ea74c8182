package conv

const hexd = "0123456789ABCDEF"

// Hex writes n as uppercase hex with a 0x prefix, zero-padded to digits
// (1..16). Output is truncated to fit buf.
func Hex(buf []byte, n uint64, digits int) []byte {
	if digits < 1 {
		digits = 1
	}
	if digits > 16 {
		digits = 16
	}
	if len(buf) < digits+2 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < digits; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	i--
	buf[i] = 'x'
	i--
	buf[i] = '0'
	return buf[i:]
}

// Hex8 formats a register byte as 0xNN.
func Hex8(b byte) string {
	var buf [4]byte
	return string(Hex(buf[:], uint64(b), 2))
}

// Hex24 formats a 24-bit sample as 0xNNNNNN.
func Hex24(v uint32) string {
	var buf [8]byte
	return string(Hex(buf[:], uint64(v&0xFFFFFF), 6))
}
