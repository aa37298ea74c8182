package conv

// Utoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for uint64.
func Utoa(buf []byte, n uint64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	} else {
		for n > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (n % 10))
			n /= 10
		}
	}
	return buf[i:]
}

// Itoa is Utoa for signed values.
func Itoa(n int64) string {
	var buf [21]byte
	if n >= 0 {
		return string(Utoa(buf[:], uint64(n)))
	}
	s := Utoa(buf[1:], uint64(-n))
	start := len(buf) - len(s) - 1
	buf[start] = '-'
	return string(buf[start:])
}
