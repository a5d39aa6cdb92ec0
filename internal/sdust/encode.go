package sdust

// Ambiguous is the code returned by Encode for any byte that is not one of
// A, C, G or T. It also marks the end of the sequence during a scan.
const Ambiguous uint8 = 4

const tripletMask = 63

var encoding = func() [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = Ambiguous
	}
	for code, b := range []byte("ACGT") {
		lut[b] = uint8(code)
		lut[b|0x20] = uint8(code) // lower case
	}
	return lut
}()

// Encode maps a base to its 2-bit code (A=0, C=1, G=2, T=3). Everything else
// is Ambiguous.
func Encode(b byte) uint8 {
	return encoding[b]
}
