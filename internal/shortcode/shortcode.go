// Package shortcode converts counter values into short codes.
package shortcode

// Alphabet is the fixed 84-character alphabet used for short codes: digits,
// letters of both cases, and the URL punctuation characters. Codes for the
// first 62 counter values are purely alphanumeric.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"-._~:/?#[]@!$&'()*+,;="

// Generator encodes counter values as short codes over a fixed alphabet.
// The encoding is a bijection: distinct counter values always produce
// distinct codes.
type Generator struct {
	alphabet string
}

// New returns a Generator using the default alphabet.
func New() *Generator {
	return &Generator{alphabet: Alphabet}
}

// Encode returns the short code for the given counter value. It is pure and
// deterministic: the value is written out as digits of the alphabet, most
// significant first, by repeatedly taking the remainder modulo the alphabet
// size until the quotient reaches zero. Encode(0) is the single character at
// alphabet index 0; the zero digit is never dropped.
func (g *Generator) Encode(n uint64) string {
	l := uint64(len(g.alphabet))

	// 84^11 > 2^64, so 11 digits always suffice.
	var buf [11]byte
	i := len(buf)

	for {
		i--
		buf[i] = g.alphabet[n%l]
		n /= l
		if n == 0 {
			break
		}
	}

	return string(buf[i:])
}

// Size returns the alphabet size.
func (g *Generator) Size() int {
	return len(g.alphabet)
}
