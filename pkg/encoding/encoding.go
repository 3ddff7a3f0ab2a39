// Package encoding serializes polynomials as fixed-width little-endian
// integer arrays.
//
// Each coefficient takes WordSize(q) bytes, the fewest that hold q-1.
package encoding

import (
	"math/bits"

	"github.com/pkg/errors"

	"rlwe-kex/pkg/poly"
)

// ErrEncoding is returned for byte strings that do not decode to a
// polynomial of the requested shape.
var ErrEncoding = errors.New("malformed polynomial encoding")

// WordSize returns the number of bytes used per coefficient for modulus q.
func WordSize(q uint64) int {
	bitLen := bits.Len64(q - 1)
	if bitLen == 0 {
		return 1
	}
	return (bitLen + 7) / 8
}

// PackedSize returns the encoded length of an n-coefficient polynomial.
func PackedSize(n int, q uint64) int {
	return n * WordSize(q)
}

// PackFes packs field elements into bytes, width bytes per element.
func PackFes(fes []uint64, width int) []byte {
	result := make([]byte, len(fes)*width)
	for i, c := range fes {
		for k := 0; k < width; k++ {
			result[i*width+k] = byte(c >> (8 * k))
		}
	}
	return result
}

// UnpackFes unpacks bytes into field elements, width bytes per element.
// Trailing bytes that do not fill a whole element are ignored.
func UnpackFes(bs []byte, width int) []uint64 {
	n := len(bs) / width
	result := make([]uint64, n)
	for i := 0; i < n; i++ {
		var c uint64
		for k := 0; k < width; k++ {
			c |= uint64(bs[i*width+k]) << (8 * k)
		}
		result[i] = c
	}
	return result
}

// PackPoly packs a polynomial with coefficients in [0, q).
func PackPoly(p poly.Poly, q uint64) []byte {
	return PackFes(p, WordSize(q))
}

// UnpackPoly decodes exactly n coefficients, rejecting any value >= q.
func UnpackPoly(bs []byte, n int, q uint64) (poly.Poly, error) {
	if want := PackedSize(n, q); len(bs) != want {
		return nil, errors.Wrapf(ErrEncoding, "got %d bytes, want %d", len(bs), want)
	}
	p := poly.Poly(UnpackFes(bs, WordSize(q)))
	for i, c := range p {
		if c >= q {
			return nil, errors.Wrapf(ErrEncoding, "coefficient %d = %d is not below q=%d", i, c, q)
		}
	}
	return p, nil
}
