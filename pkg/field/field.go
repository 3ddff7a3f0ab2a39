// Package field provides modular arithmetic over Z_m for a runtime prime
// modulus m.
//
// Elements are uint64. Products are formed in 128 bits before reduction, so
// every operation is exact for any modulus that fits in a machine word.
package field

import (
	"math/big"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Reduce returns x mod m in [0, m), handling negative values correctly.
func Reduce[T constraints.Integer](x T, m uint64) uint64 {
	if x >= 0 {
		return uint64(x) % m
	}
	// -(x+1) cannot overflow, unlike -x for the most negative value.
	r := uint64(-(x + 1)) % m
	return m - 1 - r
}

// Add returns (a + b) mod m.
func Add(a, b, m uint64) uint64 {
	a %= m
	b %= m
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 || sum >= m {
		sum -= m
	}
	return sum
}

// Sub returns (a - b) mod m, always in [0, m).
func Sub(a, b, m uint64) uint64 {
	a %= m
	b %= m
	if a >= b {
		return a - b
	}
	return m - b + a
}

// Mul returns (a * b) mod m.
func Mul(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

// IsPrime reports whether x is prime. The answer is exact for every uint64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns log2(n) for a power of two n.
func Log2(n int) int {
	return bits.TrailingZeros64(uint64(n))
}
