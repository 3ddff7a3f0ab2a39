// Package poly provides the polynomial type and componentwise operations.
package poly

import (
	"github.com/pkg/errors"

	"rlwe-kex/pkg/field"
	"rlwe-kex/pkg/ntt"
)

// ErrRange is returned when a coefficient is not below the modulus.
var ErrRange = errors.New("coefficient out of range")

// Poly is an ordered sequence of n coefficients in [0, q). Whether it holds
// coefficient or transform representation is tracked by the caller.
type Poly []uint64

// New returns the zero polynomial of length n.
func New(n int) Poly {
	return make(Poly, n)
}

// Clone returns a copy of p.
func (p Poly) Clone() Poly {
	return append(Poly(nil), p...)
}

// Validate checks that p has exactly n elements (ntt.ErrShape) and that each
// is below q (ErrRange).
func (p Poly) Validate(n int, q uint64) error {
	if len(p) != n {
		return errors.Wrapf(ntt.ErrShape, "got %d elements, want %d", len(p), n)
	}
	for i, c := range p {
		if c >= q {
			return errors.Wrapf(ErrRange, "element %d = %d, q=%d", i, c, q)
		}
	}
	return nil
}

// MulCoeffs computes a * b componentwise. result may alias a or b.
func MulCoeffs(a, b, result Poly, q uint64) error {
	if len(a) != len(b) || len(a) != len(result) {
		return errors.Wrapf(ntt.ErrShape, "operand lengths %d, %d, %d differ", len(a), len(b), len(result))
	}
	for i := range a {
		result[i] = field.Mul(a[i], b[i], q)
	}
	return nil
}

// ConstantTimeEqual reports whether a and b are equal, touching every
// element regardless of where they first differ. Differing lengths return
// false immediately; the length is not treated as secret.
func ConstantTimeEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	var acc uint64
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return acc == 0
}

// Zero overwrites p with zeros.
func (p Poly) Zero() {
	for i := range p {
		p[i] = 0
	}
}
