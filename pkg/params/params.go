// Package params holds the ring parameters (n, q) and their validation.
package params

import (
	"fmt"

	"github.com/pkg/errors"

	"rlwe-kex/pkg/field"
)

const (
	// DefaultN is the default ring dimension.
	DefaultN = 1024

	// DefaultQ is the default prime modulus.
	DefaultQ = 40961
)

// ErrConfiguration marks an invalid (n, q) pair. It is fatal: no table or
// key material may be produced from parameters that fail validation.
var ErrConfiguration = errors.New("invalid ring parameters")

// Params is a validated ring dimension and modulus.
type Params struct {
	N int
	Q uint64
}

// New validates n and q and returns the parameter set.
func New(n int, q uint64) (Params, error) {
	if !field.IsPowerOfTwo(n) {
		return Params{}, errors.Wrapf(ErrConfiguration, "n=%d must be a positive power of two", n)
	}
	if !field.IsPrime(q) {
		return Params{}, errors.Wrapf(ErrConfiguration, "q=%d must be prime", q)
	}
	return Params{N: n, Q: q}, nil
}

// Default returns the parameters n=1024, q=40961.
func Default() Params {
	return Params{N: DefaultN, Q: DefaultQ}
}

// LogN returns log2(N), the number of transform stages.
func (p Params) LogN() int {
	return field.Log2(p.N)
}

func (p Params) String() string {
	return fmt.Sprintf("n=%d q=%d", p.N, p.Q)
}
