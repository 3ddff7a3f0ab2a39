// Package ntt provides the butterfly transforms over Z_q^n used by the key
// exchange.
//
// The twiddle factors are the linear sequences (i+1) mod q and (q-i-1) mod q
// rather than powers of a primitive root of unity, so Forward and Backward
// are not inverse to each other and neither is a true NTT. Both are
// reproduced exactly; callers must not rely on a round trip.
package ntt

import (
	"sync"

	"github.com/pkg/errors"

	"rlwe-kex/pkg/field"
	"rlwe-kex/pkg/params"
)

// ErrShape is returned when an array's length differs from the ring dimension.
var ErrShape = errors.New("array length does not match ring dimension")

// Tables holds the forward and backward twiddle factors for one (n, q).
// It is immutable after construction and safe to share between goroutines.
type Tables struct {
	params   params.Params
	forward  []uint64
	backward []uint64
}

// NewTables computes forward[i] = (i+1) mod q and backward[i] = (q-i-1) mod q.
func NewTables(p params.Params) *Tables {
	t := &Tables{
		params:   p,
		forward:  make([]uint64, p.N),
		backward: make([]uint64, p.N),
	}
	for i := 0; i < p.N; i++ {
		t.forward[i] = field.Reduce(i+1, p.Q)
		t.backward[i] = field.Sub(p.Q-1, uint64(i)%p.Q, p.Q)
	}
	return t
}

// Params returns the parameters the tables were built for.
func (t *Tables) Params() params.Params {
	return t.params
}

// Forward returns a copy of the forward twiddle factors.
func (t *Tables) Forward() []uint64 {
	return append([]uint64(nil), t.forward...)
}

// Backward returns a copy of the backward twiddle factors.
func (t *Tables) Backward() []uint64 {
	return append([]uint64(nil), t.backward...)
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// DefaultTables returns the process-wide tables for params.Default(),
// building them on first use.
func DefaultTables() *Tables {
	defaultOnce.Do(func() {
		defaultTables = NewTables(params.Default())
	})
	return defaultTables
}

// Engine runs the transforms for one set of tables.
type Engine struct {
	n      int
	q      uint64
	tables *Tables
}

// NewEngine returns an engine reading from t.
func NewEngine(t *Tables) *Engine {
	return &Engine{n: t.params.N, q: t.params.Q, tables: t}
}

// Params returns the engine's ring parameters.
func (e *Engine) Params() params.Params {
	return e.tables.params
}

func (e *Engine) checkShape(x []uint64) error {
	if len(x) != e.n {
		return errors.Wrapf(ErrShape, "got %d elements, want %d", len(x), e.n)
	}
	return nil
}

// Forward transforms x in place. Stages run with half-size m from n/2 down
// to 1; the twiddle cursor moves back by step (1, 2, 4, ...) after every
// sub-block.
func (e *Engine) Forward(x []uint64) error {
	if err := e.checkShape(x); err != nil {
		return err
	}
	n, q := e.n, e.q
	w := e.tables.forward
	reduceAll(x, q)

	step := 1
	for m := n >> 1; m >= 1; m >>= 1 {
		index := 0
		for j := 0; j < m; j++ {
			z := w[index]
			for i := j; i < n; i += m << 1 {
				t0 := field.Add(x[i], x[i+m], q)
				t1 := field.Mul(field.Sub(x[i], x[i+m], q), z, q)
				x[i] = t0
				x[i+m] = t1
			}
			index = (index + n - step) % n
		}
		step <<= 1
	}
	return nil
}

// Backward transforms x in place. Stages run with half-size m from 1 up to
// n/2; the twiddle cursor moves back by step (n/2, n/4, ...) after every
// sub-block. No 1/n scaling is applied.
func (e *Engine) Backward(x []uint64) error {
	if err := e.checkShape(x); err != nil {
		return err
	}
	n, q := e.n, e.q
	w := e.tables.backward
	reduceAll(x, q)

	step := n >> 1
	for m := 1; m < n; m <<= 1 {
		index := 0
		for j := 0; j < m; j++ {
			z := w[index]
			for i := j; i < n; i += m << 1 {
				t0 := x[i]
				t1 := field.Mul(x[i+m], z, q)
				x[i] = field.Add(t0, t1, q)
				x[i+m] = field.Sub(t0, t1, q)
			}
			index = (index + n - step) % n
		}
		step >>= 1
	}
	return nil
}

// reduceAll keeps the output in [0, q) even when n == 1 and no butterfly runs.
func reduceAll(x []uint64, q uint64) {
	for i := range x {
		if x[i] >= q {
			x[i] %= q
		}
	}
}
