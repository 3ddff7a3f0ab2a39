// Package sampling provides the random sources that feed key generation and
// encapsulation.
//
// A Source yields one uniform integer in [0, q) per call. Whether the
// underlying entropy is cryptographically secure depends on the source.
package sampling

import (
	"encoding/binary"
	"io"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/tuneinsight/lattigo/v4/utils"

	"rlwe-kex/pkg/hash"
	"rlwe-kex/pkg/poly"
)

// Source yields uniform integers in [0, q).
type Source interface {
	Uint64() (uint64, error)
}

// streamSource turns a byte stream into uniform values by rejection
// sampling: read the minimal number of little-endian bytes, mask to the bit
// length of q-1, and retry on values >= q.
type streamSource struct {
	r     io.Reader
	q     uint64
	width int
	mask  uint64
	buf   [8]byte
}

func newStreamSource(r io.Reader, q uint64) *streamSource {
	bitLen := bits.Len64(q - 1)
	if bitLen == 0 {
		bitLen = 1
	}
	return &streamSource{
		r:     r,
		q:     q,
		width: (bitLen + 7) / 8,
		mask:  ^uint64(0) >> (64 - bitLen),
	}
}

// Uint64 returns the next accepted value.
func (s *streamSource) Uint64() (uint64, error) {
	for {
		if _, err := io.ReadFull(s.r, s.buf[:s.width]); err != nil {
			return 0, errors.Wrap(err, "reading random stream")
		}
		d := binary.LittleEndian.Uint64(s.buf[:]) & s.mask
		if d < s.q {
			return d, nil
		}
	}
}

// NewPRNGSource draws from an existing lattigo PRNG.
func NewPRNGSource(prng utils.PRNG, q uint64) Source {
	return newStreamSource(prng, q)
}

// NewKeyedSource returns a deterministic source keyed by seed. Two sources
// with the same seed and q produce the same sequence.
func NewKeyedSource(seed []byte, q uint64) (Source, error) {
	prng, err := utils.NewKeyedPRNG(seed)
	if err != nil {
		return nil, errors.Wrap(err, "creating keyed PRNG")
	}
	return NewPRNGSource(prng, q), nil
}

// NewRandomSource returns a source keyed with fresh system randomness.
func NewRandomSource(q uint64) (Source, error) {
	prng, err := utils.NewPRNG()
	if err != nil {
		return nil, errors.Wrap(err, "creating PRNG")
	}
	return NewPRNGSource(prng, q), nil
}

// NewXOFSource returns a deterministic source reading SHAKE-128(seed||nonce).
func NewXOFSource(seed []byte, nonce uint16, q uint64) Source {
	return newStreamSource(hash.NewStreamingXOF128(seed, nonce), q)
}

// Constant is a Source that always returns the same value. It exists for
// regression fixtures and is not bound to any modulus; SampleUniform rejects
// it when the value is not below q.
type Constant uint64

// Uint64 returns c.
func (c Constant) Uint64() (uint64, error) {
	return uint64(c), nil
}

// SampleUniform draws n values from src to form a polynomial over q. A
// value that is not below q fails with poly.ErrRange.
func SampleUniform(src Source, n int, q uint64) (poly.Poly, error) {
	p := poly.New(n)
	for i := range p {
		v, err := src.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "sampling coefficient %d", i)
		}
		if v >= q {
			return nil, errors.Wrapf(poly.ErrRange, "sampled coefficient %d = %d, q=%d", i, v, q)
		}
		p[i] = v
	}
	return p, nil
}
