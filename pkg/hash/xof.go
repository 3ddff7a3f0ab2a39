// Package hash provides the SHAKE-based extendable-output functions used to
// expand seeds into coefficient streams.
package hash

import (
	"golang.org/x/crypto/sha3"
)

// shake128Rate is the SHAKE-128 block size in bytes.
const shake128Rate = 168

// StreamingXOF128 provides incremental SHAKE-128 output for seed||nonce.
type StreamingXOF128 struct {
	h   sha3.ShakeHash
	buf [shake128Rate]byte
	pos int
	end int
}

// NewStreamingXOF128 creates a streaming XOF for seed||nonce.
func NewStreamingXOF128(seed []byte, nonce uint16) *StreamingXOF128 {
	x := &StreamingXOF128{h: sha3.NewShake128()}
	x.Reset(seed, nonce)
	return x
}

// Reset reinitializes the XOF for a new seed||nonce.
func (x *StreamingXOF128) Reset(seed []byte, nonce uint16) {
	x.h.Reset()
	x.h.Write(seed)
	x.h.Write([]byte{byte(nonce & 0xFF), byte(nonce >> 8)})
	x.pos = 0
	x.end = 0
}

// Read fills p with the next len(p) output bytes. It never fails.
func (x *StreamingXOF128) Read(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		if x.pos == x.end {
			n, _ := x.h.Read(x.buf[:])
			x.pos = 0
			x.end = n
		}
		c := copy(p, x.buf[x.pos:x.end])
		x.pos += c
		p = p[c:]
	}
	return total, nil
}

// H returns SHAKE-256 output of specified length.
func H(msg []byte, length int) []byte {
	h := sha3.NewShake256()
	h.Write(msg)
	out := make([]byte, length)
	h.Read(out)
	return out
}
