package hash

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// Test the stream with known SHAKE-128 values
func TestStreamingXOF128Zeros(t *testing.T) {
	seed := make([]byte, 32)
	got := make([]byte, 32)
	NewStreamingXOF128(seed, 0).Read(got)
	expected, _ := hex.DecodeString("49dfd9809bbc54014aabcc6a9a19f5ed48ad57d91902917201b689782ac6c75e")
	if !bytes.Equal(got, expected) {
		t.Errorf("XOF128(zeros, 0) = %x, want %x", got, expected)
	}
}

func TestStreamingXOF128WithData(t *testing.T) {
	// "abcd" + "00" * 30 = 32 bytes total
	seed, _ := hex.DecodeString("abcd000000000000000000000000000000000000000000000000000000000000")
	got := make([]byte, 32)
	NewStreamingXOF128(seed, 42).Read(got)
	expected, _ := hex.DecodeString("c284856075f7c4b04817d544b48d792c4793f2ce1215f04c812c58f9609617e1")
	if !bytes.Equal(got, expected) {
		t.Errorf("XOF128 with data = %x, want %x", got, expected)
	}
}

// Test that chunked reads across block boundaries match one large read
func TestStreamingXOF128Chunked(t *testing.T) {
	seed := []byte("rlwe-kex")
	sizes := []int{1, 2, 3, 100, 167, 168, 169, 5}
	total := 0
	for _, size := range sizes {
		total += size
	}
	whole := make([]byte, total)
	NewStreamingXOF128(seed, 7).Read(whole)

	x := NewStreamingXOF128(seed, 7)
	var chunked []byte
	for _, size := range sizes {
		b := make([]byte, size)
		n, err := x.Read(b)
		if err != nil || n != size {
			t.Fatalf("Read(%d) = %d, %v", size, n, err)
		}
		chunked = append(chunked, b...)
	}
	if !bytes.Equal(whole, chunked) {
		t.Errorf("chunked reads diverge from a single read")
	}
}

// Test Reset restarts the stream
func TestStreamingXOF128Reset(t *testing.T) {
	x := NewStreamingXOF128([]byte("a"), 1)
	first := make([]byte, 64)
	x.Read(first)
	x.Reset([]byte("a"), 1)
	again := make([]byte, 64)
	x.Read(again)
	if !bytes.Equal(first, again) {
		t.Errorf("Reset did not restart the stream")
	}
	x.Reset([]byte("a"), 2)
	other := make([]byte, 64)
	x.Read(other)
	if bytes.Equal(first, other) {
		t.Errorf("different nonces produced the same stream")
	}
}

// Test H (SHAKE-256) with known values
func TestH(t *testing.T) {
	got := H([]byte("test"), 32)
	expected, _ := hex.DecodeString("b54ff7255705a71ee2925e4a3e30e41aed489a579d5595e0df13e32e1e4dd202")
	if !bytes.Equal(got, expected) {
		t.Errorf("H('test', 32) = %x, want %x", got, expected)
	}
}
