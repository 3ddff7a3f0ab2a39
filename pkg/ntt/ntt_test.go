package ntt

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rlwe-kex/pkg/params"
)

func newEngine(t testing.TB, n int, q uint64) *Engine {
	t.Helper()
	p, err := params.New(n, q)
	require.NoError(t, err)
	return NewEngine(NewTables(p))
}

// Test table values follow the linear definitions
func TestTablesValues(t *testing.T) {
	p, err := params.New(8, 5)
	require.NoError(t, err)
	tab := NewTables(p)

	// q < n: the sequences wrap around modulo q
	wantForward := []uint64{1, 2, 3, 4, 0, 1, 2, 3}
	wantBackward := []uint64{4, 3, 2, 1, 0, 4, 3, 2}
	if diff := cmp.Diff(wantForward, tab.Forward()); diff != "" {
		t.Errorf("Forward table mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantBackward, tab.Backward()); diff != "" {
		t.Errorf("Backward table mismatch (-want +got):\n%s", diff)
	}
}

// Test tables are a pure function of (n, q)
func TestTablesDeterministic(t *testing.T) {
	a := NewTables(params.Default())
	b := NewTables(params.Default())
	assert.Equal(t, a.Forward(), b.Forward())
	assert.Equal(t, a.Backward(), b.Backward())
	assert.Equal(t, a.Forward(), DefaultTables().Forward())
	assert.Equal(t, a.Backward(), DefaultTables().Backward())

	fw := a.Forward()
	for i := 0; i < params.DefaultN; i++ {
		require.Equal(t, uint64(i+1), fw[i])
	}
	bw := a.Backward()
	require.Equal(t, uint64(params.DefaultQ-1), bw[0])
	require.Equal(t, uint64(params.DefaultQ-params.DefaultN), bw[params.DefaultN-1])
}

// Test that callers cannot mutate the tables through the accessors
func TestTablesImmutable(t *testing.T) {
	tab := NewTables(params.Default())
	fw := tab.Forward()
	fw[0] = 999
	bw := tab.Backward()
	bw[0] = 999
	assert.Equal(t, uint64(1), tab.Forward()[0])
	assert.Equal(t, uint64(params.DefaultQ-1), tab.Backward()[0])
}

// Test concurrent first use builds the default tables once
func TestDefaultTablesOnce(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]*Tables, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = DefaultTables()
		}(i)
	}
	wg.Wait()
	for _, tab := range got {
		assert.Same(t, got[0], tab)
	}
}

// Golden vectors captured from the reference formulas
func TestForwardGolden(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		q     uint64
		input []uint64
		want  []uint64
	}{
		{"n4q5", 4, 5, []uint64{1, 2, 3, 4}, []uint64{0, 3, 0, 1}},
		{"n4q5 ones", 4, 5, []uint64{1, 1, 1, 1}, []uint64{4, 0, 0, 0}},
		{"n4q5 delta", 4, 5, []uint64{1, 0, 0, 0}, []uint64{1, 1, 1, 1}},
		{"n2q11", 2, 11, []uint64{7, 9}, []uint64{5, 9}},
		{"n8q17", 8, 17, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, []uint64{11, 13, 2, 7, 14, 7, 2, 12}},
		{"n8q5", 8, 5, []uint64{3, 1, 4, 1, 0, 4, 2, 1}, []uint64{1, 2, 3, 1, 3, 1, 1, 2}},
		{
			"n16q40961", 16, 40961,
			[]uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			[]uint64{120, 40953, 40849, 96, 40641, 96, 40641, 512, 40225, 96, 40641, 512, 39809, 512, 39809, 2176},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.n, tc.q)
			x := append([]uint64(nil), tc.input...)
			require.NoError(t, e.Forward(x))
			if diff := cmp.Diff(tc.want, x); diff != "" {
				t.Errorf("Forward mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBackwardGolden(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		q     uint64
		input []uint64
		want  []uint64
	}{
		{"n4q5", 4, 5, []uint64{1, 2, 3, 4}, []uint64{0, 0, 3, 1}},
		{"n4q5 delta", 4, 5, []uint64{1, 0, 0, 0}, []uint64{1, 1, 1, 1}},
		{"n2q11", 2, 11, []uint64{7, 9}, []uint64{9, 5}},
		{"n8q17", 8, 17, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, []uint64{0, 10, 12, 14, 0, 7, 1, 7}},
		{"n8q5", 8, 5, []uint64{3, 1, 4, 1, 0, 4, 2, 1}, []uint64{4, 0, 1, 4, 4, 3, 4, 4}},
		{
			"n16q40961", 16, 40961,
			[]uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			[]uint64{0, 3874, 40625, 14995, 0, 23007, 280, 36826, 0, 798, 384, 22182, 0, 13026, 40625, 8183},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.n, tc.q)
			x := append([]uint64(nil), tc.input...)
			require.NoError(t, e.Backward(x))
			if diff := cmp.Diff(tc.want, x); diff != "" {
				t.Errorf("Backward mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Test that Backward does not undo Forward with these twiddles
func TestForwardBackwardNotInverse(t *testing.T) {
	e := newEngine(t, 4, 5)
	x := []uint64{1, 2, 3, 4}
	require.NoError(t, e.Forward(x))
	require.NoError(t, e.Backward(x))
	assert.Equal(t, []uint64{3, 4, 1, 2}, x)
}

// Test the transform is deterministic and stays in range
func TestForwardRange(t *testing.T) {
	e := NewEngine(DefaultTables())
	a := make([]uint64, params.DefaultN)
	for i := range a {
		a[i] = uint64(i*7919) % params.DefaultQ
	}
	b := append([]uint64(nil), a...)

	require.NoError(t, e.Forward(a))
	require.NoError(t, e.Forward(b))
	assert.Equal(t, a, b)
	for i, v := range a {
		require.Less(t, v, uint64(params.DefaultQ), "index %d", i)
	}

	require.NoError(t, e.Backward(a))
	for i, v := range a {
		require.Less(t, v, uint64(params.DefaultQ), "index %d", i)
	}
}

// Test linearity: Forward(a + b) = Forward(a) + Forward(b)
func TestForwardLinearity(t *testing.T) {
	e := newEngine(t, 16, 40961)
	a := make([]uint64, 16)
	b := make([]uint64, 16)
	sum := make([]uint64, 16)
	for i := range a {
		a[i] = uint64(i * i)
		b[i] = uint64(40960 - 3*i)
		sum[i] = (a[i] + b[i]) % 40961
	}
	require.NoError(t, e.Forward(a))
	require.NoError(t, e.Forward(b))
	require.NoError(t, e.Forward(sum))
	for i := range sum {
		assert.Equal(t, (a[i]+b[i])%40961, sum[i], "index %d", i)
	}
}

// Test wrong lengths are rejected before the array is touched
func TestShapeError(t *testing.T) {
	e := newEngine(t, 4, 5)
	for _, x := range [][]uint64{nil, {1, 2, 3}, {1, 2, 3, 4, 0}} {
		orig := append([]uint64(nil), x...)
		err := e.Forward(x)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrShape))
		err = e.Backward(x)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrShape))
		assert.Equal(t, orig, append([]uint64(nil), x...))
	}
}

// Test n == 1 still yields reduced output
func TestSingleElement(t *testing.T) {
	e := newEngine(t, 1, 5)
	x := []uint64{12}
	require.NoError(t, e.Forward(x))
	assert.Equal(t, []uint64{2}, x)
	x = []uint64{3}
	require.NoError(t, e.Backward(x))
	assert.Equal(t, []uint64{3}, x)
}

func BenchmarkForward(b *testing.B) {
	e := NewEngine(DefaultTables())
	x := make([]uint64, params.DefaultN)
	for i := range x {
		x[i] = uint64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Forward(x)
	}
}

func BenchmarkBackward(b *testing.B) {
	e := NewEngine(DefaultTables())
	x := make([]uint64, params.DefaultN)
	for i := range x {
		x[i] = uint64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Backward(x)
	}
}
