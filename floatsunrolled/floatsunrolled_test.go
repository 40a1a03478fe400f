package floatsunrolled

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func checkPanic(t *testing.T, err error) {
	r := recover()
	if r == nil {
		return
	}
	if err != nil {
		rErr, ok := r.(error)
		assert.True(t, ok)
		assert.EqualError(t, rErr, err.Error())
		return
	}

	assert.Nil(t, r)
}

func TestDot(t *testing.T) {
	testData := map[string]struct {
		a        []float64
		b        []float64
		err      error
		expected float64
	}{
		"dot length mismatch": {
			a:   []float64{1, 2, 3},
			b:   []float64{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"dot with tail": {
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 14,
		},
		"dot valid": {
			a:        []float64{1, 2, 3, 4},
			b:        []float64{4, 3, 2, 1},
			expected: 20,
		},
		"dot batch and tail": {
			a:        []float64{1, 2, 3, 4, 5, 6},
			b:        []float64{1, 1, 1, 1, 2, 2},
			expected: 32,
		},
		"dot empty": {
			a:        []float64{},
			b:        []float64{},
			expected: 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := Dot(td.a, td.b)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestLagDot(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		lag      int
		err      error
		expected float64
	}{
		"negative lag": {
			x:   []float64{1, 2},
			lag: -1,
			err: ErrInvalidLag,
		},
		"zero lag": {
			x:        []float64{1, 2, 3},
			lag:      0,
			expected: 14,
		},
		"lag one": {
			x:        []float64{1, 2, 3},
			lag:      1,
			expected: 8,
		},
		"lag past end": {
			x:        []float64{1, 2, 3},
			lag:      3,
			expected: 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			assert.Equal(t, td.expected, LagDot(td.x, td.lag))
		})
	}
}

func TestSubConstTo(t *testing.T) {
	testData := map[string]struct {
		dst      []float64
		c        float64
		s        []float64
		err      error
		expected []float64
	}{
		"valid no destination": {
			c:        2,
			s:        []float64{1, 2, 3, 4, 5},
			expected: []float64{-1, 0, 1, 2, 3},
		},
		"valid with destination": {
			dst:      make([]float64, 3),
			c:        1,
			s:        []float64{1, 2, 3},
			expected: []float64{0, 1, 2},
		},
		"invalid destination": {
			dst: make([]float64, 2),
			c:   1,
			s:   []float64{1, 2, 3},
			err: ErrOutputSliceLengthMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := SubConstTo(td.dst, td.c, td.s)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSubTo(t *testing.T) {
	testData := map[string]struct {
		dst      []float64
		s        []float64
		t        []float64
		err      error
		expected []float64
	}{
		"subto length mismatch": {
			s:   []float64{1, 2, 3},
			t:   []float64{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"subto valid with tail": {
			s:        []float64{1, 2, 3, 4, 5},
			t:        []float64{4, 3, 2, 1, 0},
			expected: []float64{-3, -1, 1, 3, 5},
		},
		"subto valid with destination": {
			dst:      make([]float64, 4),
			s:        []float64{1, 2, 3, 4},
			t:        []float64{4, 3, 2, 1},
			expected: []float64{-3, -1, 1, 3},
		},
		"subto invalid destination": {
			dst: make([]float64, 3),
			s:   []float64{1, 2, 3, 4},
			t:   []float64{4, 3, 2, 1},
			err: ErrOutputSliceLengthMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			defer checkPanic(t, td.err)
			res := SubTo(td.dst, td.s, td.t)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestReverse(t *testing.T) {
	assert.Equal(t, []float64{3, 2, 1}, Reverse([]float64{1, 2, 3}))
	assert.Equal(t, []float64{}, Reverse([]float64{}))
}

func generateRandomSlice(size int) []float64 {
	a := make([]float64, size)
	for i := 0; i < len(a); i++ {
		a[i] = rand.NormFloat64()
	}
	return a
}

func BenchmarkDot(b *testing.B) {
	a := generateRandomSlice(1001)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Dot(a, a)
	}
}

func BenchmarkNaiveDot(b *testing.B) {
	a := generateRandomSlice(1001)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		floats.Dot(a, a)
	}
}

func BenchmarkLagDot(b *testing.B) {
	a := generateRandomSlice(1001)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LagDot(a, 12)
	}
}
