// floatsunrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
//
// The kernels process slices in batches of UnrollBatch and finish any remainder
// with a scalar tail so they accept slices of any length.
package floatsunrolled

import (
	"errors"
)

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch       = errors.New("slices must have equal lengths")
	ErrOutputSliceLengthMismatch = errors.New("output slice length not the same as input")
	ErrInvalidLag                = errors.New("lag must be non-negative")
)

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}

	n := len(a) - len(a)%UnrollBatch
	var sum float64
	for i := 0; i < n; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	for i := n; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// LagDot returns sum(x[i]*x[i-lag]) for i in [lag, len(x)). A lag past the end of
// the slice yields 0.
func LagDot(x []float64, lag int) float64 {
	if lag < 0 {
		panic(ErrInvalidLag)
	}
	if lag >= len(x) {
		return 0
	}
	return Dot(x[lag:], x[:len(x)-lag])
}

// SubConstTo writes s - c into dst, allocating dst when nil.
func SubConstTo(dst []float64, c float64, s []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		panic(ErrOutputSliceLengthMismatch)
	}

	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - c
		dstTmp[1] = sTmp[1] - c
		dstTmp[2] = sTmp[2] - c
		dstTmp[3] = sTmp[3] - c
	}
	for i := n; i < len(s); i++ {
		dst[i] = s[i] - c
	}
	return dst
}

// SubTo writes s - t into dst, allocating dst when nil.
func SubTo(dst, s, t []float64) []float64 {
	if len(s) != len(t) {
		panic(ErrSliceLengthMismatch)
	}

	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		panic(ErrOutputSliceLengthMismatch)
	}

	n := len(s) - len(s)%UnrollBatch
	for i := 0; i < n; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - tTmp[0]
		dstTmp[1] = sTmp[1] - tTmp[1]
		dstTmp[2] = sTmp[2] - tTmp[2]
		dstTmp[3] = sTmp[3] - tTmp[3]
	}
	for i := n; i < len(s); i++ {
		dst[i] = s[i] - t[i]
	}

	return dst
}

// Reverse returns a reversed copy of s. Lag polynomials are stored reversed so a
// prediction becomes a forward Dot against the trailing window of a series.
func Reverse(s []float64) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
