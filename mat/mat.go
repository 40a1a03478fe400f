package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch = errors.New("column size mismatch")
	ErrInvalidLags = errors.New("number of lags must be non-negative and less than the series length")
)

func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// LagMatrix returns a (len(x)-lags) x (lags+1) matrix whose row r holds
// x[t], x[t-1], ..., x[t-lags] for t = r+lags. Rows without a full history are trimmed.
func LagMatrix(x []float64, lags int) (*mat.Dense, error) {
	if lags < 0 || lags >= len(x) {
		return nil, fmt.Errorf("%d lags for %d observations, %w", lags, len(x), ErrInvalidLags)
	}
	m := len(x) - lags
	n := lags + 1
	data := make([]float64, 0, m*n)
	for t := lags; t < len(x); t++ {
		for l := 0; l <= lags; l++ {
			data = append(data, x[t-l])
		}
	}
	return mat.NewDense(m, n, data), nil
}

// ColumnSlice copies the columns [i, j) of x into a new matrix.
func ColumnSlice(x *mat.Dense, i, j int) *mat.Dense {
	m, _ := x.Dims()
	var out mat.Dense
	out.CloneFrom(x.Slice(0, m, i, j))
	return &out
}
