// Package stats holds the statistical tests and transforms used to identify and
// diagnose seasonal ARIMA models.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/aouyang1/sarimaflow/nullable"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientData       = errors.New("not enough observations")
	ErrConstantSeries         = errors.New("series is constant")
	ErrInvalidOrder           = errors.New("differencing order must be non-negative")
	ErrSeasonalPeriodRequired = errors.New("seasonal differencing requires a seasonal period of at least 1")
	ErrInvalidLag             = errors.New("invalid number of lags")
	ErrNaNInput               = errors.New("series contains NaN")
)

// DetectOutliers returns the indices of values outside the percentile range widened by
// the tukey factor.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)-1) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)-1) * upperPerc))

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Description summarizes a sample.
type Description struct {
	Count  int            `json:"count"`
	Mean   float64        `json:"mean"`
	StdDev nullable.Float `json:"std"`
	Min    float64        `json:"min"`
	Q1     float64        `json:"q1"`
	Median float64        `json:"median"`
	Q3     float64        `json:"q3"`
	Max    float64        `json:"max"`
}

func Describe(y []float64) (Description, error) {
	if len(y) == 0 {
		return Description{}, ErrInsufficientData
	}
	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	d := Description{
		Count:  len(y),
		Mean:   stat.Mean(y, nil),
		StdDev: nullable.Float(math.NaN()),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(y) > 1 {
		d.StdDev = nullable.Float(stat.StdDev(y, nil))
	}
	return d, nil
}

func hasNaN(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func isConstant(y []float64) bool {
	for i := 1; i < len(y); i++ {
		if y[i] != y[0] {
			return false
		}
	}
	return true
}
