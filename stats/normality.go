package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/aouyang1/sarimaflow/nullable"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

type JarqueBeraResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Skewness  float64 `json:"skewness"`
	Kurtosis  float64 `json:"kurtosis"`
	IsNormal  bool    `json:"is_normal"`
}

// JarqueBera tests normality from the sample skewness and kurtosis.
func JarqueBera(y []float64) (*JarqueBeraResult, error) {
	n := len(y)
	if n < 3 {
		return nil, fmt.Errorf("jarque-bera needs at least 3 observations, got %d, %w", n, ErrInsufficientData)
	}
	if hasNaN(y) {
		return nil, ErrNaNInput
	}
	m2 := stat.Moment(2, y, nil)
	if m2 == 0 {
		return nil, ErrConstantSeries
	}
	skew := stat.Moment(3, y, nil) / math.Pow(m2, 1.5)
	kurt := stat.Moment(4, y, nil) / (m2 * m2)

	jb := float64(n) / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	p := distuv.ChiSquared{K: 2}.Survival(jb)
	return &JarqueBeraResult{
		Statistic: jb,
		PValue:    p,
		Skewness:  skew,
		Kurtosis:  kurt,
		IsNormal:  p >= SignificanceLevel,
	}, nil
}

// QQResult holds the points of a normal probability plot and its least squares line.
type QQResult struct {
	Theoretical []float64      `json:"theoretical"`
	Ordered     []float64      `json:"ordered"`
	Slope       float64        `json:"slope"`
	Intercept   float64        `json:"intercept"`
	R           nullable.Float `json:"r"`
}

// QQ pairs the sorted sample with normal quantiles of Filliben's order statistic
// medians.
func QQ(y []float64) (*QQResult, error) {
	n := len(y)
	if n < 2 {
		return nil, fmt.Errorf("qq plot needs at least 2 observations, got %d, %w", n, ErrInsufficientData)
	}
	if hasNaN(y) {
		return nil, ErrNaNInput
	}

	ordered := make([]float64, n)
	copy(ordered, y)
	sort.Float64s(ordered)

	medians := fillibenMedians(n)
	theoretical := make([]float64, n)
	for i, m := range medians {
		theoretical[i] = distuv.UnitNormal.Quantile(m)
	}

	intercept, slope := stat.LinearRegression(theoretical, ordered, nil, false)
	r := math.NaN()
	if !isConstant(ordered) {
		r = stat.Correlation(theoretical, ordered, nil)
	}
	return &QQResult{
		Theoretical: theoretical,
		Ordered:     ordered,
		Slope:       slope,
		Intercept:   intercept,
		R:           nullable.Float(r),
	}, nil
}

func fillibenMedians(n int) []float64 {
	m := make([]float64, n)
	last := math.Pow(0.5, 1/float64(n))
	m[n-1] = last
	m[0] = 1 - last
	for i := 2; i < n; i++ {
		m[i-1] = (float64(i) - 0.3175) / (float64(n) + 0.365)
	}
	return m
}
