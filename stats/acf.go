package stats

import (
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/floatsunrolled"
	"gonum.org/v1/gonum/stat"
)

// z value of a two sided 95% interval
const z95 = 1.959963984540054

// ACF returns the sample autocorrelation for lags 0 through nlags. Lags beyond n-1 are
// clamped.
func ACF(y []float64, nlags int) ([]float64, error) {
	n := len(y)
	if n < 2 {
		return nil, fmt.Errorf("acf needs at least 2 observations, got %d, %w", n, ErrInsufficientData)
	}
	if nlags < 0 {
		return nil, fmt.Errorf("got %d lags, %w", nlags, ErrInvalidLag)
	}
	if hasNaN(y) {
		return nil, ErrNaNInput
	}
	if nlags > n-1 {
		nlags = n - 1
	}

	centered := floatsunrolled.SubConstTo(nil, stat.Mean(y, nil), y)
	c0 := floatsunrolled.LagDot(centered, 0)
	if c0 == 0 {
		return nil, ErrConstantSeries
	}

	acf := make([]float64, nlags+1)
	for k := 0; k <= nlags; k++ {
		acf[k] = floatsunrolled.LagDot(centered, k) / c0
	}
	return acf, nil
}

// MaxPACFLags is the largest lag the partial autocorrelation is computed for.
func MaxPACFLags(n int) int {
	return n/2 - 1
}

// PACF returns the partial autocorrelation for lags 0 through nlags from the
// Durbin-Levinson recursion on the sample autocorrelation. Lags are clamped to
// under half of the sample size.
func PACF(y []float64, nlags int) ([]float64, error) {
	if nlags < 0 {
		return nil, fmt.Errorf("got %d lags, %w", nlags, ErrInvalidLag)
	}
	maxLags := MaxPACFLags(len(y))
	if maxLags < 1 {
		return nil, fmt.Errorf("pacf needs at least 4 observations, got %d, %w", len(y), ErrInsufficientData)
	}
	if nlags > maxLags {
		nlags = maxLags
	}

	acf, err := ACF(y, nlags)
	if err != nil {
		return nil, err
	}
	return durbinLevinson(acf), nil
}

func durbinLevinson(acf []float64) []float64 {
	nlags := len(acf) - 1
	pacf := make([]float64, nlags+1)
	pacf[0] = 1
	if nlags == 0 {
		return pacf
	}

	phi := make([]float64, nlags+1)
	prev := make([]float64, nlags+1)
	phi[1] = acf[1]
	pacf[1] = acf[1]
	for k := 2; k <= nlags; k++ {
		copy(prev, phi)
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			break
		}
		phi[k] = num / den
		for j := 1; j < k; j++ {
			phi[j] = prev[j] - phi[k]*prev[k-j]
		}
		pacf[k] = phi[k]
	}
	return pacf
}

// Correlogram holds correlations by lag and the half width of the 95% band around
// zero at each lag.
type Correlogram struct {
	Lags   []int     `json:"lags"`
	Values []float64 `json:"values"`
	Bands  []float64 `json:"bands"`
	NObs   int       `json:"nobs"`
}

// Significant returns the lags above zero whose correlation falls outside the band.
func (c *Correlogram) Significant() []int {
	var lags []int
	for i := 1; i < len(c.Values); i++ {
		if math.Abs(c.Values[i]) > c.Bands[i] {
			lags = append(lags, c.Lags[i])
		}
	}
	return lags
}

// ACFWithConfidence uses Bartlett's formula for the band width.
func ACFWithConfidence(y []float64, nlags int) (*Correlogram, error) {
	acf, err := ACF(y, nlags)
	if err != nil {
		return nil, err
	}
	n := float64(len(y))
	bands := make([]float64, len(acf))
	var cum float64
	for k := 1; k < len(acf); k++ {
		bands[k] = z95 * math.Sqrt((1+2*cum)/n)
		cum += acf[k] * acf[k]
	}
	return &Correlogram{
		Lags:   lagRange(len(acf)),
		Values: acf,
		Bands:  bands,
		NObs:   len(y),
	}, nil
}

func PACFWithConfidence(y []float64, nlags int) (*Correlogram, error) {
	pacf, err := PACF(y, nlags)
	if err != nil {
		return nil, err
	}
	band := z95 / math.Sqrt(float64(len(y)))
	bands := make([]float64, len(pacf))
	for k := 1; k < len(pacf); k++ {
		bands[k] = band
	}
	return &Correlogram{
		Lags:   lagRange(len(pacf)),
		Values: pacf,
		Bands:  bands,
		NObs:   len(y),
	}, nil
}

func lagRange(n int) []int {
	lags := make([]int, n)
	for i := range lags {
		lags[i] = i
	}
	return lags
}
