package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SeasonalStrengthThreshold is the strength at or above which a seasonal difference
// is taken.
const SeasonalStrengthThreshold = 0.64

// Diff returns y[t] - y[t-lag].
func Diff(y []float64, lag int) []float64 {
	if lag < 1 || lag >= len(y) {
		return []float64{}
	}
	out := make([]float64, len(y)-lag)
	for i := lag; i < len(y); i++ {
		out[i-lag] = y[i] - y[i-lag]
	}
	return out
}

// Difference applies d first differences followed by D seasonal differences at
// period s.
func Difference(y []float64, d, seasonalD, s int) ([]float64, error) {
	if d < 0 || seasonalD < 0 {
		return nil, fmt.Errorf("got d=%d D=%d, %w", d, seasonalD, ErrInvalidOrder)
	}
	if seasonalD > 0 && s < 1 {
		return nil, fmt.Errorf("D=%d with s=%d, %w", seasonalD, s, ErrSeasonalPeriodRequired)
	}
	need := d + seasonalD*s
	if len(y) <= need {
		return nil, fmt.Errorf(
			"differencing consumes %d of %d observations, %w",
			need, len(y), ErrInsufficientData,
		)
	}

	out := make([]float64, len(y))
	copy(out, y)
	for i := 0; i < d; i++ {
		out = Diff(out, 1)
	}
	for i := 0; i < seasonalD; i++ {
		out = Diff(out, s)
	}
	return out, nil
}

// NDiffs returns the number of first differences, up to maxD, after which the KPSS
// level test no longer rejects stationarity.
func NDiffs(y []float64, maxD int) int {
	x := y
	for d := 0; d < maxD; d++ {
		if len(x) < 3 || isConstant(x) {
			return d
		}
		res, err := KPSS(x, KPSSLevel, -1)
		if err != nil || res.IsStationary {
			return d
		}
		x = Diff(x, 1)
	}
	return maxD
}

// NSDiffs returns the number of seasonal differences, up to maxD, while the seasonal
// strength stays at or above the threshold.
func NSDiffs(y []float64, period, maxD int) int {
	if period <= 1 {
		return 0
	}
	x := y
	for d := 0; d < maxD; d++ {
		if len(x) < 2*period {
			return d
		}
		if SeasonalStrength(x, period) < SeasonalStrengthThreshold {
			return d
		}
		x = Diff(x, period)
	}
	return maxD
}

// Decomposition is a classical additive decomposition. Entries of Trend and
// Residual at the edges are NaN.
type Decomposition struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
}

// Decompose uses a centered moving average of the period for the trend.
func Decompose(y []float64, period int) (*Decomposition, error) {
	n := len(y)
	if period < 2 || n < 2*period {
		return nil, fmt.Errorf("period %d with %d observations, %w", period, n, ErrInsufficientData)
	}

	trend := make([]float64, n)
	half := period / 2
	for i := range trend {
		trend[i] = math.NaN()
	}
	for i := half; i < n-half; i++ {
		if period%2 == 1 {
			trend[i] = stat.Mean(y[i-half:i+half+1], nil)
			continue
		}
		sum := 0.5*y[i-half] + 0.5*y[i+half]
		for j := i - half + 1; j < i+half; j++ {
			sum += y[j]
		}
		trend[i] = sum / float64(period)
	}

	means := make([]float64, period)
	counts := make([]int, period)
	for i := 0; i < n; i++ {
		if math.IsNaN(trend[i]) {
			continue
		}
		means[i%period] += y[i] - trend[i]
		counts[i%period]++
	}
	var total float64
	for j := range means {
		if counts[j] > 0 {
			means[j] /= float64(counts[j])
		}
		total += means[j]
	}
	offset := total / float64(period)

	seasonal := make([]float64, n)
	resid := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = means[i%period] - offset
		resid[i] = y[i] - trend[i] - seasonal[i]
	}
	return &Decomposition{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: resid,
	}, nil
}

// SeasonalStrength is max(0, 1 - Var(R)/Var(S+R)) of the classical decomposition,
// or 0 when the series is too short.
func SeasonalStrength(y []float64, period int) float64 {
	dec, err := Decompose(y, period)
	if err != nil {
		return 0
	}
	var r, sr []float64
	for i := range dec.Residual {
		if math.IsNaN(dec.Residual[i]) {
			continue
		}
		r = append(r, dec.Residual[i])
		sr = append(sr, dec.Residual[i]+dec.Seasonal[i])
	}
	if len(r) < 2 {
		return 0
	}
	varSR := stat.Variance(sr, nil)
	if varSR == 0 {
		return 0
	}
	return math.Max(0, 1-stat.Variance(r, nil)/varSR)
}
