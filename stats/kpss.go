package stats

import (
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/floatsunrolled"
	"gonum.org/v1/gonum/stat"
)

// KPSSRegression selects the deterministic component removed before the test.
type KPSSRegression string

const (
	KPSSLevel KPSSRegression = "c"
	KPSSTrend KPSSRegression = "ct"
)

// critical values at 10%, 5%, 2.5% and 1%
var (
	kpssPValues    = []float64{0.10, 0.05, 0.025, 0.01}
	kpssLevelTable = []float64{0.347, 0.463, 0.574, 0.739}
	kpssTrendTable = []float64{0.119, 0.146, 0.176, 0.216}
)

type KPSSResult struct {
	Statistic    float64 `json:"statistic"`
	PValue       float64 `json:"p_value"`
	Lags         int     `json:"lags"`
	IsStationary bool    `json:"is_stationary"`
}

// KPSS tests the null hypothesis of stationarity around a level or trend. A negative
// nlags selects trunc(3*sqrt(n)/13). The p-value is interpolated from the published
// table and clipped to [0.01, 0.10].
func KPSS(y []float64, regression KPSSRegression, nlags int) (*KPSSResult, error) {
	n := len(y)
	if n < 3 {
		return nil, fmt.Errorf("kpss needs at least 3 observations, got %d, %w", n, ErrInsufficientData)
	}
	if hasNaN(y) {
		return nil, ErrNaNInput
	}
	if nlags < 0 {
		nlags = int(math.Trunc(3 * math.Sqrt(float64(n)) / 13))
	}
	if nlags > n-1 {
		nlags = n - 1
	}

	var resid []float64
	table := kpssLevelTable
	switch regression {
	case KPSSTrend:
		table = kpssTrendTable
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i)
		}
		alpha, beta := stat.LinearRegression(t, y, nil, false)
		resid = make([]float64, n)
		for i := range y {
			resid[i] = y[i] - alpha - beta*t[i]
		}
	default:
		resid = floatsunrolled.SubConstTo(nil, stat.Mean(y, nil), y)
	}

	s2 := floatsunrolled.LagDot(resid, 0)
	for l := 1; l <= nlags; l++ {
		w := 1 - float64(l)/float64(nlags+1)
		s2 += 2 * w * floatsunrolled.LagDot(resid, l)
	}
	s2 /= float64(n)

	var eta, cum float64
	for _, r := range resid {
		cum += r
		eta += cum * cum
	}
	var statistic float64
	if s2 > 0 {
		statistic = eta / (float64(n) * float64(n) * s2)
	}

	p := interpolateClipped(statistic, table, kpssPValues)
	return &KPSSResult{
		Statistic:    statistic,
		PValue:       p,
		Lags:         nlags,
		IsStationary: p >= SignificanceLevel,
	}, nil
}

// interpolateClipped linearly interpolates x over ascending xs, clamping to the end
// points.
func interpolateClipped(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	for i := 1; i <= last; i++ {
		if x <= xs[i] {
			frac := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + frac*(ys[i]-ys[i-1])
		}
	}
	return ys[last]
}
