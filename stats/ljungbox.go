package stats

import (
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/nullable"
	"gonum.org/v1/gonum/stat/distuv"
)

type LjungBoxResult struct {
	Statistic float64        `json:"statistic"`
	PValue    nullable.Float `json:"p_value"`
	Lags      int            `json:"lags"`
	DOF       int            `json:"dof"`
}

// WhiteNoise reports whether no autocorrelation is detected at the 5% level.
func (r *LjungBoxResult) WhiteNoise() bool {
	p := float64(r.PValue)
	return math.IsNaN(p) || p >= SignificanceLevel
}

// DefaultLjungBoxLags is min(10, n/5) with a floor of one.
func DefaultLjungBoxLags(n int) int {
	return max(1, min(10, n/5))
}

// LjungBox tests residuals for autocorrelation up to lags. fitdf is subtracted from
// the degrees of freedom; the p-value is NaN when none remain.
func LjungBox(resid []float64, lags, fitdf int) (*LjungBoxResult, error) {
	n := len(resid)
	if lags < 1 {
		return nil, fmt.Errorf("got %d lags, %w", lags, ErrInvalidLag)
	}
	if n < 2 {
		return nil, fmt.Errorf("ljung-box needs at least 2 observations, got %d, %w", n, ErrInsufficientData)
	}
	if lags > n-1 {
		lags = n - 1
	}

	acf, err := ACF(resid, lags)
	if err != nil {
		return nil, err
	}

	var q float64
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lags - fitdf
	p := math.NaN()
	if dof > 0 {
		p = distuv.ChiSquared{K: float64(dof)}.Survival(q)
	}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    nullable.Float(p),
		Lags:      lags,
		DOF:       dof,
	}, nil
}
