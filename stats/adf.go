package stats

import (
	"fmt"
	"math"

	mat_ "github.com/aouyang1/sarimaflow/mat"
	"github.com/aouyang1/sarimaflow/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// SignificanceLevel is the p-value threshold used to reject a unit root.
const SignificanceLevel = 0.05

const (
	HypothesisNull        = "H0: the series has a unit root (non-stationary)"
	HypothesisAlternative = "H1: the series is stationary"
	DecisionRule          = "reject H0 if p-value < 0.05"
)

// MacKinnon (1994) response surface for the constant only regression with one
// variable.
var (
	tauMaxC     = 2.74
	tauMinC     = -18.83
	tauStarC    = -1.61
	tauSmallPC  = []float64{2.1659, 1.4412, 0.038269}
	tauLargePC  = []float64{1.7339, 0.93202, -0.12745, -0.010368}
	tauCrit2010 = map[string][]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.040},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

type ADFOptions struct {
	// MaxLag is the largest number of lagged differences. Negative selects
	// ceil(12*(n/100)^(1/4)).
	MaxLag int
	// AutoLag picks the lag in [0, MaxLag] minimizing AIC. Otherwise MaxLag is used.
	AutoLag bool
}

func NewDefaultADFOptions() *ADFOptions {
	return &ADFOptions{
		MaxLag:  -1,
		AutoLag: true,
	}
}

// ADFResult is the outcome of an augmented Dickey-Fuller test with a constant.
type ADFResult struct {
	Statistic      float64            `json:"statistic"`
	PValue         float64            `json:"p_value"`
	UsedLag        int                `json:"used_lag"`
	NObs           int                `json:"nobs"`
	CriticalValues map[string]float64 `json:"critical_values"`
	IsStationary   bool               `json:"is_stationary"`
}

// Conclusion describes the decision at the 5% level.
func (r *ADFResult) Conclusion() string {
	if r.IsStationary {
		return fmt.Sprintf("p-value = %.4e < 0.05, the series is stationary", r.PValue)
	}
	return fmt.Sprintf("p-value = %.4e >= 0.05, the series is not stationary", r.PValue)
}

func defaultADFMaxLag(n int) int {
	return int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
}

// ADF runs the augmented Dickey-Fuller unit root test regressing the first
// difference on a constant, the lagged level and lagged differences.
func ADF(y []float64, opt *ADFOptions) (*ADFResult, error) {
	if opt == nil {
		opt = NewDefaultADFOptions()
	}
	if hasNaN(y) {
		return nil, ErrNaNInput
	}
	n := len(y)
	if n > 0 && isConstant(y) {
		return nil, ErrConstantSeries
	}

	// one trend term
	limit := n/2 - 2
	maxLag := opt.MaxLag
	if maxLag < 0 {
		maxLag = min(defaultADFMaxLag(n), limit)
		if maxLag < 0 {
			return nil, fmt.Errorf("%d observations is too short for the test, %w", n, ErrInsufficientData)
		}
	} else if maxLag > limit {
		return nil, fmt.Errorf("max lag %d must be at most %d for %d observations, %w", maxLag, limit, n, ErrInsufficientData)
	}

	dy := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dy[i-1] = y[i] - y[i-1]
	}

	usedLag := maxLag
	if opt.AutoLag && maxLag > 0 {
		best, err := adfAutoLag(y, dy, maxLag)
		if err != nil {
			return nil, err
		}
		usedLag = best
	}

	reg, err := adfRegression(y, dy, usedLag, usedLag)
	if err != nil {
		return nil, err
	}
	stat := reg.TValues()[0]
	nobs := reg.NObs()

	crit := make(map[string]float64, len(tauCrit2010))
	for level, b := range tauCrit2010 {
		inv := 1 / float64(nobs)
		crit[level] = b[0] + b[1]*inv + b[2]*inv*inv + b[3]*inv*inv*inv
	}

	p := MacKinnonPValue(stat)
	return &ADFResult{
		Statistic:      stat,
		PValue:         p,
		UsedLag:        usedLag,
		NObs:           nobs,
		CriticalValues: crit,
		IsStationary:   p < SignificanceLevel,
	}, nil
}

// adfRegression fits dy_t on [level_{t-1}, dy_{t-1}..dy_{t-lags}] and a constant over
// the rows available when trimming maxLag lags.
func adfRegression(y, dy []float64, lags, maxLag int) (*models.OLSRegression, error) {
	lagged, err := mat_.LagMatrix(dy, maxLag)
	if err != nil {
		return nil, fmt.Errorf("unable to build lag matrix, %w", err)
	}
	rows, _ := lagged.Dims()

	x := mat_.ColumnSlice(lagged, 0, lags+1)
	target := mat.NewDense(rows, 1, nil)
	for r := 0; r < rows; r++ {
		t := maxLag + r
		target.Set(r, 0, dy[t])
		x.Set(r, 0, y[t])
	}

	reg, err := models.NewOLSRegression(nil)
	if err != nil {
		return nil, err
	}
	if err := reg.Fit(x, target); err != nil {
		return nil, fmt.Errorf("unable to fit adf regression, %w", err)
	}
	return reg, nil
}

func adfAutoLag(y, dy []float64, maxLag int) (int, error) {
	best := -1
	bestAIC := math.Inf(1)
	for lags := 0; lags <= maxLag; lags++ {
		reg, err := adfRegression(y, dy, lags, maxLag)
		if err != nil {
			return 0, err
		}
		if aic := reg.AIC(); aic < bestAIC {
			bestAIC = aic
			best = lags
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no finite information criterion, %w", ErrInsufficientData)
	}
	return best, nil
}

// MacKinnonPValue approximates the p-value of a Dickey-Fuller statistic for the
// constant only regression.
func MacKinnonPValue(stat float64) float64 {
	if stat > tauMaxC {
		return 1.0
	}
	if stat < tauMinC {
		return 0.0
	}
	coef := tauLargePC
	if stat <= tauStarC {
		coef = tauSmallPC
	}
	var poly, pow float64 = 0, 1
	for _, c := range coef {
		poly += c * pow
		pow *= stat
	}
	return distuv.UnitNormal.CDF(poly)
}
