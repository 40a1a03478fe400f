// Package sarima fits seasonal ARIMA models by conditional sum of squares and
// produces forecasts and in-sample predictions on the original scale.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/floatsunrolled"
	"github.com/aouyang1/sarimaflow/stats"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultMaxIterations = 2000
	DefaultTolerance     = 1e-8

	// floor for the innovation variance so the likelihood stays finite on exact fits
	minSigma2 = 1e-300
)

type Options struct {
	WithIntercept bool    `json:"with_intercept"`
	MaxIterations int     `json:"max_iterations"`
	Tolerance     float64 `json:"tolerance"`

	// ConditionStart is the first differenced observation entering the sum of
	// squares. Orders whose autoregressive polynomial is longer start later.
	ConditionStart int `json:"condition_start,omitempty"`
}

func NewDefaultOptions() *Options {
	return &Options{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
	}
}

// Validate fills unset fields with defaults.
func (o *Options) Validate() *Options {
	if o == nil {
		return NewDefaultOptions()
	}
	out := *o
	if out.MaxIterations <= 0 {
		out.MaxIterations = DefaultMaxIterations
	}
	if out.Tolerance <= 0 {
		out.Tolerance = DefaultTolerance
	}
	if out.ConditionStart < 0 {
		out.ConditionStart = 0
	}
	return &out
}

// Model is a SARIMA(p,d,q)x(P,D,Q)s model estimated on a single training series.
type Model struct {
	order Order
	opt   *Options

	intercept float64
	ar        []float64
	ma        []float64
	sar       []float64
	sma       []float64

	sigma2 float64
	loglik float64
	nobs   int
	stdErr []float64

	y      []float64
	w      []float64
	resid  []float64
	fitted bool
}

func New(order Order, opt *Options) (*Model, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		order: order,
		opt:   opt.Validate(),
	}, nil
}

func (m *Model) Order() Order {
	return m.order
}

func (m *Model) Options() Options {
	return *m.opt
}

func (m *Model) IsFitted() bool {
	return m != nil && m.fitted
}

// start is the index of the first residual in the sum of squares.
func (m *Model) start() int {
	if m.opt.ConditionStart > m.order.arLen() {
		return m.opt.ConditionStart
	}
	return m.order.arLen()
}

// numParams counts the estimated mean equation parameters.
func (m *Model) numParams() int {
	n := m.order.P + m.order.Q + m.order.SP + m.order.SQ
	if m.opt.WithIntercept {
		n++
	}
	return n
}

func (m *Model) pack() []float64 {
	x := make([]float64, 0, m.numParams())
	if m.opt.WithIntercept {
		x = append(x, m.intercept)
	}
	x = append(x, m.ar...)
	x = append(x, m.ma...)
	x = append(x, m.sar...)
	x = append(x, m.sma...)
	return x
}

func (m *Model) unpack(x []float64) {
	i := 0
	m.intercept = 0
	if m.opt.WithIntercept {
		m.intercept = x[0]
		i++
	}
	take := func(n int) []float64 {
		out := make([]float64, n)
		copy(out, x[i:i+n])
		i += n
		return out
	}
	m.ar = take(m.order.P)
	m.ma = take(m.order.Q)
	m.sar = take(m.order.SP)
	m.sma = take(m.order.SQ)
}

// filter is the ARMA recursion on the differenced series with expanded lag
// polynomials stored reversed for windowed dot products.
type filter struct {
	c  float64
	a  []float64
	b  []float64
	ar []float64
	ma []float64
}

func newFilter(c float64, ar, ma, sar, sma []float64, s int) filter {
	a := arCoefficients(ar, sar, s)
	b := maCoefficients(ma, sma, s)
	return filter{
		c:  c,
		a:  a,
		b:  b,
		ar: floatsunrolled.Reverse(a),
		ma: floatsunrolled.Reverse(b),
	}
}

func (m *Model) filter() filter {
	return newFilter(m.intercept, m.ar, m.ma, m.sar, m.sma, m.order.M)
}

func (m *Model) filterFor(x []float64) filter {
	tmp := &Model{order: m.order, opt: m.opt}
	tmp.unpack(x)
	return tmp.filter()
}

// processMean is the unconditional mean of the differenced series implied by the
// parameters, falling back to the sample mean for a unit root.
func (f filter) processMean(w []float64) float64 {
	var sum float64
	for _, v := range f.a {
		sum += v
	}
	if math.Abs(1-sum) < 1e-8 {
		return stat.Mean(w, nil)
	}
	return f.c / (1 - sum)
}

// run returns one-step predictions and residuals over w. Residuals are computed from
// start onward; before start the prediction uses fill for missing history and the
// residual is NaN and treated as zero by the moving average terms.
func (f filter) run(w []float64, start int, fill float64) ([]float64, []float64) {
	nAR, nMA := len(f.ar), len(f.ma)
	n := len(w)

	wBuf := make([]float64, nAR+n)
	for i := 0; i < nAR; i++ {
		wBuf[i] = fill
	}
	copy(wBuf[nAR:], w)
	eBuf := make([]float64, nMA+n)

	pred := make([]float64, n)
	resid := make([]float64, n)
	for t := 0; t < n; t++ {
		v := f.c + floatsunrolled.Dot(f.ar, wBuf[t:t+nAR]) + floatsunrolled.Dot(f.ma, eBuf[t:t+nMA])
		pred[t] = v
		if t < start {
			resid[t] = math.NaN()
			continue
		}
		e := w[t] - v
		resid[t] = e
		eBuf[nMA+t] = e
	}
	return pred, resid
}

func sumSquares(resid []float64, start int) float64 {
	var sse float64
	for _, e := range resid[start:] {
		sse += e * e
	}
	return sse
}

// Fit estimates the parameters on y by minimizing the conditional sum of squares of
// the differenced series with Nelder-Mead. Stationarity and invertibility are not
// enforced.
func (m *Model) Fit(y []float64) error {
	for _, v := range y {
		if math.IsNaN(v) {
			return ErrNaNInput
		}
	}

	w, err := stats.Difference(y, m.order.D, m.order.SD, m.order.M)
	if err != nil {
		if errors.Is(err, stats.ErrInsufficientData) {
			return fmt.Errorf("%s with %d observations, %w", m.order, len(y), ErrInsufficientData)
		}
		return fmt.Errorf("unable to difference series, %w", err)
	}

	start := m.start()
	k := m.numParams() + 1
	nEff := len(w) - start
	if nEff < k+2 {
		return fmt.Errorf(
			"%s leaves %d usable observations for %d parameters, %w",
			m.order, nEff, k, ErrInsufficientData,
		)
	}

	m.y = append([]float64(nil), y...)
	m.w = w
	m.unpack(make([]float64, m.numParams()))
	if m.opt.WithIntercept {
		m.intercept = stat.Mean(w, nil)
	}

	objective := func(x []float64) float64 {
		_, resid := m.filterFor(x).run(w, start, 0)
		sse := sumSquares(resid, start)
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			return math.Inf(1)
		}
		return sse
	}

	x := m.pack()
	if len(x) > 0 {
		x, err = m.minimize(objective, x)
		if err != nil {
			return err
		}
		m.unpack(x)
	}

	_, resid := m.filter().run(w, start, 0)
	sse := sumSquares(resid, start)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return ErrOptimizationFailed
	}

	m.resid = resid
	m.nobs = nEff
	m.sigma2 = math.Max(sse/float64(nEff), minSigma2)
	m.loglik = concentratedLogLik(m.sigma2, nEff)
	m.stdErr = m.standardErrors(objective, x, nEff)
	m.fitted = true
	return nil
}

func concentratedLogLik(sigma2 float64, n int) float64 {
	nf := float64(n)
	return -nf / 2 * (math.Log(2*math.Pi*sigma2) + 1)
}

// minimize runs Nelder-Mead twice, restarting from the first optimum.
func (m *Model) minimize(objective func([]float64) float64, x0 []float64) ([]float64, error) {
	problem := optimize.Problem{Func: objective}
	best := x0
	bestF := objective(x0)

	for restart := 0; restart < 2; restart++ {
		settings := &optimize.Settings{
			MajorIterations: m.opt.MaxIterations,
			Converger: &optimize.FunctionConverge{
				Absolute:   m.opt.Tolerance,
				Relative:   m.opt.Tolerance,
				Iterations: 100,
			},
		}
		result, err := optimize.Minimize(problem, best, settings, &optimize.NelderMead{})
		if result == nil {
			if err != nil {
				return nil, fmt.Errorf("%s, %v, %w", m.order, err, ErrOptimizationFailed)
			}
			break
		}
		if !math.IsInf(result.F, 0) && !math.IsNaN(result.F) && result.F <= bestF {
			best = result.X
			bestF = result.F
		}
	}

	if math.IsInf(bestF, 0) || math.IsNaN(bestF) {
		return nil, fmt.Errorf("%s, %w", m.order, ErrOptimizationFailed)
	}
	return best, nil
}

// standardErrors inverts a numerical Hessian of the negative concentrated log
// likelihood. Entries are NaN when the Hessian is not positive definite.
func (m *Model) standardErrors(objective func([]float64) float64, x []float64, n int) []float64 {
	se := make([]float64, len(x))
	for i := range se {
		se[i] = math.NaN()
	}
	if len(x) == 0 {
		return se
	}

	nf := float64(n)
	negLogLik := func(p []float64) float64 {
		sse := objective(p)
		return nf / 2 * math.Log(math.Max(sse/nf, minSigma2))
	}

	var hess mat.SymDense
	fd.Hessian(&hess, negLogLik, x, &fd.Settings{Formula: fd.Central, Step: 1e-4})

	var chol mat.Cholesky
	if ok := chol.Factorize(&hess); !ok {
		return se
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return se
	}
	for i := range se {
		if v := cov.At(i, i); v > 0 {
			se[i] = math.Sqrt(v)
		}
	}
	return se
}

func (m *Model) Sigma2() float64 {
	return m.sigma2
}

func (m *Model) LogLikelihood() float64 {
	return m.loglik
}

// NObs is the number of residuals entering the likelihood.
func (m *Model) NObs() int {
	return m.nobs
}

// NumEstimated counts the estimated parameters including the innovation variance.
func (m *Model) NumEstimated() int {
	return m.numParams() + 1
}

func (m *Model) AIC() float64 {
	return -2*m.loglik + 2*float64(m.NumEstimated())
}

func (m *Model) BIC() float64 {
	return -2*m.loglik + math.Log(float64(m.nobs))*float64(m.NumEstimated())
}

func (m *Model) AICc() float64 {
	k := float64(m.NumEstimated())
	n := float64(m.nobs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return m.AIC() + 2*k*(k+1)/(n-k-1)
}

func (m *Model) Intercept() float64 {
	return m.intercept
}

func (m *Model) AR() []float64  { return append([]float64(nil), m.ar...) }
func (m *Model) MA() []float64  { return append([]float64(nil), m.ma...) }
func (m *Model) SAR() []float64 { return append([]float64(nil), m.sar...) }
func (m *Model) SMA() []float64 { return append([]float64(nil), m.sma...) }

// TrainingData returns a copy of the series the model was fit on.
func (m *Model) TrainingData() []float64 {
	return append([]float64(nil), m.y...)
}
