package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		return NewDefaultOLSOptions(), nil
	}
	return o, nil
}

// OLSRegression computes ordinary least squares using QR factorization. Besides the
// coefficients it keeps the inference quantities needed by unit root tests.
type OLSRegression struct {
	opt       *OLSOptions
	coef      []float64
	intercept float64
	stdErr    []float64
	ssr       float64
	nobs      int
	fitted    bool
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

func (o *OLSRegression) design(x mat.Matrix) mat.Matrix {
	if !o.opt.FitIntercept {
		return x
	}
	m, n := x.Dims()
	d := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		d.Set(i, 0, 1.0)
		for j := 0; j < n; j++ {
			d.Set(i, j+1, x.At(i, j))
		}
	}
	return d
}

func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, _ := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	d := o.design(x)
	_, n := d.Dims()
	if m < n {
		return fmt.Errorf("%d rows for %d features, %w", m, n, ErrInsufficientRows)
	}

	qr := new(mat.QR)
	qr.Factorize(d)

	beta := new(mat.Dense)
	if err := qr.SolveTo(beta, false, y); err != nil {
		return fmt.Errorf("unable to solve least squares, %w", ErrSingularDesign)
	}

	c := mat.Col(nil, 0, beta)
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrSingularDesign
		}
	}

	fit := new(mat.Dense)
	fit.Mul(d, beta)
	var ssr float64
	for i := 0; i < m; i++ {
		r := y.At(i, 0) - fit.At(i, 0)
		ssr += r * r
	}

	stdErr := make([]float64, n)
	if m > n {
		xtx := new(mat.Dense)
		xtx.Mul(d.T(), d)
		inv := new(mat.Dense)
		if err := inv.Inverse(xtx); err != nil {
			return fmt.Errorf("unable to invert normal equations, %w", ErrSingularDesign)
		}
		sigma2 := ssr / float64(m-n)
		for i := 0; i < n; i++ {
			stdErr[i] = math.Sqrt(sigma2 * inv.At(i, i))
		}
	} else {
		for i := range stdErr {
			stdErr[i] = math.NaN()
		}
	}

	if o.opt.FitIntercept {
		o.intercept = c[0]
		o.coef = c[1:]
	} else {
		o.intercept = 0
		o.coef = c
	}
	o.stdErr = stdErr
	o.ssr = ssr
	o.nobs = m
	o.fitted = true

	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if !o.fitted {
		return nil, ErrNotFitted
	}

	m, n := x.Dims()
	if n != len(o.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(o.coef), ErrFeatureLenMismatch)
	}

	res := make([]float64, m)
	for i := 0; i < m; i++ {
		v := o.intercept
		for j := 0; j < n; j++ {
			v += o.coef[j] * x.At(i, j)
		}
		res[i] = v
	}
	return res, nil
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if o.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := o.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	return stat.RSquaredFrom(res, ySlice, nil), nil
}

func (o *OLSRegression) Intercept() float64 {
	return o.intercept
}

func (o *OLSRegression) Coef() []float64 {
	c := make([]float64, len(o.coef))
	copy(c, o.coef)
	return c
}

// StdErr returns the standard errors aligned with Coef.
func (o *OLSRegression) StdErr() []float64 {
	if o.opt.FitIntercept && len(o.stdErr) > 0 {
		return append([]float64(nil), o.stdErr[1:]...)
	}
	return append([]float64(nil), o.stdErr...)
}

// InterceptStdErr is NaN when no intercept was fit.
func (o *OLSRegression) InterceptStdErr() float64 {
	if !o.opt.FitIntercept || len(o.stdErr) == 0 {
		return math.NaN()
	}
	return o.stdErr[0]
}

// TValues returns coefficient / standard error for each entry of Coef.
func (o *OLSRegression) TValues() []float64 {
	se := o.StdErr()
	t := make([]float64, len(o.coef))
	for i, c := range o.coef {
		t[i] = c / se[i]
	}
	return t
}

func (o *OLSRegression) SSR() float64 {
	return o.ssr
}

func (o *OLSRegression) NObs() int {
	return o.nobs
}

// NumParams counts the coefficients including the intercept.
func (o *OLSRegression) NumParams() int {
	if o.opt.FitIntercept {
		return len(o.coef) + 1
	}
	return len(o.coef)
}

// LogLikelihood is the gaussian log likelihood at the least squares estimate.
func (o *OLSRegression) LogLikelihood() float64 {
	n := float64(o.nobs)
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(o.ssr/n) + 1)
}

func (o *OLSRegression) AIC() float64 {
	return -2*o.LogLikelihood() + 2*float64(o.NumParams())
}

func (o *OLSRegression) BIC() float64 {
	return -2*o.LogLikelihood() + math.Log(float64(o.nobs))*float64(o.NumParams())
}
