package sarima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Forecast holds out-of-sample predictions on the original scale.
type Forecast struct {
	Mean       []float64
	Lower      []float64
	Upper      []float64
	StdErr     []float64
	Confidence float64
}

// forecastDifferenced extends the differenced series by steps with future shocks at zero.
func (m *Model) forecastDifferenced(steps int) []float64 {
	f := m.filter()
	n := len(m.w)
	nAR, nMA := len(f.a), len(f.b)
	fill := f.processMean(m.w)

	wExt := make([]float64, n+steps)
	copy(wExt, m.w)
	eExt := make([]float64, n+steps)
	for t, e := range m.resid {
		if !math.IsNaN(e) {
			eExt[t] = e
		}
	}

	out := make([]float64, steps)
	for h := 0; h < steps; h++ {
		t := n + h
		v := f.c
		for j := 1; j <= nAR; j++ {
			if t-j >= 0 {
				v += f.a[j-1] * wExt[t-j]
			} else {
				v += f.a[j-1] * fill
			}
		}
		for j := 1; j <= nMA; j++ {
			if t-j >= 0 {
				v += f.b[j-1] * eExt[t-j]
			}
		}
		wExt[t] = v
		out[h] = v
	}
	return out
}

// integrate maps differenced values following the training series back to levels.
func (m *Model) integrate(w []float64) []float64 {
	delta := diffCoefficients(m.order.D, m.order.SD, m.order.M)
	n := len(m.y)
	yExt := make([]float64, n+len(w))
	copy(yExt, m.y)
	for h, v := range w {
		t := n + h
		for j, d := range delta {
			v += d * yExt[t-j-1]
		}
		yExt[t] = v
	}
	return yExt[n:]
}

// Forecast predicts steps values following the end of the training series.
func (m *Model) Forecast(steps int) ([]float64, error) {
	if !m.IsFitted() {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, fmt.Errorf("got %d, %w", steps, ErrInvalidSteps)
	}
	out := m.integrate(m.forecastDifferenced(steps))
	if !finite(out) {
		return nil, fmt.Errorf("%s over %d steps, %w", m.order, steps, ErrNonFinite)
	}
	return out, nil
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ForecastWithInterval adds symmetric normal intervals whose variance grows with the
// psi weights of the integrated process.
func (m *Model) ForecastWithInterval(steps int, confidence float64) (*Forecast, error) {
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("got %g, %w", confidence, ErrInvalidConfidence)
	}
	mean, err := m.Forecast(steps)
	if err != nil {
		return nil, err
	}

	f := m.filter()
	delta := diffCoefficients(m.order.D, m.order.SD, m.order.M)
	psi := psiWeights(combineAR(f.a, delta), f.b, steps)
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)

	res := &Forecast{
		Mean:       mean,
		Lower:      make([]float64, steps),
		Upper:      make([]float64, steps),
		StdErr:     make([]float64, steps),
		Confidence: confidence,
	}
	var acc float64
	for h := 0; h < steps; h++ {
		acc += psi[h] * psi[h]
		se := math.Sqrt(m.sigma2 * acc)
		res.StdErr[h] = se
		res.Lower[h] = mean[h] - z*se
		res.Upper[h] = mean[h] + z*se
	}
	return res, nil
}

// PredictInSample returns one-step-ahead predictions aligned with the training
// series. Observations consumed by differencing have no prediction and are NaN.
func (m *Model) PredictInSample() ([]float64, error) {
	if !m.IsFitted() {
		return nil, ErrNotFitted
	}
	f := m.filter()
	predW, _ := f.run(m.w, m.start(), f.processMean(m.w))

	delta := diffCoefficients(m.order.D, m.order.SD, m.order.M)
	lag := m.order.diffLen()
	out := make([]float64, len(m.y))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		v := predW[i-lag]
		for j, d := range delta {
			v += d * m.y[i-j-1]
		}
		out[i] = v
	}
	if !finite(out[lag:]) {
		return nil, fmt.Errorf("%s in sample, %w", m.order, ErrNonFinite)
	}
	return out, nil
}

// Residuals are aligned with the training series. Entries without a conditional
// residual are NaN.
func (m *Model) Residuals() ([]float64, error) {
	if !m.IsFitted() {
		return nil, ErrNotFitted
	}
	lag := m.order.diffLen()
	out := make([]float64, len(m.y))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		out[i] = m.resid[i-lag]
	}
	return out, nil
}
