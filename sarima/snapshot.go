package sarima

import (
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/nullable"
	"github.com/aouyang1/sarimaflow/stats"
)

// Snapshot is the serializable form of a fitted model. The training series is kept so
// the residual recursion can be rebuilt without refitting.
type Snapshot struct {
	Order         Order           `json:"order"`
	Options       Options         `json:"options"`
	Intercept     float64         `json:"intercept"`
	AR            []float64       `json:"ar"`
	MA            []float64       `json:"ma"`
	SAR           []float64       `json:"sar"`
	SMA           []float64       `json:"sma"`
	Sigma2        float64         `json:"sigma2"`
	LogLikelihood float64         `json:"log_likelihood"`
	NObs          int             `json:"nobs"`
	StdErr        nullable.Floats `json:"std_err"`
	Train         []float64       `json:"train"`
}

func (m *Model) Snapshot() (*Snapshot, error) {
	if !m.IsFitted() {
		return nil, ErrNotFitted
	}
	return &Snapshot{
		Order:         m.order,
		Options:       *m.opt,
		Intercept:     m.intercept,
		AR:            m.AR(),
		MA:            m.MA(),
		SAR:           m.SAR(),
		SMA:           m.SMA(),
		Sigma2:        m.sigma2,
		LogLikelihood: m.loglik,
		NObs:          m.nobs,
		StdErr:        append(nullable.Floats(nil), m.stdErr...),
		Train:         m.TrainingData(),
	}, nil
}

// NewFromSnapshot restores a fitted model.
func NewFromSnapshot(s *Snapshot) (*Model, error) {
	if s == nil {
		return nil, ErrInvalidSnapshot
	}
	m, err := New(s.Order, &s.Options)
	if err != nil {
		return nil, fmt.Errorf("unable to restore model, %w", err)
	}
	o := s.Order
	if len(s.AR) != o.P || len(s.MA) != o.Q || len(s.SAR) != o.SP || len(s.SMA) != o.SQ {
		return nil, fmt.Errorf("coefficient lengths do not match %s, %w", o, ErrInvalidSnapshot)
	}
	if len(s.Train) == 0 || s.NObs <= 0 || !(s.Sigma2 > 0) {
		return nil, ErrInvalidSnapshot
	}

	w, err := stats.Difference(s.Train, o.D, o.SD, o.M)
	if err != nil {
		return nil, fmt.Errorf("unable to difference training series, %v, %w", err, ErrInvalidSnapshot)
	}

	m.intercept = s.Intercept
	m.ar = append([]float64(nil), s.AR...)
	m.ma = append([]float64(nil), s.MA...)
	m.sar = append([]float64(nil), s.SAR...)
	m.sma = append([]float64(nil), s.SMA...)
	if !m.opt.WithIntercept {
		m.intercept = 0
	}
	m.sigma2 = s.Sigma2
	m.loglik = s.LogLikelihood
	m.nobs = s.NObs
	m.stdErr = make([]float64, m.numParams())
	for i := range m.stdErr {
		m.stdErr[i] = math.NaN()
		if i < len(s.StdErr) {
			m.stdErr[i] = s.StdErr[i]
		}
	}
	m.y = append([]float64(nil), s.Train...)
	m.w = w
	_, m.resid = m.filter().run(w, m.start(), 0)
	m.fitted = true
	return m, nil
}
