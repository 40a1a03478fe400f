// Package autoarima selects SARIMA orders with a stepwise search over the AR and MA
// orders after choosing the differencing orders with unit root and seasonal strength
// tests.
package autoarima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/sarimaflow/nullable"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/stats"
)

const (
	DefaultMaxP      = 3
	DefaultMaxD      = 2
	DefaultMaxQ      = 3
	DefaultMaxSP     = 2
	DefaultMaxSD     = 1
	DefaultMaxSQ     = 2
	DefaultMaxModels = 100
	DefaultPeriod    = 12

	MinPeriod = 1
	MaxPeriod = 24
)

var (
	ErrInvalidPeriod = errors.New("seasonal period out of range")
	ErrNoModel       = errors.New("no candidate model could be fit")
)

type Criterion string

const (
	CriterionAIC  Criterion = "aic"
	CriterionAICc Criterion = "aicc"
	CriterionBIC  Criterion = "bic"
)

func (c Criterion) score(m *sarima.Model) float64 {
	switch c {
	case CriterionAICc:
		return m.AICc()
	case CriterionBIC:
		return m.BIC()
	default:
		return m.AIC()
	}
}

// Candidate records one evaluated order.
type Candidate struct {
	Order     sarima.Order   `json:"order"`
	Intercept bool           `json:"intercept"`
	Score     nullable.Float `json:"score"`
	NObs      int            `json:"nobs,omitempty"`
	Err       string         `json:"error,omitempty"`
}

type Options struct {
	MaxP      int       `json:"max_p"`
	MaxD      int       `json:"max_d"`
	MaxQ      int       `json:"max_q"`
	MaxSP     int       `json:"max_seasonal_p"`
	MaxSD     int       `json:"max_seasonal_d"`
	MaxSQ     int       `json:"max_seasonal_q"`
	MaxModels int       `json:"max_models"`
	Period    int       `json:"period"`
	Criterion Criterion `json:"criterion"`

	// D and SD fix the differencing orders when non-negative.
	D  int `json:"d"`
	SD int `json:"seasonal_d"`

	Fit *sarima.Options `json:"fit,omitempty"`

	// OnCandidate is called after every fit attempt.
	OnCandidate func(Candidate) `json:"-"`
}

func NewDefaultOptions() *Options {
	return &Options{
		MaxP:      DefaultMaxP,
		MaxD:      DefaultMaxD,
		MaxQ:      DefaultMaxQ,
		MaxSP:     DefaultMaxSP,
		MaxSD:     DefaultMaxSD,
		MaxSQ:     DefaultMaxSQ,
		MaxModels: DefaultMaxModels,
		Period:    DefaultPeriod,
		Criterion: CriterionAIC,
		D:         -1,
		SD:        -1,
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	out := *o
	if out.Period < MinPeriod || out.Period > MaxPeriod {
		return nil, fmt.Errorf("got %d, expected [%d, %d], %w", out.Period, MinPeriod, MaxPeriod, ErrInvalidPeriod)
	}
	if out.MaxModels <= 0 {
		out.MaxModels = DefaultMaxModels
	}
	switch out.Criterion {
	case CriterionAIC, CriterionAICc, CriterionBIC:
	default:
		out.Criterion = CriterionAIC
	}
	return &out, nil
}

// Result is the selected model together with the search trace.
type Result struct {
	Model           *sarima.Model `json:"-"`
	Order           sarima.Order  `json:"order"`
	Score           float64       `json:"score"`
	Criterion       Criterion     `json:"criterion"`
	ModelsEvaluated int           `json:"models_evaluated"`
	Trace           []Candidate   `json:"trace"`
}

type gridPoint struct {
	p, q, sp, sq int
}

type searcher struct {
	y         []float64
	opt       *Options
	d, sd, m  int
	intercept bool

	// every candidate is scored on residuals from cond onward
	maxP, maxSP int
	cond        int

	visited map[gridPoint]struct{}
	best    *sarima.Model
	bestS   gridPoint
	score   float64
	trace   []Candidate
	lastErr error
}

func (s *searcher) seasonal() bool {
	return s.m > 1
}

func (s *searcher) allowed(c gridPoint) bool {
	if c.p < 0 || c.q < 0 || c.sp < 0 || c.sq < 0 {
		return false
	}
	if c.p > s.maxP || c.q > s.opt.MaxQ {
		return false
	}
	if !s.seasonal() && (c.sp > 0 || c.sq > 0) {
		return false
	}
	return c.sp <= s.maxSP && c.sq <= s.opt.MaxSQ
}

// window sizes the shared conditioning window for a differenced series of length n,
// lowering the autoregressive bounds until the largest candidate keeps enough
// residuals.
func (s *searcher) window(n int) {
	s.maxP, s.maxSP = s.opt.MaxP, s.opt.MaxSP
	if !s.seasonal() {
		s.maxSP = 0
	}
	for {
		s.cond = s.maxP
		if s.seasonal() {
			s.cond += s.maxSP * s.m
		}
		k := s.maxP + s.opt.MaxQ + 2
		if s.seasonal() {
			k += s.maxSP + s.opt.MaxSQ
		}
		if n-s.cond >= k+2 {
			return
		}
		switch {
		case s.maxSP > 0:
			s.maxSP--
		case s.maxP > 0:
			s.maxP--
		default:
			return
		}
	}
}

func (s *searcher) order(c gridPoint) sarima.Order {
	o := sarima.Order{P: c.p, D: s.d, Q: c.q}
	if s.seasonal() {
		o.SP, o.SD, o.SQ, o.M = c.sp, s.sd, c.sq, s.m
	}
	return o
}

// try fits one candidate and reports whether it improved on the best score.
func (s *searcher) try(c gridPoint) bool {
	if !s.allowed(c) {
		return false
	}
	if _, ok := s.visited[c]; ok {
		return false
	}
	s.visited[c] = struct{}{}

	fitOpt := s.opt.Fit.Validate()
	fitOpt.WithIntercept = s.intercept
	fitOpt.ConditionStart = s.cond
	o := s.order(c)
	cand := Candidate{Order: o, Intercept: s.intercept, Score: nullable.Float(math.NaN())}

	m, err := sarima.New(o, fitOpt)
	if err == nil {
		err = m.Fit(s.y)
	}
	improved := false
	if err != nil {
		s.lastErr = err
		cand.Err = err.Error()
	} else {
		score := s.opt.Criterion.score(m)
		cand.Score = nullable.Float(score)
		cand.NObs = m.NObs()
		if !math.IsNaN(score) && score < s.score {
			s.best, s.bestS, s.score = m, c, score
			improved = true
		}
	}
	s.trace = append(s.trace, cand)
	if s.opt.OnCandidate != nil {
		s.opt.OnCandidate(cand)
	}
	return improved
}

func (s *searcher) neighbours() []gridPoint {
	b := s.bestS
	out := []gridPoint{
		{b.p + 1, b.q, b.sp, b.sq},
		{b.p - 1, b.q, b.sp, b.sq},
		{b.p, b.q + 1, b.sp, b.sq},
		{b.p, b.q - 1, b.sp, b.sq},
		{b.p + 1, b.q + 1, b.sp, b.sq},
		{b.p - 1, b.q - 1, b.sp, b.sq},
	}
	if s.seasonal() {
		out = append(out,
			gridPoint{b.p, b.q, b.sp + 1, b.sq},
			gridPoint{b.p, b.q, b.sp - 1, b.sq},
			gridPoint{b.p, b.q, b.sp, b.sq + 1},
			gridPoint{b.p, b.q, b.sp, b.sq - 1},
			gridPoint{b.p, b.q, b.sp + 1, b.sq + 1},
			gridPoint{b.p, b.q, b.sp - 1, b.sq - 1},
		)
	}
	return out
}

// Differencing picks the seasonal and then the non-seasonal differencing order.
func Differencing(y []float64, period, maxD, maxSD int) (int, int) {
	sd := 0
	if period > 1 {
		sd = stats.NSDiffs(y, period, maxSD)
	}
	x := y
	if sd > 0 {
		w, err := stats.Difference(y, 0, sd, period)
		if err != nil {
			return 0, 0
		}
		x = w
	}
	return stats.NDiffs(x, maxD), sd
}

// Search runs the stepwise search on y. Candidates that fail to fit are skipped.
func Search(ctx context.Context, y []float64, opt *Options) (*Result, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	d, sd := Differencing(y, opt.Period, opt.MaxD, opt.MaxSD)
	if opt.D >= 0 {
		d = opt.D
	}
	if opt.SD >= 0 {
		sd = opt.SD
	}
	if opt.Period <= 1 {
		sd = 0
	}

	s := &searcher{
		y:         y,
		opt:       opt,
		d:         d,
		sd:        sd,
		m:         opt.Period,
		intercept: d+sd <= 1,
		visited:   make(map[gridPoint]struct{}),
		score:     math.Inf(1),
	}
	if s.seasonal() {
		s.window(len(y) - d - sd*s.m)
	} else {
		s.window(len(y) - d)
	}

	start := []gridPoint{{2, 2, 1, 1}, {0, 0, 0, 0}, {1, 0, 1, 0}, {0, 1, 0, 1}}
	for _, c := range start {
		if !s.seasonal() {
			c.sp, c.sq = 0, 0
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.try(c)
	}

	for improved := s.best != nil; improved && len(s.trace) < opt.MaxModels; {
		improved = false
		for _, c := range s.neighbours() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if len(s.trace) >= opt.MaxModels {
				break
			}
			if s.try(c) {
				improved = true
				break
			}
		}
	}

	if s.best == nil {
		if s.lastErr != nil {
			return nil, fmt.Errorf("%v, %w", s.lastErr, ErrNoModel)
		}
		return nil, ErrNoModel
	}
	return &Result{
		Model:           s.best,
		Order:           s.best.Order(),
		Score:           s.score,
		Criterion:       opt.Criterion,
		ModelsEvaluated: len(s.trace),
		Trace:           s.trace,
	}, nil
}
