package autoarima

import (
	"context"
	"testing"

	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil": {
			expected: NewDefaultOptions(),
		},
		"period too large": {
			opt: &Options{Period: 25},
			err: ErrInvalidPeriod,
		},
		"period zero": {
			opt: &Options{},
			err: ErrInvalidPeriod,
		},
		"unknown criterion": {
			opt:      &Options{Period: 4, Criterion: "hqic", MaxModels: 10},
			expected: &Options{Period: 4, Criterion: CriterionAIC, MaxModels: 10},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestSearchNonSeasonal(t *testing.T) {
	y := []float64(timedataset.GenerateARY(200, 3, 0.7, 1, 17))

	opt := NewDefaultOptions()
	opt.Period = 1
	opt.D = 0
	var seen int
	opt.OnCandidate = func(Candidate) { seen++ }

	res, err := Search(context.Background(), y, opt)
	require.NoError(t, err)
	require.NotNil(t, res.Model)
	assert.True(t, res.Model.IsFitted())

	assert.Equal(t, 0, res.Order.D)
	assert.Equal(t, 0, res.Order.M)
	assert.Equal(t, 0, res.Order.SP+res.Order.SQ)
	assert.GreaterOrEqual(t, res.Order.P+res.Order.Q, 1)
	assert.True(t, res.Model.Options().WithIntercept)
	assert.GreaterOrEqual(t, res.ModelsEvaluated, 4)
	assert.Len(t, res.Trace, res.ModelsEvaluated)
	assert.Equal(t, res.ModelsEvaluated, seen)
	assert.InDelta(t, res.Model.AIC(), res.Score, 1e-12)

	for _, c := range res.Trace {
		if c.Err == "" {
			assert.GreaterOrEqual(t, float64(c.Score), res.Score)
		}
	}
}

func TestSearchRandomWalk(t *testing.T) {
	y := []float64(timedataset.GenerateRandomWalk(200, 100, 1, 5))

	opt := NewDefaultOptions()
	opt.Period = 1
	opt.MaxD = 1
	res, err := Search(context.Background(), y, opt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Order.D)
	assert.True(t, res.Model.Options().WithIntercept)
}

// seasonalWalk repeats a yearly pattern that drifts by a random shock each cycle
// and adds observation noise.
func seasonalWalk(n, period int, seed uint64) []float64 {
	u := timedataset.GenerateNoise(n, 1, seed)
	e := timedataset.GenerateNoise(n, 1, seed+1)
	s := make([]float64, n)
	y := make([]float64, n)
	for i := range y {
		s[i] = u[i]
		if i >= period {
			s[i] += s[i-period]
		}
		y[i] = 50 + s[i] + e[i]
	}
	return y
}

func TestSearchSharedWindow(t *testing.T) {
	y := seasonalWalk(144, 12, 7)

	opt := NewDefaultOptions()
	opt.D = 0
	opt.SD = 1
	res, err := Search(context.Background(), y, opt)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Order.SP)
	assert.Equal(t, 1, res.Order.SD)

	expected := len(y) - 12 - (DefaultMaxP + DefaultMaxSP*12)
	assert.Equal(t, expected, res.Model.NObs())
	for _, c := range res.Trace {
		if c.Err == "" {
			assert.Equal(t, expected, c.NObs, c.Order.String())
		}
	}
}

func TestSearchWindowShrinks(t *testing.T) {
	y := seasonalWalk(48, 12, 9)

	opt := NewDefaultOptions()
	opt.D = 0
	opt.SD = 1
	res, err := Search(context.Background(), y, opt)
	require.NoError(t, err)

	var nobs int
	for _, c := range res.Trace {
		assert.LessOrEqual(t, c.Order.SP, 1, c.Order.String())
		if c.Err == "" {
			if nobs == 0 {
				nobs = c.NObs
			}
			assert.Equal(t, nobs, c.NObs, c.Order.String())
		}
	}
	assert.Equal(t, 36-(DefaultMaxP+12), nobs)
}

func TestSearchSeasonal(t *testing.T) {
	y := []float64(timedataset.GenerateSeasonalY(144, 10, 12).Add(timedataset.GenerateNoise(144, 1, 3)))

	opt := NewDefaultOptions()
	opt.MaxModels = 20
	res, err := Search(context.Background(), y, opt)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Order.SD)
	assert.Equal(t, 12, res.Order.M)
	assert.LessOrEqual(t, res.ModelsEvaluated, 20)
}

func TestSearchFixedDifferencing(t *testing.T) {
	y := []float64(timedataset.GenerateRandomWalk(120, 10, 1, 6))

	testData := map[string]struct {
		d         int
		intercept bool
	}{
		"levels":             {d: 0, intercept: true},
		"first differences":  {d: 1, intercept: true},
		"second differences": {d: 2, intercept: false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultOptions()
			opt.Period = 1
			opt.D = td.d
			res, err := Search(context.Background(), y, opt)
			require.NoError(t, err)
			assert.Equal(t, td.d, res.Order.D)
			assert.Equal(t, td.intercept, res.Model.Options().WithIntercept)
		})
	}
}

func TestSearchErrors(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testData := map[string]struct {
		ctx context.Context
		y   []float64
		opt *Options
		err error
	}{
		"canceled": {
			ctx: canceled,
			y:   []float64(timedataset.GenerateNoise(50, 1, 1)),
			err: context.Canceled,
		},
		"too short": {
			ctx: context.Background(),
			y:   []float64{1, 2, 4},
			opt: &Options{Period: 1, D: -1, SD: -1},
			err: ErrNoModel,
		},
		"invalid period": {
			ctx: context.Background(),
			y:   []float64{1, 2, 4},
			opt: &Options{Period: 30},
			err: ErrInvalidPeriod,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Search(td.ctx, td.y, td.opt)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestDifferencing(t *testing.T) {
	testData := map[string]struct {
		y      []float64
		period int
		d      int
		sd     int
	}{
		"white noise": {
			y:      []float64(timedataset.GenerateNoise(150, 1, 2)),
			period: 12,
		},
		"strong seasonality": {
			y:      []float64(timedataset.GenerateSeasonalY(144, 10, 12).Add(timedataset.GenerateNoise(144, 0.5, 4))),
			period: 12,
			sd:     1,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			d, sd := Differencing(td.y, td.period, DefaultMaxD, DefaultMaxSD)
			assert.Equal(t, td.d, d)
			assert.Equal(t, td.sd, sd)
		})
	}
}
