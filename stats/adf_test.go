package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADF(t *testing.T) {
	testData := map[string]struct {
		y          []float64
		opt        *ADFOptions
		statistic  float64
		pValue     float64
		usedLag    int
		nobs       int
		stationary bool
		err        error
	}{
		"stationary ar process": {
			y:          ar1(120, 0.6, 1),
			statistic:  -6.0470586377362086,
			pValue:     1.3042284463526954e-07,
			usedLag:    0,
			nobs:       119,
			stationary: true,
		},
		"random walk": {
			y:          walk(120, 2),
			statistic:  -2.2447971615015896,
			pValue:     0.19039005951301785,
			usedLag:    0,
			nobs:       119,
			stationary: false,
		},
		"constant": {
			y:   []float64{1, 1, 1, 1, 1, 1},
			err: ErrConstantSeries,
		},
		"too short": {
			y:   []float64{1, 2, 4},
			err: ErrInsufficientData,
		},
		"max lag too large": {
			y:   ar1(20, 0.6, 1),
			opt: &ADFOptions{MaxLag: 9},
			err: ErrInsufficientData,
		},
		"nan": {
			y:   []float64{1, math.NaN(), 3, 4, 5, 6, 7, 8},
			err: ErrNaNInput,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ADF(td.y, td.opt)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.statistic, res.Statistic, 1e-6)
			assert.InDelta(t, td.pValue, res.PValue, 1e-6)
			assert.Equal(t, td.usedLag, res.UsedLag)
			assert.Equal(t, td.nobs, res.NObs)
			assert.Equal(t, td.stationary, res.IsStationary)
		})
	}
}

func TestADFCriticalValues(t *testing.T) {
	res, err := ADF(ar1(120, 0.6, 1), nil)
	require.NoError(t, err)

	assert.InDelta(t, -3.4865346059036564, res.CriticalValues["1%"], 1e-9)
	assert.InDelta(t, -2.886150985847627, res.CriticalValues["5%"], 1e-9)
	assert.InDelta(t, -2.5798960927900576, res.CriticalValues["10%"], 1e-9)
	assert.Contains(t, res.Conclusion(), "is stationary")
}

func TestADFFixedLag(t *testing.T) {
	y := ar1(120, 0.6, 1)
	res, err := ADF(y, &ADFOptions{MaxLag: 4, AutoLag: false})
	require.NoError(t, err)
	assert.Equal(t, 4, res.UsedLag)
	assert.Equal(t, 115, res.NObs)
}

func TestMacKinnonPValue(t *testing.T) {
	testData := map[string]struct {
		stat     float64
		expected float64
	}{
		"one percent critical":  {stat: -3.43035, expected: 0.009966741214133046},
		"five percent critical": {stat: -2.86154, expected: 0.05000665116562558},
		"ten percent critical":  {stat: -2.56677, expected: 0.10006154517353133},
		"star boundary":         {stat: -1.61, expected: 0.4779756525941894},
		"zero":                  {stat: 0, expected: 0.9585320860600559},
		"above max":             {stat: 3, expected: 1},
		"below min":             {stat: -20, expected: 0},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, td.expected, MacKinnonPValue(td.stat), 1e-9)
		})
	}
}
