package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCGNoise(t *testing.T) {
	assert.InDeltaSlice(t,
		[]float64{-1.309112609844572, -0.6899693451040217, -0.6765319719315506, 0.9963933262290664, 0.18815036047995545},
		lcgNoise(5, 1), 1e-12,
	)
}

func TestACF(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		nlags    int
		expected []float64
		err      error
	}{
		"ar process": {
			y:        ar1(120, 0.6, 1),
			nlags:    3,
			expected: []float64{1.0, 0.509060518803042, 0.28959976679819643, 0.26364503581400767},
		},
		"alternating": {
			y:        []float64{1, -1, 1, -1},
			nlags:    2,
			expected: []float64{1, -0.75, 0.5},
		},
		"lags clamped": {
			y:        []float64{1, 2, 3},
			nlags:    10,
			expected: []float64{1, 0, -0.5},
		},
		"constant": {
			y:     []float64{2, 2, 2},
			nlags: 1,
			err:   ErrConstantSeries,
		},
		"too short": {
			y:     []float64{1},
			nlags: 1,
			err:   ErrInsufficientData,
		},
		"negative lags": {
			y:     []float64{1, 2},
			nlags: -1,
			err:   ErrInvalidLag,
		},
		"nan": {
			y:     []float64{1, math.NaN(), 2},
			nlags: 1,
			err:   ErrNaNInput,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ACF(td.y, td.nlags)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDeltaSlice(t, td.expected, res, 1e-9)
		})
	}
}

func TestPACF(t *testing.T) {
	res, err := PACF(ar1(120, 0.6, 1), 3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0, 0.509060518803042, 0.04111068537541174, 0.13703809157681254}, res, 1e-9)

	// limited to under half of the sample
	res, err = PACF(ar1(20, 0.6, 1), 15)
	require.NoError(t, err)
	assert.Len(t, res, 10)

	_, err = PACF([]float64{1, 2, 3}, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestACFWithConfidence(t *testing.T) {
	y := ar1(120, 0.6, 1)
	c, err := ACFWithConfidence(y, 3)
	require.NoError(t, err)

	n := float64(len(y))
	r1 := 0.509060518803042
	r2 := 0.28959976679819643
	assert.Equal(t, []int{0, 1, 2, 3}, c.Lags)
	assert.Equal(t, 0.0, c.Bands[0])
	assert.InDelta(t, z95*math.Sqrt(1/n), c.Bands[1], 1e-12)
	assert.InDelta(t, z95*math.Sqrt((1+2*r1*r1)/n), c.Bands[2], 1e-9)
	assert.InDelta(t, z95*math.Sqrt((1+2*(r1*r1+r2*r2))/n), c.Bands[3], 1e-9)
	assert.Equal(t, []int{1, 2, 3}, c.Significant())
}

func TestPACFWithConfidence(t *testing.T) {
	y := ar1(120, 0.6, 1)
	c, err := PACFWithConfidence(y, 3)
	require.NoError(t, err)

	band := z95 / math.Sqrt(120)
	assert.Equal(t, []float64{0, band, band, band}, c.Bands)
	assert.Equal(t, []int{1}, c.Significant())
	assert.Equal(t, 120, c.NObs)
}
