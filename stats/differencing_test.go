package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifference(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		d        int
		sd       int
		s        int
		expected []float64
		err      error
	}{
		"no differencing": {
			y:        []float64{1, 2, 3},
			expected: []float64{1, 2, 3},
		},
		"first order": {
			y:        []float64{1, 4, 9, 16},
			d:        1,
			expected: []float64{3, 5, 7},
		},
		"second order": {
			y:        []float64{1, 4, 9, 16},
			d:        2,
			expected: []float64{2, 2},
		},
		"seasonal only": {
			y:        []float64{1, 2, 3, 5, 7, 9},
			sd:       1,
			s:        3,
			expected: []float64{4, 5, 6},
		},
		"first then seasonal": {
			y:        []float64{1, 2, 4, 7, 11, 16},
			d:        1,
			sd:       1,
			s:        2,
			expected: []float64{2, 2, 2},
		},
		"seasonal period ignored without seasonal order": {
			y:        []float64{1, 2, 3},
			d:        1,
			s:        0,
			expected: []float64{1, 1},
		},
		"seasonal order without period": {
			y:   []float64{1, 2, 3},
			sd:  1,
			s:   0,
			err: ErrSeasonalPeriodRequired,
		},
		"nothing left": {
			y:   []float64{1, 2, 3},
			d:   3,
			err: ErrInsufficientData,
		},
		"negative order": {
			y:   []float64{1, 2, 3},
			d:   -1,
			err: ErrInvalidOrder,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Difference(td.y, td.d, td.sd, td.s)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestDifferenceDoesNotModifyInput(t *testing.T) {
	y := []float64{1, 2, 4}
	_, err := Difference(y, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 4}, y)
}

func seasonalNoise(n, period int, amp float64, seed uint64) []float64 {
	y := lcgNoise(n, seed)
	for i := range y {
		y[i] += amp * math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return y
}

func TestSeasonalStrength(t *testing.T) {
	strong := SeasonalStrength(seasonalNoise(96, 12, 10, 5), 12)
	assert.Greater(t, strong, SeasonalStrengthThreshold)

	weak := SeasonalStrength(lcgNoise(96, 5), 12)
	assert.Less(t, weak, SeasonalStrengthThreshold)

	assert.Equal(t, 0.0, SeasonalStrength([]float64{1, 2, 3}, 12))
}

func TestDecompose(t *testing.T) {
	y := make([]float64, 24)
	pattern := []float64{1, -1, 2, -2}
	for i := range y {
		y[i] = 10 + pattern[i%4]
	}
	dec, err := Decompose(y, 4)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(dec.Trend[0]))
	assert.InDelta(t, 10, dec.Trend[10], 1e-12)
	for i := 2; i < 22; i++ {
		assert.InDelta(t, pattern[i%4], dec.Seasonal[i], 1e-12)
		assert.InDelta(t, 0, dec.Residual[i], 1e-12)
	}

	_, err = Decompose(y[:6], 4)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestNSDiffs(t *testing.T) {
	assert.Equal(t, 1, NSDiffs(seasonalNoise(96, 12, 10, 5), 12, 1))
	assert.Equal(t, 0, NSDiffs(lcgNoise(96, 5), 12, 1))
	assert.Equal(t, 0, NSDiffs(seasonalNoise(96, 12, 10, 5), 1, 1))
}

func TestNDiffs(t *testing.T) {
	assert.Equal(t, 0, NDiffs(lcgNoise(120, 3), 2))

	trend := make([]float64, 120)
	noise := lcgNoise(120, 3)
	for i := range trend {
		trend[i] = 0.5*float64(i) + noise[i]
	}
	assert.Equal(t, 1, NDiffs(trend, 2))
	assert.Equal(t, 0, NDiffs([]float64{3, 3, 3, 3}, 2))
}
