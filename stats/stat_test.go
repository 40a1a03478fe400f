package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		expected []int
	}{
		"empty": {
			y:        nil,
			expected: nil,
		},
		"single spike": {
			y:        []float64{1, 2, 1, 2, 1, 2, 1, 2, 50, 1},
			expected: []int{8},
		},
		"no outliers": {
			y:        []float64{1, 2, 3, 4, 5},
			expected: nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, 0.25, 0.75, 1.5)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestDescribe(t *testing.T) {
	d, err := Describe([]float64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 2.5, d.Mean)
	assert.InDelta(t, math.Sqrt(5.0/3.0), float64(d.StdDev), 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
