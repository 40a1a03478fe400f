package sarima

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderValidate(t *testing.T) {
	testData := map[string]struct {
		order Order
		label string
		err   error
	}{
		"arima": {
			order: Order{P: 1, D: 1, Q: 1},
			label: "SARIMA(1,1,1)x(0,0,0)0",
		},
		"seasonal": {
			order: Order{P: 1, SD: 1, SQ: 1, M: 12},
			label: "SARIMA(1,0,0)x(0,1,1)12",
		},
		"negative": {
			order: Order{P: -1},
			label: "SARIMA(-1,0,0)x(0,0,0)0",
			err:   ErrInvalidOrder,
		},
		"seasonal without period": {
			order: Order{SP: 1, M: 1},
			label: "SARIMA(0,0,0)x(1,0,0)1",
			err:   ErrSeasonalPeriod,
		},
		"period without seasonal terms": {
			order: Order{P: 2, M: 1},
			label: "SARIMA(2,0,0)x(0,0,0)1",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.label, td.order.String())
			assert.ErrorIs(t, td.order.Validate(), td.err)
		})
	}
}

func TestLagPolynomials(t *testing.T) {
	testData := map[string]struct {
		got      []float64
		expected []float64
	}{
		"ar multiplicative": {
			got:      arCoefficients([]float64{0.5}, []float64{0.3}, 4),
			expected: []float64{0.5, 0, 0, 0.3, -0.15},
		},
		"ma multiplicative": {
			got:      maCoefficients([]float64{0.4}, []float64{0.2}, 4),
			expected: []float64{0.4, 0, 0, 0.2, 0.08},
		},
		"ar empty": {
			got:      arCoefficients(nil, nil, 0),
			expected: []float64{},
		},
		"first difference": {
			got:      diffCoefficients(1, 0, 0),
			expected: []float64{1},
		},
		"second difference": {
			got:      diffCoefficients(2, 0, 0),
			expected: []float64{2, -1},
		},
		"first and seasonal difference": {
			got:      diffCoefficients(1, 1, 4),
			expected: []float64{1, 0, 0, 1, -1},
		},
		"combined ar with difference": {
			got:      combineAR([]float64{0.5}, []float64{1}),
			expected: []float64{1.5, -0.5},
		},
		"psi weights of ar1": {
			got:      psiWeights([]float64{0.5}, nil, 4),
			expected: []float64{1, 0.5, 0.25, 0.125},
		},
		"psi weights of ma1": {
			got:      psiWeights(nil, []float64{0.4}, 3),
			expected: []float64{1, 0.4, 0},
		},
		"psi weights of random walk": {
			got:      psiWeights([]float64{1}, nil, 3),
			expected: []float64{1, 1, 1},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.InDeltaSlice(t, td.expected, td.got, 1e-12)
		})
	}
}
