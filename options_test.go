package sarimaflow

import (
	"testing"
	"time"

	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *SetupOptions
		expected *SetupOptions
		err      error
	}{
		"nil": {
			expected: NewDefaultSetupOptions(),
		},
		"zero values get defaults": {
			opt:      &SetupOptions{},
			expected: NewDefaultSetupOptions(),
		},
		"monthly": {
			opt: &SetupOptions{
				Start:        time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
				Frequency:    timedataset.MonthEnd,
				TrainPercent: 95,
			},
			expected: &SetupOptions{
				Start:        time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
				Frequency:    timedataset.MonthEnd,
				TrainPercent: 95,
			},
		},
		"unknown frequency": {
			opt: &SetupOptions{Frequency: "H"},
			err: ErrOutOfRange,
		},
		"off step": {
			opt: &SetupOptions{TrainPercent: 82},
			err: ErrOutOfRange,
		},
		"too small": {
			opt: &SetupOptions{TrainPercent: 45},
			err: ErrOutOfRange,
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

func TestIdentifyOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *IdentifyOptions
		msg string
	}{
		"nil":             {},
		"valid":           {opt: &IdentifyOptions{Lags: 40, D: 5, SD: 5, Period: 24}},
		"lags low":        {opt: &IdentifyOptions{Lags: 4}, msg: "lags=4, expected [5, 40], value out of range"},
		"d high":          {opt: &IdentifyOptions{Lags: 20, D: 6}, msg: "d=6, expected [0, 5], value out of range"},
		"seasonal high":   {opt: &IdentifyOptions{Lags: 20, SD: 6}, msg: "D=6, expected [0, 5], value out of range"},
		"period high":     {opt: &IdentifyOptions{Lags: 20, Period: 25}, msg: "s=25, expected [0, 24], value out of range"},
		"no period for D": {opt: &IdentifyOptions{Lags: 20, SD: 1}, msg: "s=0, expected [1, 24], value out of range"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.opt.Validate()
			if td.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.EqualError(t, err, td.msg)
		})
	}
}

func TestFitOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *FitOptions
		err error
	}{
		"nil": {},
		"auto default period": {
			opt: &FitOptions{Kind: session.ModelAuto},
		},
		"auto period too large": {
			opt: &FitOptions{Kind: session.ModelAuto, Period: 25},
			err: ErrOutOfRange,
		},
		"manual": {
			opt: &FitOptions{Kind: session.ModelManual, Order: sarima.Order{P: 5, D: 2, Q: 5, SP: 5, SD: 2, SQ: 5, M: 24}},
		},
		"manual d too large": {
			opt: &FitOptions{Kind: session.ModelManual, Order: sarima.Order{D: 3, M: 12}},
			err: ErrOutOfRange,
		},
		"manual period zero": {
			opt: &FitOptions{Kind: session.ModelManual, Order: sarima.Order{P: 1}},
			err: ErrOutOfRange,
		},
		"manual seasonal with period one": {
			opt: &FitOptions{Kind: session.ModelManual, Order: sarima.Order{SP: 1, M: 1}},
			err: ErrOutOfRange,
		},
		"unknown kind": {
			opt: &FitOptions{Kind: "grid"},
			err: ErrOutOfRange,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.opt.Validate()
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestForecastOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *ForecastOptions
		expected *ForecastOptions
		err      error
	}{
		"nil": {
			expected: &ForecastOptions{Horizon: 12, Confidence: 0.95},
		},
		"default confidence": {
			opt:      &ForecastOptions{Horizon: 120},
			expected: &ForecastOptions{Horizon: 120, Confidence: 0.95},
		},
		"zero horizon": {
			opt: &ForecastOptions{},
			err: ErrOutOfRange,
		},
		"horizon too large": {
			opt: &ForecastOptions{Horizon: 121},
			err: ErrOutOfRange,
		},
		"bad confidence": {
			opt: &ForecastOptions{Horizon: 3, Confidence: 1.5},
			err: ErrOutOfRange,
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
