package sarimaflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/sarimaflow/autoarima"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
)

var ErrOutOfRange = errors.New("value out of range")

// Bounds of the workflow inputs.
const (
	MinLags     = 5
	MaxLags     = 40
	DefaultLags = 20

	MaxIdentifyDiff        = 5
	DefaultIdentifyD       = 1
	DefaultIdentifySD      = 0
	MaxIdentifyPeriod      = 24
	DefaultSeasonalPeriod  = 12
	MaxManualARMA          = 5
	MaxManualDiff          = 2
	MinManualPeriod        = 1
	MaxManualPeriod        = 24
	MinHorizon             = 1
	MaxHorizon             = 120
	DefaultHorizon         = 12
	DefaultForecastConfInt = 0.95
)

var DefaultStartDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func outOfRange(field string, v, lo, hi int) error {
	return fmt.Errorf("%s=%d, expected [%d, %d], %w", field, v, lo, hi, ErrOutOfRange)
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return outOfRange(field, v, lo, hi)
	}
	return nil
}

// SetupOptions configures the synthetic time index and the train/test split.
type SetupOptions struct {
	Start        time.Time             `json:"start" mapstructure:"start"`
	Frequency    timedataset.Frequency `json:"frequency" mapstructure:"frequency"`
	TrainPercent int                   `json:"train_percent" mapstructure:"train_percent"`
}

func NewDefaultSetupOptions() *SetupOptions {
	return &SetupOptions{
		Start:        DefaultStartDate,
		Frequency:    timedataset.Daily,
		TrainPercent: timedataset.DefaultTrainPercent,
	}
}

func (o *SetupOptions) Validate() (*SetupOptions, error) {
	if o == nil {
		return NewDefaultSetupOptions(), nil
	}
	out := *o
	if out.Start.IsZero() {
		out.Start = DefaultStartDate
	}
	if out.Frequency == "" {
		out.Frequency = timedataset.Daily
	}
	if !out.Frequency.Valid() {
		return nil, fmt.Errorf("frequency=%q, %w", out.Frequency, ErrOutOfRange)
	}
	if out.TrainPercent == 0 {
		out.TrainPercent = timedataset.DefaultTrainPercent
	}
	if !timedataset.ValidTrainPercent(out.TrainPercent) {
		return nil, fmt.Errorf(
			"train_percent=%d, expected [%d, %d] in steps of %d, %w",
			out.TrainPercent, timedataset.MinTrainPercent, timedataset.MaxTrainPercent,
			timedataset.TrainPercentStep, ErrOutOfRange,
		)
	}
	return &out, nil
}

// IdentifyOptions sets the correlogram lags and the differencing applied to the
// training series.
type IdentifyOptions struct {
	Lags   int `json:"lags" mapstructure:"lags"`
	D      int `json:"d" mapstructure:"d"`
	SD     int `json:"seasonal_d" mapstructure:"seasonal_d"`
	Period int `json:"s" mapstructure:"period"`
}

func NewDefaultIdentifyOptions() *IdentifyOptions {
	return &IdentifyOptions{
		Lags:   DefaultLags,
		D:      DefaultIdentifyD,
		SD:     DefaultIdentifySD,
		Period: DefaultSeasonalPeriod,
	}
}

func (o *IdentifyOptions) Validate() (*IdentifyOptions, error) {
	if o == nil {
		return NewDefaultIdentifyOptions(), nil
	}
	if err := checkRange("lags", o.Lags, MinLags, MaxLags); err != nil {
		return nil, err
	}
	if err := checkRange("d", o.D, 0, MaxIdentifyDiff); err != nil {
		return nil, err
	}
	if err := checkRange("D", o.SD, 0, MaxIdentifyDiff); err != nil {
		return nil, err
	}
	if err := checkRange("s", o.Period, 0, MaxIdentifyPeriod); err != nil {
		return nil, err
	}
	if o.SD > 0 && o.Period < 1 {
		return nil, outOfRange("s", o.Period, 1, MaxIdentifyPeriod)
	}
	out := *o
	return &out, nil
}

// FitOptions selects the estimator. Order is used by manual fits and Period by the
// automatic search.
type FitOptions struct {
	Kind   session.ModelKind `json:"kind" mapstructure:"kind"`
	Order  sarima.Order      `json:"order" mapstructure:"order"`
	Period int               `json:"period" mapstructure:"period"`

	// Search overrides the automatic search limits. Period always comes from the
	// field above.
	Search *autoarima.Options `json:"-" mapstructure:"-"`
}

func NewDefaultFitOptions() *FitOptions {
	return &FitOptions{
		Kind:   session.ModelAuto,
		Order:  sarima.Order{P: 1, D: 1, Q: 1, M: DefaultSeasonalPeriod},
		Period: DefaultSeasonalPeriod,
	}
}

func (o *FitOptions) Validate() (*FitOptions, error) {
	if o == nil {
		return NewDefaultFitOptions(), nil
	}
	out := *o
	switch out.Kind {
	case session.ModelAuto:
		if out.Period == 0 {
			out.Period = DefaultSeasonalPeriod
		}
		if err := checkRange("s", out.Period, autoarima.MinPeriod, autoarima.MaxPeriod); err != nil {
			return nil, err
		}
	case session.ModelManual:
		ord := out.Order
		for _, c := range []struct {
			name   string
			v, max int
		}{
			{"p", ord.P, MaxManualARMA},
			{"d", ord.D, MaxManualDiff},
			{"q", ord.Q, MaxManualARMA},
			{"P", ord.SP, MaxManualARMA},
			{"D", ord.SD, MaxManualDiff},
			{"Q", ord.SQ, MaxManualARMA},
		} {
			if err := checkRange(c.name, c.v, 0, c.max); err != nil {
				return nil, err
			}
		}
		if err := checkRange("s", ord.M, MinManualPeriod, MaxManualPeriod); err != nil {
			return nil, err
		}
		if ord.Seasonal() && ord.M < 2 {
			return nil, outOfRange("s", ord.M, 2, MaxManualPeriod)
		}
	default:
		return nil, fmt.Errorf("kind=%q, expected %q or %q, %w", out.Kind, session.ModelAuto, session.ModelManual, ErrOutOfRange)
	}
	return &out, nil
}

type ForecastOptions struct {
	Horizon    int     `json:"horizon" mapstructure:"horizon"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
}

func NewDefaultForecastOptions() *ForecastOptions {
	return &ForecastOptions{
		Horizon:    DefaultHorizon,
		Confidence: DefaultForecastConfInt,
	}
}

func (o *ForecastOptions) Validate() (*ForecastOptions, error) {
	if o == nil {
		return NewDefaultForecastOptions(), nil
	}
	out := *o
	if err := checkRange("horizon", out.Horizon, MinHorizon, MaxHorizon); err != nil {
		return nil, err
	}
	if out.Confidence == 0 {
		out.Confidence = DefaultForecastConfInt
	}
	if !(out.Confidence > 0 && out.Confidence < 1) {
		return nil, fmt.Errorf("confidence=%g, expected (0, 1), %w", out.Confidence, ErrOutOfRange)
	}
	return &out, nil
}
