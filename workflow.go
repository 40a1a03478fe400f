// Package sarimaflow runs the interactive SARIMA workflow: setup, exploration,
// identification, fitting, evaluation and forecasting. Every step reads and writes a
// session.State and refuses to run until the steps it depends on have completed.
package sarimaflow

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/sarimaflow/autoarima"
	"github.com/aouyang1/sarimaflow/nullable"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
)

// Outlier bounds applied to the fitted residuals.
const (
	OutlierLowerPercentile = 0.25
	OutlierUpperPercentile = 0.75
	OutlierTukeyFactor     = 1.5
)

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SetupCSV reads a single column of values and runs Setup with them.
func SetupCSV(state *session.State, r io.Reader, opt *SetupOptions) (*SetupResult, error) {
	values, err := timedataset.ReadValues(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read values, %w", err)
	}
	return Setup(state, values, opt)
}

// Setup indexes the values from the start date at the chosen frequency and splits them
// into training and testing parts. Every artifact from earlier runs is replaced.
func Setup(state *session.State, values []float64, opt *SetupOptions) (*SetupResult, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	series, err := timedataset.NewIndexedDataset(opt.Start, opt.Frequency, values)
	if err != nil {
		return nil, fmt.Errorf("unable to build time index, %w", err)
	}
	train, test, err := series.Split(opt.TrainPercent)
	if err != nil {
		return nil, fmt.Errorf("unable to split series, %w", err)
	}

	state.Reset()
	state.Series = series
	state.Frequency = opt.Frequency
	state.StartDate = opt.Start
	state.TrainPercent = opt.TrainPercent
	state.Train = train
	state.Test = test
	state.Touch()

	return &SetupResult{
		Series:       series,
		Frequency:    opt.Frequency,
		Start:        opt.Start,
		TrainPercent: opt.TrainPercent,
		NTrain:       train.Len(),
		NTest:        test.Len(),
	}, nil
}

// Explore summarizes the training series and checks it for normality.
func Explore(state *session.State) (*ExploreResult, error) {
	if err := state.Require(session.KeyTrain); err != nil {
		return nil, err
	}
	train := state.Train

	res := &ExploreResult{Train: train}
	desc, err := stats.Describe(train.Y)
	if err != nil {
		return nil, fmt.Errorf("unable to describe training series, %w", err)
	}
	res.Description = desc

	if res.QQ, err = stats.QQ(train.Y); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to compute qq plot, %v", err))
	}
	if res.Normality, err = stats.JarqueBera(train.Y); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to test normality, %v", err))
	}
	return res, nil
}

func diagnose(y []float64, lags int, label string) (SeriesDiagnostics, []string) {
	var warnings []string
	diag := SeriesDiagnostics{
		Stationarity: StationarityReport{
			Hypotheses:   []string{stats.HypothesisNull, stats.HypothesisAlternative},
			DecisionRule: stats.DecisionRule,
		},
	}

	adf, err := stats.ADF(y, stats.NewDefaultADFOptions())
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("unable to run adf test on %s series, %v", label, err))
	} else {
		diag.Stationarity.ADF = adf
		diag.Stationarity.Conclusion = adf.Conclusion()
	}

	if diag.ACF, err = stats.ACFWithConfidence(y, lags); err != nil {
		warnings = append(warnings, fmt.Sprintf("unable to compute acf of %s series, %v", label, err))
	}
	if diag.PACF, err = stats.PACFWithConfidence(y, lags); err != nil {
		warnings = append(warnings, fmt.Sprintf("unable to compute pacf of %s series, %v", label, err))
	}
	return diag, warnings
}

// Identify tests the training series for a unit root before and after differencing and
// computes both correlograms. The differenced series is stored for the fit step.
func Identify(state *session.State, opt *IdentifyOptions) (*IdentifyResult, error) {
	if err := state.Require(session.KeyTrain); err != nil {
		return nil, err
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	train := state.Train

	res := &IdentifyResult{
		Lags:   opt.Lags,
		D:      opt.D,
		SD:     opt.SD,
		Period: opt.Period,
	}
	var warnings []string
	res.Original, warnings = diagnose(train.Y, opt.Lags, "original")
	res.Warnings = append(res.Warnings, warnings...)

	w, err := stats.Difference(train.Y, opt.D, opt.SD, opt.Period)
	if err != nil {
		return nil, fmt.Errorf("unable to difference training series, %w", err)
	}
	t := make([]time.Time, len(w))
	copy(t, train.T[train.Len()-len(w):])
	diffed, err := timedataset.NewUnivariateDataset(t, w)
	if err != nil {
		return nil, fmt.Errorf("unable to build differenced series, %w", err)
	}
	res.Series = diffed

	res.Differenced, warnings = diagnose(w, opt.Lags, "differenced")
	res.Warnings = append(res.Warnings, warnings...)

	state.Differenced = &session.Differenced{
		D:      opt.D,
		SD:     opt.SD,
		Period: opt.Period,
		Series: diffed,
	}
	state.Touch()
	return res, nil
}

// Fit estimates a model on the training series, either with the automatic stepwise
// search or with the given orders, and stores it in the session.
func Fit(ctx context.Context, state *session.State, opt *FitOptions) (*FitResult, error) {
	if err := state.Require(session.KeySeries, session.KeyDifferenced); err != nil {
		return nil, err
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	y := state.Train.Y

	start := time.Now()
	res := &FitResult{Kind: opt.Kind}
	var model *sarima.Model
	switch opt.Kind {
	case session.ModelAuto:
		searchOpt := autoarima.NewDefaultOptions()
		if opt.Search != nil {
			o := *opt.Search
			searchOpt = &o
		}
		searchOpt.Period = opt.Period
		found, err := autoarima.Search(ctx, y, searchOpt)
		if err != nil {
			return nil, fmt.Errorf("unable to search model orders, %w", err)
		}
		model = found.Model
		res.ModelsEvaluated = found.ModelsEvaluated
		res.Trace = found.Trace
	case session.ModelManual:
		model, err = sarima.New(opt.Order, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create model, %w", err)
		}
		if err := model.Fit(y); err != nil {
			return nil, fmt.Errorf("unable to fit %s, %w", opt.Order, err)
		}
		res.ModelsEvaluated = 1
	}
	res.Duration = time.Since(start)

	snap, err := model.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("unable to snapshot model, %w", err)
	}
	summary, err := model.Summary()
	if err != nil {
		return nil, fmt.Errorf("unable to summarize model, %w", err)
	}
	res.Order = model.Order()
	res.Label = res.Order.String()
	res.Summary = summary

	state.Model = snap
	state.ModelKind = opt.Kind
	state.Touch()
	return res, nil
}

func loadModel(state *session.State) (*sarima.Model, error) {
	m, err := sarima.NewFromSnapshot(state.Model)
	if err != nil {
		return nil, fmt.Errorf("unable to load fitted model, %w", err)
	}
	return m, nil
}

// Summary returns the coefficient table of the stored model.
func Summary(state *session.State) (*sarima.Summary, error) {
	if err := state.Require(session.KeyModel); err != nil {
		return nil, err
	}
	m, err := loadModel(state)
	if err != nil {
		return nil, err
	}
	return m.Summary()
}

// Evaluate forecasts the testing part and scores the forecast. A failed prediction
// leaves NaN placeholders and a warning instead of an error.
func Evaluate(state *session.State) (*EvaluateResult, error) {
	if err := state.Require(session.KeyModel, session.KeyTrain); err != nil {
		return nil, err
	}
	m, err := loadModel(state)
	if err != nil {
		return nil, err
	}

	train, test := state.Train, state.Test
	res := &EvaluateResult{
		Train:  train,
		Test:   test,
		AIC:    nullable.Float(m.AIC()),
		BIC:    nullable.Float(m.BIC()),
		Scores: nanScores(),
	}

	steps := test.Len()
	predicted, err := m.Forecast(steps)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("model cannot predict the testing data, %v", err))
		predicted = nanSlice(steps)
	} else if scores, err := NewScores(predicted, test.Y); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to score predictions, %v", err))
	} else {
		res.Scores = scores
	}
	res.Predicted = predicted

	resid, err := m.Residuals()
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to compute residuals, %v", err))
		return res, nil
	}
	finite := make([]float64, 0, len(resid))
	index := make([]int, 0, len(resid))
	for i, v := range resid {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
		index = append(index, i)
	}

	ord := m.Order()
	lb, err := stats.LjungBox(finite, stats.DefaultLjungBoxLags(len(finite)), ord.P+ord.Q+ord.SP+ord.SQ)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to run ljung-box test, %v", err))
	}
	res.LjungBox = lb

	res.Outliers = []OutlierResidual{}
	for _, i := range stats.DetectOutliers(finite, OutlierLowerPercentile, OutlierUpperPercentile, OutlierTukeyFactor) {
		res.Outliers = append(res.Outliers, OutlierResidual{T: train.T[index[i]], Residual: finite[i]})
	}
	return res, nil
}

// FullRange predicts the whole working series: one step ahead over the training part
// and a multi-step forecast over the testing part.
func FullRange(state *session.State) (*FullRangeResult, error) {
	if err := state.Require(session.KeySeries, session.KeyModel, session.KeyTrain); err != nil {
		return nil, err
	}
	m, err := loadModel(state)
	if err != nil {
		return nil, err
	}

	series := state.Series
	res := &FullRangeResult{
		T:      series.T,
		Actual: series.Y,
		NTrain: state.Train.Len(),
	}

	inSample, err := m.PredictInSample()
	if err == nil && state.Test.Len() > 0 {
		var outSample []float64
		outSample, err = m.Forecast(state.Test.Len())
		inSample = append(inSample, outSample...)
	}
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to predict from the start, %v", err))
		inSample = nanSlice(series.Len())
	}
	res.Predicted = inSample
	return res, nil
}

// Forecast predicts horizon steps after the end of the training series, indexed by the
// session frequency.
func Forecast(state *session.State, opt *ForecastOptions) (*ForecastResult, error) {
	if err := state.Require(session.KeySeries, session.KeyModel); err != nil {
		return nil, err
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	m, err := loadModel(state)
	if err != nil {
		return nil, err
	}

	train := state.Train
	t, err := timedataset.NextIndex(train.T[train.Len()-1], state.Frequency, opt.Horizon)
	if err != nil {
		return nil, fmt.Errorf("unable to build forecast index, %w", err)
	}

	res := &ForecastResult{
		Train:      train,
		T:          t,
		Confidence: opt.Confidence,
	}
	fc, err := m.ForecastWithInterval(opt.Horizon, opt.Confidence)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("unable to forecast, %v", err))
		res.Forecast = nanSlice(opt.Horizon)
		res.Lower = nanSlice(opt.Horizon)
		res.Upper = nanSlice(opt.Horizon)
		return res, nil
	}
	res.Forecast = fc.Mean
	res.Lower = fc.Lower
	res.Upper = fc.Upper
	return res, nil
}
