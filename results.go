package sarimaflow

import (
	"time"

	"github.com/aouyang1/sarimaflow/autoarima"
	"github.com/aouyang1/sarimaflow/nullable"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
)

type SetupResult struct {
	Series       *timedataset.TimeDataset `json:"series"`
	Frequency    timedataset.Frequency    `json:"frequency"`
	Start        time.Time                `json:"start"`
	TrainPercent int                      `json:"train_percent"`
	NTrain       int                      `json:"n_train"`
	NTest        int                      `json:"n_test"`
}

type ExploreResult struct {
	Train       *timedataset.TimeDataset `json:"train"`
	Description stats.Description        `json:"description"`
	QQ          *stats.QQResult          `json:"qq,omitempty"`
	Normality   *stats.JarqueBeraResult  `json:"normality,omitempty"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

// StationarityReport is an ADF test with its decision text.
type StationarityReport struct {
	ADF          *stats.ADFResult `json:"adf,omitempty"`
	Conclusion   string           `json:"conclusion"`
	Hypotheses   []string         `json:"hypotheses"`
	DecisionRule string           `json:"decision_rule"`
}

// SeriesDiagnostics groups the identification output for one series.
type SeriesDiagnostics struct {
	Stationarity StationarityReport `json:"stationarity"`
	ACF          *stats.Correlogram `json:"acf,omitempty"`
	PACF         *stats.Correlogram `json:"pacf,omitempty"`
}

type IdentifyResult struct {
	Lags        int                      `json:"lags"`
	D           int                      `json:"d"`
	SD          int                      `json:"seasonal_d"`
	Period      int                      `json:"s"`
	Original    SeriesDiagnostics        `json:"original"`
	Differenced SeriesDiagnostics        `json:"differenced"`
	Series      *timedataset.TimeDataset `json:"differenced_series"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

type FitResult struct {
	Kind            session.ModelKind     `json:"kind"`
	Label           string                `json:"label"`
	Order           sarima.Order          `json:"order"`
	Summary         *sarima.Summary       `json:"summary"`
	ModelsEvaluated int                   `json:"models_evaluated"`
	Trace           []autoarima.Candidate `json:"trace,omitempty"`
	Duration        time.Duration         `json:"duration"`
}

// OutlierResidual is a residual outside the widened interquartile range.
type OutlierResidual struct {
	T        time.Time `json:"time"`
	Residual float64   `json:"residual"`
}

type EvaluateResult struct {
	Train     *timedataset.TimeDataset `json:"train"`
	Test      *timedataset.TimeDataset `json:"test"`
	Predicted nullable.Floats          `json:"predicted"`
	Scores    *Scores                  `json:"scores"`
	AIC       nullable.Float           `json:"aic"`
	BIC       nullable.Float           `json:"bic"`
	LjungBox  *stats.LjungBoxResult    `json:"ljung_box,omitempty"`
	Outliers  []OutlierResidual        `json:"outliers"`
	Warnings  []string                 `json:"warnings,omitempty"`
}

// FullRangeResult lines up in-sample and out-of-sample predictions with the whole
// working series.
type FullRangeResult struct {
	T         []time.Time     `json:"time"`
	Actual    []float64       `json:"actual"`
	Predicted nullable.Floats `json:"predicted"`
	NTrain    int             `json:"n_train"`
	Warnings  []string        `json:"warnings,omitempty"`
}

type ForecastResult struct {
	Train      *timedataset.TimeDataset `json:"train"`
	T          []time.Time              `json:"time"`
	Forecast   nullable.Floats          `json:"forecast"`
	Lower      nullable.Floats          `json:"lower"`
	Upper      nullable.Floats          `json:"upper"`
	Confidence float64                  `json:"confidence"`
	Warnings   []string                 `json:"warnings,omitempty"`
}
