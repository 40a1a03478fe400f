// Package plot renders workflow results as interactive HTML pages and static PNG
// images.
package plot

import (
	"io"
	"math"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const dateLayout = "2006-01-02"

func dates(t []time.Time) []string {
	out := make([]string, len(t))
	for i, v := range t {
		out[i] = v.Format(dateLayout)
	}
	return out
}

// lineData leaves NaN as an empty point so the line shows a gap.
func lineData(y []float64) []opts.LineData {
	out := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func pad(y []float64, before, total int) []float64 {
	out := make([]float64, total)
	for i := range out {
		out[i] = math.NaN()
	}
	copy(out[before:], y)
	return out
}

func newLine(title, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Waktu"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	return line
}

// LineTSeries plots several series sharing the time axis t. Every y must have the
// length of t.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := newLine(title, "Nilai")
	line.SetXAxis(dates(t))
	for i, name := range seriesName {
		line.AddSeries(name, lineData(y[i]))
	}
	return line
}

// SeriesChart plots the working series.
func SeriesChart(title string, ds *timedataset.TimeDataset) *charts.Line {
	return LineTSeries(title, []string{"Data"}, ds.T, [][]float64{ds.Y})
}

// SplitChart overlays the training and testing parts of the series.
func SplitChart(train, test *timedataset.TimeDataset) *charts.Line {
	n := train.Len() + test.Len()
	t := append(append([]time.Time{}, train.T...), test.T...)
	return LineTSeries(
		"Training & Testing",
		[]string{"Training", "Testing"},
		t,
		[][]float64{pad(train.Y, 0, n), pad(test.Y, train.Len(), n)},
	)
}

// EvaluationChart shows the testing forecast next to the actual values.
func EvaluationChart(res *sarimaflow.EvaluateResult) *charts.Line {
	nTrain := res.Train.Len()
	n := nTrain + res.Test.Len()
	t := append(append([]time.Time{}, res.Train.T...), res.Test.T...)
	return LineTSeries(
		"Prediksi vs Aktual (Training + Testing)",
		[]string{"Training", "Testing", "Prediksi"},
		t,
		[][]float64{pad(res.Train.Y, 0, n), pad(res.Test.Y, nTrain, n), pad(res.Predicted, nTrain, n)},
	)
}

// FullRangeChart compares actual values and predictions over the whole series.
func FullRangeChart(res *sarimaflow.FullRangeResult) *charts.Line {
	return LineTSeries(
		"Prediksi vs Aktual (Seluruh Periode)",
		[]string{"Aktual", "Prediksi"},
		res.T,
		[][]float64{res.Actual, res.Predicted},
	)
}

// ForecastChart plots the training series followed by the forecast and its interval.
func ForecastChart(res *sarimaflow.ForecastResult) *charts.Line {
	nTrain := res.Train.Len()
	n := nTrain + len(res.T)
	t := append(append([]time.Time{}, res.Train.T...), res.T...)

	line := LineTSeries(
		"Prediksi Waktu ke Depan",
		[]string{"Training", "Prediksi"},
		t,
		[][]float64{pad(res.Train.Y, 0, n), pad(res.Forecast, nTrain, n)},
	)
	dashed := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})
	line.AddSeries("Batas Bawah", lineData(pad(res.Lower, nTrain, n)), dashed)
	line.AddSeries("Batas Atas", lineData(pad(res.Upper, nTrain, n)), dashed)
	return line
}

// CorrelogramChart draws correlations as bars with the 95% band as dashed lines.
func CorrelogramChart(title string, c *stats.Correlogram) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lag"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	bars := make([]opts.BarData, len(c.Values))
	upper := make([]opts.LineData, len(c.Values))
	lower := make([]opts.LineData, len(c.Values))
	for i, v := range c.Values {
		bars[i] = opts.BarData{Value: v}
		if i == 0 {
			continue
		}
		upper[i] = opts.LineData{Value: c.Bands[i]}
		lower[i] = opts.LineData{Value: -c.Bands[i]}
	}
	bar.SetXAxis(c.Lags).AddSeries(title, bars)

	band := charts.NewLine()
	band.SetXAxis(c.Lags).
		AddSeries("95%", upper, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("-95%", lower, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	bar.Overlap(band)
	return bar
}

// QQChart scatters the ordered sample against normal quantiles with the fitted line.
func QQChart(qq *stats.QQResult) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "QQ-Plot"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Theoretical Quantiles", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Ordered Values", Type: "value"}),
	)

	points := make([]opts.ScatterData, len(qq.Theoretical))
	for i := range qq.Theoretical {
		points[i] = opts.ScatterData{Value: []float64{qq.Theoretical[i], qq.Ordered[i]}}
	}
	scatter.AddSeries("Sample", points)

	if n := len(qq.Theoretical); n > 0 {
		x0, x1 := qq.Theoretical[0], qq.Theoretical[n-1]
		ref := charts.NewLine()
		ref.AddSeries("Reference", []opts.LineData{
			{Value: []float64{x0, qq.Intercept + qq.Slope*x0}},
			{Value: []float64{x1, qq.Intercept + qq.Slope*x1}},
		})
		scatter.Overlap(ref)
	}
	return scatter
}

// Report collects the charts of whichever steps have results.
type Report struct {
	Setup     *sarimaflow.SetupResult
	Explore   *sarimaflow.ExploreResult
	Identify  *sarimaflow.IdentifyResult
	Evaluate  *sarimaflow.EvaluateResult
	FullRange *sarimaflow.FullRangeResult
	Forecast  *sarimaflow.ForecastResult
}

func (r Report) Page() *components.Page {
	page := components.NewPage()
	page.PageTitle = "SARIMA"
	if r.Setup != nil {
		page.AddCharts(SeriesChart("Plot Time Series", r.Setup.Series))
	}
	if r.Explore != nil {
		page.AddCharts(SeriesChart("Plot Data Training", r.Explore.Train))
		if r.Explore.QQ != nil {
			page.AddCharts(QQChart(r.Explore.QQ))
		}
	}
	if r.Identify != nil {
		if r.Identify.Series != nil && r.Identify.Series.Len() > 0 {
			page.AddCharts(SeriesChart("Plot Setelah Differencing", r.Identify.Series))
		}
		for _, c := range []struct {
			title string
			corr  *stats.Correlogram
		}{
			{"ACF", r.Identify.Original.ACF},
			{"PACF", r.Identify.Original.PACF},
			{"ACF Setelah Differencing", r.Identify.Differenced.ACF},
			{"PACF Setelah Differencing", r.Identify.Differenced.PACF},
		} {
			if c.corr != nil {
				page.AddCharts(CorrelogramChart(c.title, c.corr))
			}
		}
	}
	if r.Evaluate != nil {
		page.AddCharts(EvaluationChart(r.Evaluate))
	}
	if r.FullRange != nil {
		page.AddCharts(FullRangeChart(r.FullRange))
	}
	if r.Forecast != nil {
		page.AddCharts(ForecastChart(r.Forecast))
	}
	return page
}

// Render writes the report as a standalone HTML page.
func (r Report) Render(w io.Writer) error {
	return r.Page().Render(w)
}
