package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoPoints = errors.New("no finite points to plot")

const (
	pngWidth  = 900
	pngHeight = 420
)

var (
	stemStyle = chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2}
	dotStyle  = chart.Style{
		StrokeWidth: chart.Disabled,
		DotColor:    chart.ColorBlue,
		DotWidth:    4,
	}
	bandStyle = chart.Style{
		StrokeColor:     drawing.ColorRed,
		StrokeWidth:     1,
		StrokeDashArray: []float64{5, 5},
	}
)

func newPNGChart(title, xName, yName string) chart.Chart {
	return chart.Chart{
		Title:  title,
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Name: xName},
		YAxis: chart.YAxis{Name: yName},
	}
}

// CorrelogramPNG draws a stem plot of c with its 95% band.
func CorrelogramPNG(w io.Writer, title string, c *stats.Correlogram) error {
	if len(c.Values) < 2 {
		return fmt.Errorf("unable to plot %s with %d lags, %w", title, len(c.Values), ErrNoPoints)
	}
	ch := newPNGChart(title, "Lag", title)
	ch.YAxis.Range = &chart.ContinuousRange{Min: -1.05, Max: 1.05}

	x := make([]float64, len(c.Values))
	upper := make([]float64, len(c.Values))
	lower := make([]float64, len(c.Values))
	for i, v := range c.Values {
		x[i] = float64(c.Lags[i])
		ch.Series = append(ch.Series, chart.ContinuousSeries{
			XValues: []float64{x[i], x[i]},
			YValues: []float64{0, v},
			Style:   stemStyle,
		})
		upper[i] = c.Bands[i]
		lower[i] = -c.Bands[i]
	}
	ch.Series = append(ch.Series,
		chart.ContinuousSeries{Name: title, XValues: x, YValues: c.Values, Style: dotStyle},
		chart.ContinuousSeries{Name: "95%", XValues: x[1:], YValues: upper[1:], Style: bandStyle},
		chart.ContinuousSeries{XValues: x[1:], YValues: lower[1:], Style: bandStyle},
	)
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render %s, %w", title, err)
	}
	return nil
}

// QQPNG draws the normal probability plot with its least squares line.
func QQPNG(w io.Writer, qq *stats.QQResult) error {
	n := len(qq.Theoretical)
	if n < 2 {
		return fmt.Errorf("unable to plot qq with %d points, %w", n, ErrNoPoints)
	}
	x0, x1 := qq.Theoretical[0], qq.Theoretical[n-1]

	ch := newPNGChart("QQ-Plot", "Theoretical Quantiles", "Ordered Values")
	ch.Series = []chart.Series{
		chart.ContinuousSeries{Name: "Sample", XValues: qq.Theoretical, YValues: qq.Ordered, Style: dotStyle},
		chart.ContinuousSeries{
			Name:    "Reference",
			XValues: []float64{x0, x1},
			YValues: []float64{qq.Intercept + qq.Slope*x0, qq.Intercept + qq.Slope*x1},
			Style:   chart.Style{StrokeColor: drawing.ColorRed, StrokeWidth: 2},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render qq plot, %w", err)
	}
	return nil
}

// SeriesPNG draws ds as a time series, skipping NaN values.
func SeriesPNG(w io.Writer, title string, ds *timedataset.TimeDataset) error {
	ts := chart.TimeSeries{Name: title, Style: chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2}}
	for i, v := range ds.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ts.XValues = append(ts.XValues, ds.T[i])
		ts.YValues = append(ts.YValues, v)
	}
	if len(ts.XValues) < 2 {
		return fmt.Errorf("unable to plot %s, %w", title, ErrNoPoints)
	}

	ch := newPNGChart(title, "Waktu", "Nilai")
	ch.XAxis.ValueFormatter = chart.TimeDateValueFormatter
	ch.Series = []chart.Series{ts}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("unable to render %s, %w", title, err)
	}
	return nil
}
