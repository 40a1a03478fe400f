package plot

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedReport(t *testing.T) Report {
	t.Helper()
	n := 60
	y := timedataset.GenerateConstY(n, 50).
		Add(timedataset.GenerateSeasonalY(n, 5, 12)).
		Add(timedataset.GenerateNoise(n, 1, 7))

	state := session.New()
	var r Report
	var err error
	r.Setup, err = sarimaflow.Setup(state, []float64(y), &sarimaflow.SetupOptions{
		Start:        time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Frequency:    timedataset.MonthEnd,
		TrainPercent: 80,
	})
	require.NoError(t, err)
	r.Explore, err = sarimaflow.Explore(state)
	require.NoError(t, err)
	r.Identify, err = sarimaflow.Identify(state, &sarimaflow.IdentifyOptions{Lags: 12, D: 1, SD: 0, Period: 12})
	require.NoError(t, err)
	_, err = sarimaflow.Fit(context.Background(), state, &sarimaflow.FitOptions{
		Kind:   session.ModelManual,
		Order:  sarima.Order{P: 1, D: 0, Q: 0, M: 12},
		Period: 12,
	})
	require.NoError(t, err)
	r.Evaluate, err = sarimaflow.Evaluate(state)
	require.NoError(t, err)
	r.FullRange, err = sarimaflow.FullRange(state)
	require.NoError(t, err)
	r.Forecast, err = sarimaflow.Forecast(state, nil)
	require.NoError(t, err)
	return r
}

func TestReportRender(t *testing.T) {
	r := fittedReport(t)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf))
	html := buf.String()
	for _, title := range []string{
		"Plot Time Series",
		"QQ-Plot",
		"PACF Setelah Differencing",
		"Prediksi vs Aktual (Training + Testing)",
		"Prediksi vs Aktual (Seluruh Periode)",
		"Prediksi Waktu ke Depan",
	} {
		assert.Contains(t, html, title)
	}

	buf.Reset()
	require.NoError(t, Report{Setup: r.Setup}.Render(&buf))
	assert.Contains(t, buf.String(), "Plot Time Series")
	assert.NotContains(t, buf.String(), "Prediksi Waktu ke Depan")
}

func TestLineDataGaps(t *testing.T) {
	data := lineData([]float64{1, math.NaN(), 3})
	require.Len(t, data, 3)
	assert.Equal(t, 1.0, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Equal(t, 3.0, data[2].Value)

	padded := pad([]float64{7, 8}, 2, 5)
	assert.Len(t, padded, 5)
	assert.True(t, math.IsNaN(padded[0]))
	assert.Equal(t, []float64{7, 8}, padded[2:4])
}

func TestPNG(t *testing.T) {
	r := fittedReport(t)
	acf := r.Identify.Original.ACF
	require.NotNil(t, acf)

	testData := map[string]struct {
		render func(*bytes.Buffer) error
	}{
		"acf": {
			render: func(b *bytes.Buffer) error { return CorrelogramPNG(b, "ACF", acf) },
		},
		"pacf": {
			render: func(b *bytes.Buffer) error { return CorrelogramPNG(b, "PACF", r.Identify.Original.PACF) },
		},
		"qq": {
			render: func(b *bytes.Buffer) error { return QQPNG(b, r.Explore.QQ) },
		},
		"series": {
			render: func(b *bytes.Buffer) error { return SeriesPNG(b, "Data", r.Setup.Series) },
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, td.render(&buf))
			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, pngWidth, img.Bounds().Dx())
			assert.Equal(t, pngHeight, img.Bounds().Dy())
		})
	}
}

func TestPNGNoPoints(t *testing.T) {
	var buf bytes.Buffer
	err := CorrelogramPNG(&buf, "ACF", &stats.Correlogram{Lags: []int{0}, Values: []float64{1}, Bands: []float64{0}})
	assert.ErrorIs(t, err, ErrNoPoints)

	err = QQPNG(&buf, &stats.QQResult{Theoretical: []float64{0}, Ordered: []float64{1}})
	assert.ErrorIs(t, err, ErrNoPoints)

	ds, err := timedataset.NewUnivariateDataset(
		[]time.Time{time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
		[]float64{1, math.NaN()},
	)
	require.NoError(t, err)
	err = SeriesPNG(&buf, "Data", ds)
	assert.ErrorIs(t, err, ErrNoPoints)
}
