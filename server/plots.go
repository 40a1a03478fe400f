package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/plot"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/gorilla/mux"
)

const (
	formatHTML = "html"
	formatPNG  = "png"
)

// Plot names accepted by /plots/{name}.
const (
	PlotSeries     = "series"
	PlotSplit      = "split"
	PlotQQ         = "qq"
	PlotACF        = "acf"
	PlotPACF       = "pacf"
	PlotACFDiff    = "acf_diff"
	PlotPACFDiff   = "pacf_diff"
	PlotEvaluation = "evaluation"
	PlotFullRange  = "full_range"
	PlotForecast   = "forecast"
	PlotReport     = "report"
)

const pngPlots = "series, qq, acf, pacf, acf_diff, pacf_diff"

// identifyAgain recomputes the correlograms with the differencing stored by the
// identify step.
func (s *Server) identifyAgain(r *http.Request, st *session.State) (*sarimaflow.IdentifyResult, error) {
	if err := st.Require(session.KeyDifferenced); err != nil {
		return nil, err
	}
	lags, err := queryInt(r, "lags", s.workflow.IdentifyOptions().Lags)
	if err != nil {
		return nil, err
	}
	return sarimaflow.Identify(st, &sarimaflow.IdentifyOptions{
		Lags:   lags,
		D:      st.Differenced.D,
		SD:     st.Differenced.SD,
		Period: st.Differenced.Period,
	})
}

func (s *Server) correlogram(r *http.Request, st *session.State, name string) (*stats.Correlogram, string, error) {
	res, err := s.identifyAgain(r, st)
	if err != nil {
		return nil, "", err
	}
	var c *stats.Correlogram
	var title string
	switch name {
	case PlotACF:
		c, title = res.Original.ACF, "ACF"
	case PlotPACF:
		c, title = res.Original.PACF, "PACF"
	case PlotACFDiff:
		c, title = res.Differenced.ACF, "ACF Setelah Differencing"
	case PlotPACFDiff:
		c, title = res.Differenced.PACF, "PACF Setelah Differencing"
	}
	if c == nil {
		return nil, "", fmt.Errorf("%s unavailable, %s", title, joinWarnings(res.Warnings))
	}
	return c, title, nil
}

func joinWarnings(w []string) string {
	if len(w) == 0 {
		return "no data"
	}
	return strings.Join(w, "; ")
}

func (s *Server) renderPNG(buf *bytes.Buffer, r *http.Request, st *session.State, name string) error {
	switch name {
	case PlotSeries:
		if err := st.Require(session.KeySeries); err != nil {
			return err
		}
		return plot.SeriesPNG(buf, "Plot Time Series", st.Series)
	case PlotQQ:
		res, err := sarimaflow.Explore(st)
		if err != nil {
			return err
		}
		if res.QQ == nil {
			return fmt.Errorf("qq plot unavailable, %s", joinWarnings(res.Warnings))
		}
		return plot.QQPNG(buf, res.QQ)
	case PlotACF, PlotPACF, PlotACFDiff, PlotPACFDiff:
		c, title, err := s.correlogram(r, st, name)
		if err != nil {
			return err
		}
		return plot.CorrelogramPNG(buf, title, c)
	case PlotSplit, PlotEvaluation, PlotFullRange, PlotForecast, PlotReport:
		return fmt.Errorf("%s is html only, png supports %s, %w", name, pngPlots, ErrBadFormat)
	default:
		return fmt.Errorf("%q, %w", name, ErrBadPlot)
	}
}

func (s *Server) renderHTML(buf *bytes.Buffer, r *http.Request, st *session.State, name string) error {
	page := components.NewPage()
	page.PageTitle = name
	switch name {
	case PlotSeries:
		if err := st.Require(session.KeySeries); err != nil {
			return err
		}
		page.AddCharts(plot.SeriesChart("Plot Time Series", st.Series))
	case PlotSplit:
		if err := st.Require(session.KeyTrain); err != nil {
			return err
		}
		page.AddCharts(plot.SplitChart(st.Train, st.Test))
	case PlotQQ:
		res, err := sarimaflow.Explore(st)
		if err != nil {
			return err
		}
		if res.QQ == nil {
			return fmt.Errorf("qq plot unavailable, %s", joinWarnings(res.Warnings))
		}
		page.AddCharts(plot.QQChart(res.QQ))
	case PlotACF, PlotPACF, PlotACFDiff, PlotPACFDiff:
		c, title, err := s.correlogram(r, st, name)
		if err != nil {
			return err
		}
		page.AddCharts(plot.CorrelogramChart(title, c))
	case PlotEvaluation:
		res, err := sarimaflow.Evaluate(st)
		if err != nil {
			return err
		}
		page.AddCharts(plot.EvaluationChart(res))
	case PlotFullRange:
		res, err := sarimaflow.FullRange(st)
		if err != nil {
			return err
		}
		page.AddCharts(plot.FullRangeChart(res))
	case PlotForecast:
		opt, err := s.forecastOptions(r)
		if err != nil {
			return err
		}
		res, err := sarimaflow.Forecast(st, opt)
		if err != nil {
			return err
		}
		page.AddCharts(plot.ForecastChart(res))
	case PlotReport:
		report, err := s.report(r, st)
		if err != nil {
			return err
		}
		page = report.Page()
	default:
		return fmt.Errorf("%q, %w", name, ErrBadPlot)
	}
	return page.Render(buf)
}

// report gathers every step the session has reached.
func (s *Server) report(r *http.Request, st *session.State) (plot.Report, error) {
	var rep plot.Report
	var err error
	if st.Series == nil {
		return rep, st.Require(session.KeySeries)
	}
	rep.Setup = &sarimaflow.SetupResult{
		Series:       st.Series,
		Frequency:    st.Frequency,
		Start:        st.StartDate,
		TrainPercent: st.TrainPercent,
		NTrain:       st.Train.Len(),
		NTest:        st.Test.Len(),
	}
	if rep.Explore, err = sarimaflow.Explore(st); err != nil {
		return rep, err
	}
	if st.Differenced != nil {
		if rep.Identify, err = s.identifyAgain(r, st); err != nil {
			return rep, err
		}
	}
	if st.Model == nil {
		return rep, nil
	}
	if rep.Evaluate, err = sarimaflow.Evaluate(st); err != nil {
		return rep, err
	}
	if rep.FullRange, err = sarimaflow.FullRange(st); err != nil {
		return rep, err
	}
	opt, err := s.forecastOptions(r)
	if err != nil {
		return rep, err
	}
	rep.Forecast, err = sarimaflow.Forecast(st, opt)
	return rep, err
}

func (s *Server) plot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatHTML
	}

	st, err := s.load(r.Context(), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case formatHTML:
		err = s.renderHTML(&buf, r, st, name)
		contentType = "text/html; charset=utf-8"
	case formatPNG:
		err = s.renderPNG(&buf, r, st, name)
		contentType = "image/png"
	default:
		err = fmt.Errorf("format=%q, expected %q or %q, %w", format, formatHTML, formatPNG, ErrBadFormat)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}
