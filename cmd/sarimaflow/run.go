package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/autoarima"
	"github.com/aouyang1/sarimaflow/export"
	"github.com/aouyang1/sarimaflow/plot"
	"github.com/aouyang1/sarimaflow/sarima"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const ReportFilename = "report.html"

type runOptions struct {
	Input        string
	Out          string
	Start        string
	Frequency    string
	TrainPercent int
	Lags         int
	D            int
	SD           int
	Period       int
	Kind         string
	Order        []int
	Seasonal     []int
	Horizon      int
	Confidence   float64
	Profile      string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all six workflow steps on a CSV file",
		Long: `Run setup, explore, identify, fit, evaluate and forecast on a single
column CSV. Writes report.html, prediksi_dari_awal.csv and forecast_output.csv
into the output directory and prints the model summary.`,
		Example: `  sarimaflow run --input sales.csv --freq M --out ./out
  sarimaflow run --input sales.csv --model manual --order 1,1,1 --seasonal-order 0,1,1 --period 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Input, "input", "i", "", "input CSV file (required)")
	flags.StringVarP(&opts.Out, "out", "o", ".", "output directory")
	flags.StringVar(&opts.Start, "start", sarimaflow.DefaultStartDate.Format(export.DateLayout), "start date of the series")
	flags.StringVar(&opts.Frequency, "freq", "", "frequency (D, M, Y, B), defaults to the configured frequency")
	flags.IntVar(&opts.TrainPercent, "train-pct", 0, "training percentage, defaults to the configured split")
	flags.IntVar(&opts.Lags, "lags", 0, "ACF/PACF lags, defaults to the configured lags")
	flags.IntVar(&opts.D, "d", sarimaflow.DefaultIdentifyD, "differencing order for identification")
	flags.IntVar(&opts.SD, "seasonal-d", sarimaflow.DefaultIdentifySD, "seasonal differencing order for identification")
	flags.IntVar(&opts.Period, "period", 0, "seasonal period, defaults to the configured period")
	flags.StringVar(&opts.Kind, "model", string(session.ModelAuto), "model kind (auto, manual)")
	flags.IntSliceVar(&opts.Order, "order", []int{1, 1, 1}, "manual p,d,q")
	flags.IntSliceVar(&opts.Seasonal, "seasonal-order", []int{0, 0, 0}, "manual P,D,Q")
	flags.IntVar(&opts.Horizon, "horizon", 0, "forecast steps, defaults to the configured horizon")
	flags.Float64Var(&opts.Confidence, "conf", 0, "forecast interval confidence, defaults to the configured level")
	flags.StringVar(&opts.Profile, "profile", "", "write a cpu or mem profile into the output directory")
	cmd.MarkFlagRequired("input")
	return cmd
}

func triple(name string, v []int) ([3]int, error) {
	var out [3]int
	if len(v) != 3 {
		return out, fmt.Errorf("--%s expects three values, got %d, %w", name, len(v), sarimaflow.ErrOutOfRange)
	}
	copy(out[:], v)
	return out, nil
}

// options resolves the flags against the configured workflow defaults.
func (a *app) options(o *runOptions) (*sarimaflow.SetupOptions, *sarimaflow.IdentifyOptions, *sarimaflow.FitOptions, *sarimaflow.ForecastOptions, error) {
	wf := a.cfg.Workflow
	setup := wf.SetupOptions()
	start, err := time.Parse(export.DateLayout, o.Start)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("unable to parse start date %q, %w", o.Start, err)
	}
	setup.Start = start
	if o.Frequency != "" {
		if setup.Frequency, err = timedataset.ParseFrequency(o.Frequency); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if o.TrainPercent != 0 {
		setup.TrainPercent = o.TrainPercent
	}

	ident := wf.IdentifyOptions()
	if o.Lags != 0 {
		ident.Lags = o.Lags
	}
	if o.Period != 0 {
		ident.Period = o.Period
	}
	ident.D, ident.SD = o.D, o.SD

	fit := wf.FitOptions()
	fit.Kind = session.ModelKind(o.Kind)
	fit.Period = ident.Period
	order, err := triple("order", o.Order)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	seasonal, err := triple("seasonal-order", o.Seasonal)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	fit.Order = sarima.Order{
		P: order[0], D: order[1], Q: order[2],
		SP: seasonal[0], SD: seasonal[1], SQ: seasonal[2],
		M: ident.Period,
	}

	fc := wf.ForecastOptions()
	if o.Horizon != 0 {
		fc.Horizon = o.Horizon
	}
	if o.Confidence != 0 {
		fc.Confidence = o.Confidence
	}
	return setup, ident, fit, fc, nil
}

func startProfile(kind, dir string) (interface{ Stop() }, error) {
	switch kind {
	case "":
		return nil, nil
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook), nil
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook), nil
	default:
		return nil, fmt.Errorf("--profile=%q, expected cpu or mem, %w", kind, sarimaflow.ErrOutOfRange)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to write %s, %w", path, err)
	}
	return f.Close()
}

func (a *app) run(ctx context.Context, out io.Writer, o *runOptions) error {
	setupOpt, identOpt, fitOpt, fcOpt, err := a.options(o)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(o.Out, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory, %w", err)
	}
	prof, err := startProfile(o.Profile, o.Out)
	if err != nil {
		return err
	}
	if prof != nil {
		defer prof.Stop()
	}

	in, err := os.Open(o.Input)
	if err != nil {
		return fmt.Errorf("unable to open input, %w", err)
	}
	defer in.Close()

	state := session.New()
	log := a.logger.WithField("session", state.ID)
	var rep plot.Report

	if rep.Setup, err = sarimaflow.SetupCSV(state, in, setupOpt); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"step":  "setup",
		"train": rep.Setup.NTrain,
		"test":  rep.Setup.NTest,
	}).Info("series loaded")

	if rep.Explore, err = sarimaflow.Explore(state); err != nil {
		return err
	}
	warn(log, "explore", rep.Explore.Warnings)

	if rep.Identify, err = sarimaflow.Identify(state, identOpt); err != nil {
		return err
	}
	warn(log, "identify", rep.Identify.Warnings)

	if fitOpt.Kind == session.ModelAuto {
		search := autoarima.NewDefaultOptions()
		search.OnCandidate = func(c autoarima.Candidate) {
			log.WithFields(logrus.Fields{
				"step":  "fit",
				"order": c.Order.String(),
				"score": float64(c.Score),
			}).Debug("candidate evaluated")
		}
		fitOpt.Search = search
	}
	fit, err := sarimaflow.Fit(ctx, state, fitOpt)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"step":     "fit",
		"order":    fit.Label,
		"models":   fit.ModelsEvaluated,
		"duration": fit.Duration,
	}).Info("model fitted")
	if err := fit.Summary.TablePrint(out, "", "  "); err != nil {
		return err
	}

	if rep.Evaluate, err = sarimaflow.Evaluate(state); err != nil {
		return err
	}
	warn(log, "evaluate", rep.Evaluate.Warnings)
	s := rep.Evaluate.Scores
	fmt.Fprintf(out, "\nMAE %.4f  RMSE %.4f  MAPE %.2f%%  R2 %.4f\n", float64(s.MAE), float64(s.RMSE), float64(s.MAPE), float64(s.R2))

	if rep.FullRange, err = sarimaflow.FullRange(state); err != nil {
		return err
	}
	if rep.Forecast, err = sarimaflow.Forecast(state, fcOpt); err != nil {
		return err
	}

	full, fc := rep.FullRange, rep.Forecast
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{ReportFilename, rep.Render},
		{export.FullRangeFilename, func(w io.Writer) error {
			return export.WriteFullRange(w, full.T, full.Actual, full.Predicted)
		}},
		{export.ForecastFilename, func(w io.Writer) error {
			return export.WriteForecast(w, fc.Train.T, fc.Train.Y, fc.T, fc.Forecast)
		}},
	}
	for _, f := range files {
		path := filepath.Join(o.Out, f.name)
		if err := writeFile(path, f.write); err != nil {
			return err
		}
		log.WithField("file", path).Info("wrote output")
	}
	return nil
}

func warn(log *logrus.Entry, step string, warnings []string) {
	for _, w := range warnings {
		log.WithField("step", step).Warn(w)
	}
}
