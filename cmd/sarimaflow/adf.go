package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aouyang1/sarimaflow/stats"
	"github.com/aouyang1/sarimaflow/timedataset"
	"github.com/spf13/cobra"
)

type seriesOptions struct {
	Input  string
	D      int
	SD     int
	Period int
}

func (o *seriesOptions) flags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.Input, "input", "i", "", "input CSV file (required)")
	flags.IntVar(&o.D, "d", 0, "differencing order")
	flags.IntVar(&o.SD, "seasonal-d", 0, "seasonal differencing order")
	flags.IntVar(&o.Period, "period", 0, "seasonal period")
	cmd.MarkFlagRequired("input")
}

// load reads the CSV and applies the requested differencing.
func (o *seriesOptions) load() ([]float64, error) {
	f, err := os.Open(o.Input)
	if err != nil {
		return nil, fmt.Errorf("unable to open input, %w", err)
	}
	defer f.Close()

	y, err := timedataset.ReadValues(f)
	if err != nil {
		return nil, fmt.Errorf("unable to read values, %w", err)
	}
	w, err := stats.Difference(y, o.D, o.SD, o.Period)
	if err != nil {
		return nil, fmt.Errorf("unable to difference series, %w", err)
	}
	return w, nil
}

func newADFCmd(a *app) *cobra.Command {
	opts := &seriesOptions{}
	cmd := &cobra.Command{
		Use:     "adf",
		Short:   "Augmented Dickey-Fuller test on a CSV series",
		Example: `  sarimaflow adf --input sales.csv --d 1 --seasonal-d 1 --period 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := opts.load()
			if err != nil {
				return err
			}
			res, err := stats.ADF(y, stats.NewDefaultADFOptions())
			if err != nil {
				return fmt.Errorf("unable to run adf test, %w", err)
			}
			return printADF(cmd.OutOrStdout(), res)
		},
	}
	opts.flags(cmd)
	return cmd
}

func printADF(out io.Writer, res *stats.ADFResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ADF Statistic\t%.6f\n", res.Statistic)
	fmt.Fprintf(w, "p-value\t%.6g\n", res.PValue)
	fmt.Fprintf(w, "Lags Used\t%d\n", res.UsedLag)
	fmt.Fprintf(w, "Observations\t%d\n", res.NObs)
	for _, k := range []string{"1%", "5%", "10%"} {
		fmt.Fprintf(w, "Critical Value (%s)\t%.4f\n", k, res.CriticalValues[k])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, stats.HypothesisNull)
	fmt.Fprintln(w, stats.HypothesisAlternative)
	fmt.Fprintln(w, stats.DecisionRule)
	fmt.Fprintln(w, res.Conclusion())
	return w.Flush()
}
