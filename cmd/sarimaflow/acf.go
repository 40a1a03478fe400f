package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aouyang1/sarimaflow"
	"github.com/aouyang1/sarimaflow/plot"
	"github.com/aouyang1/sarimaflow/stats"
	"github.com/spf13/cobra"
)

const (
	ACFFilename  = "acf.png"
	PACFFilename = "pacf.png"
)

func newACFCmd(a *app) *cobra.Command {
	opts := &seriesOptions{}
	var lags int
	var out string

	cmd := &cobra.Command{
		Use:     "acf",
		Short:   "Write ACF and PACF plots of a CSV series as PNG",
		Example: `  sarimaflow acf --input sales.csv --d 1 --lags 24 --out ./plots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lags == 0 {
				lags = a.cfg.Workflow.Lags
			}
			if lags < sarimaflow.MinLags || lags > sarimaflow.MaxLags {
				return fmt.Errorf("lags=%d, expected [%d, %d], %w", lags, sarimaflow.MinLags, sarimaflow.MaxLags, sarimaflow.ErrOutOfRange)
			}
			y, err := opts.load()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return fmt.Errorf("unable to create output directory, %w", err)
			}

			acf, err := stats.ACFWithConfidence(y, lags)
			if err != nil {
				return fmt.Errorf("unable to compute acf, %w", err)
			}
			pacf, err := stats.PACFWithConfidence(y, lags)
			if err != nil {
				return fmt.Errorf("unable to compute pacf, %w", err)
			}
			for _, p := range []struct {
				name, title string
				c           *stats.Correlogram
			}{
				{ACFFilename, "ACF", acf},
				{PACFFilename, "PACF", pacf},
			} {
				path := filepath.Join(out, p.name)
				c := p.c
				title := p.title
				if err := writeFile(path, func(w io.Writer) error { return plot.CorrelogramPNG(w, title, c) }); err != nil {
					return err
				}
				a.logger.WithField("file", path).Info("wrote plot")
				fmt.Fprintf(cmd.OutOrStdout(), "%s significant lags: %v\n", p.title, c.Significant())
			}
			return nil
		},
	}
	opts.flags(cmd)
	cmd.Flags().IntVar(&lags, "lags", 0, "number of lags, defaults to the configured lags")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory")
	return cmd
}
