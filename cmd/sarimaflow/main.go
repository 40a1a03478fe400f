// Command sarimaflow serves the SARIMA workflow over HTTP and runs it in batch on
// CSV files.
package main

import (
	"fmt"
	"os"

	"github.com/aouyang1/sarimaflow/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once the persistent flags are parsed.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "sarimaflow",
		Short: "Interactive SARIMA modelling of univariate time series",
		Long: `sarimaflow walks a univariate series through setup, exploration,
identification, fitting, evaluation and forecasting with seasonal ARIMA models.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.sarimaflow.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", config.FormatText, "log format (text, json)")
	a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newADFCmd(a),
		newACFCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if f := a.v.ConfigFileUsed(); f != "" {
		logger.WithField("file", f).Debug("loaded config file")
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
