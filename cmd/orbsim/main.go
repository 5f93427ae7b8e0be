package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const day = 86400.0

var (
	settings = viper.New()
	logger   = log.NewNopLogger()
)

// main registers the orbsim commands and runs the root command, exiting
// with status 1 on error.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "orbsim",
		Short:         "newtonian n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := loadSettings(); err != nil {
				return err
			}
			var err error
			logger, err = newLogger(settings.GetString("log-level"))
			return err
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", ".orbsim", "data directory for saved runs")
	pf.String("log-level", "info", "log level: debug, info, warn, error, none")
	pf.String("settings", "", "settings file (default ./orbsim.yaml if present)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newCompareCmd(),
		newPresetsCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportJSONCmd(),
		newExportStateCmd(),
		newExportSVGCmd(),
		newBatchCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
		newAnalyzeCmd(),
		newTuneCmd(),
	)
	return rootCmd
}

// loadSettings layers the environment (ORBSIM_*) and an optional settings
// file under the command line flags.
func loadSettings() error {
	settings.SetEnvPrefix("ORBSIM")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	if path := settings.GetString("settings"); path != "" {
		settings.SetConfigFile(path)
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("read settings: %w", err)
		}
		return nil
	}

	settings.SetConfigName("orbsim")
	settings.SetConfigType("yaml")
	settings.AddConfigPath(".")
	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read settings: %w", err)
		}
	}
	return nil
}

func newLogger(lvl string) (log.Logger, error) {
	var opt level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		opt = level.AllowDebug()
	case "info", "":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		return log.NewNopLogger(), nil
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}

	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC)
	return level.NewFilter(l, opt), nil
}
