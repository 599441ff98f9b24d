package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thepostgresguy/pgtools-sub000/internal/utils"
	"github.com/thepostgresguy/pgtools-sub000/pkg/version"
)

// Exit codes. Usage and config problems are 1, failures that prevent a
// plan from being built are 2, and a run whose plan was built but had
// failing operations is 3.
const (
	exitUsageError = 1
	exitPlanError  = 2
	exitOpsFailed  = 3
)

var (
	cfgFile string
	pgURL   string
	debug   bool

	logger *logrus.Logger
)

// exitError carries a specific process exit code through RunE
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "pgtools",
	Short: "PostgreSQL maintenance scheduler",
	Long: `pgtools inspects table statistics, decides which tables need vacuum or
analyze work, and runs the resulting plan under a concurrency bound.
Every invocation is one-shot: it computes a plan, executes it to
completion, and prints a run summary.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() {
	rootCmd.Version = version.GetVersionOnly()
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitUsageError)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pgtools")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	logger = utils.NewLogger(debug)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Debug("No config file found, proceeding with flags and environment only")
		} else {
			return &exitError{code: exitUsageError, err: fmt.Errorf("error reading config file: %w", err)}
		}
	} else {
		logger.Debugf("Using config file %s", viper.ConfigFileUsed())
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PGT")

	// The persistent --url flag beats both environment and config file.
	// Routing it through the bound env var keeps pg.ConfigFromViper the
	// single place the URL is resolved.
	if pgURL != "" {
		os.Setenv("PGT_POSTGRESQL_CONNECTION_URL", pgURL)
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./pgtools.yaml)")
	rootCmd.PersistentFlags().StringVar(&pgURL, "url", "", "PostgreSQL connection URL")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}
