// Package cli implements the jaldrishti command line.
package cli

import (
	"github.com/spf13/cobra"

	"jaldrishti/internal/config"
	"jaldrishti/internal/logger"
)

var (
	envFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jaldrishti",
	Short: "Water quality monitoring service",
	Long: `Jal Drishti simulates a network of river water-quality sensors, raises alerts when
heavy metal concentrations exceed safety limits and serves the results to a dashboard.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the environment and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}
