// Package app contains the Cobra command tree for surveyinsights.
package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"survey-insights-go/internal/config"
	"survey-insights-go/internal/logger"
)

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "surveyinsights",
	Short: "Category sentiment rollups for employee surveys",
	Long: `surveyinsights joins exit and engagement survey responses to a three-level
question category mapping, computes agree/disagree/unanswered percentages for
every category and classifies each one Green, Red, Grey or Orange for a
sunburst chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ./surveyinsights.yaml or ~/.config/surveyinsights/)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// loadConfig loads configuration and applies the global logging flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	lvl := cfg.Log.Level
	if flagVerbose {
		lvl = "debug"
	}
	logger.Configure(lvl, cfg.Log.Format)
	return cfg, nil
}

// useColor reports whether styled output should be written to stdout.
func useColor(cfg *config.Config) bool {
	if flagNoColor || !cfg.Output.Color {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
