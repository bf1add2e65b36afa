package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/summarease-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger is rebuilt from --debug before each command runs.
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "summarease",
	Short: "Summarease CLI: quick target-variable summaries for tabular datasets",
	Long: `Summarease summarizes the target column of a CSV/TSV/XLSX dataset: class balance
with an imbalance threshold for categorical targets, mean and standard deviation
for numerical ones, and class-balance charts rendered as HTML or Vega-Lite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(setupLogging, loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.summarease/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func setupLogging() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	logger.Debug("config loaded", "file", cfgFile, "output_format", cfg.OutputFormat)
}

// settings returns the loaded configuration or the built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		DefaultThreshold:  0.2,
		DefaultTargetType: "categorical",
		OutputFormat:      "table",
		ColorOutput:       true,
	}
}
