package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/colstats/internal/config"
	"github.com/KaramelBytes/colstats/internal/logger"
)

var (
	// Global flags
	cfgFile         string
	debug           bool
	flagLogLevel    string
	metricsTextfile string

	// Loaded configuration
	cfg *cfgpkg.Global
	// log is tagged with the run id once configuration is loaded.
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "colstats",
	Short: "colstats: infer column types and compute summary statistics for CSV data",
	Long: `colstats reads a CSV/TSV file, infers the type of every column and computes
summary statistics (sum, min/max, mean, stddev, quartiles, modes and more).
Build an index with "colstats index" to compute statistics in parallel.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.colstats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after a run")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	lc := logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}
	if rootCmd.PersistentFlags().Changed("log-level") {
		lc.Level = flagLogLevel
	}
	if debug {
		lc.Level = "debug"
		lc.Development = true
	}
	l, err := logger.New(lc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v; logging disabled\n", err)
		l = zap.NewNop()
	}
	log, _ = logger.WithRun(l)
	log.Debug("configuration loaded", zap.String("config", cfgFile), zap.String("log_level", lc.Level))
}
