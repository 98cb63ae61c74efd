package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/riskloom-cli/internal/config"
	"github.com/KaramelBytes/riskloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "riskloom",
	Short: "RiskLoom CLI: score student dropout risk from messy attendance, marks and fee sheets",
	Long: `RiskLoom reads three loosely structured tables (attendance, marks, fees), infers which
columns carry the student id and the values it needs, reconciles them into percentages
and outstanding fees, and emits one row per student with Red/Orange/Green risk tiers
and a heuristic dropout probability.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(logging.WithLogger(cmd.Context(), newLogger(cmd)))
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.riskloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output (logs column detection decisions)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so scoring still works
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
}

// currentConfig returns the loaded configuration, loading it on first use.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	c := currentConfig()
	level := logging.ParseLevel(c.LogLevel)
	if debug {
		level = slog.LevelDebug
	}
	format := c.LogFormat
	if logFormat != "" {
		format = logFormat
	}
	return logging.New(cmd.ErrOrStderr(), format, level)
}
