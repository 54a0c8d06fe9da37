// Package cmd contains the CLI commands for syncstat.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/syncstat/internal/batch"
	"github.com/good-yellow-bee/syncstat/internal/parser"
)

var (
	// Used for flags
	verbose    bool
	output     string
	configFile string
	workers    int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "syncstat",
	Short: "syncstat - model synchronization activity analytics",
	Long: `syncstat reads the tab-separated activity log exported by a CAD model
synchronization server and reports per-user activity, per-server health,
per-model growth and project/section rollups.

Expected columns (configurable):
  Date (UTC), Сервер, Имя файла, User, SupportSize (байты), ModelSize (байты)

Examples:
  # Full report for one export
  syncstat analyze activity.tsv

  # Servers and users for January only, as JSON
  syncstat analyze exports/*.tsv --from 2024-01-01 --to 2024-01-31 -o json

  # Classify a model file name
  syncstat classify МП4_ШКОЛ_МИНС_БФ_R23.rvt

  # Serve the JSON API and reload when the export changes
  syncstat serve --config syncstat.yaml`,
	SilenceUsage: true,
	// Run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json, plain)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of parallel file readers (0 = auto)")
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintError prints an error message and exits if fatal is true.
func PrintError(msg string, fatal bool) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if fatal {
		os.Exit(1)
	}
}

// PrintVerbose prints a message to stderr only if verbose mode is enabled.
func PrintVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// loadConfig reads --config when given, defaults otherwise.
func loadConfig() (*Config, error) {
	if configFile == "" {
		return DefaultConfig(), nil
	}
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadOptions builds dataset load options from the config and flags.
func loadOptions(cfg *Config) *batch.LoadOptions {
	opts := batch.DefaultLoadOptions()
	if cfg.Data.Workers > 0 {
		opts.Workers = cfg.Data.Workers
	}
	if workers > 0 {
		opts.Workers = workers
	}
	opts.Columns = cfg.Columns
	opts.Observer = parser.LogObserver{Verbose: verbose}
	return opts
}
