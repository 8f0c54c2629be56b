// =============================================================================
// Fraksjonsoversikt - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// gets the loaded configuration and a logger from here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (isekk)
//   ├── reportCmd  (isekk report [files...])
//   ├── serveCmd   (isekk serve)
//   ├── configCmd  (isekk config show|init)
//   └── versionCmd (isekk version)
//
// CONFIGURATION:
//   config.yaml, then ISEKK_* environment variables (optionally seeded from
//   .env), then command flags.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TeoCir/IsekkKran/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// envFile holds the path to an optional .env file.
var envFile string

// verbose enables debug logging.
var verbose bool

// appConfig and logger are set up before any subcommand runs.
var (
	appConfig *config.Config
	logger    *zap.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "isekk",
	Short: "Fraksjonsoversikt - summarize waste-tracking exports per fraction and unit",
	Long: `isekk turns a waste-tracking export (XLSX or delimited text) into a
fraction × unit overview: quantities are summed per fraction and unit of
measure, fractions are ordered by weight, and a SUM row closes the table.

The overview is printed, saved as fraksjonsoversikt workbooks, and can be
rendered as tab- or semicolon-separated text for pasting into other tools.

Example Usage:
  isekk report                          # Every export in the input directory
  isekk report uke42.xlsx --flat-text   # One export, also as text
  isekk serve                           # HTTP upload service`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile, envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg

		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// newLogger builds a production zap logger at the configured level.
func newLogger(level string, debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if debug {
		level = "debug"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml",
		"Path to the configuration file (missing file uses defaults)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Path to an optional .env file with ISEKK_* settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}
