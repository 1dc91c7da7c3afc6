// gridrunner runs level-based grid games in the terminal.
//
// Usage:
//
//	gridrunner list              - List available games
//	gridrunner play <game>       - Play a game
//	gridrunner menu              - Pick a game and level interactively
//	gridrunner levels <game>     - List the levels of a game
//	gridrunner runs <game>       - Show the best recorded runs
//	gridrunner serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>     - Configuration file (default: search order)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.gridrunner/runs.db)
//	--log-level <lvl>   - debug, info, warn or error
//	--log-file <path>   - Write logs to a file while the terminal UI runs
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/gridrunner/internal/config"
	"github.com/vovakirdan/gridrunner/internal/storage"

	// Import games to register them
	_ "github.com/vovakirdan/gridrunner/internal/games/maze"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridrunner",
	Short: "gridrunner - level-based grid games in your terminal",
	Long: `gridrunner runs level-based grid games in the terminal, locally or
over SSH. Levels are sequenced with a short intermission, finished runs
are recorded in a local SQLite database.

Available commands:
  list     - Show all available games
  play     - Play a specific game directly
  menu     - Interactive level picker
  levels   - Show the levels of a game
  runs     - View the best runs
  serve    - Start SSH server for remote play

Examples:
  gridrunner list
  gridrunner play maze
  gridrunner play maze --level 2-vault --seed 42
  gridrunner menu
  gridrunner serve
  gridrunner runs maze`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = from config, random if unset there)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to runs database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file used while a terminal UI runs")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	cfg, source, err := config.LoadWithSource(flagConfig)
	if err != nil {
		return config.Config{}, "", err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Engine.Seed = flagSeed
	}
	if flags.Changed("db") {
		cfg.DBPath = flagDBPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	return cfg, source, nil
}

// newLogger builds the logger for cfg. Terminal UIs own stdout and stderr,
// so they log to --log-file or nowhere; the server logs to stderr.
func newLogger(cfg config.Config, ui bool) (*log.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}
	if ui {
		w = io.Discard
		if flagLogFile != "" {
			if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
				return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
			}
			f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, nil, fmt.Errorf("cannot open log file: %w", err)
			}
			w = f
			closer = func() { f.Close() }
		}
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "gridrunner",
		Level:           cfg.Level(),
	})
	return logger, closer, nil
}

// openStore opens the runs database. Games still work without it, so a
// failure is only a warning.
func openStore(cfg config.Config) *storage.Store {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		return nil
	}
	return store
}
