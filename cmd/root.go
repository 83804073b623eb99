package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rob637/passcpa-sub012/internal/config"
	"github.com/rob637/passcpa-sub012/internal/store"
)

var (
	cfg    = config.Default()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

var rootCmd = &cobra.Command{
	Use:           "passcpa",
	Short:         "Adaptive study sessions for CPA, EA and CMA exam prep",
	Long:          "Passcpa picks what to study next from missed, due and weak-area items and schedules reviews with spaced repetition.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PASSCPA_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML, TOML or JSON config file")
	rootCmd.PersistentFlags().String("user", "", "Learner ID (overrides PASSCPA_USER env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration and logger for the running command.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	level, err := config.ParseLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	cfg = loaded
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// resolveDBPath returns the database path using --db flag or config
// (highest priority), then PASSCPA_DB env var, then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return "", fmt.Errorf("resolve database path: %w", err)
	}
	return p, nil
}
