package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "pennantcast"
	version = "v1.3.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Season win projections from multi-year player stats",
		Version: version,
		Long: `pennantcast projects team win totals for an upcoming season.

It aggregates each player's recent seasons, regresses the rates toward
skill-tier targets, blends an aging-aware scenario ensemble, projects
playing time, converts everything to WAR, and calibrates WAR against
historical standings to produce a zero-sum projected league table.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a tuning config YAML (defaults baked in)")
	rootCmd.PersistentFlags().String("data", "", "Path to a JSON dataset file")
	rootCmd.PersistentFlags().String("db", "", "PostgreSQL DSN (alternative to --data)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		levelStr, _ := cmd.Flags().GetString("log-level")
		level, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return err
		}
		zerolog.SetGlobalLevel(level)
		return nil
	}

	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newCalibrateCmd())
	rootCmd.AddCommand(newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
