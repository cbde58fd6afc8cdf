package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sir_venger/missionfiles/internal/config"
	"github.com/sir_venger/missionfiles/internal/logging"
	"github.com/sir_venger/missionfiles/internal/repo/session"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply sessions table migrations to Postgres",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logging.Component(logging.New(cfg.LogLevel, os.Stderr), "migrate")

		dsn := strings.TrimSpace(cfg.SessionDSN)
		if dsn == "" {
			return fmt.Errorf("session_dsn is not configured")
		}
		if session.IsMemoryDSN(dsn) {
			log.Info().Msg("memory session store selected, skipping migrations")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if err := session.ApplyMigrations(ctx, dsn); err != nil {
			return err
		}

		log.Info().Msg("migrations applied")
		return nil
	},
}

func main() {
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "migration timeout")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
