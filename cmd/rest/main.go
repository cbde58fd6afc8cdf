package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/missionfiles/internal/app/resthttp"
	"github.com/sir_venger/missionfiles/internal/config"
	"github.com/sir_venger/missionfiles/internal/logging"
)

const shutdownTimeout = 15 * time.Second

var (
	configPath string
	debug      bool
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:           "missionfiles",
	Short:         "HTTP range server for robot mission recordings",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
				return err
			}
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}
		if cmd.Flags().Changed("addr") {
			cfg.ListenAddr = listenAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (overrides CONFIG_PATH)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "disable session checks (local development only)")
	rootCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address, e.g. :8000")
}

// run поднимает REST-сервис и корректно завершает его по SIGTERM/SIGINT.
func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.LogLevel, os.Stderr)

	handler, srv, err := resthttp.NewServer(ctx, cfg, logging.Component(log, "rest"))
	if err != nil {
		return err
	}
	defer srv.Close()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", cfg.ListenAddr).
			Str("backend", cfg.Storage.Backend).
			Bool("debug", cfg.Debug).
			Int64("chunk_size", cfg.ChunkSize).
			Msg("REST listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST shutdown: %w", err)
		}
		log.Info().Msg("REST stopped")
		return nil
	})

	return g.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
