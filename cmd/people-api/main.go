// main is the entry point of the People API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus .env and env overrides)
//  2. Initialise the logger
//  3. Open the record store selected by storage.backend
//  4. Build the router around the person service
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives or the server fails
//  7. Gracefully shut down: finish in-flight requests, close the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/people-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/people-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/http/router"
	"github.com/aanand-mishra/people-api/internal/service"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/storage/gormstore"
	"github.com/aanand-mishra/people-api/internal/storage/sqlstore"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1) // non-zero exit code signals failure to the OS / CI system
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "people-api",
		Short:         "CRUD HTTP service for person records",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := serve(cmd.Context(), configPath)
			if err != nil {
				slog.Error("people-api stopped", slog.String("error", err.Error()))
			}
			return err
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"path to the configuration YAML file (defaults to $CONFIG_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

func serve(ctx context.Context, configPath string) error {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting people-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the code only sees the storage.Store interface, so the
	// backend is purely a config choice.
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer store.Close()

	log.Info("storage initialised", slog.String("backend", cfg.Storage.Backend))

	// ── 4. Build the Router ───────────────────────────────────────────────
	svc := service.NewPersonService(store)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(cfg.HTTPServer, svc, log),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe returns http.ErrServerClosed when Shutdown() is
	// called. That's expected: anything else is reported on serveErr.
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	//   os.Interrupt = Ctrl+C (SIGINT)
	//   syscall.SIGTERM = sent by `kill <pid>` or container orchestrators
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server encountered an error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	// Stop accepting new connections and wait for active requests, up to
	// the configured deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

// openStore returns the backend named by cfg.Backend.
func openStore(ctx context.Context, cfg config.Storage) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendGorm:
		return gormstore.Open(ctx, cfg.DSN)
	case config.BackendSQLite, config.BackendPostgres:
		return sqlstore.Open(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
}
