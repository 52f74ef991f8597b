package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"striker-stats-server/api"
	"striker-stats-server/auth"
	"striker-stats-server/config"
	"striker-stats-server/ingest"
	"striker-stats-server/stats"
	"striker-stats-server/storage"
	"striker-stats-server/ws"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the invalidation feed",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	server, err := NewServer(ctx, cfg, store)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "tag", "server", "addr", server.Addr, "sets_to_win", cfg.SetsToWin)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down", "tag", "server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// NewServer wires the API, the statistics engine, the ingest service and the
// invalidation hub over store. The hub runs until ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, store storage.FactStore) (*http.Server, error) {
	authenticator, err := auth.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	hub := ws.NewHub(cfg.AllowedOrigin)
	go hub.Run(ctx)

	engine := stats.NewEngine(store)
	svc := ingest.NewService(store, hub, cfg.SetsToWin)
	handler := api.NewHandler(cfg, store, engine, svc, authenticator, hub)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}
