// Package cmd implements the striker-stats command line: the HTTP server and
// admin/report commands that read the same database.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"striker-stats-server/config"
	"striker-stats-server/loghandler"
	"striker-stats-server/stats"
	"striker-stats-server/storage"
)

var databaseURL string

var rootCmd = &cobra.Command{
	Use:   "striker-stats",
	Short: "Omega Strikers match statistics",
	Long:  "Record custom Omega Strikers matches and serve striker, composition and player statistics.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envErr := godotenv.Load()
		setupLogging(config.Load())
		if envErr != nil {
			slog.Debug("no .env file found, using environment variables", "tag", "server")
		}
	},
	RunE: runServe,
}

// Execute runs the root command. Without a subcommand it starts the server.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (overrides DATABASE_URL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(strikersCmd)
	rootCmd.AddCommand(compositionsCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(matchesCmd)
}

func setupLogging(cfg *config.Config) {
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, loghandler.ParseLevel(cfg.LogLevel))))
}

// loadConfig returns the configuration with the --database-url flag applied.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return cfg, nil
}

func openStore(ctx context.Context) (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return store, nil
}

// withEngine opens the store for a report command and closes it afterwards.
func withEngine(ctx context.Context, fn func(*stats.Engine) error) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(stats.NewEngine(store))
}
