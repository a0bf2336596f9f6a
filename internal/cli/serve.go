package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/debatelab/arguegraph/internal/server"
	"github.com/debatelab/arguegraph/internal/store"
	"github.com/debatelab/arguegraph/internal/store/postgres"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session API server",
	Long: `Serve exposes the analysis engine over HTTP. Clients create sessions,
post extraction batches, and fetch analyzed graph snapshots.

When DATABASE_URL is set, finalized snapshots are persisted to
PostgreSQL; otherwise the server runs fully in memory.

Example:
  arguegraph serve
  arguegraph serve --addr :9090
  DATABASE_URL=postgres://localhost/arguegraph arguegraph serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	cfg.Database.URL = os.Getenv("DATABASE_URL")

	logger := newLogger()

	var st store.Store
	if cfg.Database.URL != "" {
		pg, err := postgres.New(cfg.Database.URL)
		if err != nil {
			// Missing database degrades to in-memory operation
			logger.Warn("database unavailable, snapshots will not be persisted", "err", err)
		} else {
			st = pg
			defer pg.Close()
			logger.Info("snapshot persistence enabled")
		}
	}

	srv := server.New(cfg, st, logger)
	if err := srv.Start(context.Background()); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
