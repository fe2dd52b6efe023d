package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"insightquery/internal/config"
	"insightquery/internal/database"
	"insightquery/internal/handlers"
	"insightquery/internal/services"
)

const shutdownTimeout = 10 * time.Second

var (
	serveDBPath string
	servePort   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the insights API and the multiquery simulator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serveDBPath != "" {
			cfg.Database.Path = serveDBPath
		}
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		setupLogging(cfg.Debug)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to SQLite database file (overrides config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Server port (overrides config)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	slog.Info("database initialized", slog.String("path", cfg.Database.Path))

	executor, err := newExecutor(cfg, db)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Routes{
		Insights:   handlers.NewInsightsHandler(services.NewInsightService(executor), cfg.Graph.AccessToken),
		Multiquery: handlers.NewMultiqueryHandler(services.NewQueryService(db, cfg.Data.SimulatorToken)),
		Load:       handlers.NewLoadHandler(services.NewLoader(db), cfg.Data.RawDataFolder),
		Generator:  handlers.NewGeneratorHandler(services.NewGenerator(db), cfg.Data.ValueRange.Min, cfg.Data.ValueRange.Max),
		Upload:     handlers.NewUploadHandler(services.NewUploadService(db)),
		Metrics:    handlers.NewMetricsHandler(db),
		Config:     handlers.NewConfigHandler(cfg),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.CORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("executor", cfg.Executor))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
