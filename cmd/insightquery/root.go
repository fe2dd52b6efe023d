package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"insightquery/internal/config"
	"insightquery/internal/database"
	"insightquery/internal/graph"
	"insightquery/internal/insights"
	"insightquery/internal/services"
)

var configPath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "insightquery",
	Short:         "Query page insights by calendar day",
	Long:          `Batch per-day insights lookups into one multiquery request, against the remote API or the built-in simulator.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
}

// setupLogging installs the default slog logger. DEBUG in the environment
// forces debug level.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newExecutor picks the batch executor named by cfg.Executor. db may be nil
// when the graph executor is configured.
func newExecutor(cfg *config.Config, db *database.DB) (insights.BatchExecutor, error) {
	switch cfg.Executor {
	case config.ExecutorGraph:
		return graph.NewClient(cfg.Graph.BaseURL, cfg.Graph.Timeout), nil
	case config.ExecutorSimulator:
		if db == nil {
			return nil, fmt.Errorf("simulator executor needs a database")
		}
		return services.NewQueryService(db, cfg.Data.SimulatorToken), nil
	default:
		return nil, fmt.Errorf("unknown executor %q", cfg.Executor)
	}
}
