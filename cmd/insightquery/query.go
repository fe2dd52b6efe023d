package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"insightquery/internal/config"
	"insightquery/internal/database"
	"insightquery/internal/insights"
	"insightquery/internal/services"
)

var (
	queryObject  string
	queryPeriod  string
	queryMetrics []string
	queryDates   []string
	queryToken   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Look up insights for a set of days and print them as JSON",
	Example: `  insightquery query --object 31698190356 --date 2010-12-05 --date 2010-12-06
  insightquery query --object 31698190356 --period week --metrics page_fans,page_views --date 2011-03-13`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		setupLogging(cfg.Debug)

		period, err := insights.ParsePeriod(queryPeriod)
		if err != nil {
			return err
		}
		instants, err := services.ParseInstants(queryDates)
		if err != nil {
			return err
		}

		var db *database.DB
		if cfg.Executor == config.ExecutorSimulator {
			if db, err = database.NewDB(cfg.Database.Path); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()
		}
		executor, err := newExecutor(cfg, db)
		if err != nil {
			return err
		}

		token := cfg.Graph.AccessToken
		if queryToken != "" {
			token = queryToken
		}

		resp, err := services.NewInsightService(executor).QueryByDate(cmd.Context(), services.InsightRequest{
			ObjectID:    queryObject,
			AccessToken: token,
			Period:      period,
			Metrics:     queryMetrics,
			Instants:    instants,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryObject, "object", "", "Object (page or application) ID")
	queryCmd.Flags().StringVar(&queryPeriod, "period", "day", "Period: day, week, days_28, month or lifetime")
	queryCmd.Flags().StringSliceVar(&queryMetrics, "metrics", nil, "Metric names (default all)")
	queryCmd.Flags().StringSliceVar(&queryDates, "date", nil, "Day to look up (date, RFC3339 or Unix seconds); repeatable")
	queryCmd.Flags().StringVar(&queryToken, "token", "", "Access token (overrides config)")
	_ = queryCmd.MarkFlagRequired("object")
	_ = queryCmd.MarkFlagRequired("date")
}
