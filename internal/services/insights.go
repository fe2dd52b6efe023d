package services

import (
	"context"
	"log/slog"
	"time"

	"insightquery/internal/insights"
	"insightquery/internal/models"
)

// InsightRequest is one by-date insights lookup.
type InsightRequest struct {
	ObjectID    string
	AccessToken string
	Period      insights.Period
	Metrics     []string
	Instants    []time.Time
}

// InsightService runs by-date insights lookups through a BatchExecutor.
type InsightService struct {
	executor insights.BatchExecutor
}

// NewInsightService creates a new InsightService instance
func NewInsightService(executor insights.BatchExecutor) *InsightService {
	return &InsightService{executor: executor}
}

// QueryByDate issues one batch covering every day in req.Instants.
func (s *InsightService) QueryByDate(ctx context.Context, req InsightRequest) (*models.InsightsResponse, error) {
	startTime := time.Now()

	results, err := insights.ExecuteByInstant(ctx, s.executor, req.ObjectID, req.AccessToken, req.Period, req.Metrics, req.Instants)
	if err != nil {
		return nil, err
	}

	resp := &models.InsightsResponse{
		ObjectID: req.ObjectID,
		Period:   req.Period.String(),
		Results:  make([]models.DayOutput, 0, len(results)),
	}
	for _, r := range results {
		resp.Results = append(resp.Results, models.DayOutput{
			Day:     FormatDay(r.Day),
			EndTime: insights.EpochSeconds(r.Day),
			Data:    r.Payload,
		})
	}

	slog.Info("insights query completed",
		slog.String("objectID", req.ObjectID),
		slog.String("period", req.Period.String()),
		slog.Int("instants", len(req.Instants)),
		slog.Int("days", len(results)),
		slog.Duration("took", time.Since(startTime).Round(time.Millisecond)))

	return resp, nil
}
