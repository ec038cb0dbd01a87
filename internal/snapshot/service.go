package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cryptobalance/tracker/internal/insights"
)

// InsightsSource produces the full portfolio view captured by a snapshot.
type InsightsSource interface {
	RetrieveAllInsights(ctx context.Context) (insights.DetailedInsights, error)
}

// Service manages snapshot generation and retrieval. Snapshots freeze the
// derived insight rows so historical views survive later price refreshes
// and holding mutations.
type Service struct {
	source InsightsSource
	repo   Repository
}

// NewService creates a new snapshot Service.
func NewService(source InsightsSource, repo Repository) *Service {
	return &Service{source: source, repo: repo}
}

// Generate computes the current portfolio insights and stores them under the
// given date, overwriting any earlier snapshot for that date. An empty
// portfolio produces no snapshot and surfaces the no-data condition to the
// caller.
func (s *Service) Generate(ctx context.Context, date time.Time) (insights.DetailedInsights, error) {
	view, err := s.source.RetrieveAllInsights(ctx)
	if err != nil {
		return insights.DetailedInsights{}, fmt.Errorf("computing insights: %w", err)
	}

	data, err := json.Marshal(view)
	if err != nil {
		return insights.DetailedInsights{}, fmt.Errorf("marshaling insights: %w", err)
	}

	if err := s.repo.Save(ctx, date, data); err != nil {
		return insights.DetailedInsights{}, fmt.Errorf("saving snapshot: %w", err)
	}

	return view, nil
}

// GetLatest retrieves the most recent snapshot.
func (s *Service) GetLatest(ctx context.Context) (*Snapshot, error) {
	return s.repo.GetLatest(ctx)
}

// GetByDate retrieves the snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, date)
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, limit)
}
