package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cryptobalance/tracker/internal/insights"
)

// SnapshotGenerator freezes the current portfolio view under a date.
type SnapshotGenerator interface {
	Generate(ctx context.Context, date time.Time) (insights.DetailedInsights, error)
}

// AfterSnapshotHook is called after each successful snapshot generation.
type AfterSnapshotHook interface {
	Export(ctx context.Context) error
}

// ReportWorker periodically generates portfolio snapshots.
type ReportWorker struct {
	generator SnapshotGenerator
	interval  time.Duration
	hook      AfterSnapshotHook // optional
}

// NewReportWorker creates a new ReportWorker with an optional post-generation hook.
func NewReportWorker(generator SnapshotGenerator, interval time.Duration, hook AfterSnapshotHook) *ReportWorker {
	return &ReportWorker{
		generator: generator,
		interval:  interval,
		hook:      hook,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx); err != nil {
		slog.Error("ReportWorker: export hook failed", "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed")
	}
}

// generate snapshots the current date. An empty portfolio is a normal
// condition, not an error worth alerting on.
func (w *ReportWorker) generate(ctx context.Context) {
	if _, err := w.generator.Generate(ctx, utcDate()); err != nil {
		if errors.Is(err, insights.ErrNoData) {
			slog.Info("ReportWorker: no holdings, skipping snapshot")
			return
		}
		slog.Error("ReportWorker: generation failed", "error", err)
		return
	}
	slog.Info("ReportWorker: generation completed")
	w.runHook(ctx)
}

// utcDate returns the current date normalized to midnight UTC.
func utcDate() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting")

	// Generate immediately on startup
	w.generate(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.generate(ctx)
		}
	}
}
