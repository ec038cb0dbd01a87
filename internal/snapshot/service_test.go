package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cryptobalance/tracker/internal/insights"
)

type mockInsightsSource struct {
	view insights.DetailedInsights
	err  error
}

func (m *mockInsightsSource) RetrieveAllInsights(_ context.Context) (insights.DetailedInsights, error) {
	return m.view, m.err
}

type mockRepo struct {
	saveErr   error
	savedData json.RawMessage
	savedDate time.Time
	latest    *Snapshot
	latestErr error
	byDate    *Snapshot
	byDateErr error
	list      []Snapshot
	listErr   error
}

func (m *mockRepo) Save(_ context.Context, date time.Time, data json.RawMessage) error {
	m.savedData = data
	m.savedDate = date
	return m.saveErr
}

func (m *mockRepo) GetLatest(_ context.Context) (*Snapshot, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest, nil
}

func (m *mockRepo) GetByDate(_ context.Context, _ time.Time) (*Snapshot, error) {
	if m.byDateErr != nil {
		return nil, m.byDateErr
	}
	return m.byDate, nil
}

func (m *mockRepo) List(_ context.Context, _ int) ([]Snapshot, error) {
	return m.list, m.listErr
}

func TestGenerateSuccess(t *testing.T) {
	view := insights.DetailedInsights{
		Rows: []insights.DetailedRow{
			{Asset: insights.AssetInfo{ID: "bitcoin"}, Quantity: "0.25", Percentage: 100},
		},
		TotalPages: 1,
	}
	repo := &mockRepo{}
	svc := NewService(&mockInsightsSource{view: view}, repo)

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.Generate(context.Background(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Rows) != 1 {
		t.Errorf("rows = %d, want 1", len(result.Rows))
	}
	if repo.savedData == nil {
		t.Fatal("expected data to be saved")
	}
	if !repo.savedDate.Equal(date) {
		t.Errorf("saved date = %v, want %v", repo.savedDate, date)
	}

	var stored insights.DetailedInsights
	if err := json.Unmarshal(repo.savedData, &stored); err != nil {
		t.Fatalf("stored data is not valid JSON: %v", err)
	}
	if len(stored.Rows) != 1 || stored.Rows[0].Asset.ID != "bitcoin" {
		t.Errorf("stored rows = %+v", stored.Rows)
	}
}

func TestGenerateEmptyPortfolio(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(&mockInsightsSource{err: insights.ErrNoData}, repo)

	_, err := svc.Generate(context.Background(), time.Now())
	if !errors.Is(err, insights.ErrNoData) {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
	if repo.savedData != nil {
		t.Error("empty portfolio must not produce a snapshot")
	}
}

func TestGenerateRepoSaveError(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("save failed")}
	svc := NewService(&mockInsightsSource{}, repo)

	_, err := svc.Generate(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error from repo save")
	}
}

func TestGetLatestNotFound(t *testing.T) {
	repo := &mockRepo{latestErr: ErrNotFound}
	svc := NewService(&mockInsightsSource{}, repo)

	_, err := svc.GetLatest(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
