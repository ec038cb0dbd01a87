package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cryptobalance/tracker/internal/asset"
	"github.com/cryptobalance/tracker/internal/domain"
)

// CoinSource fetches a coin snapshot from the external price provider.
type CoinSource interface {
	FetchCoin(ctx context.Context, id string) (domain.Asset, error)
}

// AssetStore is the cached asset collaborator.
type AssetStore interface {
	FindByID(ctx context.Context, id string) (domain.Asset, error)
	FindAll(ctx context.Context) ([]domain.Asset, error)
	Upsert(ctx context.Context, a domain.Asset) error
}

// Service keeps the cached asset snapshots in sync with the external price
// provider. Assets are created on first reference and refreshed in bulk by
// the background worker.
type Service struct {
	source CoinSource
	assets AssetStore

	// pause between consecutive provider calls during a bulk refresh, to
	// stay under the free-tier rate limit.
	refreshPause time.Duration
}

// NewService creates a new market Service.
func NewService(source CoinSource, assets AssetStore, refreshPause time.Duration) *Service {
	if source == nil {
		panic("market.NewService: source is nil")
	}
	if assets == nil {
		panic("market.NewService: assets is nil")
	}
	return &Service{source: source, assets: assets, refreshPause: refreshPause}
}

// EnsureAsset returns the cached asset with the given id, fetching and
// storing it on first reference.
func (s *Service) EnsureAsset(ctx context.Context, id string) (domain.Asset, error) {
	a, err := s.assets.FindByID(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, asset.ErrNotFound) {
		return domain.Asset{}, err
	}

	a, err = s.source.FetchCoin(ctx, id)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("fetching coin %s: %w", id, err)
	}
	if err := s.assets.Upsert(ctx, a); err != nil {
		return domain.Asset{}, fmt.Errorf("storing asset %s: %w", id, err)
	}

	slog.Info("cached new asset", "asset", a.ID, "ticker", a.Ticker)
	return a, nil
}

// RefreshAll re-fetches every cached asset from the provider. Individual
// fetch failures are logged and skipped so one delisted coin cannot stall
// the rest of the refresh; the first storage failure aborts.
func (s *Service) RefreshAll(ctx context.Context) error {
	assets, err := s.assets.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("listing assets: %w", err)
	}

	for i, a := range assets {
		if i > 0 && s.refreshPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.refreshPause):
			}
		}

		fresh, err := s.source.FetchCoin(ctx, a.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			slog.Warn("refreshing asset failed", "asset", a.ID, "error", err)
			continue
		}

		if err := s.assets.Upsert(ctx, fresh); err != nil {
			return fmt.Errorf("storing asset %s: %w", a.ID, err)
		}
	}

	slog.Info("market data refreshed", "assets", len(assets))
	return nil
}
