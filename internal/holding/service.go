package holding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrInvalidQuantity indicates a zero or negative holding quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ErrDuplicateHolding indicates that the asset is already held on the platform.
var ErrDuplicateHolding = errors.New("asset already held on platform")

// AssetResolver resolves an asset id to a cached asset snapshot, fetching and
// storing it on first reference.
type AssetResolver interface {
	EnsureAsset(ctx context.Context, id string) (domain.Asset, error)
}

// PlatformStore resolves platform references.
type PlatformStore interface {
	FindByID(ctx context.Context, id string) (domain.Platform, error)
}

// Service manages the holding lifecycle: created on first acquisition,
// quantity updated on subsequent buys, deleted at zero.
type Service struct {
	repo      Repository
	assets    AssetResolver
	platforms PlatformStore
}

// NewService creates a new holding Service.
func NewService(repo Repository, assets AssetResolver, platforms PlatformStore) *Service {
	if repo == nil {
		panic("holding.NewService: repo is nil")
	}
	if assets == nil {
		panic("holding.NewService: assets is nil")
	}
	if platforms == nil {
		panic("holding.NewService: platforms is nil")
	}
	return &Service{repo: repo, assets: assets, platforms: platforms}
}

// Create registers a new holding of an asset on a platform. The platform must
// exist, the asset is resolved (and cached) on first reference, and a platform
// may hold each asset at most once.
func (s *Service) Create(ctx context.Context, assetID, platformID string, quantity decimal.Decimal) (domain.Holding, error) {
	if quantity.Sign() <= 0 {
		return domain.Holding{}, ErrInvalidQuantity
	}

	if _, err := s.platforms.FindByID(ctx, platformID); err != nil {
		return domain.Holding{}, err
	}

	a, err := s.assets.EnsureAsset(ctx, assetID)
	if err != nil {
		return domain.Holding{}, fmt.Errorf("resolving asset %s: %w", assetID, err)
	}

	onPlatform, err := s.repo.FindAllByPlatformID(ctx, platformID)
	if err != nil {
		return domain.Holding{}, err
	}
	if _, held := lo.Find(onPlatform, func(h domain.Holding) bool { return h.AssetID == a.ID }); held {
		return domain.Holding{}, ErrDuplicateHolding
	}

	h := domain.Holding{
		ID:         uuid.NewString(),
		AssetID:    a.ID,
		Quantity:   quantity,
		PlatformID: platformID,
	}
	if err := s.repo.Upsert(ctx, h); err != nil {
		return domain.Holding{}, err
	}
	return h, nil
}

// UpdateQuantity sets a holding's quantity. A zero quantity deletes the
// holding, preserving the invariant that holdings are never persisted at zero.
func (s *Service) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) (domain.Holding, error) {
	if quantity.Sign() < 0 {
		return domain.Holding{}, ErrInvalidQuantity
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Holding{}, err
	}

	if quantity.IsZero() {
		if err := s.repo.DeleteByID(ctx, id); err != nil {
			return domain.Holding{}, err
		}
		h.Quantity = decimal.Zero
		return h, nil
	}

	h.Quantity = quantity
	if err := s.repo.Upsert(ctx, h); err != nil {
		return domain.Holding{}, err
	}
	return h, nil
}

// Delete removes a holding.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// Get retrieves a holding by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Holding, error) {
	return s.repo.FindByID(ctx, id)
}

// List retrieves all holdings.
func (s *Service) List(ctx context.Context) ([]domain.Holding, error) {
	return s.repo.FindAll(ctx)
}
