package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrSamePlatform rejects a transfer whose destination is the platform the
// holding already lives on.
var ErrSamePlatform = errors.New("source and destination platform are the same")

// ErrInsufficientBalance rejects a transfer whose quantity or network fee
// exceeds the available quantity at the source.
var ErrInsufficientBalance = errors.New("insufficient balance at source")

// ErrInvalidQuantity rejects a non-positive transfer quantity or a negative
// network fee.
var ErrInvalidQuantity = errors.New("invalid transfer quantity")

// HoldingStore is the holdings collaborator. Writes issued by a transfer must
// be applied in call order: the source is always settled before the
// destination.
type HoldingStore interface {
	FindByID(ctx context.Context, id string) (domain.Holding, error)
	FindAllByPlatformID(ctx context.Context, platformID string) ([]domain.Holding, error)
	Upsert(ctx context.Context, h domain.Holding) error
	UpsertAll(ctx context.Context, hs []domain.Holding) error
	DeleteByID(ctx context.Context, id string) error
}

// PlatformStore resolves platform ids. Not-found is propagated to the caller
// unchanged.
type PlatformStore interface {
	FindByID(ctx context.Context, id string) (domain.Platform, error)
}

// Request describes one transfer of a held asset between platforms.
//
// Quantity is the full debit from the source regardless of the fee. When
// SendFullQuantity is set the destination receives the full quantity and the
// fee is absorbed at the source; otherwise the destination receives quantity
// minus fee.
type Request struct {
	SourceHoldingID       string          `json:"sourceHoldingId"`
	Quantity              decimal.Decimal `json:"quantityToTransfer"`
	NetworkFee            decimal.Decimal `json:"networkFee"`
	SendFullQuantity      bool            `json:"sendFullQuantity"`
	DestinationPlatformID string          `json:"destinationPlatformId"`
}

// Outcome reports what a completed transfer did to both sides.
type Outcome struct {
	From From `json:"from"`
	To   To   `json:"to"`

	// Updated and DeletedIDs list the persisted writes so the boundary
	// layer can invalidate whatever it caches. Both sides appear here.
	Updated    []domain.Holding `json:"-"`
	DeletedIDs []string         `json:"-"`
}

// From describes the source side of the transfer.
type From struct {
	HoldingID              string `json:"holdingId"`
	NetworkFee             string `json:"networkFee"`
	QuantityToTransfer     string `json:"quantityToTransfer"`
	TotalToSubtract        string `json:"totalToSubtract"`
	QuantityBeforeTransfer string `json:"quantityBeforeTransfer"`
	RemainingQuantity      string `json:"remainingQuantity"`
	SendFullQuantity       bool   `json:"sendFullQuantity"`
}

// To describes the destination side of the transfer.
type To struct {
	PlatformID  string `json:"platformId"`
	NewQuantity string `json:"newQuantity"`
}

// Service moves holdings between platforms. Each call is one logical
// transaction over the holdings store; validation happens before any write.
type Service struct {
	holdings  HoldingStore
	platforms PlatformStore
}

// NewService creates a new transfer Service.
func NewService(holdings HoldingStore, platforms PlatformStore) *Service {
	if holdings == nil {
		panic("transfer.NewService: holdings is nil")
	}
	if platforms == nil {
		panic("transfer.NewService: platforms is nil")
	}
	return &Service{holdings: holdings, platforms: platforms}
}

// Transfer validates and executes one transfer, returning an outcome that
// describes both sides. No write happens before all validation passes.
//
// The operation is not idempotent: calling it twice performs two transfers.
func (s *Service) Transfer(ctx context.Context, req Request) (Outcome, error) {
	if req.Quantity.Sign() <= 0 {
		return Outcome{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidQuantity)
	}
	if req.NetworkFee.Sign() < 0 {
		return Outcome{}, fmt.Errorf("%w: network fee must not be negative", ErrInvalidQuantity)
	}

	if _, err := s.platforms.FindByID(ctx, req.DestinationPlatformID); err != nil {
		return Outcome{}, fmt.Errorf("resolving destination platform: %w", err)
	}

	source, err := s.holdings.FindByID(ctx, req.SourceHoldingID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving source holding: %w", err)
	}
	if source.PlatformID == req.DestinationPlatformID {
		return Outcome{}, ErrSamePlatform
	}

	available := source.Quantity
	// The fee is checked on its own: a fee that alone exceeds the balance
	// is invalid even when the transfer quantity is not.
	if req.Quantity.GreaterThan(available) || req.NetworkFee.GreaterThan(available) {
		return Outcome{}, fmt.Errorf("%w: available %s, requested %s, fee %s",
			ErrInsufficientBalance, available, req.Quantity, req.NetworkFee)
	}

	remaining := available.Sub(req.Quantity)
	received := req.Quantity
	if !req.SendFullQuantity {
		received = req.Quantity.Sub(req.NetworkFee)
	}

	destination, destinationExists, err := s.findDestinationHolding(ctx, source.AssetID, req.DestinationPlatformID)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		From: From{
			HoldingID:              source.ID,
			NetworkFee:             domain.PlainString(req.NetworkFee),
			QuantityToTransfer:     domain.PlainString(req.Quantity),
			TotalToSubtract:        domain.PlainString(req.Quantity),
			QuantityBeforeTransfer: domain.PlainString(available),
			RemainingQuantity:      domain.PlainString(remaining),
			SendFullQuantity:       req.SendFullQuantity,
		},
		To: To{PlatformID: req.DestinationPlatformID},
	}

	switch {
	case remaining.Sign() > 0 && destinationExists:
		source.Quantity = remaining
		destination.Quantity = destination.Quantity.Add(received)
		if err := s.holdings.UpsertAll(ctx, []domain.Holding{source, destination}); err != nil {
			return Outcome{}, fmt.Errorf("writing transfer: %w", err)
		}
		outcome.Updated = []domain.Holding{source, destination}
		outcome.To.NewQuantity = domain.PlainString(destination.Quantity)

	case remaining.Sign() > 0 && !destinationExists:
		source.Quantity = remaining
		if err := s.holdings.Upsert(ctx, source); err != nil {
			return Outcome{}, fmt.Errorf("updating source holding: %w", err)
		}
		outcome.Updated = []domain.Holding{source}
		outcome.To.NewQuantity = domain.PlainString(decimal.Zero)
		// Skip the create entirely when the fee consumed the whole
		// sendable amount: a zero-quantity holding is never persisted.
		if received.Sign() > 0 {
			created := domain.Holding{
				ID:         uuid.NewString(),
				AssetID:    source.AssetID,
				Quantity:   received,
				PlatformID: req.DestinationPlatformID,
			}
			if err := s.holdings.Upsert(ctx, created); err != nil {
				return Outcome{}, fmt.Errorf("creating destination holding: %w", err)
			}
			outcome.Updated = append(outcome.Updated, created)
			outcome.To.NewQuantity = domain.PlainString(created.Quantity)
		}

	case destinationExists: // remaining == 0
		if err := s.holdings.DeleteByID(ctx, source.ID); err != nil {
			return Outcome{}, fmt.Errorf("deleting source holding: %w", err)
		}
		destination.Quantity = destination.Quantity.Add(received)
		if err := s.holdings.Upsert(ctx, destination); err != nil {
			return Outcome{}, fmt.Errorf("updating destination holding: %w", err)
		}
		outcome.DeletedIDs = []string{source.ID}
		outcome.Updated = []domain.Holding{destination}
		outcome.To.NewQuantity = domain.PlainString(destination.Quantity)

	default: // remaining == 0, destination lacks the asset
		if received.Sign() > 0 {
			// Re-point the same record instead of delete+create.
			source.PlatformID = req.DestinationPlatformID
			source.Quantity = received
			if err := s.holdings.Upsert(ctx, source); err != nil {
				return Outcome{}, fmt.Errorf("moving source holding: %w", err)
			}
			outcome.Updated = []domain.Holding{source}
			outcome.To.NewQuantity = domain.PlainString(received)
		} else {
			if err := s.holdings.DeleteByID(ctx, source.ID); err != nil {
				return Outcome{}, fmt.Errorf("deleting source holding: %w", err)
			}
			outcome.DeletedIDs = []string{source.ID}
			outcome.To.NewQuantity = domain.PlainString(decimal.Zero)
		}
	}

	return outcome, nil
}

// findDestinationHolding looks up an existing holding of the asset on the
// destination platform.
func (s *Service) findDestinationHolding(ctx context.Context, assetID, platformID string) (domain.Holding, bool, error) {
	held, err := s.holdings.FindAllByPlatformID(ctx, platformID)
	if err != nil {
		return domain.Holding{}, false, fmt.Errorf("listing destination holdings: %w", err)
	}
	h, found := lo.Find(held, func(h domain.Holding) bool { return h.AssetID == assetID })
	return h, found, nil
}
