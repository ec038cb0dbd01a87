package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/asset"
	"github.com/cryptobalance/tracker/internal/holding"
	"github.com/cryptobalance/tracker/internal/market"
	"github.com/cryptobalance/tracker/internal/platform"
	"github.com/cryptobalance/tracker/internal/transfer"
)

// PortfolioHandler provides HTTP endpoints for holdings, platforms, and
// transfers, the mutating surface of the tracker.
type PortfolioHandler struct {
	holdings  *holding.Service
	platforms *platform.Service
	transfers *transfer.Service
	market    *market.Service
}

// NewPortfolioHandler creates a new portfolio handler.
func NewPortfolioHandler(holdings *holding.Service, platforms *platform.Service, transfers *transfer.Service, market *market.Service) *PortfolioHandler {
	return &PortfolioHandler{
		holdings:  holdings,
		platforms: platforms,
		transfers: transfers,
		market:    market,
	}
}

// ListHoldings handles GET /api/v1/holdings.
func (h *PortfolioHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdings.List(r.Context())
	if err != nil {
		slog.Error("failed to list holdings", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

// GetHolding handles GET /api/v1/holdings/{id}.
func (h *PortfolioHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	found, err := h.holdings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeMutationError(w, err, "getting holding")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type createHoldingRequest struct {
	AssetID    string          `json:"assetId"`
	PlatformID string          `json:"platformId"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// CreateHolding handles POST /api/v1/holdings.
func (h *PortfolioHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AssetID == "" || req.PlatformID == "" {
		writeError(w, http.StatusBadRequest, "assetId and platformId are required")
		return
	}

	created, err := h.holdings.Create(r.Context(), req.AssetID, req.PlatformID, req.Quantity)
	if err != nil {
		h.writeMutationError(w, err, "creating holding")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateHoldingRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// UpdateHolding handles PUT /api/v1/holdings/{id}. Setting the quantity to
// zero deletes the holding.
func (h *PortfolioHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	var req updateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.holdings.UpdateQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		h.writeMutationError(w, err, "updating holding")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteHolding handles DELETE /api/v1/holdings/{id}.
func (h *PortfolioHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.holdings.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeMutationError(w, err, "deleting holding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlatforms handles GET /api/v1/platforms.
func (h *PortfolioHandler) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.platforms.List(r.Context())
	if err != nil {
		slog.Error("failed to list platforms", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, platforms)
}

type platformRequest struct {
	Name string `json:"name"`
}

// CreatePlatform handles POST /api/v1/platforms.
func (h *PortfolioHandler) CreatePlatform(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.platforms.Create(r.Context(), req.Name)
	if err != nil {
		h.writeMutationError(w, err, "creating platform")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// RenamePlatform handles PUT /api/v1/platforms/{id}.
func (h *PortfolioHandler) RenamePlatform(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	renamed, err := h.platforms.Rename(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		h.writeMutationError(w, err, "renaming platform")
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

// Transfer handles POST /api/v1/transfers.
func (h *PortfolioHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transfer.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.transfers.Transfer(r.Context(), req)
	if err != nil {
		h.writeMutationError(w, err, "executing transfer")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// RefreshMarketData handles POST /api/v1/market/refresh.
func (h *PortfolioHandler) RefreshMarketData(w http.ResponseWriter, r *http.Request) {
	if err := h.market.RefreshAll(r.Context()); err != nil {
		slog.Error("failed to refresh market data", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeMutationError maps the mutation error taxonomy to HTTP statuses:
// not-found to 404, duplicates to 409, validation and insufficient-balance
// errors to 400, everything else to 500.
func (h *PortfolioHandler) writeMutationError(w http.ResponseWriter, err error, doing string) {
	switch {
	case errors.Is(err, holding.ErrNotFound),
		errors.Is(err, platform.ErrNotFound),
		errors.Is(err, asset.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, holding.ErrDuplicateHolding),
		errors.Is(err, platform.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, holding.ErrInvalidQuantity),
		errors.Is(err, platform.ErrInvalidName),
		errors.Is(err, transfer.ErrInvalidQuantity),
		errors.Is(err, transfer.ErrSamePlatform),
		errors.Is(err, transfer.ErrInsufficientBalance),
		errors.Is(err, market.ErrUnknownCoin):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("portfolio request failed", "doing", doing, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
