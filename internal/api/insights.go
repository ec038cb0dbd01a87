package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cryptobalance/tracker/internal/insights"
	"github.com/cryptobalance/tracker/internal/platform"
)

// InsightsHandler provides HTTP endpoints for derived portfolio views.
//
// An empty portfolio is a "no content" outcome on every endpoint, not an
// error: clients poll these views before any holding exists.
type InsightsHandler struct {
	insights  *insights.Service
	maxAssets int
}

// NewInsightsHandler creates a new insights handler. maxAssets caps the
// per-asset chart before the long tail collapses into the "Others" row.
func NewInsightsHandler(svc *insights.Service, maxAssets int) *InsightsHandler {
	return &InsightsHandler{insights: svc, maxAssets: maxAssets}
}

// GetTotalBalances handles GET /api/v1/insights/balances.
func (h *InsightsHandler) GetTotalBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.insights.RetrieveTotalBalances(r.Context())
	if err != nil {
		h.writeInsightsError(w, err, "computing total balances")
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// GetPlatformsBalances handles GET /api/v1/insights/platforms.
func (h *InsightsHandler) GetPlatformsBalances(w http.ResponseWriter, r *http.Request) {
	view, err := h.insights.RetrievePlatformsBalances(r.Context())
	if err != nil {
		h.writeInsightsError(w, err, "computing platform balances")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetPlatformInsights handles GET /api/v1/insights/platforms/{id}.
func (h *InsightsHandler) GetPlatformInsights(w http.ResponseWriter, r *http.Request) {
	view, err := h.insights.RetrievePlatformInsights(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			writeError(w, http.StatusNotFound, "platform not found")
			return
		}
		h.writeInsightsError(w, err, "computing platform insights")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetAssetsBalances handles GET /api/v1/insights/assets.
func (h *InsightsHandler) GetAssetsBalances(w http.ResponseWriter, r *http.Request) {
	maxAssets := h.maxAssets
	if m := r.URL.Query().Get("max"); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "max must be a non-negative integer")
			return
		}
		maxAssets = n
	}

	view, err := h.insights.RetrieveAssetsBalances(r.Context(), maxAssets)
	if err != nil {
		h.writeInsightsError(w, err, "computing asset balances")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetAssetInsights handles GET /api/v1/insights/assets/{id}.
func (h *InsightsHandler) GetAssetInsights(w http.ResponseWriter, r *http.Request) {
	view, err := h.insights.RetrieveAssetInsights(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeInsightsError(w, err, "computing asset insights")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetDetailedInsights handles GET /api/v1/insights/detailed.
func (h *InsightsHandler) GetDetailedInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 0
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "page must be a non-negative integer")
			return
		}
		page = n
	}

	groupByAsset := false
	if g := q.Get("groupByAsset"); g != "" {
		b, err := strconv.ParseBool(g)
		if err != nil {
			writeError(w, http.StatusBadRequest, "groupByAsset must be a boolean")
			return
		}
		groupByAsset = b
	}

	view, err := h.insights.RetrieveDetailedInsights(
		r.Context(),
		page,
		insights.ParseSortField(q.Get("sortBy")),
		insights.ParseSortDirection(q.Get("sortType")),
		groupByAsset,
	)
	if err != nil {
		h.writeInsightsError(w, err, "computing detailed insights")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// writeInsightsError maps the insights error taxonomy to HTTP statuses:
// no data becomes 204, a dangling reference is a data-integrity bug and
// becomes 500.
func (h *InsightsHandler) writeInsightsError(w http.ResponseWriter, err error, doing string) {
	if isNoData(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	slog.Error("insights request failed", "doing", doing, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func isNoData(err error) bool {
	return errors.Is(err, insights.ErrNoData)
}
