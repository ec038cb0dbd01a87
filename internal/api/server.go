package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// Handlers groups the route handlers mounted by NewServer.
type Handlers struct {
	Insights  *InsightsHandler
	Portfolio *PortfolioHandler
	Snapshots *SnapshotHandler
}

// NewServer creates an HTTP server with all routes configured. Mutating
// routes require the admin API key when one is set.
func NewServer(port string, h Handlers, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/insights/balances", h.Insights.GetTotalBalances)
	mux.HandleFunc("GET /api/v1/insights/platforms", h.Insights.GetPlatformsBalances)
	mux.HandleFunc("GET /api/v1/insights/platforms/{id}", h.Insights.GetPlatformInsights)
	mux.HandleFunc("GET /api/v1/insights/assets", h.Insights.GetAssetsBalances)
	mux.HandleFunc("GET /api/v1/insights/assets/{id}", h.Insights.GetAssetInsights)
	mux.HandleFunc("GET /api/v1/insights/detailed", h.Insights.GetDetailedInsights)

	mux.HandleFunc("GET /api/v1/holdings", h.Portfolio.ListHoldings)
	mux.HandleFunc("GET /api/v1/holdings/{id}", h.Portfolio.GetHolding)
	mux.HandleFunc("GET /api/v1/platforms", h.Portfolio.ListPlatforms)

	mux.HandleFunc("GET /api/v1/snapshots/latest", h.Snapshots.GetLatest)
	mux.HandleFunc("GET /api/v1/snapshots/{date}", h.Snapshots.GetByDate)
	mux.HandleFunc("GET /api/v1/snapshots", h.Snapshots.List)

	protect := func(next http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return next
		}
		return requireAuth(adminAPIKey, next)
	}

	mux.Handle("POST /api/v1/holdings", protect(h.Portfolio.CreateHolding))
	mux.Handle("PUT /api/v1/holdings/{id}", protect(h.Portfolio.UpdateHolding))
	mux.Handle("DELETE /api/v1/holdings/{id}", protect(h.Portfolio.DeleteHolding))
	mux.Handle("POST /api/v1/platforms", protect(h.Portfolio.CreatePlatform))
	mux.Handle("PUT /api/v1/platforms/{id}", protect(h.Portfolio.RenamePlatform))
	mux.Handle("POST /api/v1/transfers", protect(h.Portfolio.Transfer))
	mux.Handle("POST /api/v1/market/refresh", protect(h.Portfolio.RefreshMarketData))
	mux.Handle("POST /api/v1/snapshots/generate", protect(h.Snapshots.Generate))

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
