package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const bitcoinPayload = `{
	"id": "bitcoin",
	"symbol": "btc",
	"name": "Bitcoin",
	"image": {"small": "https://assets.coingecko.com/coins/images/1/small/bitcoin.png"},
	"market_data": {
		"current_price": {"usd": 30000.5, "eur": 27500.25, "btc": 1.0},
		"circulating_supply": 19500000,
		"max_supply": 21000000,
		"market_cap_rank": 1,
		"market_cap": {"usd": 585000000000},
		"price_change_percentage_24h": -1.25,
		"price_change_percentage_7d": 4.5,
		"price_change_percentage_30d": 12.0
	}
}`

func TestFetchCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/bitcoin" {
			t.Errorf("path = %s, want /coins/bitcoin", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bitcoinPayload))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", 0, 1)
	got, err := client.FetchCoin(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "bitcoin" || got.Name != "Bitcoin" || got.Ticker != "BTC" {
		t.Errorf("identity = %s/%s/%s", got.ID, got.Name, got.Ticker)
	}
	if got.LastKnownPrices.USD.String() != "30000.5" {
		t.Errorf("usd price = %s, want 30000.5", got.LastKnownPrices.USD)
	}
	if got.MarketData.MarketCapRank != 1 {
		t.Errorf("rank = %d, want 1", got.MarketData.MarketCapRank)
	}
	if got.MarketData.MaxSupply.String() != "21000000" {
		t.Errorf("max supply = %s, want 21000000", got.MarketData.MaxSupply)
	}
	if got.MarketData.Change24h != -1.25 {
		t.Errorf("24h change = %v, want -1.25", got.MarketData.Change24h)
	}
	if got.LastUpdatedAt.IsZero() {
		t.Error("lastUpdatedAt not set")
	}
}

// A null max_supply is the provider's "unbounded" marker and must come back
// as the zero sentinel.
func TestFetchCoinNullMaxSupply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "ethereum", "symbol": "eth", "name": "Ethereum",
			"image": {"small": ""},
			"market_data": {
				"current_price": {"usd": 2000, "eur": 1800, "btc": 0.06},
				"circulating_supply": 120000000,
				"max_supply": null,
				"market_cap_rank": 2,
				"market_cap": {"usd": 240000000000},
				"price_change_percentage_24h": 0,
				"price_change_percentage_7d": 0,
				"price_change_percentage_30d": 0
			}
		}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", 0, 1)
	got, err := client.FetchCoin(context.Background(), "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MarketData.MaxSupply.Sign() != 0 {
		t.Errorf("max supply = %s, want 0", got.MarketData.MaxSupply)
	}
	if got.MarketData.CirculatingSupplyShare() != 0 {
		t.Errorf("supply share = %v, want 0 for unbounded supply", got.MarketData.CirculatingSupplyShare())
	}
}

func TestFetchCoinUnknownID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "coin not found"}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", 0, 1)
	_, err := client.FetchCoin(context.Background(), "no-such-coin")
	if !errors.Is(err, ErrUnknownCoin) {
		t.Errorf("error = %v, want ErrUnknownCoin", err)
	}
}

func TestFetchCoinRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bitcoinPayload))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, "", 10*time.Millisecond, 2)
	got, err := client.FetchCoin(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if got.ID != "bitcoin" {
		t.Errorf("id = %s, want bitcoin", got.ID)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestFetchCoinContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(1 * time.Second)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	client := NewCoinGeckoClient(server.URL, "", 0, 1)
	_, err := client.FetchCoin(ctx, "bitcoin")
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
