package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrUnknownCoin indicates that CoinGecko has no coin with the requested id.
var ErrUnknownCoin = errors.New("unknown coin id")

// CoinGeckoClient fetches coin metadata and prices from the CoinGecko API.
type CoinGeckoClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewCoinGeckoClient creates a new CoinGecko API client. delay is the base
// backoff applied between retries after a rate-limit response.
func NewCoinGeckoClient(baseURL, apiKey string, delay time.Duration, maxRetries int) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

// coinResponse mirrors the subset of the /coins/{id} payload we keep.
// Supply and price fields decode into decimals to avoid float drift.
type coinResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Small string `json:"small"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice struct {
			USD decimal.Decimal `json:"usd"`
			EUR decimal.Decimal `json:"eur"`
			BTC decimal.Decimal `json:"btc"`
		} `json:"current_price"`
		CirculatingSupply decimal.Decimal `json:"circulating_supply"`
		MaxSupply         decimal.Decimal `json:"max_supply"`
		MarketCapRank     int64           `json:"market_cap_rank"`
		MarketCap         struct {
			USD decimal.Decimal `json:"usd"`
		} `json:"market_cap"`
		Change24h float64 `json:"price_change_percentage_24h"`
		Change7d  float64 `json:"price_change_percentage_7d"`
		Change30d float64 `json:"price_change_percentage_30d"`
	} `json:"market_data"`
}

// FetchCoin fetches one coin's metadata and last known prices.
func (c *CoinGeckoClient) FetchCoin(ctx context.Context, id string) (domain.Asset, error) {
	u := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false",
		c.baseURL, url.PathEscape(id))

	body, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return domain.Asset{}, err
	}

	var coin coinResponse
	if err := json.Unmarshal(body, &coin); err != nil {
		return domain.Asset{}, fmt.Errorf("parsing CoinGecko response for %s: %w", id, err)
	}

	return domain.Asset{
		ID:     coin.ID,
		Name:   coin.Name,
		Ticker: strings.ToUpper(coin.Symbol),
		Image:  coin.Image.Small,
		LastKnownPrices: domain.LastKnownPrices{
			USD: coin.MarketData.CurrentPrice.USD,
			EUR: coin.MarketData.CurrentPrice.EUR,
			BTC: coin.MarketData.CurrentPrice.BTC,
		},
		MarketData: domain.MarketData{
			CirculatingSupply: coin.MarketData.CirculatingSupply,
			MaxSupply:         coin.MarketData.MaxSupply,
			MarketCapRank:     coin.MarketData.MarketCapRank,
			MarketCap:         coin.MarketData.MarketCap.USD,
			Change24h:         coin.MarketData.Change24h,
			Change7d:          coin.MarketData.Change7d,
			Change30d:         coin.MarketData.Change30d,
		},
		LastUpdatedAt: time.Now().UTC(),
	}, nil
}

func (c *CoinGeckoClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("x-cg-demo-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CoinGecko request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusNotFound:
			return nil, ErrUnknownCoin
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		default:
			return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}
