package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LastKnownPrices holds the most recent price of an asset in the three
// tracked currencies. Prices are refreshed opportunistically, not in real time.
type LastKnownPrices struct {
	USD decimal.Decimal `json:"usd"`
	EUR decimal.Decimal `json:"eur"`
	BTC decimal.Decimal `json:"btc"`
}

// MarketData is the market snapshot stored alongside an asset.
// MaxSupply of zero means unbounded or unknown.
type MarketData struct {
	CirculatingSupply decimal.Decimal `json:"circulatingSupply"`
	MaxSupply         decimal.Decimal `json:"maxSupply"`
	MarketCapRank     int64           `json:"marketCapRank"`
	MarketCap         decimal.Decimal `json:"marketCap"`
	Change24h         float64         `json:"change24h"`
	Change7d          float64         `json:"change7d"`
	Change30d         float64         `json:"change30d"`
}

// CirculatingSupplyShare returns the circulating supply as a percentage of the
// max supply, rounded to two places. Returns 0 when the max supply is the
// zero sentinel (unbounded/unknown).
func (m MarketData) CirculatingSupplyShare() float32 {
	if m.MaxSupply.Sign() <= 0 {
		return 0
	}
	return PercentageOf(m.CirculatingSupply, m.MaxSupply)
}

// Asset is a cached market snapshot of a tradable cryptocurrency.
// There is exactly one Asset record per id.
type Asset struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Ticker          string          `json:"ticker"`
	Image           string          `json:"image"`
	LastKnownPrices LastKnownPrices `json:"lastKnownPrices"`
	MarketData      MarketData      `json:"marketData"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}
