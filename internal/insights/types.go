package insights

import (
	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// AssetInfo is the asset identity carried on insight rows.
type AssetInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Image  string `json:"image,omitempty"`
}

// AssetInsight is one asset line within a platform view.
type AssetInsight struct {
	Asset      AssetInfo       `json:"asset"`
	Quantity   string          `json:"quantity"`
	Balances   domain.Balances `json:"balances"`
	Percentage float32         `json:"percentage"`
}

// PlatformInsights is the per-platform view: every asset held on one
// platform with its share of the platform total.
type PlatformInsights struct {
	PlatformName string          `json:"platformName"`
	Balances     domain.Balances `json:"balances"`
	Assets       []AssetInsight  `json:"assets"`
}

// PlatformShare is one platform line within an asset view.
type PlatformShare struct {
	PlatformName string          `json:"platformName"`
	Quantity     string          `json:"quantity"`
	Balances     domain.Balances `json:"balances"`
	Percentage   float32         `json:"percentage"`
}

// AssetInsights is the per-asset view: every platform holding one asset
// with its share of the asset total.
type AssetInsights struct {
	Asset     AssetInfo       `json:"asset"`
	Balances  domain.Balances `json:"balances"`
	Platforms []PlatformShare `json:"platforms"`
}

// PlatformBalance is one row of the platforms-balances ranking.
type PlatformBalance struct {
	PlatformName string          `json:"platformName"`
	Balances     domain.Balances `json:"balances"`
	Percentage   float32         `json:"percentage"`
}

// PlatformsBalances ranks every platform by its share of the grand total.
type PlatformsBalances struct {
	Balances  domain.Balances   `json:"balances"`
	Platforms []PlatformBalance `json:"platforms"`
}

// AssetBalance is one row of the assets-balances ranking. The long tail
// beyond the requested maximum is collapsed into a synthetic "Others" row.
type AssetBalance struct {
	Asset      AssetInfo       `json:"asset"`
	Balances   domain.Balances `json:"balances"`
	Percentage float32         `json:"percentage"`
}

// AssetsBalances ranks every asset by its share of the grand total.
type AssetsBalances struct {
	Balances domain.Balances `json:"balances"`
	Assets   []AssetBalance  `json:"assets"`
}

// RowMarketData is the market snapshot attached to a detailed insight row.
type RowMarketData struct {
	CirculatingSupplyShare float32 `json:"circulatingSupplyShare"`
	MaxSupply              string  `json:"maxSupply"`
	MarketCapRank          int64   `json:"marketCapRank"`
	MarketCap              string  `json:"marketCap"`
	Change24h              float64 `json:"change24h"`
	Change7d               float64 `json:"change7d"`
	Change30d              float64 `json:"change30d"`
}

// DetailedRow is one row of the detailed insights view: one holding, or one
// asset merged across platforms when grouping is requested.
type DetailedRow struct {
	Asset      AssetInfo       `json:"asset"`
	Quantity   string          `json:"quantity"`
	Balances   domain.Balances `json:"balances"`
	Percentage float32         `json:"percentage"`
	MarketData RowMarketData   `json:"marketData"`
	Platforms  []string        `json:"platforms"`

	// keys carries the numeric values sorting needs that the serialized
	// row only holds as strings.
	keys rowSortKeys
}

type rowSortKeys struct {
	price     decimal.Decimal
	quantity  decimal.Decimal
	usd       decimal.Decimal
	maxSupply decimal.Decimal
}

// DetailedInsights is one page of detailed rows plus the grand totals.
type DetailedInsights struct {
	Balances    domain.Balances `json:"balances"`
	Rows        []DetailedRow   `json:"rows"`
	Page        int             `json:"page"`
	TotalPages  int             `json:"totalPages"`
	HasNextPage bool            `json:"hasNextPage"`
}
