package domain

import "github.com/shopspring/decimal"

// Holding represents a quantity of one asset owned on one platform.
// A holding exists only while its quantity is positive; a holding whose
// quantity reaches zero is deleted, never persisted at zero.
type Holding struct {
	ID         string          `json:"id"`
	AssetID    string          `json:"assetId"`
	Quantity   decimal.Decimal `json:"quantity"`
	PlatformID string          `json:"platformId"`
}
