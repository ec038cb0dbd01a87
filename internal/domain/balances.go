package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balances is the value of a set of holdings in the three tracked currencies.
// It is derived, never persisted directly; USD/EUR carry two fractional
// digits and BTC up to twelve, already rounded by the rules in math.go.
type Balances struct {
	USD decimal.Decimal
	EUR decimal.Decimal
	BTC decimal.Decimal
}

// Add returns the component-wise sum of two balances.
func (b Balances) Add(o Balances) Balances {
	return Balances{
		USD: b.USD.Add(o.USD),
		EUR: b.EUR.Add(o.EUR),
		BTC: b.BTC.Add(o.BTC),
	}
}

// IsZero returns true when all three components are zero.
func (b Balances) IsZero() bool {
	return b.USD.IsZero() && b.EUR.IsZero() && b.BTC.IsZero()
}

type balancesJSON struct {
	USD string `json:"usd"`
	EUR string `json:"eur"`
	BTC string `json:"btc"`
}

// MarshalJSON serializes balances as decimal strings: USD/EUR with a fixed
// two-digit scale, BTC plain with trailing zeros stripped.
func (b Balances) MarshalJSON() ([]byte, error) {
	return json.Marshal(balancesJSON{
		USD: b.USD.StringFixed(fiatScale),
		EUR: b.EUR.StringFixed(fiatScale),
		BTC: PlainString(b.BTC),
	})
}

// UnmarshalJSON parses balances from their decimal-string form.
func (b *Balances) UnmarshalJSON(data []byte) error {
	var raw balancesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	usd, err := decimal.NewFromString(raw.USD)
	if err != nil {
		return fmt.Errorf("parsing usd balance: %w", err)
	}
	eur, err := decimal.NewFromString(raw.EUR)
	if err != nil {
		return fmt.Errorf("parsing eur balance: %w", err)
	}
	btc, err := decimal.NewFromString(raw.BTC)
	if err != nil {
		return fmt.Errorf("parsing btc balance: %w", err)
	}
	b.USD, b.EUR, b.BTC = usd, eur, btc
	return nil
}
