package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	fiatScale   = 2
	cryptoScale = 12
)

var hundred = decimal.NewFromInt(100)

// RoundFiat rounds a final USD/EUR figure to 2 decimal places, half up.
// It is applied once on accumulated sums, never on intermediate products.
func RoundFiat(d decimal.Decimal) decimal.Decimal {
	return d.Round(fiatScale)
}

// RoundCrypto rounds a BTC figure to 12 decimal places using banker's
// rounding, which avoids systematic bias across many tiny accumulations.
func RoundCrypto(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(cryptoScale)
}

// PercentageOf returns part as a percentage of total, rounded to 2 decimal
// places half up. The total must be non-zero; callers filter out the
// empty-portfolio case before computing shares.
func PercentageOf(part, total decimal.Decimal) float32 {
	pct := part.Mul(hundred).Div(total).Round(2)
	f, _ := pct.Float64()
	return float32(f)
}

// PlainString formats a decimal as a plain (non-scientific) string with
// trailing fractional zeros stripped.
func PlainString(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
