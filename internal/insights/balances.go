package insights

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// TotalBalances computes the value of the given holdings in the three tracked
// currencies. Quantities are grouped by asset and multiplied by each asset's
// last known prices; rounding happens once on the accumulated per-currency
// sums, never per holding. Callers short-circuit the empty-holdings case
// before calling.
func TotalBalances(holdings []domain.Holding, assets map[string]domain.Asset) domain.Balances {
	byAsset := lo.GroupBy(holdings, func(h domain.Holding) string { return h.AssetID })

	var usd, eur, btc decimal.Decimal
	for assetID, group := range byAsset {
		prices := assets[assetID].LastKnownPrices
		qty := sumQuantities(group)
		usd = usd.Add(qty.Mul(prices.USD))
		eur = eur.Add(qty.Mul(prices.EUR))
		btc = btc.Add(qty.Mul(prices.BTC))
	}

	return domain.Balances{
		USD: domain.RoundFiat(usd),
		EUR: domain.RoundFiat(eur),
		BTC: domain.RoundCrypto(btc),
	}
}

// AssetBalances computes the value of the given quantity of a single asset,
// applying the same final-rounding rules as TotalBalances.
func AssetBalances(a domain.Asset, quantity decimal.Decimal) domain.Balances {
	return domain.Balances{
		USD: domain.RoundFiat(quantity.Mul(a.LastKnownPrices.USD)),
		EUR: domain.RoundFiat(quantity.Mul(a.LastKnownPrices.EUR)),
		BTC: domain.RoundCrypto(quantity.Mul(a.LastKnownPrices.BTC)),
	}
}

func sumQuantities(holdings []domain.Holding) decimal.Decimal {
	return lo.Reduce(holdings, func(acc decimal.Decimal, h domain.Holding, _ int) decimal.Decimal {
		return acc.Add(h.Quantity)
	}, decimal.Zero)
}
