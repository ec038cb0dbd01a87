package insights

import (
	"cmp"
	"slices"
	"strings"
)

// SortField selects which row attribute orders the detailed insights view.
type SortField string

const (
	SortByPercentage    SortField = "PERCENTAGE"
	SortByMarketCapRank SortField = "MARKET_CAP_RANK"
	SortByCurrentPrice  SortField = "CURRENT_PRICE"
	SortByQuantity      SortField = "QUANTITY"
	SortByBalance       SortField = "BALANCE"
	SortByMaxSupply     SortField = "MAX_SUPPLY"
	SortByChange24h     SortField = "CHANGE_PRICE_IN_24H"
	SortByChange7d      SortField = "CHANGE_PRICE_IN_7D"
	SortByChange30d     SortField = "CHANGE_PRICE_IN_30D"
)

// SortDirection is the ascending/descending modifier applied to a SortField.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// comparators is the closed set of named comparison functions, keyed by field.
var comparators = map[SortField]func(a, b DetailedRow) int{
	SortByPercentage: func(a, b DetailedRow) int {
		return cmp.Compare(a.Percentage, b.Percentage)
	},
	SortByMarketCapRank: func(a, b DetailedRow) int {
		return cmp.Compare(a.MarketData.MarketCapRank, b.MarketData.MarketCapRank)
	},
	SortByCurrentPrice: func(a, b DetailedRow) int {
		return a.keys.price.Cmp(b.keys.price)
	},
	SortByQuantity: func(a, b DetailedRow) int {
		return a.keys.quantity.Cmp(b.keys.quantity)
	},
	SortByBalance: func(a, b DetailedRow) int {
		return a.keys.usd.Cmp(b.keys.usd)
	},
	SortByMaxSupply: func(a, b DetailedRow) int {
		return a.keys.maxSupply.Cmp(b.keys.maxSupply)
	},
	SortByChange24h: func(a, b DetailedRow) int {
		return cmp.Compare(a.MarketData.Change24h, b.MarketData.Change24h)
	},
	SortByChange7d: func(a, b DetailedRow) int {
		return cmp.Compare(a.MarketData.Change7d, b.MarketData.Change7d)
	},
	SortByChange30d: func(a, b DetailedRow) int {
		return cmp.Compare(a.MarketData.Change30d, b.MarketData.Change30d)
	},
}

// sortRows orders rows by the given field and direction. The sort is stable:
// rows with equal keys keep their original relative order. Unknown fields
// fall back to percentage.
func sortRows(rows []DetailedRow, field SortField, dir SortDirection) {
	compare, ok := comparators[field]
	if !ok {
		compare = comparators[SortByPercentage]
	}
	if dir == Ascending {
		slices.SortStableFunc(rows, compare)
		return
	}
	slices.SortStableFunc(rows, func(a, b DetailedRow) int { return compare(b, a) })
}

// sortByShareDesc stable-sorts rows by their percentage share, descending.
// Ties keep their original (insertion) order.
func sortByShareDesc[T any](rows []T, share func(T) float32) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return cmp.Compare(share(b), share(a))
	})
}

// ParseSortField maps a request parameter to a SortField, defaulting to
// percentage for unknown values.
func ParseSortField(s string) SortField {
	f := SortField(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := comparators[f]; !ok {
		return SortByPercentage
	}
	return f
}

// ParseSortDirection maps a request parameter to a SortDirection, defaulting
// to descending for unknown values.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(Ascending)) {
		return Ascending
	}
	return Descending
}
