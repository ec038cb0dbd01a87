package insights

import (
	"testing"
)

func sortFixtureRows(t *testing.T) []DetailedRow {
	t.Helper()
	return []DetailedRow{
		{
			Asset:      AssetInfo{ID: "bitcoin"},
			Percentage: 60,
			MarketData: RowMarketData{MarketCapRank: 1, Change24h: -1.2, Change7d: 4, Change30d: 10},
			keys:       rowSortKeys{price: dec(t, "30000"), quantity: dec(t, "0.25"), usd: dec(t, "7500"), maxSupply: dec(t, "21000000")},
		},
		{
			Asset:      AssetInfo{ID: "ethereum"},
			Percentage: 30,
			MarketData: RowMarketData{MarketCapRank: 2, Change24h: 2.5, Change7d: -3, Change30d: 20},
			keys:       rowSortKeys{price: dec(t, "2000"), quantity: dec(t, "1.5"), usd: dec(t, "3000"), maxSupply: dec(t, "0")},
		},
		{
			Asset:      AssetInfo{ID: "cardano"},
			Percentage: 10,
			MarketData: RowMarketData{MarketCapRank: 9, Change24h: 0.1, Change7d: 1, Change30d: -5},
			keys:       rowSortKeys{price: dec(t, "0.5"), quantity: dec(t, "2000"), usd: dec(t, "1000"), maxSupply: dec(t, "45000000000")},
		},
	}
}

func rowIDs(rows []DetailedRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Asset.ID
	}
	return ids
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		name  string
		field SortField
		dir   SortDirection
		want  []string
	}{
		{"percentage desc", SortByPercentage, Descending, []string{"bitcoin", "ethereum", "cardano"}},
		{"percentage asc", SortByPercentage, Ascending, []string{"cardano", "ethereum", "bitcoin"}},
		{"rank asc", SortByMarketCapRank, Ascending, []string{"bitcoin", "ethereum", "cardano"}},
		{"price desc", SortByCurrentPrice, Descending, []string{"bitcoin", "ethereum", "cardano"}},
		{"quantity asc", SortByQuantity, Ascending, []string{"bitcoin", "ethereum", "cardano"}},
		{"balance desc", SortByBalance, Descending, []string{"bitcoin", "ethereum", "cardano"}},
		{"max supply desc", SortByMaxSupply, Descending, []string{"cardano", "bitcoin", "ethereum"}},
		{"24h change desc", SortByChange24h, Descending, []string{"ethereum", "cardano", "bitcoin"}},
		{"7d change asc", SortByChange7d, Ascending, []string{"ethereum", "cardano", "bitcoin"}},
		{"30d change desc", SortByChange30d, Descending, []string{"ethereum", "bitcoin", "cardano"}},
		{"unknown field falls back to percentage", SortField("BOGUS"), Descending, []string{"bitcoin", "ethereum", "cardano"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := sortFixtureRows(t)
			sortRows(rows, tt.field, tt.dir)
			got := rowIDs(rows)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("order = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSortRowsStableOnTies(t *testing.T) {
	rows := []DetailedRow{
		{Asset: AssetInfo{ID: "first"}, Percentage: 50},
		{Asset: AssetInfo{ID: "second"}, Percentage: 50},
		{Asset: AssetInfo{ID: "third"}, Percentage: 50},
	}
	sortRows(rows, SortByPercentage, Descending)

	want := []string{"first", "second", "third"}
	for i, id := range rowIDs(rows) {
		if id != want[i] {
			t.Fatalf("tied rows reordered: %v", rowIDs(rows))
		}
	}
}

func TestParseSortField(t *testing.T) {
	tests := []struct {
		in   string
		want SortField
	}{
		{"PERCENTAGE", SortByPercentage},
		{"market_cap_rank", SortByMarketCapRank},
		{" current_price ", SortByCurrentPrice},
		{"quantity", SortByQuantity},
		{"MAX_SUPPLY", SortByMaxSupply},
		{"CHANGE_PRICE_IN_24H", SortByChange24h},
		{"", SortByPercentage},
		{"nonsense", SortByPercentage},
	}
	for _, tt := range tests {
		if got := ParseSortField(tt.in); got != tt.want {
			t.Errorf("ParseSortField(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseSortDirection(t *testing.T) {
	if got := ParseSortDirection("asc"); got != Ascending {
		t.Errorf("ParseSortDirection(asc) = %s, want ASC", got)
	}
	if got := ParseSortDirection("DESC"); got != Descending {
		t.Errorf("ParseSortDirection(DESC) = %s, want DESC", got)
	}
	if got := ParseSortDirection(""); got != Descending {
		t.Errorf("ParseSortDirection(empty) = %s, want DESC", got)
	}
}
