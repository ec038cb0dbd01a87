package export

import (
	"context"
	"fmt"

	"github.com/cryptobalance/tracker/internal/insights"
)

// ReportWriter writes a computed portfolio view to a spreadsheet destination.
type ReportWriter interface {
	Write(ctx context.Context, view insights.DetailedInsights) error
}

// InsightsSource produces the full portfolio view the report is built from.
type InsightsSource interface {
	RetrieveAllInsights(ctx context.Context) (insights.DetailedInsights, error)
}

// Service computes the current portfolio view and delegates writing to a
// ReportWriter.
type Service struct {
	source InsightsSource
	writer ReportWriter
}

// NewService creates a new export Service.
func NewService(source InsightsSource, writer ReportWriter) *Service {
	return &Service{source: source, writer: writer}
}

// Export builds the full report and writes it out.
// Implements worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context) error {
	view, err := s.source.RetrieveAllInsights(ctx)
	if err != nil {
		return fmt.Errorf("computing portfolio view: %w", err)
	}
	return s.writer.Write(ctx, view)
}

// holdingsHeader is the first row of the holdings sheet.
var holdingsHeader = []any{
	"Asset", "Ticker", "Quantity", "Platforms",
	"USD", "EUR", "BTC", "Share %",
	"Rank", "Market Cap", "24h %", "7d %", "30d %",
}

// buildHoldingRows builds the tabular holdings data shared by all writers,
// header row first.
func buildHoldingRows(view insights.DetailedInsights) [][]any {
	data := make([][]any, 0, len(view.Rows)+1)
	data = append(data, holdingsHeader)

	for _, row := range view.Rows {
		data = append(data, []any{
			row.Asset.Name,
			row.Asset.Ticker,
			row.Quantity,
			joinPlatforms(row.Platforms),
			row.Balances.USD.StringFixed(2),
			row.Balances.EUR.StringFixed(2),
			row.Balances.BTC.String(),
			row.Percentage,
			row.MarketData.MarketCapRank,
			row.MarketData.MarketCap,
			row.MarketData.Change24h,
			row.MarketData.Change7d,
			row.MarketData.Change30d,
		})
	}

	return data
}

// buildTotalRows builds the totals sheet data.
func buildTotalRows(view insights.DetailedInsights) [][]any {
	return [][]any{
		{"Currency", "Total"},
		{"USD", view.Balances.USD.StringFixed(2)},
		{"EUR", view.Balances.EUR.StringFixed(2)},
		{"BTC", view.Balances.BTC.String()},
	}
}

func joinPlatforms(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
