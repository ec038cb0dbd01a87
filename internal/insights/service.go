package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/cryptobalance/tracker/internal/domain"
)

// pageSize is the fixed page size of the detailed insights view.
const pageSize = 10

// ErrNoData indicates that no holdings exist for the requested view. The
// boundary layer maps it to a "no content" outcome.
var ErrNoData = errors.New("no insights data")

// ErrDanglingReference indicates a holding referencing a missing asset or
// platform. Reference-counted deletion makes this impossible under normal
// operation, so it is a data-integrity bug, not a recoverable condition.
var ErrDanglingReference = errors.New("holding references a missing record")

// HoldingStore is the holdings collaborator. List queries return empty
// slices, never an error, when nothing matches.
type HoldingStore interface {
	FindAll(ctx context.Context) ([]domain.Holding, error)
	FindAllByPlatformID(ctx context.Context, platformID string) ([]domain.Holding, error)
	FindAllByAssetID(ctx context.Context, assetID string) ([]domain.Holding, error)
}

// AssetStore is the asset price collaborator. FindAllByIDs returns partial
// results silently when ids are missing.
type AssetStore interface {
	FindAllByIDs(ctx context.Context, ids []string) ([]domain.Asset, error)
}

// PlatformStore is the platform collaborator.
type PlatformStore interface {
	FindByID(ctx context.Context, id string) (domain.Platform, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]domain.Platform, error)
}

// Service computes derived portfolio views from holdings, prices, and
// platforms. All operations are read-only.
type Service struct {
	holdings  HoldingStore
	assets    AssetStore
	platforms PlatformStore
}

// NewService creates a new insights Service.
func NewService(holdings HoldingStore, assets AssetStore, platforms PlatformStore) *Service {
	if holdings == nil {
		panic("insights.NewService: holdings is nil")
	}
	if assets == nil {
		panic("insights.NewService: assets is nil")
	}
	if platforms == nil {
		panic("insights.NewService: platforms is nil")
	}
	return &Service{holdings: holdings, assets: assets, platforms: platforms}
}

// RetrieveTotalBalances computes the value of all holdings.
func (s *Service) RetrieveTotalBalances(ctx context.Context) (domain.Balances, error) {
	holdings, err := s.holdings.FindAll(ctx)
	if err != nil {
		return domain.Balances{}, err
	}
	if len(holdings) == 0 {
		return domain.Balances{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return domain.Balances{}, err
	}
	return TotalBalances(holdings, assets), nil
}

// RetrievePlatformInsights lists every asset held on one platform with its
// share of the platform total, highest share first.
func (s *Service) RetrievePlatformInsights(ctx context.Context, platformID string) (PlatformInsights, error) {
	p, err := s.platforms.FindByID(ctx, platformID)
	if err != nil {
		return PlatformInsights{}, err
	}

	holdings, err := s.holdings.FindAllByPlatformID(ctx, platformID)
	if err != nil {
		return PlatformInsights{}, err
	}
	if len(holdings) == 0 {
		return PlatformInsights{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return PlatformInsights{}, err
	}

	total := TotalBalances(holdings, assets)
	rows := lo.Map(holdings, func(h domain.Holding, _ int) AssetInsight {
		a := assets[h.AssetID]
		b := AssetBalances(a, h.Quantity)
		return AssetInsight{
			Asset:      assetInfo(a),
			Quantity:   h.Quantity.String(),
			Balances:   b,
			Percentage: domain.PercentageOf(b.USD, total.USD),
		}
	})
	sortByShareDesc(rows, func(r AssetInsight) float32 { return r.Percentage })

	return PlatformInsights{PlatformName: p.Name, Balances: total, Assets: rows}, nil
}

// RetrieveAssetInsights lists every platform holding one asset with its share
// of the asset total across platforms, highest share first.
func (s *Service) RetrieveAssetInsights(ctx context.Context, assetID string) (AssetInsights, error) {
	holdings, err := s.holdings.FindAllByAssetID(ctx, assetID)
	if err != nil {
		return AssetInsights{}, err
	}
	if len(holdings) == 0 {
		return AssetInsights{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return AssetInsights{}, err
	}
	platforms, err := s.loadPlatforms(ctx, holdings)
	if err != nil {
		return AssetInsights{}, err
	}

	a := assets[assetID]
	total := TotalBalances(holdings, assets)
	rows := lo.Map(holdings, func(h domain.Holding, _ int) PlatformShare {
		b := AssetBalances(a, h.Quantity)
		return PlatformShare{
			PlatformName: platforms[h.PlatformID].Name,
			Quantity:     h.Quantity.String(),
			Balances:     b,
			Percentage:   domain.PercentageOf(b.USD, total.USD),
		}
	})
	sortByShareDesc(rows, func(r PlatformShare) float32 { return r.Percentage })

	return AssetInsights{Asset: assetInfo(a), Balances: total, Platforms: rows}, nil
}

// RetrievePlatformsBalances ranks every platform by its share of the grand
// total, highest share first.
func (s *Service) RetrievePlatformsBalances(ctx context.Context) (PlatformsBalances, error) {
	holdings, err := s.holdings.FindAll(ctx)
	if err != nil {
		return PlatformsBalances{}, err
	}
	if len(holdings) == 0 {
		return PlatformsBalances{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return PlatformsBalances{}, err
	}
	platforms, err := s.loadPlatforms(ctx, holdings)
	if err != nil {
		return PlatformsBalances{}, err
	}

	grand := TotalBalances(holdings, assets)

	platformIDs, byPlatform := groupOrdered(holdings, func(h domain.Holding) string { return h.PlatformID })
	rows := lo.Map(platformIDs, func(id string, _ int) PlatformBalance {
		b := TotalBalances(byPlatform[id], assets)
		return PlatformBalance{
			PlatformName: platforms[id].Name,
			Balances:     b,
			Percentage:   domain.PercentageOf(b.USD, grand.USD),
		}
	})
	sortByShareDesc(rows, func(r PlatformBalance) float32 { return r.Percentage })

	return PlatformsBalances{Balances: grand, Platforms: rows}, nil
}

// RetrieveAssetsBalances ranks every asset by its share of the grand total,
// highest share first. When more than maxAssets distinct assets exist, the
// excess lowest-ranked assets are collapsed into a single "Others" row
// appended after the top maxAssets; the cut is purely rank-based.
func (s *Service) RetrieveAssetsBalances(ctx context.Context, maxAssets int) (AssetsBalances, error) {
	holdings, err := s.holdings.FindAll(ctx)
	if err != nil {
		return AssetsBalances{}, err
	}
	if len(holdings) == 0 {
		return AssetsBalances{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return AssetsBalances{}, err
	}

	grand := TotalBalances(holdings, assets)

	assetIDs, byAsset := groupOrdered(holdings, func(h domain.Holding) string { return h.AssetID })
	rows := lo.Map(assetIDs, func(id string, _ int) AssetBalance {
		b := AssetBalances(assets[id], sumQuantities(byAsset[id]))
		return AssetBalance{
			Asset:      assetInfo(assets[id]),
			Balances:   b,
			Percentage: domain.PercentageOf(b.USD, grand.USD),
		}
	})
	sortByShareDesc(rows, func(r AssetBalance) float32 { return r.Percentage })

	if maxAssets > 0 && len(rows) > maxAssets {
		collapsed := lo.Reduce(rows[maxAssets:], func(acc domain.Balances, r AssetBalance, _ int) domain.Balances {
			return acc.Add(r.Balances)
		}, domain.Balances{USD: decimal.Zero, EUR: decimal.Zero, BTC: decimal.Zero})

		rows = append(rows[:maxAssets:maxAssets], AssetBalance{
			Asset:      AssetInfo{Name: "Others"},
			Balances:   collapsed,
			Percentage: domain.PercentageOf(collapsed.USD, grand.USD),
		})
	}

	return AssetsBalances{Balances: grand, Assets: rows}, nil
}

// RetrieveDetailedInsights builds the full row list for all holdings, sorts
// it by the requested field, and returns one fixed-size page.
//
// Pagination is applied after full in-memory computation because each row's
// percentage needs the grand total first. A page starting exactly at the end
// of the data returns an empty-but-present page; only pages starting strictly
// past the end are "no data". Callers depend on that boundary.
func (s *Service) RetrieveDetailedInsights(ctx context.Context, page int, sortBy SortField, sortType SortDirection, groupByAsset bool) (DetailedInsights, error) {
	rows, grand, err := s.collectDetailedRows(ctx, groupByAsset)
	if err != nil {
		return DetailedInsights{}, err
	}

	sortRows(rows, sortBy, sortType)

	total := len(rows)
	start := page * pageSize
	if start > total {
		return DetailedInsights{}, ErrNoData
	}
	end := min(start+pageSize, total)
	totalPages := (total + pageSize - 1) / pageSize

	return DetailedInsights{
		Balances:    grand,
		Rows:        rows[start:end],
		Page:        page,
		TotalPages:  totalPages,
		HasNextPage: page+1 < totalPages,
	}, nil
}

// RetrieveAllInsights returns every detailed row in a single unpaginated
// result, ordered by share descending. Snapshot generation and report export
// consume this.
func (s *Service) RetrieveAllInsights(ctx context.Context) (DetailedInsights, error) {
	rows, grand, err := s.collectDetailedRows(ctx, false)
	if err != nil {
		return DetailedInsights{}, err
	}
	sortRows(rows, SortByPercentage, Descending)
	return DetailedInsights{
		Balances:   grand,
		Rows:       rows,
		TotalPages: 1,
	}, nil
}

// collectDetailedRows loads all holdings and builds one row per holding, or
// per asset when grouping is requested. Grouped rows carry the summed
// quantity and the platform names in first-encounter order.
func (s *Service) collectDetailedRows(ctx context.Context, groupByAsset bool) ([]DetailedRow, domain.Balances, error) {
	holdings, err := s.holdings.FindAll(ctx)
	if err != nil {
		return nil, domain.Balances{}, err
	}
	if len(holdings) == 0 {
		return nil, domain.Balances{}, ErrNoData
	}

	assets, err := s.loadAssets(ctx, holdings)
	if err != nil {
		return nil, domain.Balances{}, err
	}
	platforms, err := s.loadPlatforms(ctx, holdings)
	if err != nil {
		return nil, domain.Balances{}, err
	}

	grand := TotalBalances(holdings, assets)

	key := func(h domain.Holding) string { return h.ID }
	if groupByAsset {
		key = func(h domain.Holding) string { return h.AssetID }
	}
	keys, groups := groupOrdered(holdings, key)

	rows := make([]DetailedRow, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		a := assets[group[0].AssetID]
		qty := sumQuantities(group)
		b := AssetBalances(a, qty)

		rows = append(rows, DetailedRow{
			Asset:      assetInfo(a),
			Quantity:   qty.String(),
			Balances:   b,
			Percentage: domain.PercentageOf(b.USD, grand.USD),
			MarketData: RowMarketData{
				CirculatingSupplyShare: a.MarketData.CirculatingSupplyShare(),
				MaxSupply:              domain.PlainString(a.MarketData.MaxSupply),
				MarketCapRank:          a.MarketData.MarketCapRank,
				MarketCap:              domain.PlainString(a.MarketData.MarketCap),
				Change24h:              a.MarketData.Change24h,
				Change7d:               a.MarketData.Change7d,
				Change30d:              a.MarketData.Change30d,
			},
			Platforms: lo.Map(group, func(h domain.Holding, _ int) string {
				return platforms[h.PlatformID].Name
			}),
			keys: rowSortKeys{
				price:     a.LastKnownPrices.USD,
				quantity:  qty,
				usd:       b.USD,
				maxSupply: a.MarketData.MaxSupply,
			},
		})
	}

	return rows, grand, nil
}

// loadAssets resolves the distinct assets referenced by the holdings.
// A reference the store cannot resolve is a fatal integrity violation.
func (s *Service) loadAssets(ctx context.Context, holdings []domain.Holding) (map[string]domain.Asset, error) {
	ids := lo.Uniq(lo.Map(holdings, func(h domain.Holding, _ int) string { return h.AssetID }))
	assets, err := s.assets.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(assets, func(a domain.Asset) string { return a.ID })
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: asset %s", ErrDanglingReference, id)
		}
	}
	return byID, nil
}

// loadPlatforms resolves the distinct platforms referenced by the holdings,
// with the same fatal-on-missing contract as loadAssets.
func (s *Service) loadPlatforms(ctx context.Context, holdings []domain.Holding) (map[string]domain.Platform, error) {
	ids := lo.Uniq(lo.Map(holdings, func(h domain.Holding, _ int) string { return h.PlatformID }))
	platforms, err := s.platforms.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(platforms, func(p domain.Platform) string { return p.ID })
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: platform %s", ErrDanglingReference, id)
		}
	}
	return byID, nil
}

func assetInfo(a domain.Asset) AssetInfo {
	return AssetInfo{ID: a.ID, Name: a.Name, Ticker: a.Ticker, Image: a.Image}
}

// groupOrdered groups holdings by key, returning keys in first-encounter
// order so downstream stable sorts break ties by original order.
func groupOrdered(holdings []domain.Holding, key func(domain.Holding) string) ([]string, map[string][]domain.Holding) {
	var order []string
	groups := make(map[string][]domain.Holding)
	for _, h := range holdings {
		k := key(h)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], h)
	}
	return order, groups
}
