package asset

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrNotFound indicates that the requested asset does not exist.
var ErrNotFound = errors.New("asset not found")

// Repository defines persistent storage for cached asset snapshots.
// FindAllByIDs returns partial results silently when some ids are missing;
// callers that treat a missing reference as an integrity violation must
// check completeness themselves.
type Repository interface {
	FindByID(ctx context.Context, id string) (domain.Asset, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]domain.Asset, error)
	FindAll(ctx context.Context) ([]domain.Asset, error)
	Upsert(ctx context.Context, a domain.Asset) error
	DeleteByID(ctx context.Context, id string) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL asset repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const assetColumns = `id, name, ticker, image,
	price_usd, price_eur, price_btc,
	circulating_supply, max_supply, market_cap_rank, market_cap,
	change_24h, change_7d, change_30d, last_updated_at`

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Asset, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, ErrNotFound
		}
		return domain.Asset{}, fmt.Errorf("getting asset %s: %w", id, err)
	}
	return a, nil
}

func (r *PgRepository) FindAllByIDs(ctx context.Context, ids []string) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting assets by ids: %w", err)
	}
	defer rows.Close()
	return scanAssets(rows)
}

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+assetColumns+` FROM assets ORDER BY market_cap_rank`)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()
	return scanAssets(rows)
}

func (r *PgRepository) Upsert(ctx context.Context, a domain.Asset) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO assets (id, name, ticker, image,
			price_usd, price_eur, price_btc,
			circulating_supply, max_supply, market_cap_rank, market_cap,
			change_24h, change_7d, change_30d, last_updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (id) DO UPDATE SET
			name = $2, ticker = $3, image = $4,
			price_usd = $5, price_eur = $6, price_btc = $7,
			circulating_supply = $8, max_supply = $9,
			market_cap_rank = $10, market_cap = $11,
			change_24h = $12, change_7d = $13, change_30d = $14,
			last_updated_at = $15`,
		a.ID, a.Name, a.Ticker, a.Image,
		a.LastKnownPrices.USD, a.LastKnownPrices.EUR, a.LastKnownPrices.BTC,
		a.MarketData.CirculatingSupply, a.MarketData.MaxSupply,
		a.MarketData.MarketCapRank, a.MarketData.MarketCap,
		a.MarketData.Change24h, a.MarketData.Change7d, a.MarketData.Change30d,
		a.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting asset %s: %w", a.ID, err)
	}
	return nil
}

func (r *PgRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting asset %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(&a.ID, &a.Name, &a.Ticker, &a.Image,
		&a.LastKnownPrices.USD, &a.LastKnownPrices.EUR, &a.LastKnownPrices.BTC,
		&a.MarketData.CirculatingSupply, &a.MarketData.MaxSupply,
		&a.MarketData.MarketCapRank, &a.MarketData.MarketCap,
		&a.MarketData.Change24h, &a.MarketData.Change7d, &a.MarketData.Change30d,
		&a.LastUpdatedAt)
	return a, err
}

func scanAssets(rows pgx.Rows) ([]domain.Asset, error) {
	var assets []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
