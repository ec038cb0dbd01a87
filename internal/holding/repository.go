package holding

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrNotFound indicates that the requested holding does not exist.
var ErrNotFound = errors.New("holding not found")

// Repository defines persistent storage for holdings. List queries return
// empty slices, never an error, when nothing matches.
type Repository interface {
	FindByID(ctx context.Context, id string) (domain.Holding, error)
	FindAll(ctx context.Context) ([]domain.Holding, error)
	FindAllByPlatformID(ctx context.Context, platformID string) ([]domain.Holding, error)
	FindAllByAssetID(ctx context.Context, assetID string) ([]domain.Holding, error)
	Upsert(ctx context.Context, h domain.Holding) error
	UpsertAll(ctx context.Context, holdings []domain.Holding) error
	DeleteByID(ctx context.Context, id string) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL holding repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Holding, error) {
	var h domain.Holding
	err := r.pool.QueryRow(ctx,
		`SELECT id, asset_id, quantity, platform_id FROM holdings WHERE id = $1`,
		id).Scan(&h.ID, &h.AssetID, &h.Quantity, &h.PlatformID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Holding{}, ErrNotFound
		}
		return domain.Holding{}, fmt.Errorf("getting holding %s: %w", id, err)
	}
	return h, nil
}

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.Holding, error) {
	return r.query(ctx,
		`SELECT id, asset_id, quantity, platform_id FROM holdings ORDER BY created_at`)
}

func (r *PgRepository) FindAllByPlatformID(ctx context.Context, platformID string) ([]domain.Holding, error) {
	return r.query(ctx,
		`SELECT id, asset_id, quantity, platform_id FROM holdings
		 WHERE platform_id = $1 ORDER BY created_at`, platformID)
}

func (r *PgRepository) FindAllByAssetID(ctx context.Context, assetID string) ([]domain.Holding, error) {
	return r.query(ctx,
		`SELECT id, asset_id, quantity, platform_id FROM holdings
		 WHERE asset_id = $1 ORDER BY created_at`, assetID)
}

const upsertSQL = `INSERT INTO holdings (id, asset_id, quantity, platform_id)
	 VALUES ($1, $2, $3, $4)
	 ON CONFLICT (id) DO UPDATE SET quantity = $3, platform_id = $4`

func (r *PgRepository) Upsert(ctx context.Context, h domain.Holding) error {
	_, err := r.pool.Exec(ctx, upsertSQL, h.ID, h.AssetID, h.Quantity, h.PlatformID)
	if err != nil {
		return fmt.Errorf("upserting holding %s: %w", h.ID, err)
	}
	return nil
}

// UpsertAll writes the holdings in order within a single batch, so the
// source-before-destination ordering of a transfer is preserved.
func (r *PgRepository) UpsertAll(ctx context.Context, holdings []domain.Holding) error {
	batch := &pgx.Batch{}
	for _, h := range holdings {
		batch.Queue(upsertSQL, h.ID, h.AssetID, h.Quantity, h.PlatformID)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting %d holdings: %w", len(holdings), err)
	}
	return nil
}

func (r *PgRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting holding %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Holding, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying holdings: %w", err)
	}
	defer rows.Close()

	holdings := []domain.Holding{}
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.ID, &h.AssetID, &h.Quantity, &h.PlatformID); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
