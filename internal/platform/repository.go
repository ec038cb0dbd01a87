package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cryptobalance/tracker/internal/domain"
)

// ErrNotFound indicates that the requested platform does not exist.
var ErrNotFound = errors.New("platform not found")

// ErrDuplicateName indicates that a platform with the same name already exists.
var ErrDuplicateName = errors.New("platform name already exists")

// Repository defines persistent storage for platforms.
type Repository interface {
	FindByID(ctx context.Context, id string) (domain.Platform, error)
	FindAllByIDs(ctx context.Context, ids []string) ([]domain.Platform, error)
	FindAll(ctx context.Context) ([]domain.Platform, error)
	Save(ctx context.Context, p domain.Platform) error
	Update(ctx context.Context, p domain.Platform) error
	DeleteByID(ctx context.Context, id string) error
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL platform repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Platform, error) {
	var p domain.Platform
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM platforms WHERE id = $1`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Platform{}, ErrNotFound
		}
		return domain.Platform{}, fmt.Errorf("getting platform %s: %w", id, err)
	}
	return p, nil
}

func (r *PgRepository) FindAllByIDs(ctx context.Context, ids []string) ([]domain.Platform, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM platforms WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting platforms by ids: %w", err)
	}
	defer rows.Close()
	return scanPlatforms(rows)
}

func (r *PgRepository) FindAll(ctx context.Context) ([]domain.Platform, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM platforms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing platforms: %w", err)
	}
	defer rows.Close()
	return scanPlatforms(rows)
}

func (r *PgRepository) Save(ctx context.Context, p domain.Platform) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO platforms (id, name) VALUES ($1, $2)`, p.ID, p.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("saving platform %s: %w", p.Name, err)
	}
	return nil
}

func (r *PgRepository) Update(ctx context.Context, p domain.Platform) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE platforms SET name = $2 WHERE id = $1`, p.ID, p.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("updating platform %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM platforms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting platform %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPlatforms(rows pgx.Rows) ([]domain.Platform, error) {
	var platforms []domain.Platform
	for rows.Next() {
		var p domain.Platform
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
