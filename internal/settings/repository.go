package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository keeps settings in a single-row table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PostgresRepository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `SELECT banner_text, feature_approvals, demo_mode FROM settings WHERE id = 1`).
		Scan(&s.BannerText, &s.FeatureApprovals, &s.DemoMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return Default(), nil
	}
	return s, err
}

func (r *PostgresRepository) Save(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO settings (id, banner_text, feature_approvals, demo_mode) VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE SET banner_text = EXCLUDED.banner_text, feature_approvals = EXCLUDED.feature_approvals, demo_mode = EXCLUDED.demo_mode`,
		s.BannerText, s.FeatureApprovals, s.DemoMode)
	return err
}
