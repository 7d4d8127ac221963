package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notelyhq/notely/internal/domain"
)

type LabelRepo struct {
	pool *pgxpool.Pool
}

func NewLabelRepo(pool *pgxpool.Pool) *LabelRepo {
	return &LabelRepo{pool: pool}
}

func (r *LabelRepo) Create(ctx context.Context, l *domain.Label) error {
	query := `
		INSERT INTO labels (id, owner_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, l.ID, l.OwnerID, l.Name, l.Color, l.CreatedAt)
	return err
}

func (r *LabelRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Label, error) {
	return r.scanLabel(ctx, `SELECT id, owner_id, name, color, created_at FROM labels WHERE id = $1`, id)
}

func (r *LabelRepo) GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Label, error) {
	query := `SELECT id, owner_id, name, color, created_at FROM labels WHERE owner_id = $1 AND lower(name) = lower($2)`

	var l domain.Label
	err := r.pool.QueryRow(ctx, query, ownerID, name).Scan(&l.ID, &l.OwnerID, &l.Name, &l.Color, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &l, err
}

func (r *LabelRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Label, error) {
	query := `SELECT id, owner_id, name, color, created_at FROM labels WHERE owner_id = $1 ORDER BY name`
	return r.queryLabels(ctx, query, ownerID)
}

func (r *LabelRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, owner_id, name, color, created_at FROM labels WHERE id = ANY($1) ORDER BY name`
	return r.queryLabels(ctx, query, ids)
}

func (r *LabelRepo) Update(ctx context.Context, l *domain.Label) error {
	_, err := r.pool.Exec(ctx, `UPDATE labels SET name = $1, color = $2 WHERE id = $3`, l.Name, l.Color, l.ID)
	return err
}

func (r *LabelRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	return err
}

func (r *LabelRepo) queryLabels(ctx context.Context, query string, args ...any) ([]domain.Label, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []domain.Label
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Color, &l.CreatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (r *LabelRepo) scanLabel(ctx context.Context, query string, arg any) (*domain.Label, error) {
	var l domain.Label
	err := r.pool.QueryRow(ctx, query, arg).Scan(&l.ID, &l.OwnerID, &l.Name, &l.Color, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &l, err
}
