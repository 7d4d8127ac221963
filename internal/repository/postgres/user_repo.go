package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notelyhq/notely/internal/domain"
)

const userColumns = `id, email, name, password_hash, is_activated,
	activation_token, activation_expire, reset_token, reset_expire,
	preferences, avatar_url, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsActivated,
		u.ActivationToken, u.ActivationExpire, u.ResetToken, u.ResetExpire,
		u.Preferences, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepo) GetByActivationToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE activation_token = $1`, tokenHash)
}

func (r *UserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, tokenHash)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, name = $2, password_hash = $3, is_activated = $4,
			activation_token = $5, activation_expire = $6,
			reset_token = $7, reset_expire = $8,
			preferences = $9, avatar_url = $10, updated_at = $11
		WHERE id = $12`

	_, err := r.pool.Exec(ctx, query,
		u.Email, u.Name, u.PasswordHash, u.IsActivated,
		u.ActivationToken, u.ActivationExpire, u.ResetToken, u.ResetExpire,
		u.Preferences, u.AvatarURL, u.UpdatedAt, u.ID,
	)
	return err
}

func (r *UserRepo) Search(ctx context.Context, query string) ([]domain.User, error) {
	sql := `
		SELECT ` + userColumns + ` FROM users
		WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT 20`

	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserRow(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := scanUserRow(r.pool.QueryRow(ctx, query, arg), &u)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}

func scanUserRow(row pgx.Row, u *domain.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsActivated,
		&u.ActivationToken, &u.ActivationExpire, &u.ResetToken, &u.ResetExpire,
		&u.Preferences, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
}
