package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notelyhq/notely/internal/domain"
)

const noteColumns = `id, owner_id, title, content, is_pinned,
	is_password_protected, password_hash, images, label_ids, collaborators,
	background_color, created_at, updated_at`

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	images, err := json.Marshal(n.Images)
	if err != nil {
		return fmt.Errorf("marshaling images: %w", err)
	}

	query := `
		INSERT INTO notes (` + noteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		n.ID, n.OwnerID, n.Title, n.Content, n.IsPinned,
		n.IsPasswordProtected, n.PasswordHash, images, n.LabelIDs, n.Collaborators,
		n.BackgroundColor, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (r *NoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	var n domain.Note
	err := scanNoteRow(r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id), &n)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &n, err
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	query := `
		SELECT ` + noteColumns + ` FROM notes
		WHERE owner_id = $1 OR $1 = ANY(collaborators)
		ORDER BY is_pinned DESC, updated_at DESC`

	return r.queryNotes(ctx, query, userID)
}

func (r *NoteRepo) Search(ctx context.Context, userID uuid.UUID, query string) ([]domain.Note, error) {
	sql := `
		SELECT ` + noteColumns + ` FROM notes
		WHERE (owner_id = $1 OR $1 = ANY(collaborators))
		  AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		ORDER BY is_pinned DESC, updated_at DESC`

	return r.queryNotes(ctx, sql, userID, query)
}

// Update writes every mutable field in one statement. Concurrent access
// decisions read the row with a single SELECT, so they observe either the
// pre- or post-update collaborator set and (flag, hash) pair, never a mix.
func (r *NoteRepo) Update(ctx context.Context, n *domain.Note) error {
	images, err := json.Marshal(n.Images)
	if err != nil {
		return fmt.Errorf("marshaling images: %w", err)
	}

	query := `
		UPDATE notes
		SET title = $1, content = $2, is_pinned = $3,
			is_password_protected = $4, password_hash = $5,
			images = $6, label_ids = $7, collaborators = $8,
			background_color = $9, updated_at = $10
		WHERE id = $11`

	_, err = r.pool.Exec(ctx, query,
		n.Title, n.Content, n.IsPinned,
		n.IsPasswordProtected, n.PasswordHash,
		images, n.LabelIDs, n.Collaborators,
		n.BackgroundColor, n.UpdatedAt, n.ID,
	)
	return err
}

func (r *NoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	return err
}

func (r *NoteRepo) queryNotes(ctx context.Context, query string, args ...any) ([]domain.Note, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := scanNoteRow(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanNoteRow(row pgx.Row, n *domain.Note) error {
	return row.Scan(
		&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.IsPinned,
		&n.IsPasswordProtected, &n.PasswordHash, &n.Images, &n.LabelIDs, &n.Collaborators,
		&n.BackgroundColor, &n.CreatedAt, &n.UpdatedAt,
	)
}
