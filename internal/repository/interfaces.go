package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByActivationToken(ctx context.Context, tokenHash string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Search(ctx context.Context, query string) ([]domain.User, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)
	// ListByUser returns notes the user owns or collaborates on,
	// pinned first, then most recently updated.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Note, error)
	Search(ctx context.Context, userID uuid.UUID, query string) ([]domain.Note, error)
	// Update persists all mutable note fields in a single statement so
	// concurrent snapshot reads see either the old or the new row, never
	// a partial mutation.
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Label, error)
	GetByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Label, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Label, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Label, error)
	Update(ctx context.Context, label *domain.Label) error
	Delete(ctx context.Context, id uuid.UUID) error
}
