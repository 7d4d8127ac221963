package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/access"
	"github.com/notelyhq/notely/internal/domain"
	"github.com/notelyhq/notely/internal/repository"
	"github.com/notelyhq/notely/internal/storage"
	"github.com/notelyhq/notely/pkg/password"
)

var (
	ErrNoteNotFound        = errors.New("note not found")
	ErrNotOwner            = errors.New("only the note owner can perform this action")
	ErrNotCollaborator     = errors.New("not authorized to access this note")
	ErrPasswordMismatch    = errors.New("incorrect password")
	ErrPasswordMissing     = errors.New("password protection requires a password")
	ErrAlreadyCollaborator = errors.New("user is already a collaborator")
)

type NoteService struct {
	noteRepo  repository.NoteRepository
	userRepo  repository.UserRepository
	labelRepo repository.LabelRepository
	store     storage.ObjectStore
}

func NewNoteService(noteRepo repository.NoteRepository, userRepo repository.UserRepository, labelRepo repository.LabelRepository, store storage.ObjectStore) *NoteService {
	return &NoteService{
		noteRepo:  noteRepo,
		userRepo:  userRepo,
		labelRepo: labelRepo,
		store:     store,
	}
}

type CreateNoteInput struct {
	Title               string      `json:"title"`
	Content             string      `json:"content"`
	IsPinned            bool        `json:"is_pinned"`
	IsPasswordProtected bool        `json:"is_password_protected"`
	Password            string      `json:"password"`
	BackgroundColor     string      `json:"background_color"`
	LabelIDs            []uuid.UUID `json:"label_ids"`
}

type UpdateNoteInput struct {
	Title               *string      `json:"title"`
	Content             *string      `json:"content"`
	IsPinned            *bool        `json:"is_pinned"`
	IsPasswordProtected *bool        `json:"is_password_protected"`
	Password            *string      `json:"password"`
	BackgroundColor     *string      `json:"background_color"`
	LabelIDs            *[]uuid.UUID `json:"label_ids"`
}

func (s *NoteService) Create(ctx context.Context, ownerID uuid.UUID, input CreateNoteInput) (*domain.Note, error) {
	now := time.Now()
	note := &domain.Note{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Title:           input.Title,
		Content:         input.Content,
		IsPinned:        input.IsPinned,
		Images:          []domain.Image{},
		LabelIDs:        input.LabelIDs,
		Collaborators:   []uuid.UUID{},
		BackgroundColor: input.BackgroundColor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if note.LabelIDs == nil {
		note.LabelIDs = []uuid.UUID{}
	}
	if note.BackgroundColor == "" {
		note.BackgroundColor = "#ffffff"
	}

	if input.IsPasswordProtected {
		if input.Password == "" {
			return nil, ErrPasswordMissing
		}
		hash, err := password.Hash(input.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing note password: %w", err)
		}
		note.IsPasswordProtected = true
		note.PasswordHash = hash
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	return s.withLabels(ctx, note)
}

// Get fetches a note for reading. When the note is password protected the
// returned note carries only its public header fields and passwordRequired
// is true; the caller must follow up with VerifyPassword to see the body.
func (s *NoteService) Get(ctx context.Context, requesterID, noteID uuid.UUID) (note *domain.Note, passwordRequired bool, err error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, false, err
	}
	if n == nil {
		return nil, false, ErrNoteNotFound
	}

	switch access.Decide(snapshotOf(n), requesterID, access.OpRead, false) {
	case access.DenyNotCollaborator:
		return nil, false, ErrNotCollaborator
	case access.RequirePassword:
		return redact(n), true, nil
	}

	full, err := s.withLabels(ctx, n)
	return full, false, err
}

// VerifyPassword checks a candidate against the note password and, on a
// match, returns the full note. Nothing is unlocked beyond this call: the
// next Get of the same note requires verification again.
func (s *NoteService) VerifyPassword(ctx context.Context, requesterID, noteID uuid.UUID, candidate string) (*domain.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}

	snap := snapshotOf(n)
	if access.Decide(snap, requesterID, access.OpRead, true) != access.Allow {
		return nil, ErrNotCollaborator
	}

	if n.IsPasswordProtected && !access.VerifyPassword(snap, candidate) {
		return nil, ErrPasswordMismatch
	}

	return s.withLabels(ctx, n)
}

func (s *NoteService) List(ctx context.Context, userID uuid.UUID) ([]domain.Note, error) {
	notes, err := s.noteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.prepareList(ctx, notes)
}

func (s *NoteService) Search(ctx context.Context, userID uuid.UUID, query string) ([]domain.Note, error) {
	notes, err := s.noteRepo.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return s.prepareList(ctx, notes)
}

func (s *NoteService) Update(ctx context.Context, requesterID, noteID uuid.UUID, input UpdateNoteInput) (*domain.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}

	if access.Decide(snapshotOf(n), requesterID, access.OpEdit, false) != access.Allow {
		return nil, ErrNotCollaborator
	}

	if input.Title != nil {
		n.Title = *input.Title
	}
	if input.Content != nil {
		n.Content = *input.Content
	}
	if input.IsPinned != nil {
		n.IsPinned = *input.IsPinned
	}
	if input.BackgroundColor != nil {
		n.BackgroundColor = *input.BackgroundColor
	}
	if input.LabelIDs != nil {
		if access.Decide(snapshotOf(n), requesterID, access.OpManageLabels, false) != access.Allow {
			return nil, ErrNotCollaborator
		}
		n.LabelIDs = *input.LabelIDs
	}

	if err := applyPasswordChange(n, input.IsPasswordProtected, input.Password); err != nil {
		return nil, err
	}

	n.UpdatedAt = time.Now()
	if err := s.noteRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("updating note: %w", err)
	}

	return s.withLabels(ctx, n)
}

// applyPasswordChange keeps the (flag, hash) pair consistent: the hash is
// stored iff the flag is set, and enabling protection without any password
// to hash is rejected rather than persisted half-done.
func applyPasswordChange(n *domain.Note, protected *bool, candidate *string) error {
	switch {
	case protected != nil && *protected:
		if candidate != nil && *candidate != "" {
			hash, err := password.Hash(*candidate)
			if err != nil {
				return fmt.Errorf("hashing note password: %w", err)
			}
			n.PasswordHash = hash
		} else if n.PasswordHash == "" {
			return ErrPasswordMissing
		}
		n.IsPasswordProtected = true

	case protected != nil:
		n.IsPasswordProtected = false
		n.PasswordHash = ""

	case candidate != nil && *candidate != "" && n.IsPasswordProtected:
		hash, err := password.Hash(*candidate)
		if err != nil {
			return fmt.Errorf("hashing note password: %w", err)
		}
		n.PasswordHash = hash
	}
	return nil
}

func (s *NoteService) Delete(ctx context.Context, requesterID, noteID uuid.UUID) error {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if n == nil {
		return ErrNoteNotFound
	}

	if access.Decide(snapshotOf(n), requesterID, access.OpDelete, false) != access.Allow {
		return ErrNotOwner
	}

	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}

	// Attachment cleanup is best-effort; the note row is already gone.
	for _, img := range n.Images {
		if err := s.store.Delete(ctx, img.ObjectKey); err != nil {
			log.Printf("note: deleting image object %s: %v", img.ObjectKey, err)
		}
	}
	return nil
}

func (s *NoteService) AddCollaborator(ctx context.Context, requesterID, noteID, userID uuid.UUID) (*domain.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}

	if access.Decide(snapshotOf(n), requesterID, access.OpManageCollaborators, false) != access.Allow {
		return nil, ErrNotOwner
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if n.HasCollaborator(userID) {
		return nil, ErrAlreadyCollaborator
	}

	n.Collaborators = append(n.Collaborators, userID)
	n.UpdatedAt = time.Now()
	if err := s.noteRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("adding collaborator: %w", err)
	}

	return s.withLabels(ctx, n)
}

func (s *NoteService) RemoveCollaborator(ctx context.Context, requesterID, noteID, userID uuid.UUID) (*domain.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}

	if access.Decide(snapshotOf(n), requesterID, access.OpManageCollaborators, false) != access.Allow {
		return nil, ErrNotOwner
	}

	kept := n.Collaborators[:0]
	for _, c := range n.Collaborators {
		if c != userID {
			kept = append(kept, c)
		}
	}
	n.Collaborators = kept
	n.UpdatedAt = time.Now()

	if err := s.noteRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("removing collaborator: %w", err)
	}

	return s.withLabels(ctx, n)
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// AddImages stores the uploads and appends them to the note's ordered
// image list.
func (s *NoteService) AddImages(ctx context.Context, requesterID, noteID uuid.UUID, uploads []ImageUpload) (*domain.Note, error) {
	n, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoteNotFound
	}

	if access.Decide(snapshotOf(n), requesterID, access.OpEdit, false) != access.Allow {
		return nil, ErrNotCollaborator
	}

	for _, up := range uploads {
		objectKey := fmt.Sprintf("notes/%s/%s%s", noteID, uuid.New(), path.Ext(up.Filename))
		if err := s.store.Put(ctx, objectKey, up.Reader, up.Size, up.ContentType); err != nil {
			return nil, fmt.Errorf("storing image: %w", err)
		}
		n.Images = append(n.Images, domain.Image{
			URL:       s.store.URL(objectKey),
			ObjectKey: objectKey,
		})
	}

	n.UpdatedAt = time.Now()
	if err := s.noteRepo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("saving images: %w", err)
	}

	return s.withLabels(ctx, n)
}

func snapshotOf(n *domain.Note) access.Snapshot {
	return access.Snapshot{
		OwnerID:             n.OwnerID,
		Collaborators:       n.Collaborators,
		IsPasswordProtected: n.IsPasswordProtected,
		PasswordHash:        n.PasswordHash,
	}
}

// redact strips everything but the public header of a protected note.
func redact(n *domain.Note) *domain.Note {
	return &domain.Note{
		ID:                  n.ID,
		OwnerID:             n.OwnerID,
		Title:               n.Title,
		IsPasswordProtected: true,
		CreatedAt:           n.CreatedAt,
		UpdatedAt:           n.UpdatedAt,
	}
}

// prepareList redacts protected notes and resolves labels for the rest.
func (s *NoteService) prepareList(ctx context.Context, notes []domain.Note) ([]domain.Note, error) {
	out := make([]domain.Note, 0, len(notes))
	var labelIDs []uuid.UUID
	for i := range notes {
		if notes[i].IsPasswordProtected {
			out = append(out, *redact(&notes[i]))
			continue
		}
		labelIDs = append(labelIDs, notes[i].LabelIDs...)
		out = append(out, notes[i])
	}

	labels, err := s.labelRepo.ListByIDs(ctx, labelIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Label, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}

	for i := range out {
		for _, id := range out[i].LabelIDs {
			if l, ok := byID[id]; ok {
				out[i].Labels = append(out[i].Labels, l)
			}
		}
	}
	return out, nil
}

// withLabels resolves label references on a single note. Labels deleted
// since they were attached are silently dropped.
func (s *NoteService) withLabels(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	n.Labels = nil
	labels, err := s.labelRepo.ListByIDs(ctx, n.LabelIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Label, len(labels))
	for _, l := range labels {
		byID[l.ID] = l
	}
	for _, id := range n.LabelIDs {
		if l, ok := byID[id]; ok {
			n.Labels = append(n.Labels, l)
		}
	}
	return n, nil
}
