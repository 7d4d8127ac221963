package service

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/domain"
)

// --- fake repositories (in-memory, same contracts as the postgres ones) ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByActivationToken(_ context.Context, tokenHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ActivationToken != nil && *u.ActivationToken == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetToken != nil && *u.ResetToken == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Search(_ context.Context, query string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	q := strings.ToLower(query)
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*domain.Note
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[uuid.UUID]*domain.Note)}
}

func (f *fakeNoteRepo) Create(_ context.Context, n *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	cp.Collaborators = append([]uuid.UUID(nil), n.Collaborators...)
	cp.Images = append([]domain.Image(nil), n.Images...)
	cp.LabelIDs = append([]uuid.UUID(nil), n.LabelIDs...)
	return &cp, nil
}

func (f *fakeNoteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Note
	for _, n := range f.notes {
		if n.OwnerID == userID || n.HasCollaborator(userID) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) Search(_ context.Context, userID uuid.UUID, query string) ([]domain.Note, error) {
	notes, _ := f.ListByUser(context.Background(), userID)
	q := strings.ToLower(query)
	var out []domain.Note
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) Update(_ context.Context, n *domain.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.notes[n.ID] = &cp
	return nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, id)
	return nil
}

type fakeLabelRepo struct {
	mu     sync.Mutex
	labels map[uuid.UUID]*domain.Label
}

func newFakeLabelRepo() *fakeLabelRepo {
	return &fakeLabelRepo{labels: make(map[uuid.UUID]*domain.Label)}
}

func (f *fakeLabelRepo) Create(_ context.Context, l *domain.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.labels[l.ID] = &cp
	return nil
}

func (f *fakeLabelRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.labels[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLabelRepo) GetByOwnerAndName(_ context.Context, ownerID uuid.UUID, name string) (*domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.labels {
		if l.OwnerID == ownerID && strings.EqualFold(l.Name, name) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLabelRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Label
	for _, l := range f.labels {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLabelRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Label, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Label
	for _, id := range ids {
		if l, ok := f.labels[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLabelRepo) Update(_ context.Context, l *domain.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.labels[l.ID] = &cp
	return nil
}

func (f *fakeLabelRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.labels, id)
	return nil
}

// --- fake object store and mailer ---

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string]string // key → content type
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string]string)}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, _ io.Reader, _ int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = contentType
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) URL(key string) string {
	return "http://store.local/notely/" + key
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
