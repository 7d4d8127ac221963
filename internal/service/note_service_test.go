package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelyhq/notely/internal/domain"
)

func newNoteServiceForTest() (*NoteService, *fakeNoteRepo, *fakeUserRepo, *fakeLabelRepo, *fakeObjectStore) {
	notes := newFakeNoteRepo()
	users := newFakeUserRepo()
	labels := newFakeLabelRepo()
	store := newFakeObjectStore()
	return NewNoteService(notes, users, labels, store), notes, users, labels, store
}

func addUser(t *testing.T, users *fakeUserRepo) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := users.Create(context.Background(), &domain.User{ID: id, Email: id.String() + "@example.com", Name: "user"})
	require.NoError(t, err)
	return id
}

func TestCreateProtectedNoteRequiresPassword(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	_, err := svc.Create(context.Background(), owner, CreateNoteInput{
		Title:               "secret",
		IsPasswordProtected: true,
	})
	assert.ErrorIs(t, err, ErrPasswordMissing)
}

func TestCreateProtectedNoteStoresHash(t *testing.T) {
	svc, notes, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{
		Title:               "secret",
		Content:             "hidden body",
		IsPasswordProtected: true,
		Password:            "hunter22",
	})
	require.NoError(t, err)

	stored, err := notes.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPasswordProtected)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
}

// The read-verify-read cycle: a protected note never comes back in full from
// a plain Get, even for the owner, and a successful verification does not
// unlock subsequent reads.
func TestProtectedNoteReadCycle(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{
		Title:               "diary",
		Content:             "hidden body",
		IsPasswordProtected: true,
		Password:            "hunter22",
	})
	require.NoError(t, err)

	note, passwordRequired, err := svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.True(t, passwordRequired)
	assert.Equal(t, "diary", note.Title)
	assert.Empty(t, note.Content, "protected read must not leak the body")

	_, err = svc.VerifyPassword(context.Background(), owner, created.ID, "wrong")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	full, err := svc.VerifyPassword(context.Background(), owner, created.ID, "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "hidden body", full.Content)

	// No unlock state: the next plain read requires the password again.
	_, passwordRequired, err = svc.Get(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.True(t, passwordRequired)
}

func TestGetDeniesStrangers(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)
	stranger := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "mine"})
	require.NoError(t, err)

	_, _, err = svc.Get(context.Background(), stranger, created.ID)
	assert.ErrorIs(t, err, ErrNotCollaborator)

	_, _, err = svc.Get(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestUpdateDisablingProtectionClearsHash(t *testing.T) {
	svc, notes, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{
		Title:               "secret",
		IsPasswordProtected: true,
		Password:            "hunter22",
	})
	require.NoError(t, err)

	off := false
	_, err = svc.Update(context.Background(), owner, created.ID, UpdateNoteInput{IsPasswordProtected: &off})
	require.NoError(t, err)

	stored, err := notes.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPasswordProtected)
	assert.Empty(t, stored.PasswordHash)
}

func TestUpdateEnablingProtectionWithoutPassword(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "plain"})
	require.NoError(t, err)

	on := true
	_, err = svc.Update(context.Background(), owner, created.ID, UpdateNoteInput{IsPasswordProtected: &on})
	assert.ErrorIs(t, err, ErrPasswordMissing)

	pw := "Sup3rSecret"
	_, err = svc.Update(context.Background(), owner, created.ID, UpdateNoteInput{IsPasswordProtected: &on, Password: &pw})
	assert.NoError(t, err)
}

func TestCollaboratorCanEditButNotDelete(t *testing.T) {
	svc, notes, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)
	collab := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "shared"})
	require.NoError(t, err)

	_, err = svc.AddCollaborator(context.Background(), owner, created.ID, collab)
	require.NoError(t, err)

	content := "edited by collaborator"
	_, err = svc.Update(context.Background(), collab, created.ID, UpdateNoteInput{Content: &content})
	require.NoError(t, err)

	stored, err := notes.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, content, stored.Content)

	err = svc.Delete(context.Background(), collab, created.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(context.Background(), owner, created.ID)
	assert.NoError(t, err)
}

func TestCollaboratorManagementIsOwnerOnly(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)
	collab := addUser(t, users)
	other := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "shared"})
	require.NoError(t, err)

	_, err = svc.AddCollaborator(context.Background(), owner, created.ID, collab)
	require.NoError(t, err)

	// A collaborator cannot grow the collaborator set.
	_, err = svc.AddCollaborator(context.Background(), collab, created.ID, other)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Duplicates are rejected.
	_, err = svc.AddCollaborator(context.Background(), owner, created.ID, collab)
	assert.ErrorIs(t, err, ErrAlreadyCollaborator)

	// Unknown users cannot be added.
	_, err = svc.AddCollaborator(context.Background(), owner, created.ID, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	note, err := svc.RemoveCollaborator(context.Background(), owner, created.ID, collab)
	require.NoError(t, err)
	assert.Empty(t, note.Collaborators)

	_, _, err = svc.Get(context.Background(), collab, created.ID)
	assert.ErrorIs(t, err, ErrNotCollaborator)
}

func TestDeleteCleansUpImageObjects(t *testing.T) {
	svc, _, users, _, store := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "with images"})
	require.NoError(t, err)

	_, err = svc.AddImages(context.Background(), owner, created.ID, []ImageUpload{
		{Filename: "a.png", ContentType: "image/png", Size: 3, Reader: strings.NewReader("png")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("jpg")},
	})
	require.NoError(t, err)
	assert.Len(t, store.objects, 2)

	require.NoError(t, svc.Delete(context.Background(), owner, created.ID))
	assert.Empty(t, store.objects)
	assert.Len(t, store.deleted, 2)
}

func TestAddImagesAppendsInOrder(t *testing.T) {
	svc, _, users, _, store := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "gallery"})
	require.NoError(t, err)

	note, err := svc.AddImages(context.Background(), owner, created.ID, []ImageUpload{
		{Filename: "first.png", ContentType: "image/png", Size: 1, Reader: strings.NewReader("a")},
	})
	require.NoError(t, err)
	require.Len(t, note.Images, 1)

	note, err = svc.AddImages(context.Background(), owner, created.ID, []ImageUpload{
		{Filename: "second.png", ContentType: "image/png", Size: 1, Reader: strings.NewReader("b")},
	})
	require.NoError(t, err)
	require.Len(t, note.Images, 2)

	for _, img := range note.Images {
		assert.Equal(t, store.URL(img.ObjectKey), img.URL)
		assert.True(t, strings.HasPrefix(img.ObjectKey, "notes/"+created.ID.String()+"/"))
	}
}

func TestListRedactsProtectedNotes(t *testing.T) {
	svc, _, users, labels, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	lbl := &domain.Label{ID: uuid.New(), OwnerID: owner, Name: "work", Color: "#4f46e5"}
	require.NoError(t, labels.Create(context.Background(), lbl))

	_, err := svc.Create(context.Background(), owner, CreateNoteInput{
		Title:    "open",
		Content:  "visible body",
		LabelIDs: []uuid.UUID{lbl.ID},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, CreateNoteInput{
		Title:               "locked",
		Content:             "hidden body",
		IsPasswordProtected: true,
		Password:            "hunter22",
	})
	require.NoError(t, err)

	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, n := range list {
		switch n.Title {
		case "open":
			assert.Equal(t, "visible body", n.Content)
			require.Len(t, n.Labels, 1)
			assert.Equal(t, "work", n.Labels[0].Name)
		case "locked":
			assert.Empty(t, n.Content)
			assert.True(t, n.IsPasswordProtected)
		default:
			t.Fatalf("unexpected note %q in list", n.Title)
		}
	}
}

func TestOwnerMayAlsoBeCollaborator(t *testing.T) {
	svc, _, users, _, _ := newNoteServiceForTest()
	owner := addUser(t, users)

	created, err := svc.Create(context.Background(), owner, CreateNoteInput{Title: "self"})
	require.NoError(t, err)

	note, err := svc.AddCollaborator(context.Background(), owner, created.ID, owner)
	require.NoError(t, err)
	assert.Contains(t, note.Collaborators, owner)

	// Owner privileges are unchanged by the redundant membership.
	err = svc.Delete(context.Background(), owner, created.ID)
	assert.NoError(t, err)
}
