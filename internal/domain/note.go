package domain

import (
	"time"

	"github.com/google/uuid"
)

// Image is one attachment on a note, stored in object storage.
type Image struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
}

type Note struct {
	ID                  uuid.UUID   `json:"id"`
	OwnerID             uuid.UUID   `json:"owner_id"`
	Title               string      `json:"title"`
	Content             string      `json:"content"`
	IsPinned            bool        `json:"is_pinned"`
	IsPasswordProtected bool        `json:"is_password_protected"`
	PasswordHash        string      `json:"-"`
	Images              []Image     `json:"images"`
	LabelIDs            []uuid.UUID `json:"label_ids"`
	Collaborators       []uuid.UUID `json:"collaborators"`
	BackgroundColor     string      `json:"background_color"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
	// Joined fields
	Labels []Label `json:"labels,omitempty"`
}

// HasCollaborator reports whether userID is in the note's collaborator set.
func (n *Note) HasCollaborator(userID uuid.UUID) bool {
	for _, c := range n.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}
