package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID         `json:"id"`
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	PasswordHash     string            `json:"-"`
	IsActivated      bool              `json:"is_activated"`
	ActivationToken  *string           `json:"-"`
	ActivationExpire *time.Time        `json:"-"`
	ResetToken       *string           `json:"-"`
	ResetExpire      *time.Time        `json:"-"`
	Preferences      map[string]string `json:"preferences,omitempty"`
	AvatarURL        *string           `json:"avatar_url,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// UserSummary is the public shape returned by user lookup and search.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}
