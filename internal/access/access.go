// Package access decides whether a user may perform an operation on a note.
// Decisions are pure functions of a note snapshot; nothing here reads or
// writes shared state, so calls are safe from any goroutine.
package access

import (
	"github.com/google/uuid"

	"github.com/notelyhq/notely/pkg/password"
)

type Operation int

const (
	OpRead Operation = iota
	OpEdit
	OpDelete
	OpManageCollaborators
	OpManageLabels
)

type Decision int

const (
	Allow Decision = iota
	DenyNotOwner
	DenyNotCollaborator
	RequirePassword
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNotOwner:
		return "deny_not_owner"
	case DenyNotCollaborator:
		return "deny_not_collaborator"
	case RequirePassword:
		return "require_password"
	}
	return "unknown"
}

// Snapshot is the slice of a note that access decisions depend on. The
// persistence layer must hand out a consistent snapshot: collaborator and
// (flag, hash) mutations are atomic at the store, so a Snapshot never holds
// a half-applied set or a flag without its hash.
type Snapshot struct {
	OwnerID             uuid.UUID
	Collaborators       []uuid.UUID
	IsPasswordProtected bool
	PasswordHash        string
}

func (s Snapshot) isMember(userID uuid.UUID) bool {
	if userID == s.OwnerID {
		return true
	}
	for _, c := range s.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}

// Decide resolves a (note, requester, operation) triple. passwordVerified
// reports whether the caller verified the note password in this same
// request; it is never carried over between requests.
func Decide(snap Snapshot, requester uuid.UUID, op Operation, passwordVerified bool) Decision {
	switch op {
	case OpDelete, OpManageCollaborators:
		if requester != snap.OwnerID {
			return DenyNotOwner
		}
		return Allow

	case OpRead:
		if !snap.isMember(requester) {
			return DenyNotCollaborator
		}
		if snap.IsPasswordProtected && !passwordVerified {
			return RequirePassword
		}
		return Allow

	case OpEdit, OpManageLabels:
		if !snap.isMember(requester) {
			return DenyNotCollaborator
		}
		return Allow
	}

	return DenyNotCollaborator
}

// VerifyPassword checks a candidate against the note's stored hash. The
// check is idempotent and leaves no unlock state behind; every read of
// protected content re-verifies.
func VerifyPassword(snap Snapshot, candidate string) bool {
	if snap.PasswordHash == "" {
		return false
	}
	return password.Verify(candidate, snap.PasswordHash)
}
