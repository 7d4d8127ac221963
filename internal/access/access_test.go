package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelyhq/notely/pkg/password"
)

var (
	owner        = uuid.New()
	collaborator = uuid.New()
	stranger     = uuid.New()
)

func snap(protected bool, hash string) Snapshot {
	return Snapshot{
		OwnerID:             owner,
		Collaborators:       []uuid.UUID{collaborator},
		IsPasswordProtected: protected,
		PasswordHash:        hash,
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		snap      Snapshot
		requester uuid.UUID
		op        Operation
		verified  bool
		want      Decision
	}{
		{"owner reads", snap(false, ""), owner, OpRead, false, Allow},
		{"collaborator reads", snap(false, ""), collaborator, OpRead, false, Allow},
		{"stranger reads", snap(false, ""), stranger, OpRead, false, DenyNotCollaborator},

		{"owner edits", snap(false, ""), owner, OpEdit, false, Allow},
		{"collaborator edits", snap(false, ""), collaborator, OpEdit, false, Allow},
		{"stranger edits", snap(false, ""), stranger, OpEdit, false, DenyNotCollaborator},

		{"owner deletes", snap(false, ""), owner, OpDelete, false, Allow},
		{"collaborator deletes", snap(false, ""), collaborator, OpDelete, false, DenyNotOwner},
		{"stranger deletes", snap(false, ""), stranger, OpDelete, false, DenyNotOwner},

		{"owner manages collaborators", snap(false, ""), owner, OpManageCollaborators, false, Allow},
		{"collaborator manages collaborators", snap(false, ""), collaborator, OpManageCollaborators, false, DenyNotOwner},

		{"collaborator manages labels", snap(false, ""), collaborator, OpManageLabels, false, Allow},
		{"stranger manages labels", snap(false, ""), stranger, OpManageLabels, false, DenyNotCollaborator},

		// Password gate applies to Read only, owner included.
		{"owner reads protected", snap(true, "h"), owner, OpRead, false, RequirePassword},
		{"collaborator reads protected", snap(true, "h"), collaborator, OpRead, false, RequirePassword},
		{"stranger reads protected", snap(true, "h"), stranger, OpRead, false, DenyNotCollaborator},
		{"owner reads protected, verified", snap(true, "h"), owner, OpRead, true, Allow},
		{"collaborator reads protected, verified", snap(true, "h"), collaborator, OpRead, true, Allow},
		{"owner edits protected", snap(true, "h"), owner, OpEdit, false, Allow},
		{"owner deletes protected", snap(true, "h"), owner, OpDelete, false, Allow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.snap, tc.requester, tc.op, tc.verified)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecideOwnerAlsoCollaborator(t *testing.T) {
	// The owner appearing in its own collaborator set is permitted and must
	// not weaken owner-only operations.
	s := Snapshot{
		OwnerID:       owner,
		Collaborators: []uuid.UUID{owner, collaborator},
	}

	assert.Equal(t, Allow, Decide(s, owner, OpDelete, false))
	assert.Equal(t, Allow, Decide(s, owner, OpManageCollaborators, false))
	assert.Equal(t, DenyNotOwner, Decide(s, collaborator, OpDelete, false))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := password.Hash("abc")
	require.NoError(t, err)

	s := snap(true, hash)

	assert.True(t, VerifyPassword(s, "abc"))
	assert.False(t, VerifyPassword(s, "wrong"))

	// Verification holds no state: the decision afterwards is unchanged
	// unless the caller passes passwordVerified for this same request.
	require.True(t, VerifyPassword(s, "abc"))
	assert.Equal(t, RequirePassword, Decide(s, collaborator, OpRead, false))
}

func TestVerifyPasswordNoHash(t *testing.T) {
	assert.False(t, VerifyPassword(snap(false, ""), "anything"))
}
