package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testWorkspace() Workspace {
	return Workspace{
		ID:   "monorepo",
		Name: "Monorepo",
		Branches: []Branch{
			{ID: "main", Label: "main", IsDefault: true},
			{ID: "experimental", Label: "experimental"},
		},
	}
}

func TestWorkspaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Workspace)
		wantErr error
	}{
		{"valid", func(w *Workspace) {}, nil},
		{"empty ID", func(w *Workspace) { w.ID = "" }, ErrEmptyWorkspaceID},
		{"empty name", func(w *Workspace) { w.Name = "" }, ErrEmptyWorkspaceName},
		{"no branches", func(w *Workspace) { w.Branches = nil }, ErrNoBranches},
		{"empty branch ID", func(w *Workspace) { w.Branches[0].ID = "" }, ErrEmptyBranchID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ws := testWorkspace()
			tc.mutate(&ws)
			err := ws.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestWorkspaceHasBranch(t *testing.T) {
	ws := testWorkspace()

	assert.True(t, ws.HasBranch("main"))
	assert.True(t, ws.HasBranch("experimental"))
	assert.False(t, ws.HasBranch("missing"))
}

func TestWorkspaceCloneIsIndependent(t *testing.T) {
	ws := testWorkspace()
	clone := ws.Clone()

	clone.Branches[0].Label = "changed"
	assert.Equal(t, "main", ws.Branches[0].Label)
}
