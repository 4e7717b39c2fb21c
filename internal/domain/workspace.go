package domain

import "errors"

// Common validation errors for Workspace.
var (
	ErrEmptyWorkspaceID   = errors.New("workspace ID cannot be empty")
	ErrEmptyWorkspaceName = errors.New("workspace name cannot be empty")
	ErrEmptyBranchID      = errors.New("branch ID cannot be empty")
	ErrNoBranches         = errors.New("workspace must have at least one branch")
)

// Branch represents a workspace branch that can be targeted by prompts.
type Branch struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	IsDefault bool   `json:"is_default"`
}

// Workspace is surfaced on the landing page selector. Branches are ordered;
// the default branch, when marked, is the preselected target.
type Workspace struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Branches []Branch `json:"branches"`
}

// Validate checks if the Workspace has valid data.
func (w *Workspace) Validate() error {
	if w.ID == "" {
		return ErrEmptyWorkspaceID
	}
	if w.Name == "" {
		return ErrEmptyWorkspaceName
	}
	if len(w.Branches) == 0 {
		return ErrNoBranches
	}
	for _, branch := range w.Branches {
		if branch.ID == "" {
			return ErrEmptyBranchID
		}
	}
	return nil
}

// HasBranch reports whether the workspace contains a branch with the given
// identifier.
func (w *Workspace) HasBranch(branchID string) bool {
	for _, branch := range w.Branches {
		if branch.ID == branchID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the workspace so callers cannot mutate
// store-owned data.
func (w *Workspace) Clone() Workspace {
	copied := *w
	copied.Branches = make([]Branch, len(w.Branches))
	copy(copied.Branches, w.Branches)
	return copied
}
