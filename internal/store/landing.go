package store

import (
	"context"

	"github.com/rodexhq/rodex-api/internal/domain"
)

// DefaultTaskPageSize bounds task listings when the caller does not ask
// for a specific page size.
const DefaultTaskPageSize = 25

// WorkspaceSnapshot is the result of listing workspaces. ETag identifies the
// exact dataset revision the workspaces were read from, so handlers can
// serve conditional requests without re-serializing the payload.
type WorkspaceSnapshot struct {
	Workspaces []domain.Workspace
	ETag       string
}

// TaskQuery describes a cursor-paginated task listing scoped to a single
// workspace, branch and collection. Cursor is an offset into the filtered
// listing as produced by a previous page's NextCursor; empty means the
// first page. PageSize defaults to DefaultTaskPageSize when zero.
type TaskQuery struct {
	Workspace  string
	Branch     string
	Collection domain.TaskCollection
	Cursor     string
	PageSize   int
}

// TaskPage is one page of a task listing. NextCursor is empty when no
// further pages exist.
type TaskPage struct {
	Tasks      []domain.Task
	NextCursor string
}

// LandingStore defines the interface for reading the landing screen dataset.
type LandingStore interface {
	// Workspaces returns all workspaces together with the dataset ETag.
	// The returned slice is a copy; callers may mutate it freely.
	Workspaces(ctx context.Context) (WorkspaceSnapshot, error)

	// Tasks returns one page of tasks for the given selection.
	// Returns ErrWorkspaceNotFound if the query names an unknown workspace.
	// Returns ErrBranchNotFound if the branch does not belong to the workspace.
	// Returns ErrInvalidCursor if the cursor is not a valid offset.
	Tasks(ctx context.Context, query TaskQuery) (TaskPage, error)

	// ValidateTarget checks that the workspace exists and contains the branch.
	// Returns ErrWorkspaceNotFound or ErrBranchNotFound accordingly.
	ValidateTarget(ctx context.Context, workspaceID, branchID string) error
}
