package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrWorkspaceNotFound, ErrJobNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidCursor is returned when a pagination cursor does not refer to
	// any entity in the current dataset. Callers should restart from the
	// first page.
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// Entity-specific "not found" errors

	// ErrWorkspaceNotFound indicates that the requested workspace does not exist.
	ErrWorkspaceNotFound = fmt.Errorf("%w: workspace", ErrNotFound)

	// ErrBranchNotFound indicates that the requested branch does not exist
	// within the workspace.
	ErrBranchNotFound = fmt.Errorf("%w: branch", ErrNotFound)

	// ErrJobNotFound indicates that the requested prompt job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: job", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
