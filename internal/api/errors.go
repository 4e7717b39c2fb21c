package api

import (
	"errors"
	"net/http"

	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrWorkspaceNotFound),
		errors.Is(err, store.ErrBranchNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrInvalidCursor),
		errors.Is(err, domain.ErrInvalidCollection),
		errors.Is(err, domain.ErrPromptRequired),
		errors.Is(err, domain.ErrInvalidPromptMode),
		errors.Is(err, domain.ErrEmptyWorkspaceID),
		errors.Is(err, domain.ErrEmptyBranchID):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrWorkspaceNotFound):
		return "Workspace not found"

	case errors.Is(err, store.ErrBranchNotFound):
		return "Branch not found"

	case errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, store.ErrInvalidCursor):
		return "Invalid pagination cursor"

	case errors.Is(err, domain.ErrInvalidCollection):
		return "Invalid task collection"

	case errors.Is(err, domain.ErrPromptRequired):
		return "Prompt text is required"

	case errors.Is(err, domain.ErrInvalidPromptMode):
		return "Prompt mode must be 'ask' or 'code'"

	case errors.Is(err, domain.ErrEmptyWorkspaceID):
		return "Workspace ID is required"

	case errors.Is(err, domain.ErrEmptyBranchID):
		return "Branch ID is required"

	default:
		return "An unexpected error occurred"
	}
}
