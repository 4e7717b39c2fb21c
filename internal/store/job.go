package store

import (
	"context"

	"github.com/rodexhq/rodex-api/internal/domain"
)

// JobStore defines the interface for prompt job persistence.
type JobStore interface {
	// Create saves a new job to the store.
	// Returns validation errors from the domain Job if data is invalid.
	Create(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by its ID.
	// Returns ErrJobNotFound if the job does not exist.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// UpdateStatus transitions a job to the given status. Result carries the
	// generated text for completed jobs; errMsg carries the failure reason
	// for failed jobs.
	// Returns ErrJobNotFound if the job does not exist.
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus, result, errMsg string) error
}
