package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a prompt job.
type JobStatus string

// Possible job status values.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Common validation errors for Job.
var (
	ErrEmptyJobID       = errors.New("job ID cannot be empty")
	ErrInvalidJobStatus = errors.New("invalid job status")
)

// Job tracks one accepted prompt submission through generation. Result
// holds the accumulated generated text once the job completes; Error holds
// the failure message when it does not.
type Job struct {
	ID          string     `json:"id"`
	WorkspaceID string     `json:"workspace_id"`
	BranchID    string     `json:"branch_id"`
	Mode        PromptMode `json:"mode"`
	Prompt      string     `json:"prompt"`
	Status      JobStatus  `json:"status"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewJob creates a pending Job from a validated prompt submission.
func NewJob(submission PromptSubmission) (*Job, error) {
	if err := submission.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Job{
		ID:          fmt.Sprintf("job_%s", uuid.New().String()),
		WorkspaceID: submission.WorkspaceID,
		BranchID:    submission.BranchID,
		Mode:        submission.Mode,
		Prompt:      submission.NormalizedPrompt(),
		Status:      JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Validate checks if the Job has valid data.
func (j *Job) Validate() error {
	if j.ID == "" {
		return ErrEmptyJobID
	}
	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}
	return nil
}

func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
