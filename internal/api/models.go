package api

import (
	"time"

	"github.com/rodexhq/rodex-api/internal/domain"
)

// Common response envelopes

// WorkspacesResponse is the envelope returned by the workspaces endpoint.
type WorkspacesResponse struct {
	Workspaces  []domain.Workspace `json:"workspaces"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// TasksResponse is the payload returned by the tasks endpoint.
type TasksResponse struct {
	Tasks      []domain.Task `json:"tasks"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// JobResponse is the payload returned by the job status endpoint.
type JobResponse struct {
	ID        string           `json:"id"`
	Status    domain.JobStatus `json:"status"`
	Result    string           `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// jobToResponse converts a domain.Job to a JobResponse.
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Result:    job.Result,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
}
