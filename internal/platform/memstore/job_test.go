package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/store"
)

func newTestJob(t *testing.T) *domain.Job {
	t.Helper()
	job, err := domain.NewJob(domain.PromptSubmission{
		WorkspaceID: "monorepo",
		BranchID:    "main",
		Mode:        domain.PromptModeAsk,
		Prompt:      "Summarise the repository layout",
	})
	require.NoError(t, err)
	return job
}

func TestJobStoreCreateAndGet(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()
	job := newTestJob(t)

	require.NoError(t, s.Create(ctx, job))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, domain.JobStatusPending, got.Status)
}

func TestJobStoreGetUnknownJob(t *testing.T) {
	s := NewJobStore()

	_, err := s.Get(context.Background(), "job_missing")
	assert.ErrorIs(t, err, store.ErrJobNotFound)
}

func TestJobStoreUpdateStatus(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()
	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusProcessing, "", ""))
	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusCompleted, "generated plan", ""))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, got.Status)
	assert.Equal(t, "generated plan", got.Result)
	assert.True(t, got.UpdatedAt.After(job.CreatedAt) || got.UpdatedAt.Equal(job.CreatedAt))
}

func TestJobStoreUpdateStatusFailure(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()
	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	require.NoError(t, s.UpdateStatus(ctx, job.ID, domain.JobStatusFailed, "", "stream exhausted retries"))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Equal(t, "stream exhausted retries", got.Error)
}

func TestJobStoreUpdateStatusValidation(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()
	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	assert.ErrorIs(t, s.UpdateStatus(ctx, "job_missing", domain.JobStatusCompleted, "", ""), store.ErrJobNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, job.ID, "done", "", ""), domain.ErrInvalidJobStatus)
}

func TestJobStoreGetReturnsCopy(t *testing.T) {
	s := NewJobStore()
	ctx := context.Background()
	job := newTestJob(t)
	require.NoError(t, s.Create(ctx, job))

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	got.Prompt = "mutated"

	fresh, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summarise the repository layout", fresh.Prompt)
}
