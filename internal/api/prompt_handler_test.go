package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodexhq/rodex-api/internal/api"
	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/platform/memstore"
)

type captureEnqueuer struct {
	jobs []*domain.Job
	err  error
}

func (e *captureEnqueuer) Enqueue(ctx context.Context, job *domain.Job) error {
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

func newPromptHandler(t *testing.T, enqueuer api.JobEnqueuer) (*api.PromptHandler, *memstore.JobStore) {
	t.Helper()
	jobs := memstore.NewJobStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewPromptHandler(newLandingStore(t), jobs, enqueuer, logger), jobs
}

func submitPrompt(handler *api.PromptHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.SubmitPrompt(rec, req)
	return rec
}

func TestSubmitPromptAcceptsValidSubmission(t *testing.T) {
	enqueuer := &captureEnqueuer{}
	handler, jobs := newPromptHandler(t, enqueuer)

	rec := submitPrompt(handler, `{
		"workspace_id": "monorepo",
		"branch_id": "main",
		"mode": "ask",
		"prompt": "  How does retry backoff work?  "
	}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var payload domain.PromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, strings.HasPrefix(payload.JobID, "job_"))
	assert.False(t, payload.AcceptedAt.IsZero())

	require.Len(t, enqueuer.jobs, 1)
	assert.Equal(t, payload.JobID, enqueuer.jobs[0].ID)
	// The prompt is trimmed before it reaches the job.
	assert.Equal(t, "How does retry backoff work?", enqueuer.jobs[0].Prompt)

	stored, err := jobs.Get(context.Background(), payload.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, stored.Status)
}

func TestSubmitPromptValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "malformed JSON",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "whitespace prompt",
			body:       `{"workspace_id":"monorepo","branch_id":"main","mode":"ask","prompt":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid mode",
			body:       `{"workspace_id":"monorepo","branch_id":"main","mode":"review","prompt":"hello"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing workspace",
			body:       `{"workspace_id":"","branch_id":"main","mode":"ask","prompt":"hello"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown workspace",
			body:       `{"workspace_id":"ghost","branch_id":"main","mode":"ask","prompt":"hello"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown branch",
			body:       `{"workspace_id":"monorepo","branch_id":"release","mode":"ask","prompt":"hello"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enqueuer := &captureEnqueuer{}
			handler, _ := newPromptHandler(t, enqueuer)

			rec := submitPrompt(handler, tc.body)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Empty(t, enqueuer.jobs, "invalid submissions must not be enqueued")
		})
	}
}

func TestSubmitPromptQueueFull(t *testing.T) {
	enqueuer := &captureEnqueuer{err: errors.New("queue capacity reached")}
	handler, _ := newPromptHandler(t, enqueuer)

	rec := submitPrompt(handler, `{"workspace_id":"monorepo","branch_id":"main","mode":"code","prompt":"hello"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
