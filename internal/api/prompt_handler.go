package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rodexhq/rodex-api/internal/api/shared"
	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/store"
)

// JobEnqueuer schedules an accepted job for background processing.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *domain.Job) error
}

// PromptHandler handles prompt submission HTTP requests.
type PromptHandler struct {
	landing  store.LandingStore
	jobs     store.JobStore
	enqueuer JobEnqueuer
	logger   *slog.Logger
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(
	landing store.LandingStore,
	jobs store.JobStore,
	enqueuer JobEnqueuer,
	logger *slog.Logger,
) *PromptHandler {
	return &PromptHandler{
		landing:  landing,
		jobs:     jobs,
		enqueuer: enqueuer,
		logger:   logger.With("handler", "prompts"),
	}
}

// SubmitPrompt handles POST /api/prompts requests. A valid submission is
// recorded as a pending job, queued for generation, and acknowledged with
// 202 Accepted.
func (h *PromptHandler) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	var submission domain.PromptSubmission
	if err := shared.DecodeJSON(r, &submission); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&submission); err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	if err := h.landing.ValidateTarget(r.Context(), submission.WorkspaceID, submission.BranchID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	job, err := domain.NewJob(submission)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	if err := h.jobs.Create(r.Context(), job); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to record prompt", err)
		return
	}

	if err := h.enqueuer.Enqueue(r.Context(), job); err != nil {
		// The job stays recorded as pending; surface the submission failure.
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Generation queue is full, try again later", err)
		return
	}

	h.logger.Info("prompt accepted",
		"job_id", job.ID,
		"workspace_id", job.WorkspaceID,
		"branch_id", job.BranchID,
		"mode", job.Mode)

	w.Header().Set("Cache-Control", "no-store")
	shared.RespondWithJSON(w, r, http.StatusAccepted, domain.PromptResponse{
		JobID:      job.ID,
		AcceptedAt: job.CreatedAt,
	})
}
