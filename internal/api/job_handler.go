package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rodexhq/rodex-api/internal/api/shared"
	"github.com/rodexhq/rodex-api/internal/store"
)

// JobHandler handles job status HTTP requests.
type JobHandler struct {
	jobs store.JobStore
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs store.JobStore) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GetJob handles GET /api/jobs/{jobID} requests. Job state changes as the
// background generation progresses, so responses are never cached.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}
