package api

import (
	"net/http"
	"strconv"

	"github.com/rodexhq/rodex-api/internal/api/shared"
	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/store"
)

// TaskHandler handles task listing HTTP requests.
type TaskHandler struct {
	landing store.LandingStore
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(landing store.LandingStore) *TaskHandler {
	return &TaskHandler{landing: landing}
}

// GetTasks handles GET /api/tasks requests. The workspace, branch, and
// status query parameters are required; status selects the task collection
// (active or archived). Listings are cursor paginated and never cached.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	workspace := params.Get("workspace")
	if workspace == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "workspace query parameter is required")
		return
	}
	branch := params.Get("branch")
	if branch == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "branch query parameter is required")
		return
	}
	status := params.Get("status")
	if status == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "status query parameter is required")
		return
	}
	collection := domain.TaskCollection(status)
	if !domain.IsValidTaskCollection(collection) {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(domain.ErrInvalidCollection))
		return
	}

	query := store.TaskQuery{
		Workspace:  workspace,
		Branch:     branch,
		Collection: collection,
		Cursor:     params.Get("cursor"),
	}
	if rawSize := params.Get("page_size"); rawSize != "" {
		size, err := strconv.Atoi(rawSize)
		if err != nil || size <= 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "page_size must be a positive integer")
			return
		}
		query.PageSize = size
	}

	page, err := h.landing.Tasks(r.Context(), query)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	shared.RespondWithJSON(w, r, http.StatusOK, TasksResponse{
		Tasks:      page.Tasks,
		NextCursor: page.NextCursor,
	})
}
