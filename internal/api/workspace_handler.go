package api

import (
	"net/http"
	"time"

	"github.com/rodexhq/rodex-api/internal/api/shared"
	"github.com/rodexhq/rodex-api/internal/store"
)

// workspacesCacheControl allows clients to reuse the workspace payload for
// five minutes before revalidating with the ETag.
const workspacesCacheControl = "public, max-age=300, must-revalidate"

// WorkspaceHandler handles workspace-related HTTP requests.
type WorkspaceHandler struct {
	landing store.LandingStore
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(landing store.LandingStore) *WorkspaceHandler {
	return &WorkspaceHandler{landing: landing}
}

// GetWorkspaces handles GET /api/workspaces requests. Responses carry an
// ETag derived from the dataset; a matching If-None-Match header short
// circuits with 304 Not Modified.
func (h *WorkspaceHandler) GetWorkspaces(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.landing.Workspaces(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.Header().Set("ETag", snapshot.ETag)
	w.Header().Set("Cache-Control", workspacesCacheControl)

	if match := r.Header.Get("If-None-Match"); match != "" && match == snapshot.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	response := WorkspacesResponse{
		Workspaces:  snapshot.Workspaces,
		GeneratedAt: time.Now().UTC(),
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
