package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodexhq/rodex-api/internal/api"
)

func getTasks(t *testing.T, handler *api.TaskHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks?"+query, nil)
	rec := httptest.NewRecorder()
	handler.GetTasks(rec, req)
	return rec
}

func TestGetTasksReturnsActiveCollection(t *testing.T) {
	handler := api.NewTaskHandler(newLandingStore(t))

	rec := getTasks(t, handler, "workspace=monorepo&branch=main&status=active")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var payload api.TasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Tasks, 2)
	assert.Equal(t, "task_123", payload.Tasks[0].ID)
	assert.Empty(t, payload.NextCursor)
}

func TestGetTasksArchivedCollection(t *testing.T) {
	handler := api.NewTaskHandler(newLandingStore(t))

	rec := getTasks(t, handler, "workspace=monorepo&branch=main&status=archived")

	require.Equal(t, http.StatusOK, rec.Code)

	var payload api.TasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Tasks, 1)
	assert.Equal(t, "task_120", payload.Tasks[0].ID)
	require.NotNil(t, payload.Tasks[0].MergedAt)
}

func TestGetTasksPaginates(t *testing.T) {
	handler := api.NewTaskHandler(newLandingStore(t))

	rec := getTasks(t, handler, "workspace=monorepo&branch=main&status=active&page_size=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var first api.TasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.Len(t, first.Tasks, 1)
	require.Equal(t, "1", first.NextCursor)

	rec = getTasks(t, handler, "workspace=monorepo&branch=main&status=active&page_size=1&cursor="+first.NextCursor)
	require.Equal(t, http.StatusOK, rec.Code)

	var second api.TasksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Len(t, second.Tasks, 1)
	assert.Equal(t, "task_124", second.Tasks[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestGetTasksValidationAndLookupErrors(t *testing.T) {
	handler := api.NewTaskHandler(newLandingStore(t))

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing workspace", "branch=main&status=active", http.StatusBadRequest},
		{"missing branch", "workspace=monorepo&status=active", http.StatusBadRequest},
		{"missing status", "workspace=monorepo&branch=main", http.StatusBadRequest},
		{"invalid collection", "workspace=monorepo&branch=main&status=everything", http.StatusBadRequest},
		{"invalid cursor", "workspace=monorepo&branch=main&status=active&cursor=abc", http.StatusBadRequest},
		{"invalid page size", "workspace=monorepo&branch=main&status=active&page_size=zero", http.StatusBadRequest},
		{"unknown workspace", "workspace=ghost&branch=main&status=active", http.StatusNotFound},
		{"unknown branch", "workspace=monorepo&branch=release&status=active", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := getTasks(t, handler, tc.query)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}
