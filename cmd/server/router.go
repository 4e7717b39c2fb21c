package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rodexhq/rodex-api/internal/api"
	apiMiddleware "github.com/rodexhq/rodex-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	workspaceHandler := api.NewWorkspaceHandler(app.landingStore)
	taskHandler := api.NewTaskHandler(app.landingStore)
	jobHandler := api.NewJobHandler(app.jobStore)
	promptHandler := api.NewPromptHandler(app.landingStore, app.jobStore, &taskEnqueuer{
		jobs:     app.jobStore,
		streamer: app.streamer,
		runner:   app.taskRunner,
		logger:   app.logger,
	}, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/workspaces", workspaceHandler.GetWorkspaces)
		r.Get("/tasks", taskHandler.GetTasks)
		r.Post("/prompts", promptHandler.SubmitPrompt)
		r.Get("/jobs/{jobID}", jobHandler.GetJob)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
