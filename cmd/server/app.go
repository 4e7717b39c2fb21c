package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rodexhq/rodex-api/internal/config"
	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/platform/gemini"
	"github.com/rodexhq/rodex-api/internal/platform/memstore"
	"github.com/rodexhq/rodex-api/internal/task"
)

// application holds the shared dependencies of the server.
type application struct {
	config       *config.Config
	logger       *slog.Logger
	landingStore *memstore.LandingStore
	jobStore     *memstore.JobStore
	streamer     *gemini.Streamer
	taskRunner   *task.Runner
}

// newApplication builds the application dependency graph: project
// settings, the Gemini streaming client, the in-memory stores, and the
// background task runner. The runner is started before returning.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	settings, err := config.LoadProjectSettings("")
	if err != nil {
		return nil, fmt.Errorf("failed to load project settings: %w", err)
	}
	appLogger.Info("Project settings loaded",
		"deployment", settings.Deployment.Name,
		"environment", settings.Deployment.Environment,
		"model", settings.Gemini.Model)

	geminiEnv, err := config.LoadGeminiEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to load Gemini environment: %w", err)
	}

	streamCfg, err := geminiEnv.BuildStreamConfig(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream config: %w", err)
	}

	streamer, err := gemini.NewStreamer(streamCfg, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini streamer: %w", err)
	}

	landingStore, err := memstore.NewLandingStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create landing store: %w", err)
	}
	jobStore := memstore.NewJobStore()

	taskRunner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, appLogger)
	taskRunner.Start()

	return &application{
		config:       cfg,
		logger:       appLogger,
		landingStore: landingStore,
		jobStore:     jobStore,
		streamer:     streamer,
		taskRunner:   taskRunner,
	}, nil
}

// cleanup stops background components in dependency order.
func (app *application) cleanup() {
	app.taskRunner.Stop()
}

// taskEnqueuer turns accepted jobs into generation tasks and submits
// them to the runner.
type taskEnqueuer struct {
	jobs     *memstore.JobStore
	streamer task.PromptStreamer
	runner   *task.Runner
	logger   *slog.Logger
}

func (e *taskEnqueuer) Enqueue(ctx context.Context, job *domain.Job) error {
	generationTask, err := task.NewPromptGenerationTask(job, e.jobs, e.streamer, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create generation task: %w", err)
	}

	if err := e.runner.Submit(ctx, generationTask); err != nil {
		return fmt.Errorf("failed to submit generation task: %w", err)
	}
	return nil
}
