package task

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"

	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/platform/gemini"
	"github.com/rodexhq/rodex-api/internal/store"
)

// Common errors
var (
	ErrNilJob      = errors.New("job cannot be nil")
	ErrNilJobStore = errors.New("job store cannot be nil")
	ErrNilStreamer = errors.New("streamer cannot be nil")
	ErrNilLogger   = errors.New("logger cannot be nil")
)

// PromptStreamer defines the interface for streaming text generation.
type PromptStreamer interface {
	// Stream lazily produces generation events for the given request.
	Stream(ctx context.Context, req gemini.GenerateRequest) iter.Seq2[gemini.StreamEvent, error]
}

// System instructions applied per prompt mode.
const (
	askInstruction = "Answer the user's question about the selected workspace " +
		"and branch. Do not propose code changes."
	codeInstruction = "Produce a concrete implementation plan with code changes " +
		"for the selected workspace and branch."
)

// PromptGenerationTask implements the Task interface for generating text
// from an accepted prompt submission. It drives the streaming client,
// accumulates chunk text, and records the outcome on the job.
type PromptGenerationTask struct {
	job      *domain.Job
	jobs     store.JobStore
	streamer PromptStreamer
	logger   *slog.Logger
}

// NewPromptGenerationTask creates a new prompt generation task.
func NewPromptGenerationTask(
	job *domain.Job,
	jobs store.JobStore,
	streamer PromptStreamer,
	logger *slog.Logger,
) (*PromptGenerationTask, error) {
	if job == nil {
		return nil, ErrNilJob
	}
	if jobs == nil {
		return nil, ErrNilJobStore
	}
	if streamer == nil {
		return nil, ErrNilStreamer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	return &PromptGenerationTask{
		job:      job,
		jobs:     jobs,
		streamer: streamer,
		logger: logger.With(
			"task_type", TaskTypePromptGeneration,
			"job_id", job.ID,
			"workspace_id", job.WorkspaceID,
			"branch_id", job.BranchID,
		),
	}, nil
}

// ID returns the task's unique identifier.
func (t *PromptGenerationTask) ID() string {
	return t.job.ID
}

// Type returns the task type identifier.
func (t *PromptGenerationTask) Type() string {
	return TaskTypePromptGeneration
}

// Execute runs the prompt generation task, handling the complete lifecycle
// from marking the job as processing, streaming the generation, and
// recording the accumulated text or the failure on the job.
func (t *PromptGenerationTask) Execute(ctx context.Context) error {
	if err := t.jobs.UpdateStatus(ctx, t.job.ID, domain.JobStatusProcessing, "", ""); err != nil {
		return fmt.Errorf("failed to mark job as processing: %w", err)
	}

	t.logger.Info("starting prompt generation", "mode", t.job.Mode)

	var accumulator gemini.TextAccumulator
	chunks := 0
	for event, err := range t.streamer.Stream(ctx, t.generateRequest()) {
		if err != nil {
			t.logger.Error("prompt generation failed", "error", err, "chunks", chunks)
			if updateErr := t.jobs.UpdateStatus(ctx, t.job.ID, domain.JobStatusFailed, "", err.Error()); updateErr != nil {
				t.logger.Error("failed to mark job as failed", "error", updateErr)
			}
			return fmt.Errorf("prompt generation failed: %w", err)
		}
		if event.Kind == gemini.EventChunk {
			chunks++
		}
		accumulator.Push(event)
	}

	result := accumulator.Text()
	if err := t.jobs.UpdateStatus(ctx, t.job.ID, domain.JobStatusCompleted, result, ""); err != nil {
		t.logger.Error("failed to mark job as completed", "error", err)
		return fmt.Errorf("failed to mark job as completed: %w", err)
	}

	t.logger.Info("prompt generation completed", "chunks", chunks, "result_len", len(result))
	return nil
}

// generateRequest builds the streaming request for the job's prompt. The
// system instruction depends on the prompt mode.
func (t *PromptGenerationTask) generateRequest() gemini.GenerateRequest {
	instruction := askInstruction
	if t.job.Mode == domain.PromptModeCode {
		instruction = codeInstruction
	}

	return gemini.GenerateRequest{
		Contents:          genai.Text(t.job.Prompt),
		SystemInstruction: instruction,
	}
}
