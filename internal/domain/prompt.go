package domain

import (
	"errors"
	"strings"
	"time"
)

// PromptMode selects how a prompt is executed against a branch.
type PromptMode string

// Possible prompt modes.
const (
	PromptModeAsk  PromptMode = "ask"
	PromptModeCode PromptMode = "code"
)

// Common validation errors for PromptSubmission.
var (
	ErrPromptRequired    = errors.New("prompt text cannot be empty")
	ErrInvalidPromptMode = errors.New("invalid prompt mode")
)

// PromptSubmission is the incoming payload accepted by the prompts
// endpoint. Prompt text is trimmed before use.
type PromptSubmission struct {
	WorkspaceID string     `json:"workspace_id" validate:"required"`
	BranchID    string     `json:"branch_id"    validate:"required"`
	Mode        PromptMode `json:"mode"         validate:"required,oneof=ask code"`
	Prompt      string     `json:"prompt"       validate:"required"`
}

// NormalizedPrompt returns the trimmed prompt text.
func (s *PromptSubmission) NormalizedPrompt() string {
	return strings.TrimSpace(s.Prompt)
}

// Validate checks if the submission has valid data.
func (s *PromptSubmission) Validate() error {
	if s.WorkspaceID == "" {
		return ErrEmptyWorkspaceID
	}
	if s.BranchID == "" {
		return ErrEmptyBranchID
	}
	if s.Mode != PromptModeAsk && s.Mode != PromptModeCode {
		return ErrInvalidPromptMode
	}
	if s.NormalizedPrompt() == "" {
		return ErrPromptRequired
	}
	return nil
}

// PromptResponse is returned after a prompt submission is accepted.
type PromptResponse struct {
	JobID      string    `json:"job_id"`
	AcceptedAt time.Time `json:"accepted_at"`
}
