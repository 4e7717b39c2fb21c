package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission() PromptSubmission {
	return PromptSubmission{
		WorkspaceID: "monorepo",
		BranchID:    "main",
		Mode:        PromptModeAsk,
		Prompt:      "  explain the reconnect flow  ",
	}
}

func TestPromptSubmissionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PromptSubmission)
		wantErr error
	}{
		{"valid ask", func(s *PromptSubmission) {}, nil},
		{"valid code", func(s *PromptSubmission) { s.Mode = PromptModeCode }, nil},
		{"missing workspace", func(s *PromptSubmission) { s.WorkspaceID = "" }, ErrEmptyWorkspaceID},
		{"missing branch", func(s *PromptSubmission) { s.BranchID = "" }, ErrEmptyBranchID},
		{"bad mode", func(s *PromptSubmission) { s.Mode = "review" }, ErrInvalidPromptMode},
		{"blank prompt", func(s *PromptSubmission) { s.Prompt = "   " }, ErrPromptRequired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := testSubmission()
			tc.mutate(&sub)
			err := sub.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestNormalizedPromptTrimsWhitespace(t *testing.T) {
	sub := testSubmission()
	assert.Equal(t, "explain the reconnect flow", sub.NormalizedPrompt())
}

func TestNewJobFromSubmission(t *testing.T) {
	job, err := NewJob(testSubmission())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(job.ID, "job_"))
	assert.Equal(t, "monorepo", job.WorkspaceID)
	assert.Equal(t, "main", job.BranchID)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, "explain the reconnect flow", job.Prompt)
	assert.NoError(t, job.Validate())
}

func TestNewJobRejectsInvalidSubmission(t *testing.T) {
	sub := testSubmission()
	sub.Prompt = ""

	_, err := NewJob(sub)
	assert.ErrorIs(t, err, ErrPromptRequired)
}

func TestJobValidateRejectsUnknownStatus(t *testing.T) {
	job, err := NewJob(testSubmission())
	require.NoError(t, err)

	job.Status = "finished"
	assert.ErrorIs(t, job.Validate(), ErrInvalidJobStatus)
}
