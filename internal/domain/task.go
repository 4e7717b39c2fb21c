package domain

import (
	"errors"
	"time"
)

// TaskCollection is the logical grouping of tasks used for filtering.
type TaskCollection string

// Possible task collection values.
const (
	TaskCollectionActive   TaskCollection = "active"
	TaskCollectionArchived TaskCollection = "archived"
)

// Common validation errors for Task.
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrInvalidCollection    = errors.New("invalid task collection")
	ErrNegativeDiffCounters = errors.New("diff counters cannot be negative")
)

// TaskDiff holds the diff metadata rendered on task cards.
type TaskDiff struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Task is displayed within the landing screen. MergedAt is nil until the
// task's change has been merged.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Repo      string     `json:"repo"`
	Branch    string     `json:"branch"`
	CreatedAt time.Time  `json:"created_at"`
	MergedAt  *time.Time `json:"merged_at,omitempty"`
	Diff      TaskDiff   `json:"diff"`
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if t.Diff.Added < 0 || t.Diff.Removed < 0 {
		return ErrNegativeDiffCounters
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() Task {
	copied := *t
	if t.MergedAt != nil {
		mergedAt := *t.MergedAt
		copied.MergedAt = &mergedAt
	}
	return copied
}

// IsValidTaskCollection checks if the given value is a known collection.
func IsValidTaskCollection(collection TaskCollection) bool {
	switch collection {
	case TaskCollectionActive, TaskCollectionArchived:
		return true
	default:
		return false
	}
}
