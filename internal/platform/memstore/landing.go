package memstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rodexhq/rodex-api/internal/domain"
	"github.com/rodexhq/rodex-api/internal/store"
)

// TaskKey identifies one task collection within the dataset.
type TaskKey struct {
	Workspace  string
	Branch     string
	Collection domain.TaskCollection
}

// LandingStore is an in-memory implementation of store.LandingStore.
// All reads return copies so callers can never mutate store-owned data.
type LandingStore struct {
	mu         sync.RWMutex
	workspaces []domain.Workspace
	byID       map[string]int
	tasks      map[TaskKey][]domain.Task
	etag       string
}

// Ensure LandingStore satisfies the store interface.
var _ store.LandingStore = (*LandingStore)(nil)

// LandingOption configures a LandingStore at construction time.
type LandingOption func(*LandingStore)

// WithWorkspaces replaces the seeded workspaces with the given set.
func WithWorkspaces(workspaces []domain.Workspace) LandingOption {
	return func(s *LandingStore) {
		s.workspaces = cloneWorkspaces(workspaces)
	}
}

// WithTasks replaces the seeded task collections with the given dataset.
func WithTasks(tasks map[TaskKey][]domain.Task) LandingOption {
	return func(s *LandingStore) {
		s.tasks = cloneTaskMap(tasks)
	}
}

// NewLandingStore creates a landing store seeded with the default dataset,
// then applies any options.
func NewLandingStore(opts ...LandingOption) (*LandingStore, error) {
	s := &LandingStore{
		workspaces: defaultWorkspaces(),
		tasks:      defaultTasks(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.byID = make(map[string]int, len(s.workspaces))
	for i := range s.workspaces {
		ws := &s.workspaces[i]
		if err := ws.Validate(); err != nil {
			return nil, fmt.Errorf("invalid workspace %q: %w", ws.ID, err)
		}
		s.byID[ws.ID] = i
	}

	etag, err := computeETag(s.workspaces)
	if err != nil {
		return nil, fmt.Errorf("compute workspace etag: %w", err)
	}
	s.etag = etag
	return s, nil
}

// Workspaces returns a copy of the known workspaces and the dataset ETag.
func (s *LandingStore) Workspaces(ctx context.Context) (store.WorkspaceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.WorkspaceSnapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.WorkspaceSnapshot{
		Workspaces: cloneWorkspaces(s.workspaces),
		ETag:       s.etag,
	}, nil
}

// Tasks returns one page of tasks for the given selection. The cursor is a
// decimal offset into the filtered listing.
func (s *LandingStore) Tasks(ctx context.Context, query store.TaskQuery) (store.TaskPage, error) {
	if err := ctx.Err(); err != nil {
		return store.TaskPage{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.validateTargetLocked(query.Workspace, query.Branch); err != nil {
		return store.TaskPage{}, err
	}
	if !domain.IsValidTaskCollection(query.Collection) {
		return store.TaskPage{}, domain.ErrInvalidCollection
	}

	start := 0
	if query.Cursor != "" {
		offset, err := strconv.Atoi(query.Cursor)
		if err != nil || offset < 0 {
			return store.TaskPage{}, store.ErrInvalidCursor
		}
		start = offset
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = store.DefaultTaskPageSize
	}

	all := s.tasks[TaskKey{
		Workspace:  query.Workspace,
		Branch:     query.Branch,
		Collection: query.Collection,
	}]

	if start > len(all) {
		start = len(all)
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}

	page := make([]domain.Task, 0, end-start)
	for _, task := range all[start:end] {
		page = append(page, task.Clone())
	}

	nextCursor := ""
	if start+pageSize < len(all) {
		nextCursor = strconv.Itoa(start + pageSize)
	}
	return store.TaskPage{Tasks: page, NextCursor: nextCursor}, nil
}

// ValidateTarget checks that the workspace exists and contains the branch.
func (s *LandingStore) ValidateTarget(ctx context.Context, workspaceID, branchID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validateTargetLocked(workspaceID, branchID)
}

func (s *LandingStore) validateTargetLocked(workspaceID, branchID string) error {
	idx, ok := s.byID[workspaceID]
	if !ok {
		return store.ErrWorkspaceNotFound
	}
	if !s.workspaces[idx].HasBranch(branchID) {
		return store.ErrBranchNotFound
	}
	return nil
}

// computeETag derives a stable content hash from the workspace payload so
// unchanged datasets always produce the same ETag.
func computeETag(workspaces []domain.Workspace) (string, error) {
	payload, err := json.Marshal(workspaces)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}

func cloneWorkspaces(workspaces []domain.Workspace) []domain.Workspace {
	copied := make([]domain.Workspace, 0, len(workspaces))
	for i := range workspaces {
		copied = append(copied, workspaces[i].Clone())
	}
	return copied
}

func cloneTaskMap(tasks map[TaskKey][]domain.Task) map[TaskKey][]domain.Task {
	copied := make(map[TaskKey][]domain.Task, len(tasks))
	for key, collection := range tasks {
		cloned := make([]domain.Task, 0, len(collection))
		for i := range collection {
			cloned = append(cloned, collection[i].Clone())
		}
		copied[key] = cloned
	}
	return copied
}

// Default dataset served when no external source is configured.

func defaultWorkspaces() []domain.Workspace {
	return []domain.Workspace{
		{
			ID:   "monorepo",
			Name: "Monorepo",
			Branches: []domain.Branch{
				{ID: "main", Label: "main", IsDefault: true},
				{ID: "experimental", Label: "experimental"},
			},
		},
	}
}

func defaultTasks() map[TaskKey][]domain.Task {
	created := time.Date(2025, 1, 26, 22, 10, 0, 0, time.UTC)
	merged := time.Date(2025, 1, 26, 23, 45, 0, 0, time.UTC)
	return map[TaskKey][]domain.Task{
		{Workspace: "monorepo", Branch: "main", Collection: domain.TaskCollectionActive}: {
			{
				ID:        "task_123",
				Title:     "Diagnose issues with status updates",
				Status:    "in_review",
				Repo:      "monorepo",
				Branch:    "main",
				CreatedAt: created,
				Diff:      domain.TaskDiff{Added: 76, Removed: 47},
			},
			{
				ID:        "task_124",
				Title:     "Document Gemini streaming mitigation plan",
				Status:    "draft",
				Repo:      "monorepo",
				Branch:    "main",
				CreatedAt: created,
				Diff:      domain.TaskDiff{Added: 12, Removed: 3},
			},
		},
		{Workspace: "monorepo", Branch: "main", Collection: domain.TaskCollectionArchived}: {
			{
				ID:        "task_120",
				Title:     "Stabilise WebSocket reconnect flow",
				Status:    "merged",
				Repo:      "monorepo",
				Branch:    "main",
				CreatedAt: created,
				MergedAt:  &merged,
				Diff:      domain.TaskDiff{Added: 33, Removed: 5},
			},
		},
	}
}
