package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// TaskService manages project tasks: versioned edits with history and the
// credit half of the balance ledger.
type TaskService struct {
	repo     repository.TaskRepo
	projects *ProjectService
	logger   *slog.Logger
}

func NewTaskService(repo repository.TaskRepo, projects *ProjectService, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{repo: repo, projects: projects, logger: logger}
}

// AddTaskInput carries a new task for a project.
type AddTaskInput struct {
	ProjectPublicID string
	Name            string
	Description     *string
	Reward          int64
	ActorPublicID   string
}

// Add creates a task at version 1. Any member may add tasks; a missing or
// non-positive reward defaults to 1.
func (s *TaskService) Add(ctx context.Context, in AddTaskInput) (*models.Task, error) {
	project, err := s.projects.GetByPublicID(ctx, in.ProjectPublicID)
	if err != nil {
		return nil, err
	}

	profile, _, err := s.projects.RequireMembership(ctx, project, in.ActorPublicID)
	if err != nil {
		return nil, err
	}

	reward := in.Reward
	if reward <= 0 {
		reward = 1
	}

	id, err := s.repo.CreateTask(ctx, &models.Task{
		ProjectID:   project.ID,
		Name:        in.Name,
		Description: in.Description,
		Reward:      reward,
		CreatedBy:   profile.ID,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("task %d vanished after insert", id)
	}

	return created, nil
}

// Get resolves a task for a member of its project. Inactive tasks stay
// hidden from non-admin members.
func (s *TaskService) Get(ctx context.Context, taskID int64, profilePublicID string) (*models.Task, error) {
	t, _, m, err := s.resolve(ctx, taskID, profilePublicID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive && m.Role != models.RoleAdmin {
		return nil, apperr.NotFound("task")
	}

	return t, nil
}

// Complete records a completion and credits the member's balance with the
// task's reward, atomically, returning the new balance. Completions are not
// deduplicated: repeatable chores credit every time.
func (s *TaskService) Complete(ctx context.Context, taskID int64, profilePublicID string) (int64, error) {
	t, profile, _, err := s.resolve(ctx, taskID, profilePublicID)
	if err != nil {
		return 0, err
	}

	balance, err := s.repo.CompleteTask(ctx, t, profile.ID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("task completed", "task", t.ID, "profile", profile.PublicID, "balance", balance)

	return balance, nil
}

// Completions returns the caller's own completion records for a task.
func (s *TaskService) Completions(ctx context.Context, taskID int64, profilePublicID string) ([]models.TaskCompletion, error) {
	t, profile, _, err := s.resolve(ctx, taskID, profilePublicID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListTaskCompletions(ctx, t.ID, profile.ID)
}

// History returns the archived versions of a task, newest first.
func (s *TaskService) History(ctx context.Context, taskID int64, profilePublicID string) ([]models.TaskHistory, error) {
	t, _, _, err := s.resolve(ctx, taskID, profilePublicID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListTaskHistory(ctx, t.ID)
}

// UpdateTaskInput carries a versioned task update.
type UpdateTaskInput struct {
	TaskID          int64
	Name            string
	Description     *string
	Reward          int64
	IsActive        bool
	ExpectedVersion int64
	ActorPublicID   string
}

// Update applies an admin's edit under optimistic concurrency, archiving the
// pre-update state in the task history.
func (s *TaskService) Update(ctx context.Context, in UpdateTaskInput) (*models.Task, error) {
	t, profile, m, err := s.resolve(ctx, in.TaskID, in.ActorPublicID)
	if err != nil {
		return nil, err
	}
	if m.Role != models.RoleAdmin {
		return nil, apperr.PermissionDenied("admin role required")
	}

	if t.Version != in.ExpectedVersion {
		return nil, apperr.VersionConflict("task")
	}

	err = s.repo.UpdateTask(ctx, t, in.Name, in.Description, in.Reward, in.IsActive, profile.ID)
	if errors.Is(err, repository.ErrStaleVersion) {
		return nil, apperr.VersionConflict("task")
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetTaskByID(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("task")
	}

	return updated, nil
}

// resolve loads the task and proves the caller's membership in its project.
func (s *TaskService) resolve(ctx context.Context, taskID int64, profilePublicID string) (*models.Task, *models.Profile, *models.Membership, error) {
	t, err := s.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, nil, nil, err
	}
	if t == nil {
		return nil, nil, nil, apperr.NotFound("task")
	}

	project, err := s.projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, nil, err
	}

	profile, m, err := s.projects.RequireMembership(ctx, project, profilePublicID)
	if err != nil {
		return nil, nil, nil, err
	}

	return t, profile, m, nil
}
