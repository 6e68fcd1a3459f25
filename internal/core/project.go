package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// ProjectService manages projects: creation of the project/membership/store
// unit, membership gating for every project-scoped operation, and versioned
// updates with an audit trail.
type ProjectService struct {
	repo     repository.ProjectRepo
	tasks    repository.TaskRepo
	stores   repository.StoreRepo
	profiles *ProfileService
	logger   *slog.Logger
}

func NewProjectService(repo repository.ProjectRepo, tasks repository.TaskRepo, stores repository.StoreRepo, profiles *ProfileService, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectService{repo: repo, tasks: tasks, stores: stores, profiles: profiles, logger: logger}
}

// Create inserts a project at version 1 together with the creator's admin
// membership (balance 0) and the project's store, atomically.
func (s *ProjectService) Create(ctx context.Context, name string, description *string, creatorPublicID string) (*models.Project, error) {
	creator, err := s.profiles.GetByPublicID(ctx, creatorPublicID)
	if err != nil {
		return nil, err
	}

	p := &models.Project{
		PublicID:    uuid.NewString(),
		Name:        name,
		Description: description,
	}
	id, err := s.repo.CreateProject(ctx, p, creator.ID, name+" store")
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("project %d vanished after insert", id)
	}

	s.logger.Info("project created", "project", created.PublicID, "creator", creator.PublicID)

	return created, nil
}

// GetByPublicID resolves a project or fails with a project not-found.
func (s *ProjectService) GetByPublicID(ctx context.Context, publicID string) (*models.Project, error) {
	p, err := s.repo.GetProjectByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("project")
	}

	return p, nil
}

// GetByID resolves a project by its internal id.
func (s *ProjectService) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("project")
	}

	return p, nil
}

// ListForUser returns the active projects the profile belongs to, each with
// the caller's role and balance.
func (s *ProjectService) ListForUser(ctx context.Context, profilePublicID string) ([]models.UserProject, error) {
	profile, err := s.profiles.GetByPublicID(ctx, profilePublicID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListProjectsForUser(ctx, profile.ID)
}

// RequireMembership resolves the acting profile and proves it is a member
// of the project. Operations on project-scoped entities call this before
// touching anything else.
func (s *ProjectService) RequireMembership(ctx context.Context, project *models.Project, profilePublicID string) (*models.Profile, *models.Membership, error) {
	profile, err := s.profiles.GetByPublicID(ctx, profilePublicID)
	if err != nil {
		return nil, nil, err
	}

	m, err := s.repo.GetMembership(ctx, project.ID, profile.ID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, apperr.NotAuthorized("not a member of this project")
	}

	return profile, m, nil
}

// UpdateProjectInput carries a versioned project update.
type UpdateProjectInput struct {
	PublicID        string
	Name            string
	Description     *string
	IsActive        bool
	ExpectedVersion int64
	ActorPublicID   string
}

// Update applies an admin's edit under optimistic concurrency: the update
// lands only if the stored version still matches the version the actor last
// read, and the pre-update state is archived in the project history.
func (s *ProjectService) Update(ctx context.Context, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetByPublicID(ctx, in.PublicID)
	if err != nil {
		return nil, err
	}

	profile, m, err := s.RequireMembership(ctx, project, in.ActorPublicID)
	if err != nil {
		return nil, err
	}
	if m.Role != models.RoleAdmin {
		return nil, apperr.PermissionDenied("admin role required")
	}

	if project.Version != in.ExpectedVersion {
		return nil, apperr.VersionConflict("project")
	}

	err = s.repo.UpdateProject(ctx, project, in.Name, in.Description, in.IsActive, profile.ID)
	if errors.Is(err, repository.ErrStaleVersion) {
		return nil, apperr.VersionConflict("project")
	}
	if err != nil {
		return nil, err
	}

	return s.GetByPublicID(ctx, in.PublicID)
}

// History returns the archived versions of a project, newest first. Any
// member may read it.
func (s *ProjectService) History(ctx context.Context, publicID, profilePublicID string) ([]models.ProjectHistory, error) {
	project, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.RequireMembership(ctx, project, profilePublicID); err != nil {
		return nil, err
	}

	return s.repo.ListProjectHistory(ctx, project.ID)
}

// Overview is the full per-member view of a project.
type Overview struct {
	Project *models.Project    `json:"project"`
	Role    string             `json:"role"`
	Balance int64              `json:"balance"`
	Tasks   []models.Task      `json:"tasks"`
	Store   *models.Store      `json:"store"`
	Items   []models.StoreItem `json:"items"`
}

// Overview loads the project together with the caller's role and balance,
// the task list and the store. Inactive tasks are visible only to admins
// who ask for them; everyone else sees active tasks regardless of the flag.
func (s *ProjectService) Overview(ctx context.Context, publicID string, showInactive bool, profilePublicID string) (*Overview, error) {
	project, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	_, m, err := s.RequireMembership(ctx, project, profilePublicID)
	if err != nil {
		return nil, err
	}

	onlyActive := true
	if m.Role == models.RoleAdmin && showInactive {
		onlyActive = false
	}

	tasks, err := s.tasks.ListTasksForProject(ctx, project.ID, onlyActive)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.GetStoreForProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, apperr.NotFound("store")
	}

	items, err := s.stores.ListStoreItems(ctx, store.ID, onlyActive)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Project: project,
		Role:    m.Role,
		Balance: m.Balance,
		Tasks:   tasks,
		Store:   store,
		Items:   items,
	}, nil
}
