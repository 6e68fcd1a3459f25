package core_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	dbfs "github.com/rumCAJs/atomicapp/db"
	"github.com/rumCAJs/atomicapp/internal/core"
	dbpkg "github.com/rumCAJs/atomicapp/internal/db"
	sqlite "github.com/rumCAJs/atomicapp/internal/repository/sqlite"
	"github.com/rumCAJs/atomicapp/pkg/models"
)

// env wires the service layer against an in-memory database, mirroring the
// composition root in cmd/server.
type env struct {
	conn     *dbpkg.DB
	profiles *core.ProfileService
	projects *core.ProjectService
	tasks    *core.TaskService
	stores   *core.StoreService
	friends  *core.FriendService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	conn, err := dbpkg.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := dbpkg.Migrate(ctx, conn, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := sqlite.New(conn, logger)

	profiles := core.NewProfileService(repo, logger)
	projects := core.NewProjectService(repo, repo, repo, profiles, logger)

	return &env{
		conn:     conn,
		profiles: profiles,
		projects: projects,
		tasks:    core.NewTaskService(repo, projects, logger),
		stores:   core.NewStoreService(repo, projects, logger),
		friends:  core.NewFriendService(repo, profiles, logger),
	}
}

func (e *env) signup(t *testing.T, name, nick string) *models.Profile {
	t.Helper()

	p, err := e.profiles.Signup(context.Background(), name+"@example.com", "hash", name, nick)
	if err != nil {
		t.Fatalf("signup %q: %v", name, err)
	}
	return p
}

func (e *env) createProject(t *testing.T, creator *models.Profile, name string) *models.Project {
	t.Helper()

	p, err := e.projects.Create(context.Background(), name, nil, creator.PublicID)
	if err != nil {
		t.Fatalf("create project %q: %v", name, err)
	}
	return p
}

// addMember seeds a membership directly; the invite flow lives outside the
// service layer.
func (e *env) addMember(t *testing.T, project *models.Project, profile *models.Profile, role string) {
	t.Helper()

	_, err := e.conn.Exec(context.Background(),
		"INSERT INTO project_users (user_id, project_id, role, balance) VALUES (?, ?, ?, 0)",
		profile.ID, project.ID, role)
	if err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

func (e *env) setBalance(t *testing.T, project *models.Project, profile *models.Profile, balance int64) {
	t.Helper()

	_, err := e.conn.Exec(context.Background(),
		"UPDATE project_users SET balance = ? WHERE user_id = ? AND project_id = ?",
		balance, profile.ID, project.ID)
	if err != nil {
		t.Fatalf("set balance: %v", err)
	}
}
