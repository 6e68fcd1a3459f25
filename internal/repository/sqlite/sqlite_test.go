package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	dbfs "github.com/rumCAJs/atomicapp/db"
	dbpkg "github.com/rumCAJs/atomicapp/internal/db"
	sqlite "github.com/rumCAJs/atomicapp/internal/repository/sqlite"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

func setupRepo(t *testing.T) *sqlite.Repo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return sqlite.New(d, nil)
}

func createProfile(t *testing.T, repo *sqlite.Repo, name, nick string) *models.Profile {
	t.Helper()
	ctx := context.Background()
	userID, err := repo.CreateUser(ctx, name+"@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	id, err := repo.CreateProfile(ctx, &models.Profile{
		UserID:   userID,
		PublicID: uuid.NewString(),
		Name:     name,
		Nick:     nick,
		Pin:      1234,
	})
	if err != nil {
		t.Fatalf("CreateProfile error: %v", err)
	}
	p, err := repo.GetProfileByID(ctx, id)
	if err != nil || p == nil {
		t.Fatalf("GetProfileByID: %v %#v", err, p)
	}
	return p
}

func createProject(t *testing.T, repo *sqlite.Repo, creator *models.Profile, name string) *models.Project {
	t.Helper()
	ctx := context.Background()
	id, err := repo.CreateProject(ctx, &models.Project{PublicID: uuid.NewString(), Name: name}, creator.ID, name+" store")
	if err != nil {
		t.Fatalf("CreateProject error: %v", err)
	}
	p, err := repo.GetProjectByID(ctx, id)
	if err != nil || p == nil {
		t.Fatalf("GetProjectByID: %v %#v", err, p)
	}
	return p
}

func TestProfileLookups(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nil profile should error
	if _, err := repo.CreateProfile(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil profile")
	}

	// Non-existing public id should return nil, nil
	got, err := repo.GetProfileByPublicID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("expected no error for missing profile, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing profile, got %#v", got)
	}

	p := createProfile(t, repo, "Alice", "ali")

	byPublic, err := repo.GetProfileByPublicID(ctx, p.PublicID)
	if err != nil || byPublic == nil || byPublic.ID != p.ID {
		t.Fatalf("GetProfileByPublicID wrong result: %v %#v", err, byPublic)
	}

	byUser, err := repo.GetProfileByUserID(ctx, p.UserID)
	if err != nil || byUser == nil || byUser.ID != p.ID {
		t.Fatalf("GetProfileByUserID wrong result: %v %#v", err, byUser)
	}

	pins, err := repo.PinsForNick(ctx, "ali")
	if err != nil || len(pins) != 1 || pins[0] != 1234 {
		t.Fatalf("PinsForNick wrong result: %v %v", err, pins)
	}

	if err := repo.UpdateProfileInfo(ctx, p.ID, "ally", 4321); err != nil {
		t.Fatalf("UpdateProfileInfo error: %v", err)
	}
	updated, err := repo.GetProfileByID(ctx, p.ID)
	if err != nil || updated.Nick != "ally" || updated.Pin != 4321 {
		t.Fatalf("profile info not updated: %v %#v", err, updated)
	}
}

func TestCreateProject_AtomicUnit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	proj := createProject(t, repo, alice, "home")

	if proj.Version != 1 {
		t.Fatalf("new project must start at version 1, got %d", proj.Version)
	}
	if !proj.IsActive {
		t.Fatalf("new project must be active")
	}

	// creator membership with admin role and zero balance
	m, err := repo.GetMembership(ctx, proj.ID, alice.ID)
	if err != nil || m == nil {
		t.Fatalf("GetMembership: %v %#v", err, m)
	}
	if m.Role != models.RoleAdmin || m.Balance != 0 {
		t.Fatalf("creator membership wrong: %#v", m)
	}

	// the project store exists and carries the derived name
	s, err := repo.GetStoreForProject(ctx, proj.ID)
	if err != nil || s == nil {
		t.Fatalf("GetStoreForProject: %v %#v", err, s)
	}
	if s.Name != "home store" {
		t.Fatalf("store name wrong: %q", s.Name)
	}
}

func TestUpdateProject_VersionedHistory(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	proj := createProject(t, repo, alice, "home")

	desc := "chores"
	if err := repo.UpdateProject(ctx, proj, "home v2", &desc, true, alice.ID); err != nil {
		t.Fatalf("UpdateProject error: %v", err)
	}

	updated, err := repo.GetProjectByID(ctx, proj.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if updated.Version != proj.Version+1 {
		t.Fatalf("version must advance by one: %d -> %d", proj.Version, updated.Version)
	}
	if updated.Name != "home v2" || updated.Description == nil || *updated.Description != desc {
		t.Fatalf("fields not applied: %#v", updated)
	}

	hist, err := repo.ListProjectHistory(ctx, proj.ID)
	if err != nil {
		t.Fatalf("ListProjectHistory: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected one history row, got %d", len(hist))
	}
	if hist[0].Version != proj.Version || hist[0].Name != "home" {
		t.Fatalf("history row must snapshot the pre-update state: %#v", hist[0])
	}

	// stale update: pass the old row again
	if err := repo.UpdateProject(ctx, proj, "home v3", nil, true, alice.ID); !errors.Is(err, repository.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
	after, _ := repo.GetProjectByID(ctx, proj.ID)
	if after.Version != updated.Version || after.Name != "home v2" {
		t.Fatalf("stale update must not mutate state: %#v", after)
	}
	hist, _ = repo.ListProjectHistory(ctx, proj.ID)
	if len(hist) != 1 {
		t.Fatalf("stale update must not write history, got %d rows", len(hist))
	}
}

func TestUpdateTask_VersionedHistory(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	proj := createProject(t, repo, alice, "home")

	taskID, err := repo.CreateTask(ctx, &models.Task{ProjectID: proj.ID, Name: "dishes", Reward: 5, CreatedBy: alice.ID})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	task, err := repo.GetTaskByID(ctx, taskID)
	if err != nil || task == nil {
		t.Fatalf("GetTaskByID: %v %#v", err, task)
	}
	if task.Version != 1 || task.Reward != 5 || !task.IsActive {
		t.Fatalf("new task wrong: %#v", task)
	}

	if err := repo.UpdateTask(ctx, task, "dishes", nil, 7, false, alice.ID); err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	updated, _ := repo.GetTaskByID(ctx, taskID)
	if updated.Version != 2 || updated.Reward != 7 || updated.IsActive {
		t.Fatalf("task update not applied: %#v", updated)
	}

	hist, err := repo.ListTaskHistory(ctx, taskID)
	if err != nil || len(hist) != 1 {
		t.Fatalf("ListTaskHistory: %v %d", err, len(hist))
	}
	if hist[0].Version != 1 || hist[0].Reward != 5 {
		t.Fatalf("task history must snapshot pre-update state: %#v", hist[0])
	}

	if err := repo.UpdateTask(ctx, task, "dishes", nil, 9, true, alice.ID); !errors.Is(err, repository.ErrStaleVersion) {
		t.Fatalf("expected ErrStaleVersion, got %v", err)
	}
}

func TestCompleteTask_CreditsBalance(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	proj := createProject(t, repo, alice, "home")
	taskID, _ := repo.CreateTask(ctx, &models.Task{ProjectID: proj.ID, Name: "dishes", Reward: 10, CreatedBy: alice.ID})
	task, _ := repo.GetTaskByID(ctx, taskID)

	balance, err := repo.CompleteTask(ctx, task, alice.ID)
	if err != nil {
		t.Fatalf("CompleteTask error: %v", err)
	}
	if balance != 10 {
		t.Fatalf("expected balance 10, got %d", balance)
	}

	// completions are append-only, a repeat credits again
	balance, err = repo.CompleteTask(ctx, task, alice.ID)
	if err != nil || balance != 20 {
		t.Fatalf("repeat completion: %v balance=%d", err, balance)
	}

	comps, err := repo.ListTaskCompletions(ctx, taskID, alice.ID)
	if err != nil || len(comps) != 2 {
		t.Fatalf("ListTaskCompletions: %v %d", err, len(comps))
	}
	if comps[0].TaskVersion != task.Version || comps[0].Reward != task.Reward {
		t.Fatalf("completion must capture version and reward: %#v", comps[0])
	}
}

func TestPurchaseStoreItem_GuardedDebit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	proj := createProject(t, repo, alice, "home")
	store, _ := repo.GetStoreForProject(ctx, proj.ID)

	itemID, err := repo.CreateStoreItem(ctx, &models.StoreItem{StoreID: store.ID, Name: "candy", Price: 10})
	if err != nil {
		t.Fatalf("CreateStoreItem error: %v", err)
	}
	item, _ := repo.GetStoreItem(ctx, itemID)

	// empty balance: debit must fail and write no purchase row
	if _, err := repo.PurchaseStoreItem(ctx, item, alice.ID, proj.ID); !errors.Is(err, repository.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	taskID, _ := repo.CreateTask(ctx, &models.Task{ProjectID: proj.ID, Name: "dishes", Reward: 11, CreatedBy: alice.ID})
	task, _ := repo.GetTaskByID(ctx, taskID)
	if _, err := repo.CompleteTask(ctx, task, alice.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	balance, err := repo.PurchaseStoreItem(ctx, item, alice.ID, proj.ID)
	if err != nil {
		t.Fatalf("PurchaseStoreItem error: %v", err)
	}
	if balance != 1 {
		t.Fatalf("expected balance 1 after purchase, got %d", balance)
	}

	m, _ := repo.GetMembership(ctx, proj.ID, alice.ID)
	if m.Balance != 1 {
		t.Fatalf("membership balance wrong: %d", m.Balance)
	}
}

func TestFriendEdges(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	bob := createProfile(t, repo, "Bob", "bob")

	if err := repo.InsertEdge(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("InsertEdge error: %v", err)
	}

	edge, err := repo.GetEdge(ctx, alice.ID, bob.ID)
	if err != nil || edge == nil {
		t.Fatalf("GetEdge: %v %#v", err, edge)
	}
	if edge.AcceptedAt != nil || edge.RejectedAt != nil {
		t.Fatalf("fresh edge must be pending: %#v", edge)
	}

	// missing edge returns nil, nil
	missing, err := repo.GetEdge(ctx, bob.ID, alice.ID)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing edge: %v %#v", err, missing)
	}

	accepted, err := repo.SetEdgeState(ctx, alice.ID, bob.ID, true)
	if err != nil || accepted.AcceptedAt == nil || accepted.RejectedAt != nil {
		t.Fatalf("accept: %v %#v", err, accepted)
	}

	rejected, err := repo.SetEdgeState(ctx, alice.ID, bob.ID, false)
	if err != nil || rejected.RejectedAt == nil || rejected.AcceptedAt != nil {
		t.Fatalf("reject must clear accepted: %v %#v", err, rejected)
	}

	all, err := repo.ListFriends(ctx, alice.ID, repository.FilterAll)
	if err != nil || len(all) != 1 || all[0].PublicID != bob.PublicID {
		t.Fatalf("ListFriends all: %v %#v", err, all)
	}
	acceptedList, _ := repo.ListFriends(ctx, alice.ID, repository.FilterAccepted)
	if len(acceptedList) != 0 {
		t.Fatalf("rejected edge must not list as accepted")
	}
	requestedList, _ := repo.ListFriends(ctx, alice.ID, repository.FilterRequested)
	if len(requestedList) != 1 {
		t.Fatalf("rejected edge lists as not accepted, got %d", len(requestedList))
	}
}

func TestAcceptMutualEdges_BothDirections(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	bob := createProfile(t, repo, "Bob", "bob")

	if err := repo.InsertEdge(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("InsertEdge error: %v", err)
	}
	if err := repo.AcceptMutualEdges(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("AcceptMutualEdges error: %v", err)
	}

	forward, err := repo.GetEdge(ctx, alice.ID, bob.ID)
	if err != nil || forward == nil || forward.AcceptedAt == nil {
		t.Fatalf("counter edge not accepted: %v %#v", err, forward)
	}
	reverse, err := repo.GetEdge(ctx, bob.ID, alice.ID)
	if err != nil || reverse == nil || reverse.AcceptedAt == nil {
		t.Fatalf("reciprocal edge not accepted: %v %#v", err, reverse)
	}
}

func TestAcceptMutualEdges_FailureChangesNeitherEdge(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	alice := createProfile(t, repo, "Alice", "ali")
	bob := createProfile(t, repo, "Bob", "bob")

	// Both directed edges already exist, so the reciprocal insert violates
	// the (from, to) uniqueness and the whole unit must roll back, leaving
	// the counter edge pending.
	if err := repo.InsertEdge(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("InsertEdge error: %v", err)
	}
	if err := repo.InsertEdge(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("InsertEdge error: %v", err)
	}

	if err := repo.AcceptMutualEdges(ctx, bob.ID, alice.ID); err == nil {
		t.Fatalf("expected AcceptMutualEdges to fail on duplicate reciprocal edge")
	}

	counter, err := repo.GetEdge(ctx, alice.ID, bob.ID)
	if err != nil || counter == nil {
		t.Fatalf("GetEdge: %v %#v", err, counter)
	}
	if counter.AcceptedAt != nil {
		t.Fatalf("counter edge mutated despite rollback: %#v", counter)
	}
}
