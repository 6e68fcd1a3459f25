package repository

import (
	"context"
	"errors"

	"github.com/rumCAJs/atomicapp/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookup methods return (nil, nil) when no row matches; classification into
// not-found failures happens in the core layer, which knows which entity the
// caller asked for.

// ErrStaleVersion is returned by a guarded update whose row version moved
// between the caller's read and the write.
var ErrStaleVersion = errors.New("stale version")

// ErrInsufficientBalance is returned by a guarded debit whose balance check
// failed inside the transaction.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Friend listing filters.
const (
	FilterAccepted  = "accepted"
	FilterRequested = "requested"
	FilterAll       = "all"
)

type ProfileRepo interface {
	CreateUser(ctx context.Context, email, passwordHash string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateAccount inserts the user row and its profile in one transaction
	// and returns the new profile id. A profile insert failure leaves no
	// orphaned user row.
	CreateAccount(ctx context.Context, email, passwordHash string, p *models.Profile) (int64, error)
	CreateProfile(ctx context.Context, p *models.Profile) (int64, error)
	GetProfileByID(ctx context.Context, id int64) (*models.Profile, error)
	GetProfileByPublicID(ctx context.Context, publicID string) (*models.Profile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	PinsForNick(ctx context.Context, nick string) ([]int, error)
	UpdateProfileInfo(ctx context.Context, id int64, nick string, pin int) error
}

type ProjectRepo interface {
	// CreateProject inserts the project, the creator's admin membership and
	// the project store in a single transaction.
	CreateProject(ctx context.Context, p *models.Project, creatorID int64, storeName string) (int64, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	GetProjectByPublicID(ctx context.Context, publicID string) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, profileID int64) ([]models.UserProject, error)
	GetMembership(ctx context.Context, projectID, profileID int64) (*models.Membership, error)
	// UpdateProject appends the pre-update snapshot to project_history and
	// applies the new fields with version = prev.Version+1 in one
	// transaction. Returns ErrStaleVersion when the stored version no
	// longer matches prev.Version.
	UpdateProject(ctx context.Context, prev *models.Project, name string, description *string, isActive bool, actorID int64) error
	ListProjectHistory(ctx context.Context, projectID int64) ([]models.ProjectHistory, error)
}

type TaskRepo interface {
	CreateTask(ctx context.Context, t *models.Task) (int64, error)
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	ListTasksForProject(ctx context.Context, projectID int64, onlyActive bool) ([]models.Task, error)
	// UpdateTask mirrors ProjectRepo.UpdateProject for tasks.
	UpdateTask(ctx context.Context, prev *models.Task, name string, description *string, reward int64, isActive bool, actorID int64) error
	// CompleteTask inserts the completion row (capturing the task's version
	// and reward) and credits the member's balance in one transaction,
	// returning the new balance.
	CompleteTask(ctx context.Context, t *models.Task, profileID int64) (int64, error)
	ListTaskCompletions(ctx context.Context, taskID, profileID int64) ([]models.TaskCompletion, error)
	ListTaskHistory(ctx context.Context, taskID int64) ([]models.TaskHistory, error)
}

type StoreRepo interface {
	GetStoreByID(ctx context.Context, id int64) (*models.Store, error)
	GetStoreForProject(ctx context.Context, projectID int64) (*models.Store, error)
	CreateStoreItem(ctx context.Context, item *models.StoreItem) (int64, error)
	GetStoreItem(ctx context.Context, itemID int64) (*models.StoreItem, error)
	ListStoreItems(ctx context.Context, storeID int64, onlyActive bool) ([]models.StoreItem, error)
	// PurchaseStoreItem debits the member's balance and records the
	// purchase in one transaction. The debit is guarded by balance >= price
	// inside the statement; ErrInsufficientBalance is returned when the
	// guard fails, and no purchase row is written.
	PurchaseStoreItem(ctx context.Context, item *models.StoreItem, profileID, projectID int64) (int64, error)
}

type FriendRepo interface {
	GetEdge(ctx context.Context, from, to int64) (*models.FriendEdge, error)
	// InsertEdge creates a pending directed edge.
	InsertEdge(ctx context.Context, from, to int64) error
	// AcceptMutualEdges resolves a mutual request in one transaction: the
	// existing to→from edge is marked accepted and the reciprocal from→to
	// edge is inserted already accepted. A failure changes neither edge.
	AcceptMutualEdges(ctx context.Context, from, to int64) error
	// SetEdgeState accepts or rejects an edge, setting one timestamp and
	// clearing the other, and returns the updated edge.
	SetEdgeState(ctx context.Context, from, to int64, accepted bool) (*models.FriendEdge, error)
	ListFriends(ctx context.Context, from int64, filter string) ([]models.Friend, error)
}
