package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds (UTC). Pointer fields map to nullable
// columns.

// Roles a project membership can carry.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// User is the account row owned by the auth boundary.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
}

// Profile is the player identity attached to a user account. PublicID is the
// externally addressable identifier; Nick and Pin together identify a profile
// to other players.
type Profile struct {
	ID       int64  `json:"id" db:"id"`
	UserID   int64  `json:"-" db:"user_id"`
	PublicID string `json:"public_id" db:"public_id"`
	Name     string `json:"name" db:"name"`
	Nick     string `json:"nick" db:"nick"`
	Pin      int    `json:"pin" db:"pin"`
	Created  int64  `json:"created" db:"created"`
}

type Project struct {
	ID          int64   `json:"id" db:"id"`
	PublicID    string  `json:"public_id" db:"public_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	ChangedAt   int64   `json:"changed_at" db:"changed_at"`
	ChangedBy   int64   `json:"changed_by" db:"changed_by"`
	Version     int64   `json:"version" db:"version"`
}

// ProjectHistory is the pre-update snapshot of a project row, unique on
// (project id, version).
type ProjectHistory struct {
	ProjectID   int64   `json:"project_id" db:"project_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	CreatedBy   int64   `json:"created_by" db:"created_by"`
	Version     int64   `json:"version" db:"version"`
}

// Membership links a profile to a project and carries the role and the point
// balance. The balance is mutated only by the ledger operations.
type Membership struct {
	UserID    int64  `json:"user_id" db:"user_id"`
	ProjectID int64  `json:"project_id" db:"project_id"`
	Role      string `json:"role" db:"role"`
	Balance   int64  `json:"balance" db:"balance"`
}

// UserProject is a membership joined to its project, as returned by the
// project listing.
type UserProject struct {
	Project Project `json:"project"`
	Role    string  `json:"role"`
	Balance int64   `json:"balance"`
}

type Task struct {
	ID          int64   `json:"id" db:"id"`
	ProjectID   int64   `json:"project_id" db:"project_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	Reward      int64   `json:"reward" db:"reward"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	CreatedBy   int64   `json:"created_by" db:"created_by"`
	ChangedAt   int64   `json:"changed_at" db:"changed_at"`
	Version     int64   `json:"version" db:"version"`
}

// TaskHistory is the pre-update snapshot of a task row, unique on
// (task id, version).
type TaskHistory struct {
	TaskID      int64   `json:"task_id" db:"task_id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Reward      int64   `json:"reward" db:"reward"`
	IsActive    bool    `json:"is_active" db:"is_active"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
	CreatedBy   int64   `json:"created_by" db:"created_by"`
	Version     int64   `json:"version" db:"version"`
}

// TaskCompletion is one completion event. The task version and reward are
// captured at completion time so later task edits do not rewrite history.
type TaskCompletion struct {
	ID          int64 `json:"id" db:"id"`
	TaskID      int64 `json:"task_id" db:"task_id"`
	TaskVersion int64 `json:"task_version" db:"task_version"`
	UserID      int64 `json:"user_id" db:"user_id"`
	Reward      int64 `json:"reward" db:"reward"`
	Date        int64 `json:"date" db:"date"`
}

type Store struct {
	ID        int64  `json:"id" db:"id"`
	ProjectID int64  `json:"project_id" db:"project_id"`
	Name      string `json:"name" db:"name"`
}

type StoreItem struct {
	ID       int64  `json:"id" db:"id"`
	StoreID  int64  `json:"store_id" db:"store_id"`
	Name     string `json:"name" db:"name"`
	Price    int64  `json:"price" db:"price"`
	IsActive bool   `json:"is_active" db:"is_active"`
}

// StorePurchase records a spend. Price is copied from the item at purchase
// time so later price changes do not alter history.
type StorePurchase struct {
	ID     int64 `json:"id" db:"id"`
	ItemID int64 `json:"item_id" db:"item_id"`
	UserID int64 `json:"user_id" db:"user_id"`
	Price  int64 `json:"price" db:"price"`
	Date   int64 `json:"date" db:"date"`
}

// FriendEdge is one direction of a friendship. A friendship is two edges
// whose accepted timestamps are set independently.
type FriendEdge struct {
	ProfileFrom int64  `json:"profile_from" db:"profile_from"`
	ProfileTo   int64  `json:"profile_to" db:"profile_to"`
	AcceptedAt  *int64 `json:"accepted_at,omitempty" db:"accepted_at"`
	RejectedAt  *int64 `json:"rejected_at,omitempty" db:"rejected_at"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

// Friend is an outgoing edge joined to the target profile, as returned by
// the friend listing.
type Friend struct {
	Nick       string `json:"nick"`
	Pin        int    `json:"pin"`
	PublicID   string `json:"public_id"`
	AcceptedAt *int64 `json:"accepted_at,omitempty"`
}
