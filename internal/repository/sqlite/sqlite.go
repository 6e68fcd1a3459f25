package sqlite

import (
	"log/slog"
	"time"

	"github.com/rumCAJs/atomicapp/internal/db"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// Repo implements the repository interfaces using the internal DB wrapper.
type Repo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure Repo implements the public interfaces.
var _ repository.ProfileRepo = (*Repo)(nil)
var _ repository.ProjectRepo = (*Repo)(nil)
var _ repository.TaskRepo = (*Repo)(nil)
var _ repository.StoreRepo = (*Repo)(nil)
var _ repository.FriendRepo = (*Repo)(nil)

func New(conn *db.DB, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
