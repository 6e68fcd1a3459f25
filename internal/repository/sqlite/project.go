package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

const projectColumns = `id, public_id, name, description, is_active, created_at, changed_at, changed_by, version`

// CreateProject inserts the project row, the creator's admin membership and
// the project store as one transaction so a mid-sequence failure leaves no
// orphaned project.
func (r *Repo) CreateProject(ctx context.Context, p *models.Project, creatorID int64, storeName string) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO projects (public_id, name, description, is_active, created_at, changed_at, changed_by, version) VALUES (?, ?, ?, 1, ?, ?, ?, 1)`, p.PublicID, p.Name, p.Description, ts, ts, creatorID)
	if err != nil {
		return 0, apperr.Database(err)
	}
	projectID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Database(err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO project_users (user_id, project_id, role, balance) VALUES (?, ?, ?, 0)`, creatorID, projectID, models.RoleAdmin); err != nil {
		return 0, apperr.Database(err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO stores (project_id, name) VALUES (?, ?)`, projectID, storeName); err != nil {
		return 0, apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Database(err)
	}

	return projectID, nil
}

func (r *Repo) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	return r.scanProject(r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

func (r *Repo) GetProjectByPublicID(ctx context.Context, publicID string) (*models.Project, error) {
	return r.scanProject(r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE public_id = ?`, publicID))
}

func (r *Repo) scanProject(row *sql.Row) (*models.Project, error) {
	var p models.Project
	var desc sql.NullString
	if err := row.Scan(&p.ID, &p.PublicID, &p.Name, &desc, &p.IsActive, &p.CreatedAt, &p.ChangedAt, &p.ChangedBy, &p.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}
	if desc.Valid {
		p.Description = &desc.String
	}

	return &p, nil
}

// ListProjectsForUser returns active projects the profile is a member of,
// with the membership role and balance.
func (r *Repo) ListProjectsForUser(ctx context.Context, profileID int64) ([]models.UserProject, error) {
	rows, err := r.conn.QueryRows(ctx, `
		SELECT p.id, p.public_id, p.name, p.description, p.is_active, p.created_at, p.changed_at, p.changed_by, p.version, pu.role, pu.balance
		FROM project_users pu
		INNER JOIN projects p ON p.id = pu.project_id
		WHERE p.is_active = 1 AND pu.user_id = ?`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserProject
	for rows.Next() {
		var up models.UserProject
		var desc sql.NullString
		if err := rows.Scan(&up.Project.ID, &up.Project.PublicID, &up.Project.Name, &desc, &up.Project.IsActive, &up.Project.CreatedAt, &up.Project.ChangedAt, &up.Project.ChangedBy, &up.Project.Version, &up.Role, &up.Balance); err != nil {
			return nil, apperr.Database(err)
		}
		if desc.Valid {
			up.Project.Description = &desc.String
		}

		out = append(out, up)
	}

	return out, nil
}

func (r *Repo) GetMembership(ctx context.Context, projectID, profileID int64) (*models.Membership, error) {
	row := r.conn.QueryRow(ctx, `SELECT user_id, project_id, role, balance FROM project_users WHERE project_id = ? AND user_id = ?`, projectID, profileID)
	var m models.Membership
	if err := row.Scan(&m.UserID, &m.ProjectID, &m.Role, &m.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}

	return &m, nil
}

// UpdateProject applies the guarded versioned update: the live row is
// updated only while its version still equals prev.Version, and the
// pre-update snapshot is appended to project_history in the same
// transaction.
func (r *Repo) UpdateProject(ctx context.Context, prev *models.Project, name string, description *string, isActive bool, actorID int64) error {
	if prev == nil {
		return fmt.Errorf("project is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE projects SET name = ?, description = ?, is_active = ?, version = ?, changed_at = ?, changed_by = ? WHERE id = ? AND version = ?`,
		name, description, isActive, prev.Version+1, now(), actorID, prev.ID, prev.Version)
	if err != nil {
		return apperr.Database(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Database(err)
	}
	if affected == 0 {
		return repository.ErrStaleVersion
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO project_history (project_id, name, description, is_active, created_at, created_by, version) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		prev.ID, prev.Name, prev.Description, prev.IsActive, now(), actorID, prev.Version); err != nil {
		return apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Database(err)
	}

	return nil
}

// ListProjectHistory returns history snapshots ordered by version descending.
func (r *Repo) ListProjectHistory(ctx context.Context, projectID int64) ([]models.ProjectHistory, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT project_id, name, description, is_active, created_at, created_by, version FROM project_history WHERE project_id = ? ORDER BY version DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProjectHistory
	for rows.Next() {
		var h models.ProjectHistory
		var desc sql.NullString
		if err := rows.Scan(&h.ProjectID, &h.Name, &desc, &h.IsActive, &h.CreatedAt, &h.CreatedBy, &h.Version); err != nil {
			return nil, apperr.Database(err)
		}
		if desc.Valid {
			h.Description = &desc.String
		}

		out = append(out, h)
	}

	return out, nil
}
