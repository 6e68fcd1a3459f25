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

const taskColumns = `id, project_id, name, description, is_active, reward, created_at, created_by, changed_at, version`

func (r *Repo) CreateTask(ctx context.Context, t *models.Task) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("task is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO tasks (project_id, name, description, is_active, reward, created_at, created_by, changed_at, version) VALUES (?, ?, ?, 1, ?, ?, ?, ?, 1)`,
		t.ProjectID, t.Name, t.Description, t.Reward, ts, t.CreatedBy, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	return r.scanTask(r.conn.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
}

func (r *Repo) scanTask(row *sql.Row) (*models.Task, error) {
	var t models.Task
	var desc sql.NullString
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &desc, &t.IsActive, &t.Reward, &t.CreatedAt, &t.CreatedBy, &t.ChangedAt, &t.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}

	return &t, nil
}

func (r *Repo) ListTasksForProject(ctx context.Context, projectID int64, onlyActive bool) ([]models.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ?`
	if onlyActive {
		q += ` AND is_active = 1`
	}
	rows, err := r.conn.QueryRows(ctx, q+` ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &desc, &t.IsActive, &t.Reward, &t.CreatedAt, &t.CreatedBy, &t.ChangedAt, &t.Version); err != nil {
			return nil, apperr.Database(err)
		}
		if desc.Valid {
			t.Description = &desc.String
		}

		out = append(out, t)
	}

	return out, nil
}

// UpdateTask applies the guarded versioned update, appending the pre-update
// snapshot to task_history in the same transaction.
func (r *Repo) UpdateTask(ctx context.Context, prev *models.Task, name string, description *string, reward int64, isActive bool, actorID int64) error {
	if prev == nil {
		return fmt.Errorf("task is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE tasks SET name = ?, description = ?, reward = ?, is_active = ?, version = ?, changed_at = ? WHERE id = ? AND version = ?`,
		name, description, reward, isActive, prev.Version+1, now(), prev.ID, prev.Version)
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

	if _, err := tx.ExecContext(ctx, `INSERT INTO task_history (task_id, name, description, reward, is_active, created_at, created_by, version) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		prev.ID, prev.Name, prev.Description, prev.Reward, prev.IsActive, now(), actorID, prev.Version); err != nil {
		return apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Database(err)
	}

	return nil
}

// CompleteTask records the completion event and credits the member's balance
// with the task's reward in a single transaction, returning the new balance.
// Completions are append-only; repeating a task credits again.
func (r *Repo) CompleteTask(ctx context.Context, t *models.Task, profileID int64) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("task is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO task_completions (task_id, task_version, user_id, reward, date) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Version, profileID, t.Reward, now()); err != nil {
		return 0, apperr.Database(err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE project_users SET balance = balance + ? WHERE user_id = ? AND project_id = ?`, t.Reward, profileID, t.ProjectID)
	if err != nil {
		return 0, apperr.Database(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Database(err)
	}
	if affected == 0 {
		// callers verify membership first; reaching this is a defect
		return 0, fmt.Errorf("no membership row for profile %d in project %d", profileID, t.ProjectID)
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM project_users WHERE user_id = ? AND project_id = ?`, profileID, t.ProjectID).Scan(&balance); err != nil {
		return 0, apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Database(err)
	}

	return balance, nil
}

func (r *Repo) ListTaskCompletions(ctx context.Context, taskID, profileID int64) ([]models.TaskCompletion, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, task_id, task_version, user_id, reward, date FROM task_completions WHERE task_id = ? AND user_id = ? ORDER BY date DESC`, taskID, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskCompletion
	for rows.Next() {
		var c models.TaskCompletion
		if err := rows.Scan(&c.ID, &c.TaskID, &c.TaskVersion, &c.UserID, &c.Reward, &c.Date); err != nil {
			return nil, apperr.Database(err)
		}

		out = append(out, c)
	}

	return out, nil
}

func (r *Repo) ListTaskHistory(ctx context.Context, taskID int64) ([]models.TaskHistory, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT task_id, name, description, reward, is_active, created_at, created_by, version FROM task_history WHERE task_id = ? ORDER BY version DESC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskHistory
	for rows.Next() {
		var h models.TaskHistory
		var desc sql.NullString
		if err := rows.Scan(&h.TaskID, &h.Name, &desc, &h.Reward, &h.IsActive, &h.CreatedAt, &h.CreatedBy, &h.Version); err != nil {
			return nil, apperr.Database(err)
		}
		if desc.Valid {
			h.Description = &desc.String
		}

		out = append(out, h)
	}

	return out, nil
}
