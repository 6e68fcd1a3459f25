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

func (r *Repo) GetStoreByID(ctx context.Context, id int64) (*models.Store, error) {
	return r.scanStore(r.conn.QueryRow(ctx, `SELECT id, project_id, name FROM stores WHERE id = ?`, id))
}

func (r *Repo) GetStoreForProject(ctx context.Context, projectID int64) (*models.Store, error) {
	return r.scanStore(r.conn.QueryRow(ctx, `SELECT id, project_id, name FROM stores WHERE project_id = ?`, projectID))
}

func (r *Repo) scanStore(row *sql.Row) (*models.Store, error) {
	var s models.Store
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}

	return &s, nil
}

func (r *Repo) CreateStoreItem(ctx context.Context, item *models.StoreItem) (int64, error) {
	if item == nil {
		return 0, fmt.Errorf("store item is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO store_items (store_id, name, price, is_active) VALUES (?, ?, ?, 1)`, item.StoreID, item.Name, item.Price)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetStoreItem(ctx context.Context, itemID int64) (*models.StoreItem, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, store_id, name, price, is_active FROM store_items WHERE id = ?`, itemID)
	var it models.StoreItem
	if err := row.Scan(&it.ID, &it.StoreID, &it.Name, &it.Price, &it.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}

	return &it, nil
}

func (r *Repo) ListStoreItems(ctx context.Context, storeID int64, onlyActive bool) ([]models.StoreItem, error) {
	q := `SELECT id, store_id, name, price, is_active FROM store_items WHERE store_id = ?`
	if onlyActive {
		q += ` AND is_active = 1`
	}
	rows, err := r.conn.QueryRows(ctx, q+` ORDER BY id`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StoreItem
	for rows.Next() {
		var it models.StoreItem
		if err := rows.Scan(&it.ID, &it.StoreID, &it.Name, &it.Price, &it.IsActive); err != nil {
			return nil, apperr.Database(err)
		}

		out = append(out, it)
	}

	return out, nil
}

// PurchaseStoreItem debits the member's balance and records the purchase in
// one transaction. The debit statement carries its own balance >= price
// guard so two concurrent purchases cannot both pass an earlier check and
// drive the balance negative.
func (r *Repo) PurchaseStoreItem(ctx context.Context, item *models.StoreItem, profileID, projectID int64) (int64, error) {
	if item == nil {
		return 0, fmt.Errorf("store item is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE project_users SET balance = balance - ? WHERE user_id = ? AND project_id = ? AND balance >= ?`,
		item.Price, profileID, projectID, item.Price)
	if err != nil {
		return 0, apperr.Database(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Database(err)
	}
	if affected == 0 {
		return 0, repository.ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO store_purchases (item_id, user_id, price, date) VALUES (?, ?, ?, ?)`,
		item.ID, profileID, item.Price, now()); err != nil {
		return 0, apperr.Database(err)
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM project_users WHERE user_id = ? AND project_id = ?`, profileID, projectID).Scan(&balance); err != nil {
		return 0, apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Database(err)
	}

	return balance, nil
}
