package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
)

// User methods
func (r *Repo) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	res, err := r.conn.Exec(ctx, `INSERT INTO users (email, password_hash, created) VALUES (?, ?, ?)`, email, passwordHash, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, password_hash, created FROM users WHERE email = ?`, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}

	return &u, nil
}

// CreateAccount inserts the user and its profile in one transaction,
// returning the new profile id.
func (r *Repo) CreateAccount(ctx context.Context, email, passwordHash string, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash, created) VALUES (?, ?, ?)`, email, passwordHash, now())
	if err != nil {
		return 0, apperr.Database(err)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Database(err)
	}

	res, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_id, public_id, name, nick, pin, created) VALUES (?, ?, ?, ?, ?, ?)`, userID, p.PublicID, p.Name, p.Nick, p.Pin, now())
	if err != nil {
		return 0, apperr.Database(err)
	}
	profileID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Database(err)
	}

	return profileID, nil
}

// Profile methods
func (r *Repo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO profiles (user_id, public_id, name, nick, pin, created) VALUES (?, ?, ?, ?, ?, ?)`, p.UserID, p.PublicID, p.Name, p.Nick, p.Pin, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *Repo) GetProfileByID(ctx context.Context, id int64) (*models.Profile, error) {
	return r.scanProfile(r.conn.QueryRow(ctx, `SELECT id, user_id, public_id, name, nick, pin, created FROM profiles WHERE id = ?`, id))
}

func (r *Repo) GetProfileByPublicID(ctx context.Context, publicID string) (*models.Profile, error) {
	return r.scanProfile(r.conn.QueryRow(ctx, `SELECT id, user_id, public_id, name, nick, pin, created FROM profiles WHERE public_id = ?`, publicID))
}

func (r *Repo) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return r.scanProfile(r.conn.QueryRow(ctx, `SELECT id, user_id, public_id, name, nick, pin, created FROM profiles WHERE user_id = ?`, userID))
}

func (r *Repo) scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.PublicID, &p.Name, &p.Nick, &p.Pin, &p.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}

	return &p, nil
}

// PinsForNick returns every pin already taken for a nick.
func (r *Repo) PinsForNick(ctx context.Context, nick string) ([]int, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT pin FROM profiles WHERE nick = ?`, nick)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var pin int
		if err := rows.Scan(&pin); err != nil {
			return nil, apperr.Database(err)
		}

		out = append(out, pin)
	}

	return out, nil
}

func (r *Repo) UpdateProfileInfo(ctx context.Context, id int64, nick string, pin int) error {
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET nick = ?, pin = ? WHERE id = ?`, nick, pin, id)
	return err
}
