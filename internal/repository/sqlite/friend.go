package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

func (r *Repo) GetEdge(ctx context.Context, from, to int64) (*models.FriendEdge, error) {
	row := r.conn.QueryRow(ctx, `SELECT profile_from, profile_to, accepted_at, rejected_at, created_at FROM friend_edges WHERE profile_from = ? AND profile_to = ?`, from, to)
	return scanEdge(row)
}

func scanEdge(row *sql.Row) (*models.FriendEdge, error) {
	var e models.FriendEdge
	var accepted, rejected sql.NullInt64
	if err := row.Scan(&e.ProfileFrom, &e.ProfileTo, &accepted, &rejected, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, apperr.Database(err)
	}
	if accepted.Valid {
		v := accepted.Int64
		e.AcceptedAt = &v
	}
	if rejected.Valid {
		v := rejected.Int64
		e.RejectedAt = &v
	}

	return &e, nil
}

// InsertEdge creates a pending directed edge. Runs on the gateway's async
// executor; a fresh request is a single statement independent of any other.
func (r *Repo) InsertEdge(ctx context.Context, from, to int64) error {
	ts := now()
	res := <-r.conn.ExecAsync(ctx, `INSERT INTO friend_edges (profile_from, profile_to, accepted_at, rejected_at, created_at) VALUES (?, ?, NULL, NULL, ?)`, from, to, ts)
	return res.Err
}

// AcceptMutualEdges accepts the pending to→from edge and inserts the
// reciprocal from→to edge pre-accepted, in one transaction. Either both
// directions end up accepted or neither edge changes.
func (r *Repo) AcceptMutualEdges(ctx context.Context, from, to int64) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	if _, err := tx.ExecContext(ctx, `UPDATE friend_edges SET accepted_at = ?, rejected_at = NULL WHERE profile_from = ? AND profile_to = ? AND accepted_at IS NULL`, ts, to, from); err != nil {
		return apperr.Database(err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO friend_edges (profile_from, profile_to, accepted_at, rejected_at, created_at) VALUES (?, ?, ?, NULL, ?)`, from, to, ts, ts); err != nil {
		return apperr.Database(err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Database(err)
	}

	return nil
}

// SetEdgeState accepts or rejects the edge, setting one timestamp and
// clearing the other, and returns the updated edge.
func (r *Repo) SetEdgeState(ctx context.Context, from, to int64, accepted bool) (*models.FriendEdge, error) {
	var q string
	if accepted {
		q = `UPDATE friend_edges SET accepted_at = ?, rejected_at = NULL WHERE profile_from = ? AND profile_to = ?`
	} else {
		q = `UPDATE friend_edges SET rejected_at = ?, accepted_at = NULL WHERE profile_from = ? AND profile_to = ?`
	}
	if _, err := r.conn.Exec(ctx, q, now(), from, to); err != nil {
		return nil, err
	}

	return r.GetEdge(ctx, from, to)
}

// ListFriends returns outgoing edges joined to the target profile, filtered
// by acceptance state.
func (r *Repo) ListFriends(ctx context.Context, from int64, filter string) ([]models.Friend, error) {
	q := `
		SELECT p.nick, p.pin, p.public_id, fe.accepted_at
		FROM friend_edges fe
		INNER JOIN profiles p ON p.id = fe.profile_to
		WHERE fe.profile_from = ?`
	switch filter {
	case repository.FilterAccepted:
		q += ` AND fe.accepted_at IS NOT NULL`
	case repository.FilterRequested:
		q += ` AND fe.accepted_at IS NULL`
	}

	rows, err := r.conn.QueryRows(ctx, q, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Friend
	for rows.Next() {
		var f models.Friend
		var accepted sql.NullInt64
		if err := rows.Scan(&f.Nick, &f.Pin, &f.PublicID, &accepted); err != nil {
			return nil, apperr.Database(err)
		}
		if accepted.Valid {
			v := accepted.Int64
			f.AcceptedAt = &v
		}

		out = append(out, f)
	}

	return out, nil
}
