package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
)

// DB wraps the sql.DB for connection management. Driver failures are wrapped
// into apperr.Database so callers never see raw driver internals.
type DB struct {
	conn *sql.DB
}

// New creates a new DB connection
func New(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// sqlite allows a single writer; one pooled connection serializes
	// writers instead of surfacing SQLITE_BUSY.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the DB connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Exec executes a statement
func (db *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return res, nil
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// QueryRows executes a query returning any number of rows
func (db *DB) QueryRows(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return rows, nil
}

// BeginTx starts a transaction. Multi-statement mutations must run inside
// one so a mid-sequence failure leaves no partial state.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return tx, nil
}

// ExecResult carries the outcome of an asynchronous statement.
type ExecResult struct {
	Result sql.Result
	Err    error
}

// ExecAsync executes a statement on its own goroutine and delivers the
// outcome on the returned channel. The channel is buffered; abandoning it
// does not leak the goroutine.
func (db *DB) ExecAsync(ctx context.Context, query string, args ...any) <-chan ExecResult {
	ch := make(chan ExecResult, 1)
	go func() {
		defer close(ch)
		res, err := db.conn.ExecContext(ctx, query, args...)
		if err != nil {
			ch <- ExecResult{Err: apperr.Database(err)}
			return
		}
		ch <- ExecResult{Result: res}
	}()
	return ch
}

// GetConn returns the underlying sql.DB
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
