// Package dbhelper is the Postgres implementation of repository.Store.
package dbhelper

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/ray-remotestate/tableqr/database"
	"github.com/ray-remotestate/tableqr/repository"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so every query helper
// runs the same inside and outside a transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	codeLockNotAvailable = "55P03"
	codeUniqueViolation  = "23505"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return database.Tx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&txStore{tx: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return database.ShutdownDatabase(s.db)
}

type txStore struct {
	tx *sql.Tx
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err came from a unique constraint.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Tx    = (*txStore)(nil)
)
