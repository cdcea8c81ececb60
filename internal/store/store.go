// Package store is the MySQL implementation of service.Repository.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/medistore/internal/service"
	"github.com/go-sql-driver/mysql"
)

// querier is implemented by both *sql.DB and *sql.Tx, so every query
// helper runs in or out of a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs raw SQL against MySQL. A Store handed to a WithTx callback is
// bound to that transaction.
type Store struct {
	db  *sql.DB // nil inside a transaction
	q   querier
	now func() time.Time
}

var _ service.Repository = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db, q: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithTx runs fn in a transaction. Nested calls join the outer one.
func (s *Store) WithTx(ctx context.Context, fn func(tx service.Repository) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is a no-op once Commit has succeeded.
	defer tx.Rollback()

	if err := fn(&Store{q: tx, now: s.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// mapErr translates driver errors into the service sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return service.ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlNoReferencedRow:
			return fmt.Errorf("%w: %s", service.ErrConflict, me.Message)
		}
	}
	return err
}

// mustAffect turns "no rows deleted" into ErrNotFound. Not used for
// UPDATEs: MySQL reports unchanged rows as unaffected.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
