// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package postgres implements the auth package's persistence interfaces
// using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/auth"
)

// poolIface abstracts *pgxpool.Pool so repositories can be unit tested
// with pgxmock.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier is the subset of operations shared by poolIface and pgx.Tx.
// Repository methods resolve one per call so they transparently join a
// transaction when the context carries one.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// queryEngine returns the transaction stored in ctx by Transactor, or
// the pool when no transaction is active.
func queryEngine(ctx context.Context, pool poolIface) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// Transactor implements auth.Transactor using a pgx connection pool. It
// stores the active pgx.Tx in context so repository methods called from
// inside fn participate in the same transaction.
type Transactor struct {
	pool poolIface
}

// NewTransactor creates a Transactor backed by the given connection pool.
func NewTransactor(pool poolIface) *Transactor {
	return &Transactor{pool: pool}
}

// InTransaction begins a transaction, stores it in context, and calls fn.
// If fn returns nil, the transaction is committed. Otherwise it is rolled
// back.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.Transactor = (*Transactor)(nil)
