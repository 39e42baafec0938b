package base

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository holds the pool shared by the table repositories.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LockSection takes a transaction-scoped advisory lock on the section id.
// Writers of the same section queue behind each other until commit or rollback.
func LockSection(ctx context.Context, tx pgx.Tx, sectionID int64) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, sectionID); err != nil {
		return fmt.Errorf("lock section: %w", err)
	}
	return nil
}

// Pool returns the connection pool.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// InTx runs fn in a transaction. The transaction is committed when fn returns
// nil and rolled back otherwise.
func (r *Repository) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means "no rows".
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
