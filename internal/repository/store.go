package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a Querier that can also run a group of queries atomically.
type Store interface {
	Querier

	// ExecTx runs fn inside one transaction. The transaction commits only
	// if fn returns nil; any error rolls back every statement fn issued.
	ExecTx(ctx context.Context, fn func(q Querier) error) error

	Ping(ctx context.Context) error
}

// PgStore is the PostgreSQL Store backed by a connection pool.
type PgStore struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		Queries: New(pool),
		pool:    pool,
	}
}

// ExecTx uses READ COMMITTED: every invariant that matters under
// concurrency is held by row locks (SELECT ... FOR UPDATE, the conditional
// stock UPDATE) or by constraints, not by snapshot isolation.
func (s *PgStore) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translateError(err))
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translateError(err))
	}
	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

var _ Store = (*PgStore)(nil)
