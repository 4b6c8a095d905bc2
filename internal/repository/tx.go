package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every repository bound to a single query surface.
// A pool-bound instance serves plain reads; TxRunner hands out tx-bound
// instances for multi-statement writes.
type Repositories struct {
	Stores      StoreRepository
	Users       UserRepository
	Customers   CustomerRepository
	Jobs        JobRepository
	Assignments AssignmentRepository
	Notes       JobNoteRepository
}

// NewRepositories binds all repositories to the given query surface.
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Stores:      NewStoreRepository(db),
		Users:       NewUserRepository(db),
		Customers:   NewCustomerRepository(db),
		Jobs:        NewJobRepository(db),
		Assignments: NewAssignmentRepository(db),
		Notes:       NewJobNoteRepository(db),
	}
}

// TxRunner executes a function inside a single database transaction. Either
// every statement issued through the provided Repositories commits, or the
// whole transaction rolls back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error
}

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds a TxRunner over a pgx pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (t *pgxTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, NewRepositories(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
