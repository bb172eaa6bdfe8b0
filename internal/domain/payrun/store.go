package payrun

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed StoreAPI. Per-run serialization is done with
// SELECT ... FOR UPDATE on the pay_runs row inside each mutating
// transaction; the schedule settings row is locked the same way.
type Store struct {
	DB *pgxpool.Pool
}

var _ StoreAPI = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockRun takes the row lock for a run and returns its current status.
func lockRun(ctx context.Context, tx pgx.Tx, runID string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `
    SELECT status FROM pay_runs WHERE id = $1 FOR UPDATE
  `, runID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRunNotFound
	}
	return status, err
}
