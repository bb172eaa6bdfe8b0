package payrun

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateRun(ctx context.Context, run PayRun) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_runs (id, name, pay_period_id, location_id, status, is_supplementary, paid_date, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, run.ID, run.Name, run.PayPeriodID, run.LocationID, run.Status, run.IsSupplementary, run.PaidDate, run.CreatedAt)
	return err
}

// DeleteRun removes a run and (via FK cascade) its items. Only used for
// rolling back failed population; paid runs are never deleted.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM pay_runs WHERE id = $1 AND status <> $2
  `, id, RunStatusPaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (PayRun, error) {
	var run PayRun
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, pay_period_id, location_id, status, is_supplementary, paid_date, created_at
    FROM pay_runs
    WHERE id = $1
  `, id).Scan(&run.ID, &run.Name, &run.PayPeriodID, &run.LocationID, &run.Status, &run.IsSupplementary, &run.PaidDate, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayRun{}, ErrRunNotFound
	}
	return run, err
}

// ListRuns treats zero filter dates as unbounded, matching the closed
// period listing.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]PayRun, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.name, r.pay_period_id, r.location_id, r.status, r.is_supplementary, r.paid_date, r.created_at
    FROM pay_runs r
    JOIN pay_periods p ON p.id = r.pay_period_id
    WHERE ($1::date IS NULL OR p.end_date >= $1)
      AND ($2::date IS NULL OR p.start_date <= $2)
      AND ($3::text IS NULL OR r.location_id = $3)
    ORDER BY r.created_at DESC
  `, nullableDate(filter.Start), nullableDate(filter.End), filter.LocationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []PayRun
	for rows.Next() {
		var run PayRun
		if err := rows.Scan(&run.ID, &run.Name, &run.PayPeriodID, &run.LocationID, &run.Status, &run.IsSupplementary, &run.PaidDate, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) UpdateRunStatus(ctx context.Context, id, fromStatus, toStatus string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE pay_runs SET status = $1 WHERE id = $2 AND status = $3
  `, toStatus, id, fromStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetRun(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

func (s *Store) MarkRunPaid(ctx context.Context, id, fromStatus string, paidDate time.Time) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
      UPDATE pay_runs SET status = $1, paid_date = $2 WHERE id = $3 AND status = $4
    `, RunStatusPaid, paidDate, id, fromStatus)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pay_runs WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrRunNotFound
			}
			return ErrInvalidTransition
		}
		_, err = tx.Exec(ctx, `
      UPDATE pay_run_items SET is_paid = true WHERE pay_run_id = $1
    `, id)
		return err
	})
}
