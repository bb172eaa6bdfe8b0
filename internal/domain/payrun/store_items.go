package payrun

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const itemColumns = `id, pay_run_id, employee_id, compensation_type, amount, description, source_type, source_id, is_paid, created_at`

func scanItem(row pgx.Row) (PayRunItem, error) {
	var item PayRunItem
	err := row.Scan(&item.ID, &item.PayRunID, &item.EmployeeID, &item.CompensationType,
		&item.Amount, &item.Description, &item.SourceType, &item.SourceID, &item.IsPaid, &item.CreatedAt)
	return item, err
}

func (s *Store) ListItems(ctx context.Context, runID string) ([]PayRunItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+itemColumns+`
    FROM pay_run_items
    WHERE pay_run_id = $1
    ORDER BY created_at, id
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PayRunItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) GetItem(ctx context.Context, itemID string) (PayRunItem, error) {
	item, err := scanItem(s.DB.QueryRow(ctx, `
    SELECT `+itemColumns+`
    FROM pay_run_items
    WHERE id = $1
  `, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return PayRunItem{}, ErrItemNotFound
	}
	return item, err
}

func insertItems(ctx context.Context, tx pgx.Tx, items []PayRunItem) error {
	for _, item := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO pay_run_items (id, pay_run_id, employee_id, compensation_type, amount, description, source_type, source_id, is_paid, created_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    `, item.ID, item.PayRunID, item.EmployeeID, item.CompensationType, item.Amount,
			item.Description, item.SourceType, item.SourceID, item.IsPaid, item.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) InsertItems(ctx context.Context, runID string, items []PayRunItem) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		status, err := lockRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !RunMutable(status) {
			return ErrImmutableRun
		}
		return insertItems(ctx, tx, items)
	})
}

func (s *Store) DeleteManualItem(ctx context.Context, itemID string) (string, error) {
	var runID string
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var sourceType string
		err := tx.QueryRow(ctx, `
      SELECT pay_run_id, source_type FROM pay_run_items WHERE id = $1
    `, itemID).Scan(&runID, &sourceType)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}

		status, err := lockRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !RunMutable(status) {
			return ErrImmutableRun
		}
		if sourceType != SourceTypeManual {
			return ErrNotManualItem
		}
		_, err = tx.Exec(ctx, `DELETE FROM pay_run_items WHERE id = $1`, itemID)
		return err
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) ReplaceCommissionItems(ctx context.Context, runID string, items []PayRunItem) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		status, err := lockRun(ctx, tx, runID)
		if err != nil {
			return err
		}
		if !RunMutable(status) {
			return ErrImmutableRun
		}
		if _, err := tx.Exec(ctx, `
      DELETE FROM pay_run_items
      WHERE pay_run_id = $1
        AND compensation_type IN ($2, $3)
        AND source_type <> $4
    `, runID, CompTypeCommission, CompTypeTip, SourceTypeManual); err != nil {
			return err
		}
		return insertItems(ctx, tx, items)
	})
}

func (s *Store) ItemSourceIDs(ctx context.Context, runID string) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT source_id FROM pay_run_items
    WHERE pay_run_id = $1 AND source_id IS NOT NULL
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var sourceID string
		if err := rows.Scan(&sourceID); err != nil {
			return nil, err
		}
		out[sourceID] = true
	}
	return out, rows.Err()
}

func (s *Store) PaidSourceIDs(ctx context.Context, sourceIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	if len(sourceIDs) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT source_id FROM pay_run_items
    WHERE is_paid = true AND source_id = ANY($1)
  `, sourceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sourceID string
		if err := rows.Scan(&sourceID); err != nil {
			return nil, err
		}
		out[sourceID] = true
	}
	return out, rows.Err()
}

// RunSummaries is the delegated bulk aggregate; it must agree with
// Summarize on every figure.
func (s *Store) RunSummaries(ctx context.Context, runIDs []string) (map[string]Summary, error) {
	out := map[string]Summary{}
	if len(runIDs) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.status,
           COALESCE(SUM(CASE WHEN i.compensation_type IN ($2,$3,$4) THEN i.amount ELSE 0 END), 0),
           COALESCE(SUM(CASE WHEN i.compensation_type NOT IN ($2,$3,$4) THEN i.amount ELSE 0 END), 0),
           COALESCE(SUM(CASE WHEN i.is_paid THEN i.amount ELSE 0 END), 0),
           COUNT(DISTINCT i.employee_id)
    FROM pay_runs r
    LEFT JOIN pay_run_items i ON i.pay_run_id = r.id
    WHERE r.id = ANY($1)
    GROUP BY r.id, r.status
  `, runIDs, CompTypeSalary, CompTypeCommission, CompTypeTip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, status string
		var earnings, other, paid decimal.Decimal
		var employees int
		if err := rows.Scan(&id, &status, &earnings, &other, &paid, &employees); err != nil {
			return nil, err
		}
		total := earnings.Add(other)
		if status == RunStatusPaid {
			paid = total
		}
		out[id] = Summary{
			Earnings:       earnings,
			Other:          other,
			Total:          total,
			Paid:           paid,
			ToPay:          total.Sub(paid),
			TotalEmployees: employees,
		}
	}
	return out, rows.Err()
}
