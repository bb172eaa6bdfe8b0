package payrun

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateCompensation(ctx context.Context, setting CompensationSetting) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		// Close the current open record; history stays append-only.
		if _, err := tx.Exec(ctx, `
      UPDATE compensation_settings
      SET effective_to = $1
      WHERE employee_id = $2 AND effective_to IS NULL
    `, setting.EffectiveFrom, setting.EmployeeID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
      INSERT INTO compensation_settings (id, employee_id, base_amount, effective_from, effective_to, created_at)
      VALUES ($1,$2,$3,$4,NULL,$5)
    `, setting.ID, setting.EmployeeID, setting.BaseAmount, setting.EffectiveFrom, setting.CreatedAt)
		return err
	})
}

func (s *Store) ListCompensation(ctx context.Context, employeeID string) ([]CompensationSetting, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, base_amount, effective_from, effective_to, created_at
    FROM compensation_settings
    WHERE employee_id = $1
    ORDER BY effective_from
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []CompensationSetting
	for rows.Next() {
		var setting CompensationSetting
		if err := rows.Scan(&setting.ID, &setting.EmployeeID, &setting.BaseAmount,
			&setting.EffectiveFrom, &setting.EffectiveTo, &setting.CreatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (s *Store) CreateClosedPeriod(ctx context.Context, closed ClosedPeriod) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO closed_periods (id, start_date, end_date, description, location_ids, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, closed.ID, closed.StartDate, closed.EndDate, closed.Description, closed.LocationIDs, closed.CreatedAt)
	return err
}

func (s *Store) ListClosedPeriods(ctx context.Context, start, end time.Time) ([]ClosedPeriod, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, start_date, end_date, description, location_ids, created_at
    FROM closed_periods
    WHERE ($1::date IS NULL OR start_date <= $2)
      AND ($1::date IS NULL OR end_date >= $1)
    ORDER BY start_date
  `, nullableDate(start), nullableDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClosedPeriod
	for rows.Next() {
		var closed ClosedPeriod
		if err := rows.Scan(&closed.ID, &closed.StartDate, &closed.EndDate,
			&closed.Description, &closed.LocationIDs, &closed.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, closed)
	}
	return out, rows.Err()
}

func nullableDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (s *Store) DeleteClosedPeriod(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM closed_periods WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClosedPeriodNotFound
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	var employee Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, location_id, status
    FROM employees
    WHERE id = $1
  `, id).Scan(&employee.ID, &employee.FirstName, &employee.LastName, &employee.LocationID, &employee.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, err
}

func (s *Store) ListActiveEmployees(ctx context.Context, locationID *string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, first_name, last_name, location_id, status
    FROM employees
    WHERE status = 'active' AND ($1::text IS NULL OR location_id = $1)
    ORDER BY last_name, first_name
  `, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var employee Employee
		if err := rows.Scan(&employee.ID, &employee.FirstName, &employee.LastName, &employee.LocationID, &employee.Status); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (s *Store) ListCharges(ctx context.Context, filter ChargeFilter) ([]SourceCharge, error) {
	query := `
    SELECT c.id, c.employee_id, c.location_id, c.charge_type, c.amount, c.description, c.service_date
    FROM booking_charges c
    WHERE c.completed = true AND c.customer_paid = true
      AND c.service_date >= $1 AND c.service_date <= $2
      AND ($3::text IS NULL OR c.location_id = $3)
      AND NOT EXISTS (
        SELECT 1
        FROM pay_run_items i
        JOIN pay_runs r ON r.id = i.pay_run_id
        WHERE i.source_id = c.id
          AND r.is_supplementary = false
          AND r.id <> $4
      )
  `
	if filter.OnlyUnpaid {
		query += `
      AND NOT EXISTS (
        SELECT 1 FROM pay_run_items i
        WHERE i.source_id = c.id AND i.is_paid = true
      )
    `
	}
	query += ` ORDER BY c.service_date, c.id`

	rows, err := s.DB.Query(ctx, query, filter.Start, filter.End, filter.LocationID, filter.ExcludeRunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []SourceCharge
	for rows.Next() {
		var charge SourceCharge
		if err := rows.Scan(&charge.ID, &charge.EmployeeID, &charge.LocationID,
			&charge.ChargeType, &charge.Amount, &charge.Description, &charge.ServiceDate); err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}
	return charges, rows.Err()
}

func (s *Store) MarkChargesPaid(ctx context.Context, chargeIDs []string) error {
	if len(chargeIDs) == 0 {
		return nil
	}
	_, err := s.DB.Exec(ctx, `
    UPDATE booking_charges SET staff_paid = true WHERE id = ANY($1)
  `, chargeIDs)
	return err
}
