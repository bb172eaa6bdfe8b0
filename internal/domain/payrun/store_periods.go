package payrun

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreatePeriod(ctx context.Context, period PayPeriod) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_periods (id, name, start_date, end_date, status, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, period.ID, period.Name, period.StartDate, period.EndDate, period.Status, period.CreatedAt)
	return err
}

func (s *Store) GetPeriod(ctx context.Context, id string) (PayPeriod, error) {
	var period PayPeriod
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, created_at
    FROM pay_periods
    WHERE id = $1
  `, id).Scan(&period.ID, &period.Name, &period.StartDate, &period.EndDate, &period.Status, &period.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayPeriod{}, ErrPeriodNotFound
	}
	return period, err
}

func (s *Store) ListPeriods(ctx context.Context, status string) ([]PayPeriod, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status, created_at
    FROM pay_periods
    WHERE ($1 = '' OR status = $1)
    ORDER BY start_date DESC
  `, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []PayPeriod
	for rows.Next() {
		var period PayPeriod
		if err := rows.Scan(&period.ID, &period.Name, &period.StartDate, &period.EndDate, &period.Status, &period.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (s *Store) SetPeriodStatus(ctx context.Context, id, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE pay_periods SET status = $1 WHERE id = $2
  `, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (s *Store) ActivePeriodOverlapping(ctx context.Context, start, end time.Time) (bool, error) {
	var overlaps bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM pay_periods
      WHERE status = $1 AND start_date <= $3 AND end_date >= $2
    )
  `, PeriodStatusActive, start, end).Scan(&overlaps)
	return overlaps, err
}

func (s *Store) GetScheduleSettings(ctx context.Context) (ScheduleSettings, error) {
	var settings ScheduleSettings
	err := s.DB.QueryRow(ctx, `
    SELECT frequency, start_day_of_month, custom_days, next_start_date
    FROM pay_period_settings
    WHERE id = 1
  `).Scan(&settings.Frequency, &settings.StartDayOfMonth, &settings.CustomDays, &settings.NextStartDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return ScheduleSettings{}, ErrScheduleNotConfigured
	}
	return settings, err
}

func (s *Store) UpdateScheduleSettings(ctx context.Context, settings ScheduleSettings) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO pay_period_settings (id, frequency, start_day_of_month, custom_days, next_start_date)
    VALUES (1,$1,$2,$3,$4)
    ON CONFLICT (id)
    DO UPDATE SET frequency = EXCLUDED.frequency,
                  start_day_of_month = EXCLUDED.start_day_of_month,
                  custom_days = EXCLUDED.custom_days,
                  next_start_date = EXCLUDED.next_start_date
  `, settings.Frequency, settings.StartDayOfMonth, settings.CustomDays, settings.NextStartDate)
	return err
}

func (s *Store) WithScheduleSettings(ctx context.Context, fn func(ScheduleSettings) (ScheduleSettings, *PayPeriod, error)) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var settings ScheduleSettings
		err := tx.QueryRow(ctx, `
      SELECT frequency, start_day_of_month, custom_days, next_start_date
      FROM pay_period_settings
      WHERE id = 1
      FOR UPDATE
    `).Scan(&settings.Frequency, &settings.StartDayOfMonth, &settings.CustomDays, &settings.NextStartDate)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrScheduleNotConfigured
		}
		if err != nil {
			return err
		}

		advanced, period, err := fn(settings)
		if err != nil {
			return err
		}

		if period != nil {
			var overlaps bool
			if err := tx.QueryRow(ctx, `
        SELECT EXISTS (
          SELECT 1 FROM pay_periods
          WHERE status = $1 AND start_date <= $3 AND end_date >= $2
        )
      `, PeriodStatusActive, period.StartDate, period.EndDate).Scan(&overlaps); err != nil {
				return err
			}
			if overlaps {
				return ErrPeriodOverlap
			}
			if _, err := tx.Exec(ctx, `
        INSERT INTO pay_periods (id, name, start_date, end_date, status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
      `, period.ID, period.Name, period.StartDate, period.EndDate, period.Status, period.CreatedAt); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
      UPDATE pay_period_settings
      SET frequency = $1, start_day_of_month = $2, custom_days = $3, next_start_date = $4
      WHERE id = 1
    `, advanced.Frequency, advanced.StartDayOfMonth, advanced.CustomDays, advanced.NextStartDate)
		return err
	})
}
