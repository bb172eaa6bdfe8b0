package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed loads a small development dataset: two locations, three employees
// with current compensation, a handful of booking charges and the schedule
// settings row. Safe to run repeatedly.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	const (
		locDowntown = "11111111-1111-1111-1111-111111111101"
		locUptown   = "11111111-1111-1111-1111-111111111102"
		empAda      = "22222222-2222-2222-2222-222222222201"
		empGrace    = "22222222-2222-2222-2222-222222222202"
		empAlan     = "22222222-2222-2222-2222-222222222203"
	)

	for _, loc := range []struct{ id, name string }{
		{locDowntown, "Downtown"},
		{locUptown, "Uptown"},
	} {
		if _, err := pool.Exec(ctx, `
      INSERT INTO locations (id, name) VALUES ($1,$2)
      ON CONFLICT (id) DO NOTHING
    `, loc.id, loc.name); err != nil {
			return err
		}
	}

	employees := []struct {
		id, first, last, location string
	}{
		{empAda, "Ada", "Lovelace", locDowntown},
		{empGrace, "Grace", "Hopper", locDowntown},
		{empAlan, "Alan", "Turing", locUptown},
	}
	for _, e := range employees {
		if _, err := pool.Exec(ctx, `
      INSERT INTO employees (id, first_name, last_name, location_id, status)
      VALUES ($1,$2,$3,$4,'active')
      ON CONFLICT (id) DO NOTHING
    `, e.id, e.first, e.last, e.location); err != nil {
			return err
		}
	}

	compensation := []struct {
		id, employee, amount, from string
	}{
		{"33333333-3333-3333-3333-333333333301", empAda, "4200.00", "2025-01-01"},
		{"33333333-3333-3333-3333-333333333302", empGrace, "3800.00", "2025-01-01"},
		{"33333333-3333-3333-3333-333333333303", empAlan, "3500.00", "2025-01-01"},
	}
	for _, c := range compensation {
		if _, err := pool.Exec(ctx, `
      INSERT INTO compensation_settings (id, employee_id, base_amount, effective_from, effective_to, created_at)
      VALUES ($1,$2,$3,$4,NULL,now())
      ON CONFLICT (id) DO NOTHING
    `, c.id, c.employee, c.amount, c.from); err != nil {
			return err
		}
	}

	charges := []struct {
		id, employee, location, chargeType, amount, description, date string
	}{
		{"44444444-4444-4444-4444-444444444401", empAda, locDowntown, "commission", "120.00", "Colour treatment commission", "2025-05-06"},
		{"44444444-4444-4444-4444-444444444402", empGrace, locDowntown, "commission", "85.50", "Styling commission", "2025-05-12"},
		{"44444444-4444-4444-4444-444444444403", empGrace, locDowntown, "tip", "15.00", "Card tip", "2025-05-12"},
		{"44444444-4444-4444-4444-444444444404", empAlan, locUptown, "commission", "64.25", "Consultation commission", "2025-05-20"},
	}
	for _, c := range charges {
		if _, err := pool.Exec(ctx, `
      INSERT INTO booking_charges (id, employee_id, location_id, charge_type, amount, description, service_date, completed, customer_paid, staff_paid)
      VALUES ($1,$2,$3,$4,$5,$6,$7,true,true,false)
      ON CONFLICT (id) DO NOTHING
    `, c.id, c.employee, c.location, c.chargeType, c.amount, c.description, c.date); err != nil {
			return err
		}
	}

	nextStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.UTC)
	_, err := pool.Exec(ctx, `
    INSERT INTO pay_period_settings (id, frequency, start_day_of_month, custom_days, next_start_date)
    VALUES (1,'monthly',1,0,$1)
    ON CONFLICT (id) DO NOTHING
  `, nextStart)
	return err
}
