package payrun

import (
	"context"
	"strings"
	"time"
)

func (s *Service) CreatePayPeriod(ctx context.Context, start, end time.Time, name string) (PayPeriod, error) {
	start = DateOnly(start)
	end = DateOnly(end)
	if !start.Before(end) {
		return PayPeriod{}, ErrInvalidDateRange
	}

	overlaps, err := s.store.ActivePeriodOverlapping(ctx, start, end)
	if err != nil {
		return PayPeriod{}, err
	}
	if overlaps {
		return PayPeriod{}, ErrPeriodOverlap
	}

	if strings.TrimSpace(name) == "" {
		name = periodName(start, end)
	}
	period := PayPeriod{
		ID:        s.newID(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    PeriodStatusActive,
		CreatedAt: s.now(),
	}
	if err := s.store.CreatePeriod(ctx, period); err != nil {
		return PayPeriod{}, err
	}
	return period, nil
}

// GenerateNextPayPeriod creates the period the schedule settings point at
// and advances nextStartDate to the following cycle, all under the settings
// row lock so concurrent callers cannot generate the same range twice.
func (s *Service) GenerateNextPayPeriod(ctx context.Context) (PayPeriod, error) {
	var created PayPeriod
	err := s.store.WithScheduleSettings(ctx, func(settings ScheduleSettings) (ScheduleSettings, *PayPeriod, error) {
		period, advanced, err := NextPeriod(settings)
		if err != nil {
			return settings, nil, err
		}
		period.ID = s.newID()
		period.CreatedAt = s.now()
		created = period
		return advanced, &period, nil
	})
	if err != nil {
		return PayPeriod{}, err
	}
	return created, nil
}

func (s *Service) ArchivePayPeriod(ctx context.Context, id string) (PayPeriod, error) {
	period, err := s.store.GetPeriod(ctx, id)
	if err != nil {
		return PayPeriod{}, err
	}
	if period.Status == PeriodStatusArchived {
		return period, nil
	}
	if err := s.store.SetPeriodStatus(ctx, id, PeriodStatusArchived); err != nil {
		return PayPeriod{}, err
	}
	period.Status = PeriodStatusArchived
	return period, nil
}

func (s *Service) ListPayPeriods(ctx context.Context, status string) ([]PayPeriod, error) {
	return s.store.ListPeriods(ctx, status)
}

func (s *Service) GetScheduleSettings(ctx context.Context) (ScheduleSettings, error) {
	return s.store.GetScheduleSettings(ctx)
}

func (s *Service) UpdateScheduleSettings(ctx context.Context, settings ScheduleSettings) (ScheduleSettings, error) {
	switch settings.Frequency {
	case FrequencyMonthly:
		if settings.StartDayOfMonth < 1 || settings.StartDayOfMonth > 31 {
			return ScheduleSettings{}, ErrScheduleNotConfigured
		}
	case FrequencyCustom:
		if settings.CustomDays < 1 {
			return ScheduleSettings{}, ErrScheduleNotConfigured
		}
	default:
		return ScheduleSettings{}, ErrScheduleNotConfigured
	}
	if settings.NextStartDate.IsZero() {
		return ScheduleSettings{}, ErrScheduleNotConfigured
	}
	settings.NextStartDate = DateOnly(settings.NextStartDate)
	if err := s.store.UpdateScheduleSettings(ctx, settings); err != nil {
		return ScheduleSettings{}, err
	}
	return settings, nil
}
