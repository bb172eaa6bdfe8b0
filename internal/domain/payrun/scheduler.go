package payrun

import (
	"fmt"
	"time"
)

// DateOnly truncates a timestamp to a UTC calendar date. All period
// boundaries are stored this way so contiguity checks are exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clampedMonthDay returns the given day in year/month, clamped to the last
// day of that month (day 31 in April yields April 30).
func clampedMonthDay(year int, month time.Month, day int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NextPeriod computes the period starting at settings.NextStartDate together
// with the advanced settings for the following cycle. Monthly periods end
// the day before the next month's start day; custom periods span exactly
// CustomDays days. Successive calls therefore always produce contiguous,
// non-overlapping ranges.
func NextPeriod(settings ScheduleSettings) (PayPeriod, ScheduleSettings, error) {
	if settings.NextStartDate.IsZero() {
		return PayPeriod{}, settings, ErrScheduleNotConfigured
	}
	start := DateOnly(settings.NextStartDate)

	var end time.Time
	switch settings.Frequency {
	case FrequencyMonthly:
		if settings.StartDayOfMonth < 1 || settings.StartDayOfMonth > 31 {
			return PayPeriod{}, settings, ErrScheduleNotConfigured
		}
		nextStart := clampedMonthDay(start.Year(), start.Month()+1, settings.StartDayOfMonth)
		end = nextStart.AddDate(0, 0, -1)
	case FrequencyCustom:
		if settings.CustomDays < 1 {
			return PayPeriod{}, settings, ErrScheduleNotConfigured
		}
		end = start.AddDate(0, 0, settings.CustomDays-1)
	default:
		return PayPeriod{}, settings, ErrScheduleNotConfigured
	}

	period := PayPeriod{
		Name:      periodName(start, end),
		StartDate: start,
		EndDate:   end,
		Status:    PeriodStatusActive,
	}

	advanced := settings
	advanced.NextStartDate = end.AddDate(0, 0, 1)
	return period, advanced, nil
}

func periodName(start, end time.Time) string {
	if start.Year() == end.Year() && start.Month() == end.Month() {
		return start.Format("January 2006")
	}
	return fmt.Sprintf("%s - %s", start.Format("2 Jan 2006"), end.Format("2 Jan 2006"))
}

// RangesOverlap treats both ranges as inclusive of their end dates.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
