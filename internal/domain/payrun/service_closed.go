package payrun

import (
	"context"
	"time"
)

// Closed periods are blackout ranges the populator skips. They are created
// and removed whole, never edited in place.

func (s *Service) CreateClosedPeriod(ctx context.Context, start, end time.Time, description string, locationIDs []string) (ClosedPeriod, error) {
	start = DateOnly(start)
	end = DateOnly(end)
	if end.Before(start) {
		return ClosedPeriod{}, ErrInvalidDateRange
	}
	closed := ClosedPeriod{
		ID:          s.newID(),
		StartDate:   start,
		EndDate:     end,
		Description: description,
		LocationIDs: locationIDs,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateClosedPeriod(ctx, closed); err != nil {
		return ClosedPeriod{}, err
	}
	return closed, nil
}

func (s *Service) ListClosedPeriods(ctx context.Context, start, end time.Time) ([]ClosedPeriod, error) {
	return s.store.ListClosedPeriods(ctx, start, end)
}

func (s *Service) DeleteClosedPeriod(ctx context.Context, id string) error {
	return s.store.DeleteClosedPeriod(ctx, id)
}
