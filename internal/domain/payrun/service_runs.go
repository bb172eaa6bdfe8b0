package payrun

import (
	"context"
	"fmt"
	"strings"
)

// CreatePayRun creates a draft run against the period and invokes the
// populator. Population failure rolls the draft back so no orphan remains.
func (s *Service) CreatePayRun(ctx context.Context, payPeriodID, name string, locationID *string, onlyUnpaid bool) (PayRun, error) {
	period, err := s.store.GetPeriod(ctx, payPeriodID)
	if err != nil {
		return PayRun{}, err
	}

	if strings.TrimSpace(name) == "" {
		name = period.Name
	}
	run := PayRun{
		ID:              s.newID(),
		Name:            name,
		PayPeriodID:     period.ID,
		LocationID:      locationID,
		Status:          RunStatusDraft,
		IsSupplementary: onlyUnpaid,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return PayRun{}, err
	}

	popCtx, cancel := context.WithTimeout(ctx, s.populateTimeout)
	defer cancel()
	if err := s.populator.Populate(popCtx, run, period, onlyUnpaid); err != nil {
		if delErr := s.store.DeleteRun(ctx, run.ID); delErr != nil {
			return PayRun{}, fmt.Errorf("%w: populate failed (%v) and rollback failed: %v", ErrExternalService, err, delErr)
		}
		return PayRun{}, fmt.Errorf("%w: populate: %v", ErrExternalService, err)
	}
	return run, nil
}

func (s *Service) UpdatePayRunStatus(ctx context.Context, runID, newStatus string) (PayRun, error) {
	if !ValidRunStatus(newStatus) {
		return PayRun{}, ErrInvalidTransition
	}
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return PayRun{}, err
	}
	if !CanTransition(run.Status, newStatus) {
		return PayRun{}, ErrInvalidTransition
	}

	if newStatus == RunStatusPaid {
		paidDate := s.now()
		if err := s.store.MarkRunPaid(ctx, runID, run.Status, paidDate); err != nil {
			return PayRun{}, err
		}
		run.Status = RunStatusPaid
		run.PaidDate = &paidDate
		return run, nil
	}

	if err := s.store.UpdateRunStatus(ctx, runID, run.Status, newStatus); err != nil {
		return PayRun{}, err
	}
	run.Status = newStatus
	return run, nil
}

func (s *Service) ListPayRuns(ctx context.Context, filter RunFilter) ([]PayRun, map[string]Summary, error) {
	runs, err := s.store.ListRuns(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	summaries, err := s.store.RunSummaries(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return runs, summaries, nil
}

func (s *Service) GetPayRunDetails(ctx context.Context, runID string) (RunDetails, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return RunDetails{}, err
	}
	period, err := s.store.GetPeriod(ctx, run.PayPeriodID)
	if err != nil {
		return RunDetails{}, err
	}
	items, err := s.store.ListItems(ctx, runID)
	if err != nil {
		return RunDetails{}, err
	}
	return RunDetails{
		Run:     run,
		Period:  period,
		Items:   items,
		Summary: Summarize(run.Status, items),
	}, nil
}

func (s *Service) GetPayRunSummary(ctx context.Context, runID string) (Summary, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return Summary{}, err
	}
	items, err := s.store.ListItems(ctx, runID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(run.Status, items), nil
}

func (s *Service) GetEmployeePayRunSummaries(ctx context.Context, runID string) ([]EmployeeSummary, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, runID)
	if err != nil {
		return nil, err
	}
	return SummarizeByEmployee(run.Status, items), nil
}
