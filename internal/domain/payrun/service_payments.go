package payrun

import (
	"context"
	"fmt"
	"log/slog"
)

const JobReconcileCharges = "reconcile_charges"

// ProcessPayments finalizes a run: the status moves to paid and every item
// is frozen as paid in one transaction. The employeeIds selection is
// validated for non-emptiness only; the transition deliberately covers the
// whole run, since a partially paid run would break the run-level status
// machine (callers wanting a partial payout cancel and create a
// supplementary run instead). Source-charge bookkeeping is reconciled
// best-effort afterwards and retried out of band on failure.
func (s *Service) ProcessPayments(ctx context.Context, runID string, employeeIDs []string) (PayRun, error) {
	if len(employeeIDs) == 0 {
		return PayRun{}, ErrEmptySelection
	}
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return PayRun{}, err
	}
	if !CanTransition(run.Status, RunStatusPaid) {
		return PayRun{}, ErrInvalidTransition
	}

	items, err := s.store.ListItems(ctx, runID)
	if err != nil {
		return PayRun{}, err
	}
	var chargeIDs []string
	for _, item := range items {
		if item.SourceType == SourceTypeService && item.SourceID != nil {
			chargeIDs = append(chargeIDs, *item.SourceID)
		}
	}

	paidDate := s.now()
	if err := s.store.MarkRunPaid(ctx, runID, run.Status, paidDate); err != nil {
		return PayRun{}, err
	}
	run.Status = RunStatusPaid
	run.PaidDate = &paidDate

	s.reconcileCharges(ctx, runID, chargeIDs)
	return run, nil
}

func (s *Service) reconcileCharges(ctx context.Context, runID string, chargeIDs []string) {
	if len(chargeIDs) == 0 {
		return
	}
	recCtx, cancel := context.WithTimeout(ctx, s.reconcileTimeout)
	defer cancel()
	err := s.reconciler.MarkSourcesPaid(recCtx, chargeIDs)
	if err == nil {
		return
	}
	slog.Warn("charge reconciliation failed, scheduling retry",
		"runId", runID, "charges", len(chargeIDs), "err", err)
	if s.retry == nil {
		return
	}
	ids := append([]string(nil), chargeIDs...)
	s.retry.Enqueue(JobReconcileCharges, func(jobCtx context.Context) (any, error) {
		retryCtx, cancel := context.WithTimeout(jobCtx, s.reconcileTimeout)
		defer cancel()
		if err := s.reconciler.MarkSourcesPaid(retryCtx, ids); err != nil {
			return nil, fmt.Errorf("%w: reconcile charges for run %s: %v", ErrExternalService, runID, err)
		}
		return map[string]any{"runId": runID, "charges": len(ids)}, nil
	})
}

// RecalculateCommissions re-derives the run's commission and tip items from
// current charge data. Replaying it on an unchanged dataset yields the same
// item set. Blocked once the run is frozen.
func (s *Service) RecalculateCommissions(ctx context.Context, runID string) ([]PayRunItem, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !RunMutable(run.Status) {
		return nil, ErrImmutableRun
	}
	period, err := s.store.GetPeriod(ctx, run.PayPeriodID)
	if err != nil {
		return nil, err
	}

	charges, err := s.store.ListCharges(ctx, ChargeFilter{
		Start:        period.StartDate,
		End:          period.EndDate,
		LocationID:   run.LocationID,
		OnlyUnpaid:   run.IsSupplementary,
		ExcludeRunID: run.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list charges: %v", ErrExternalService, err)
	}

	items := make([]PayRunItem, 0, len(charges))
	for _, charge := range charges {
		items = append(items, itemFromCharge(s.newID, s.now, run.ID, charge))
	}
	if err := s.store.ReplaceCommissionItems(ctx, runID, items); err != nil {
		return nil, err
	}
	return items, nil
}
