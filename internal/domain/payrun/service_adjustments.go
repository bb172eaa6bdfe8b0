package payrun

import "context"

// AddAdjustment inserts one manually entered line item. The stored amount
// carries the sign: +|amount| for additions, -|amount| for deductions.
// Adjustments are always created unpaid; only the payment processor marks
// items paid.
func (s *Service) AddAdjustment(ctx context.Context, runID string, input AdjustmentInput) (PayRunItem, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return PayRunItem{}, err
	}
	if !RunMutable(run.Status) {
		return PayRunItem{}, ErrImmutableRun
	}
	if input.Amount.IsZero() {
		return PayRunItem{}, ErrZeroAdjustment
	}
	switch input.CompensationType {
	case CompTypeSalary, CompTypeCommission, CompTypeTip, CompTypeAdjustment:
	default:
		return PayRunItem{}, ErrUnknownCompensationType
	}
	if _, err := s.store.GetEmployee(ctx, input.EmployeeID); err != nil {
		return PayRunItem{}, err
	}

	amount := input.Amount.Abs()
	if !input.IsAddition {
		amount = amount.Neg()
	}
	item := PayRunItem{
		ID:               s.newID(),
		PayRunID:         runID,
		EmployeeID:       input.EmployeeID,
		CompensationType: input.CompensationType,
		Amount:           amount,
		Description:      input.Description,
		SourceType:       SourceTypeManual,
		IsPaid:           false,
		CreatedAt:        s.now(),
	}
	if err := s.store.InsertItems(ctx, runID, []PayRunItem{item}); err != nil {
		return PayRunItem{}, err
	}
	return item, nil
}

// DeleteAdjustment removes one manual item and returns the owning run id.
// System-populated items are protected.
func (s *Service) DeleteAdjustment(ctx context.Context, itemID string) (string, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return "", err
	}
	if item.SourceType != SourceTypeManual {
		return "", ErrNotManualItem
	}
	run, err := s.store.GetRun(ctx, item.PayRunID)
	if err != nil {
		return "", err
	}
	if !RunMutable(run.Status) {
		return "", ErrImmutableRun
	}
	return s.store.DeleteManualItem(ctx, itemID)
}
