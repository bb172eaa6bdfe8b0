package payrun

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AddCompensation appends a new base-pay record for the employee.
// Compensation history is append-only: the previous open record is closed
// at the new record's effectiveFrom (done by the store in one transaction),
// so at most one record per employee ever has effectiveTo = null.
func (s *Service) AddCompensation(ctx context.Context, employeeID string, baseAmount decimal.Decimal, effectiveFrom time.Time) (CompensationSetting, error) {
	if baseAmount.IsNegative() {
		return CompensationSetting{}, ErrNegativeBaseAmount
	}
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return CompensationSetting{}, err
	}

	setting := CompensationSetting{
		ID:            s.newID(),
		EmployeeID:    employeeID,
		BaseAmount:    baseAmount,
		EffectiveFrom: DateOnly(effectiveFrom),
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateCompensation(ctx, setting); err != nil {
		return CompensationSetting{}, err
	}
	return setting, nil
}

func (s *Service) ListCompensation(ctx context.Context, employeeID string) ([]CompensationSetting, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.ListCompensation(ctx, employeeID)
}
