package payrun

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargePopulator is the reference implementation of the Populator
// contract, computing line items straight from the store: one pro-rated
// salary item per compensation record covering the period, and one
// commission/tip item per qualifying charge. It is idempotent per source id
// within the run, so re-invoking it on the same draft adds nothing.
type ChargePopulator struct {
	store StoreAPI
	now   func() time.Time
	newID func() string
}

func NewChargePopulator(store StoreAPI) *ChargePopulator {
	return &ChargePopulator{store: store, now: time.Now, newID: uuid.NewString}
}

func (p *ChargePopulator) Populate(ctx context.Context, run PayRun, period PayPeriod, onlyUnpaid bool) error {
	existing, err := p.store.ItemSourceIDs(ctx, run.ID)
	if err != nil {
		return err
	}

	closed, err := p.store.ListClosedPeriods(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return err
	}

	salaryItems, err := p.salaryItems(ctx, run, period, closed, onlyUnpaid, existing)
	if err != nil {
		return err
	}

	charges, err := p.store.ListCharges(ctx, ChargeFilter{
		Start:        period.StartDate,
		End:          period.EndDate,
		LocationID:   run.LocationID,
		OnlyUnpaid:   onlyUnpaid,
		ExcludeRunID: run.ID,
	})
	if err != nil {
		return err
	}

	items := salaryItems
	for _, charge := range charges {
		if existing[charge.ID] {
			continue
		}
		items = append(items, itemFromCharge(p.newID, p.now, run.ID, charge))
	}

	if len(items) == 0 {
		return nil
	}
	return p.store.InsertItems(ctx, run.ID, items)
}

func (p *ChargePopulator) salaryItems(ctx context.Context, run PayRun, period PayPeriod, closed []ClosedPeriod, onlyUnpaid bool, existing map[string]bool) ([]PayRunItem, error) {
	employees, err := p.store.ListActiveEmployees(ctx, run.LocationID)
	if err != nil {
		return nil, err
	}

	var items []PayRunItem
	var settingIDs []string
	type pending struct {
		item      PayRunItem
		settingID string
	}
	var candidates []pending

	for _, employee := range employees {
		history, err := p.store.ListCompensation(ctx, employee.ID)
		if err != nil {
			return nil, err
		}
		for _, setting := range history {
			if existing[setting.ID] {
				continue
			}
			covered, total := coveredDays(setting, period, closed, employee.LocationID)
			if covered == 0 {
				continue
			}
			amount := setting.BaseAmount
			if covered < total {
				amount = setting.BaseAmount.
					Mul(decimal.NewFromInt(int64(covered))).
					Div(decimal.NewFromInt(int64(total))).
					Round(2)
			}
			sourceID := setting.ID
			candidates = append(candidates, pending{
				settingID: setting.ID,
				item: PayRunItem{
					ID:               p.newID(),
					PayRunID:         run.ID,
					EmployeeID:       employee.ID,
					CompensationType: CompTypeSalary,
					Amount:           amount,
					Description:      "Base pay " + period.Name,
					SourceType:       SourceTypeCompensation,
					SourceID:         &sourceID,
					IsPaid:           false,
					CreatedAt:        p.now(),
				},
			})
			settingIDs = append(settingIDs, setting.ID)
		}
	}

	if onlyUnpaid && len(settingIDs) > 0 {
		alreadyPaid, err := p.store.PaidSourceIDs(ctx, settingIDs)
		if err != nil {
			return nil, err
		}
		for _, candidate := range candidates {
			if !alreadyPaid[candidate.settingID] {
				items = append(items, candidate.item)
			}
		}
		return items, nil
	}

	for _, candidate := range candidates {
		items = append(items, candidate.item)
	}
	return items, nil
}

// itemFromCharge is the single charge-to-item mapping shared by the
// populator and commission recalculation.
func itemFromCharge(newID func() string, now func() time.Time, runID string, charge SourceCharge) PayRunItem {
	compType := CompTypeCommission
	if charge.ChargeType == ChargeTypeTip {
		compType = CompTypeTip
	}
	sourceID := charge.ID
	return PayRunItem{
		ID:               newID(),
		PayRunID:         runID,
		EmployeeID:       charge.EmployeeID,
		CompensationType: compType,
		Amount:           charge.Amount,
		Description:      charge.Description,
		SourceType:       SourceTypeService,
		SourceID:         &sourceID,
		IsPaid:           false,
		CreatedAt:        now(),
	}
}

// coveredDays counts the period's days the compensation record actually
// covers, excluding closed-period days applicable to the employee's
// location, alongside the period's total day count. effectiveTo is
// exclusive: a record closed at a successor's effectiveFrom does not cover
// that day.
func coveredDays(setting CompensationSetting, period PayPeriod, closed []ClosedPeriod, locationID *string) (covered, total int) {
	for day := period.StartDate; !day.After(period.EndDate); day = day.AddDate(0, 0, 1) {
		total++
		if day.Before(setting.EffectiveFrom) {
			continue
		}
		if setting.EffectiveTo != nil && !day.Before(*setting.EffectiveTo) {
			continue
		}
		if dayClosed(day, closed, locationID) {
			continue
		}
		covered++
	}
	return covered, total
}

func dayClosed(day time.Time, closed []ClosedPeriod, locationID *string) bool {
	for _, blackout := range closed {
		if day.Before(blackout.StartDate) || day.After(blackout.EndDate) {
			continue
		}
		if len(blackout.LocationIDs) == 0 {
			return true
		}
		if locationID == nil {
			continue
		}
		for _, id := range blackout.LocationIDs {
			if id == *locationID {
				return true
			}
		}
	}
	return false
}

// ChargeReconciler flips the paid flag on source charges after a run is
// finalized. Bookkeeping only; the payment itself never depends on it.
type ChargeReconciler struct {
	store StoreAPI
}

func NewChargeReconciler(store StoreAPI) *ChargeReconciler {
	return &ChargeReconciler{store: store}
}

func (r *ChargeReconciler) MarkSourcesPaid(ctx context.Context, sourceIDs []string) error {
	return r.store.MarkChargesPaid(ctx, sourceIDs)
}
