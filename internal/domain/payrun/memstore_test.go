package payrun

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory StoreAPI used by the service tests. It mirrors
// the pgx store's semantics, including the status guards and the
// single-open-compensation-record rule.
type memStore struct {
	mu sync.Mutex

	periods      map[string]PayPeriod
	settings     *ScheduleSettings
	runs         map[string]PayRun
	items        map[string]PayRunItem
	compensation map[string][]CompensationSetting
	closed       map[string]ClosedPeriod
	employees    map[string]Employee
	charges      map[string]SourceCharge
	staffPaid    map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		periods:      map[string]PayPeriod{},
		runs:         map[string]PayRun{},
		items:        map[string]PayRunItem{},
		compensation: map[string][]CompensationSetting{},
		closed:       map[string]ClosedPeriod{},
		employees:    map[string]Employee{},
		charges:      map[string]SourceCharge{},
		staffPaid:    map[string]bool{},
	}
}

var _ StoreAPI = (*memStore)(nil)

func (m *memStore) CreatePeriod(_ context.Context, period PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[period.ID] = period
	return nil
}

func (m *memStore) GetPeriod(_ context.Context, id string) (PayPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	period, ok := m.periods[id]
	if !ok {
		return PayPeriod{}, ErrPeriodNotFound
	}
	return period, nil
}

func (m *memStore) ListPeriods(_ context.Context, status string) ([]PayPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PayPeriod
	for _, period := range m.periods {
		if status == "" || period.Status == status {
			out = append(out, period)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (m *memStore) SetPeriodStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	period, ok := m.periods[id]
	if !ok {
		return ErrPeriodNotFound
	}
	period.Status = status
	m.periods[id] = period
	return nil
}

func (m *memStore) ActivePeriodOverlapping(_ context.Context, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeOverlapLocked(start, end), nil
}

func (m *memStore) activeOverlapLocked(start, end time.Time) bool {
	for _, period := range m.periods {
		if period.Status == PeriodStatusActive && RangesOverlap(period.StartDate, period.EndDate, start, end) {
			return true
		}
	}
	return false
}

func (m *memStore) GetScheduleSettings(_ context.Context) (ScheduleSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return ScheduleSettings{}, ErrScheduleNotConfigured
	}
	return *m.settings, nil
}

func (m *memStore) UpdateScheduleSettings(_ context.Context, settings ScheduleSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}

func (m *memStore) WithScheduleSettings(_ context.Context, fn func(ScheduleSettings) (ScheduleSettings, *PayPeriod, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return ErrScheduleNotConfigured
	}
	advanced, period, err := fn(*m.settings)
	if err != nil {
		return err
	}
	if period != nil {
		if m.activeOverlapLocked(period.StartDate, period.EndDate) {
			return ErrPeriodOverlap
		}
		m.periods[period.ID] = *period
	}
	m.settings = &advanced
	return nil
}

func (m *memStore) CreateRun(_ context.Context, run PayRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *memStore) DeleteRun(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok || run.Status == RunStatusPaid {
		return ErrRunNotFound
	}
	delete(m.runs, id)
	for itemID, item := range m.items {
		if item.PayRunID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *memStore) GetRun(_ context.Context, id string) (PayRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return PayRun{}, ErrRunNotFound
	}
	return run, nil
}

func (m *memStore) ListRuns(_ context.Context, filter RunFilter) ([]PayRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PayRun
	for _, run := range m.runs {
		period := m.periods[run.PayPeriodID]
		if !filter.Start.IsZero() && period.EndDate.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && period.StartDate.After(filter.End) {
			continue
		}
		if filter.LocationID != nil && (run.LocationID == nil || *run.LocationID != *filter.LocationID) {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateRunStatus(_ context.Context, id, fromStatus, toStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	if run.Status != fromStatus {
		return ErrInvalidTransition
	}
	run.Status = toStatus
	m.runs[id] = run
	return nil
}

func (m *memStore) MarkRunPaid(_ context.Context, id, fromStatus string, paidDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}
	if run.Status != fromStatus {
		return ErrInvalidTransition
	}
	run.Status = RunStatusPaid
	run.PaidDate = &paidDate
	m.runs[id] = run
	for itemID, item := range m.items {
		if item.PayRunID == id {
			item.IsPaid = true
			m.items[itemID] = item
		}
	}
	return nil
}

func (m *memStore) ListItems(_ context.Context, runID string) ([]PayRunItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemsForRunLocked(runID), nil
}

func (m *memStore) itemsForRunLocked(runID string) []PayRunItem {
	var out []PayRunItem
	for _, item := range m.items {
		if item.PayRunID == runID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) GetItem(_ context.Context, itemID string) (PayRunItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return PayRunItem{}, ErrItemNotFound
	}
	return item, nil
}

func (m *memStore) InsertItems(_ context.Context, runID string, items []PayRunItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	if !RunMutable(run.Status) {
		return ErrImmutableRun
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return nil
}

func (m *memStore) DeleteManualItem(_ context.Context, itemID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return "", ErrItemNotFound
	}
	run, ok := m.runs[item.PayRunID]
	if !ok {
		return "", ErrRunNotFound
	}
	if !RunMutable(run.Status) {
		return "", ErrImmutableRun
	}
	if item.SourceType != SourceTypeManual {
		return "", ErrNotManualItem
	}
	delete(m.items, itemID)
	return item.PayRunID, nil
}

func (m *memStore) ReplaceCommissionItems(_ context.Context, runID string, items []PayRunItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	if !RunMutable(run.Status) {
		return ErrImmutableRun
	}
	for itemID, item := range m.items {
		if item.PayRunID != runID || item.SourceType == SourceTypeManual {
			continue
		}
		if item.CompensationType == CompTypeCommission || item.CompensationType == CompTypeTip {
			delete(m.items, itemID)
		}
	}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return nil
}

func (m *memStore) ItemSourceIDs(_ context.Context, runID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]bool{}
	for _, item := range m.items {
		if item.PayRunID == runID && item.SourceID != nil {
			out[*item.SourceID] = true
		}
	}
	return out, nil
}

func (m *memStore) RunSummaries(_ context.Context, runIDs []string) (map[string]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Summary{}
	for _, runID := range runIDs {
		run, ok := m.runs[runID]
		if !ok {
			continue
		}
		out[runID] = Summarize(run.Status, m.itemsForRunLocked(runID))
	}
	return out, nil
}

func (m *memStore) CreateCompensation(_ context.Context, setting CompensationSetting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := m.compensation[setting.EmployeeID]
	for i := range history {
		if history[i].EffectiveTo == nil {
			closedAt := setting.EffectiveFrom
			history[i].EffectiveTo = &closedAt
		}
	}
	m.compensation[setting.EmployeeID] = append(history, setting)
	return nil
}

func (m *memStore) ListCompensation(_ context.Context, employeeID string) ([]CompensationSetting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := append([]CompensationSetting(nil), m.compensation[employeeID]...)
	sort.Slice(history, func(i, j int) bool { return history[i].EffectiveFrom.Before(history[j].EffectiveFrom) })
	return history, nil
}

func (m *memStore) CreateClosedPeriod(_ context.Context, closed ClosedPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed[closed.ID] = closed
	return nil
}

func (m *memStore) ListClosedPeriods(_ context.Context, start, end time.Time) ([]ClosedPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ClosedPeriod
	for _, closed := range m.closed {
		if !start.IsZero() && closed.EndDate.Before(start) {
			continue
		}
		if !end.IsZero() && closed.StartDate.After(end) {
			continue
		}
		out = append(out, closed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *memStore) DeleteClosedPeriod(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.closed[id]; !ok {
		return ErrClosedPeriodNotFound
	}
	delete(m.closed, id)
	return nil
}

func (m *memStore) GetEmployee(_ context.Context, id string) (Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	employee, ok := m.employees[id]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, nil
}

func (m *memStore) ListActiveEmployees(_ context.Context, locationID *string) ([]Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Employee
	for _, employee := range m.employees {
		if employee.Status != "active" {
			continue
		}
		if locationID != nil && (employee.LocationID == nil || *employee.LocationID != *locationID) {
			continue
		}
		out = append(out, employee)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListCharges(_ context.Context, filter ChargeFilter) ([]SourceCharge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SourceCharge
	for _, charge := range m.charges {
		if charge.ServiceDate.Before(filter.Start) || charge.ServiceDate.After(filter.End) {
			continue
		}
		if filter.LocationID != nil && (charge.LocationID == nil || *charge.LocationID != *filter.LocationID) {
			continue
		}
		if m.chargeAttachedLocked(charge.ID, filter.ExcludeRunID) {
			continue
		}
		if filter.OnlyUnpaid && m.chargePaidLocked(charge.ID) {
			continue
		}
		out = append(out, charge)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceDate.Equal(out[j].ServiceDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].ServiceDate.Before(out[j].ServiceDate)
	})
	return out, nil
}

func (m *memStore) chargeAttachedLocked(chargeID, excludeRunID string) bool {
	for _, item := range m.items {
		if item.SourceID == nil || *item.SourceID != chargeID {
			continue
		}
		run := m.runs[item.PayRunID]
		if !run.IsSupplementary && run.ID != excludeRunID {
			return true
		}
	}
	return false
}

func (m *memStore) chargePaidLocked(chargeID string) bool {
	for _, item := range m.items {
		if item.SourceID != nil && *item.SourceID == chargeID && item.IsPaid {
			return true
		}
	}
	return false
}

func (m *memStore) PaidSourceIDs(_ context.Context, sourceIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range sourceIDs {
		wanted[id] = true
	}
	out := map[string]bool{}
	for _, item := range m.items {
		if item.IsPaid && item.SourceID != nil && wanted[*item.SourceID] {
			out[*item.SourceID] = true
		}
	}
	return out, nil
}

func (m *memStore) MarkChargesPaid(_ context.Context, chargeIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range chargeIDs {
		m.staffPaid[id] = true
	}
	return nil
}
