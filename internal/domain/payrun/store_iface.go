package payrun

import (
	"context"
	"time"
)

// StoreAPI is the persistence surface the engine runs on. Mutating methods
// that touch a single pay run must serialize on that run (the pgx store
// locks the run row); WithScheduleSettings must serialize on the settings
// row. Read methods never block writers.
type StoreAPI interface {
	// Pay periods.
	CreatePeriod(ctx context.Context, period PayPeriod) error
	GetPeriod(ctx context.Context, id string) (PayPeriod, error)
	ListPeriods(ctx context.Context, status string) ([]PayPeriod, error)
	SetPeriodStatus(ctx context.Context, id, status string) error
	ActivePeriodOverlapping(ctx context.Context, start, end time.Time) (bool, error)

	// Schedule settings. The callback runs while the settings row is locked;
	// the returned settings are persisted and the returned period (if any)
	// inserted in the same transaction. Overlap with an active period fails
	// the whole transaction with ErrPeriodOverlap.
	GetScheduleSettings(ctx context.Context) (ScheduleSettings, error)
	UpdateScheduleSettings(ctx context.Context, settings ScheduleSettings) error
	WithScheduleSettings(ctx context.Context, fn func(ScheduleSettings) (ScheduleSettings, *PayPeriod, error)) error

	// Pay runs.
	CreateRun(ctx context.Context, run PayRun) error
	DeleteRun(ctx context.Context, id string) error
	GetRun(ctx context.Context, id string) (PayRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]PayRun, error)
	// UpdateRunStatus applies the change only when the run is currently in
	// fromStatus; otherwise ErrInvalidTransition (ErrRunNotFound if absent).
	UpdateRunStatus(ctx context.Context, id, fromStatus, toStatus string) error
	// MarkRunPaid transitions fromStatus to paid, stamps paidDate and flips
	// every item to isPaid in one transaction.
	MarkRunPaid(ctx context.Context, id, fromStatus string, paidDate time.Time) error

	// Pay run items.
	ListItems(ctx context.Context, runID string) ([]PayRunItem, error)
	GetItem(ctx context.Context, itemID string) (PayRunItem, error)
	// InsertItems appends items to a mutable run (ErrImmutableRun otherwise).
	InsertItems(ctx context.Context, runID string, items []PayRunItem) error
	// DeleteManualItem removes one manual item from a mutable run and
	// returns the owning run id.
	DeleteManualItem(ctx context.Context, itemID string) (string, error)
	// ReplaceCommissionItems atomically swaps a mutable run's system-owned
	// commission items for the given set.
	ReplaceCommissionItems(ctx context.Context, runID string, items []PayRunItem) error
	ItemSourceIDs(ctx context.Context, runID string) (map[string]bool, error)
	// RunSummaries is the delegated bulk computation; it must reproduce
	// Summarize exactly.
	RunSummaries(ctx context.Context, runIDs []string) (map[string]Summary, error)

	// Compensation ledger. CreateCompensation closes the employee's current
	// open record (effectiveTo = new effectiveFrom) in the same transaction.
	CreateCompensation(ctx context.Context, setting CompensationSetting) error
	ListCompensation(ctx context.Context, employeeID string) ([]CompensationSetting, error)

	// Closed periods.
	CreateClosedPeriod(ctx context.Context, closed ClosedPeriod) error
	ListClosedPeriods(ctx context.Context, start, end time.Time) ([]ClosedPeriod, error)
	DeleteClosedPeriod(ctx context.Context, id string) error

	// Read-only views of externally owned records.
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListActiveEmployees(ctx context.Context, locationID *string) ([]Employee, error)
	// ListCharges returns completed paid-for charges matching the filter.
	ListCharges(ctx context.Context, filter ChargeFilter) ([]SourceCharge, error)
	// PaidSourceIDs reports which of the given source ids already back an
	// isPaid item in any run.
	PaidSourceIDs(ctx context.Context, sourceIDs []string) (map[string]bool, error)
	MarkChargesPaid(ctx context.Context, chargeIDs []string) error
}

// Populator fills a draft pay run with computed line items. Implementations
// must be idempotent per source id within the run and must respect closed
// periods and the onlyUnpaid restriction.
type Populator interface {
	Populate(ctx context.Context, run PayRun, period PayPeriod, onlyUnpaid bool) error
}

// Reconciler syncs external payment bookkeeping after a run is paid.
// Failures are surfaced for retry, never rolled back into the payment.
type Reconciler interface {
	MarkSourcesPaid(ctx context.Context, sourceIDs []string) error
}

// RetryQueue re-runs best-effort work out of band. Satisfied by
// platform/jobs.Service.
type RetryQueue interface {
	Enqueue(jobType string, run func(context.Context) (any, error))
}
