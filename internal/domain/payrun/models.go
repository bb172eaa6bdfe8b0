package payrun

import (
	"time"

	"github.com/shopspring/decimal"
)

type CompensationSetting struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employeeId"`
	BaseAmount    decimal.Decimal `json:"baseAmount"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	EffectiveTo   *time.Time      `json:"effectiveTo"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PayPeriod struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScheduleSettings is the single persisted row generateNextPayPeriod reads
// and advances. NextStartDate is read-then-written, so callers must go
// through the store's settings lock.
type ScheduleSettings struct {
	Frequency       string    `json:"frequency"`
	StartDayOfMonth int       `json:"startDayOfMonth"`
	CustomDays      int       `json:"customDays"`
	NextStartDate   time.Time `json:"nextStartDate"`
}

type PayRun struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	PayPeriodID     string     `json:"payPeriodId"`
	LocationID      *string    `json:"locationId"`
	Status          string     `json:"status"`
	IsSupplementary bool       `json:"isSupplementary"`
	PaidDate        *time.Time `json:"paidDate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type PayRunItem struct {
	ID               string          `json:"id"`
	PayRunID         string          `json:"payRunId"`
	EmployeeID       string          `json:"employeeId"`
	CompensationType string          `json:"compensationType"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	SourceType       string          `json:"sourceType"`
	SourceID         *string         `json:"sourceId"`
	IsPaid           bool            `json:"isPaid"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type ClosedPeriod struct {
	ID          string    `json:"id"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description"`
	LocationIDs []string  `json:"locationIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Summary struct {
	Earnings       decimal.Decimal `json:"earnings"`
	Other          decimal.Decimal `json:"other"`
	Total          decimal.Decimal `json:"total"`
	Paid           decimal.Decimal `json:"paid"`
	ToPay          decimal.Decimal `json:"toPay"`
	TotalEmployees int             `json:"totalEmployees"`
}

type EmployeeSummary struct {
	EmployeeID string `json:"employeeId"`
	Summary
}

type RunDetails struct {
	Run     PayRun       `json:"run"`
	Period  PayPeriod    `json:"period"`
	Items   []PayRunItem `json:"items"`
	Summary Summary      `json:"summary"`
}

// Employee and SourceCharge are read-only views of records owned by the
// scheduling/booking side of the system. The engine never creates them.
type Employee struct {
	ID         string  `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	LocationID *string `json:"locationId"`
	Status     string  `json:"status"`
}

// SourceCharge is one completed, paid-for booking charge that can back a
// commission or tip line item.
type SourceCharge struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employeeId"`
	LocationID  *string         `json:"locationId"`
	ChargeType  string          `json:"chargeType"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ServiceDate time.Time       `json:"serviceDate"`
}

type AdjustmentInput struct {
	EmployeeID       string          `json:"employeeId"`
	CompensationType string          `json:"compensationType"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	IsAddition       bool            `json:"isAddition"`
}

type RunFilter struct {
	Start      time.Time
	End        time.Time
	LocationID *string
}

// ChargeFilter selects source charges eligible to back commission/tip
// items. Charges attached to a non-supplementary run other than
// ExcludeRunID are never returned; OnlyUnpaid further excludes charges
// that already back an isPaid item anywhere.
type ChargeFilter struct {
	Start        time.Time
	End          time.Time
	LocationID   *string
	OnlyUnpaid   bool
	ExcludeRunID string
}
