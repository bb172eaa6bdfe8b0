package payrun

import "errors"

var (
	ErrPeriodNotFound       = errors.New("pay period not found")
	ErrRunNotFound          = errors.New("pay run not found")
	ErrItemNotFound         = errors.New("pay run item not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrClosedPeriodNotFound = errors.New("closed period not found")

	ErrInvalidDateRange        = errors.New("start date must be before end date")
	ErrPeriodOverlap           = errors.New("date range overlaps an active pay period")
	ErrScheduleNotConfigured   = errors.New("pay period schedule settings are not configured")
	ErrInvalidTransition       = errors.New("pay run status transition not allowed")
	ErrImmutableRun            = errors.New("pay run is paid or cancelled and cannot be modified")
	ErrNotManualItem           = errors.New("only manually entered items can be deleted")
	ErrEmptySelection          = errors.New("at least one employee must be selected")
	ErrRunNotPaid              = errors.New("pay run has not been paid")
	ErrZeroAdjustment          = errors.New("adjustment amount must be non-zero")
	ErrNegativeBaseAmount      = errors.New("base amount must not be negative")
	ErrUnknownCompensationType = errors.New("unknown compensation type")

	// ErrExternalService wraps populator and reconciliation failures. Always
	// joined with the underlying cause so callers can log both.
	ErrExternalService = errors.New("external service call failed")
)
