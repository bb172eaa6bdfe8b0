package payrun

const (
	PeriodStatusActive   = "active"
	PeriodStatusArchived = "archived"

	RunStatusDraft     = "draft"
	RunStatusPending   = "pending"
	RunStatusApproved  = "approved"
	RunStatusPaid      = "paid"
	RunStatusCancelled = "cancelled"

	CompTypeSalary     = "salary"
	CompTypeCommission = "commission"
	CompTypeTip        = "tip"
	CompTypeAdjustment = "adjustment"

	SourceTypeService      = "service"
	SourceTypeManual       = "manual"
	SourceTypeLeave        = "leave"
	SourceTypeCompensation = "compensation"

	FrequencyMonthly = "monthly"
	FrequencyCustom  = "custom"

	ChargeTypeCommission = "commission"
	ChargeTypeTip        = "tip"
)
