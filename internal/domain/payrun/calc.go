package payrun

import (
	"sort"

	"github.com/shopspring/decimal"
)

func isEarningType(compensationType string) bool {
	switch compensationType {
	case CompTypeSalary, CompTypeCommission, CompTypeTip:
		return true
	}
	return false
}

// Summarize computes the reference totals for a run's items:
//
//	earnings = sum of salary/commission/tip amounts
//	other    = sum of everything else
//	total    = earnings + other
//	paid     = sum of isPaid amounts, or total once the run is paid
//	toPay    = total - paid, zero once the run is paid
//
// Any delegated computation (e.g. the store's SQL aggregate) must reproduce
// these figures exactly.
func Summarize(runStatus string, items []PayRunItem) Summary {
	earnings := decimal.Zero
	other := decimal.Zero
	paid := decimal.Zero
	employees := map[string]struct{}{}

	for _, item := range items {
		if isEarningType(item.CompensationType) {
			earnings = earnings.Add(item.Amount)
		} else {
			other = other.Add(item.Amount)
		}
		if item.IsPaid {
			paid = paid.Add(item.Amount)
		}
		employees[item.EmployeeID] = struct{}{}
	}

	total := earnings.Add(other)
	if runStatus == RunStatusPaid {
		paid = total
	}

	return Summary{
		Earnings:       earnings,
		Other:          other,
		Total:          total,
		Paid:           paid,
		ToPay:          total.Sub(paid),
		TotalEmployees: len(employees),
	}
}

// SummarizeByEmployee applies the same formula per employeeId partition,
// sorted by employee id for stable output.
func SummarizeByEmployee(runStatus string, items []PayRunItem) []EmployeeSummary {
	byEmployee := map[string][]PayRunItem{}
	for _, item := range items {
		byEmployee[item.EmployeeID] = append(byEmployee[item.EmployeeID], item)
	}

	ids := make([]string, 0, len(byEmployee))
	for id := range byEmployee {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]EmployeeSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, EmployeeSummary{
			EmployeeID: id,
			Summary:    Summarize(runStatus, byEmployee[id]),
		})
	}
	return out
}
