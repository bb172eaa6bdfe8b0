package payrun

// Allowed pay run status transitions. paid and cancelled are terminal.
var runTransitions = map[string][]string{
	RunStatusDraft:     {RunStatusPending, RunStatusCancelled},
	RunStatusPending:   {RunStatusApproved, RunStatusCancelled},
	RunStatusApproved:  {RunStatusPaid, RunStatusCancelled},
	RunStatusPaid:      {},
	RunStatusCancelled: {},
}

func ValidRunStatus(status string) bool {
	_, ok := runTransitions[status]
	return ok
}

// CanTransition reports whether a run may move from one status to another.
// Skipping states (e.g. draft straight to paid) is not allowed.
func CanTransition(from, to string) bool {
	for _, next := range runTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RunMutable reports whether a run's items may still be added, removed or
// amended. Paid and cancelled runs are frozen.
func RunMutable(status string) bool {
	return status != RunStatusPaid && status != RunStatusCancelled
}
