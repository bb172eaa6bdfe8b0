package shared

import "time"

// ParseDate accepts RFC3339 or YYYY-MM-DD and normalizes the result to a
// UTC calendar date, the precision the payroll tables store.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", value)
	}
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := parsed.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}
