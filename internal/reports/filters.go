package reports

import (
	"errors"
	"time"
)

// GetDateRange resolves a preset relative to now, or a custom YYYY-MM-DD
// range whose end day is included. Unknown presets fall back to weekly.
func GetDateRange(now time.Time, dateRange, startStr, endStr string) (time.Time, time.Time, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endOf := func(day time.Time) time.Time { return day.AddDate(0, 0, 1).Add(-time.Second) }

	switch dateRange {
	case DateRangeDaily:
		return today, endOf(today), nil
	case DateRangeWeekly:
		return today.AddDate(0, 0, -6), endOf(today), nil
	case DateRangeMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0).Add(-time.Second), nil
	case DateRangeYearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0).Add(-time.Second), nil
	case DateRangeCustom:
		if startStr == "" || endStr == "" {
			return time.Time{}, time.Time{}, errors.New("start_date and end_date required for custom range")
		}
		start, err := time.Parse(time.DateOnly, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := time.Parse(time.DateOnly, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, errors.New("start_date must be before end_date")
		}
		return start, endOf(end), nil
	default:
		return GetDateRange(now, DateRangeWeekly, "", "")
	}
}
