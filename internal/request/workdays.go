package request

import "time"

// BusinessDays counts the weekdays in [start, end] inclusive. A nil end means
// the range covers start alone. Pure weekday count, no holiday calendar.
func BusinessDays(start time.Time, end *time.Time) int {
	from := truncateToDay(start)
	to := from
	if end != nil {
		to = truncateToDay(*end)
	}
	if to.Before(from) {
		return 0
	}

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days++
		}
	}
	return days
}
