package request

import (
	"time"

	"go-leave/internal/leavetype"
)

const timeOfDayLayout = "15:04"

// FieldError is one violated rule. Violations are collected rather than
// short-circuited so a caller gets the complete set in a single round trip.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateFields enforces the per-leave-type structural rules on the date and
// time fields. today is the caller's notion of the current date, truncated to
// day precision before comparison.
func ValidateFields(
	t leavetype.LeaveType,
	today time.Time,
	startDate time.Time,
	endDate *time.Time,
	startTime, endTime *string,
) []FieldError {
	var errs []FieldError

	today = truncateToDay(today)
	start := truncateToDay(startDate)

	if start.Before(today) {
		errs = append(errs, FieldError{
			Field:   "start_date",
			Message: "start date must not be in the past",
		})
	}

	if endDate != nil {
		end := truncateToDay(*endDate)
		if end.Before(start) {
			errs = append(errs, FieldError{
				Field:   "end_date",
				Message: "end date must not precede start date",
			})
		}
		if t.TimeBound() && !end.Equal(start) {
			errs = append(errs, FieldError{
				Field:   "end_date",
				Message: "time-bound leave cannot span multiple days",
			})
		}
	}

	if t.TimeBound() {
		errs = append(errs, validateTimeWindow(startTime, endTime)...)
	} else {
		if startTime != nil {
			errs = append(errs, FieldError{
				Field:   "start_time",
				Message: "start time is not allowed for this leave type",
			})
		}
		if endTime != nil {
			errs = append(errs, FieldError{
				Field:   "end_time",
				Message: "end time is not allowed for this leave type",
			})
		}
	}

	return errs
}

func validateTimeWindow(startTime, endTime *string) []FieldError {
	var errs []FieldError

	if startTime == nil {
		errs = append(errs, FieldError{
			Field:   "start_time",
			Message: "start time is required for this leave type",
		})
	}
	if endTime == nil {
		errs = append(errs, FieldError{
			Field:   "end_time",
			Message: "end time is required for this leave type",
		})
	}
	if startTime == nil || endTime == nil {
		return errs
	}

	st, stErr := time.Parse(timeOfDayLayout, *startTime)
	if stErr != nil {
		errs = append(errs, FieldError{
			Field:   "start_time",
			Message: "invalid time format, expected HH:MM",
		})
	}
	et, etErr := time.Parse(timeOfDayLayout, *endTime)
	if etErr != nil {
		errs = append(errs, FieldError{
			Field:   "end_time",
			Message: "invalid time format, expected HH:MM",
		})
	}
	if stErr == nil && etErr == nil && !st.Before(et) {
		errs = append(errs, FieldError{
			Field:   "start_time",
			Message: "start time must be before end time",
		})
	}

	return errs
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
