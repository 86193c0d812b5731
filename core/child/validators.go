package child

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

var (
	errEndBeforeStart  = errors.New("end date must be on or after the start date")
	errEndTimeNotAfter = errors.New("end time must be after the start time")
	errTimesIncomplete = errors.New("both start and end times are required for partial windows")
)

// validateWindow checks a date range plus an optional time-of-day window:
// the end date (when given) may not precede the start date; times come in
// pairs and the end time must be strictly after the start time.
func validateWindow(from time.Time, until null.Time, startTime, endTime null.String) error {
	if until.Valid && core.Day(until.Time).Before(core.Day(from)) {
		return core.NewValidationError(errEndBeforeStart,
			core.FieldError{Field: "authorized_until", Error: errEndBeforeStart.Error()})
	}

	if startTime.Valid != endTime.Valid {
		return core.NewValidationError(errTimesIncomplete,
			core.FieldError{Field: "start_time", Error: errTimesIncomplete.Error()},
			core.FieldError{Field: "end_time", Error: errTimesIncomplete.Error()})
	}
	if startTime.Valid {
		start, err := core.ParseClock(startTime.String)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
		}
		end, err := core.ParseClock(endTime.String)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
		}
		if !end.After(start) {
			return core.NewValidationError(errEndTimeNotAfter,
				core.FieldError{Field: "end_time", Error: errEndTimeNotAfter.Error()})
		}
	}
	return nil
}
