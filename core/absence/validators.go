package absence

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

var (
	errEndBeforeStart  = errors.New("end date must be on or after the start date")
	errEndTimeNotAfter = errors.New("end time must be after the start time")
	errTimesIncomplete = errors.New("both start and end times are required for partial-day permissions")
)

func validatePeriod(start time.Time, end null.Time, startTime, endTime null.String) error {
	if end.Valid && core.Day(end.Time).Before(core.Day(start)) {
		return core.NewValidationError(errEndBeforeStart,
			core.FieldError{Field: "end_date", Error: errEndBeforeStart.Error()})
	}

	if startTime.Valid != endTime.Valid {
		return core.NewValidationError(errTimesIncomplete,
			core.FieldError{Field: "start_time", Error: errTimesIncomplete.Error()},
			core.FieldError{Field: "end_time", Error: errTimesIncomplete.Error()})
	}
	if startTime.Valid {
		st, err := core.ParseClock(startTime.String)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
		}
		et, err := core.ParseClock(endTime.String)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
		}
		if !et.After(st) {
			return core.NewValidationError(errEndTimeNotAfter,
				core.FieldError{Field: "end_time", Error: errEndTimeNotAfter.Error()})
		}
	}
	return nil
}
