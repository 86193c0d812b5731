package absence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func errorFields(t *testing.T, err error) []string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("error is not a *core.ValidationError: %v", err)
	}
	return vErr.FieldNames()
}

func TestPermissionPeriod(t *testing.T) {
	p := Permission{StartDate: date(2024, time.March, 4)}
	assert.Equal(t, "el 04/03/2024", p.Period())

	p.EndDate = null.TimeFrom(date(2024, time.March, 4))
	assert.Equal(t, "el 04/03/2024", p.Period())

	p.EndDate = null.TimeFrom(date(2024, time.March, 8))
	assert.Equal(t, "del 04/03/2024 al 08/03/2024", p.Period())
}

func TestPermissionTimeWindow(t *testing.T) {
	var p Permission
	assert.Equal(t, "", p.TimeWindow())

	p.StartTime = null.StringFrom("08:00")
	assert.Equal(t, "", p.TimeWindow())

	p.EndTime = null.StringFrom("12:30")
	assert.Equal(t, "de 08:00 a 12:30", p.TimeWindow())
}

func TestValidatePeriod(t *testing.T) {
	start := date(2024, time.March, 4)

	tests := []struct {
		name      string
		end       null.Time
		startTime null.String
		endTime   null.String
		wantField string // empty means valid
	}{
		{name: "single day"},
		{name: "same end date", end: null.TimeFrom(start)},
		{name: "later end date", end: null.TimeFrom(date(2024, time.March, 8))},
		{
			name:      "end date before start",
			end:       null.TimeFrom(date(2024, time.March, 1)),
			wantField: "end_date",
		},
		{
			name:      "valid partial day",
			startTime: null.StringFrom("08:00"),
			endTime:   null.StringFrom("12:30"),
		},
		{
			name:      "start time alone",
			startTime: null.StringFrom("08:00"),
			wantField: "start_time",
		},
		{
			name:      "end time not after start",
			startTime: null.StringFrom("12:30"),
			endTime:   null.StringFrom("08:00"),
			wantField: "end_time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePeriod(start, tt.end, tt.startTime, tt.endTime)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, errorFields(t, err), tt.wantField)
		})
	}
}

func TestNewPermissionValidate(t *testing.T) {
	np := NewPermission{
		ChildID:   "b3b19a1e-8a21-4769-b8bb-2ffd0cf3a78a",
		Type:      TypeMedical,
		StartDate: date(2024, time.March, 4),
		Reason:    "control pediátrico",
	}
	assert.NoError(t, np.Validate())

	t.Run("unknown type", func(t *testing.T) {
		np := np
		np.Type = "vacation"
		assert.Error(t, np.Validate())
	})
	t.Run("missing reason", func(t *testing.T) {
		np := np
		np.Reason = "   "
		assert.Error(t, np.Validate())
	})
	t.Run("bad child id", func(t *testing.T) {
		np := np
		np.ChildID = "42"
		assert.Error(t, np.Validate())
	})
}
