package attendance

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
)

// Record is a child's attendance for one calendar day. At most one
// record exists per (child, date); re-recording mutates it in place.
type Record struct {
	ID            string      `json:"id" db:"id"`
	ChildID       string      `json:"child_id" db:"child_id"`
	Date          time.Time   `json:"date" db:"date"` // normalized with core.Day
	Present       bool        `json:"present" db:"present"`
	Justification null.String `json:"justification" db:"justification"`
	RecordedBy    null.String `json:"recorded_by" db:"recorded_by"`
	RecordedAt    time.Time   `json:"recorded_at" db:"recorded_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Unexcused reports an absence with no justification on file. This is
// the condition that triggers the guardian notification.
func (r Record) Unexcused() bool {
	return !r.Present && strings.TrimSpace(r.Justification.String) == ""
}

// SetAttendance is the input for recording (or re-recording) a child's
// attendance for a day.
type SetAttendance struct {
	ChildID       string      `json:"child_id" validate:"required,uuid4"`
	Date          time.Time   `json:"date" validate:"required"`
	Present       bool        `json:"present"`
	Justification null.String `json:"justification"`
}

func (sa *SetAttendance) Validate() error {
	if sa.Justification.Valid {
		sa.Justification.String = core.CleanString(sa.Justification.String)
	}
	return core.Validate.Struct(sa)
}

// Result is a committed attendance write plus a warning for any
// best-effort side effect that did not go through.
type Result struct {
	Record  Record `json:"record"`
	Warning string `json:"warning,omitempty"`
}

// DayEntry pairs a child with their attendance record for a date, nil
// when nothing is recorded yet.
type DayEntry struct {
	Child  child.Child `json:"child"`
	Record *Record     `json:"record"`
}
