package absence

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

// permission types
const (
	TypeMedical  = "medical"
	TypeFamily   = "family"
	TypePersonal = "personal"
)

// permission statuses; approved and rejected are terminal
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Permission is an absence-permission request for a child: a period
// (optionally with a time-of-day window) during which an absence is
// considered justified once approved.
type Permission struct {
	ID      string `json:"id" db:"id"`
	ChildID string `json:"child_id" db:"child_id"`
	Type    string `json:"type" db:"type"`

	StartDate time.Time   `json:"start_date" db:"start_date"` // normalized with core.Day
	EndDate   null.Time   `json:"end_date" db:"end_date"`     // nil = single day
	StartTime null.String `json:"start_time" db:"start_time"` // core.ClockLayout
	EndTime   null.String `json:"end_time" db:"end_time"`

	Reason   string      `json:"reason" db:"reason"`
	Document null.String `json:"document" db:"document"`

	Status          string      `json:"status" db:"status"`
	RequestedBy     null.String `json:"requested_by" db:"requested_by"`
	ResolvedBy      null.String `json:"resolved_by" db:"resolved_by"`
	ResolutionNotes string      `json:"resolution_notes" db:"resolution_notes"`

	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	ResolvedAt  null.Time `json:"resolved_at" db:"resolved_at"`
}

func (p Permission) Pending() bool { return p.Status == StatusPending }

// Period formats the covered dates for display, e.g.
// "del 04/03/2024 al 08/03/2024" or "el 04/03/2024" for a single day.
func (p Permission) Period() string {
	start := p.StartDate.Format("02/01/2006")
	if !p.EndDate.Valid || core.Day(p.EndDate.Time).Equal(core.Day(p.StartDate)) {
		return "el " + start
	}
	return "del " + start + " al " + p.EndDate.Time.Format("02/01/2006")
}

// TimeWindow formats the optional time-of-day window, e.g.
// "de 08:00 a 12:30"; empty when the permission covers whole days.
func (p Permission) TimeWindow() string {
	if !p.StartTime.Valid || !p.EndTime.Valid {
		return ""
	}
	return "de " + p.StartTime.String + " a " + p.EndTime.String
}

// NewPermission contains information needed to submit a permission
// request. It always enters the workflow as pending.
type NewPermission struct {
	ChildID   string      `json:"child_id" validate:"required,uuid4"`
	Type      string      `json:"type" validate:"required,oneof=medical family personal"`
	StartDate time.Time   `json:"start_date" validate:"required"`
	EndDate   null.Time   `json:"end_date"`
	StartTime null.String `json:"start_time" validate:"omitempty,clock"`
	EndTime   null.String `json:"end_time" validate:"omitempty,clock"`
	Reason    string      `json:"reason" validate:"required"`
	Document  null.String `json:"document"`
}

func (np *NewPermission) Validate() error {
	np.Reason = core.CleanString(np.Reason)
	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	return validatePeriod(np.StartDate, np.EndDate, np.StartTime, np.EndTime)
}

// Result is a committed workflow write plus a warning for any
// best-effort notification that did not go through.
type Result struct {
	Permission Permission `json:"permission"`
	Warning    string     `json:"warning,omitempty"`
}

// QueryFilter filters permission lists; fields are ANDed.
type QueryFilter struct {
	ChildID     string `query:"child_id"`
	Status      string `query:"status"`
	RequestedBy string `query:"requested_by"`
}
