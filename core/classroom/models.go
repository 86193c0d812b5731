package classroom

import (
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

// Teacher is a staff record, distinct from a login principal with the
// teacher role. Sections point here for the approval notifications.
type Teacher struct {
	ID        string      `json:"id" db:"id"`
	FullName  string      `json:"full_name" db:"full_name"`
	Phone     string      `json:"phone" db:"phone"`
	Email     null.String `json:"email" db:"email"`
	Active    bool        `json:"active" db:"active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// EmailAddress returns the teacher's mail address; zero when no email
// is on file.
func (t Teacher) EmailAddress() mail.Address {
	if !t.Email.Valid {
		return mail.Address{}
	}
	return mail.Address{Name: t.FullName, Address: t.Email.String}
}

type Room struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Section is a named group of children meeting in a room, optionally led
// by a teacher.
type Section struct {
	ID        string      `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	RoomID    string      `json:"room_id" db:"room_id"`
	TeacherID null.String `json:"teacher_id" db:"teacher_id"`
	Active    bool        `json:"active" db:"active"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Assignment places a child in a section. A child has at most one
// assignment; re-assigning replaces it.
type Assignment struct {
	ID         string      `json:"id" db:"id"`
	ChildID    string      `json:"child_id" db:"child_id"`
	SectionID  string      `json:"section_id" db:"section_id"`
	AssignedAt time.Time   `json:"assigned_at" db:"assigned_at"`
	AssignedBy null.String `json:"assigned_by" db:"assigned_by"`
}

// Schedule is a weekly time slot for a section. Slots for the same
// section and weekday may not overlap.
type Schedule struct {
	ID        string       `json:"id" db:"id"`
	SectionID string       `json:"section_id" db:"section_id"`
	Weekday   time.Weekday `json:"weekday" db:"weekday"`
	StartTime string       `json:"start_time" db:"start_time"` // core.ClockLayout
	EndTime   string       `json:"end_time" db:"end_time"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Overlaps reports whether two slots on the same section and weekday
// share any time. Malformed times never overlap.
func (s Schedule) Overlaps(other Schedule) bool {
	if s.SectionID != other.SectionID || s.Weekday != other.Weekday {
		return false
	}
	aStart, err := core.ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := core.ParseClock(s.EndTime)
	if err != nil {
		return false
	}
	bStart, err := core.ParseClock(other.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := core.ParseClock(other.EndTime)
	if err != nil {
		return false
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type NewTeacher struct {
	FullName string      `json:"full_name" validate:"required"`
	Phone    string      `json:"phone"`
	Email    null.String `json:"email" validate:"omitempty,email"`
}

func (nt *NewTeacher) Validate() error {
	nt.FullName = core.CleanString(nt.FullName)
	nt.Phone = core.CleanString(nt.Phone)
	if nt.Email.Valid {
		nt.Email.String = core.CleanString(nt.Email.String, true /* lower */)
	}
	return core.Validate.Struct(nt)
}

type NewRoom struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"gte=1"`
}

func (nr *NewRoom) Validate() error {
	nr.Name = core.CleanString(nr.Name)
	return core.Validate.Struct(nr)
}

type NewSection struct {
	Name      string      `json:"name" validate:"required"`
	RoomID    string      `json:"room_id" validate:"required,uuid4"`
	TeacherID null.String `json:"teacher_id" validate:"omitempty,uuid4"`
}

func (ns *NewSection) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

type NewSchedule struct {
	Weekday   time.Weekday `json:"weekday" validate:"gte=0,lte=6"`
	StartTime string       `json:"start_time" validate:"required,clock"`
	EndTime   string       `json:"end_time" validate:"required,clock"`
}

func (ns *NewSchedule) Validate() error {
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	start, _ := core.ParseClock(ns.StartTime)
	end, _ := core.ParseClock(ns.EndTime)
	if !end.After(start) {
		return core.NewValidationError(errEndTimeNotAfter,
			core.FieldError{Field: "end_time", Error: errEndTimeNotAfter.Error()})
	}
	return nil
}
