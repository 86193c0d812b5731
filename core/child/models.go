package child

import (
	"net/mail"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
)

// Child holds a registered child, their guardian-of-record contact and
// medical profile. Children are never hard-deleted: deactivation keeps
// attendance history intact.
type Child struct {
	ID           string      `json:"id" db:"id"`
	FullName     string      `json:"full_name" db:"full_name"`
	Age          int         `json:"age" db:"age"`
	BirthDate    null.Time   `json:"birth_date" db:"birth_date"`
	Gender       null.String `json:"gender" db:"gender"` // M | F | O

	// guardian-of-record: primary contact, receives automated notifications
	GuardianName     string      `json:"guardian_name" db:"guardian_name"`
	GuardianPhone    string      `json:"guardian_phone" db:"guardian_phone"`
	GuardianEmail    null.String `json:"guardian_email" db:"guardian_email"`
	GuardianRelation string      `json:"guardian_relation" db:"guardian_relation"`

	// medical profile
	WeightKG        null.Float64 `json:"weight_kg" db:"weight_kg"`
	HeightCM        null.Float64 `json:"height_cm" db:"height_cm"`
	BloodType       null.String  `json:"blood_type" db:"blood_type"`
	Allergies       string       `json:"allergies" db:"allergies"`
	Illnesses       string       `json:"illnesses" db:"illnesses"`
	Medications     string       `json:"medications" db:"medications"`
	MedicalNotes    string       `json:"medical_notes" db:"medical_notes"`
	MedicalDocument null.String  `json:"medical_document" db:"medical_document"`

	Active       bool        `json:"active" db:"active"`
	RegisteredBy null.String `json:"registered_by" db:"registered_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (c Child) HasAllergies() bool {
	return strings.TrimSpace(c.Allergies) != ""
}

func (c Child) HasMedications() bool {
	return strings.TrimSpace(c.Medications) != ""
}

// GuardianAddress returns the guardian-of-record's mail address;
// ok is false when no email is on file.
func (c Child) GuardianAddress() (mail.Address, bool) {
	if !c.GuardianEmail.Valid || c.GuardianEmail.String == "" {
		return mail.Address{}, false
	}
	return mail.Address{Name: c.GuardianName, Address: c.GuardianEmail.String}, true
}

// Guardianship links a parent principal to a child; it is the sole source
// of parent-role visibility.
type Guardianship struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ChildID   string    `json:"child_id" db:"child_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PickupPerson is authorized, within a date/day/time window, to collect a
// child. Distinct from the guardian-of-record.
type PickupPerson struct {
	ID               string      `json:"id" db:"id"`
	ChildID          string      `json:"child_id" db:"child_id"`
	FullName         string      `json:"full_name" db:"full_name"`
	IdentityDocument string      `json:"identity_document" db:"identity_document"`
	Phone            string      `json:"phone" db:"phone"`
	Email            null.String `json:"email" db:"email"`
	Relationship     string      `json:"relationship" db:"relationship"`
	Address          string      `json:"address" db:"address"`

	AuthorizedFrom  time.Time   `json:"authorized_from" db:"authorized_from"`
	AuthorizedUntil null.Time   `json:"authorized_until" db:"authorized_until"` // nil = permanent
	AuthorizedDays  string      `json:"authorized_days" db:"authorized_days"`   // e.g. "L,M,X,J,V"
	StartTime       null.String `json:"start_time" db:"start_time"`             // core.ClockLayout
	EndTime         null.String `json:"end_time" db:"end_time"`

	Signature string `json:"signature" db:"signature"` // base64
	Notes     string `json:"notes" db:"notes"`
	Active    bool   `json:"active" db:"active"`

	RegisteredBy null.String `json:"registered_by" db:"registered_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// AuthorizationCurrent reports whether the pickup authorization is in
// effect on the given day.
func (p PickupPerson) AuthorizationCurrent(asOf time.Time) bool {
	if !p.Active {
		return false
	}
	day := core.Day(asOf)
	if day.Before(core.Day(p.AuthorizedFrom)) {
		return false
	}
	if p.AuthorizedUntil.Valid && day.After(core.Day(p.AuthorizedUntil.Time)) {
		return false
	}
	return true
}

// AuthorizedDayList splits AuthorizedDays into its day codes.
func (p PickupPerson) AuthorizedDayList() []string {
	if p.AuthorizedDays == "" {
		return nil
	}
	parts := strings.Split(p.AuthorizedDays, ",")
	days := make([]string, 0, len(parts))
	for _, d := range parts {
		if d = strings.TrimSpace(d); d != "" {
			days = append(days, d)
		}
	}
	return days
}

// NewChild contains information needed to register a new Child.
type NewChild struct {
	FullName  string       `json:"full_name" validate:"required"`
	Age       int          `json:"age" validate:"gte=0,lte=12"`
	BirthDate null.Time    `json:"birth_date"`
	Gender    null.String  `json:"gender" validate:"omitempty,oneof=M F O"`

	GuardianName     string      `json:"guardian_name" validate:"required"`
	GuardianPhone    string      `json:"guardian_phone" validate:"required"`
	GuardianEmail    null.String `json:"guardian_email" validate:"omitempty,email"`
	GuardianRelation string      `json:"guardian_relation" validate:"required"`

	WeightKG        null.Float64 `json:"weight_kg" validate:"omitempty,gte=0"`
	HeightCM        null.Float64 `json:"height_cm" validate:"omitempty,gte=0"`
	BloodType       null.String  `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies       string       `json:"allergies"`
	Illnesses       string       `json:"illnesses"`
	Medications     string       `json:"medications"`
	MedicalNotes    string       `json:"medical_notes"`
	MedicalDocument null.String  `json:"medical_document"`
}

func (nc *NewChild) Validate() error {
	nc.FullName = core.CleanString(nc.FullName)
	nc.GuardianName = core.CleanString(nc.GuardianName)
	nc.GuardianPhone = core.CleanString(nc.GuardianPhone)
	nc.GuardianRelation = core.CleanString(nc.GuardianRelation)
	if nc.GuardianEmail.Valid {
		nc.GuardianEmail.String = core.CleanString(nc.GuardianEmail.String, true /* lower */)
	}
	return core.Validate.Struct(nc)
}

// UpdateChild defines what may be modified on an existing Child.
type UpdateChild struct {
	FullName  string       `json:"full_name"`
	Age       *int         `json:"age" validate:"omitempty,gte=0,lte=12"`
	BirthDate null.Time    `json:"birth_date"`
	Gender    null.String  `json:"gender" validate:"omitempty,oneof=M F O"`

	GuardianName     string      `json:"guardian_name"`
	GuardianPhone    string      `json:"guardian_phone"`
	GuardianEmail    null.String `json:"guardian_email" validate:"omitempty,email"`
	GuardianRelation string      `json:"guardian_relation"`

	WeightKG        null.Float64 `json:"weight_kg" validate:"omitempty,gte=0"`
	HeightCM        null.Float64 `json:"height_cm" validate:"omitempty,gte=0"`
	BloodType       null.String  `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies       *string      `json:"allergies"`
	Illnesses       *string      `json:"illnesses"`
	Medications     *string      `json:"medications"`
	MedicalNotes    *string      `json:"medical_notes"`
	MedicalDocument null.String  `json:"medical_document"`

	Active *bool `json:"active"`
}

func (uc *UpdateChild) Validate() error {
	uc.FullName = core.CleanString(uc.FullName)
	if uc.GuardianEmail.Valid {
		uc.GuardianEmail.String = core.CleanString(uc.GuardianEmail.String, true /* lower */)
	}
	return core.Validate.Struct(uc)
}

// NewPickupPerson contains information needed to authorize a pickup person.
type NewPickupPerson struct {
	FullName         string      `json:"full_name" validate:"required"`
	IdentityDocument string      `json:"identity_document" validate:"required"`
	Phone            string      `json:"phone" validate:"required"`
	Email            null.String `json:"email" validate:"omitempty,email"`
	Relationship     string      `json:"relationship" validate:"required"`
	Address          string      `json:"address"`

	AuthorizedFrom  time.Time   `json:"authorized_from" validate:"required"`
	AuthorizedUntil null.Time   `json:"authorized_until"`
	AuthorizedDays  string      `json:"authorized_days"`
	StartTime       null.String `json:"start_time" validate:"omitempty,clock"`
	EndTime         null.String `json:"end_time" validate:"omitempty,clock"`

	Signature string `json:"signature" validate:"required"`
	Notes     string `json:"notes"`
}

func (np *NewPickupPerson) Validate() error {
	np.FullName = core.CleanString(np.FullName)
	np.IdentityDocument = core.CleanString(np.IdentityDocument)
	np.Phone = core.CleanString(np.Phone)
	if np.Email.Valid {
		np.Email.String = core.CleanString(np.Email.String, true /* lower */)
	}
	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	return validateWindow(np.AuthorizedFrom, np.AuthorizedUntil, np.StartTime, np.EndTime)
}

// QueryFilter filters children lists.
type QueryFilter struct {
	Search string `query:"search"`
	Active *bool  `query:"active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
