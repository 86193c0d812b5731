package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/notify"
	"github.com/ues-sigs/guarderia/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("attendance record not found")
	ErrRecordExists  = errors.New("attendance record already exists for this child and date")
	ErrNotAuthorized = errors.New("not authorized")
)

// WarnGuardianNotNotified flags a committed unexcused absence whose
// guardian notification did not go out.
const WarnGuardianNotNotified = "no se pudo notificar al responsable del niño"

type (
	Repository interface {
		// CreateRecord returns ErrRecordExists when a record for the
		// same (child, date) already exists.
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, childID string, date time.Time) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecordsByDate(ctx context.Context, date time.Time) ([]Record, error)
		QueryRecordsByChild(ctx context.Context, childID string, from, until time.Time) ([]Record, error)
	}

	Service interface {
		// Set records or re-records a child's attendance for a day. An
		// unexcused absence triggers the guardian notification; delivery
		// problems surface as Result.Warning, never as an error.
		Set(ctx context.Context, actor user.User, sa SetAttendance) (Result, error)
		// Register lists the actor's visible children with their record
		// for a date.
		Register(ctx context.Context, actor user.User, date time.Time) ([]DayEntry, error)
		ChildHistory(ctx context.Context, actor user.User, childID string, from, until time.Time) ([]Record, error)
	}

	service struct {
		repo       Repository
		childSvc   child.Service
		dispatcher notify.Dispatcher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, childSvc child.Service, dispatcher notify.Dispatcher) Service {
	return &service{repo: repo, childSvc: childSvc, dispatcher: dispatcher}
}

func (svc *service) Set(ctx context.Context, actor user.User, sa SetAttendance) (Result, error) {
	if !user.Resolve(actor).IsStaff() {
		return Result{}, ErrNotAuthorized
	}

	ch, err := svc.childSvc.Get(ctx, actor, sa.ChildID)
	if err != nil {
		return Result{}, err
	}

	day := core.Day(sa.Date)
	rec, err := svc.repo.GetRecord(ctx, sa.ChildID, day)
	switch {
	case err == nil:
		rec, err = svc.update(ctx, rec, actor, sa)
	case errors.Is(err, ErrNotFound):
		rec, err = svc.create(ctx, actor, sa, day)
	}
	if err != nil {
		return Result{}, err
	}

	res := Result{Record: rec}
	if rec.Unexcused() {
		to, ok := ch.GuardianAddress()
		if !ok || !svc.dispatcher.UnexcusedAbsence(to, ch.FullName) {
			res.Warning = WarnGuardianNotNotified
		}
	}
	return res, nil
}

func (svc *service) create(ctx context.Context, actor user.User, sa SetAttendance, day time.Time) (Record, error) {
	now := time.Now().UTC()
	rec := Record{
		ChildID:       sa.ChildID,
		Date:          day,
		Present:       sa.Present,
		Justification: justification(sa),
		RecordedAt:    now,
		UpdatedAt:     now,
	}
	if actor.ID != "" {
		rec.RecordedBy.SetValid(actor.ID)
	}

	created, err := svc.repo.CreateRecord(ctx, rec)
	if errors.Is(err, ErrRecordExists) {
		// lost a create race; the unique (child, date) constraint
		// guarantees the other writer's row is there to update
		existing, gerr := svc.repo.GetRecord(ctx, sa.ChildID, day)
		if gerr != nil {
			return Record{}, gerr
		}
		return svc.update(ctx, existing, actor, sa)
	}
	return created, err
}

func (svc *service) update(ctx context.Context, rec Record, actor user.User, sa SetAttendance) (Record, error) {
	rec.Present = sa.Present
	rec.Justification = justification(sa)
	rec.UpdatedAt = time.Now().UTC()
	if actor.ID != "" {
		rec.RecordedBy.SetValid(actor.ID)
	}
	return svc.repo.UpdateRecord(ctx, rec)
}

// justification clears the stored justification whenever the child is
// present, whatever the input carries.
func justification(sa SetAttendance) null.String {
	if sa.Present {
		return null.String{}
	}
	return sa.Justification
}

func (svc *service) Register(ctx context.Context, actor user.User, date time.Time) ([]DayEntry, error) {
	children, err := svc.childSvc.VisibleChildren(ctx, actor)
	if err != nil {
		return nil, err
	}

	day := core.Day(date)
	records, err := svc.repo.QueryRecordsByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	byChild := make(map[string]Record, len(records))
	for _, rec := range records {
		byChild[rec.ChildID] = rec
	}

	entries := make([]DayEntry, 0, len(children))
	for _, ch := range children {
		entry := DayEntry{Child: ch}
		if rec, ok := byChild[ch.ID]; ok {
			rec := rec
			entry.Record = &rec
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (svc *service) ChildHistory(ctx context.Context, actor user.User, childID string, from, until time.Time) ([]Record, error) {
	ok, err := svc.childSvc.CanView(ctx, actor, childID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}
	return svc.repo.QueryRecordsByChild(ctx, childID, core.Day(from), core.Day(until))
}
