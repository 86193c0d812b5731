package absence

import (
	"context"
	"errors"
	"time"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
	"github.com/ues-sigs/guarderia/core/classroom"
	"github.com/ues-sigs/guarderia/core/notify"
	"github.com/ues-sigs/guarderia/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("permission not found")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrInvalidTransition = errors.New("permission has already been resolved")
	ErrInvalidDecision   = errors.New("decision must be approved or rejected")
)

// warnings on committed writes whose notification did not go through
const (
	WarnGuardianNotNotified = "no se pudo enviar la confirmación al responsable"
	WarnTeacherNotNotified  = "no se pudo notificar a la maestra de la sección"
)

type (
	Repository interface {
		CreatePermission(ctx context.Context, p Permission) (Permission, error)
		GetPermission(ctx context.Context, id string) (Permission, error)
		UpdatePermission(ctx context.Context, p Permission) (Permission, error)
		// QueryPermissions applies AND operation on available QueryFilter fields.
		QueryPermissions(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Permission, error)
	}

	Service interface {
		// Submit files a new pending permission request. Parents may only
		// file for children in their visibility set.
		Submit(ctx context.Context, actor user.User, np NewPermission) (Result, error)
		// Resolve moves a pending permission to approved or rejected.
		// Only admins resolve; resolved permissions are immutable.
		// Approval notifies the child's section teacher best-effort.
		Resolve(ctx context.Context, actor user.User, id, decision, notes string) (Result, error)
		Get(ctx context.Context, actor user.User, id string) (Permission, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Permission, error)
		// Pending lists unresolved permissions, oldest first.
		Pending(ctx context.Context, actor user.User) ([]Permission, error)
	}

	service struct {
		repo         Repository
		childSvc     child.Service
		classroomSvc classroom.Service
		dispatcher   notify.Dispatcher
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, childSvc child.Service, classroomSvc classroom.Service, dispatcher notify.Dispatcher) Service {
	return &service{repo: repo, childSvc: childSvc, classroomSvc: classroomSvc, dispatcher: dispatcher}
}

func (svc *service) Submit(ctx context.Context, actor user.User, np NewPermission) (Result, error) {
	// child.Service.Get enforces the visibility contract for every role:
	// parents outside their set and unassigned principals are refused.
	ch, err := svc.childSvc.Get(ctx, actor, np.ChildID)
	if err != nil {
		return Result{}, err
	}

	p := Permission{
		ChildID:     np.ChildID,
		Type:        np.Type,
		StartDate:   core.Day(np.StartDate),
		EndDate:     np.EndDate,
		StartTime:   np.StartTime,
		EndTime:     np.EndTime,
		Reason:      np.Reason,
		Document:    np.Document,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	if p.EndDate.Valid {
		p.EndDate.Time = core.Day(p.EndDate.Time)
	}
	if actor.ID != "" {
		p.RequestedBy.SetValid(actor.ID)
	}

	p, err = svc.repo.CreatePermission(ctx, p)
	if err != nil {
		return Result{}, err
	}

	res := Result{Permission: p}
	to, ok := ch.GuardianAddress()
	if !ok || !svc.dispatcher.PermissionSubmitted(to, ch.FullName, p.StartDate, p.Type) {
		res.Warning = WarnGuardianNotNotified
	}
	return res, nil
}

func (svc *service) Resolve(ctx context.Context, actor user.User, id, decision, notes string) (Result, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Result{}, ErrNotAuthorized
	}
	if decision != StatusApproved && decision != StatusRejected {
		return Result{}, core.NewValidationError(ErrInvalidDecision,
			core.FieldError{Field: "decision", Error: ErrInvalidDecision.Error()})
	}

	p, err := svc.repo.GetPermission(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !p.Pending() {
		return Result{}, ErrInvalidTransition
	}

	p.Status = decision
	p.ResolutionNotes = core.CleanString(notes)
	p.ResolvedAt.SetValid(time.Now().UTC())
	if actor.ID != "" {
		p.ResolvedBy.SetValid(actor.ID)
	}
	p, err = svc.repo.UpdatePermission(ctx, p)
	if err != nil {
		return Result{}, err
	}

	res := Result{Permission: p}
	if p.Status == StatusApproved {
		res.Warning = svc.notifyTeacher(ctx, actor, p)
	}
	return res, nil
}

// notifyTeacher informs the child's section teacher of an approved
// absence. Any gap along the way (no assignment, no teacher, no email,
// provider failure) degrades to a warning.
func (svc *service) notifyTeacher(ctx context.Context, actor user.User, p Permission) string {
	teacher, err := svc.classroomSvc.SectionTeacher(ctx, p.ChildID)
	if err != nil || !teacher.Email.Valid || teacher.Email.String == "" {
		return WarnTeacherNotNotified
	}
	ch, err := svc.childSvc.Get(ctx, actor, p.ChildID)
	if err != nil {
		return WarnTeacherNotNotified
	}

	to := teacher.EmailAddress()
	if !svc.dispatcher.PermissionApproved(to, ch.FullName, p.Period(), p.Type, p.Reason, p.TimeWindow()) {
		return WarnTeacherNotNotified
	}
	return ""
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Permission, error) {
	p, err := svc.repo.GetPermission(ctx, id)
	if err != nil {
		return Permission{}, err
	}
	ok, err := svc.childSvc.CanView(ctx, actor, p.ChildID)
	if err != nil {
		return Permission{}, err
	}
	if !ok {
		return Permission{}, ErrNotAuthorized
	}
	return p, nil
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Permission, error) {
	switch user.Resolve(actor) {
	case user.RoleResolvedAdmin, user.RoleResolvedTeacher:
		return svc.repo.QueryPermissions(ctx, filter, ordering)
	case user.RoleResolvedParent:
		// parents only see their own submissions
		if filter == nil {
			filter = &QueryFilter{}
		}
		filter.RequestedBy = actor.ID
		return svc.repo.QueryPermissions(ctx, filter, ordering)
	}
	return []Permission{}, nil
}

func (svc *service) Pending(ctx context.Context, actor user.User) ([]Permission, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return nil, ErrNotAuthorized
	}
	return svc.repo.QueryPermissions(ctx,
		&QueryFilter{Status: StatusPending},
		[]core.DBOrdering{{Field: "submitted_at", Ascending: true}},
	)
}
