package classroom

import (
	"context"
	"errors"
	"time"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/user"
)

var (
	// errors
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrAssignmentNotFound = errors.New("child has no section assignment")
	ErrScheduleNotFound   = errors.New("schedule slot not found")
	ErrScheduleOverlap    = errors.New("schedule slot overlaps an existing slot")
	ErrNotAuthorized      = errors.New("not authorized")

	errEndTimeNotAfter = errors.New("end time must be after the start time")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		QueryTeachers(ctx context.Context, ordering []core.DBOrdering) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)

		CreateRoom(ctx context.Context, r Room) (Room, error)
		GetRoom(ctx context.Context, id string) (Room, error)
		QueryRooms(ctx context.Context, ordering []core.DBOrdering) ([]Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)

		CreateSection(ctx context.Context, s Section) (Section, error)
		GetSection(ctx context.Context, id string) (Section, error)
		QuerySections(ctx context.Context, ordering []core.DBOrdering) ([]Section, error)
		UpdateSection(ctx context.Context, s Section) (Section, error)

		// UpsertAssignment replaces any existing assignment for the child.
		UpsertAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByChild(ctx context.Context, childID string) (Assignment, error)

		CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
		QuerySchedules(ctx context.Context, sectionID string) ([]Schedule, error)
		DeleteSchedule(ctx context.Context, id string) error
	}

	Service interface {
		CreateTeacher(ctx context.Context, actor user.User, nt NewTeacher) (Teacher, error)
		Teachers(ctx context.Context, ordering []core.DBOrdering) ([]Teacher, error)
		CreateRoom(ctx context.Context, actor user.User, nr NewRoom) (Room, error)
		Rooms(ctx context.Context, ordering []core.DBOrdering) ([]Room, error)
		CreateSection(ctx context.Context, actor user.User, ns NewSection) (Section, error)
		Sections(ctx context.Context, ordering []core.DBOrdering) ([]Section, error)

		// AssignChild places a child in a section, replacing any prior
		// assignment.
		AssignChild(ctx context.Context, actor user.User, childID, sectionID string) (Assignment, error)
		ChildAssignment(ctx context.Context, childID string) (Assignment, error)
		// SectionTeacher resolves the teacher in charge of a child's
		// section, via the child's assignment.
		SectionTeacher(ctx context.Context, childID string) (Teacher, error)

		AddSchedule(ctx context.Context, actor user.User, sectionID string, ns NewSchedule) (Schedule, error)
		SectionSchedules(ctx context.Context, sectionID string) ([]Schedule, error)
		RemoveSchedule(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateTeacher(ctx context.Context, actor user.User, nt NewTeacher) (Teacher, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Teacher{}, ErrNotAuthorized
	}
	now := time.Now().UTC()
	return svc.repo.CreateTeacher(ctx, Teacher{
		FullName:  nt.FullName,
		Phone:     nt.Phone,
		Email:     nt.Email,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Teachers(ctx context.Context, ordering []core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, ordering)
}

func (svc *service) CreateRoom(ctx context.Context, actor user.User, nr NewRoom) (Room, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Room{}, ErrNotAuthorized
	}
	now := time.Now().UTC()
	return svc.repo.CreateRoom(ctx, Room{
		Name:      nr.Name,
		Capacity:  nr.Capacity,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Rooms(ctx context.Context, ordering []core.DBOrdering) ([]Room, error) {
	return svc.repo.QueryRooms(ctx, ordering)
}

func (svc *service) CreateSection(ctx context.Context, actor user.User, ns NewSection) (Section, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Section{}, ErrNotAuthorized
	}
	if _, err := svc.repo.GetRoom(ctx, ns.RoomID); err != nil {
		return Section{}, err
	}
	if ns.TeacherID.Valid {
		if _, err := svc.repo.GetTeacher(ctx, ns.TeacherID.String); err != nil {
			return Section{}, err
		}
	}
	now := time.Now().UTC()
	return svc.repo.CreateSection(ctx, Section{
		Name:      ns.Name,
		RoomID:    ns.RoomID,
		TeacherID: ns.TeacherID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Sections(ctx context.Context, ordering []core.DBOrdering) ([]Section, error) {
	return svc.repo.QuerySections(ctx, ordering)
}

func (svc *service) AssignChild(ctx context.Context, actor user.User, childID, sectionID string) (Assignment, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Assignment{}, ErrNotAuthorized
	}
	if _, err := svc.repo.GetSection(ctx, sectionID); err != nil {
		return Assignment{}, err
	}
	a := Assignment{
		ChildID:    childID,
		SectionID:  sectionID,
		AssignedAt: time.Now().UTC(),
	}
	if actor.ID != "" {
		a.AssignedBy.SetValid(actor.ID)
	}
	return svc.repo.UpsertAssignment(ctx, a)
}

func (svc *service) ChildAssignment(ctx context.Context, childID string) (Assignment, error) {
	return svc.repo.GetAssignmentByChild(ctx, childID)
}

func (svc *service) SectionTeacher(ctx context.Context, childID string) (Teacher, error) {
	a, err := svc.repo.GetAssignmentByChild(ctx, childID)
	if err != nil {
		return Teacher{}, err
	}
	section, err := svc.repo.GetSection(ctx, a.SectionID)
	if err != nil {
		return Teacher{}, err
	}
	if !section.TeacherID.Valid {
		return Teacher{}, ErrTeacherNotFound
	}
	return svc.repo.GetTeacher(ctx, section.TeacherID.String)
}

func (svc *service) AddSchedule(ctx context.Context, actor user.User, sectionID string, ns NewSchedule) (Schedule, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Schedule{}, ErrNotAuthorized
	}
	if _, err := svc.repo.GetSection(ctx, sectionID); err != nil {
		return Schedule{}, err
	}

	slot := Schedule{
		SectionID: sectionID,
		Weekday:   ns.Weekday,
		StartTime: ns.StartTime,
		EndTime:   ns.EndTime,
		CreatedAt: time.Now().UTC(),
	}
	existing, err := svc.repo.QuerySchedules(ctx, sectionID)
	if err != nil {
		return Schedule{}, err
	}
	for _, other := range existing {
		if slot.Overlaps(other) {
			return Schedule{}, ErrScheduleOverlap
		}
	}
	return svc.repo.CreateSchedule(ctx, slot)
}

func (svc *service) SectionSchedules(ctx context.Context, sectionID string) ([]Schedule, error) {
	return svc.repo.QuerySchedules(ctx, sectionID)
}

func (svc *service) RemoveSchedule(ctx context.Context, actor user.User, id string) error {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return ErrNotAuthorized
	}
	return svc.repo.DeleteSchedule(ctx, id)
}
