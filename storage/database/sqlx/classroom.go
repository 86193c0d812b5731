package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/classroom"
)

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) *classroomRepository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateTeacher(ctx context.Context, t classroom.Teacher) (classroom.Teacher, error) {
	t.ID = uuid.New().String()
	query := `
		INSERT INTO teacher (id, full_name, phone, email, active, created_at, updated_at)
		VALUES (:id, :full_name, :phone, :email, :active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, t); err != nil {
		return classroom.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *classroomRepository) GetTeacher(ctx context.Context, id string) (classroom.Teacher, error) {
	var t classroom.Teacher
	err := repo.db.GetContext(ctx, &t, `SELECT * FROM teacher WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return classroom.Teacher{}, classroom.ErrTeacherNotFound
	}
	return t, errors.Wrap(err, "getting teacher")
}

func (repo *classroomRepository) QueryTeachers(ctx context.Context, ordering []core.DBOrdering) ([]classroom.Teacher, error) {
	teachers := make([]classroom.Teacher, 0)
	err := repo.db.SelectContext(ctx, &teachers, `SELECT * FROM teacher`+orderBy(ordering, "full_name ASC"))
	return teachers, errors.Wrap(err, "querying teachers")
}

func (repo *classroomRepository) UpdateTeacher(ctx context.Context, t classroom.Teacher) (classroom.Teacher, error) {
	query := `
		UPDATE teacher SET full_name = :full_name, phone = :phone, email = :email,
			active = :active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return classroom.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.Teacher{}, classroom.ErrTeacherNotFound
	}
	return t, nil
}

func (repo *classroomRepository) CreateRoom(ctx context.Context, r classroom.Room) (classroom.Room, error) {
	r.ID = uuid.New().String()
	query := `
		INSERT INTO room (id, name, capacity, active, created_at, updated_at)
		VALUES (:id, :name, :capacity, :active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, r); err != nil {
		return classroom.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *classroomRepository) GetRoom(ctx context.Context, id string) (classroom.Room, error) {
	var r classroom.Room
	err := repo.db.GetContext(ctx, &r, `SELECT * FROM room WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return classroom.Room{}, classroom.ErrRoomNotFound
	}
	return r, errors.Wrap(err, "getting room")
}

func (repo *classroomRepository) QueryRooms(ctx context.Context, ordering []core.DBOrdering) ([]classroom.Room, error) {
	rooms := make([]classroom.Room, 0)
	err := repo.db.SelectContext(ctx, &rooms, `SELECT * FROM room`+orderBy(ordering, "name ASC"))
	return rooms, errors.Wrap(err, "querying rooms")
}

func (repo *classroomRepository) UpdateRoom(ctx context.Context, r classroom.Room) (classroom.Room, error) {
	query := `
		UPDATE room SET name = :name, capacity = :capacity, active = :active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, r)
	if err != nil {
		return classroom.Room{}, errors.Wrap(err, "updating room")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.Room{}, classroom.ErrRoomNotFound
	}
	return r, nil
}

func (repo *classroomRepository) CreateSection(ctx context.Context, s classroom.Section) (classroom.Section, error) {
	s.ID = uuid.New().String()
	query := `
		INSERT INTO section (id, name, room_id, teacher_id, active, created_at, updated_at)
		VALUES (:id, :name, :room_id, :teacher_id, :active, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, s); err != nil {
		return classroom.Section{}, errors.Wrap(err, "inserting section")
	}
	return s, nil
}

func (repo *classroomRepository) GetSection(ctx context.Context, id string) (classroom.Section, error) {
	var s classroom.Section
	err := repo.db.GetContext(ctx, &s, `SELECT * FROM section WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return classroom.Section{}, classroom.ErrSectionNotFound
	}
	return s, errors.Wrap(err, "getting section")
}

func (repo *classroomRepository) QuerySections(ctx context.Context, ordering []core.DBOrdering) ([]classroom.Section, error) {
	sections := make([]classroom.Section, 0)
	err := repo.db.SelectContext(ctx, &sections, `SELECT * FROM section`+orderBy(ordering, "name ASC"))
	return sections, errors.Wrap(err, "querying sections")
}

func (repo *classroomRepository) UpdateSection(ctx context.Context, s classroom.Section) (classroom.Section, error) {
	query := `
		UPDATE section SET name = :name, room_id = :room_id, teacher_id = :teacher_id,
			active = :active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return classroom.Section{}, errors.Wrap(err, "updating section")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.Section{}, classroom.ErrSectionNotFound
	}
	return s, nil
}

func (repo *classroomRepository) UpsertAssignment(ctx context.Context, a classroom.Assignment) (classroom.Assignment, error) {
	a.ID = uuid.New().String()
	query := `
		INSERT INTO section_assignment (id, child_id, section_id, assigned_at, assigned_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (child_id) DO UPDATE
			SET section_id = EXCLUDED.section_id,
				assigned_at = EXCLUDED.assigned_at,
				assigned_by = EXCLUDED.assigned_by
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, a.ID, a.ChildID, a.SectionID, a.AssignedAt, a.AssignedBy).Scan(&a.ID)
	if err != nil {
		return classroom.Assignment{}, errors.Wrap(err, "upserting assignment")
	}
	return a, nil
}

func (repo *classroomRepository) GetAssignmentByChild(ctx context.Context, childID string) (classroom.Assignment, error) {
	var a classroom.Assignment
	err := repo.db.GetContext(ctx, &a, `SELECT * FROM section_assignment WHERE child_id = $1`, childID)
	if err == sql.ErrNoRows {
		return classroom.Assignment{}, classroom.ErrAssignmentNotFound
	}
	return a, errors.Wrap(err, "getting assignment")
}

func (repo *classroomRepository) CreateSchedule(ctx context.Context, s classroom.Schedule) (classroom.Schedule, error) {
	s.ID = uuid.New().String()
	query := `
		INSERT INTO section_schedule (id, section_id, weekday, start_time, end_time, created_at)
		VALUES (:id, :section_id, :weekday, :start_time, :end_time, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, s); err != nil {
		return classroom.Schedule{}, errors.Wrap(err, "inserting schedule")
	}
	return s, nil
}

func (repo *classroomRepository) QuerySchedules(ctx context.Context, sectionID string) ([]classroom.Schedule, error) {
	slots := make([]classroom.Schedule, 0)
	err := repo.db.SelectContext(ctx, &slots,
		`SELECT * FROM section_schedule WHERE section_id = $1 ORDER BY weekday ASC, start_time ASC`, sectionID)
	return slots, errors.Wrap(err, "querying schedules")
}

func (repo *classroomRepository) DeleteSchedule(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM section_schedule WHERE id = $1`, id)
	return errors.Wrap(err, "deleting schedule")
}
