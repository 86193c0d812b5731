package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/classroom"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) *classroomRepository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateTeacher(_ context.Context, t classroom.Teacher) (classroom.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = uuid.New().String()
	repo.db.teachers[t.ID] = t
	return t, nil
}

func (repo *classroomRepository) GetTeacher(_ context.Context, id string) (classroom.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return t, nil
	}
	return classroom.Teacher{}, classroom.ErrTeacherNotFound
}

func (repo *classroomRepository) QueryTeachers(_ context.Context, _ []core.DBOrdering) ([]classroom.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]classroom.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].FullName < teachers[j].FullName })
	return teachers, nil
}

func (repo *classroomRepository) UpdateTeacher(_ context.Context, t classroom.Teacher) (classroom.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.teachers[t.ID]; !ok {
		return classroom.Teacher{}, classroom.ErrTeacherNotFound
	}
	repo.db.teachers[t.ID] = t
	return t, nil
}

func (repo *classroomRepository) CreateRoom(_ context.Context, r classroom.Room) (classroom.Room, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	r.ID = uuid.New().String()
	repo.db.rooms[r.ID] = r
	return r, nil
}

func (repo *classroomRepository) GetRoom(_ context.Context, id string) (classroom.Room, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if r, ok := repo.db.rooms[id]; ok {
		return r, nil
	}
	return classroom.Room{}, classroom.ErrRoomNotFound
}

func (repo *classroomRepository) QueryRooms(_ context.Context, _ []core.DBOrdering) ([]classroom.Room, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rooms := make([]classroom.Room, 0, len(repo.db.rooms))
	for _, r := range repo.db.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (repo *classroomRepository) UpdateRoom(_ context.Context, r classroom.Room) (classroom.Room, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.rooms[r.ID]; !ok {
		return classroom.Room{}, classroom.ErrRoomNotFound
	}
	repo.db.rooms[r.ID] = r
	return r, nil
}

func (repo *classroomRepository) CreateSection(_ context.Context, s classroom.Section) (classroom.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = uuid.New().String()
	repo.db.sections[s.ID] = s
	return s, nil
}

func (repo *classroomRepository) GetSection(_ context.Context, id string) (classroom.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.sections[id]; ok {
		return s, nil
	}
	return classroom.Section{}, classroom.ErrSectionNotFound
}

func (repo *classroomRepository) QuerySections(_ context.Context, _ []core.DBOrdering) ([]classroom.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	sections := make([]classroom.Section, 0, len(repo.db.sections))
	for _, s := range repo.db.sections {
		sections = append(sections, s)
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Name < sections[j].Name })
	return sections, nil
}

func (repo *classroomRepository) UpdateSection(_ context.Context, s classroom.Section) (classroom.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.sections[s.ID]; !ok {
		return classroom.Section{}, classroom.ErrSectionNotFound
	}
	repo.db.sections[s.ID] = s
	return s, nil
}

func (repo *classroomRepository) UpsertAssignment(_ context.Context, a classroom.Assignment) (classroom.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if existing, ok := repo.db.assignments[a.ChildID]; ok {
		a.ID = existing.ID
	} else {
		a.ID = uuid.New().String()
	}
	repo.db.assignments[a.ChildID] = a
	return a, nil
}

func (repo *classroomRepository) GetAssignmentByChild(_ context.Context, childID string) (classroom.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.assignments[childID]; ok {
		return a, nil
	}
	return classroom.Assignment{}, classroom.ErrAssignmentNotFound
}

func (repo *classroomRepository) CreateSchedule(_ context.Context, s classroom.Schedule) (classroom.Schedule, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = uuid.New().String()
	repo.db.schedules[s.ID] = s
	return s, nil
}

func (repo *classroomRepository) QuerySchedules(_ context.Context, sectionID string) ([]classroom.Schedule, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var slots []classroom.Schedule
	for _, s := range repo.db.schedules {
		if s.SectionID == sectionID {
			slots = append(slots, s)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Weekday != slots[j].Weekday {
			return slots[i].Weekday < slots[j].Weekday
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

func (repo *classroomRepository) DeleteSchedule(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.schedules, id)
	return nil
}
