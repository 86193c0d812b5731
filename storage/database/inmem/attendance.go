package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// unique (child, date)
	for _, existing := range repo.db.records {
		if existing.ChildID == rec.ChildID && existing.Date.Equal(rec.Date) {
			return attendance.Record{}, attendance.ErrRecordExists
		}
	}
	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = rec
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, childID string, date time.Time) (attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, rec := range repo.db.records {
		if rec.ChildID == childID && rec.Date.Equal(core.Day(date)) {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.records[rec.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	repo.db.records[rec.ID] = rec
	return rec, nil
}

func (repo *attendanceRepository) QueryRecordsByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	day := core.Day(date)
	var records []attendance.Record
	for _, rec := range repo.db.records {
		if rec.Date.Equal(day) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ChildID < records[j].ChildID })
	return records, nil
}

func (repo *attendanceRepository) QueryRecordsByChild(_ context.Context, childID string, from, until time.Time) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var records []attendance.Record
	for _, rec := range repo.db.records {
		if rec.ChildID != childID {
			continue
		}
		if !from.IsZero() && rec.Date.Before(from) {
			continue
		}
		if !until.IsZero() && rec.Date.After(until) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
