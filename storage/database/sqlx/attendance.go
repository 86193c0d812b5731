package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	query := `
		INSERT INTO attendance (id, child_id, date, present, justification, recorded_by, recorded_at, updated_at)
		VALUES (:id, :child_id, :date, :present, :justification, :recorded_by, :recorded_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, rec); err != nil {
		if isUniqueViolation(err) {
			return attendance.Record{}, attendance.ErrRecordExists
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, childID string, date time.Time) (attendance.Record, error) {
	var rec attendance.Record
	err := repo.db.GetContext(ctx, &rec,
		`SELECT * FROM attendance WHERE child_id = $1 AND date = $2`, childID, core.Day(date))
	if err == sql.ErrNoRows {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, errors.Wrap(err, "getting attendance record")
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	query := `
		UPDATE attendance SET present = :present, justification = :justification,
			recorded_by = :recorded_by, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (repo *attendanceRepository) QueryRecordsByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	err := repo.db.SelectContext(ctx, &records,
		`SELECT * FROM attendance WHERE date = $1 ORDER BY child_id ASC`, core.Day(date))
	return records, errors.Wrap(err, "querying attendance by date")
}

func (repo *attendanceRepository) QueryRecordsByChild(ctx context.Context, childID string, from, until time.Time) ([]attendance.Record, error) {
	query := `SELECT * FROM attendance WHERE child_id = $1`
	args := []interface{}{childID}
	if !from.IsZero() {
		args = append(args, core.Day(from))
		query += ` AND date >= $` + itoa(len(args))
	}
	if !until.IsZero() {
		args = append(args, core.Day(until))
		query += ` AND date <= $` + itoa(len(args))
	}
	query += ` ORDER BY date ASC`

	records := make([]attendance.Record, 0)
	err := repo.db.SelectContext(ctx, &records, query, args...)
	return records, errors.Wrap(err, "querying attendance by child")
}
