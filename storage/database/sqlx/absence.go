package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/absence"
)

type absenceRepository struct {
	db *sqlx.DB
}

var _ absence.Repository = (*absenceRepository)(nil) // interface compliance check

func NewAbsenceRepository(db *sqlx.DB) *absenceRepository {
	return &absenceRepository{db: db}
}

func (repo *absenceRepository) CreatePermission(ctx context.Context, p absence.Permission) (absence.Permission, error) {
	p.ID = uuid.New().String()
	query := `
		INSERT INTO absence_permission (
			id, child_id, type, start_date, end_date, start_time, end_time,
			reason, document, status, requested_by, resolved_by, resolution_notes,
			submitted_at, resolved_at
		) VALUES (
			:id, :child_id, :type, :start_date, :end_date, :start_time, :end_time,
			:reason, :document, :status, :requested_by, :resolved_by, :resolution_notes,
			:submitted_at, :resolved_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, p); err != nil {
		return absence.Permission{}, errors.Wrap(err, "inserting permission")
	}
	return p, nil
}

func (repo *absenceRepository) GetPermission(ctx context.Context, id string) (absence.Permission, error) {
	var p absence.Permission
	err := repo.db.GetContext(ctx, &p, `SELECT * FROM absence_permission WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return absence.Permission{}, absence.ErrNotFound
	}
	return p, errors.Wrap(err, "getting permission")
}

func (repo *absenceRepository) UpdatePermission(ctx context.Context, p absence.Permission) (absence.Permission, error) {
	query := `
		UPDATE absence_permission SET
			status = :status, resolved_by = :resolved_by,
			resolution_notes = :resolution_notes, resolved_at = :resolved_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return absence.Permission{}, errors.Wrap(err, "updating permission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return absence.Permission{}, absence.ErrNotFound
	}
	return p, nil
}

func (repo *absenceRepository) QueryPermissions(ctx context.Context, filter *absence.QueryFilter, ordering []core.DBOrdering) ([]absence.Permission, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		if filter.ChildID != "" {
			args = append(args, filter.ChildID)
			conds = append(conds, "child_id = $"+itoa(len(args)))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			conds = append(conds, "status = $"+itoa(len(args)))
		}
		if filter.RequestedBy != "" {
			args = append(args, filter.RequestedBy)
			conds = append(conds, "requested_by = $"+itoa(len(args)))
		}
	}

	query := `SELECT * FROM absence_permission`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "submitted_at ASC")

	permissions := make([]absence.Permission, 0)
	err := repo.db.SelectContext(ctx, &permissions, query, args...)
	return permissions, errors.Wrap(err, "querying permissions")
}
