package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
)

type childRepository struct {
	db *sqlx.DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *sqlx.DB) *childRepository {
	return &childRepository{db: db}
}

func (repo *childRepository) CreateChild(ctx context.Context, ch child.Child) (child.Child, error) {
	ch.ID = uuid.New().String()
	query := `
		INSERT INTO child (
			id, full_name, age, birth_date, gender,
			guardian_name, guardian_phone, guardian_email, guardian_relation,
			weight_kg, height_cm, blood_type, allergies, illnesses, medications,
			medical_notes, medical_document, active, registered_by, created_at, updated_at
		) VALUES (
			:id, :full_name, :age, :birth_date, :gender,
			:guardian_name, :guardian_phone, :guardian_email, :guardian_relation,
			:weight_kg, :height_cm, :blood_type, :allergies, :illnesses, :medications,
			:medical_notes, :medical_document, :active, :registered_by, :created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, ch); err != nil {
		return child.Child{}, errors.Wrap(err, "inserting child")
	}
	return ch, nil
}

func (repo *childRepository) GetChild(ctx context.Context, id string) (child.Child, error) {
	var ch child.Child
	err := repo.db.GetContext(ctx, &ch, `SELECT * FROM child WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return child.Child{}, child.ErrNotFound
	}
	return ch, errors.Wrap(err, "getting child")
}

func (repo *childRepository) QueryChildren(ctx context.Context, filter *child.QueryFilter, ordering []core.DBOrdering) ([]child.Child, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			conds = append(conds, "full_name ILIKE $1")
		}
		if filter.Active != nil {
			args = append(args, *filter.Active)
			conds = append(conds, "active = $"+itoa(len(args)))
		}
	}

	query := `SELECT * FROM child`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "full_name ASC")

	children := make([]child.Child, 0)
	err := repo.db.SelectContext(ctx, &children, query, args...)
	return children, errors.Wrap(err, "querying children")
}

func (repo *childRepository) UpdateChild(ctx context.Context, ch child.Child) (child.Child, error) {
	query := `
		UPDATE child SET
			full_name = :full_name, age = :age, birth_date = :birth_date, gender = :gender,
			guardian_name = :guardian_name, guardian_phone = :guardian_phone,
			guardian_email = :guardian_email, guardian_relation = :guardian_relation,
			weight_kg = :weight_kg, height_cm = :height_cm, blood_type = :blood_type,
			allergies = :allergies, illnesses = :illnesses, medications = :medications,
			medical_notes = :medical_notes, medical_document = :medical_document,
			active = :active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, ch)
	if err != nil {
		return child.Child{}, errors.Wrap(err, "updating child")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return child.Child{}, child.ErrNotFound
	}
	return ch, nil
}

func (repo *childRepository) LinkGuardian(ctx context.Context, userID, childID string) (child.Guardianship, error) {
	g := child.Guardianship{
		ID:        uuid.New().String(),
		UserID:    userID,
		ChildID:   childID,
		CreatedAt: time.Now().UTC(),
	}
	query := `
		INSERT INTO guardianship (id, user_id, child_id, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := repo.db.ExecContext(ctx, query, g.ID, g.UserID, g.ChildID, g.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return child.Guardianship{}, child.ErrGuardianExists
		}
		return child.Guardianship{}, errors.Wrap(err, "linking guardian")
	}
	return g, nil
}

func (repo *childRepository) QueryChildrenByGuardian(ctx context.Context, userID string) ([]child.Child, error) {
	query := `
		SELECT DISTINCT c.* FROM child c
		JOIN guardianship g ON g.child_id = c.id
		WHERE g.user_id = $1 AND c.active = true
		ORDER BY c.full_name ASC`
	children := make([]child.Child, 0)
	err := repo.db.SelectContext(ctx, &children, query, userID)
	return children, errors.Wrap(err, "querying children by guardian")
}

func (repo *childRepository) CreatePickupPerson(ctx context.Context, pp child.PickupPerson) (child.PickupPerson, error) {
	pp.ID = uuid.New().String()
	query := `
		INSERT INTO pickup_person (
			id, child_id, full_name, identity_document, phone, email, relationship, address,
			authorized_from, authorized_until, authorized_days, start_time, end_time,
			signature, notes, active, registered_by, created_at, updated_at
		) VALUES (
			:id, :child_id, :full_name, :identity_document, :phone, :email, :relationship, :address,
			:authorized_from, :authorized_until, :authorized_days, :start_time, :end_time,
			:signature, :notes, :active, :registered_by, :created_at, :updated_at
		)`
	if _, err := repo.db.NamedExecContext(ctx, query, pp); err != nil {
		return child.PickupPerson{}, errors.Wrap(err, "inserting pickup person")
	}
	return pp, nil
}

func (repo *childRepository) GetPickupPerson(ctx context.Context, id string) (child.PickupPerson, error) {
	var pp child.PickupPerson
	err := repo.db.GetContext(ctx, &pp, `SELECT * FROM pickup_person WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return child.PickupPerson{}, child.ErrPickupNotFound
	}
	return pp, errors.Wrap(err, "getting pickup person")
}

func (repo *childRepository) QueryPickupPeople(ctx context.Context, childID string) ([]child.PickupPerson, error) {
	pickups := make([]child.PickupPerson, 0)
	err := repo.db.SelectContext(ctx, &pickups,
		`SELECT * FROM pickup_person WHERE child_id = $1 ORDER BY full_name ASC`, childID)
	return pickups, errors.Wrap(err, "querying pickup people")
}

func (repo *childRepository) UpdatePickupPerson(ctx context.Context, pp child.PickupPerson) (child.PickupPerson, error) {
	query := `
		UPDATE pickup_person SET
			full_name = :full_name, identity_document = :identity_document, phone = :phone,
			email = :email, relationship = :relationship, address = :address,
			authorized_from = :authorized_from, authorized_until = :authorized_until,
			authorized_days = :authorized_days, start_time = :start_time, end_time = :end_time,
			signature = :signature, notes = :notes, active = :active, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, pp)
	if err != nil {
		return child.PickupPerson{}, errors.Wrap(err, "updating pickup person")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return child.PickupPerson{}, child.ErrPickupNotFound
	}
	return pp, nil
}

func (repo *childRepository) DeletePickupPerson(ctx context.Context, id string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM pickup_person WHERE id = $1`, id)
	return errors.Wrap(err, "deleting pickup person")
}
