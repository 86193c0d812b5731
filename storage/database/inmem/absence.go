package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/absence"
)

type absenceRepository struct {
	db *DB
}

var _ absence.Repository = (*absenceRepository)(nil) // interface compliance check

func NewAbsenceRepository(db *DB) *absenceRepository {
	return &absenceRepository{db: db}
}

func (repo *absenceRepository) CreatePermission(_ context.Context, p absence.Permission) (absence.Permission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = uuid.New().String()
	repo.db.permissions[p.ID] = p
	return p, nil
}

func (repo *absenceRepository) GetPermission(_ context.Context, id string) (absence.Permission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.permissions[id]; ok {
		return p, nil
	}
	return absence.Permission{}, absence.ErrNotFound
}

func (repo *absenceRepository) UpdatePermission(_ context.Context, p absence.Permission) (absence.Permission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.permissions[p.ID]; !ok {
		return absence.Permission{}, absence.ErrNotFound
	}
	repo.db.permissions[p.ID] = p
	return p, nil
}

func (repo *absenceRepository) QueryPermissions(_ context.Context, filter *absence.QueryFilter, _ []core.DBOrdering) ([]absence.Permission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	permissions := make([]absence.Permission, 0, len(repo.db.permissions))
	for _, p := range repo.db.permissions {
		if filter != nil {
			if filter.ChildID != "" && p.ChildID != filter.ChildID {
				continue
			}
			if filter.Status != "" && p.Status != filter.Status {
				continue
			}
			if filter.RequestedBy != "" && p.RequestedBy.String != filter.RequestedBy {
				continue
			}
		}
		permissions = append(permissions, p)
	}
	// ordering is ignored here; results sort oldest first
	sort.Slice(permissions, func(i, j int) bool {
		return permissions[i].SubmittedAt.Before(permissions[j].SubmittedAt)
	})
	return permissions, nil
}
