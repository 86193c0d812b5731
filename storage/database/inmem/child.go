package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/child"
)

type childRepository struct {
	db *DB
}

var _ child.Repository = (*childRepository)(nil) // interface compliance check

func NewChildRepository(db *DB) *childRepository {
	return &childRepository{db: db}
}

func (repo *childRepository) CreateChild(_ context.Context, ch child.Child) (child.Child, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	ch.ID = uuid.New().String()
	repo.db.children[ch.ID] = ch
	return ch, nil
}

func (repo *childRepository) GetChild(_ context.Context, id string) (child.Child, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if ch, ok := repo.db.children[id]; ok {
		return ch, nil
	}
	return child.Child{}, child.ErrNotFound
}

func (repo *childRepository) QueryChildren(_ context.Context, filter *child.QueryFilter, _ []core.DBOrdering) ([]child.Child, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	children := make([]child.Child, 0, len(repo.db.children))
	for _, ch := range repo.db.children {
		if filter != nil {
			if filter.Active != nil && ch.Active != *filter.Active {
				continue
			}
			if filter.Search != "" &&
				!strings.Contains(strings.ToLower(ch.FullName), strings.ToLower(filter.Search)) {
				continue
			}
		}
		children = append(children, ch)
	}
	sortChildren(children)
	return children, nil
}

func (repo *childRepository) UpdateChild(_ context.Context, ch child.Child) (child.Child, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.children[ch.ID]; !ok {
		return child.Child{}, child.ErrNotFound
	}
	repo.db.children[ch.ID] = ch
	return ch, nil
}

func (repo *childRepository) LinkGuardian(_ context.Context, userID, childID string) (child.Guardianship, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, g := range repo.db.guardianships {
		if g.UserID == userID && g.ChildID == childID {
			return g, child.ErrGuardianExists
		}
	}
	g := child.Guardianship{ID: uuid.New().String(), UserID: userID, ChildID: childID}
	repo.db.guardianships[g.ID] = g
	return g, nil
}

func (repo *childRepository) QueryChildrenByGuardian(_ context.Context, userID string) ([]child.Child, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	seen := make(map[string]struct{})
	var children []child.Child
	for _, g := range repo.db.guardianships {
		if g.UserID != userID {
			continue
		}
		if _, ok := seen[g.ChildID]; ok {
			continue
		}
		seen[g.ChildID] = struct{}{}
		if ch, ok := repo.db.children[g.ChildID]; ok && ch.Active {
			children = append(children, ch)
		}
	}
	sortChildren(children)
	return children, nil
}

func (repo *childRepository) CreatePickupPerson(_ context.Context, pp child.PickupPerson) (child.PickupPerson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	pp.ID = uuid.New().String()
	repo.db.pickups[pp.ID] = pp
	return pp, nil
}

func (repo *childRepository) GetPickupPerson(_ context.Context, id string) (child.PickupPerson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if pp, ok := repo.db.pickups[id]; ok {
		return pp, nil
	}
	return child.PickupPerson{}, child.ErrPickupNotFound
}

func (repo *childRepository) QueryPickupPeople(_ context.Context, childID string) ([]child.PickupPerson, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var pickups []child.PickupPerson
	for _, pp := range repo.db.pickups {
		if pp.ChildID == childID {
			pickups = append(pickups, pp)
		}
	}
	sort.Slice(pickups, func(i, j int) bool { return pickups[i].FullName < pickups[j].FullName })
	return pickups, nil
}

func (repo *childRepository) UpdatePickupPerson(_ context.Context, pp child.PickupPerson) (child.PickupPerson, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.pickups[pp.ID]; !ok {
		return child.PickupPerson{}, child.ErrPickupNotFound
	}
	repo.db.pickups[pp.ID] = pp
	return pp, nil
}

func (repo *childRepository) DeletePickupPerson(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.pickups, id)
	return nil
}

func sortChildren(children []child.Child) {
	sort.Slice(children, func(i, j int) bool { return children[i].FullName < children[j].FullName })
}
