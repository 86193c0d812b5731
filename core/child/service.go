package child

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ues-sigs/guarderia/core"
	"github.com/ues-sigs/guarderia/core/user"
)

var (
	// errors
	ErrNotFound       = errors.New("child not found")
	ErrPickupNotFound = errors.New("pickup person not found")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrGuardianExists = errors.New("guardianship already exists")
)

type (
	Repository interface {
		CreateChild(ctx context.Context, ch Child) (Child, error)
		GetChild(ctx context.Context, id string) (Child, error)
		// QueryChildren applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on FullName.
		QueryChildren(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error)
		UpdateChild(ctx context.Context, ch Child) (Child, error)

		LinkGuardian(ctx context.Context, userID, childID string) (Guardianship, error)
		// QueryChildrenByGuardian returns the de-duplicated active children
		// linked to the given parent principal.
		QueryChildrenByGuardian(ctx context.Context, userID string) ([]Child, error)

		CreatePickupPerson(ctx context.Context, pp PickupPerson) (PickupPerson, error)
		GetPickupPerson(ctx context.Context, id string) (PickupPerson, error)
		QueryPickupPeople(ctx context.Context, childID string) ([]PickupPerson, error)
		UpdatePickupPerson(ctx context.Context, pp PickupPerson) (PickupPerson, error)
		DeletePickupPerson(ctx context.Context, id string) error
	}

	Service interface {
		Register(ctx context.Context, actor user.User, nc NewChild) (Child, error)
		Get(ctx context.Context, actor user.User, id string) (Child, error)
		Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error)
		// VisibleChildren computes the principal's visibility scope:
		// admin/teacher see all active children, parents only their own,
		// unassigned principals see none.
		VisibleChildren(ctx context.Context, principal user.User) ([]Child, error)
		CanView(ctx context.Context, principal user.User, childID string) (bool, error)
		Update(ctx context.Context, actor user.User, id string, uc UpdateChild) (Child, error)
		Deactivate(ctx context.Context, actor user.User, id string) (Child, error)
		AddGuardian(ctx context.Context, actor user.User, userID, childID string) (Guardianship, error)
		AuthorizePickup(ctx context.Context, actor user.User, childID string, np NewPickupPerson) (PickupPerson, error)
		UpdatePickup(ctx context.Context, actor user.User, id string, np NewPickupPerson) (PickupPerson, error)
		Pickups(ctx context.Context, actor user.User, childID string) ([]PickupPerson, error)
		RemovePickup(ctx context.Context, actor user.User, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Register(ctx context.Context, actor user.User, nc NewChild) (Child, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Child{}, ErrNotAuthorized
	}

	now := time.Now().UTC()
	ch := Child{
		FullName:         nc.FullName,
		Age:              nc.Age,
		BirthDate:        nc.BirthDate,
		Gender:           nc.Gender,
		GuardianName:     nc.GuardianName,
		GuardianPhone:    nc.GuardianPhone,
		GuardianEmail:    nc.GuardianEmail,
		GuardianRelation: nc.GuardianRelation,
		WeightKG:         nc.WeightKG,
		HeightCM:         nc.HeightCM,
		BloodType:        nc.BloodType,
		Allergies:        nc.Allergies,
		Illnesses:        nc.Illnesses,
		Medications:      nc.Medications,
		MedicalNotes:     nc.MedicalNotes,
		MedicalDocument:  nc.MedicalDocument,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if actor.ID != "" {
		ch.RegisteredBy.SetValid(actor.ID)
	}
	return svc.repo.CreateChild(ctx, ch)
}

func (svc *service) Get(ctx context.Context, actor user.User, id string) (Child, error) {
	ok, err := svc.CanView(ctx, actor, id)
	if err != nil {
		return Child{}, err
	}
	if !ok {
		return Child{}, ErrNotAuthorized
	}
	return svc.repo.GetChild(ctx, id)
}

func (svc *service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Child, error) {
	switch user.Resolve(actor) {
	case user.RoleResolvedAdmin, user.RoleResolvedTeacher:
		return svc.repo.QueryChildren(ctx, filter, ordering)
	case user.RoleResolvedParent:
		children, err := svc.repo.QueryChildrenByGuardian(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if filter == nil {
			return children, nil
		}
		return filterChildren(children, filter), nil
	}
	return []Child{}, nil
}

func (svc *service) VisibleChildren(ctx context.Context, principal user.User) ([]Child, error) {
	active := true
	return svc.Query(ctx, principal, &QueryFilter{Active: &active}, nil)
}

func (svc *service) CanView(ctx context.Context, principal user.User, childID string) (bool, error) {
	switch user.Resolve(principal) {
	case user.RoleResolvedAdmin, user.RoleResolvedTeacher:
		return true, nil
	case user.RoleResolvedParent:
		children, err := svc.repo.QueryChildrenByGuardian(ctx, principal.ID)
		if err != nil {
			return false, err
		}
		for _, ch := range children {
			if ch.ID == childID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, id string, uc UpdateChild) (Child, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Child{}, ErrNotAuthorized
	}
	ch, err := svc.repo.GetChild(ctx, id)
	if err != nil {
		return Child{}, err
	}
	applyUpdate(&ch, uc)
	ch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, ch)
}

// Deactivate soft-deletes a child; attendance history is kept.
func (svc *service) Deactivate(ctx context.Context, actor user.User, id string) (Child, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Child{}, ErrNotAuthorized
	}
	ch, err := svc.repo.GetChild(ctx, id)
	if err != nil {
		return Child{}, err
	}
	ch.Active = false
	ch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateChild(ctx, ch)
}

func (svc *service) AddGuardian(ctx context.Context, actor user.User, userID, childID string) (Guardianship, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return Guardianship{}, ErrNotAuthorized
	}
	if _, err := svc.repo.GetChild(ctx, childID); err != nil {
		return Guardianship{}, err
	}
	return svc.repo.LinkGuardian(ctx, userID, childID)
}

func (svc *service) AuthorizePickup(ctx context.Context, actor user.User, childID string, np NewPickupPerson) (PickupPerson, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return PickupPerson{}, ErrNotAuthorized
	}
	if _, err := svc.repo.GetChild(ctx, childID); err != nil {
		return PickupPerson{}, err
	}

	now := time.Now().UTC()
	pp := PickupPerson{
		ChildID:          childID,
		FullName:         np.FullName,
		IdentityDocument: np.IdentityDocument,
		Phone:            np.Phone,
		Email:            np.Email,
		Relationship:     np.Relationship,
		Address:          np.Address,
		AuthorizedFrom:   np.AuthorizedFrom,
		AuthorizedUntil:  np.AuthorizedUntil,
		AuthorizedDays:   np.AuthorizedDays,
		StartTime:        np.StartTime,
		EndTime:          np.EndTime,
		Signature:        np.Signature,
		Notes:            np.Notes,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if actor.ID != "" {
		pp.RegisteredBy.SetValid(actor.ID)
	}
	return svc.repo.CreatePickupPerson(ctx, pp)
}

func (svc *service) UpdatePickup(ctx context.Context, actor user.User, id string, np NewPickupPerson) (PickupPerson, error) {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return PickupPerson{}, ErrNotAuthorized
	}
	pp, err := svc.repo.GetPickupPerson(ctx, id)
	if err != nil {
		return PickupPerson{}, err
	}

	pp.FullName = np.FullName
	pp.IdentityDocument = np.IdentityDocument
	pp.Phone = np.Phone
	pp.Email = np.Email
	pp.Relationship = np.Relationship
	pp.Address = np.Address
	pp.AuthorizedFrom = np.AuthorizedFrom
	pp.AuthorizedUntil = np.AuthorizedUntil
	pp.AuthorizedDays = np.AuthorizedDays
	pp.StartTime = np.StartTime
	pp.EndTime = np.EndTime
	pp.Signature = np.Signature
	pp.Notes = np.Notes
	pp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePickupPerson(ctx, pp)
}

func (svc *service) Pickups(ctx context.Context, actor user.User, childID string) ([]PickupPerson, error) {
	ok, err := svc.CanView(ctx, actor, childID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthorized
	}
	return svc.repo.QueryPickupPeople(ctx, childID)
}

func (svc *service) RemovePickup(ctx context.Context, actor user.User, id string) error {
	if user.Resolve(actor) != user.RoleResolvedAdmin {
		return ErrNotAuthorized
	}
	return svc.repo.DeletePickupPerson(ctx, id)
}

func applyUpdate(ch *Child, uc UpdateChild) {
	if uc.FullName != "" {
		ch.FullName = uc.FullName
	}
	if uc.Age != nil {
		ch.Age = *uc.Age
	}
	if uc.BirthDate.Valid {
		ch.BirthDate = uc.BirthDate
	}
	if uc.Gender.Valid {
		ch.Gender = uc.Gender
	}
	if uc.GuardianName != "" {
		ch.GuardianName = uc.GuardianName
	}
	if uc.GuardianPhone != "" {
		ch.GuardianPhone = uc.GuardianPhone
	}
	if uc.GuardianEmail.Valid {
		ch.GuardianEmail = uc.GuardianEmail
	}
	if uc.GuardianRelation != "" {
		ch.GuardianRelation = uc.GuardianRelation
	}
	if uc.WeightKG.Valid {
		ch.WeightKG = uc.WeightKG
	}
	if uc.HeightCM.Valid {
		ch.HeightCM = uc.HeightCM
	}
	if uc.BloodType.Valid {
		ch.BloodType = uc.BloodType
	}
	if uc.Allergies != nil {
		ch.Allergies = *uc.Allergies
	}
	if uc.Illnesses != nil {
		ch.Illnesses = *uc.Illnesses
	}
	if uc.Medications != nil {
		ch.Medications = *uc.Medications
	}
	if uc.MedicalNotes != nil {
		ch.MedicalNotes = *uc.MedicalNotes
	}
	if uc.MedicalDocument.Valid {
		ch.MedicalDocument = uc.MedicalDocument
	}
	if uc.Active != nil {
		ch.Active = *uc.Active
	}
}

func filterChildren(children []Child, filter *QueryFilter) []Child {
	out := make([]Child, 0, len(children))
	for _, ch := range children {
		if filter.Active != nil && ch.Active != *filter.Active {
			continue
		}
		if filter.Search != "" && !containsFold(ch.FullName, filter.Search) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
