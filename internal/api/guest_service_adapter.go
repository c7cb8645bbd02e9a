package api

import (
	"time"

	"github.com/stillpath/stillpath/internal/services"
)

type guestStoreAdapter struct {
	store Store
}

func newGuestStoreAdapter(store Store) services.GuestStore {
	return &guestStoreAdapter{store: store}
}

func guestToService(g *GuestAccess) *services.GuestAccess {
	if g == nil {
		return nil
	}
	return &services.GuestAccess{
		ID:            g.ID,
		PIN:           g.PIN,
		OwnerID:       g.OwnerID,
		Name:          g.Name,
		Role:          services.GuestRole(g.Role),
		AccessLevel:   services.AccessLevel(g.AccessLevel),
		SpecificSteps: append([]int(nil), g.SpecificSteps...),
		CreatedAt:     g.CreatedAt,
		LastAccess:    g.LastAccess,
	}
}

func guestFromService(g *services.GuestAccess) *GuestAccess {
	return &GuestAccess{
		ID:            g.ID,
		PIN:           g.PIN,
		OwnerID:       g.OwnerID,
		Name:          g.Name,
		Role:          string(g.Role),
		AccessLevel:   string(g.AccessLevel),
		SpecificSteps: append([]int(nil), g.SpecificSteps...),
		CreatedAt:     g.CreatedAt,
		LastAccess:    g.LastAccess,
	}
}

func (a *guestStoreAdapter) AddGuestAccessIfPinFree(g *services.GuestAccess) (bool, error) {
	if g == nil {
		return false, services.NewInvalidError("guest access required")
	}
	return a.store.AddGuestAccessIfPinFree(guestFromService(g)), nil
}

func (a *guestStoreAdapter) ListGuestAccess(ownerID string) ([]*services.GuestAccess, error) {
	guests := a.store.ListGuestAccess(ownerID)
	out := make([]*services.GuestAccess, 0, len(guests))
	for _, g := range guests {
		out = append(out, guestToService(g))
	}
	return out, nil
}

func (a *guestStoreAdapter) FindGuestByPin(ownerID, pin string) (*services.GuestAccess, error) {
	return guestToService(a.store.FindGuestByPin(ownerID, pin)), nil
}

func (a *guestStoreAdapter) TouchGuestAccess(id string, at time.Time) (bool, error) {
	return a.store.TouchGuestAccess(id, at), nil
}

func (a *guestStoreAdapter) RemoveGuestAccess(ownerID, id string) (bool, error) {
	return a.store.RemoveGuestAccess(ownerID, id), nil
}

var _ services.GuestStore = (*guestStoreAdapter)(nil)
