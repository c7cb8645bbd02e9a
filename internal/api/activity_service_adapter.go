package api

import (
	"github.com/stillpath/stillpath/internal/services"
)

type activityStoreAdapter struct {
	store Store
}

func newActivityStoreAdapter(store Store) services.ActivityStore {
	return &activityStoreAdapter{store: store}
}

func activityToService(a *Activity) *services.Activity {
	return &services.Activity{
		ID:          a.ID,
		OwnerID:     a.OwnerID,
		Name:        a.Name,
		Dimension:   a.Dimension,
		Description: a.Description,
		HealthBoost: a.HealthBoost,
		Custom:      a.Custom,
	}
}

func (a *activityStoreAdapter) AddActivity(act *services.Activity) error {
	if act == nil {
		return services.NewInvalidError("activity required")
	}
	a.store.AddActivity(&Activity{
		ID:          act.ID,
		OwnerID:     act.OwnerID,
		Name:        act.Name,
		Dimension:   act.Dimension,
		Description: act.Description,
		HealthBoost: act.HealthBoost,
		Custom:      act.Custom,
	})
	return nil
}

func (a *activityStoreAdapter) ListCustomActivities(ownerID string) ([]*services.Activity, error) {
	acts := a.store.ListCustomActivities(ownerID)
	out := make([]*services.Activity, 0, len(acts))
	for _, act := range acts {
		out = append(out, activityToService(act))
	}
	return out, nil
}

func (a *activityStoreAdapter) IncrementActivityCount(ownerID, activityID string) (int, error) {
	return a.store.IncrementActivityCount(ownerID, activityID), nil
}

func (a *activityStoreAdapter) ListActivityCounts(ownerID string) (map[string]int, error) {
	return a.store.ListActivityCounts(ownerID), nil
}

func (a *activityStoreAdapter) AdjustHealthMetric(ownerID, dimension string, delta int) (*services.HealthMetrics, error) {
	m := a.store.AdjustHealthMetric(ownerID, dimension, delta)
	if m == nil {
		return nil, services.NewNotFoundError("health metrics not found")
	}
	return &services.HealthMetrics{Mental: m.Mental, Spiritual: m.Spiritual, Physical: m.Physical, Social: m.Social}, nil
}

var _ services.ActivityStore = (*activityStoreAdapter)(nil)
