package api

import (
	"github.com/stillpath/stillpath/internal/services"
)

type profileStoreAdapter struct {
	store Store
}

func newProfileStoreAdapter(store Store) services.ProfileStore {
	return &profileStoreAdapter{store: store}
}

func (a *profileStoreAdapter) GetUserSettings(ownerID string) (*services.UserSettings, error) {
	v := a.store.GetUserSettings(ownerID)
	if v == nil {
		return nil, nil
	}
	return &services.UserSettings{
		Theme:         v.Theme,
		Notifications: services.NotificationSettings{Email: v.Notifications.Email, Push: v.Notifications.Push, Reminders: v.Notifications.Reminders},
		Privacy:       services.PrivacySettings{ShowProgress: v.Privacy.ShowProgress, ShowActivities: v.Privacy.ShowActivities},
		Language:      v.Language,
	}, nil
}

func (a *profileStoreAdapter) SaveUserSettings(ownerID string, v *services.UserSettings) error {
	if v == nil {
		return services.NewInvalidError("settings required")
	}
	a.store.SaveUserSettings(ownerID, &UserSettings{
		Theme:         v.Theme,
		Notifications: NotificationSettings{Email: v.Notifications.Email, Push: v.Notifications.Push, Reminders: v.Notifications.Reminders},
		Privacy:       PrivacySettings{ShowProgress: v.Privacy.ShowProgress, ShowActivities: v.Privacy.ShowActivities},
		Language:      v.Language,
	})
	return nil
}

func (a *profileStoreAdapter) GetHealthMetrics(ownerID string) (*services.HealthMetrics, error) {
	m := a.store.GetHealthMetrics(ownerID)
	if m == nil {
		return nil, nil
	}
	return &services.HealthMetrics{Mental: m.Mental, Spiritual: m.Spiritual, Physical: m.Physical, Social: m.Social}, nil
}

func (a *profileStoreAdapter) SaveHealthMetrics(ownerID string, m *services.HealthMetrics) error {
	if m == nil {
		return services.NewInvalidError("metrics required")
	}
	a.store.SaveHealthMetrics(ownerID, &HealthMetrics{Mental: m.Mental, Spiritual: m.Spiritual, Physical: m.Physical, Social: m.Social})
	return nil
}

var _ services.ProfileStore = (*profileStoreAdapter)(nil)
