package services

type ProfileStore interface {
	GetUserSettings(ownerID string) (*UserSettings, error)
	SaveUserSettings(ownerID string, s *UserSettings) error
	GetHealthMetrics(ownerID string) (*HealthMetrics, error)
	SaveHealthMetrics(ownerID string, m *HealthMetrics) error
}

type ProfileService struct {
	store ProfileStore
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// DefaultSettings matches what a fresh account starts with.
func DefaultSettings() *UserSettings {
	return &UserSettings{
		Theme:         "system",
		Notifications: NotificationSettings{Email: true, Push: true, Reminders: true},
		Privacy:       PrivacySettings{ShowProgress: true, ShowActivities: true},
		Language:      "en",
	}
}

func (s *ProfileService) GetSettings(ownerID string) (*UserSettings, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	cur, err := s.store.GetUserSettings(ownerID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return DefaultSettings(), nil
	}
	return cur, nil
}

type SettingsPatch struct {
	Theme         *string               `json:"theme,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	Privacy       *PrivacySettings      `json:"privacy,omitempty"`
	Language      *string               `json:"language,omitempty"`
}

func (s *ProfileService) UpdateSettings(ownerID string, patch SettingsPatch) (*UserSettings, error) {
	cur, err := s.GetSettings(ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Theme != nil {
		switch *patch.Theme {
		case "system", "light", "dark":
			cur.Theme = *patch.Theme
		default:
			return nil, NewInvalidError("theme must be system, light, or dark")
		}
	}
	if patch.Notifications != nil {
		cur.Notifications = *patch.Notifications
	}
	if patch.Privacy != nil {
		cur.Privacy = *patch.Privacy
	}
	if patch.Language != nil {
		cur.Language = *patch.Language
	}
	if err := s.store.SaveUserSettings(ownerID, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *ProfileService) GetHealthMetrics(ownerID string) (*HealthMetrics, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	cur, err := s.store.GetHealthMetrics(ownerID)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return &HealthMetrics{}, nil
	}
	return cur, nil
}

type HealthPatch struct {
	Mental    *int `json:"mental,omitempty"`
	Spiritual *int `json:"spiritual,omitempty"`
	Physical  *int `json:"physical,omitempty"`
	Social    *int `json:"social,omitempty"`
}

func (s *ProfileService) UpdateHealthMetrics(ownerID string, patch HealthPatch) (*HealthMetrics, error) {
	cur, err := s.GetHealthMetrics(ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Mental != nil {
		cur.Mental = clampMetric(*patch.Mental)
	}
	if patch.Spiritual != nil {
		cur.Spiritual = clampMetric(*patch.Spiritual)
	}
	if patch.Physical != nil {
		cur.Physical = clampMetric(*patch.Physical)
	}
	if patch.Social != nil {
		cur.Social = clampMetric(*patch.Social)
	}
	if err := s.store.SaveHealthMetrics(ownerID, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func clampMetric(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
