package api

import "time"

type Store interface {
	AddUser(u *User)
	FindUserByEmail(email string) *User
	GetUser(id string) *User

	GetUserSettings(ownerID string) *UserSettings
	SaveUserSettings(ownerID string, s *UserSettings)
	GetHealthMetrics(ownerID string) *HealthMetrics
	SaveHealthMetrics(ownerID string, m *HealthMetrics)
	AdjustHealthMetric(ownerID, dimension string, delta int) *HealthMetrics

	AddJournalEntry(e *JournalEntry)
	ListJournalEntries(ownerID string) []*JournalEntry
	DeleteJournalEntry(ownerID, id string) bool

	AddActivity(a *Activity)
	ListCustomActivities(ownerID string) []*Activity
	IncrementActivityCount(ownerID, activityID string) int
	SetActivityCount(ownerID, activityID string, count int)
	ListActivityCounts(ownerID string) map[string]int

	AddStepWork(e *StepWorkEntry)
	GetStepWork(id string) *StepWorkEntry
	UpdateStepWork(e *StepWorkEntry) bool
	ListStepWork(ownerID string) []*StepWorkEntry
	AppendStepFeedback(stepWorkID string, fb *StepFeedback) bool
	SetStepStatus(stepWorkID string, status string, at time.Time) bool

	AddGuestAccessIfPinFree(g *GuestAccess) bool
	ListGuestAccess(ownerID string) []*GuestAccess
	FindGuestByPin(ownerID, pin string) *GuestAccess
	GetGuestAccess(id string) *GuestAccess
	TouchGuestAccess(id string, at time.Time) bool
	RemoveGuestAccess(ownerID, id string) bool
}

var _ Store = (*MemoryStore)(nil)
