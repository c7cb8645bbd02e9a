package services

import "time"

// Dimension names for the four tracked health areas.
const (
	DimensionMental    = "mental"
	DimensionSpiritual = "spiritual"
	DimensionPhysical  = "physical"
	DimensionSocial    = "social"
)

// HealthMetrics holds the owner's self-reported progress per dimension,
// each value clamped to 0..100.
type HealthMetrics struct {
	Mental    int `json:"mental"`
	Spiritual int `json:"spiritual"`
	Physical  int `json:"physical"`
	Social    int `json:"social"`
}

type NotificationSettings struct {
	Email     bool `json:"email"`
	Push      bool `json:"push"`
	Reminders bool `json:"reminders"`
}

type PrivacySettings struct {
	ShowProgress   bool `json:"show_progress"`
	ShowActivities bool `json:"show_activities"`
}

type UserSettings struct {
	Theme         string               `json:"theme"` // system | light | dark
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
	Language      string               `json:"language"`
}

type JournalEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	EntryType string    `json:"entry_type"` // text | voice
	CreatedAt time.Time `json:"created_at"`
}

// Activity is either a default catalog entry (OwnerID empty) or an
// owner-created custom activity.
type Activity struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id,omitempty"`
	Name        string `json:"name"`
	Dimension   string `json:"dimension"`
	Description string `json:"description,omitempty"`
	HealthBoost string `json:"health_boost,omitempty"`
	Custom      bool   `json:"custom,omitempty"`
}

type StepStatus string

const (
	StepDraft     StepStatus = "draft"
	StepSubmitted StepStatus = "submitted"
	StepReviewed  StepStatus = "reviewed"
)

type StepFeedback struct {
	ID          string    `json:"id"`
	GuestID     string    `json:"guest_id,omitempty"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StepWorkEntry is a per-step journal record with a review lifecycle.
// Entries are never deleted; status only moves forward.
type StepWorkEntry struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"owner_id"`
	StepNumber int            `json:"step_number"`
	Content    string         `json:"content"`
	Status     StepStatus     `json:"status"`
	IsPrivate  bool           `json:"is_private,omitempty"`
	Feedback   []StepFeedback `json:"feedback"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type GuestRole string

const (
	RoleSponsor   GuestRole = "sponsor"
	RoleMentor    GuestRole = "mentor"
	RoleTherapist GuestRole = "therapist"
)

type AccessLevel string

const (
	AccessAll      AccessLevel = "all"
	AccessSpecific AccessLevel = "specific"
)

// GuestAccess binds a 4-digit PIN to a revocable, scoped grant on one
// owner's step work. The PIN is unique among the owner's active grants.
type GuestAccess struct {
	ID            string      `json:"id"`
	PIN           string      `json:"pin"`
	OwnerID       string      `json:"owner_id"`
	Name          string      `json:"name"`
	Role          GuestRole   `json:"role"`
	AccessLevel   AccessLevel `json:"access_level"`
	SpecificSteps []int       `json:"specific_steps,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	LastAccess    *time.Time  `json:"last_access,omitempty"`
}

type User struct {
	ID        string
	Email     string
	Name      string
	PassHash  []byte
	CreatedAt time.Time
}
