package services

import (
	"sort"
	"strings"
)

type ActivityStore interface {
	AddActivity(a *Activity) error
	ListCustomActivities(ownerID string) ([]*Activity, error)
	IncrementActivityCount(ownerID, activityID string) (int, error)
	ListActivityCounts(ownerID string) (map[string]int, error)
	// AdjustHealthMetric nudges one dimension by delta, clamped to 0..100,
	// and returns the updated metrics.
	AdjustHealthMetric(ownerID, dimension string, delta int) (*HealthMetrics, error)
}

// completionBoost is how much one completed activity nudges its dimension.
const completionBoost = 2

type ActivityService struct {
	store ActivityStore
	idGen func(prefix string, n int) string
}

func NewActivityService(store ActivityStore) *ActivityService {
	return &ActivityService{
		store: store,
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

type ActivityView struct {
	Activity
	CompletionCount int `json:"completion_count"`
}

func validDimension(d string) bool {
	switch d {
	case DimensionMental, DimensionSpiritual, DimensionPhysical, DimensionSocial:
		return true
	}
	return false
}

func (s *ActivityService) AddCustomActivity(ownerID string, in Activity) (*Activity, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("activity name required")
	}
	if !validDimension(in.Dimension) {
		return nil, NewInvalidError("unknown dimension")
	}
	a := &Activity{
		ID:          s.idGen("a", 8),
		OwnerID:     ownerID,
		Name:        name,
		Dimension:   in.Dimension,
		Description: strings.TrimSpace(in.Description),
		HealthBoost: strings.TrimSpace(in.HealthBoost),
		Custom:      true,
	}
	if err := s.store.AddActivity(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListActivities returns the default catalog plus the owner's custom
// activities, each with the owner's completion count.
func (s *ActivityService) ListActivities(ownerID string) ([]ActivityView, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	custom, err := s.store.ListCustomActivities(ownerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.ListActivityCounts(ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityView, 0, len(defaultActivities)+len(custom))
	for _, a := range defaultActivities {
		out = append(out, ActivityView{Activity: *a, CompletionCount: counts[a.ID]})
	}
	for _, a := range custom {
		out = append(out, ActivityView{Activity: *a, CompletionCount: counts[a.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type CompletionResult struct {
	ActivityID      string         `json:"activity_id"`
	CompletionCount int            `json:"completion_count"`
	Health          *HealthMetrics `json:"health"`
}

// CompleteActivity records one completion and nudges the activity's
// dimension upward.
func (s *ActivityService) CompleteActivity(ownerID, activityID string) (*CompletionResult, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	a := s.findActivity(ownerID, activityID)
	if a == nil {
		return nil, NewNotFoundError("activity not found")
	}
	count, err := s.store.IncrementActivityCount(ownerID, activityID)
	if err != nil {
		return nil, err
	}
	health, err := s.store.AdjustHealthMetric(ownerID, a.Dimension, completionBoost)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{ActivityID: activityID, CompletionCount: count, Health: health}, nil
}

func (s *ActivityService) findActivity(ownerID, activityID string) *Activity {
	for _, a := range defaultActivities {
		if a.ID == activityID {
			return a
		}
	}
	custom, err := s.store.ListCustomActivities(ownerID)
	if err != nil {
		return nil
	}
	for _, a := range custom {
		if a.ID == activityID {
			return a
		}
	}
	return nil
}

// Built-in catalog shown to every owner alongside their custom
// activities. IDs are stable so completion counts survive restarts.
var defaultActivities = []*Activity{
	{ID: "sp1", Name: "Meditation Practice", Dimension: DimensionSpiritual, Description: "Sit quietly and focus on your breath to build mindfulness.", HealthBoost: "Reduces stress, enhances self-awareness."},
	{ID: "sp2", Name: "Gratitude Journaling", Dimension: DimensionSpiritual, Description: "Write down three things you're grateful for each day.", HealthBoost: "Improves emotional resilience."},
	{ID: "sp3", Name: "Acts of Service", Dimension: DimensionSpiritual, Description: "Volunteer or do something kind for someone else.", HealthBoost: "Builds a sense of purpose."},
	{ID: "me1", Name: "Mindfulness Exercise", Dimension: DimensionMental, Description: "Ground yourself with a short body-scan or breathing exercise.", HealthBoost: "Lowers anxiety, sharpens focus."},
	{ID: "me2", Name: "Reading", Dimension: DimensionMental, Description: "Read recovery literature or anything that engages your mind.", HealthBoost: "Encourages reflection and growth."},
	{ID: "me3", Name: "Therapy Session", Dimension: DimensionMental, Description: "Attend a counseling or therapy appointment.", HealthBoost: "Builds coping skills."},
	{ID: "ph1", Name: "Exercise", Dimension: DimensionPhysical, Description: "Thirty minutes of walking, running, or any movement you enjoy.", HealthBoost: "Boosts energy and mood."},
	{ID: "ph2", Name: "Healthy Meal", Dimension: DimensionPhysical, Description: "Prepare a balanced meal instead of skipping or snacking.", HealthBoost: "Stabilizes energy through the day."},
	{ID: "ph3", Name: "Sleep Routine", Dimension: DimensionPhysical, Description: "Wind down and get to bed at a consistent time.", HealthBoost: "Improves recovery and focus."},
	{ID: "so1", Name: "Attend a Meeting", Dimension: DimensionSocial, Description: "Join a support group meeting, in person or online.", HealthBoost: "Strengthens your support network."},
	{ID: "so2", Name: "Call a Friend", Dimension: DimensionSocial, Description: "Check in with a friend, sponsor, or family member.", HealthBoost: "Reduces isolation."},
	{ID: "so3", Name: "Shared Activity", Dimension: DimensionSocial, Description: "Do something social that doesn't revolve around old habits.", HealthBoost: "Builds healthy connections."},
}
