package api

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	PassHash  []byte    `json:"pass_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

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
	Theme         string               `json:"theme"`
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
	Language      string               `json:"language"`
}

type JournalEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	EntryType string    `json:"entry_type"`
	CreatedAt time.Time `json:"created_at"`
}

type Activity struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id,omitempty"`
	Name        string `json:"name"`
	Dimension   string `json:"dimension"`
	Description string `json:"description,omitempty"`
	HealthBoost string `json:"health_boost,omitempty"`
	Custom      bool   `json:"custom,omitempty"`
}

type StepFeedback struct {
	ID          string    `json:"id"`
	GuestID     string    `json:"guest_id,omitempty"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type StepWorkEntry struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"owner_id"`
	StepNumber int            `json:"step_number"`
	Content    string         `json:"content"`
	Status     string         `json:"status"`
	IsPrivate  bool           `json:"is_private,omitempty"`
	Feedback   []StepFeedback `json:"feedback"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type GuestAccess struct {
	ID            string     `json:"id"`
	PIN           string     `json:"pin"`
	OwnerID       string     `json:"owner_id"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	AccessLevel   string     `json:"access_level"`
	SpecificSteps []int      `json:"specific_steps,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastAccess    *time.Time `json:"last_access,omitempty"`
}

// MemoryStore is the in-process application state: one writer at a time
// behind the mutex, everything partitioned by owner id.
type MemoryStore struct {
	mu            sync.RWMutex
	usersByEmail  map[string]*User
	usersByID     map[string]*User
	settings      map[string]*UserSettings
	health        map[string]*HealthMetrics
	journal       map[string][]*JournalEntry
	activities    map[string][]*Activity
	counts        map[string]map[string]int
	stepWork      map[string]*StepWorkEntry
	stepsByOwner  map[string][]*StepWorkEntry
	guests        map[string]*GuestAccess
	guestsByOwner map[string][]*GuestAccess
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByEmail:  map[string]*User{},
		usersByID:     map[string]*User{},
		settings:      map[string]*UserSettings{},
		health:        map[string]*HealthMetrics{},
		journal:       map[string][]*JournalEntry{},
		activities:    map[string][]*Activity{},
		counts:        map[string]map[string]int{},
		stepWork:      map[string]*StepWorkEntry{},
		stepsByOwner:  map[string][]*StepWorkEntry{},
		guests:        map[string]*GuestAccess{},
		guestsByOwner: map[string][]*GuestAccess{},
	}
}

func (s *MemoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.usersByEmail[strings.ToLower(cp.Email)] = &cp
	s.usersByID[cp.ID] = &cp
}

func (s *MemoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}

func (s *MemoryStore) GetUser(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByID[id]
}

func (s *MemoryStore) GetUserSettings(ownerID string) *UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.settings[ownerID]; ok {
		cp := *v
		return &cp
	}
	return nil
}

func (s *MemoryStore) SaveUserSettings(ownerID string, v *UserSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.settings[ownerID] = &cp
}

func (s *MemoryStore) GetHealthMetrics(ownerID string) *HealthMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.health[ownerID]; ok {
		cp := *v
		return &cp
	}
	return nil
}

func (s *MemoryStore) SaveHealthMetrics(ownerID string, v *HealthMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.health[ownerID] = &cp
}

func (s *MemoryStore) AdjustHealthMetric(ownerID, dimension string, delta int) *HealthMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.health[ownerID]
	if m == nil {
		m = &HealthMetrics{}
		s.health[ownerID] = m
	}
	switch dimension {
	case "mental":
		m.Mental = clamp100(m.Mental + delta)
	case "spiritual":
		m.Spiritual = clamp100(m.Spiritual + delta)
	case "physical":
		m.Physical = clamp100(m.Physical + delta)
	case "social":
		m.Social = clamp100(m.Social + delta)
	}
	cp := *m
	return &cp
}

func clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (s *MemoryStore) AddJournalEntry(e *JournalEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.journal[cp.OwnerID] = append(s.journal[cp.OwnerID], &cp)
}

func (s *MemoryStore) ListJournalEntries(ownerID string) []*JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*JournalEntry(nil), s.journal[ownerID]...)
}

func (s *MemoryStore) DeleteJournalEntry(ownerID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.journal[ownerID]
	for i, e := range entries {
		if e.ID == id {
			s.journal[ownerID] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

func (s *MemoryStore) AddActivity(a *Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.activities[cp.OwnerID] = append(s.activities[cp.OwnerID], &cp)
}

func (s *MemoryStore) ListCustomActivities(ownerID string) []*Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Activity(nil), s.activities[ownerID]...)
}

func (s *MemoryStore) IncrementActivityCount(ownerID, activityID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[ownerID] == nil {
		s.counts[ownerID] = map[string]int{}
	}
	s.counts[ownerID][activityID]++
	return s.counts[ownerID][activityID]
}

func (s *MemoryStore) SetActivityCount(ownerID, activityID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[ownerID] == nil {
		s.counts[ownerID] = map[string]int{}
	}
	s.counts[ownerID][activityID] = count
}

func (s *MemoryStore) ListActivityCounts(ownerID string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.counts[ownerID]))
	for k, v := range s.counts[ownerID] {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) AddStepWork(e *StepWorkEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.Feedback = append([]StepFeedback(nil), e.Feedback...)
	s.stepWork[cp.ID] = &cp
	s.stepsByOwner[cp.OwnerID] = append(s.stepsByOwner[cp.OwnerID], &cp)
}

func (s *MemoryStore) GetStepWork(id string) *StepWorkEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.stepWork[id]; ok {
		return copyStepWork(e)
	}
	return nil
}

func (s *MemoryStore) UpdateStepWork(e *StepWorkEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.stepWork[e.ID]
	if !ok {
		return false
	}
	cur.Content = e.Content
	cur.IsPrivate = e.IsPrivate
	cur.UpdatedAt = e.UpdatedAt
	return true
}

func (s *MemoryStore) ListStepWork(ownerID string) []*StepWorkEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.stepsByOwner[ownerID]
	out := make([]*StepWorkEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, copyStepWork(e))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) AppendStepFeedback(stepWorkID string, fb *StepFeedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.stepWork[stepWorkID]
	if !ok {
		return false
	}
	e.Feedback = append(e.Feedback, *fb)
	return true
}

func (s *MemoryStore) SetStepStatus(stepWorkID string, status string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.stepWork[stepWorkID]
	if !ok {
		return false
	}
	e.Status = status
	e.UpdatedAt = at
	return true
}

func copyStepWork(e *StepWorkEntry) *StepWorkEntry {
	cp := *e
	cp.Feedback = append([]StepFeedback(nil), e.Feedback...)
	return &cp
}

// AddGuestAccessIfPinFree checks and inserts under one lock; this is
// what keeps PINs unique per owner when issuance runs concurrently.
func (s *MemoryStore) AddGuestAccessIfPinFree(g *GuestAccess) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.guestsByOwner[g.OwnerID] {
		if ex.PIN == g.PIN {
			return false
		}
	}
	cp := *g
	cp.SpecificSteps = append([]int(nil), g.SpecificSteps...)
	s.guests[cp.ID] = &cp
	s.guestsByOwner[cp.OwnerID] = append(s.guestsByOwner[cp.OwnerID], &cp)
	return true
}

func (s *MemoryStore) ListGuestAccess(ownerID string) []*GuestAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guests := s.guestsByOwner[ownerID]
	out := make([]*GuestAccess, 0, len(guests))
	for _, g := range guests {
		out = append(out, copyGuest(g))
	}
	return out
}

func (s *MemoryStore) FindGuestByPin(ownerID, pin string) *GuestAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guestsByOwner[ownerID] {
		if g.PIN == pin {
			return copyGuest(g)
		}
	}
	return nil
}

func (s *MemoryStore) GetGuestAccess(id string) *GuestAccess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.guests[id]; ok {
		return copyGuest(g)
	}
	return nil
}

func (s *MemoryStore) TouchGuestAccess(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guests[id]
	if !ok {
		return false
	}
	t := at
	g.LastAccess = &t
	return true
}

func (s *MemoryStore) RemoveGuestAccess(ownerID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guests[id]
	if !ok || g.OwnerID != ownerID {
		return false
	}
	delete(s.guests, id)
	guests := s.guestsByOwner[ownerID]
	for i, ex := range guests {
		if ex.ID == id {
			s.guestsByOwner[ownerID] = append(guests[:i], guests[i+1:]...)
			break
		}
	}
	return true
}

func copyGuest(g *GuestAccess) *GuestAccess {
	cp := *g
	cp.SpecificSteps = append([]int(nil), g.SpecificSteps...)
	if g.LastAccess != nil {
		t := *g.LastAccess
		cp.LastAccess = &t
	}
	return &cp
}
