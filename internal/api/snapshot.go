package api

import (
	"encoding/json"
	"os"
	"sort"
)

// Snapshot is the whole application state as one JSON-friendly document,
// used for first-run imports of legacy exports and for hydrating the
// in-memory store from the persistence mirror.
type Snapshot struct {
	Users      []*User                   `json:"users,omitempty"`
	Settings   map[string]*UserSettings  `json:"settings,omitempty"`
	Health     map[string]*HealthMetrics `json:"health,omitempty"`
	Journal    []*JournalEntry           `json:"journal,omitempty"`
	Activities []*Activity               `json:"activities,omitempty"`
	Counts     map[string]map[string]int `json:"activity_counts,omitempty"`
	StepWork   []*StepWorkEntry          `json:"step_work,omitempty"`
	Guests     []*GuestAccess            `json:"guest_pins,omitempty"`
}

// NewMemoryStoreFromPath loads a JSON snapshot file into a fresh store.
func NewMemoryStoreFromPath(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s := NewMemoryStore()
	s.Load(&snap)
	return s, nil
}

func (s *MemoryStore) Load(snap *Snapshot) {
	if snap == nil {
		return
	}
	for _, u := range snap.Users {
		if u != nil {
			s.AddUser(u)
		}
	}
	for owner, v := range snap.Settings {
		if v != nil {
			s.SaveUserSettings(owner, v)
		}
	}
	for owner, v := range snap.Health {
		if v != nil {
			s.SaveHealthMetrics(owner, v)
		}
	}
	for _, e := range snap.Journal {
		if e != nil {
			s.AddJournalEntry(e)
		}
	}
	for _, a := range snap.Activities {
		if a != nil {
			s.AddActivity(a)
		}
	}
	for owner, counts := range snap.Counts {
		for id, n := range counts {
			s.SetActivityCount(owner, id, n)
		}
	}
	for _, e := range snap.StepWork {
		if e != nil {
			s.AddStepWork(e)
		}
	}
	for _, g := range snap.Guests {
		if g != nil {
			s.AddGuestAccessIfPinFree(g)
		}
	}
}

func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &Snapshot{
		Settings: map[string]*UserSettings{},
		Health:   map[string]*HealthMetrics{},
		Counts:   map[string]map[string]int{},
	}
	for _, u := range s.usersByID {
		cp := *u
		snap.Users = append(snap.Users, &cp)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	for owner, v := range s.settings {
		cp := *v
		snap.Settings[owner] = &cp
	}
	for owner, v := range s.health {
		cp := *v
		snap.Health[owner] = &cp
	}
	for _, entries := range s.journal {
		for _, e := range entries {
			cp := *e
			snap.Journal = append(snap.Journal, &cp)
		}
	}
	sort.Slice(snap.Journal, func(i, j int) bool { return snap.Journal[i].ID < snap.Journal[j].ID })
	for _, acts := range s.activities {
		for _, a := range acts {
			cp := *a
			snap.Activities = append(snap.Activities, &cp)
		}
	}
	sort.Slice(snap.Activities, func(i, j int) bool { return snap.Activities[i].ID < snap.Activities[j].ID })
	for owner, counts := range s.counts {
		cp := make(map[string]int, len(counts))
		for id, n := range counts {
			cp[id] = n
		}
		snap.Counts[owner] = cp
	}
	for _, e := range s.stepWork {
		snap.StepWork = append(snap.StepWork, copyStepWork(e))
	}
	sort.Slice(snap.StepWork, func(i, j int) bool { return snap.StepWork[i].ID < snap.StepWork[j].ID })
	for _, g := range s.guests {
		snap.Guests = append(snap.Guests, copyGuest(g))
	}
	sort.Slice(snap.Guests, func(i, j int) bool { return snap.Guests[i].ID < snap.Guests[j].ID })
	return snap
}
