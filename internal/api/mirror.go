package api

import (
	"log"
	"time"
)

// MirrorStore applies every mutation to the local store synchronously and
// propagates it to the remote store afterwards, fire-and-forget: one
// worker drains the queue in order, failures are logged, nothing is
// retried and nothing rolls back the optimistic local change. Local and
// remote can diverge until the next successful write; reconciliation is
// last-write-wins.
type MirrorStore struct {
	local  Store
	remote Store
	ops    chan func(Store)
	done   chan struct{}
}

const mirrorQueueSize = 1024

func NewMirrorStore(local, remote Store) *MirrorStore {
	m := &MirrorStore{
		local:  local,
		remote: remote,
		ops:    make(chan func(Store), mirrorQueueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *MirrorStore) run() {
	defer close(m.done)
	for op := range m.ops {
		op(m.remote)
	}
}

// Close drains outstanding writes and stops the worker.
func (m *MirrorStore) Close() {
	close(m.ops)
	<-m.done
}

// Flush blocks until every mutation enqueued before the call has been
// applied to the remote. Used by tests and shutdown.
func (m *MirrorStore) Flush() {
	ack := make(chan struct{})
	m.ops <- func(Store) { close(ack) }
	<-ack
}

func (m *MirrorStore) enqueue(op func(Store)) {
	select {
	case m.ops <- op:
	default:
		// A full queue means the remote is far behind; dropping keeps the
		// request path responsive and the divergence heals on next write.
		log.Printf("mirror: queue full, dropping remote write")
	}
}

func (m *MirrorStore) AddUser(u *User) {
	m.local.AddUser(u)
	cp := *u
	m.enqueue(func(r Store) { r.AddUser(&cp) })
}

func (m *MirrorStore) FindUserByEmail(email string) *User { return m.local.FindUserByEmail(email) }
func (m *MirrorStore) GetUser(id string) *User            { return m.local.GetUser(id) }

func (m *MirrorStore) GetUserSettings(ownerID string) *UserSettings {
	return m.local.GetUserSettings(ownerID)
}

func (m *MirrorStore) SaveUserSettings(ownerID string, v *UserSettings) {
	m.local.SaveUserSettings(ownerID, v)
	cp := *v
	m.enqueue(func(r Store) { r.SaveUserSettings(ownerID, &cp) })
}

func (m *MirrorStore) GetHealthMetrics(ownerID string) *HealthMetrics {
	return m.local.GetHealthMetrics(ownerID)
}

func (m *MirrorStore) SaveHealthMetrics(ownerID string, v *HealthMetrics) {
	m.local.SaveHealthMetrics(ownerID, v)
	cp := *v
	m.enqueue(func(r Store) { r.SaveHealthMetrics(ownerID, &cp) })
}

func (m *MirrorStore) AdjustHealthMetric(ownerID, dimension string, delta int) *HealthMetrics {
	updated := m.local.AdjustHealthMetric(ownerID, dimension, delta)
	if updated != nil {
		cp := *updated
		m.enqueue(func(r Store) { r.SaveHealthMetrics(ownerID, &cp) })
	}
	return updated
}

func (m *MirrorStore) AddJournalEntry(e *JournalEntry) {
	m.local.AddJournalEntry(e)
	cp := *e
	cp.Tags = append([]string(nil), e.Tags...)
	m.enqueue(func(r Store) { r.AddJournalEntry(&cp) })
}

func (m *MirrorStore) ListJournalEntries(ownerID string) []*JournalEntry {
	return m.local.ListJournalEntries(ownerID)
}

func (m *MirrorStore) DeleteJournalEntry(ownerID, id string) bool {
	ok := m.local.DeleteJournalEntry(ownerID, id)
	if ok {
		m.enqueue(func(r Store) { r.DeleteJournalEntry(ownerID, id) })
	}
	return ok
}

func (m *MirrorStore) AddActivity(a *Activity) {
	m.local.AddActivity(a)
	cp := *a
	m.enqueue(func(r Store) { r.AddActivity(&cp) })
}

func (m *MirrorStore) ListCustomActivities(ownerID string) []*Activity {
	return m.local.ListCustomActivities(ownerID)
}

func (m *MirrorStore) IncrementActivityCount(ownerID, activityID string) int {
	count := m.local.IncrementActivityCount(ownerID, activityID)
	m.enqueue(func(r Store) { r.SetActivityCount(ownerID, activityID, count) })
	return count
}

func (m *MirrorStore) SetActivityCount(ownerID, activityID string, count int) {
	m.local.SetActivityCount(ownerID, activityID, count)
	m.enqueue(func(r Store) { r.SetActivityCount(ownerID, activityID, count) })
}

func (m *MirrorStore) ListActivityCounts(ownerID string) map[string]int {
	return m.local.ListActivityCounts(ownerID)
}

func (m *MirrorStore) AddStepWork(e *StepWorkEntry) {
	m.local.AddStepWork(e)
	cp := *copyStepWork(e)
	m.enqueue(func(r Store) { r.AddStepWork(&cp) })
}

func (m *MirrorStore) GetStepWork(id string) *StepWorkEntry { return m.local.GetStepWork(id) }

func (m *MirrorStore) UpdateStepWork(e *StepWorkEntry) bool {
	ok := m.local.UpdateStepWork(e)
	if ok {
		cp := *copyStepWork(e)
		m.enqueue(func(r Store) { r.UpdateStepWork(&cp) })
	}
	return ok
}

func (m *MirrorStore) ListStepWork(ownerID string) []*StepWorkEntry {
	return m.local.ListStepWork(ownerID)
}

func (m *MirrorStore) AppendStepFeedback(stepWorkID string, fb *StepFeedback) bool {
	ok := m.local.AppendStepFeedback(stepWorkID, fb)
	if ok {
		cp := *fb
		m.enqueue(func(r Store) { r.AppendStepFeedback(stepWorkID, &cp) })
	}
	return ok
}

func (m *MirrorStore) SetStepStatus(stepWorkID string, status string, at time.Time) bool {
	ok := m.local.SetStepStatus(stepWorkID, status, at)
	if ok {
		m.enqueue(func(r Store) { r.SetStepStatus(stepWorkID, status, at) })
	}
	return ok
}

func (m *MirrorStore) AddGuestAccessIfPinFree(g *GuestAccess) bool {
	// The local store is the authority on PIN uniqueness; the remote
	// insert follows unconditionally once the local one wins.
	ok := m.local.AddGuestAccessIfPinFree(g)
	if ok {
		cp := *copyGuest(g)
		m.enqueue(func(r Store) { r.AddGuestAccessIfPinFree(&cp) })
	}
	return ok
}

func (m *MirrorStore) ListGuestAccess(ownerID string) []*GuestAccess {
	return m.local.ListGuestAccess(ownerID)
}

func (m *MirrorStore) FindGuestByPin(ownerID, pin string) *GuestAccess {
	return m.local.FindGuestByPin(ownerID, pin)
}

func (m *MirrorStore) GetGuestAccess(id string) *GuestAccess { return m.local.GetGuestAccess(id) }

func (m *MirrorStore) TouchGuestAccess(id string, at time.Time) bool {
	ok := m.local.TouchGuestAccess(id, at)
	if ok {
		m.enqueue(func(r Store) { r.TouchGuestAccess(id, at) })
	}
	return ok
}

func (m *MirrorStore) RemoveGuestAccess(ownerID, id string) bool {
	ok := m.local.RemoveGuestAccess(ownerID, id)
	if ok {
		m.enqueue(func(r Store) { r.RemoveGuestAccess(ownerID, id) })
	}
	return ok
}

var _ Store = (*MirrorStore)(nil)
