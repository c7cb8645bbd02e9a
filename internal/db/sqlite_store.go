package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/stillpath/stillpath/internal/api"
)

// SQLiteStore is the persistence mirror: the same Store surface as the
// in-memory state, backed by SQLite. Errors are logged, not surfaced;
// the mirror treats remote failures as divergence to heal on the next
// write, never as request failures.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

func encodeJSON(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func decodeStrings(ns sql.NullString) []string {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode string slice: %v", err)
		return nil
	}
	return out
}

func decodeInts(ns sql.NullString) []int {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	var out []int
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Printf("sqlite store: decode int slice: %v", err)
		return nil
	}
	return out
}

func (s *SQLiteStore) AddUser(u *api.User) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO users (id, email, name, pass_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), u.Name, u.PassHash, u.CreatedAt)
	s.logErr("add user", err)
}

func (s *SQLiteStore) scanUser(row *sql.Row) *api.User {
	var u api.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("scan user", err)
		return nil
	}
	return &u
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	row := s.db.QueryRow(`SELECT id, email, name, pass_hash, created_at FROM users WHERE email = ?`, strings.ToLower(email))
	return s.scanUser(row)
}

func (s *SQLiteStore) GetUser(id string) *api.User {
	row := s.db.QueryRow(`SELECT id, email, name, pass_hash, created_at FROM users WHERE id = ?`, id)
	return s.scanUser(row)
}

func (s *SQLiteStore) GetUserSettings(ownerID string) *api.UserSettings {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM user_settings WHERE owner_id = ?`, ownerID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get settings", err)
		return nil
	}
	var v api.UserSettings
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		s.logErr("decode settings", err)
		return nil
	}
	return &v
}

func (s *SQLiteStore) SaveUserSettings(ownerID string, v *api.UserSettings) {
	doc, err := json.Marshal(v)
	if err != nil {
		s.logErr("encode settings", err)
		return
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO user_settings (owner_id, doc) VALUES (?, ?)`, ownerID, string(doc))
	s.logErr("save settings", err)
}

func (s *SQLiteStore) GetHealthMetrics(ownerID string) *api.HealthMetrics {
	var m api.HealthMetrics
	err := s.db.QueryRow(`SELECT mental, spiritual, physical, social FROM health_metrics WHERE owner_id = ?`, ownerID).
		Scan(&m.Mental, &m.Spiritual, &m.Physical, &m.Social)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get health", err)
		return nil
	}
	return &m
}

func (s *SQLiteStore) SaveHealthMetrics(ownerID string, m *api.HealthMetrics) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO health_metrics (owner_id, mental, spiritual, physical, social) VALUES (?, ?, ?, ?, ?)`,
		ownerID, m.Mental, m.Spiritual, m.Physical, m.Social)
	s.logErr("save health", err)
}

func (s *SQLiteStore) AdjustHealthMetric(ownerID, dimension string, delta int) *api.HealthMetrics {
	m := s.GetHealthMetrics(ownerID)
	if m == nil {
		m = &api.HealthMetrics{}
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
	default:
		return m
	}
	s.SaveHealthMetrics(ownerID, m)
	return m
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

func (s *SQLiteStore) AddJournalEntry(e *api.JournalEntry) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO journal_entries (id, owner_id, content, tags, entry_type, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Content, encodeJSON(e.Tags), e.EntryType, e.CreatedAt)
	s.logErr("add journal entry", err)
}

func (s *SQLiteStore) ListJournalEntries(ownerID string) []*api.JournalEntry {
	rows, err := s.db.Query(
		`SELECT id, owner_id, content, tags, entry_type, created_at FROM journal_entries WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		s.logErr("list journal entries", err)
		return nil
	}
	defer rows.Close()
	var out []*api.JournalEntry
	for rows.Next() {
		var e api.JournalEntry
		var tags sql.NullString
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Content, &tags, &e.EntryType, &e.CreatedAt); err != nil {
			s.logErr("scan journal entry", err)
			continue
		}
		e.Tags = decodeStrings(tags)
		out = append(out, &e)
	}
	s.logErr("iterate journal entries", rows.Err())
	return out
}

func (s *SQLiteStore) DeleteJournalEntry(ownerID, id string) bool {
	res, err := s.db.Exec(`DELETE FROM journal_entries WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		s.logErr("delete journal entry", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) AddActivity(a *api.Activity) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO activities (id, owner_id, name, dimension, description, health_boost, custom) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, a.Dimension, a.Description, a.HealthBoost, boolToInt64(a.Custom))
	s.logErr("add activity", err)
}

func (s *SQLiteStore) ListCustomActivities(ownerID string) []*api.Activity {
	rows, err := s.db.Query(
		`SELECT id, owner_id, name, dimension, description, health_boost, custom FROM activities WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		s.logErr("list activities", err)
		return nil
	}
	defer rows.Close()
	var out []*api.Activity
	for rows.Next() {
		var a api.Activity
		var custom int64
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Dimension, &a.Description, &a.HealthBoost, &custom); err != nil {
			s.logErr("scan activity", err)
			continue
		}
		a.Custom = int64ToBool(custom)
		out = append(out, &a)
	}
	s.logErr("iterate activities", rows.Err())
	return out
}

func (s *SQLiteStore) IncrementActivityCount(ownerID, activityID string) int {
	_, err := s.db.Exec(
		`INSERT INTO activity_counts (owner_id, activity_id, count) VALUES (?, ?, 1)
		 ON CONFLICT (owner_id, activity_id) DO UPDATE SET count = count + 1`,
		ownerID, activityID)
	if err != nil {
		s.logErr("increment activity count", err)
		return 0
	}
	var count int
	err = s.db.QueryRow(`SELECT count FROM activity_counts WHERE owner_id = ? AND activity_id = ?`, ownerID, activityID).Scan(&count)
	s.logErr("read activity count", err)
	return count
}

func (s *SQLiteStore) SetActivityCount(ownerID, activityID string, count int) {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO activity_counts (owner_id, activity_id, count) VALUES (?, ?, ?)`,
		ownerID, activityID, count)
	s.logErr("set activity count", err)
}

func (s *SQLiteStore) ListActivityCounts(ownerID string) map[string]int {
	rows, err := s.db.Query(`SELECT activity_id, count FROM activity_counts WHERE owner_id = ?`, ownerID)
	if err != nil {
		s.logErr("list activity counts", err)
		return nil
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			s.logErr("scan activity count", err)
			continue
		}
		out[id] = count
	}
	s.logErr("iterate activity counts", rows.Err())
	return out
}

func (s *SQLiteStore) AddStepWork(e *api.StepWorkEntry) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logErr("begin add step work", err)
		return
	}
	_, err = tx.Exec(
		`INSERT OR REPLACE INTO step_work (id, owner_id, step_number, content, status, is_private, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.StepNumber, e.Content, e.Status, boolToInt64(e.IsPrivate), e.CreatedAt, e.UpdatedAt)
	if err != nil {
		s.logErr("add step work", err)
		_ = tx.Rollback()
		return
	}
	for _, fb := range e.Feedback {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO step_feedback (id, step_work_id, guest_id, content, is_anonymous, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			fb.ID, e.ID, fb.GuestID, fb.Content, boolToInt64(fb.IsAnonymous), fb.CreatedAt); err != nil {
			s.logErr("add step feedback", err)
			_ = tx.Rollback()
			return
		}
	}
	s.logErr("commit add step work", tx.Commit())
}

func (s *SQLiteStore) listFeedback(stepWorkID string) []api.StepFeedback {
	rows, err := s.db.Query(
		`SELECT id, guest_id, content, is_anonymous, created_at FROM step_feedback WHERE step_work_id = ? ORDER BY created_at, id`, stepWorkID)
	if err != nil {
		s.logErr("list feedback", err)
		return nil
	}
	defer rows.Close()
	var out []api.StepFeedback
	for rows.Next() {
		var fb api.StepFeedback
		var anon int64
		if err := rows.Scan(&fb.ID, &fb.GuestID, &fb.Content, &anon, &fb.CreatedAt); err != nil {
			s.logErr("scan feedback", err)
			continue
		}
		fb.IsAnonymous = int64ToBool(anon)
		out = append(out, fb)
	}
	s.logErr("iterate feedback", rows.Err())
	return out
}

func (s *SQLiteStore) GetStepWork(id string) *api.StepWorkEntry {
	var e api.StepWorkEntry
	var private int64
	err := s.db.QueryRow(
		`SELECT id, owner_id, step_number, content, status, is_private, created_at, updated_at FROM step_work WHERE id = ?`, id).
		Scan(&e.ID, &e.OwnerID, &e.StepNumber, &e.Content, &e.Status, &private, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get step work", err)
		return nil
	}
	e.IsPrivate = int64ToBool(private)
	e.Feedback = s.listFeedback(e.ID)
	if e.Feedback == nil {
		e.Feedback = []api.StepFeedback{}
	}
	return &e
}

func (s *SQLiteStore) UpdateStepWork(e *api.StepWorkEntry) bool {
	res, err := s.db.Exec(
		`UPDATE step_work SET content = ?, is_private = ?, updated_at = ? WHERE id = ?`,
		e.Content, boolToInt64(e.IsPrivate), e.UpdatedAt, e.ID)
	if err != nil {
		s.logErr("update step work", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListStepWork(ownerID string) []*api.StepWorkEntry {
	rows, err := s.db.Query(
		`SELECT id, owner_id, step_number, content, status, is_private, created_at, updated_at FROM step_work WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		s.logErr("list step work", err)
		return nil
	}
	defer rows.Close()
	var out []*api.StepWorkEntry
	for rows.Next() {
		var e api.StepWorkEntry
		var private int64
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.StepNumber, &e.Content, &e.Status, &private, &e.CreatedAt, &e.UpdatedAt); err != nil {
			s.logErr("scan step work", err)
			continue
		}
		e.IsPrivate = int64ToBool(private)
		out = append(out, &e)
	}
	s.logErr("iterate step work", rows.Err())
	for _, e := range out {
		e.Feedback = s.listFeedback(e.ID)
		if e.Feedback == nil {
			e.Feedback = []api.StepFeedback{}
		}
	}
	return out
}

func (s *SQLiteStore) AppendStepFeedback(stepWorkID string, fb *api.StepFeedback) bool {
	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM step_work WHERE id = ?`, stepWorkID).Scan(&exists); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("check step work", err)
		}
		return false
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO step_feedback (id, step_work_id, guest_id, content, is_anonymous, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		fb.ID, stepWorkID, fb.GuestID, fb.Content, boolToInt64(fb.IsAnonymous), fb.CreatedAt)
	if err != nil {
		s.logErr("append feedback", err)
		return false
	}
	return true
}

func (s *SQLiteStore) SetStepStatus(stepWorkID string, status string, at time.Time) bool {
	res, err := s.db.Exec(`UPDATE step_work SET status = ?, updated_at = ? WHERE id = ?`, status, at, stepWorkID)
	if err != nil {
		s.logErr("set step status", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// AddGuestAccessIfPinFree relies on the UNIQUE(owner_id, pin) constraint:
// INSERT OR IGNORE reports zero affected rows on a PIN collision.
func (s *SQLiteStore) AddGuestAccessIfPinFree(g *api.GuestAccess) bool {
	var last any
	if g.LastAccess != nil {
		last = *g.LastAccess
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO guest_access (id, owner_id, pin, name, role, access_level, specific_steps, created_at, last_access) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.PIN, g.Name, g.Role, g.AccessLevel, encodeJSON(g.SpecificSteps), g.CreatedAt, last)
	if err != nil {
		s.logErr("add guest access", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func scanGuest(scan func(dest ...any) error) (*api.GuestAccess, error) {
	var g api.GuestAccess
	var steps sql.NullString
	var last sql.NullTime
	if err := scan(&g.ID, &g.OwnerID, &g.PIN, &g.Name, &g.Role, &g.AccessLevel, &steps, &g.CreatedAt, &last); err != nil {
		return nil, err
	}
	g.SpecificSteps = decodeInts(steps)
	if last.Valid {
		t := last.Time
		g.LastAccess = &t
	}
	return &g, nil
}

const guestCols = `id, owner_id, pin, name, role, access_level, specific_steps, created_at, last_access`

func (s *SQLiteStore) ListGuestAccess(ownerID string) []*api.GuestAccess {
	rows, err := s.db.Query(`SELECT `+guestCols+` FROM guest_access WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		s.logErr("list guest access", err)
		return nil
	}
	defer rows.Close()
	var out []*api.GuestAccess
	for rows.Next() {
		g, err := scanGuest(rows.Scan)
		if err != nil {
			s.logErr("scan guest access", err)
			continue
		}
		out = append(out, g)
	}
	s.logErr("iterate guest access", rows.Err())
	return out
}

func (s *SQLiteStore) FindGuestByPin(ownerID, pin string) *api.GuestAccess {
	row := s.db.QueryRow(`SELECT `+guestCols+` FROM guest_access WHERE owner_id = ? AND pin = ?`, ownerID, pin)
	g, err := scanGuest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("find guest by pin", err)
		return nil
	}
	return g
}

func (s *SQLiteStore) GetGuestAccess(id string) *api.GuestAccess {
	row := s.db.QueryRow(`SELECT `+guestCols+` FROM guest_access WHERE id = ?`, id)
	g, err := scanGuest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logErr("get guest access", err)
		return nil
	}
	return g
}

func (s *SQLiteStore) TouchGuestAccess(id string, at time.Time) bool {
	res, err := s.db.Exec(`UPDATE guest_access SET last_access = ? WHERE id = ?`, at, id)
	if err != nil {
		s.logErr("touch guest access", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) RemoveGuestAccess(ownerID, id string) bool {
	res, err := s.db.Exec(`DELETE FROM guest_access WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		s.logErr("remove guest access", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

var _ api.Store = (*SQLiteStore)(nil)

// Snapshot reads the entire database into one document, used to hydrate
// the in-memory store at startup.
func (s *SQLiteStore) Snapshot() (*api.Snapshot, error) {
	snap := &api.Snapshot{
		Settings: map[string]*api.UserSettings{},
		Health:   map[string]*api.HealthMetrics{},
		Counts:   map[string]map[string]int{},
	}

	rows, err := s.db.Query(`SELECT id, email, name, pass_hash, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot users: %w", err)
	}
	for rows.Next() {
		var u api.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		snap.Users = append(snap.Users, &u)
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT owner_id, doc FROM user_settings`)
	if err != nil {
		return nil, fmt.Errorf("snapshot settings: %w", err)
	}
	for rows.Next() {
		var owner, doc string
		if err := rows.Scan(&owner, &doc); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		var v api.UserSettings
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			s.logErr("decode settings snapshot", err)
			continue
		}
		snap.Settings[owner] = &v
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT owner_id, mental, spiritual, physical, social FROM health_metrics`)
	if err != nil {
		return nil, fmt.Errorf("snapshot health: %w", err)
	}
	for rows.Next() {
		var owner string
		var m api.HealthMetrics
		if err := rows.Scan(&owner, &m.Mental, &m.Spiritual, &m.Physical, &m.Social); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan health: %w", err)
		}
		snap.Health[owner] = &m
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT id, owner_id, content, tags, entry_type, created_at FROM journal_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot journal: %w", err)
	}
	for rows.Next() {
		var e api.JournalEntry
		var tags sql.NullString
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Content, &tags, &e.EntryType, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Tags = decodeStrings(tags)
		snap.Journal = append(snap.Journal, &e)
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT id, owner_id, name, dimension, description, health_boost, custom FROM activities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot activities: %w", err)
	}
	for rows.Next() {
		var a api.Activity
		var custom int64
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Dimension, &a.Description, &a.HealthBoost, &custom); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Custom = int64ToBool(custom)
		snap.Activities = append(snap.Activities, &a)
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT owner_id, activity_id, count FROM activity_counts`)
	if err != nil {
		return nil, fmt.Errorf("snapshot counts: %w", err)
	}
	for rows.Next() {
		var owner, id string
		var count int
		if err := rows.Scan(&owner, &id, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan count: %w", err)
		}
		if snap.Counts[owner] == nil {
			snap.Counts[owner] = map[string]int{}
		}
		snap.Counts[owner][id] = count
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT id, owner_id, step_number, content, status, is_private, created_at, updated_at FROM step_work ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot step work: %w", err)
	}
	for rows.Next() {
		var e api.StepWorkEntry
		var private int64
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.StepNumber, &e.Content, &e.Status, &private, &e.CreatedAt, &e.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan step work: %w", err)
		}
		e.IsPrivate = int64ToBool(private)
		snap.StepWork = append(snap.StepWork, &e)
	}
	rows.Close()
	for _, e := range snap.StepWork {
		e.Feedback = s.listFeedback(e.ID)
		if e.Feedback == nil {
			e.Feedback = []api.StepFeedback{}
		}
	}

	rows, err = s.db.Query(`SELECT ` + guestCols + ` FROM guest_access ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("snapshot guest access: %w", err)
	}
	for rows.Next() {
		g, err := scanGuest(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan guest access: %w", err)
		}
		snap.Guests = append(snap.Guests, g)
	}
	rows.Close()

	return snap, nil
}
