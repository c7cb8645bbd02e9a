package services

import (
	"sort"
	"strings"
	"time"
)

type JournalStore interface {
	AddJournalEntry(e *JournalEntry) error
	ListJournalEntries(ownerID string) ([]*JournalEntry, error)
	DeleteJournalEntry(ownerID, id string) (bool, error)
}

type JournalService struct {
	store JournalStore
	now   func() time.Time
	idGen func(prefix string, n int) string
}

func NewJournalService(store JournalStore) *JournalService {
	return &JournalService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

func (s *JournalService) AddEntry(ownerID, content string, tags []string, entryType string) (*JournalEntry, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewInvalidError("content required")
	}
	switch entryType {
	case "":
		entryType = "text"
	case "text", "voice":
	default:
		return nil, NewInvalidError("entry type must be text or voice")
	}
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	e := &JournalEntry{
		ID:        s.idGen("j", 8),
		OwnerID:   ownerID,
		Content:   content,
		Tags:      clean,
		EntryType: entryType,
		CreatedAt: s.now(),
	}
	if err := s.store.AddJournalEntry(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *JournalService) ListEntries(ownerID string) ([]*JournalEntry, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	entries, err := s.store.ListJournalEntries(ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func (s *JournalService) DeleteEntry(ownerID, id string) error {
	if ownerID == "" {
		return NewUnauthorizedError("unauthorized")
	}
	ok, err := s.store.DeleteJournalEntry(ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("journal entry not found")
	}
	return nil
}
