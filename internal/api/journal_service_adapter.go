package api

import (
	"github.com/stillpath/stillpath/internal/services"
)

type journalStoreAdapter struct {
	store Store
}

func newJournalStoreAdapter(store Store) services.JournalStore {
	return &journalStoreAdapter{store: store}
}

func (a *journalStoreAdapter) AddJournalEntry(e *services.JournalEntry) error {
	if e == nil {
		return services.NewInvalidError("journal entry required")
	}
	a.store.AddJournalEntry(&JournalEntry{
		ID:        e.ID,
		OwnerID:   e.OwnerID,
		Content:   e.Content,
		Tags:      append([]string(nil), e.Tags...),
		EntryType: e.EntryType,
		CreatedAt: e.CreatedAt,
	})
	return nil
}

func (a *journalStoreAdapter) ListJournalEntries(ownerID string) ([]*services.JournalEntry, error) {
	entries := a.store.ListJournalEntries(ownerID)
	out := make([]*services.JournalEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &services.JournalEntry{
			ID:        e.ID,
			OwnerID:   e.OwnerID,
			Content:   e.Content,
			Tags:      append([]string(nil), e.Tags...),
			EntryType: e.EntryType,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

func (a *journalStoreAdapter) DeleteJournalEntry(ownerID, id string) (bool, error) {
	return a.store.DeleteJournalEntry(ownerID, id), nil
}

var _ services.JournalStore = (*journalStoreAdapter)(nil)
