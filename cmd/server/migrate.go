package main

import (
	"errors"
	"log"
	"os"

	"github.com/stillpath/stillpath/internal/api"
	"github.com/stillpath/stillpath/internal/db"
)

// importLegacySnapshot performs the one-time import of a JSON export from
// the old app into SQLite. It runs only when STILLPATH_LEGACY_SNAPSHOT
// points at a file and the database holds no users yet.
func importLegacySnapshot(remote *db.SQLiteStore) error {
	legacyPath := os.Getenv("STILLPATH_LEGACY_SNAPSHOT")
	if legacyPath == "" {
		return nil
	}

	legacy, err := api.NewMemoryStoreFromPath(legacyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	existing, err := remote.Snapshot()
	if err != nil {
		return err
	}
	if len(existing.Users) > 0 {
		return nil // already imported
	}

	log.Printf("First run detected, importing legacy snapshot %s...", legacyPath)
	copySnapshotToStore(legacy.Snapshot(), remote)
	log.Printf("Legacy snapshot import completed.")
	return nil
}

func copySnapshotToStore(snap *api.Snapshot, dst api.Store) {
	if snap == nil {
		return
	}
	for _, u := range snap.Users {
		dst.AddUser(u)
	}
	for owner, v := range snap.Settings {
		dst.SaveUserSettings(owner, v)
	}
	for owner, v := range snap.Health {
		dst.SaveHealthMetrics(owner, v)
	}
	for _, e := range snap.Journal {
		dst.AddJournalEntry(e)
	}
	for _, a := range snap.Activities {
		dst.AddActivity(a)
	}
	for owner, counts := range snap.Counts {
		for id, n := range counts {
			dst.SetActivityCount(owner, id, n)
		}
	}
	for _, e := range snap.StepWork {
		dst.AddStepWork(e)
	}
	for _, g := range snap.Guests {
		if !dst.AddGuestAccessIfPinFree(g) {
			log.Printf("skipping guest %s: pin already taken", g.ID)
		}
	}
}
