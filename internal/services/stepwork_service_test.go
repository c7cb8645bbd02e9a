package services

import (
	"strconv"
	"testing"
	"time"
)

type stepStubStore struct {
	entries map[string]*StepWorkEntry
}

func newStepStubStore() *stepStubStore {
	return &stepStubStore{entries: map[string]*StepWorkEntry{}}
}

func (s *stepStubStore) AddStepWork(e *StepWorkEntry) error {
	cp := *e
	s.entries[e.ID] = &cp
	return nil
}

func (s *stepStubStore) GetStepWork(id string) (*StepWorkEntry, error) {
	if e, ok := s.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (s *stepStubStore) UpdateStepWork(e *StepWorkEntry) (bool, error) {
	if _, ok := s.entries[e.ID]; !ok {
		return false, nil
	}
	cp := *e
	s.entries[e.ID] = &cp
	return true, nil
}

func (s *stepStubStore) ListStepWork(ownerID string) ([]*StepWorkEntry, error) {
	out := []*StepWorkEntry{}
	for _, e := range s.entries {
		if e.OwnerID == ownerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stepStubStore) AppendStepFeedback(stepWorkID string, fb *StepFeedback) (bool, error) {
	e, ok := s.entries[stepWorkID]
	if !ok {
		return false, nil
	}
	e.Feedback = append(e.Feedback, *fb)
	return true, nil
}

func (s *stepStubStore) SetStepStatus(stepWorkID string, status StepStatus, at time.Time) (bool, error) {
	e, ok := s.entries[stepWorkID]
	if !ok {
		return false, nil
	}
	e.Status = status
	e.UpdatedAt = at
	return true, nil
}

func newTestStepWorkService(store StepWorkStore) *StepWorkService {
	svc := NewStepWorkService(store)
	svc.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc
}

func TestAddStepWork(t *testing.T) {
	store := newStepStubStore()
	svc := newTestStepWorkService(store)

	e, err := svc.AddStepWork("u1", 4, "  made a searching inventory  ", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.Status != StepDraft {
		t.Fatalf("new entry must start as draft, got %s", e.Status)
	}
	if e.Content != "made a searching inventory" {
		t.Fatalf("content not trimmed: %q", e.Content)
	}
	if len(e.Feedback) != 0 {
		t.Fatalf("new entry must have empty feedback")
	}

	if _, err := svc.AddStepWork("u1", 0, "x", false); err == nil {
		t.Fatalf("expected error for step 0")
	}
	if _, err := svc.AddStepWork("u1", 13, "x", false); err == nil {
		t.Fatalf("expected error for step 13")
	}
	if _, err := svc.AddStepWork("u1", 1, "   ", false); err == nil {
		t.Fatalf("expected error for empty content")
	}
}

func TestAdvanceStatus(t *testing.T) {
	store := newStepStubStore()
	svc := newTestStepWorkService(store)

	e, err := svc.AddStepWork("u1", 1, "step one", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// draft cannot jump straight to reviewed.
	_, err = svc.AdvanceStatus("u1", e.ID, StepReviewed)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalidTransition {
		t.Fatalf("expected invalid_transition, got %v", err)
	}

	got, err := svc.AdvanceStatus("u1", e.ID, StepSubmitted)
	if err != nil {
		t.Fatalf("draft->submitted: %v", err)
	}
	if got.Status != StepSubmitted {
		t.Fatalf("status not advanced: %s", got.Status)
	}

	// Same-state no-op is also invalid.
	if _, err := svc.AdvanceStatus("u1", e.ID, StepSubmitted); err == nil {
		t.Fatalf("expected invalid_transition for no-op")
	}

	got, err = svc.AdvanceStatus("u1", e.ID, StepReviewed)
	if err != nil {
		t.Fatalf("submitted->reviewed: %v", err)
	}
	if got.Status != StepReviewed {
		t.Fatalf("status not advanced: %s", got.Status)
	}

	// Reviewed is terminal.
	if _, err := svc.AdvanceStatus("u1", e.ID, StepDraft); err == nil {
		t.Fatalf("status must never regress")
	}

	// Another owner cannot advance the entry.
	e2, _ := svc.AddStepWork("u1", 2, "step two", false)
	_, err = svc.AdvanceStatus("u2", e2.ID, StepSubmitted)
	se, ok = AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found for foreign owner, got %v", err)
	}
}

func TestAddStepFeedback(t *testing.T) {
	store := newStepStubStore()
	svc := newTestStepWorkService(store)

	e, err := svc.AddStepWork("u1", 2, "step two", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	fb, err := svc.AddStepFeedback(e.ID, "keep going", false, "g1")
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if fb.Content != "keep going" || fb.GuestID != "g1" {
		t.Fatalf("unexpected feedback: %+v", fb)
	}
	stored := store.entries[e.ID]
	if len(stored.Feedback) != 1 {
		t.Fatalf("feedback length = %d, want 1", len(stored.Feedback))
	}
	if stored.Status != StepDraft {
		t.Fatalf("feedback must not alter status, got %s", stored.Status)
	}

	_, err = svc.AddStepFeedback("missing", "hello", false, "g1")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}

	if _, err := svc.AddStepFeedback(e.ID, "   ", false, "g1"); err == nil {
		t.Fatalf("expected error for empty feedback")
	}
}

func TestUpdateStepWork(t *testing.T) {
	store := newStepStubStore()
	svc := newTestStepWorkService(store)

	e, err := svc.AddStepWork("u1", 3, "first draft", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	content := "second draft"
	private := true
	got, err := svc.UpdateStepWork("u1", e.ID, StepWorkPatch{Content: &content, IsPrivate: &private})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Content != "second draft" || !got.IsPrivate {
		t.Fatalf("patch not applied: %+v", got)
	}

	if _, err := svc.UpdateStepWork("u2", e.ID, StepWorkPatch{Content: &content}); err == nil {
		t.Fatalf("expected not_found for foreign owner")
	}
}

func TestListStepWorkNewestFirst(t *testing.T) {
	store := newStepStubStore()
	svc := NewStepWorkService(store)
	base := time.Unix(1700000000, 0).UTC()
	i := 0
	svc.now = func() time.Time { i++; return base.Add(time.Duration(i) * time.Minute) }
	svc.idGen = func(prefix string, n int) string { return prefix + strconv.Itoa(i) }

	for step := 1; step <= 3; step++ {
		if _, err := svc.AddStepWork("u1", step, "entry", false); err != nil {
			t.Fatalf("add step %d: %v", step, err)
		}
	}
	entries, err := svc.ListStepWork("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if entries[0].StepNumber != 3 || entries[2].StepNumber != 1 {
		t.Fatalf("entries not newest first: %d, %d, %d", entries[0].StepNumber, entries[1].StepNumber, entries[2].StepNumber)
	}
}
