package services

import (
	"sort"
	"strings"
	"time"
)

type StepWorkStore interface {
	AddStepWork(e *StepWorkEntry) error
	GetStepWork(id string) (*StepWorkEntry, error)
	UpdateStepWork(e *StepWorkEntry) (bool, error)
	ListStepWork(ownerID string) ([]*StepWorkEntry, error)
	AppendStepFeedback(stepWorkID string, fb *StepFeedback) (bool, error)
	SetStepStatus(stepWorkID string, status StepStatus, at time.Time) (bool, error)
}

type StepWorkService struct {
	store StepWorkStore
	now   func() time.Time
	idGen func(prefix string, n int) string
}

func NewStepWorkService(store StepWorkStore) *StepWorkService {
	return &StepWorkService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

func (s *StepWorkService) AddStepWork(ownerID string, stepNumber int, content string, isPrivate bool) (*StepWorkEntry, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	if stepNumber < 1 || stepNumber > 12 {
		return nil, NewInvalidError("step number must be between 1 and 12")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewInvalidError("content required")
	}
	now := s.now()
	e := &StepWorkEntry{
		ID:         s.idGen("sw", 8),
		OwnerID:    ownerID,
		StepNumber: stepNumber,
		Content:    content,
		Status:     StepDraft,
		IsPrivate:  isPrivate,
		Feedback:   []StepFeedback{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.AddStepWork(e); err != nil {
		return nil, err
	}
	return e, nil
}

type StepWorkPatch struct {
	Content   *string `json:"content,omitempty"`
	IsPrivate *bool   `json:"is_private,omitempty"`
}

func (s *StepWorkService) UpdateStepWork(ownerID, id string, patch StepWorkPatch) (*StepWorkEntry, error) {
	e, err := s.ownedEntry(ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Content != nil {
		c := strings.TrimSpace(*patch.Content)
		if c == "" {
			return nil, NewInvalidError("content required")
		}
		e.Content = c
	}
	if patch.IsPrivate != nil {
		e.IsPrivate = *patch.IsPrivate
	}
	e.UpdatedAt = s.now()
	ok, err := s.store.UpdateStepWork(e)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewNotFoundError("step work not found")
	}
	return e, nil
}

// Entries are an append-only log: no delete, and ListStepWork returns
// newest first.
func (s *StepWorkService) ListStepWork(ownerID string) ([]*StepWorkEntry, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	entries, err := s.store.ListStepWork(ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

// AdvanceStatus moves an entry forward through draft -> submitted ->
// reviewed. Anything else, including a same-state no-op, is an
// InvalidTransition. Status never regresses.
func (s *StepWorkService) AdvanceStatus(ownerID, id string, to StepStatus) (*StepWorkEntry, error) {
	e, err := s.ownedEntry(ownerID, id)
	if err != nil {
		return nil, err
	}
	if !validTransition(e.Status, to) {
		return nil, NewInvalidTransitionError("cannot move " + string(e.Status) + " to " + string(to))
	}
	at := s.now()
	ok, err := s.store.SetStepStatus(id, to, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewNotFoundError("step work not found")
	}
	e.Status = to
	e.UpdatedAt = at
	return e, nil
}

func validTransition(from, to StepStatus) bool {
	switch from {
	case StepDraft:
		return to == StepSubmitted
	case StepSubmitted:
		return to == StepReviewed
	}
	return false
}

// AddStepFeedback appends feedback to an entry. Callers are responsible
// for checking that the entry is visible to the acting grant before
// calling; the append itself only validates content and existence and
// never touches status.
func (s *StepWorkService) AddStepFeedback(stepWorkID, content string, isAnonymous bool, guestID string) (*StepFeedback, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewInvalidError("feedback content required")
	}
	fb := &StepFeedback{
		ID:          s.idGen("fb", 8),
		GuestID:     guestID,
		Content:     content,
		IsAnonymous: isAnonymous,
		CreatedAt:   s.now(),
	}
	ok, err := s.store.AppendStepFeedback(stepWorkID, fb)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewNotFoundError("step work not found")
	}
	return fb, nil
}

func (s *StepWorkService) GetStepWork(id string) (*StepWorkEntry, error) {
	e, err := s.store.GetStepWork(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, NewNotFoundError("step work not found")
	}
	return e, nil
}

func (s *StepWorkService) ownedEntry(ownerID, id string) (*StepWorkEntry, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	e, err := s.store.GetStepWork(id)
	if err != nil {
		return nil, err
	}
	// Wrong owner reads as not found; do not leak other users' ids.
	if e == nil || e.OwnerID != ownerID {
		return nil, NewNotFoundError("step work not found")
	}
	return e, nil
}

// FeedbackAuthor resolves the display name the owner sees for a piece of
// feedback. Anonymous feedback always reads "Anonymous", as does feedback
// from a since-revoked grant.
func FeedbackAuthor(fb StepFeedback, guests map[string]*GuestAccess) string {
	if fb.IsAnonymous {
		return "Anonymous"
	}
	if g, ok := guests[fb.GuestID]; ok && g != nil {
		return g.Name
	}
	return "Anonymous"
}
