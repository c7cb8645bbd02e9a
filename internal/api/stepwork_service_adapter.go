package api

import (
	"time"

	"github.com/stillpath/stillpath/internal/services"
)

type stepWorkStoreAdapter struct {
	store Store
}

func newStepWorkStoreAdapter(store Store) services.StepWorkStore {
	return &stepWorkStoreAdapter{store: store}
}

func stepWorkToService(e *StepWorkEntry) *services.StepWorkEntry {
	if e == nil {
		return nil
	}
	fb := make([]services.StepFeedback, 0, len(e.Feedback))
	for _, f := range e.Feedback {
		fb = append(fb, services.StepFeedback{ID: f.ID, GuestID: f.GuestID, Content: f.Content, IsAnonymous: f.IsAnonymous, CreatedAt: f.CreatedAt})
	}
	return &services.StepWorkEntry{
		ID:         e.ID,
		OwnerID:    e.OwnerID,
		StepNumber: e.StepNumber,
		Content:    e.Content,
		Status:     services.StepStatus(e.Status),
		IsPrivate:  e.IsPrivate,
		Feedback:   fb,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func stepWorkFromService(e *services.StepWorkEntry) *StepWorkEntry {
	fb := make([]StepFeedback, 0, len(e.Feedback))
	for _, f := range e.Feedback {
		fb = append(fb, StepFeedback{ID: f.ID, GuestID: f.GuestID, Content: f.Content, IsAnonymous: f.IsAnonymous, CreatedAt: f.CreatedAt})
	}
	return &StepWorkEntry{
		ID:         e.ID,
		OwnerID:    e.OwnerID,
		StepNumber: e.StepNumber,
		Content:    e.Content,
		Status:     string(e.Status),
		IsPrivate:  e.IsPrivate,
		Feedback:   fb,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (a *stepWorkStoreAdapter) AddStepWork(e *services.StepWorkEntry) error {
	if e == nil {
		return services.NewInvalidError("step work required")
	}
	a.store.AddStepWork(stepWorkFromService(e))
	return nil
}

func (a *stepWorkStoreAdapter) GetStepWork(id string) (*services.StepWorkEntry, error) {
	return stepWorkToService(a.store.GetStepWork(id)), nil
}

func (a *stepWorkStoreAdapter) UpdateStepWork(e *services.StepWorkEntry) (bool, error) {
	if e == nil {
		return false, services.NewInvalidError("step work required")
	}
	return a.store.UpdateStepWork(stepWorkFromService(e)), nil
}

func (a *stepWorkStoreAdapter) ListStepWork(ownerID string) ([]*services.StepWorkEntry, error) {
	entries := a.store.ListStepWork(ownerID)
	out := make([]*services.StepWorkEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, stepWorkToService(e))
	}
	return out, nil
}

func (a *stepWorkStoreAdapter) AppendStepFeedback(stepWorkID string, fb *services.StepFeedback) (bool, error) {
	if fb == nil {
		return false, services.NewInvalidError("feedback required")
	}
	return a.store.AppendStepFeedback(stepWorkID, &StepFeedback{ID: fb.ID, GuestID: fb.GuestID, Content: fb.Content, IsAnonymous: fb.IsAnonymous, CreatedAt: fb.CreatedAt}), nil
}

func (a *stepWorkStoreAdapter) SetStepStatus(stepWorkID string, status services.StepStatus, at time.Time) (bool, error) {
	return a.store.SetStepStatus(stepWorkID, string(status), at), nil
}

var _ services.StepWorkStore = (*stepWorkStoreAdapter)(nil)
