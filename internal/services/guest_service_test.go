package services

import (
	"strconv"
	"testing"
	"time"
)

type guestStubStore struct {
	grants []*GuestAccess
}

func (s *guestStubStore) AddGuestAccessIfPinFree(g *GuestAccess) (bool, error) {
	for _, ex := range s.grants {
		if ex.OwnerID == g.OwnerID && ex.PIN == g.PIN {
			return false, nil
		}
	}
	cp := *g
	s.grants = append(s.grants, &cp)
	return true, nil
}

func (s *guestStubStore) ListGuestAccess(ownerID string) ([]*GuestAccess, error) {
	out := []*GuestAccess{}
	for _, g := range s.grants {
		if g.OwnerID == ownerID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *guestStubStore) FindGuestByPin(ownerID, pin string) (*GuestAccess, error) {
	for _, g := range s.grants {
		if g.OwnerID == ownerID && g.PIN == pin {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *guestStubStore) TouchGuestAccess(id string, at time.Time) (bool, error) {
	for _, g := range s.grants {
		if g.ID == id {
			t := at
			g.LastAccess = &t
			return true, nil
		}
	}
	return false, nil
}

func (s *guestStubStore) RemoveGuestAccess(ownerID, id string) (bool, error) {
	for i, g := range s.grants {
		if g.OwnerID == ownerID && g.ID == id {
			s.grants = append(s.grants[:i], s.grants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newTestGuestService(store GuestStore) *GuestService {
	svc := NewGuestService(store)
	svc.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc
}

func TestIssueGuestAccessUniquePins(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Guest " + strconv.Itoa(i), Role: RoleSponsor, AccessLevel: AccessAll})
		if err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
		if len(g.PIN) != 4 {
			t.Fatalf("pin %q is not 4 characters", g.PIN)
		}
		n, err := strconv.Atoi(g.PIN)
		if err != nil || n < 1000 || n > 9999 {
			t.Fatalf("pin %q outside 1000..9999", g.PIN)
		}
		if seen[g.PIN] {
			t.Fatalf("duplicate pin %q across active grants", g.PIN)
		}
		seen[g.PIN] = true
	}
}

func TestIssueGuestAccessRetriesOnCollision(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)

	if _, err := svc.IssueGuestAccess("u1", GuestInput{Name: "First", AccessLevel: AccessAll}); err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	taken := store.grants[0].PIN

	pins := []string{taken, taken, "4242"}
	svc.pinGen = func() (string, error) {
		p := pins[0]
		if len(pins) > 1 {
			pins = pins[1:]
		}
		return p, nil
	}
	g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Second", AccessLevel: AccessAll})
	if err != nil {
		t.Fatalf("issue after collision: %v", err)
	}
	if g.PIN != "4242" {
		t.Fatalf("expected regenerated pin 4242, got %q", g.PIN)
	}
}

func TestIssueGuestAccessPinSpaceExhausted(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)
	svc.pinGen = func() (string, error) { return "1234", nil }

	if _, err := svc.IssueGuestAccess("u1", GuestInput{Name: "First", AccessLevel: AccessAll}); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	_, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Second", AccessLevel: AccessAll})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorPinSpaceExhausted {
		t.Fatalf("expected pin_space_exhausted, got %v", err)
	}
}

func TestIssueGuestAccessValidation(t *testing.T) {
	svc := newTestGuestService(&guestStubStore{})

	cases := []struct {
		name string
		in   GuestInput
	}{
		{"empty name", GuestInput{Name: "   ", AccessLevel: AccessAll}},
		{"bad role", GuestInput{Name: "Jane", Role: "buddy", AccessLevel: AccessAll}},
		{"bad access level", GuestInput{Name: "Jane", AccessLevel: "everything"}},
		{"specific without steps", GuestInput{Name: "Jane", AccessLevel: AccessSpecific}},
		{"step below range", GuestInput{Name: "Jane", AccessLevel: AccessSpecific, SpecificSteps: []int{0, 1}}},
		{"step above range", GuestInput{Name: "Jane", AccessLevel: AccessSpecific, SpecificSteps: []int{1, 13}}},
	}
	for _, tc := range cases {
		_, err := svc.IssueGuestAccess("u1", tc.in)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorInvalid {
			t.Fatalf("%s: expected invalid error, got %v", tc.name, err)
		}
	}

	if _, err := svc.IssueGuestAccess("", GuestInput{Name: "Jane", AccessLevel: AccessAll}); err == nil {
		t.Fatalf("expected error without owner")
	}
}

func TestIssueGuestAccessNormalizesSteps(t *testing.T) {
	svc := newTestGuestService(&guestStubStore{})
	g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Jane", AccessLevel: AccessSpecific, SpecificSteps: []int{3, 1, 3, 2}})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	want := []int{1, 2, 3}
	if len(g.SpecificSteps) != len(want) {
		t.Fatalf("steps not deduped: %v", g.SpecificSteps)
	}
	for i, n := range want {
		if g.SpecificSteps[i] != n {
			t.Fatalf("steps not sorted: %v", g.SpecificSteps)
		}
	}
}

func TestVerifyGuestPin(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)

	g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Jane", Role: RoleSponsor, AccessLevel: AccessAll})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := svc.VerifyGuestPin("u1", g.PIN)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != g.ID {
		t.Fatalf("verify returned wrong grant: %+v", got)
	}
	if got.LastAccess == nil || !got.LastAccess.Equal(svc.now()) {
		t.Fatalf("lastAccess not touched on verify: %+v", got.LastAccess)
	}

	// Malformed input fails to match, never panics.
	for _, pin := range []string{"", "abc", "abcd", "12345", "1234567890123", "'; DROP"} {
		_, err := svc.VerifyGuestPin("u1", pin)
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorNotFound {
			t.Fatalf("pin %q: expected not_found, got %v", pin, err)
		}
	}

	// The same PIN under another owner does not verify.
	if _, err := svc.VerifyGuestPin("u2", g.PIN); err == nil {
		t.Fatalf("expected not_found for other owner")
	}
}

func TestGrantForPinDoesNotTouchLastAccess(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)

	g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Jane", AccessLevel: AccessAll})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.GrantForPin("u1", g.PIN); err != nil {
		t.Fatalf("grant for pin: %v", err)
	}
	if store.grants[0].LastAccess != nil {
		t.Fatalf("viewing lookup must not count as an access")
	}
}

func TestRemoveGuestAccessInvalidatesPin(t *testing.T) {
	store := &guestStubStore{}
	svc := newTestGuestService(store)

	g, err := svc.IssueGuestAccess("u1", GuestInput{Name: "Jane", AccessLevel: AccessAll})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.RemoveGuestAccess("u1", g.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	_, err = svc.VerifyGuestPin("u1", g.PIN)
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found after revocation, got %v", err)
	}

	if err := svc.RemoveGuestAccess("u1", g.ID); err == nil {
		t.Fatalf("expected not_found removing twice")
	}
}

func stepEntry(id string, step int, private bool, created time.Time) *StepWorkEntry {
	return &StepWorkEntry{ID: id, OwnerID: "u1", StepNumber: step, Content: "work", Status: StepDraft, IsPrivate: private, CreatedAt: created}
}

func TestVisibleStepWork(t *testing.T) {
	base := time.Unix(1700000000, 0).UTC()
	entries := []*StepWorkEntry{
		stepEntry("e1", 1, false, base.Add(1*time.Hour)),
		stepEntry("e2", 2, false, base.Add(2*time.Hour)),
		stepEntry("e3", 3, false, base.Add(3*time.Hour)),
		stepEntry("e4", 4, false, base.Add(4*time.Hour)),
		stepEntry("e5", 1, true, base.Add(5*time.Hour)),
	}

	all := &GuestAccess{ID: "g1", AccessLevel: AccessAll}
	got := VisibleStepWork(entries, all)
	if len(got) != 4 {
		t.Fatalf("all access: want 4 entries, got %d", len(got))
	}
	for _, e := range got {
		if e.IsPrivate {
			t.Fatalf("private entry leaked to guest: %s", e.ID)
		}
	}
	// Newest first.
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("entries not in descending order")
		}
	}

	specific := &GuestAccess{ID: "g2", AccessLevel: AccessSpecific, SpecificSteps: []int{1, 3}}
	got = VisibleStepWork(entries, specific)
	if len(got) != 2 {
		t.Fatalf("specific access: want 2 entries, got %d", len(got))
	}
	if got[0].ID != "e3" || got[1].ID != "e1" {
		t.Fatalf("specific access: want e3,e1, got %s,%s", got[0].ID, got[1].ID)
	}

	if got := VisibleStepWork(nil, all); len(got) != 0 {
		t.Fatalf("want empty result for no entries")
	}
	if got := VisibleStepWork(entries, nil); len(got) != 0 {
		t.Fatalf("nil grant must see nothing")
	}
}

func TestFeedbackAuthor(t *testing.T) {
	guests := map[string]*GuestAccess{"g1": {ID: "g1", Name: "Jane"}}
	if got := FeedbackAuthor(StepFeedback{GuestID: "g1"}, guests); got != "Jane" {
		t.Fatalf("want Jane, got %s", got)
	}
	if got := FeedbackAuthor(StepFeedback{GuestID: "g1", IsAnonymous: true}, guests); got != "Anonymous" {
		t.Fatalf("anonymous feedback must read Anonymous, got %s", got)
	}
	if got := FeedbackAuthor(StepFeedback{GuestID: "gone"}, guests); got != "Anonymous" {
		t.Fatalf("revoked guest must read Anonymous, got %s", got)
	}
}
