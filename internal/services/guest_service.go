package services

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid           ErrorCode = "invalid"
	ErrorForbidden         ErrorCode = "forbidden"
	ErrorNotFound          ErrorCode = "not_found"
	ErrorConflict          ErrorCode = "conflict"
	ErrorUnauthorized      ErrorCode = "unauthorized"
	ErrorInvalidTransition ErrorCode = "invalid_transition"
	ErrorPinSpaceExhausted ErrorCode = "pin_space_exhausted"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &ServiceError{Code: ErrorInvalidTransition, Message: msg}
}

func NewPinSpaceExhaustedError(msg string) error {
	return &ServiceError{Code: ErrorPinSpaceExhausted, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type GuestStore interface {
	// AddGuestAccessIfPinFree inserts the grant unless another active grant
	// for the same owner already holds the PIN. The check and insert happen
	// under one lock so concurrent issuance cannot duplicate a PIN.
	AddGuestAccessIfPinFree(g *GuestAccess) (bool, error)
	ListGuestAccess(ownerID string) ([]*GuestAccess, error)
	FindGuestByPin(ownerID, pin string) (*GuestAccess, error)
	TouchGuestAccess(id string, at time.Time) (bool, error)
	RemoveGuestAccess(ownerID, id string) (bool, error)
}

const (
	pinMin = 1000
	pinMax = 9999
	// Collision retries before issuance gives up. With four digits and a
	// handful of grants per owner this bound is effectively unreachable.
	maxPinAttempts = 50
)

type GuestService struct {
	store  GuestStore
	now    func() time.Time
	idGen  func(prefix string, n int) string
	pinGen func() (string, error)
}

func NewGuestService(store GuestStore) *GuestService {
	return &GuestService{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		idGen:  func(prefix string, n int) string { return prefix + shortID(n) },
		pinGen: randomPin,
	}
}

// randomPin draws uniformly from 1000..9999. Guests authenticate with
// nothing but this value, so it comes from crypto/rand.
func randomPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinMax-pinMin+1))
	if err != nil {
		return "", err
	}
	return big.NewInt(pinMin + n.Int64()).String(), nil
}

type GuestInput struct {
	Name          string
	Role          GuestRole
	AccessLevel   AccessLevel
	SpecificSteps []int
}

func (s *GuestService) IssueGuestAccess(ownerID string, in GuestInput) (*GuestAccess, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("guest name required")
	}
	switch in.Role {
	case RoleSponsor, RoleMentor, RoleTherapist:
	case "":
		in.Role = RoleSponsor
	default:
		return nil, NewInvalidError("unknown guest role")
	}
	var steps []int
	switch in.AccessLevel {
	case AccessAll:
	case AccessSpecific:
		var err error
		steps, err = normalizeSteps(in.SpecificSteps)
		if err != nil {
			return nil, err
		}
	default:
		return nil, NewInvalidError("access level must be all or specific")
	}
	g := &GuestAccess{
		ID:            s.idGen("g", 8),
		OwnerID:       ownerID,
		Name:          name,
		Role:          in.Role,
		AccessLevel:   in.AccessLevel,
		SpecificSteps: steps,
		CreatedAt:     s.now(),
	}
	for attempt := 0; attempt < maxPinAttempts; attempt++ {
		pin, err := s.pinGen()
		if err != nil {
			return nil, err
		}
		g.PIN = pin
		ok, err := s.store.AddGuestAccessIfPinFree(g)
		if err != nil {
			return nil, err
		}
		if ok {
			return g, nil
		}
	}
	return nil, NewPinSpaceExhaustedError("could not find a free PIN, try again")
}

func normalizeSteps(steps []int) ([]int, error) {
	if len(steps) == 0 {
		return nil, NewInvalidError("specific access requires at least one step")
	}
	seen := map[int]bool{}
	out := make([]int, 0, len(steps))
	for _, n := range steps {
		if n < 1 || n > 12 {
			return nil, NewInvalidError("step numbers must be between 1 and 12")
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// VerifyGuestPin is the guest login. A miss is a NotFound value, never a
// panic, whatever the input looks like; callers surface it as a generic
// "invalid PIN". A hit touches LastAccess.
func (s *GuestService) VerifyGuestPin(ownerID, pin string) (*GuestAccess, error) {
	g, err := s.store.FindGuestByPin(ownerID, strings.TrimSpace(pin))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, NewNotFoundError("invalid PIN")
	}
	at := s.now()
	if _, err := s.store.TouchGuestAccess(g.ID, at); err != nil {
		return nil, err
	}
	g.LastAccess = &at
	return g, nil
}

// GrantForPin resolves a PIN without touching LastAccess. Guest viewing
// and feedback re-check the PIN per request; only login counts as an
// access for bookkeeping.
func (s *GuestService) GrantForPin(ownerID, pin string) (*GuestAccess, error) {
	g, err := s.store.FindGuestByPin(ownerID, strings.TrimSpace(pin))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, NewNotFoundError("invalid PIN")
	}
	return g, nil
}

func (s *GuestService) ListGuests(ownerID string) ([]*GuestAccess, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("unauthorized")
	}
	return s.store.ListGuestAccess(ownerID)
}

// RemoveGuestAccess revokes a grant. The PIN stops verifying immediately;
// there is no session token to chase.
func (s *GuestService) RemoveGuestAccess(ownerID, id string) error {
	if ownerID == "" {
		return NewUnauthorizedError("unauthorized")
	}
	ok, err := s.store.RemoveGuestAccess(ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("guest access not found")
	}
	return nil
}

// GrantCovers reports whether a single entry is visible under the grant.
func GrantCovers(grant *GuestAccess, e *StepWorkEntry) bool {
	if grant == nil || e == nil || e.IsPrivate {
		return false
	}
	if grant.AccessLevel != AccessSpecific {
		return true
	}
	for _, n := range grant.SpecificSteps {
		if n == e.StepNumber {
			return true
		}
	}
	return false
}

// VisibleStepWork filters one owner's entries down to what the grant may
// see: private entries never, and under specific access only the listed
// steps. Pure and total; returns newest first.
func VisibleStepWork(entries []*StepWorkEntry, grant *GuestAccess) []*StepWorkEntry {
	out := make([]*StepWorkEntry, 0, len(entries))
	for _, e := range entries {
		if GrantCovers(grant, e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
