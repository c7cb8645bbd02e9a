package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/stillpath/stillpath/internal/middleware"
	"github.com/stillpath/stillpath/internal/services"
)

type Router struct {
	store    Store
	auth     *services.AuthService
	profile  *services.ProfileService
	journal  *services.JournalService
	activity *services.ActivityService
	stepWork *services.StepWorkService
	guests   *services.GuestService
}

func NewRouter(store Store, signer services.TokenSigner) *Router {
	return &Router{
		store:    store,
		auth:     services.NewAuthService(newAuthStoreAdapter(store), signer),
		profile:  services.NewProfileService(newProfileStoreAdapter(store)),
		journal:  services.NewJournalService(newJournalStoreAdapter(store)),
		activity: services.NewActivityService(newActivityStoreAdapter(store)),
		stepWork: services.NewStepWorkService(newStepWorkStoreAdapter(store)),
		guests:   services.NewGuestService(newGuestStoreAdapter(store)),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister)  // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)        // POST
	mux.HandleFunc("/api/me/settings", rt.handleSettings)    // GET, PUT
	mux.HandleFunc("/api/me/health", rt.handleHealth)        // GET, PUT
	mux.HandleFunc("/api/journal", rt.handleJournal)         // GET, POST
	mux.HandleFunc("/api/journal/", rt.handleJournalScoped)  // DELETE /api/journal/{id}
	mux.HandleFunc("/api/activities", rt.handleActivities)   // GET, POST
	mux.HandleFunc("/api/activities/", rt.handleActivityScoped) // POST /api/activities/{id}/complete
	mux.HandleFunc("/api/stepwork", rt.handleStepWork)       // GET, POST
	mux.HandleFunc("/api/stepwork/", rt.handleStepWorkScoped) // PUT /api/stepwork/{id}, POST /api/stepwork/{id}/status
	mux.HandleFunc("/api/guests", rt.handleGuests)           // GET, POST
	mux.HandleFunc("/api/guests/", rt.handleGuestScoped)     // DELETE /api/guests/{id}
	mux.HandleFunc("/api/guest/verify", rt.handleGuestVerify)     // POST
	mux.HandleFunc("/api/guest/stepwork", rt.handleGuestStepWork) // GET
	mux.HandleFunc("/api/guest/feedback", rt.handleGuestFeedback) // POST
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch se.Code {
	case services.ErrorInvalid:
		status = http.StatusBadRequest
	case services.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case services.ErrorForbidden:
		status = http.StatusForbidden
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorConflict, services.ErrorInvalidTransition:
		status = http.StatusConflict
	case services.ErrorPinSpaceExhausted:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": se.Message, "code": string(se.Code)})
}

func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return "", false
	}
	return uid, true
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "name": res.Name})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "user_id": res.UserID, "name": res.Name})
}

func (rt *Router) handleSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		s, err := rt.profile.GetSettings(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	case http.MethodPut:
		var patch services.SettingsPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s, err := rt.profile.UpdateSettings(uid, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		m, err := rt.profile.GetHealthMetrics(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodPut:
		var patch services.HealthPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m, err := rt.profile.UpdateHealthMetrics(uid, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleJournal(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		entries, err := rt.journal.ListEntries(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	case http.MethodPost:
		var req struct {
			Content   string   `json:"content"`
			Tags      []string `json:"tags"`
			EntryType string   `json:"entry_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := rt.journal.AddEntry(uid, req.Content, req.Tags, req.EntryType)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleJournalScoped(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/journal/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.journal.DeleteEntry(uid, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (rt *Router) handleActivities(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		views, err := rt.activity.ListActivities(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activities": views})
	case http.MethodPost:
		var req services.Activity
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := rt.activity.AddCustomActivity(uid, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/activities/{id}/complete
func (rt *Router) handleActivityScoped(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/activities/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "complete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := rt.activity.CompleteActivity(uid, parts[0])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type feedbackView struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type stepWorkView struct {
	ID         string         `json:"id"`
	StepNumber int            `json:"step_number"`
	Content    string         `json:"content"`
	Status     string         `json:"status"`
	IsPrivate  bool           `json:"is_private"`
	Feedback   []feedbackView `json:"feedback"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ownerStepWorkView resolves feedback author names for the owning user;
// anonymous feedback reads "Anonymous".
func ownerStepWorkView(e *services.StepWorkEntry, guests map[string]*services.GuestAccess) stepWorkView {
	fb := make([]feedbackView, 0, len(e.Feedback))
	for _, f := range e.Feedback {
		fb = append(fb, feedbackView{ID: f.ID, Author: services.FeedbackAuthor(f, guests), Content: f.Content, CreatedAt: f.CreatedAt})
	}
	return stepWorkView{
		ID:         e.ID,
		StepNumber: e.StepNumber,
		Content:    e.Content,
		Status:     string(e.Status),
		IsPrivate:  e.IsPrivate,
		Feedback:   fb,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func (rt *Router) guestIndex(ownerID string) map[string]*services.GuestAccess {
	guests, err := rt.guests.ListGuests(ownerID)
	if err != nil {
		return nil
	}
	idx := make(map[string]*services.GuestAccess, len(guests))
	for _, g := range guests {
		idx[g.ID] = g
	}
	return idx
}

func (rt *Router) handleStepWork(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		entries, err := rt.stepWork.ListStepWork(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		guests := rt.guestIndex(uid)
		views := make([]stepWorkView, 0, len(entries))
		for _, e := range entries {
			views = append(views, ownerStepWorkView(e, guests))
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": views})
	case http.MethodPost:
		var req struct {
			StepNumber int    `json:"step_number"`
			Content    string `json:"content"`
			IsPrivate  bool   `json:"is_private"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := rt.stepWork.AddStepWork(uid, req.StepNumber, req.Content, req.IsPrivate)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PUT /api/stepwork/{id}, POST /api/stepwork/{id}/status
func (rt *Router) handleStepWorkScoped(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/stepwork/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var patch services.StepWorkPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := rt.stepWork.UpdateStepWork(uid, parts[0], patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		e, err := rt.stepWork.AdvanceStatus(uid, parts[0], services.StepStatus(req.Status))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	default:
		http.NotFound(w, r)
	}
}

type guestView struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	AccessLevel   string     `json:"access_level"`
	SpecificSteps []int      `json:"specific_steps,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastAccess    *time.Time `json:"last_access,omitempty"`
}

func toGuestView(g *services.GuestAccess) guestView {
	return guestView{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Name:          g.Name,
		Role:          string(g.Role),
		AccessLevel:   string(g.AccessLevel),
		SpecificSteps: g.SpecificSteps,
		CreatedAt:     g.CreatedAt,
		LastAccess:    g.LastAccess,
	}
}

func (rt *Router) handleGuests(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		guests, err := rt.guests.ListGuests(uid)
		if err != nil {
			writeError(w, err)
			return
		}
		views := make([]guestView, 0, len(guests))
		for _, g := range guests {
			views = append(views, toGuestView(g))
		}
		writeJSON(w, http.StatusOK, map[string]any{"guests": views})
	case http.MethodPost:
		var req struct {
			Name          string `json:"name"`
			Role          string `json:"role"`
			AccessLevel   string `json:"access_level"`
			SpecificSteps []int  `json:"specific_steps"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g, err := rt.guests.IssueGuestAccess(uid, services.GuestInput{
			Name:          req.Name,
			Role:          services.GuestRole(req.Role),
			AccessLevel:   services.AccessLevel(req.AccessLevel),
			SpecificSteps: req.SpecificSteps,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		// The one place the plaintext PIN is handed out: the owner passes
		// it to the guest out-of-band.
		writeJSON(w, http.StatusOK, map[string]any{"guest": toGuestView(g), "pin": g.PIN})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleGuestScoped(w http.ResponseWriter, r *http.Request) {
	uid, ok := ownerID(w, r)
	if !ok {
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/guests/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.guests.RemoveGuestAccess(uid, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// POST /api/guest/verify — the guest login. Misses come back as a
// generic invalid-PIN 404; the response never says whether the PIN ever
// existed.
func (rt *Router) handleGuestVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		OwnerID string `json:"owner_id"`
		PIN     string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := rt.guests.VerifyGuestPin(req.OwnerID, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGuestView(g))
}

// GET /api/guest/stepwork?owner_id=...&pin=... — guests hold no session;
// every request re-verifies the PIN, so revocation bites immediately.
// Viewing does not update last_access, only verify does.
func (rt *Router) handleGuestStepWork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	owner := r.URL.Query().Get("owner_id")
	pin := r.URL.Query().Get("pin")
	g, err := rt.guests.GrantForPin(owner, pin)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := rt.stepWork.ListStepWork(owner)
	if err != nil {
		writeError(w, err)
		return
	}
	visible := services.VisibleStepWork(entries, g)
	views := make([]stepWorkView, 0, len(visible))
	guests := rt.guestIndex(owner)
	for _, e := range visible {
		views = append(views, ownerStepWorkView(e, guests))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": views, "guest": toGuestView(g)})
}

// POST /api/guest/feedback — visibility is enforced here, at the call
// boundary, before the append runs.
func (rt *Router) handleGuestFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		OwnerID     string `json:"owner_id"`
		PIN         string `json:"pin"`
		StepWorkID  string `json:"step_work_id"`
		Content     string `json:"content"`
		IsAnonymous bool   `json:"is_anonymous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := rt.guests.GrantForPin(req.OwnerID, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := rt.stepWork.GetStepWork(req.StepWorkID)
	if err != nil {
		writeError(w, err)
		return
	}
	// Entries outside the grant's scope read as not found.
	if e.OwnerID != req.OwnerID || !services.GrantCovers(g, e) {
		writeError(w, services.NewNotFoundError("step work not found"))
		return
	}
	fb, err := rt.stepWork.AddStepFeedback(req.StepWorkID, req.Content, req.IsAnonymous, g.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}
