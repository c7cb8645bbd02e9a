package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stillpath/stillpath/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(NewMemoryStore(), middleware.SignToken).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	data, _ := io.ReadAll(resp.Body)
	if len(bytes.TrimSpace(data)) > 0 && json.Unmarshal(data, &out) != nil {
		out = map[string]any{"raw": string(data)}
	}
	return resp.StatusCode, out
}

func registerUser(t *testing.T, srv *httptest.Server, email string) (token, userID string) {
	t.Helper()
	status, res := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": "Secret123!",
		"name":     "Test User",
	})
	if status != http.StatusOK {
		t.Fatalf("register status %d: %v", status, res)
	}
	token, _ = res["token"].(string)
	userID, _ = res["user_id"].(string)
	if token == "" || userID == "" {
		t.Fatalf("unexpected register response: %v", res)
	}
	return token, userID
}

func TestGuestAccessFlow(t *testing.T) {
	srv := newTestServer(t)
	token, userID := registerUser(t, srv, "owner@example.com")

	// Steps 1..3 shareable, plus one private entry on step 1.
	var stepIDs []string
	for step := 1; step <= 3; step++ {
		status, res := doJSON(t, srv, http.MethodPost, "/api/stepwork", token, map[string]any{
			"step_number": step,
			"content":     "work on step",
		})
		if status != http.StatusOK {
			t.Fatalf("add step work status %d: %v", status, res)
		}
		stepIDs = append(stepIDs, res["id"].(string))
	}
	if status, res := doJSON(t, srv, http.MethodPost, "/api/stepwork", token, map[string]any{
		"step_number": 1,
		"content":     "private notes",
		"is_private":  true,
	}); status != http.StatusOK {
		t.Fatalf("add private step work status %d: %v", status, res)
	}

	status, res := doJSON(t, srv, http.MethodPost, "/api/guests", token, map[string]any{
		"name":           "Jane",
		"role":           "sponsor",
		"access_level":   "specific",
		"specific_steps": []int{1, 2},
	})
	if status != http.StatusOK {
		t.Fatalf("issue guest access status %d: %v", status, res)
	}
	pin, _ := res["pin"].(string)
	if len(pin) != 4 || strings.Trim(pin, "0123456789") != "" {
		t.Fatalf("expected 4-digit pin, got %q", pin)
	}
	guest := res["guest"].(map[string]any)
	guestID := guest["id"].(string)
	if guest["last_access"] != nil {
		t.Fatalf("fresh grant should have no last_access: %v", guest)
	}

	// Verify is the guest login; it stamps last_access.
	status, res = doJSON(t, srv, http.MethodPost, "/api/guest/verify", "", map[string]any{
		"owner_id": userID,
		"pin":      pin,
	})
	if status != http.StatusOK {
		t.Fatalf("verify status %d: %v", status, res)
	}
	if res["last_access"] == nil {
		t.Fatalf("verify should stamp last_access: %v", res)
	}

	// Wrong pin reads the same as no pin at all.
	status, res = doJSON(t, srv, http.MethodPost, "/api/guest/verify", "", map[string]any{
		"owner_id": userID,
		"pin":      "0000",
	})
	if status != http.StatusNotFound {
		t.Fatalf("bad pin should 404, got %d: %v", status, res)
	}

	// The grant covers steps 1 and 2 only, and never private entries.
	status, res = doJSON(t, srv, http.MethodGet, "/api/guest/stepwork?owner_id="+userID+"&pin="+pin, "", nil)
	if status != http.StatusOK {
		t.Fatalf("guest stepwork status %d: %v", status, res)
	}
	entries := res["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 visible entries, got %d: %v", len(entries), entries)
	}
	for _, raw := range entries {
		e := raw.(map[string]any)
		step := int(e["step_number"].(float64))
		if step != 1 && step != 2 {
			t.Fatalf("step %d should not be visible", step)
		}
		if e["is_private"].(bool) {
			t.Fatalf("private entry leaked to guest: %v", e)
		}
	}

	// Feedback lands on a covered entry; the out-of-scope step 3 entry
	// reads as not found.
	status, res = doJSON(t, srv, http.MethodPost, "/api/guest/feedback", "", map[string]any{
		"owner_id":     userID,
		"pin":          pin,
		"step_work_id": stepIDs[0],
		"content":      "keep going",
	})
	if status != http.StatusOK {
		t.Fatalf("guest feedback status %d: %v", status, res)
	}
	status, res = doJSON(t, srv, http.MethodPost, "/api/guest/feedback", "", map[string]any{
		"owner_id":     userID,
		"pin":          pin,
		"step_work_id": stepIDs[2],
		"content":      "should not land",
	})
	if status != http.StatusNotFound {
		t.Fatalf("feedback outside grant should 404, got %d: %v", status, res)
	}

	// Owner sees the feedback with the guest's name resolved.
	status, res = doJSON(t, srv, http.MethodGet, "/api/stepwork", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list stepwork status %d: %v", status, res)
	}
	var found bool
	for _, raw := range res["entries"].([]any) {
		e := raw.(map[string]any)
		if e["id"] != stepIDs[0] {
			continue
		}
		fbs := e["feedback"].([]any)
		if len(fbs) != 1 {
			t.Fatalf("expected 1 feedback, got %v", fbs)
		}
		if author := fbs[0].(map[string]any)["author"]; author != "Jane" {
			t.Fatalf("expected author Jane, got %v", author)
		}
		found = true
	}
	if !found {
		t.Fatalf("entry %s missing from owner listing", stepIDs[0])
	}

	// Revocation: grants with no session die on the next request.
	status, res = doJSON(t, srv, http.MethodDelete, "/api/guests/"+guestID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("revoke status %d: %v", status, res)
	}
	status, _ = doJSON(t, srv, http.MethodPost, "/api/guest/verify", "", map[string]any{
		"owner_id": userID,
		"pin":      pin,
	})
	if status != http.StatusNotFound {
		t.Fatalf("revoked pin should 404, got %d", status)
	}
}

func TestAnonymousFeedbackHidesAuthor(t *testing.T) {
	srv := newTestServer(t)
	token, userID := registerUser(t, srv, "owner@example.com")

	_, res := doJSON(t, srv, http.MethodPost, "/api/stepwork", token, map[string]any{
		"step_number": 4,
		"content":     "made a list",
	})
	entryID := res["id"].(string)

	_, res = doJSON(t, srv, http.MethodPost, "/api/guests", token, map[string]any{
		"name": "Mark", "role": "mentor", "access_level": "all",
	})
	pin := res["pin"].(string)

	status, res := doJSON(t, srv, http.MethodPost, "/api/guest/feedback", "", map[string]any{
		"owner_id":     userID,
		"pin":          pin,
		"step_work_id": entryID,
		"content":      "well done",
		"is_anonymous": true,
	})
	if status != http.StatusOK {
		t.Fatalf("guest feedback status %d: %v", status, res)
	}

	_, res = doJSON(t, srv, http.MethodGet, "/api/stepwork", token, nil)
	entry := res["entries"].([]any)[0].(map[string]any)
	author := entry["feedback"].([]any)[0].(map[string]any)["author"]
	if author != "Anonymous" {
		t.Fatalf("anonymous feedback should hide the author, got %v", author)
	}
}

func TestStatusTransitionOverAPI(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	_, res := doJSON(t, srv, http.MethodPost, "/api/stepwork", token, map[string]any{
		"step_number": 1,
		"content":     "draft text",
	})
	entryID := res["id"].(string)

	// draft -> reviewed skips a state and conflicts.
	status, res := doJSON(t, srv, http.MethodPost, "/api/stepwork/"+entryID+"/status", token, map[string]any{
		"status": "reviewed",
	})
	if status != http.StatusConflict {
		t.Fatalf("skipping a state should 409, got %d: %v", status, res)
	}

	status, res = doJSON(t, srv, http.MethodPost, "/api/stepwork/"+entryID+"/status", token, map[string]any{
		"status": "submitted",
	})
	if status != http.StatusOK || res["status"] != "submitted" {
		t.Fatalf("draft -> submitted failed: %d %v", status, res)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/api/stepwork", "/api/journal", "/api/guests", "/api/me/settings"} {
		status, _ := doJSON(t, srv, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("GET %s without token should 401, got %d", path, status)
		}
	}
}

func TestSettingsAndHealthOverAPI(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	status, res := doJSON(t, srv, http.MethodGet, "/api/me/settings", token, nil)
	if status != http.StatusOK || res["theme"] != "system" {
		t.Fatalf("expected default settings, got %d %v", status, res)
	}

	status, res = doJSON(t, srv, http.MethodPut, "/api/me/settings", token, map[string]any{
		"theme": "dark",
	})
	if status != http.StatusOK || res["theme"] != "dark" {
		t.Fatalf("theme update failed: %d %v", status, res)
	}
	if res["language"] != "en" {
		t.Fatalf("partial update should keep other fields, got %v", res)
	}

	status, res = doJSON(t, srv, http.MethodPut, "/api/me/health", token, map[string]any{
		"mental": 140,
	})
	if status != http.StatusOK {
		t.Fatalf("health update status %d: %v", status, res)
	}
	if res["mental"].(float64) != 100 {
		t.Fatalf("mental should clamp to 100, got %v", res["mental"])
	}
}

func TestActivityCompletionNudgesHealth(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	if status, res := doJSON(t, srv, http.MethodPut, "/api/me/health", token, map[string]any{
		"mental": 50, "spiritual": 50, "physical": 50, "social": 50,
	}); status != http.StatusOK {
		t.Fatalf("seed health status %d: %v", status, res)
	}

	// ph1 is a built-in physical activity.
	status, res := doJSON(t, srv, http.MethodPost, "/api/activities/ph1/complete", token, nil)
	if status != http.StatusOK {
		t.Fatalf("complete status %d: %v", status, res)
	}
	if res["completion_count"].(float64) != 1 {
		t.Fatalf("expected completion count 1, got %v", res["completion_count"])
	}

	_, res = doJSON(t, srv, http.MethodGet, "/api/me/health", token, nil)
	if res["physical"].(float64) != 52 {
		t.Fatalf("completion should nudge physical by 2, got %v", res["physical"])
	}
}

func TestJournalLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "owner@example.com")

	status, res := doJSON(t, srv, http.MethodPost, "/api/journal", token, map[string]any{
		"content": "went to a meeting",
		"tags":    []string{"meeting", " gratitude "},
	})
	if status != http.StatusOK {
		t.Fatalf("add journal status %d: %v", status, res)
	}
	entryID := res["id"].(string)
	if res["entry_type"] != "text" {
		t.Fatalf("empty entry_type should default to text, got %v", res["entry_type"])
	}

	status, res = doJSON(t, srv, http.MethodDelete, "/api/journal/"+entryID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete journal status %d: %v", status, res)
	}
	_, res = doJSON(t, srv, http.MethodGet, "/api/journal", token, nil)
	if entries := res["entries"].([]any); len(entries) != 0 {
		t.Fatalf("expected empty journal after delete, got %v", entries)
	}
}
