//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("STILLPATH_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestGuestJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]any{
		"email":    userEmail,
		"password": password,
		"name":     "Integration User",
	}, &registerResp)
	if registerResp.Token == "" || registerResp.UserID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var stepResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/stepwork", token, map[string]any{
		"step_number": 1,
		"content":     "Admitted the problem and wrote it down.",
	}, &stepResp)
	if stepResp.ID == "" {
		t.Fatalf("expected step work id in response")
	}

	var guestResp struct {
		PIN   string `json:"pin"`
		Guest struct {
			ID string `json:"id"`
		} `json:"guest"`
	}
	doPost(t, client, base+"/api/guests", token, map[string]any{
		"name":           "Integration Sponsor",
		"role":           "sponsor",
		"access_level":   "specific",
		"specific_steps": []int{1},
	}, &guestResp)
	if len(guestResp.PIN) != 4 {
		t.Fatalf("expected 4-digit pin, got %q", guestResp.PIN)
	}

	var verifyResp struct {
		ID         string  `json:"id"`
		LastAccess *string `json:"last_access"`
	}
	doPost(t, client, base+"/api/guest/verify", "", map[string]any{
		"owner_id": registerResp.UserID,
		"pin":      guestResp.PIN,
	}, &verifyResp)
	if verifyResp.ID != guestResp.Guest.ID || verifyResp.LastAccess == nil {
		t.Fatalf("unexpected verify response: %+v", verifyResp)
	}

	listURL := fmt.Sprintf("%s/api/guest/stepwork?owner_id=%s&pin=%s",
		base, url.QueryEscape(registerResp.UserID), url.QueryEscape(guestResp.PIN))
	resp, err := client.Get(listURL)
	if err != nil {
		t.Fatalf("guest stepwork request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("guest stepwork status %d body %s", resp.StatusCode, string(body))
	}
	var listResp struct {
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode guest stepwork: %v", err)
	}
	if len(listResp.Entries) != 1 || listResp.Entries[0].ID != stepResp.ID {
		t.Fatalf("guest should see exactly the shared entry: %+v", listResp.Entries)
	}

	var feedbackResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/guest/feedback", "", map[string]any{
		"owner_id":     registerResp.UserID,
		"pin":          guestResp.PIN,
		"step_work_id": stepResp.ID,
		"content":      "Strong start, keep at it.",
	}, &feedbackResp)
	if feedbackResp.ID == "" {
		t.Fatalf("expected feedback id in response")
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
