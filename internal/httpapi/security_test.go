package httpapi

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMutationsRequireCSRFToken(t *testing.T) {
	f := newAPIFixture(t)

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/shifts/open", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status without CSRF token = %d, want 403", resp.StatusCode)
	}
}

func TestCSRFTokenValidatesCurrentAndPreviousHour(t *testing.T) {
	f := newAPIFixture(t)

	current := f.api.generateCSRFToken()
	if !f.api.validateCSRFToken(current) {
		t.Fatal("current-hour token must validate")
	}
	prevBucket := time.Now().UTC().Truncate(time.Hour).Unix() - 3600
	if !f.api.validateCSRFToken(f.api.csrfTokenForHour(prevBucket)) {
		t.Fatal("previous-hour token must validate")
	}
	staleBucket := prevBucket - 3600
	if f.api.validateCSRFToken(f.api.csrfTokenForHour(staleBucket)) {
		t.Fatal("two-hour-old token must be rejected")
	}
	if f.api.validateCSRFToken("") {
		t.Fatal("empty token must be rejected")
	}
}

func TestLoginRateLimited(t *testing.T) {
	limiter := newAttemptLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatal("fourth attempt within window should be blocked")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatal("other clients must not be affected")
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	f := newAPIFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()

	for header, want := range map[string]string{
		"X-Content-Type-Options":      "nosniff",
		"X-Frame-Options":             "DENY",
		"Access-Control-Allow-Origin": "http://127.0.0.1:3000",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Fatalf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestOperatorBlockedFromAdminRoutes(t *testing.T) {
	f := newAPIFixture(t)
	operatorToken := f.login(t, "operator", "operator123")

	for _, path := range []string{"/api/v1/audit-logs", "/api/v1/summary/audit"} {
		req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+operatorToken)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s status = %d for operator, want 403", path, resp.StatusCode)
		}
	}
}

func TestMalformedBearerRejected(t *testing.T) {
	f := newAPIFixture(t)

	for _, authorization := range []string{"", "Token abc", "Bearer", "Bearer not-a-jwt"} {
		req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/v1/accounts", nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("authorization %q status = %d, want 401", authorization, resp.StatusCode)
		}
	}
}

func TestClientKeyStripsPort(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.test/", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.RemoteAddr = "192.168.1.9:54321"
	if got := clientKey(req); got != "192.168.1.9" {
		t.Fatalf("clientKey = %q", got)
	}
	req.RemoteAddr = "[::1]:8080"
	if got := clientKey(req); got != "::1" {
		t.Fatalf("clientKey v6 = %q", got)
	}
	if !strings.Contains(clientKey(&http.Request{}), "unknown") {
		t.Fatal("empty remote addr should map to unknown")
	}
}
