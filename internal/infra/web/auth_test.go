// File: internal/infra/web/auth_test.go
package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func authFixture() *AuthManager {
	return NewAuthManager("test-secret", time.Hour)
}

func callAuth(t *testing.T, a *AuthManager, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.TokenHandler()(rec, req)
	return rec
}

func TestAuthRegisterAndLogin(t *testing.T) {
	a := authFixture()

	rec := callAuth(t, a, `{"email":"u@example.com","password":"pw","action":"register"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp["token"] == "" {
		t.Fatalf("register response %q: %v", rec.Body.String(), err)
	}

	rec = callAuth(t, a, `{"email":"u@example.com","password":"pw","action":"login"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	rec = callAuth(t, a, `{"email":"u@example.com","password":"wrong","action":"login"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong password: %d", rec.Code)
	}

	rec = callAuth(t, a, `{"email":"u@example.com","password":"pw","action":"register"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: %d", rec.Code)
	}

	rec = callAuth(t, a, `{"email":"other@example.com","password":"pw","action":"login"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("login unknown user: %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	a := authFixture()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := a.Middleware(next)

	// No header.
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ask/task/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: %d", rec.Code)
	}

	// Malformed header.
	req := httptest.NewRequest(http.MethodGet, "/api/ask/task/x", nil)
	req.Header.Set("Authorization", "garbage")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("malformed header: %d", rec.Code)
	}

	// Bad token.
	req = httptest.NewRequest(http.MethodGet, "/api/ask/task/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("bad token: %d", rec.Code)
	}

	// Valid token minted by the same manager.
	token, err := a.mint("u@example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/ask/task/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: %d", rec.Code)
	}
}

func TestAuthTokenRejectedAcrossSecrets(t *testing.T) {
	a := authFixture()
	b := NewAuthManager("different-secret", time.Hour)

	token, _ := a.mint("u@example.com")
	if _, err := b.verify(token); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}
