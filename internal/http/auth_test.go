package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLoginWrongPassword(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/auth/login", `{"password":"falsch"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName {
			t.Fatal("cookie set despite failed login")
		}
	}
}

func TestLoginSetsHttpOnlyCookie(t *testing.T) {
	s, _, _ := newTestServer(t)
	cookie := login(t, s)
	if !cookie.HttpOnly {
		t.Error("cookie not httpOnly")
	}
	if cookie.MaxAge != int(sessionTTL.Seconds()) {
		t.Errorf("cookie max age = %d", cookie.MaxAge)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/auth/logout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == authCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("auth cookie not cleared")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	s, _, _ := newTestServer(t)
	cookie := login(t, s)

	parts := strings.Split(cookie.Value, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", cookie.Value)
	}
	tampered := &http.Cookie{Name: authCookieName, Value: parts[0] + "." + parts[1] + ".AAAA"}

	rec := doJSON(s, http.MethodGet, "/api/gewerbe/clients", "", tampered)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token = %d, want 401", rec.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s, _, _ := newTestServer(t)

	token, err := s.issueToken(time.Now().Add(-8 * 24 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	expired := &http.Cookie{Name: authCookieName, Value: token}

	rec := doJSON(s, http.MethodGet, "/api/gewerbe/clients", "", expired)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token = %d, want 401", rec.Code)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s, _, _ := newTestServer(t)

	var limited bool
	for i := 0; i < 40; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"falsch"}`))
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("rate limiter never triggered")
	}
}
