package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	authCookieName = "dashboard_auth"
	sessionTTL     = 7 * 24 * time.Hour
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.password)) != 1 {
		slog.WarnContext(r.Context(), "Login rejected", "client_ip", extractClientIP(r))
		writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "invalid password"})
		return
	}

	token, err := s.issueToken(time.Now())
	if err != nil {
		writeError(r.Context(), w, fmt.Errorf("issue session token: %w", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.InfoContext(r.Context(), "Login succeeded", "client_ip", extractClientIP(r))
	writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) issueToken(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "dashboard",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.authSecret)
}

func (s *Server) verifyToken(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.authSecret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid session token")
	}
	return nil
}

// requireAuth guards an API handler behind the session cookie.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		if err := s.verifyToken(cookie.Value); err != nil {
			slog.WarnContext(r.Context(), "Session rejected", "error", err, "client_ip", extractClientIP(r))
			writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: "invalid session"})
			return
		}
		next(w, r)
	}
}
