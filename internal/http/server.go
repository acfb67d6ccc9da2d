// Package http exposes the dashboard JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"kontor/internal/files"
	"kontor/internal/ledger"
	"kontor/internal/services"
)

// DocumentStore bundles the file-store ports the drive endpoints need.
type DocumentStore interface {
	files.Lister
	files.Uploader
	files.Deleter
}

// Options carries the wiring for NewServer.
type Options struct {
	Addr             string
	Composer         *services.InvoiceComposer
	Allocator        *services.NumberAllocator
	Registry         *services.Registry
	Summary          *services.SummaryService
	Clients          ledger.ClientLister
	Invoices         ledger.InvoiceLister
	Expenses         ledger.ExpenseLister
	Documents        DocumentStore
	DocumentFolderID string
	AuthSecret       []byte
	Password         string
	UpstreamTimeout  time.Duration
}

type Server struct {
	http.Server

	composer  *services.InvoiceComposer
	allocator *services.NumberAllocator
	registry  *services.Registry
	summary   *services.SummaryService
	clients   ledger.ClientLister
	invoices  ledger.InvoiceLister
	expenses  ledger.ExpenseLister
	documents DocumentStore

	documentFolderID string
	authSecret       []byte
	password         string
	upstreamTimeout  time.Duration

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures all routes and returns a ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		composer:         opts.Composer,
		allocator:        opts.Allocator,
		registry:         opts.Registry,
		summary:          opts.Summary,
		clients:          opts.Clients,
		invoices:         opts.Invoices,
		expenses:         opts.Expenses,
		documents:        opts.Documents,
		documentFolderID: opts.DocumentFolderID,
		authSecret:       opts.AuthSecret,
		password:         opts.Password,
		upstreamTimeout:  opts.UpstreamTimeout,
		rateLimiter:      newRateLimiter(30),
	}
	if s.upstreamTimeout <= 0 {
		s.upstreamTimeout = 15 * time.Second
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.withMiddleware(s.handleLogout))

	api := func(h http.HandlerFunc) http.HandlerFunc {
		return s.withMiddleware(s.requireAuth(h))
	}

	mux.HandleFunc("GET /api/gewerbe/clients", api(s.handleListClients))
	mux.HandleFunc("POST /api/gewerbe/clients", api(s.handleCreateClient))
	mux.HandleFunc("GET /api/gewerbe/invoices", api(s.handleListInvoices))
	mux.HandleFunc("POST /api/gewerbe/invoices", api(s.handleComposeInvoice))
	mux.HandleFunc("GET /api/gewerbe/invoices/next-number", api(s.handleNextInvoiceNumber))
	mux.HandleFunc("GET /api/gewerbe/expenses", api(s.handleListExpenses))

	mux.HandleFunc("GET /api/drive", api(s.handleListDocuments))
	mux.HandleFunc("POST /api/drive", api(s.handleUploadDocument))
	mux.HandleFunc("DELETE /api/drive", api(s.handleDeleteDocument))

	mux.HandleFunc("GET /api/clients", api(s.handleListContacts))
	mux.HandleFunc("POST /api/clients", api(s.handleCreateContact))
	mux.HandleFunc("PATCH /api/clients/{id}", api(s.handleUpdateContact))

	mux.HandleFunc("GET /api/invoices", api(s.handleListTrackedInvoices))
	mux.HandleFunc("POST /api/invoices", api(s.handleCreateTrackedInvoice))
	mux.HandleFunc("PATCH /api/invoices/{id}", api(s.handleUpdateTrackedInvoice))

	mux.HandleFunc("GET /api/summary", api(s.handleSummary))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// upstreamCtx bounds a single Sheets or Drive round trip.
func (s *Server) upstreamCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.upstreamTimeout)
}

// withMiddleware adds security headers, request IDs, request logging, and
// rate limiting on mutating methods.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(ctx, w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// extractClientIP prefers forwarded headers from private-network proxies and
// falls back to the socket address.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	parsed := net.ParseIP(directIP)
	if parsed == nil || !isPrivate(parsed) {
		return directIP
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return directIP
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
