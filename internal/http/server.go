// Package http serves the ledger's HTTP/JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/niyodushima/finance-dashboard/internal/codec"
	"github.com/niyodushima/finance-dashboard/internal/config"
	"github.com/niyodushima/finance-dashboard/internal/core"
)

// LedgerWriter is the write path behind POST routes.
type LedgerWriter interface {
	CreateCustomer(ctx context.Context, name string) (core.Customer, error)
	RecordIncome(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
	RecordExpense(ctx context.Context, customerID int64, amount float64, description string) (core.Transaction, error)
}

// LedgerReader is the read path behind GET routes.
type LedgerReader interface {
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	Summarize(ctx context.Context) ([]core.SummaryRow, error)
}

// CredentialVerifier checks a username/password pair. A mismatch is a normal
// false result, not an error.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

// Options carries the per-deployment routing differences that used to be
// separate copies of the service: route prefix, CORS origin, and whether
// list responses are wrapped in an envelope object.
type Options struct {
	Prefix     string
	CORSOrigin string
	Envelope   string
}

type routeKey struct {
	method string
	path   string
}

// Server dispatches requests through an explicit (method, normalized path)
// table. Unknown routes are a JSON 404; OPTIONS anywhere answers the CORS
// preflight; panics become a generic 500.
type Server struct {
	http.Server

	writer   LedgerWriter
	reader   LedgerReader
	verifier CredentialVerifier

	routes   map[routeKey]http.HandlerFunc
	opts     Options
	wrapped  bool

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures the dispatch table and middleware, returning a
// ready-to-run server.
func NewServer(addr string, writer LedgerWriter, reader LedgerReader, verifier CredentialVerifier, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		writer:      writer,
		reader:      reader,
		verifier:    verifier,
		opts:        opts,
		wrapped:     opts.Envelope != config.EnvelopeBare,
		rateLimiter: newRateLimiter(),
	}

	s.routes = map[routeKey]http.HandlerFunc{
		s.route(http.MethodGet, "/health"):     s.handleHealth,
		s.route(http.MethodPost, "/login"):     s.handleLogin,
		s.route(http.MethodGet, "/customers"):  s.handleListCustomers,
		s.route(http.MethodPost, "/customers"): s.handleCreateCustomer,
		s.route(http.MethodPost, "/income"):    s.handleRecordIncome,
		s.route(http.MethodPost, "/expenses"):  s.handleRecordExpense,
		s.route(http.MethodGet, "/summary"):    s.handleSummary,
	}

	mux.HandleFunc("/", s.withMiddleware(s.dispatch))
	return s
}

func (s *Server) route(method, path string) routeKey {
	return routeKey{method: method, path: normalizePath(s.opts.Prefix + path)}
}

// normalizePath lowercases and strips any trailing slash so /api/health/ and
// /API/health hit the same handler.
func normalizePath(p string) string {
	p = strings.ToLower(p)
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if handler, ok := s.routes[routeKey{method: r.Method, path: normalizePath(r.URL.Path)}]; ok {
		handler(w, r)
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

// withMiddleware adds panic recovery, CORS headers, POST rate limiting, and
// request logging with a generated request id.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		clientIP := clientAddr(r)

		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "Request panicked",
					"request_id", requestID,
					"method", r.Method,
					"url", r.URL.Path,
					"panic", rec)
				writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
			}
		}()

		w.Header().Set("Access-Control-Allow-Origin", s.opts.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"request_id", requestID,
				"client_ip", clientIP,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody("rate limit exceeded"))
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(r.Context(), "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// Shutdown stops the rate limiter's cleanup goroutine along with the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func writeJSON(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func errorBody(message string) string {
	return codec.Object(codec.M("error", codec.String(message)))
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

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
