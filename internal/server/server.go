package server

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zombor/shopping-tracker/internal/ledger"
	"github.com/zombor/shopping-tracker/internal/scanning"
	"github.com/zombor/shopping-tracker/internal/shopping"
)

// FrameSink accepts uploaded camera frames
type FrameSink interface {
	Push(frame scanning.Frame) bool
}

// Server handles HTTP requests for lists, the price ledger and the scanner
type Server struct {
	lists     *shopping.Repository
	ledger    *ledger.Ledger
	capture   *scanning.CaptureController
	frames    FrameSink
	basicAuth BasicAuth
	mux       *http.ServeMux
	now       func() time.Time
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(lists *shopping.Repository, l *ledger.Ledger, capture *scanning.CaptureController, frames FrameSink, basicAuth BasicAuth) *Server {
	return NewServerWithMux(lists, l, capture, frames, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(lists *shopping.Repository, l *ledger.Ledger, capture *scanning.CaptureController, frames FrameSink, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		lists:     lists,
		ledger:    l,
		capture:   capture,
		frames:    frames,
		basicAuth: basicAuth,
		mux:       mux,
		now:       time.Now,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Shopping Tracker"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	// Lists (literal segments win over {id})
	s.mux.HandleFunc("GET /api/lists/current", s.requireAuth(s.handleCurrentList))
	s.mux.HandleFunc("GET /api/lists/active", s.requireAuth(s.handleActiveList))
	s.mux.HandleFunc("GET /api/lists/{id}", s.requireAuth(s.handleGetList))
	s.mux.HandleFunc("DELETE /api/lists/{id}", s.requireAuth(s.handleDeleteList))
	s.mux.HandleFunc("POST /api/lists/{id}/archive", s.requireAuth(s.handleArchiveList))
	s.mux.HandleFunc("POST /api/lists/{id}/duplicate", s.requireAuth(s.handleDuplicateList))
	s.mux.HandleFunc("POST /api/lists/{id}/current", s.requireAuth(s.handleSetCurrentList))
	s.mux.HandleFunc("POST /api/lists/{id}/clear-purchased", s.requireAuth(s.handleClearPurchased))
	s.mux.HandleFunc("GET /api/lists/{id}/stats", s.requireAuth(s.handleListStats))
	s.mux.HandleFunc("GET /api/lists", s.requireAuth(s.handleListLists))
	s.mux.HandleFunc("POST /api/lists", s.requireAuth(s.handleCreateList))

	// Items
	s.mux.HandleFunc("POST /api/lists/{id}/items/{itemID}/toggle", s.requireAuth(s.handleTogglePurchased))
	s.mux.HandleFunc("PUT /api/lists/{id}/items/{itemID}", s.requireAuth(s.handleUpdateItem))
	s.mux.HandleFunc("DELETE /api/lists/{id}/items/{itemID}", s.requireAuth(s.handleDeleteItem))
	s.mux.HandleFunc("GET /api/lists/{id}/items", s.requireAuth(s.handleFilterItems))
	s.mux.HandleFunc("POST /api/lists/{id}/items", s.requireAuth(s.handleAddItem))

	// Statistics
	s.mux.HandleFunc("GET /api/stats", s.requireAuth(s.handleStats))

	// Scanner
	s.mux.HandleFunc("GET /api/scan", s.requireAuth(s.handleScanState))
	s.mux.HandleFunc("POST /api/scan/start", s.requireAuth(s.handleStartScan))
	s.mux.HandleFunc("POST /api/scan/stop", s.requireAuth(s.handleStopScan))
	s.mux.HandleFunc("POST /api/scan/frames", s.requireAuth(s.handleUploadFrame))
	s.mux.HandleFunc("POST /api/scan/commit", s.requireAuth(s.handleCommitPrice))
	s.mux.HandleFunc("POST /api/scan/manual", s.requireAuth(s.handleManualPrice))

	// Ledger
	s.mux.HandleFunc("GET /api/ledger/summary", s.requireAuth(s.handleLedgerSummary))
	s.mux.HandleFunc("DELETE /api/ledger/{index}", s.requireAuth(s.handleRemoveLedgerEntry))
	s.mux.HandleFunc("GET /api/ledger", s.requireAuth(s.handleGetLedger))
	s.mux.HandleFunc("DELETE /api/ledger", s.requireAuth(s.handleClearLedger))
}

// Handler returns the mux wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// NewHTTPServer builds the http.Server listening on addr
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return s.NewHTTPServer(addr).ListenAndServe()
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
