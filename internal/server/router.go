package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/vibed/internal/requestid"
)

const (
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(requestid.Middleware)
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(bodySizeLimitMiddleware)

	r.Get("/health", handleHealth)
	r.Get("/ready", handleReady)

	// The proxy accepts the same three methods for every action
	r.Method(http.MethodGet, s.deps.Path, s.deps.Proxy)
	r.Method(http.MethodPost, s.deps.Path, s.deps.Proxy)
	r.Method(http.MethodPut, s.deps.Path, s.deps.Proxy)

	if s.deps.Ledger != nil {
		r.Get("/api/ledger", s.handleLedger)
	}

	if s.deps.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.deps.StaticDir)))
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLedger returns the most recent recorded actions
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := defaultLedgerLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLedgerLimit)
	}

	entries, err := s.deps.Ledger.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read action ledger")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
