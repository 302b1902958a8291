// Package server hosts the proxy endpoint behind a chi router.
//
// Besides the proxy route it serves health probes, an optional read-only
// view of the action ledger, and an optional static directory holding the
// built web UI, so the UI can reach the proxy over relative URLs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/vibed/internal/ledger"
)

// LedgerReader lists recorded actions
type LedgerReader interface {
	Recent(ctx context.Context, limit int) ([]*ledger.Entry, error)
}

// Deps holds what the server mounts
type Deps struct {
	Host      string
	Port      int
	Path      string       // Route of the proxy endpoint
	Proxy     http.Handler // Required
	Ledger    LedgerReader // Optional, mounts /api/ledger when set
	StaticDir string       // Optional
}

// Server is the HTTP server that fronts the proxy
type Server struct {
	addr       string
	deps       Deps
	handler    http.Handler
	httpServer *http.Server
}

// New creates a new server. The router is built eagerly so Handler can be
// used without a listener.
func New(deps Deps) (*Server, error) {
	if deps.Proxy == nil {
		return nil, errors.New("proxy handler is required")
	}
	if deps.Path == "" {
		deps.Path = "/api/VibeTriggers"
	}

	s := &Server{
		addr: net.JoinHostPort(deps.Host, fmt.Sprint(deps.Port)),
		deps: deps,
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the fully wired router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", s.addr).Str("path", s.deps.Path).Msg("Starting proxy server")

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Proxy server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
