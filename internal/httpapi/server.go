// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package httpapi exposes the session and deck operations as a JSON API.
// It owns the mapping from domain error codes to HTTP statuses; handlers
// never pick status codes themselves.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/auth"
	"github.com/deckforge/deckforge/internal/catalog"
	"github.com/deckforge/deckforge/internal/observability"
)

// Server serves the JSON API.
type Server struct {
	addr       string
	sessions   *auth.Service
	decks      catalog.DeckRepository
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil when the
// observability server is disabled.
func NewServer(addr string, sessions *auth.Service, decks catalog.DeckRepository, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if sessions == nil {
		return nil, oops.Code("API_CONFIG_INVALID").Errorf("session service is required")
	}
	if decks == nil {
		return nil, oops.Code("API_CONFIG_INVALID").Errorf("deck repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		sessions: sessions,
		decks:    decks,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/register", s.instrument("register", http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/login", s.instrument("login", http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/refresh", s.instrument("refresh", http.HandlerFunc(s.handleRefresh)))

	mux.Handle("POST /api/logout", s.instrument("logout", s.requireAuth(s.handleLogout)))
	mux.Handle("GET /api/me", s.instrument("me", s.requireAuth(s.handleMe)))
	mux.Handle("PATCH /api/me/username", s.instrument("change_username", s.requireAuth(s.handleChangeUsername)))
	mux.Handle("PATCH /api/me/email", s.instrument("change_email", s.requireAuth(s.handleChangeEmail)))
	mux.Handle("PATCH /api/me/password", s.instrument("change_password", s.requireAuth(s.handleChangePassword)))
	mux.Handle("DELETE /api/me", s.instrument("delete_account", s.requireAuth(s.handleDeleteAccount)))

	mux.Handle("POST /api/decks", s.instrument("deck_create", s.requireAuth(s.handleDeckCreate)))
	mux.Handle("GET /api/decks", s.instrument("deck_list", s.requireAuth(s.handleDeckList)))
	mux.Handle("GET /api/decks/{id}", s.instrument("deck_get", s.requireAuth(s.handleDeckGet)))
	mux.Handle("DELETE /api/decks/{id}", s.instrument("deck_delete", s.requireAuth(s.handleDeckDelete)))
	mux.Handle("PUT /api/decks/{id}/cards", s.instrument("deck_set_card", s.requireAuth(s.handleDeckSetCard)))
	mux.Handle("DELETE /api/decks/{id}/cards/{cardID}", s.instrument("deck_remove_card", s.requireAuth(s.handleDeckRemoveCard)))

	return mux
}

// Start begins serving the API. It returns an error channel that
// receives any errors from the HTTP server after it starts; the channel
// is closed when the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
