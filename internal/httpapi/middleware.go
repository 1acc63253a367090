// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// principal is the authenticated identity derived from a bearer token.
type principal struct {
	UserID uuid.UUID
	Email  string
}

// principalKey is the context key for the request principal.
type principalKey struct{}

// principalFrom returns the principal stored by requireAuth.
func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// requireAuth validates the Authorization bearer token and stores the
// decoded principal in the request context.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := s.sessions.VerifyAccess(token)
		if err != nil {
			s.writeError(w, err)
			return
		}

		// VerifyAccess guarantees uid parses.
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			s.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal{
			UserID: userID,
			Email:  claims.Email,
		})
		next(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and duration per route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
