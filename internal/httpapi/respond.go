// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deckforge/deckforge/internal/auth"
	"github.com/deckforge/deckforge/internal/catalog"
	"github.com/deckforge/deckforge/pkg/errutil"
)

// maxBodyBytes caps request bodies; every payload this API accepts is
// tiny.
const maxBodyBytes = 1 << 20

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForCode maps domain error codes to HTTP statuses. Codes not
// listed here are treated as internal errors.
func statusForCode(code string) int {
	switch code {
	case "AUTH_INVALID_USERNAME",
		"AUTH_USERNAME_MODERATED",
		"AUTH_INVALID_EMAIL",
		"AUTH_INVALID_PASSWORD",
		"AUTH_PASSWORD_TOO_COMMON",
		"DECK_INVALID_NAME",
		"DECK_INVALID_OWNER":
		return http.StatusBadRequest
	case "AUTH_DUPLICATE":
		return http.StatusConflict
	case "AUTH_INVALID_CREDENTIALS",
		"AUTH_REFRESH_NOT_FOUND",
		"AUTH_REFRESH_EXPIRED",
		"AUTH_USER_NOT_FOUND",
		"TOKEN_EMPTY",
		"TOKEN_MALFORMED",
		"TOKEN_EXPIRED",
		"TOKEN_INVALID":
		return http.StatusUnauthorized
	case "AUTH_REFRESH_FORBIDDEN":
		return http.StatusForbidden
	case "DECK_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns the body text for an error. Unauthorized and
// forbidden responses collapse to fixed strings so they leak nothing
// about which check failed; internal errors are fully opaque.
func clientMessage(code string, status int, err error) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		switch code {
		case "AUTH_INVALID_CREDENTIALS":
			return auth.MsgInvalidCredentials
		case "AUTH_REFRESH_NOT_FOUND", "AUTH_REFRESH_EXPIRED", "AUTH_REFRESH_FORBIDDEN":
			return auth.MsgInvalidRefreshToken
		default:
			return "invalid or expired access token"
		}
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	code := errutil.CodeOf(err)
	status := statusForCode(code)

	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	}

	writeJSON(w, status, errorResponse{Error: clientMessage(code, status, err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a request body into dst with a size cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
