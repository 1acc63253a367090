// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update hits a unique
// constraint (username or email already taken).
var ErrDuplicate = errors.New("duplicate")

// Client-facing messages for the unauthorized family. Every member of the
// family surfaces the same string so a caller cannot tell which check
// failed; the oops code carries the distinction for server-side logs.
const (
	MsgInvalidCredentials  = "invalid username or password"
	MsgInvalidRefreshToken = "invalid refresh token"
)
