// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package auth implements the DeckForge session core: credential
// validation, argon2id password hashing, JWT access tokens, and the
// persisted refresh-token protocol (rotation, per-user session cap,
// revocation, expiry sweep).
//
// The package is storage-agnostic. Persistence is reached through the
// UserRepository, RefreshTokenRepository, and Transactor interfaces;
// the PostgreSQL implementations live in the postgres subpackage.
package auth
