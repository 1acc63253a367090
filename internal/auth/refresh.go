// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Refresh token configuration.
const (
	// RefreshTokenBytes of entropy per token; 32 bytes = 64 hex chars.
	RefreshTokenBytes = 32

	// RefreshTokenTTL is the lifetime of a refresh token from issuance.
	RefreshTokenTTL = 14 * 24 * time.Hour

	// MaxSessionsPerUser caps live refresh tokens per user. Exceeding the
	// cap evicts the oldest token by issuance time (FIFO, not LRU).
	MaxSessionsPerUser = 5
)

// RefreshToken is one live session row. The server stores only the
// SHA-256 hash of the token; the plaintext exists only in the response
// that delivered it to the client.
type RefreshToken struct {
	ID        ulid.ULID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshToken creates a validated RefreshToken row for a user.
func NewRefreshToken(userID uuid.UUID, tokenHash string, expiresAt time.Time) (*RefreshToken, error) {
	if userID == uuid.Nil {
		return nil, oops.Code("REFRESH_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("REFRESH_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("REFRESH_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &RefreshToken{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the token is past its expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

// IsExpiredAt returns true if the token would be expired at the given
// time. Useful for testing with deterministic time values.
func (t *RefreshToken) IsExpiredAt(at time.Time) bool {
	return at.After(t.ExpiresAt)
}

// GenerateRefreshToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error). The plaintext goes to
// the client; only the hash is stored.
func GenerateRefreshToken() (token, hash string, err error) {
	tokenBytes := make([]byte, RefreshTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("REFRESH_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashRefreshToken(token)

	return token, hash, nil
}

// HashRefreshToken computes the SHA-256 hash of a refresh token.
func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyRefreshToken checks if the plaintext token matches the stored
// hash using a constant-time comparison.
func VerifyRefreshToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// RefreshTokenRepository manages refresh token persistence. Mutating
// methods participate in a surrounding transaction when the context
// carries one (see Transactor).
type RefreshTokenRepository interface {
	// Create stores a new refresh token row.
	Create(ctx context.Context, token *RefreshToken) error

	// ConsumeByTokenHash atomically deletes the row with the given hash
	// and returns it. Returns ErrNotFound if no row matched, which is how
	// the loser of a concurrent refresh race observes the rotation.
	// Run inside a transaction so a rejection (owner mismatch, expiry)
	// can roll the delete back.
	ConsumeByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// CountByUser returns the number of live rows for a user.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteOldestByUser removes the single oldest row (by issuance time)
	// for a user. Deleting from an empty set is not an error.
	DeleteOldestByUser(ctx context.Context, userID uuid.UUID) error

	// DeleteByUser removes all rows for a user and returns the count.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteExpired removes all rows past expiry and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Transactor runs a function inside a single database transaction.
// Repository calls made with the context it passes to fn join that
// transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
