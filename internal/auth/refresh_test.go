// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/pkg/errutil"
)

func TestNewRefreshToken(t *testing.T) {
	userID := uuid.New()
	expiry := time.Now().Add(RefreshTokenTTL)

	row, err := NewRefreshToken(userID, "somehash", expiry)
	require.NoError(t, err)

	assert.NotZero(t, row.ID)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, "somehash", row.TokenHash)
	assert.Equal(t, expiry, row.ExpiresAt)
	assert.False(t, row.IsExpired())
}

func TestNewRefreshToken_Invalid(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	_, err := NewRefreshToken(uuid.Nil, "hash", expiry)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "REFRESH_INVALID_USER")

	_, err = NewRefreshToken(uuid.New(), "", expiry)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "REFRESH_INVALID_HASH")

	_, err = NewRefreshToken(uuid.New(), "hash", time.Time{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "REFRESH_INVALID_EXPIRY")
}

func TestRefreshToken_IsExpiredAt(t *testing.T) {
	expiry := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	row := &RefreshToken{ExpiresAt: expiry}

	assert.False(t, row.IsExpiredAt(expiry.Add(-time.Second)))
	assert.False(t, row.IsExpiredAt(expiry), "expiry instant itself is still valid")
	assert.True(t, row.IsExpiredAt(expiry.Add(time.Second)))
}

func TestGenerateRefreshToken(t *testing.T) {
	token, hash, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, token, RefreshTokenBytes*2, "token is hex-encoded")
	assert.Equal(t, HashRefreshToken(token), hash)
	assert.NotEqual(t, token, hash)

	// Uniqueness across calls.
	token2, _, err := GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestVerifyRefreshToken(t *testing.T) {
	token, hash, err := GenerateRefreshToken()
	require.NoError(t, err)

	assert.True(t, VerifyRefreshToken(token, hash))
	assert.False(t, VerifyRefreshToken("tampered"+token[8:], hash))
	assert.False(t, VerifyRefreshToken("", hash))
	assert.False(t, VerifyRefreshToken(token, ""))
}
