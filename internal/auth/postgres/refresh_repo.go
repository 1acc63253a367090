// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/auth"
)

// RefreshTokenRepository implements auth.RefreshTokenRepository using
// PostgreSQL.
type RefreshTokenRepository struct {
	pool poolIface
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(pool poolIface) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Create stores a new refresh token row.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *auth.RefreshToken) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		token.ID.String(),
		token.UserID.String(),
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return oops.Code("REFRESH_CREATE_FAILED").
			With("user_id", token.UserID.String()).
			Wrap(err)
	}
	return nil
}

// ConsumeByTokenHash deletes the row with the given hash and returns it
// in one statement. The conditional DELETE ... RETURNING is what makes
// rotation race-free: of two concurrent refreshes presenting the same
// token, exactly one gets the row back; the other scans zero rows and
// gets auth.ErrNotFound.
func (r *RefreshTokenRepository) ConsumeByTokenHash(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1
		RETURNING id, user_id, token_hash, expires_at, created_at
	`, tokenHash)

	token, err := scanRefreshToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REFRESH_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REFRESH_CONSUME_FAILED").Wrap(err)
	}
	return token, nil
}

// CountByUser returns the number of rows for a user.
func (r *RefreshTokenRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1
	`, userID.String()).Scan(&count)
	if err != nil {
		return 0, oops.Code("REFRESH_COUNT_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return count, nil
}

// DeleteOldestByUser removes the single oldest row for a user, ordered
// by issuance time with the ULID as tiebreak. No rows is not an error.
func (r *RefreshTokenRepository) DeleteOldestByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE id = (
			SELECT id FROM refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		)
	`, userID.String())
	if err != nil {
		return oops.Code("REFRESH_EVICT_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteByUser removes all rows for a user and returns the count.
func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := queryEngine(ctx, r.pool).Exec(ctx, `
		DELETE FROM refresh_tokens WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return 0, oops.Code("REFRESH_DELETE_BY_USER_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// DeleteExpired removes all rows past expiry and returns the count.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := queryEngine(ctx, r.pool).Exec(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("REFRESH_DELETE_EXPIRED_FAILED").Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanRefreshToken scans a single row into a RefreshToken. Callers
// handle pgx.ErrNoRows.
func scanRefreshToken(row pgx.Row) (*auth.RefreshToken, error) {
	var (
		idStr     string
		userIDStr string
		tokenHash string
		expiresAt time.Time
		createdAt time.Time
	)

	err := row.Scan(&idStr, &userIDStr, &tokenHash, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("REFRESH_SCAN_FAILED").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("REFRESH_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("REFRESH_INVALID_USER_ID").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &auth.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
