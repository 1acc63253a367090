// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. Unique violations on username or email are
// wrapped with auth.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := queryEngine(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`, username)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_USERNAME_FAILED").Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := queryEngine(ctx, r.pool).QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").Wrap(err)
	}
	return user, nil
}

// UpdateUsername updates only the username.
func (r *UserRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return r.updateColumn(ctx, id, "username", username)
}

// UpdateEmail updates only the email.
func (r *UserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	return r.updateColumn(ctx, id, "email", email)
}

// UpdatePassword updates only the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

// updateColumn updates a single column plus updated_at. The column name
// comes from the fixed call sites above, never from input.
func (r *UserRepository) updateColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	result, err := queryEngine(ctx, r.pool).Exec(ctx, `
		UPDATE users SET `+column+` = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), value, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE").
				With("column", column).
				Wrap(auth.ErrDuplicate)
		}
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update "+column).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a user. Refresh token rows cascade via the schema.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := queryEngine(ctx, r.pool).Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User. Callers handle pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr        string
		username     string
		email        string
		passwordHash string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&idStr, &username, &email, &passwordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").Wrap(err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
