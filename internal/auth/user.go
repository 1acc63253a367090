// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents an account. PasswordHash never crosses the server
// boundary: it is excluded from JSON and only the Verify path reads it.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser constructs a User from validated credentials and a hash.
func NewUser(username Username, email EmailAddress, passwordHash string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Username:     username.String(),
		Email:        email.String(),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UserRepository manages user persistence. Username and email carry
// unique constraints; violations surface as pgerrcode.UniqueViolation
// for the service layer to map to a Duplicate error.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUsername updates only the username.
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error

	// UpdateEmail updates only the email.
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error

	// UpdatePassword updates only the password hash.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// Delete removes a user. Refresh tokens cascade at the schema level.
	Delete(ctx context.Context, id uuid.UUID) error
}
