// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/observability"
)

// Session is the response envelope for every operation that establishes
// or renews a session. It is assembled per request and never persisted.
type Session struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service composes the credential validators, hasher, token issuer, and
// refresh token store into the register / authenticate / refresh /
// revoke lifecycle.
type Service struct {
	users     UserRepository
	refresh   RefreshTokenRepository
	tx        Transactor
	hasher    PasswordHasher
	jwtSecret string
	logger    *slog.Logger
}

// NewService creates a new Service. An empty jwtSecret is a
// configuration error: it is rejected here, at startup, so it can never
// surface as a per-request auth failure.
func NewService(users UserRepository, refresh RefreshTokenRepository, tx Transactor, hasher PasswordHasher, jwtSecret string) (*Service, error) {
	return NewServiceWithLogger(users, refresh, tx, hasher, jwtSecret, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, refresh RefreshTokenRepository, tx Transactor, hasher PasswordHasher, jwtSecret string, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("users repository is required")
	}
	if refresh == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("refresh token repository is required")
	}
	if tx == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("transactor is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if jwtSecret == "" {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("jwt secret is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{
		users:     users,
		refresh:   refresh,
		tx:        tx,
		hasher:    hasher,
		jwtSecret: jwtSecret,
		logger:    logger,
	}, nil
}

// dummyPasswordHash is verified against when a user doesn't exist, so a
// missing user and a wrong password take the same time to reject.
// This is NOT a real credential - it's a fake hash that will never match
// any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register validates all three fields, hashes the password, and creates
// the user together with their first session in one transaction, so a
// client disconnect cannot leave a half-created user without a session.
// Registration implies login.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	name, err := NewUsername(username)
	if err != nil {
		return nil, err
	}
	addr, err := NewEmailAddress(email)
	if err != nil {
		return nil, err
	}
	pass, err := NewPassword(password)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := NewUser(name, addr, hash)

	var session *Session
	txErr := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return oops.Code("AUTH_DUPLICATE").
					With("username", name.String()).
					Wrap(err)
			}
			return oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "insert user").
				Wrap(err)
		}
		session, err = s.createSessionTx(ctx, user)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "username", user.Username)
	return session, nil
}

// Authenticate verifies credentials and creates a session. The
// identifier may be a username or an email address. A missing user and a
// wrong password surface the identical error so the endpoint cannot be
// used as a user-enumeration oracle.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*Session, error) {
	user, lookupErr := s.lookupByIdentifier(ctx, identifier)

	targetHash := dummyPasswordHash
	userExists := false
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep going against the dummy hash for constant time.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "look up user").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && userExists {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		observability.RecordLogin("failure")
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("%s", MsgInvalidCredentials)
	}

	var session *Session
	txErr := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.createSessionTx(ctx, user)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.RecordLogin("success")
	s.logger.Info("user authenticated", "user_id", user.ID.String())
	return session, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a
// fresh pair is issued, all inside one transaction. A second presentation
// of the same token observes the deleted row and fails with
// AUTH_REFRESH_NOT_FOUND; an owner mismatch fails with
// AUTH_REFRESH_FORBIDDEN (logged at warn, the others at info); a token
// past its expiry fails with AUTH_REFRESH_EXPIRED. All three carry the
// same client-facing message.
func (s *Service) Refresh(ctx context.Context, userID uuid.UUID, presentedToken string) (*Session, error) {
	if presentedToken == "" {
		s.logger.Info("refresh rejected", "reason", "empty token", "user_id", userID.String())
		return nil, oops.Code("AUTH_REFRESH_NOT_FOUND").Errorf("%s", MsgInvalidRefreshToken)
	}

	tokenHash := HashRefreshToken(presentedToken)

	var session *Session
	txErr := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		row, err := s.refresh.ConsumeByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.logger.Info("refresh rejected", "reason", "token not found", "user_id", userID.String())
				return oops.Code("AUTH_REFRESH_NOT_FOUND").Errorf("%s", MsgInvalidRefreshToken)
			}
			return oops.Code("AUTH_REFRESH_FAILED").
				With("operation", "consume refresh token").
				Wrap(err)
		}

		// Returning an error from here rolls the consume back, so a
		// forbidden or expired token is not silently burned.
		if row.UserID != userID {
			s.logger.Warn("refresh token owner mismatch",
				"claimed_user_id", userID.String(),
				"owner_user_id", row.UserID.String(),
			)
			return oops.Code("AUTH_REFRESH_FORBIDDEN").Errorf("%s", MsgInvalidRefreshToken)
		}
		if row.IsExpired() {
			s.logger.Info("refresh rejected", "reason", "token expired", "user_id", userID.String())
			return oops.Code("AUTH_REFRESH_EXPIRED").Errorf("%s", MsgInvalidRefreshToken)
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return oops.Code("AUTH_REFRESH_FAILED").
				With("operation", "get user").
				Wrap(err)
		}

		session, err = s.createSessionTx(ctx, user)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	observability.RecordRefreshRotation()
	return session, nil
}

// VerifyAccess validates a bearer access token against the service
// secret and returns the decoded claims. This is the authenticated
// principal contract every protected endpoint uses as a precondition.
func (s *Service) VerifyAccess(token string) (*AccessClaims, error) {
	return VerifyAccessToken(token, s.jwtSecret)
}

// GetUser fetches a user's profile by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("user_id", userID.String()).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return user, nil
}

// RevokeSessions deletes all refresh tokens for a user (logout /
// revoke-all). Access tokens already issued remain valid until their
// natural expiry; the store has no revocation list for them.
func (s *Service) RevokeSessions(ctx context.Context, userID uuid.UUID) error {
	deleted, err := s.refresh.DeleteByUser(ctx, userID)
	if err != nil {
		return oops.Code("AUTH_REVOKE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	s.logger.Info("sessions revoked", "user_id", userID.String(), "deleted", deleted)
	return nil
}

// DeleteExpiredSessions sweeps rows past their expiry. Intended to run on
// a schedule (the sweep-sessions command), not per request.
func (s *Service) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := s.refresh.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("AUTH_SWEEP_FAILED").Wrap(err)
	}
	if deleted > 0 {
		observability.RecordSessionsSwept(deleted)
		s.logger.Info("expired sessions swept", "deleted", deleted)
	}
	return deleted, nil
}

// ChangeUsername re-validates and updates the username.
func (s *Service) ChangeUsername(ctx context.Context, userID uuid.UUID, newUsername string) error {
	name, err := NewUsername(newUsername)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUsername(ctx, userID, name.String()); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return oops.Code("AUTH_DUPLICATE").With("username", name.String()).Wrap(err)
		}
		return oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "update username").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// ChangeEmail re-validates, normalizes, and updates the email.
func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	addr, err := NewEmailAddress(newEmail)
	if err != nil {
		return err
	}
	if err := s.users.UpdateEmail(ctx, userID, addr.String()); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return oops.Code("AUTH_DUPLICATE").With("email", addr.String()).Wrap(err)
		}
		return oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "update email").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// ChangePassword verifies the current password, validates and hashes the
// new one, and revokes all existing sessions so stolen refresh tokens
// stop working the moment the password changes.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "get user").
			With("user_id", userID.String()).
			Wrap(err)
	}

	valid, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "verify current password").
			Wrap(err)
	}
	if !valid {
		return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("%s", MsgInvalidCredentials)
	}

	pass, err := NewPassword(newPassword)
	if err != nil {
		return err
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
			return oops.Code("AUTH_UPDATE_FAILED").
				With("operation", "update password").
				With("user_id", userID.String()).
				Wrap(err)
		}
		if _, err := s.refresh.DeleteByUser(ctx, userID); err != nil {
			return oops.Code("AUTH_UPDATE_FAILED").
				With("operation", "revoke sessions").
				With("user_id", userID.String()).
				Wrap(err)
		}
		return nil
	})
}

// DeleteAccount removes the user; refresh token rows cascade.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return oops.Code("AUTH_DELETE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	s.logger.Info("account deleted", "user_id", userID.String())
	return nil
}

// createSessionTx enforces the session cap, persists a new refresh token
// row, and mints the access token. Must run inside a transaction: the
// count-evict-insert sequence is only race-free when it shares the
// caller's transaction.
func (s *Service) createSessionTx(ctx context.Context, user *User) (*Session, error) {
	count, err := s.refresh.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "count sessions").
			Wrap(err)
	}
	if count >= MaxSessionsPerUser {
		if err := s.refresh.DeleteOldestByUser(ctx, user.ID); err != nil {
			return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
				With("operation", "evict oldest session").
				Wrap(err)
		}
		observability.RecordSessionEviction()
		s.logger.Info("session cap reached, oldest session evicted",
			"user_id", user.ID.String(),
			"cap", MaxSessionsPerUser,
		)
	}

	plaintext, tokenHash, err := GenerateRefreshToken()
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "generate refresh token").
			Wrap(err)
	}

	row, err := NewRefreshToken(user.ID, tokenHash, time.Now().Add(RefreshTokenTTL))
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "build refresh token").
			Wrap(err)
	}
	if err := s.refresh.Create(ctx, row); err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist refresh token").
			Wrap(err)
	}

	email, err := NewEmailAddress(user.Email)
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "normalize stored email").
			Wrap(err)
	}
	accessToken, err := IssueAccessToken(user.ID, email, s.jwtSecret)
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: plaintext,
	}, nil
}

// lookupByIdentifier fetches a user by username or, when the identifier
// looks like an email address, by normalized email.
func (s *Service) lookupByIdentifier(ctx context.Context, identifier string) (*User, error) {
	if addr, err := NewEmailAddress(identifier); err == nil {
		return s.users.GetByEmail(ctx, addr.String())
	}
	return s.users.GetByUsername(ctx, identifier)
}
