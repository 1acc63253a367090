// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deckforge/deckforge/pkg/errutil"
)

// Function-field stubs so each test overrides exactly the calls it
// cares about. Unstubbed calls fail loudly.

type stubUserRepo struct {
	create         func(ctx context.Context, user *User) error
	getByID        func(ctx context.Context, id uuid.UUID) (*User, error)
	getByUsername  func(ctx context.Context, username string) (*User, error)
	getByEmail     func(ctx context.Context, email string) (*User, error)
	updateUsername func(ctx context.Context, id uuid.UUID, username string) error
	updateEmail    func(ctx context.Context, id uuid.UUID, email string) error
	updatePassword func(ctx context.Context, id uuid.UUID, passwordHash string) error
	delete         func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUserRepo) Create(ctx context.Context, user *User) error {
	if s.create == nil {
		panic("unexpected Create call")
	}
	return s.create(ctx, user)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if s.getByID == nil {
		panic("unexpected GetByID call")
	}
	return s.getByID(ctx, id)
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	if s.getByUsername == nil {
		panic("unexpected GetByUsername call")
	}
	return s.getByUsername(ctx, username)
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	if s.getByEmail == nil {
		panic("unexpected GetByEmail call")
	}
	return s.getByEmail(ctx, email)
}

func (s *stubUserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	if s.updateUsername == nil {
		panic("unexpected UpdateUsername call")
	}
	return s.updateUsername(ctx, id, username)
}

func (s *stubUserRepo) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	if s.updateEmail == nil {
		panic("unexpected UpdateEmail call")
	}
	return s.updateEmail(ctx, id, email)
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if s.updatePassword == nil {
		panic("unexpected UpdatePassword call")
	}
	return s.updatePassword(ctx, id, passwordHash)
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete == nil {
		panic("unexpected Delete call")
	}
	return s.delete(ctx, id)
}

type stubRefreshRepo struct {
	create             func(ctx context.Context, token *RefreshToken) error
	consumeByTokenHash func(ctx context.Context, tokenHash string) (*RefreshToken, error)
	countByUser        func(ctx context.Context, userID uuid.UUID) (int, error)
	deleteOldestByUser func(ctx context.Context, userID uuid.UUID) error
	deleteByUser       func(ctx context.Context, userID uuid.UUID) (int64, error)
	deleteExpired      func(ctx context.Context) (int64, error)
}

func (s *stubRefreshRepo) Create(ctx context.Context, token *RefreshToken) error {
	if s.create == nil {
		panic("unexpected Create call")
	}
	return s.create(ctx, token)
}

func (s *stubRefreshRepo) ConsumeByTokenHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	if s.consumeByTokenHash == nil {
		panic("unexpected ConsumeByTokenHash call")
	}
	return s.consumeByTokenHash(ctx, tokenHash)
}

func (s *stubRefreshRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.countByUser == nil {
		panic("unexpected CountByUser call")
	}
	return s.countByUser(ctx, userID)
}

func (s *stubRefreshRepo) DeleteOldestByUser(ctx context.Context, userID uuid.UUID) error {
	if s.deleteOldestByUser == nil {
		panic("unexpected DeleteOldestByUser call")
	}
	return s.deleteOldestByUser(ctx, userID)
}

func (s *stubRefreshRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.deleteByUser == nil {
		panic("unexpected DeleteByUser call")
	}
	return s.deleteByUser(ctx, userID)
}

func (s *stubRefreshRepo) DeleteExpired(ctx context.Context) (int64, error) {
	if s.deleteExpired == nil {
		panic("unexpected DeleteExpired call")
	}
	return s.deleteExpired(ctx)
}

// passthroughTx runs the function inline and records whether the outer
// transaction would have committed or rolled back.
type passthroughTx struct {
	calls      int
	rolledBack bool
}

func (t *passthroughTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		return err
	}
	return nil
}

const testJWTSecret = "unit-test-secret"

// testUser builds a stored user with a real hash of the given password.
func testUser(t *testing.T, username, email, password string) *User {
	t.Helper()
	hash, err := NewArgon2idHasher().Hash(mustPassword(t, password))
	require.NoError(t, err)
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// sessionCapableRefresh stubs the happy-path session creation calls.
func sessionCapableRefresh(created *[]*RefreshToken) *stubRefreshRepo {
	return &stubRefreshRepo{
		countByUser: func(context.Context, uuid.UUID) (int, error) { return 0, nil },
		create: func(_ context.Context, token *RefreshToken) error {
			if created != nil {
				*created = append(*created, token)
			}
			return nil
		},
	}
}

func newTestService(t *testing.T, users UserRepository, refresh RefreshTokenRepository, tx Transactor) *Service {
	t.Helper()
	svc, err := NewServiceWithLogger(users, refresh, tx, NewArgon2idHasher(), testJWTSecret, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestNewService_Validation(t *testing.T) {
	users := &stubUserRepo{}
	refresh := &stubRefreshRepo{}
	tx := &passthroughTx{}
	hasher := NewArgon2idHasher()

	tests := []struct {
		name string
		fn   func() (*Service, error)
	}{
		{"nil users", func() (*Service, error) { return NewService(nil, refresh, tx, hasher, testJWTSecret) }},
		{"nil refresh", func() (*Service, error) { return NewService(users, nil, tx, hasher, testJWTSecret) }},
		{"nil transactor", func() (*Service, error) { return NewService(users, refresh, nil, hasher, testJWTSecret) }},
		{"nil hasher", func() (*Service, error) { return NewService(users, refresh, tx, nil, testJWTSecret) }},
		{"empty secret", func() (*Service, error) { return NewService(users, refresh, tx, hasher, "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "AUTH_CONFIG_INVALID")
		})
	}
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	var createdUser *User
	var createdTokens []*RefreshToken

	users := &stubUserRepo{
		create: func(_ context.Context, user *User) error {
			createdUser = user
			return nil
		},
	}
	tx := &passthroughTx{}
	svc := newTestService(t, users, sessionCapableRefresh(&createdTokens), tx)

	session, err := svc.Register(context.Background(), "alice", "Alice@Example.COM", "correct-h0rse")
	require.NoError(t, err)

	require.NotNil(t, createdUser)
	assert.Equal(t, "alice", createdUser.Username)
	assert.Equal(t, "alice@example.com", createdUser.Email, "email is stored normalized")
	assert.NotEqual(t, "correct-h0rse", createdUser.PasswordHash)

	assert.Equal(t, 1, tx.calls, "user insert and session creation share one transaction")
	require.Len(t, createdTokens, 1)
	assert.Equal(t, createdUser.ID, createdTokens[0].UserID)
	assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), createdTokens[0].ExpiresAt, time.Minute)

	// Registration implies login: both tokens come back.
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, HashRefreshToken(session.RefreshToken), createdTokens[0].TokenHash,
		"only the hash is persisted")

	claims, err := svc.VerifyAccess(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, createdUser.ID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestRegister_Duplicate(t *testing.T) {
	users := &stubUserRepo{
		create: func(context.Context, *User) error {
			return fmt.Errorf("unique violation: %w", ErrDuplicate)
		},
	}
	tx := &passthroughTx{}
	svc := newTestService(t, users, &stubRefreshRepo{}, tx)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "correct-h0rse")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_DUPLICATE")
	assert.True(t, tx.rolledBack)
}

func TestRegister_ValidationShortCircuits(t *testing.T) {
	// No repository stubs: validation failures must never touch storage.
	svc := newTestService(t, &stubUserRepo{}, &stubRefreshRepo{}, &passthroughTx{})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantCode string
	}{
		{"bad username", "ab", "a@example.com", "correct-h0rse", "AUTH_INVALID_USERNAME"},
		{"moderated username", "bad_ass", "a@example.com", "correct-h0rse", "AUTH_USERNAME_MODERATED"},
		{"bad email", "alice", "nope", "correct-h0rse", "AUTH_INVALID_EMAIL"},
		{"bad password", "alice", "a@example.com", "short1", "AUTH_INVALID_PASSWORD"},
		{"common password", "alice", "a@example.com", "password123", "AUTH_PASSWORD_TOO_COMMON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")
	users := &stubUserRepo{
		getByUsername: func(_ context.Context, username string) (*User, error) {
			require.Equal(t, "alice", username)
			return user, nil
		},
	}
	svc := newTestService(t, users, sessionCapableRefresh(nil), &passthroughTx{})

	session, err := svc.Authenticate(context.Background(), "alice", "correct-h0rse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
}

func TestAuthenticate_EmailIdentifierIsNormalized(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")
	users := &stubUserRepo{
		getByEmail: func(_ context.Context, email string) (*User, error) {
			require.Equal(t, "alice@example.com", email, "lookup uses the normalized address")
			return user, nil
		},
	}
	svc := newTestService(t, users, sessionCapableRefresh(nil), &passthroughTx{})

	_, err := svc.Authenticate(context.Background(), "  ALICE@Example.com ", "correct-h0rse")
	require.NoError(t, err)
}

func TestAuthenticate_IdenticalErrorsForUnknownUserAndWrongPassword(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")
	users := &stubUserRepo{
		getByUsername: func(_ context.Context, username string) (*User, error) {
			if username == "alice" {
				return user, nil
			}
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

	_, unknownErr := svc.Authenticate(context.Background(), "nobody", "correct-h0rse")
	_, wrongPassErr := svc.Authenticate(context.Background(), "alice", "wrong-passw0rd")

	require.Error(t, unknownErr)
	require.Error(t, wrongPassErr)
	errutil.AssertErrorCode(t, unknownErr, "AUTH_INVALID_CREDENTIALS")
	errutil.AssertErrorCode(t, wrongPassErr, "AUTH_INVALID_CREDENTIALS")
	assert.Equal(t, unknownErr.Error(), wrongPassErr.Error(),
		"the two failures must be indistinguishable to the caller")
}

func TestAuthenticate_StorageErrorIsNotCredentialFailure(t *testing.T) {
	users := &stubUserRepo{
		getByUsername: func(context.Context, string) (*User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

	_, err := svc.Authenticate(context.Background(), "alice", "correct-h0rse")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_LOGIN_FAILED")
}

func TestSessionCap_EvictsOldestAtLimit(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")
	evicted := 0

	users := &stubUserRepo{
		getByUsername: func(context.Context, string) (*User, error) { return user, nil },
	}
	refresh := &stubRefreshRepo{
		countByUser: func(context.Context, uuid.UUID) (int, error) { return MaxSessionsPerUser, nil },
		deleteOldestByUser: func(_ context.Context, userID uuid.UUID) error {
			require.Equal(t, user.ID, userID)
			evicted++
			return nil
		},
		create: func(context.Context, *RefreshToken) error { return nil },
	}
	svc := newTestService(t, users, refresh, &passthroughTx{})

	_, err := svc.Authenticate(context.Background(), "alice", "correct-h0rse")
	require.NoError(t, err)
	assert.Equal(t, 1, evicted, "login at the cap evicts exactly one session")
}

func TestSessionCap_NoEvictionBelowLimit(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")

	users := &stubUserRepo{
		getByUsername: func(context.Context, string) (*User, error) { return user, nil },
	}
	refresh := &stubRefreshRepo{
		countByUser: func(context.Context, uuid.UUID) (int, error) { return MaxSessionsPerUser - 1, nil },
		create:      func(context.Context, *RefreshToken) error { return nil },
		// deleteOldestByUser deliberately unstubbed: calling it would panic.
	}
	svc := newTestService(t, users, refresh, &passthroughTx{})

	_, err := svc.Authenticate(context.Background(), "alice", "correct-h0rse")
	require.NoError(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")
	oldToken, oldHash, err := GenerateRefreshToken()
	require.NoError(t, err)

	var consumedHash string
	var createdTokens []*RefreshToken

	users := &stubUserRepo{
		getByID: func(_ context.Context, id uuid.UUID) (*User, error) {
			require.Equal(t, user.ID, id)
			return user, nil
		},
	}
	refresh := &stubRefreshRepo{
		consumeByTokenHash: func(_ context.Context, tokenHash string) (*RefreshToken, error) {
			consumedHash = tokenHash
			return &RefreshToken{
				UserID:    user.ID,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(time.Hour),
				CreatedAt: time.Now().Add(-time.Hour),
			}, nil
		},
		countByUser: func(context.Context, uuid.UUID) (int, error) { return 1, nil },
		create: func(_ context.Context, token *RefreshToken) error {
			createdTokens = append(createdTokens, token)
			return nil
		},
	}
	tx := &passthroughTx{}
	svc := newTestService(t, users, refresh, tx)

	session, err := svc.Refresh(context.Background(), user.ID, oldToken)
	require.NoError(t, err)

	assert.Equal(t, oldHash, consumedHash, "the presented token is consumed by hash")
	require.Len(t, createdTokens, 1)
	assert.NotEqual(t, oldHash, createdTokens[0].TokenHash, "rotation issues a new token")
	assert.NotEqual(t, oldToken, session.RefreshToken)
	assert.Equal(t, 1, tx.calls, "consume and re-issue share one transaction")
	assert.False(t, tx.rolledBack)
}

func TestRefresh_NotFound(t *testing.T) {
	refresh := &stubRefreshRepo{
		consumeByTokenHash: func(context.Context, string) (*RefreshToken, error) {
			return nil, ErrNotFound
		},
	}
	svc := newTestService(t, &stubUserRepo{}, refresh, &passthroughTx{})

	_, err := svc.Refresh(context.Background(), uuid.New(), "unknown-token")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_REFRESH_NOT_FOUND")
	assert.Contains(t, err.Error(), MsgInvalidRefreshToken)
}

func TestRefresh_EmptyToken(t *testing.T) {
	svc := newTestService(t, &stubUserRepo{}, &stubRefreshRepo{}, &passthroughTx{})

	_, err := svc.Refresh(context.Background(), uuid.New(), "")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_REFRESH_NOT_FOUND")
}

func TestRefresh_OwnerMismatchRollsBack(t *testing.T) {
	owner := uuid.New()
	attacker := uuid.New()

	refresh := &stubRefreshRepo{
		consumeByTokenHash: func(_ context.Context, tokenHash string) (*RefreshToken, error) {
			return &RefreshToken{
				UserID:    owner,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	tx := &passthroughTx{}
	svc := newTestService(t, &stubUserRepo{}, refresh, tx)

	_, err := svc.Refresh(context.Background(), attacker, "stolen-token")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_REFRESH_FORBIDDEN")
	assert.True(t, tx.rolledBack, "the consume must roll back so the owner's token survives")
	assert.Contains(t, err.Error(), MsgInvalidRefreshToken,
		"client message must not reveal that the token exists")
}

func TestRefresh_ExpiredRollsBack(t *testing.T) {
	userID := uuid.New()

	refresh := &stubRefreshRepo{
		consumeByTokenHash: func(_ context.Context, tokenHash string) (*RefreshToken, error) {
			return &RefreshToken{
				UserID:    userID,
				TokenHash: tokenHash,
				ExpiresAt: time.Now().Add(-time.Minute),
			}, nil
		},
	}
	tx := &passthroughTx{}
	svc := newTestService(t, &stubUserRepo{}, refresh, tx)

	_, err := svc.Refresh(context.Background(), userID, "stale-token")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_REFRESH_EXPIRED")
	assert.True(t, tx.rolledBack)
	assert.Contains(t, err.Error(), MsgInvalidRefreshToken)
}

func TestRevokeSessions(t *testing.T) {
	userID := uuid.New()
	refresh := &stubRefreshRepo{
		deleteByUser: func(_ context.Context, id uuid.UUID) (int64, error) {
			require.Equal(t, userID, id)
			return 3, nil
		},
	}
	svc := newTestService(t, &stubUserRepo{}, refresh, &passthroughTx{})

	require.NoError(t, svc.RevokeSessions(context.Background(), userID))
}

func TestDeleteExpiredSessions(t *testing.T) {
	refresh := &stubRefreshRepo{
		deleteExpired: func(context.Context) (int64, error) { return 42, nil },
	}
	svc := newTestService(t, &stubUserRepo{}, refresh, &passthroughTx{})

	deleted, err := svc.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), deleted)
}

func TestChangePassword(t *testing.T) {
	user := testUser(t, "alice", "alice@example.com", "correct-h0rse")

	t.Run("wrong current password", func(t *testing.T) {
		users := &stubUserRepo{
			getByID: func(context.Context, uuid.UUID) (*User, error) { return user, nil },
		}
		svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

		err := svc.ChangePassword(context.Background(), user.ID, "wrong-passw0rd", "brand-new-pass9")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("success revokes sessions", func(t *testing.T) {
		var updatedHash string
		revoked := false

		users := &stubUserRepo{
			getByID: func(context.Context, uuid.UUID) (*User, error) { return user, nil },
			updatePassword: func(_ context.Context, _ uuid.UUID, passwordHash string) error {
				updatedHash = passwordHash
				return nil
			},
		}
		refresh := &stubRefreshRepo{
			deleteByUser: func(context.Context, uuid.UUID) (int64, error) {
				revoked = true
				return 2, nil
			},
		}
		tx := &passthroughTx{}
		svc := newTestService(t, users, refresh, tx)

		err := svc.ChangePassword(context.Background(), user.ID, "correct-h0rse", "brand-new-pass9")
		require.NoError(t, err)

		assert.True(t, revoked, "all sessions are revoked on password change")
		assert.Equal(t, 1, tx.calls, "update and revoke share one transaction")

		ok, err := NewArgon2idHasher().Verify("brand-new-pass9", updatedHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("invalid new password", func(t *testing.T) {
		users := &stubUserRepo{
			getByID: func(context.Context, uuid.UUID) (*User, error) { return user, nil },
		}
		svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

		err := svc.ChangePassword(context.Background(), user.ID, "correct-h0rse", "short1")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})
}

func TestChangeUsername(t *testing.T) {
	userID := uuid.New()

	t.Run("revalidates", func(t *testing.T) {
		svc := newTestService(t, &stubUserRepo{}, &stubRefreshRepo{}, &passthroughTx{})

		err := svc.ChangeUsername(context.Background(), userID, "bad_ass")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_USERNAME_MODERATED")
	})

	t.Run("duplicate", func(t *testing.T) {
		users := &stubUserRepo{
			updateUsername: func(context.Context, uuid.UUID, string) error {
				return fmt.Errorf("unique violation: %w", ErrDuplicate)
			},
		}
		svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

		err := svc.ChangeUsername(context.Background(), userID, "taken")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_DUPLICATE")
	})
}

func TestChangeEmail_Normalizes(t *testing.T) {
	userID := uuid.New()
	users := &stubUserRepo{
		updateEmail: func(_ context.Context, _ uuid.UUID, email string) error {
			assert.Equal(t, "new@example.com", email)
			return nil
		},
	}
	svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

	require.NoError(t, svc.ChangeEmail(context.Background(), userID, " NEW@Example.com "))
}

func TestDeleteAccount(t *testing.T) {
	userID := uuid.New()
	deleted := false
	users := &stubUserRepo{
		delete: func(_ context.Context, id uuid.UUID) error {
			require.Equal(t, userID, id)
			deleted = true
			return nil
		},
	}
	svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

	require.NoError(t, svc.DeleteAccount(context.Background(), userID))
	assert.True(t, deleted)
}

func TestGetUser_NotFound(t *testing.T) {
	users := &stubUserRepo{
		getByID: func(context.Context, uuid.UUID) (*User, error) { return nil, ErrNotFound },
	}
	svc := newTestService(t, users, &stubRefreshRepo{}, &passthroughTx{})

	_, err := svc.GetUser(context.Background(), uuid.New())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_USER_NOT_FOUND")
}
