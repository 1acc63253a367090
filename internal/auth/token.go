// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// AccessTokenTTL is the lifetime of an access token from issuance.
// Access tokens are stateless and cannot be revoked early; this window
// bounds the blast radius of a leaked token.
const AccessTokenTTL = 24 * time.Hour

// AccessClaims are the identity claims carried by an access token.
// Raw token strings never travel past VerifyAccessToken; everything
// downstream works with this struct.
type AccessClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// IssueAccessToken mints a signed HS256 access token for the user with
// iat = now and exp = now + AccessTokenTTL.
// An empty secret is a configuration error, not an auth failure.
func IssueAccessToken(userID uuid.UUID, email EmailAddress, secret string) (string, error) {
	if secret == "" {
		return "", oops.Code("TOKEN_SECRET_MISSING").Errorf("jwt secret is not configured")
	}

	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		Email:  email.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// VerifyAccessToken checks structure, signature, and expiry, and returns
// the decoded claims. Empty tokens and a missing secret are reported as
// distinct configuration errors rather than generic auth failures.
func VerifyAccessToken(tokenStr, secret string) (*AccessClaims, error) {
	if secret == "" {
		return nil, oops.Code("TOKEN_SECRET_MISSING").Errorf("jwt secret is not configured")
	}
	if tokenStr == "" {
		return nil, oops.Code("TOKEN_EMPTY").Errorf("access token cannot be empty")
	}
	if strings.Count(tokenStr, ".") != 2 {
		return nil, oops.Code("TOKEN_MALFORMED").Errorf("access token is not a three-segment jwt")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(err)
		}
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, oops.Code("TOKEN_INVALID").Errorf("token is missing the uid claim")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, oops.Code("TOKEN_INVALID").With("uid", claims.UserID).Wrap(err)
	}

	return claims, nil
}
