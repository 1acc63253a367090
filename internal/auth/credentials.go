// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20
)

// Password validation constraints.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// Username is a validated account name. The zero value is invalid;
// NewUsername is the only way to obtain a usable one.
type Username struct {
	value string
}

// NewUsername validates and constructs a Username.
// Rules: MinUsernameLength to MaxUsernameLength characters, no leading or
// trailing whitespace, and no moderation-list match (severe terms are
// banned anywhere in the name, common vulgarities only as whole tokens).
func NewUsername(raw string) (Username, error) {
	if raw == "" {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("field", "username").
			Errorf("username cannot be empty")
	}
	if strings.TrimSpace(raw) != raw {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("field", "username").
			Errorf("username cannot have leading or trailing whitespace")
	}
	// Length limits count characters, not bytes, so multibyte names are
	// measured the way users see them.
	if utf8.RuneCountInString(raw) < MinUsernameLength {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("field", "username").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if utf8.RuneCountInString(raw) > MaxUsernameLength {
		return Username{}, oops.Code("AUTH_INVALID_USERNAME").
			With("field", "username").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if containsModeratedTerm(raw) {
		// The offending term is intentionally absent from the message.
		return Username{}, oops.Code("AUTH_USERNAME_MODERATED").
			With("field", "username").
			Errorf("username contains a disallowed term")
	}
	return Username{value: raw}, nil
}

// String returns the username as entered.
func (u Username) String() string { return u.value }

// EmailAddress is a validated, normalized (trimmed, lower-cased) address.
type EmailAddress struct {
	value string
}

// NewEmailAddress validates and constructs an EmailAddress.
// The input is trimmed and lower-cased before validation; the normalized
// form is what gets stored and embedded in token claims.
func NewEmailAddress(raw string) (EmailAddress, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return EmailAddress{}, oops.Code("AUTH_INVALID_EMAIL").
			With("field", "email").
			Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return EmailAddress{}, oops.Code("AUTH_INVALID_EMAIL").
			With("field", "email").
			Errorf("email is not a valid address")
	}

	// mail.ParseAddress accepts local-only addresses; require a domain dot.
	at := strings.LastIndex(normalized, "@")
	if at < 0 || !strings.Contains(normalized[at+1:], ".") {
		return EmailAddress{}, oops.Code("AUTH_INVALID_EMAIL").
			With("field", "email").
			Errorf("email domain is not valid")
	}

	return EmailAddress{value: normalized}, nil
}

// String returns the normalized address.
func (e EmailAddress) String() string { return e.value }

// Password holds a validated plaintext password. It exists only
// transiently between validation and hashing; it is never persisted.
type Password struct {
	value string
}

// NewPassword validates and constructs a Password.
// Rules: MinPasswordLength to MaxPasswordLength characters, at least one
// letter and one digit, and not present (case-insensitively) in the
// common-password deny list.
func NewPassword(raw string) (Password, error) {
	if utf8.RuneCountInString(raw) < MinPasswordLength {
		return Password{}, oops.Code("AUTH_INVALID_PASSWORD").
			With("field", "password").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if utf8.RuneCountInString(raw) > MaxPasswordLength {
		return Password{}, oops.Code("AUTH_INVALID_PASSWORD").
			With("field", "password").
			With("max", MaxPasswordLength).
			Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return Password{}, oops.Code("AUTH_INVALID_PASSWORD").
			With("field", "password").
			Errorf("password must contain at least one letter and one digit")
	}

	if isCommonPassword(raw) {
		return Password{}, oops.Code("AUTH_PASSWORD_TOO_COMMON").
			With("field", "password").
			Errorf("password is too common")
	}

	return Password{value: raw}, nil
}

// String masks the plaintext so a Password can never leak through logging
// or formatted errors.
func (p Password) String() string { return "[redacted]" }

// reveal returns the plaintext for hashing and verification. Deliberately
// unexported: the plaintext does not leave this package.
func (p Password) reveal() string { return p.value }
