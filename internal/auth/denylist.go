// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package auth

import (
	_ "embed"
	"strings"
	"sync"
	"unicode"

	"github.com/gobwas/glob"
)

// Deny-list data, one entry per line, '#' starts a comment line.
// The files are embedded so the process never depends on runtime
// configuration for its moderation behavior.
var (
	//go:embed data/common_passwords.txt
	commonPasswordsRaw string

	//go:embed data/banned_severe.txt
	bannedSevereRaw string

	//go:embed data/banned_vulgar.txt
	bannedVulgarRaw string
)

// Deny lists are built once and never mutated afterwards, so lookups are
// safe for concurrent use without locking.
var (
	denyListOnce    sync.Once
	commonPasswords map[string]struct{}
	severePatterns  []glob.Glob
	vulgarTokens    map[string]struct{}
)

func initDenyLists() {
	denyListOnce.Do(func() {
		commonPasswords = make(map[string]struct{})
		for _, entry := range parseDenyList(commonPasswordsRaw) {
			commonPasswords[entry] = struct{}{}
		}

		for _, entry := range parseDenyList(bannedSevereRaw) {
			// Quoting the term keeps glob metacharacters in list entries
			// from being interpreted.
			severePatterns = append(severePatterns, glob.MustCompile("*"+glob.QuoteMeta(entry)+"*"))
		}

		vulgarTokens = make(map[string]struct{})
		for _, entry := range parseDenyList(bannedVulgarRaw) {
			vulgarTokens[entry] = struct{}{}
		}
	})
}

// parseDenyList splits raw file content into lower-cased entries,
// skipping blanks and comments.
func parseDenyList(raw string) []string {
	var entries []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, strings.ToLower(line))
	}
	return entries
}

// isCommonPassword reports whether the candidate appears in the curated
// common-password list. Matching is case-insensitive and exact.
func isCommonPassword(candidate string) bool {
	initDenyLists()
	_, found := commonPasswords[strings.ToLower(candidate)]
	return found
}

// containsModeratedTerm applies the two-tier moderation filter:
// severe terms are rejected as substrings anywhere in the name, common
// vulgarities only as whole tokens, so "grass" is not rejected for
// containing "ass".
func containsModeratedTerm(name string) bool {
	initDenyLists()
	lowered := strings.ToLower(name)

	for _, pattern := range severePatterns {
		if pattern.Match(lowered) {
			return true
		}
	}

	for _, token := range splitNameTokens(lowered) {
		if _, found := vulgarTokens[token]; found {
			return true
		}
	}
	return false
}

// splitNameTokens breaks a name into maximal letter runs, so "bad_ass99"
// yields ["bad", "ass"].
func splitNameTokens(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
