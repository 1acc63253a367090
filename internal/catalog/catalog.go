// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package catalog holds the card and deck domain the session core
// serves. Deck access is always scoped to an owner; the HTTP layer
// derives the owner from validated access token claims, never from the
// request body.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Card is one printable card from the game catalog. Rows are written by
// the bulk sync pipeline, which is outside this service; the session
// core and deck handlers only read them.
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SetCode  string `json:"set_code"`
	ManaCost string `json:"mana_cost"`
	TypeLine string `json:"type_line"`
	Rarity   string `json:"rarity"`
	ImageURL string `json:"image_url"`
}

// Deck is a user-owned deck.
type Deck struct {
	ID        ulid.ULID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	Cards     []DeckCard `json:"cards,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DeckCard is one card entry in a deck.
type DeckCard struct {
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
}

// NewDeck creates a validated Deck for an owner.
func NewDeck(ownerID uuid.UUID, name, format string) (*Deck, error) {
	if ownerID == uuid.Nil {
		return nil, oops.Code("DECK_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if name == "" {
		return nil, oops.Code("DECK_INVALID_NAME").Errorf("deck name cannot be empty")
	}

	now := time.Now()
	return &Deck{
		ID:        ulid.Make(),
		OwnerID:   ownerID,
		Name:      name,
		Format:    format,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DeckRepository manages deck persistence. Every read and mutation is
// keyed by owner as well as deck id, so a caller can never touch a deck
// it does not own.
type DeckRepository interface {
	// Create stores a new deck.
	Create(ctx context.Context, deck *Deck) error

	// GetByID retrieves a deck with its card entries, scoped to owner.
	GetByID(ctx context.Context, ownerID uuid.UUID, id ulid.ULID) (*Deck, error)

	// ListByOwner retrieves all decks for an owner, without card entries.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Deck, error)

	// SetCard upserts one card entry in an owned deck.
	SetCard(ctx context.Context, ownerID uuid.UUID, deckID ulid.ULID, entry DeckCard) error

	// RemoveCard removes one card entry from an owned deck.
	RemoveCard(ctx context.Context, ownerID uuid.UUID, deckID ulid.ULID, cardID string) error

	// Delete removes an owned deck and its card entries.
	Delete(ctx context.Context, ownerID uuid.UUID, id ulid.ULID) error
}
