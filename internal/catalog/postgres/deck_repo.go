// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

// Package postgres implements the catalog repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/deckforge/deckforge/internal/catalog"
)

// poolIface abstracts *pgxpool.Pool so the repository can be unit tested
// with pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DeckRepository implements catalog.DeckRepository using PostgreSQL.
type DeckRepository struct {
	pool poolIface
}

// NewDeckRepository creates a new DeckRepository.
func NewDeckRepository(pool poolIface) *DeckRepository {
	return &DeckRepository{pool: pool}
}

// Create stores a new deck.
func (r *DeckRepository) Create(ctx context.Context, deck *catalog.Deck) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO decks (id, owner_id, name, format, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		deck.ID.String(),
		deck.OwnerID.String(),
		deck.Name,
		deck.Format,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return oops.Code("DECK_CREATE_FAILED").
			With("owner_id", deck.OwnerID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a deck with its card entries, scoped to owner.
func (r *DeckRepository) GetByID(ctx context.Context, ownerID uuid.UUID, id ulid.ULID) (*catalog.Deck, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, name, format, created_at, updated_at
		FROM decks
		WHERE id = $1 AND owner_id = $2
	`, id.String(), ownerID.String())

	deck, err := scanDeck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("DECK_NOT_FOUND").
			With("id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("DECK_GET_FAILED").
			With("id", id.String()).
			Wrap(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT card_id, quantity FROM deck_cards WHERE deck_id = $1
	`, id.String())
	if err != nil {
		return nil, oops.Code("DECK_CARDS_FAILED").
			With("deck_id", id.String()).
			Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry catalog.DeckCard
		if err := rows.Scan(&entry.CardID, &entry.Quantity); err != nil {
			return nil, oops.Code("DECK_CARDS_SCAN_FAILED").Wrap(err)
		}
		deck.Cards = append(deck.Cards, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("DECK_CARDS_ROWS_ERROR").Wrap(err)
	}

	return deck, nil
}

// ListByOwner retrieves all decks for an owner, newest first, without
// card entries.
func (r *DeckRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*catalog.Deck, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, name, format, created_at, updated_at
		FROM decks
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID.String())
	if err != nil {
		return nil, oops.Code("DECK_LIST_FAILED").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var decks []*catalog.Deck
	for rows.Next() {
		deck, err := scanDeckRow(rows)
		if err != nil {
			return nil, oops.Code("DECK_SCAN_FAILED").Wrap(err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("DECK_ROWS_ERROR").Wrap(err)
	}

	return decks, nil
}

// SetCard upserts one card entry in an owned deck.
func (r *DeckRepository) SetCard(ctx context.Context, ownerID uuid.UUID, deckID ulid.ULID, entry catalog.DeckCard) error {
	result, err := r.pool.Exec(ctx, `
		INSERT INTO deck_cards (deck_id, card_id, quantity)
		SELECT d.id, $3, $4
		FROM decks d
		WHERE d.id = $1 AND d.owner_id = $2
		ON CONFLICT (deck_id, card_id) DO UPDATE SET quantity = $4
	`, deckID.String(), ownerID.String(), entry.CardID, entry.Quantity)
	if err != nil {
		return oops.Code("DECK_SET_CARD_FAILED").
			With("deck_id", deckID.String()).
			With("card_id", entry.CardID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("DECK_NOT_FOUND").
			With("id", deckID.String()).
			Wrap(catalog.ErrNotFound)
	}
	return nil
}

// RemoveCard removes one card entry from an owned deck.
func (r *DeckRepository) RemoveCard(ctx context.Context, ownerID uuid.UUID, deckID ulid.ULID, cardID string) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM deck_cards
		USING decks
		WHERE deck_cards.deck_id = decks.id
		  AND decks.id = $1 AND decks.owner_id = $2
		  AND deck_cards.card_id = $3
	`, deckID.String(), ownerID.String(), cardID)
	if err != nil {
		return oops.Code("DECK_REMOVE_CARD_FAILED").
			With("deck_id", deckID.String()).
			With("card_id", cardID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("DECK_NOT_FOUND").
			With("id", deckID.String()).
			Wrap(catalog.ErrNotFound)
	}
	return nil
}

// Delete removes an owned deck; card entries cascade.
func (r *DeckRepository) Delete(ctx context.Context, ownerID uuid.UUID, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM decks WHERE id = $1 AND owner_id = $2
	`, id.String(), ownerID.String())
	if err != nil {
		return oops.Code("DECK_DELETE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("DECK_NOT_FOUND").
			With("id", id.String()).
			Wrap(catalog.ErrNotFound)
	}
	return nil
}

// scanDeck scans a single row into a Deck. Callers handle pgx.ErrNoRows.
func scanDeck(row pgx.Row) (*catalog.Deck, error) {
	var (
		idStr      string
		ownerIDStr string
		name       string
		format     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&idStr, &ownerIDStr, &name, &format, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("DECK_SCAN_FAILED").Wrap(err)
	}

	return buildDeck(idStr, ownerIDStr, name, format, createdAt, updatedAt)
}

// scanDeckRow scans a row from a rows iterator into a Deck.
func scanDeckRow(rows pgx.Rows) (*catalog.Deck, error) {
	var (
		idStr      string
		ownerIDStr string
		name       string
		format     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := rows.Scan(&idStr, &ownerIDStr, &name, &format, &createdAt, &updatedAt); err != nil {
		return nil, oops.Code("DECK_SCAN_FAILED").Wrap(err)
	}

	return buildDeck(idStr, ownerIDStr, name, format, createdAt, updatedAt)
}

func buildDeck(idStr, ownerIDStr, name, format string, createdAt, updatedAt time.Time) (*catalog.Deck, error) {
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("DECK_INVALID_ID").With("id", idStr).Wrap(err)
	}
	ownerID, err := uuid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("DECK_INVALID_OWNER_ID").With("owner_id", ownerIDStr).Wrap(err)
	}

	return &catalog.Deck{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Format:    format,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Compile-time interface check.
var _ catalog.DeckRepository = (*DeckRepository)(nil)
