// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DeckForge Contributors

package httpapi

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/deckforge/deckforge/internal/catalog"
)

type deckCreateRequest struct {
	Name   string `json:"name"`
	Format string `json:"format"`
}

type deckSetCardRequest struct {
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
}

func (s *Server) handleDeckCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	var req deckCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	deck, err := catalog.NewDeck(p.UserID, req.Name, req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.decks.Create(r.Context(), deck); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleDeckList(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	decks, err := s.decks.ListByOwner(r.Context(), p.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if decks == nil {
		decks = []*catalog.Deck{}
	}

	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleDeckGet(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	deckID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "deck not found"})
		return
	}

	deck, err := s.decks.GetByID(r.Context(), p.UserID, deckID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleDeckDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	deckID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "deck not found"})
		return
	}

	if err := s.decks.Delete(r.Context(), p.UserID, deckID); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeckSetCard(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	deckID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "deck not found"})
		return
	}

	var req deckSetCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.CardID == "" || req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "card_id and a positive quantity are required"})
		return
	}

	entry := catalog.DeckCard{CardID: req.CardID, Quantity: req.Quantity}
	if err := s.decks.SetCard(r.Context(), p.UserID, deckID, entry); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeckRemoveCard(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	deckID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "deck not found"})
		return
	}

	if err := s.decks.RemoveCard(r.Context(), p.UserID, deckID, r.PathValue("cardID")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
