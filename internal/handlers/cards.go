package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

type cardsResponse struct {
	Cards []models.Card `json:"cards"`
	Total int           `json:"total"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards := s.catalog.All()
	writeJSON(w, http.StatusOK, cardsResponse{Cards: cards, Total: len(cards)})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	card, ok := s.catalog.Resolve(id)
	if !ok {
		writeError(w, s.logger, apperr.NotFound(fmt.Sprintf("card %q not found", id)))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleCardsByCategory(w http.ResponseWriter, r *http.Request) {
	cat := models.Category(r.PathValue("type"))
	if !cat.Valid() {
		writeError(w, s.logger, apperr.Validation(fmt.Sprintf("unknown card category %q", cat)))
		return
	}
	cards := s.catalog.ListByCategory(cat)
	writeJSON(w, http.StatusOK, cardsResponse{Cards: cards, Total: len(cards)})
}

func (s *Server) handleDrawHand(w http.ResponseWriter, r *http.Request) {
	size, err := queryInt(r, "hand_size", models.HandSize)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	hand, err := s.catalog.DrawHand(size)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cardsResponse{Cards: hand, Total: len(hand)})
}

func (s *Server) handleCardStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}
