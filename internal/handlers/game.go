package handlers

import (
	"net/http"

	"github.com/jason-s-yu/promptwars/internal/models"
)

type createGameRequest struct {
	Player1ID   string `json:"player1_id"`
	Player1Name string `json:"player1_name"`
	Player2ID   string `json:"player2_id"`
	Player2Name string `json:"player2_name"`
}

type submitRequest struct {
	PlayerID string   `json:"player_id"`
	Prompt   string   `json:"prompt"`
	CardIDs  []string `json:"cards_used"`
}

type submitResponse struct {
	Game    *models.GameState `json:"game"`
	Outcome *models.Outcome   `json:"battle_result,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	g, err := s.games.CreateGame(r.Context(), req.Player1ID, req.Player1Name, req.Player2ID, req.Player2Name)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathGameID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	g, err := s.games.StartGame(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathGameID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	g, err := s.games.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathGameID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.games.DeleteGame(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitPrompt blocks through judgment when the submission completes the turn.
func (s *Server) handleSubmitPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathGameID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	playerID, err := s.identify(r, req.PlayerID)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}

	g, outcome, err := s.games.SubmitPrompt(r.Context(), id, playerID, req.Prompt, req.CardIDs)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Game: g, Outcome: outcome})
}
