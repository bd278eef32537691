package handlers

import (
	"net/http"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
	"github.com/jason-s-yu/promptwars/internal/oracle"
)

type contenderRequest struct {
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Prompt   string   `json:"prompt"`
	CardIDs  []string `json:"cards_used"`
}

type judgeRequest struct {
	Player1 contenderRequest `json:"player1"`
	Player2 contenderRequest `json:"player2"`
}

func (c contenderRequest) contender(fallbackID string) oracle.Contender {
	id := c.PlayerID
	if id == "" {
		id = fallbackID
	}
	return oracle.Contender{
		Name:       c.Name,
		Submission: &models.Submission{PlayerID: id, Prompt: c.Prompt, CardIDs: c.CardIDs},
	}
}

type judgeStatus struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Message  string `json:"message"`
}

func (s *Server) handleJudgeHealth(w http.ResponseWriter, r *http.Request) {
	p := s.judge.Provider()
	resp := judgeStatus{Status: "available", Provider: p.Name(), Model: p.Model(), Message: "judge is ready"}
	if !s.judge.IsAvailable(r.Context()) {
		resp.Status, resp.Message = "unavailable", "judge provider is not reachable"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJudgeBattle judges two submissions outside of any game.
func (s *Server) handleJudgeBattle(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Player1.Prompt == "" || req.Player2.Prompt == "" {
		writeError(w, s.logger, apperr.Validation("both players need a prompt"))
		return
	}
	if !s.catalog.ValidateAll(req.Player1.CardIDs) || !s.catalog.ValidateAll(req.Player2.CardIDs) {
		writeError(w, s.logger, apperr.Validation("Invalid card IDs provided"))
		return
	}
	if !s.judge.IsAvailable(r.Context()) {
		writeMessage(w, http.StatusServiceUnavailable, apperr.KindProvider, "judge is not available")
		return
	}

	outcome, err := s.judge.Judge(r.Context(), oracle.Battle{
		Player1: req.Player1.contender("player1"),
		Player2: req.Player2.contender("player2"),
	})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}
