package handlers

import (
	"net/http"

	"github.com/jason-s-yu/promptwars/internal/rating"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

type entriesResponse struct {
	Entries []rating.Entry `json:"entries"`
}

type queueRequest struct {
	PlayerID string `json:"player_id"`
}

func listLimit(r *http.Request) (int, error) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		return 0, err
	}
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return limit, nil
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	entries, err := s.ratings.Top(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}

// handleJoinQueue enqueues the player at their current rating.
func (s *Server) handleJoinQueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	playerID, err := s.identify(r, req.PlayerID)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}
	rt, err := s.ratings.GetRating(r.Context(), playerID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.queue.Enqueue(r.Context(), playerID, rt); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rating.Entry{PlayerID: playerID, Rating: rt})
}

func (s *Server) handleLeaveQueue(w http.ResponseWriter, r *http.Request) {
	var req queueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	playerID, err := s.identify(r, req.PlayerID)
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}
	removed, err := s.queue.Remove(r.Context(), playerID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player_id": playerID, "removed": removed})
}

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	entries, err := s.queue.List(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesResponse{Entries: entries})
}
