package handlers

import (
	"net/http"

	"github.com/jason-s-yu/promptwars/internal/auth"
)

type guestRequest struct {
	DisplayName string `json:"display_name"`
}

// handleGuestSession issues an anonymous identity and sets the auth cookie.
func (s *Server) handleGuestSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeMessage(w, http.StatusNotFound, "NOT_FOUND", "sessions are disabled")
		return
	}
	var req guestRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	guest, err := s.sessions.NewGuest(req.DisplayName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    guest.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, guest)
}
