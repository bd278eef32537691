// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/middleware"
	"github.com/jason-s-yu/promptwars/internal/models"
)

const wsWriteTimeout = 3 * time.Second

// GameMessage is an incoming WebSocket message.
type GameMessage struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt,omitempty"`
	CardIDs []string `json:"cards_used,omitempty"`
}

// handleGameWS upgrades to a WebSocket joined to the game's room. The player
// is identified by session token, else the player_id query parameter, and must
// be seated in the game.
func (s *Server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathGameID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	g, err := s.games.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if g.Status == models.StatusFinished {
		writeMessage(w, http.StatusGone, apperr.KindInvalidState, "game has already ended")
		return
	}
	playerID, err := s.identify(r, r.URL.Query().Get("player_id"))
	if err != nil {
		s.writeIdentityError(w, err)
		return
	}
	if g.SeatOf(playerID) == models.SeatNone {
		writeMessage(w, http.StatusForbidden, apperr.KindValidation, "you are not a player in this game")
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{"game"},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
		return
	}
	defer c.CloseNow()

	if c.Subprotocol() != "game" {
		s.logger.Warnf("Client for game %s connected with invalid subprotocol: %s", gameID, c.Subprotocol())
		c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
		return
	}
	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path, playerID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := s.rooms.join(gameID, playerID)
	defer s.rooms.leave(gameID, client)
	go s.writeGameMessages(ctx, c, client)

	s.rooms.sendTo(client, wsEvent{Type: wsGameState, GameID: gameID, Game: g})
	err = s.readGameMessages(ctx, c, gameID, client)
	middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, err)
	c.Close(websocket.StatusNormalClosure, "")
}

// writeGameMessages drains the client's queue until it is closed or ctx ends.
func (s *Server) writeGameMessages(ctx context.Context, c *websocket.Conn, client *roomClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-client.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Warnf("Failed to write to player %s: %v", client.playerID, err)
				return
			}
		}
	}
}

// readGameMessages handles client messages until the socket closes. Successful
// submissions are answered through the room broadcast; failures go back to the sender only.
func (s *Server) readGameMessages(ctx context.Context, c *websocket.Conn, gameID uuid.UUID, client *roomClient) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			s.logger.Warnf("Received non-text message type %d from player %s in game %s. Ignoring.", msgType, client.playerID, gameID)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.rooms.sendTo(client, wsEvent{Type: wsError, GameID: gameID, Code: apperr.KindValidation, Message: "Invalid JSON format."})
			continue
		}

		switch msg.Type {
		case "submit_prompt":
			if _, _, err := s.games.SubmitPrompt(ctx, gameID, client.playerID, msg.Prompt, msg.CardIDs); err != nil {
				s.rooms.sendTo(client, errorEvent(gameID, err))
			}
		default:
			s.rooms.sendTo(client, wsEvent{Type: wsError, GameID: gameID, Code: apperr.KindValidation, Message: "unknown message type " + msg.Type})
		}
	}
}

func errorEvent(gameID uuid.UUID, err error) wsEvent {
	ev := wsEvent{Type: wsError, GameID: gameID, Code: apperr.KindOf(err), Message: "internal server error"}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		ev.Message = ae.Message
	}
	return ev
}
