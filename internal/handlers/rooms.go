package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/models"
)

const clientBuffer = 16

// wsEvent is every message the server writes to a game socket.
type wsEvent struct {
	Type     string            `json:"type"`
	GameID   uuid.UUID         `json:"game_id"`
	Turn     int               `json:"turn_number,omitempty"`
	PlayerID string            `json:"player_id,omitempty"`
	Outcome  *models.Outcome   `json:"battle_result,omitempty"`
	Game     *models.GameState `json:"game,omitempty"`
	WinnerID string            `json:"winner_id,omitempty"`
	Code     apperr.Kind       `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
}

const (
	wsGameState = "game_state"
	wsError     = "error"
)

type roomClient struct {
	playerID string
	send     chan []byte
}

// Rooms tracks the sockets connected to each game and fans game events out to them.
// It implements game.EventPublisher.
type Rooms struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]map[*roomClient]struct{}
	logger logrus.FieldLogger
}

func NewRooms(logger logrus.FieldLogger) *Rooms {
	return &Rooms{rooms: make(map[uuid.UUID]map[*roomClient]struct{}), logger: logger}
}

func (rs *Rooms) join(gameID uuid.UUID, playerID string) *roomClient {
	c := &roomClient{playerID: playerID, send: make(chan []byte, clientBuffer)}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.rooms[gameID] == nil {
		rs.rooms[gameID] = make(map[*roomClient]struct{})
	}
	rs.rooms[gameID][c] = struct{}{}
	return c
}

// leave closes the client's send channel, which stops its writer.
func (rs *Rooms) leave(gameID uuid.UUID, c *roomClient) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	room := rs.rooms[gameID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(rs.rooms, gameID)
	}
}

// Count reports how many sockets are connected to a game.
func (rs *Rooms) Count(gameID uuid.UUID) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.rooms[gameID])
}

// Publish forwards the events clients render. Slow clients drop messages rather than block the game.
func (rs *Rooms) Publish(_ context.Context, ev game.Event) error {
	var out wsEvent
	switch ev.Type {
	case game.EventTurnPending:
		out = wsEvent{Type: string(ev.Type), GameID: ev.GameID, Turn: ev.Turn, PlayerID: ev.PlayerID}
	case game.EventTurnResolved:
		out = wsEvent{Type: string(ev.Type), GameID: ev.GameID, Turn: ev.Turn, Outcome: ev.Outcome, Game: ev.State}
	case game.EventGameFinished:
		out = wsEvent{Type: string(ev.Type), GameID: ev.GameID, Turn: ev.Turn, WinnerID: ev.WinnerID, Game: ev.State}
	default:
		return nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for c := range rs.rooms[ev.GameID] {
		if !c.trySend(data) {
			rs.logger.Warnf("dropping %s event for player %s in game %s: send buffer full", ev.Type, c.playerID, ev.GameID)
		}
	}
	return nil
}

func (c *roomClient) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// sendTo delivers a message to one client only.
func (rs *Rooms) sendTo(c *roomClient, ev wsEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		rs.logger.Errorf("failed to marshal %s message: %v", ev.Type, err)
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, ok := rs.rooms[ev.GameID][c]; ok {
		c.trySend(data)
	}
}
