package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/models"
)

func (e *testEnv) dial(t *testing.T, ctx context.Context, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + path
	return websocket.Dial(ctx, url, &websocket.DialOptions{Subprotocols: []string{"game"}})
}

func readEvent(t *testing.T, ctx context.Context, c *websocket.Conn) wsEvent {
	t.Helper()
	var ev wsEvent
	require.NoError(t, wsjson.Read(ctx, c, &ev))
	return ev
}

func TestGameRoomBroadcastsTurn(t *testing.T) {
	env := newTestEnv(t)
	g := env.startGame(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := env.dial(t, ctx, "/game/ws/"+g.ID.String()+"?player_id=p1")
	require.NoError(t, err)
	defer c.CloseNow()

	ev := readEvent(t, ctx, c)
	assert.Equal(t, wsGameState, ev.Type)
	require.NotNil(t, ev.Game)
	assert.Equal(t, g.ID, ev.Game.ID)

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "submit_prompt", Prompt: "A flaming sword", CardIDs: []string{"fire"}}))
	ev = readEvent(t, ctx, c)
	assert.Equal(t, "turn_pending", ev.Type)
	assert.Equal(t, "p1", ev.PlayerID)

	resp, body := env.do(t, http.MethodPost, "/game/"+g.ID.String()+"/submit", submitRequest{PlayerID: "p2", Prompt: "An ice wall"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// the second submission resolves the turn without a pending event
	ev = readEvent(t, ctx, c)
	assert.Equal(t, "turn_resolved", ev.Type)
	require.NotNil(t, ev.Outcome)
	assert.Equal(t, "p1", ev.Outcome.WinnerID)
	assert.Equal(t, 75, ev.Game.Player2.HitPoints)

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "submit_prompt", Prompt: "", CardIDs: nil}))
	ev = readEvent(t, ctx, c)
	assert.Equal(t, wsError, ev.Type)
	assert.Equal(t, "VALIDATION", string(ev.Code))

	require.NoError(t, wsjson.Write(ctx, c, GameMessage{Type: "dance"}))
	ev = readEvent(t, ctx, c)
	assert.Equal(t, wsError, ev.Type)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return env.rooms.Count(g.ID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestGameRoomRejectsOutsiders(t *testing.T) {
	env := newTestEnv(t)
	g := env.startGame(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := env.dial(t, ctx, "/game/ws/"+g.ID.String()+"?player_id=intruder")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = env.dial(t, ctx, "/game/ws/00000000-0000-0000-0000-000000000000?player_id=p1")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoomsDropEventsForOtherGames(t *testing.T) {
	env := newTestEnv(t)
	g := env.startGame(t)
	client := env.rooms.join(g.ID, "p1")
	defer env.rooms.leave(g.ID, client)

	other := env.startGame(t)
	require.NoError(t, env.rooms.Publish(context.Background(), gameEvent(game.EventTurnPending, other)))
	assert.Len(t, client.send, 0)

	require.NoError(t, env.rooms.Publish(context.Background(), gameEvent(game.EventTurnPending, g)))
	assert.Len(t, client.send, 1)
}

func gameEvent(typ game.EventType, g *models.GameState) game.Event {
	return game.Event{Type: typ, GameID: g.ID, Turn: g.CurrentTurn}
}
