package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/models"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := ConnectRedis(context.Background(), mr.Addr(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func sampleGame() *models.GameState {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.GameState{
		ID:          uuid.New(),
		Status:      models.StatusWaiting,
		Player1:     models.NewPlayerState("p1", "Alice", nil, 1500),
		Player2:     models.NewPlayerState("p2", "Bob", nil, 1500),
		CurrentTurn: 1,
		TurnHistory: []*models.TurnRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestGameStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewGameStore(rdb, 2*time.Hour)
	ctx := context.Background()
	g := sampleGame()

	require.NoError(t, store.Create(ctx, g))
	assert.Equal(t, int64(1), g.Version)
	assert.Equal(t, 2*time.Hour, mr.TTL("game:"+g.ID.String()))

	err := store.Create(ctx, sampleGameWithID(g.ID))
	assert.True(t, apperr.Is(err, apperr.KindConflict), "create never overwrites")

	loaded, err := store.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Player1, loaded.Player1)

	loaded.Status = models.StatusActive
	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	reloaded, err := store.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, reloaded.Status)
	assert.Equal(t, int64(2), reloaded.Version)
}

func sampleGameWithID(id uuid.UUID) *models.GameState {
	g := sampleGame()
	g.ID = id
	return g
}

func TestGameStoreRejectsStaleVersion(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewGameStore(rdb, time.Hour)
	ctx := context.Background()
	g := sampleGame()
	require.NoError(t, store.Create(ctx, g))

	a, err := store.Load(ctx, g.ID)
	require.NoError(t, err)
	b, err := store.Load(ctx, g.ID)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, a))
	err = store.Save(ctx, b)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, int64(1), b.Version, "failed save leaves the caller's version alone")
}

func TestGameStoreMissingAndExpired(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewGameStore(rdb, time.Minute)
	ctx := context.Background()

	_, err := store.Load(ctx, uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	g := sampleGame()
	require.NoError(t, store.Create(ctx, g))
	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, g.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.True(t, apperr.Is(store.Save(ctx, g), apperr.KindNotFound))
	assert.True(t, apperr.Is(store.Delete(ctx, g.ID), apperr.KindNotFound))
}

func TestRatingStoreAndLeaderboard(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRatingStore(rdb)
	ctx := context.Background()

	r, err := store.GetRating(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRating, r)

	require.NoError(t, store.SetRating(ctx, "a", 1516))
	require.NoError(t, store.SetRating(ctx, "b", 1484))
	require.NoError(t, store.SetRating(ctx, "c", 1600))

	r, err = store.GetRating(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1516.0, r)

	top, err := store.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].PlayerID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "a", top[1].PlayerID)

	all, err := store.Top(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMatchQueue(t *testing.T) {
	_, rdb := newTestRedis(t)
	q := NewMatchQueue(rdb)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "a", 1200))
	require.NoError(t, q.Enqueue(ctx, "b", 1350))
	require.NoError(t, q.Enqueue(ctx, "a", 1400))

	list, err := q.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].PlayerID)
	assert.Equal(t, 1400.0, list[0].Rating)

	removed, err := q.Remove(ctx, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = q.Remove(ctx, "a")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestEventQueue(t *testing.T) {
	_, rdb := newTestRedis(t)
	q := NewEventQueue(rdb, "")
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, q.Publish(ctx, game.Event{Type: game.EventTurnResolved, GameID: id, Turn: 3, Outcome: &models.Outcome{WinnerID: "p1", Damage: 20}}))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ev, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, game.EventTurnResolved, ev.Type)
	assert.Equal(t, id, ev.GameID)
	assert.Equal(t, 20, ev.Outcome.Damage)
}
