package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/models"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls  []execCall
	failOn string
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, errors.New("constraint violation")
	}
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestRecordEvents(t *testing.T) {
	id := uuid.New()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []game.Event{
		{Type: game.EventTurnPending, GameID: id, Turn: 1, PlayerID: "p1", At: at},
		{Type: game.EventTurnResolved, GameID: id, Turn: 1, At: at, Outcome: &models.Outcome{
			WinnerID: "p1", Damage: 25, Narrative: "Boom", CreativityScore: 8, AdherenceScore: 9,
		}},
		{Type: game.EventGameFinished, GameID: id, Turn: 1, WinnerID: "p1", LoserID: "p2", At: at},
		{Type: game.EventRatingChanged, GameID: id, At: at, Ratings: []rating.Change{
			{PlayerID: "p1", Old: 1500, New: 1516},
			{PlayerID: "p2", Old: 1500, New: 1484},
		}},
	}

	db := &fakeExecer{}
	require.NoError(t, recordEvents(context.Background(), db, events))
	require.Len(t, db.calls, 4, "pending turns are not recorded")

	assert.Contains(t, db.calls[0].sql, "INSERT INTO turns")
	assert.Equal(t, id, db.calls[0].args[0])
	assert.Equal(t, 25, db.calls[0].args[3])

	assert.Contains(t, db.calls[1].sql, "INSERT INTO game_results")
	assert.Equal(t, []any{id, "p1", "p2", 1, at}, db.calls[1].args)

	assert.Contains(t, db.calls[3].sql, "INSERT INTO ratings")
	assert.Equal(t, "p2", db.calls[3].args[0])
	assert.Equal(t, 1484.0, db.calls[3].args[3])
}

func TestRecordEventsStopsOnError(t *testing.T) {
	db := &fakeExecer{failOn: "game_results"}
	err := recordEvents(context.Background(), db, []game.Event{
		{Type: game.EventGameFinished, GameID: uuid.New(), WinnerID: "p1", LoserID: "p2"},
		{Type: game.EventRatingChanged, Ratings: []rating.Change{{PlayerID: "p1"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game_finished")
	assert.Empty(t, db.calls)
}

func TestRecordTurnNeedsOutcome(t *testing.T) {
	err := recordEvents(context.Background(), &fakeExecer{}, []game.Event{{Type: game.EventTurnResolved, Turn: 2}})
	assert.Error(t, err)
}
