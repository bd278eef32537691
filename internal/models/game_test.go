package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeDamageClampsAtZero(t *testing.T) {
	p := NewPlayerState("p2", "Bob", nil, DefaultRating)
	p.HitPoints = 20

	p.TakeDamage(25)
	assert.Equal(t, 0, p.HitPoints)
	assert.True(t, p.Defeated())

	p.HitPoints = 40
	p.TakeDamage(-5)
	assert.Equal(t, 40, p.HitPoints, "negative damage is ignored")
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransition(StatusActive))
	assert.True(t, StatusActive.CanTransition(StatusFinished))
	assert.False(t, StatusWaiting.CanTransition(StatusFinished))
	assert.False(t, StatusActive.CanTransition(StatusWaiting))
	assert.False(t, StatusFinished.CanTransition(StatusActive))
}

func TestParseEffectType(t *testing.T) {
	assert.Equal(t, EffectIce, ParseEffectType("ice"))
	assert.Equal(t, EffectExplosion, ParseEffectType("rainbow"))
	assert.Equal(t, "#FF4500", EffectFire.Color())
}

func newActiveGame() *GameState {
	return &GameState{
		ID:          uuid.New(),
		Status:      StatusActive,
		Player1:     NewPlayerState("p1", "Alice", nil, 1500),
		Player2:     NewPlayerState("p2", "Bob", nil, 1500),
		CurrentTurn: 1,
		CreatedAt:   time.Now(),
	}
}

func TestValidate(t *testing.T) {
	g := newActiveGame()
	require.NoError(t, g.Validate())

	assert.Equal(t, Seat1, g.SeatOf("p1"))
	assert.Equal(t, Seat2, g.SeatOf("p2"))
	assert.Equal(t, SeatNone, g.SeatOf("p3"))

	g.PendingTurn = &TurnRecord{Number: 2}
	assert.Error(t, g.Validate(), "pending turn must match current turn")
	g.PendingTurn = &TurnRecord{Number: 1}
	require.NoError(t, g.Validate())

	done := time.Now()
	g.TurnHistory = append(g.TurnHistory, &TurnRecord{Number: 1, Outcome: &Outcome{WinnerID: "p1", Damage: 50}, CompletedAt: &done})
	g.PendingTurn = nil
	assert.Error(t, g.Validate(), "current turn must follow history")

	g.Status = StatusFinished
	g.WinnerID = "p1"
	assert.Error(t, g.Validate(), "finished game needs a defeated player")
	g.Player2.HitPoints = 0
	assert.NoError(t, g.Validate())
}

func TestTurnRecordFill(t *testing.T) {
	tr := &TurnRecord{Number: 1}
	tr.Fill(Seat1, &Submission{PlayerID: "p1", Prompt: "first"})
	assert.False(t, tr.Ready())

	tr.Fill(Seat1, &Submission{PlayerID: "p1", Prompt: "second"})
	assert.Equal(t, "second", tr.Player1.Prompt)

	tr.Fill(Seat2, &Submission{PlayerID: "p2", Prompt: "reply"})
	assert.True(t, tr.Ready())
	assert.False(t, tr.Resolved())
}
