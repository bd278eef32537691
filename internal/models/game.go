package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle phase of a game. Transitions only move forward.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusActive
	case StatusActive:
		return next == StatusFinished
	}
	return false
}

// MaxPromptLength is the longest prompt a player may submit, in characters.
const MaxPromptLength = 500

// Submission is a player's prompt and declared card usage for one turn.
type Submission struct {
	PlayerID    string    `json:"player_id"`
	Prompt      string    `json:"prompt"`
	CardIDs     []string  `json:"cards_used"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TurnRecord collects both submissions of a turn and, once judged, its outcome.
type TurnRecord struct {
	Number      int         `json:"turn_number"`
	Player1     *Submission `json:"player1_submission,omitempty"`
	Player2     *Submission `json:"player2_submission,omitempty"`
	Outcome     *Outcome    `json:"battle_result,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Ready reports whether both seats have submitted.
func (t *TurnRecord) Ready() bool {
	return t.Player1 != nil && t.Player2 != nil
}

// Resolved reports whether the turn has been judged.
func (t *TurnRecord) Resolved() bool {
	return t.Outcome != nil
}

// Seat identifies player1 (1) or player2 (2) within a game.
type Seat int

const (
	SeatNone Seat = iota
	Seat1
	Seat2
)

// Fill stores sub in the slot for seat, replacing any earlier submission.
func (t *TurnRecord) Fill(seat Seat, sub *Submission) {
	switch seat {
	case Seat1:
		t.Player1 = sub
	case Seat2:
		t.Player2 = sub
	}
}

// GameState is the whole persisted snapshot of a game.
//
// TurnHistory holds resolved turns only; the single unresolved turn, if any,
// lives in PendingTurn and always carries CurrentTurn as its number.
type GameState struct {
	ID          uuid.UUID     `json:"game_id"`
	Status      Status        `json:"status"`
	Player1     *PlayerState  `json:"player1"`
	Player2     *PlayerState  `json:"player2,omitempty"`
	CurrentTurn int           `json:"current_turn"`
	PendingTurn *TurnRecord   `json:"pending_turn,omitempty"`
	TurnHistory []*TurnRecord `json:"turn_history"`
	WinnerID    string        `json:"winner_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Version is bumped by the store on every successful save.
	Version int64 `json:"version"`
}

// SeatOf maps a player id to its seat, SeatNone when the id matches neither player.
func (g *GameState) SeatOf(playerID string) Seat {
	switch {
	case g.Player1 != nil && g.Player1.ID == playerID:
		return Seat1
	case g.Player2 != nil && g.Player2.ID == playerID:
		return Seat2
	}
	return SeatNone
}

// Player returns the state for a seat.
func (g *GameState) Player(seat Seat) *PlayerState {
	switch seat {
	case Seat1:
		return g.Player1
	case Seat2:
		return g.Player2
	}
	return nil
}

// Validate checks the snapshot invariants that must hold after every mutation.
func (g *GameState) Validate() error {
	if g.CurrentTurn < 1 {
		return fmt.Errorf("current turn %d below 1", g.CurrentTurn)
	}
	for _, p := range []*PlayerState{g.Player1, g.Player2} {
		if p == nil {
			continue
		}
		if p.HitPoints < 0 || p.HitPoints > MaxHitPoints {
			return fmt.Errorf("player %s hit points %d out of range", p.ID, p.HitPoints)
		}
	}
	for i, t := range g.TurnHistory {
		if t.Number != i+1 {
			return fmt.Errorf("turn history entry %d numbered %d", i, t.Number)
		}
		if !t.Resolved() {
			return fmt.Errorf("turn %d in history is unresolved", t.Number)
		}
	}
	if g.PendingTurn != nil && g.PendingTurn.Number != g.CurrentTurn {
		return fmt.Errorf("pending turn %d does not match current turn %d", g.PendingTurn.Number, g.CurrentTurn)
	}

	switch g.Status {
	case StatusFinished:
		if g.SeatOf(g.WinnerID) == SeatNone {
			return fmt.Errorf("finished game winner %q is not a player", g.WinnerID)
		}
		if len(g.TurnHistory) == 0 || len(g.TurnHistory) != g.CurrentTurn {
			return fmt.Errorf("finished game has %d turns at turn %d", len(g.TurnHistory), g.CurrentTurn)
		}
		if !g.Player1.Defeated() && !g.Player2.Defeated() {
			return fmt.Errorf("finished game has no defeated player")
		}
	default:
		if g.WinnerID != "" {
			return fmt.Errorf("%s game has winner %q", g.Status, g.WinnerID)
		}
		if g.CurrentTurn != len(g.TurnHistory)+1 {
			return fmt.Errorf("current turn %d with %d resolved turns", g.CurrentTurn, len(g.TurnHistory))
		}
	}
	return nil
}
