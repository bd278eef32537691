package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/promptwars/internal/models"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

// EventType names a state change that listeners may care about.
type EventType string

const (
	EventTurnPending   EventType = "turn_pending"
	EventTurnResolved  EventType = "turn_resolved"
	EventGameFinished  EventType = "game_finished"
	EventRatingChanged EventType = "rating_changed"
)

// Event is published after the change it describes has been saved.
type Event struct {
	Type     EventType         `json:"type"`
	GameID   uuid.UUID         `json:"game_id"`
	Turn     int               `json:"turn_number,omitempty"`
	PlayerID string            `json:"player_id,omitempty"`
	Outcome  *models.Outcome   `json:"outcome,omitempty"`
	WinnerID string            `json:"winner_id,omitempty"`
	LoserID  string            `json:"loser_id,omitempty"`
	Ratings  []rating.Change   `json:"ratings,omitempty"`
	State    *models.GameState `json:"state,omitempty"`
	At       time.Time         `json:"at"`
}

// EventPublisher receives game events. Failures never roll back the game.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Publishers fans an event out to several publishers.
type Publishers []EventPublisher

func (ps Publishers) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
