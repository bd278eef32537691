package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jason-s-yu/promptwars/internal/game"
)

const (
	insertTurn = `
		INSERT INTO turns (game_id, turn_number, winner_id, damage, narrative,
			creativity_score, adherence_score, player1_scores, player2_scores, resolved_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id, turn_number) DO NOTHING
	`
	insertGameResult = `
		INSERT INTO game_results (game_id, winner_id, loser_id, turns, finished_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO NOTHING
	`
	insertRating = `
		INSERT INTO ratings (player_id, game_id, old_rating, new_rating, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, game_id) DO NOTHING
	`
)

// RecordEvents writes a batch of game events in one transaction. Events the
// history does not track are skipped. Every insert ignores duplicates, so a
// batch replayed after a failure is harmless.
func (p *Postgres) RecordEvents(ctx context.Context, events []game.Event) error {
	err := p.inTx(ctx, func(tx pgx.Tx) error {
		return recordEvents(ctx, tx, events)
	})
	if err != nil {
		return fmt.Errorf("failed to record %d events: %w", len(events), err)
	}
	return nil
}

func recordEvents(ctx context.Context, db execer, events []game.Event) error {
	for _, ev := range events {
		var err error
		switch ev.Type {
		case game.EventTurnResolved:
			err = recordTurn(ctx, db, ev)
		case game.EventGameFinished:
			_, err = db.Exec(ctx, insertGameResult, ev.GameID, ev.WinnerID, ev.LoserID, ev.Turn, ev.At)
		case game.EventRatingChanged:
			err = recordRatings(ctx, db, ev)
		}
		if err != nil {
			return fmt.Errorf("%s event for game %s: %w", ev.Type, ev.GameID, err)
		}
	}
	return nil
}

func recordTurn(ctx context.Context, db execer, ev game.Event) error {
	o := ev.Outcome
	if o == nil {
		return fmt.Errorf("turn %d has no outcome", ev.Turn)
	}
	p1, err := json.Marshal(o.Player1Scores)
	if err != nil {
		return err
	}
	p2, err := json.Marshal(o.Player2Scores)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, insertTurn,
		ev.GameID, ev.Turn, o.WinnerID, o.Damage, o.Narrative,
		o.CreativityScore, o.AdherenceScore, p1, p2, ev.At,
	)
	return err
}

func recordRatings(ctx context.Context, db execer, ev game.Event) error {
	for _, c := range ev.Ratings {
		if _, err := db.Exec(ctx, insertRating, c.PlayerID, ev.GameID, c.Old, c.New, ev.At); err != nil {
			return err
		}
	}
	return nil
}
