// Package rating implements the logistic (Elo) skill rating update applied at game end.
package rating

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/jason-s-yu/promptwars/internal/models"
)

const (
	// KFactor is the maximum rating swing of a single game.
	KFactor = 32.0
	// Scale is the rating difference at which the favourite is expected to score 10:1.
	Scale = 400.0
)

// Actual scores for one side of a match.
const (
	Win  = 1.0
	Draw = 0.5
	Loss = 0.0
)

// Expected is the expected score of a player rated r against an opponent rated opp.
func Expected(r, opp float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opp-r)/Scale))
}

// Update returns both new ratings given player1's actual score. Both are computed
// from the pre-match ratings, so the changes are equal and opposite.
func Update(r1, r2, score1 float64) (float64, float64) {
	e1 := Expected(r1, r2)
	e2 := 1 - e1
	score2 := 1 - score1
	return r1 + KFactor*(score1-e1), r2 + KFactor*(score2-e2)
}

// Change records one player's rating movement for a finished game.
type Change struct {
	PlayerID string  `json:"player_id"`
	Old      float64 `json:"old_rating"`
	New      float64 `json:"new_rating"`
}

// Delta is New - Old.
func (c Change) Delta() float64 {
	return c.New - c.Old
}

// Engine applies rating updates and persists them through a Store.
type Engine struct {
	store Store
}

// NewEngine wires the engine to its rating store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Fetch loads the current ratings of both players concurrently.
func (e *Engine) Fetch(ctx context.Context, player1ID, player2ID string) (float64, float64, error) {
	var r1, r2 float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r1, err = e.store.GetRating(gctx, player1ID)
		return err
	})
	g.Go(func() error {
		var err error
		r2, err = e.store.GetRating(gctx, player2ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, fmt.Errorf("failed to fetch ratings: %w", err)
	}
	return r1, r2, nil
}

// Settle computes the post-match ratings for a finished game and stores them on the
// player states. winnerID empty means a draw. It does not persist anything.
func Settle(p1, p2 *models.PlayerState, winnerID string) [2]Change {
	score1 := Draw
	switch winnerID {
	case p1.ID:
		score1 = Win
	case p2.ID:
		score1 = Loss
	}
	new1, new2 := Update(p1.Rating, p2.Rating, score1)
	changes := [2]Change{
		{PlayerID: p1.ID, Old: p1.Rating, New: new1},
		{PlayerID: p2.ID, Old: p2.Rating, New: new2},
	}
	p1.Rating = new1
	p2.Rating = new2
	return changes
}

// Persist writes both new ratings. Each write is independent: both are attempted
// even if one fails, and nothing is rolled back.
func (e *Engine) Persist(ctx context.Context, changes [2]Change) error {
	var g errgroup.Group
	for _, c := range changes {
		g.Go(func() error {
			if err := e.store.SetRating(ctx, c.PlayerID, c.New); err != nil {
				return fmt.Errorf("failed to store rating for %s: %w", c.PlayerID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
