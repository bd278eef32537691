// Package game is the turn resolution state machine: it owns game lifecycle,
// collects submissions, asks the judge for verdicts and applies them.
package game

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
	"github.com/jason-s-yu/promptwars/internal/oracle"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

// Catalog is the subset of the card registry the state machine needs.
type Catalog interface {
	ValidateAll(ids []string) bool
	DrawHand(size int) ([]models.Card, error)
}

// Judge produces the outcome of a turn from both submissions.
type Judge interface {
	Judge(ctx context.Context, b oracle.Battle) (*models.Outcome, error)
}

// Service coordinates games. It holds no per-game state of its own; every
// operation is a load, mutate, save cycle against the Store.
type Service struct {
	catalog Catalog
	judge   Judge
	store   Store
	ratings *rating.Engine
	events  EventPublisher
	logger  logrus.FieldLogger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher sets where game events go after each save.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger replaces the standard logrus logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(catalog Catalog, judge Judge, store Store, ratings *rating.Engine, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		judge:   judge,
		store:   store,
		ratings: ratings,
		events:  nopPublisher{},
		logger:  logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame seats two players with fresh hands and their stored ratings.
func (s *Service) CreateGame(ctx context.Context, player1ID, player1Name, player2ID, player2Name string) (*models.GameState, error) {
	if player1ID == "" || player2ID == "" {
		return nil, apperr.Validation("both player ids are required")
	}
	if player1ID == player2ID {
		return nil, apperr.Validation("a player cannot play against themselves")
	}

	hand1, err := s.catalog.DrawHand(models.HandSize)
	if err != nil {
		return nil, err
	}
	hand2, err := s.catalog.DrawHand(models.HandSize)
	if err != nil {
		return nil, err
	}
	r1, r2, err := s.ratings.Fetch(ctx, player1ID, player2ID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	g := &models.GameState{
		ID:          uuid.New(),
		Status:      models.StatusWaiting,
		Player1:     models.NewPlayerState(player1ID, player1Name, hand1, r1),
		Player2:     models.NewPlayerState(player2ID, player2Name, hand2, r2),
		CurrentTurn: 1,
		TurnHistory: []*models.TurnRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, g); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"game_id": g.ID, "player1": player1ID, "player2": player2ID}).Info("game created")
	return g, nil
}

// StartGame moves a waiting game to active.
func (s *Service) StartGame(ctx context.Context, gameID uuid.UUID) (*models.GameState, error) {
	g, err := s.store.Load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.Status.CanTransition(models.StatusActive) {
		return nil, apperr.InvalidState(fmt.Sprintf("game cannot be started: status is %s, expected %s", g.Status, models.StatusWaiting))
	}
	if g.Player2 == nil {
		return nil, apperr.InvalidState("game cannot be started: waiting for a second player")
	}
	g.Status = models.StatusActive
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, g); err != nil {
		return nil, err
	}
	s.logger.WithField("game_id", g.ID).Info("game started")
	return g, nil
}

// GetGame loads the current snapshot.
func (s *Service) GetGame(ctx context.Context, gameID uuid.UUID) (*models.GameState, error) {
	return s.store.Load(ctx, gameID)
}

// DeleteGame removes the snapshot.
func (s *Service) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	return s.store.Delete(ctx, gameID)
}

// SubmitPrompt records a player's submission for the current turn. When the
// opponent has already submitted, the turn is judged and resolved in the same
// call and its outcome returned; otherwise the outcome is nil.
//
// A judge failure saves nothing from this call. Any submission persisted by an
// earlier call stays in place, so the caller can resubmit to retry judgment.
func (s *Service) SubmitPrompt(ctx context.Context, gameID uuid.UUID, playerID, prompt string, cardIDs []string) (*models.GameState, *models.Outcome, error) {
	g, err := s.store.Load(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.Status != models.StatusActive {
		return nil, nil, apperr.InvalidState(fmt.Sprintf("game is not active (status: %s)", g.Status))
	}
	if !s.catalog.ValidateAll(cardIDs) {
		return nil, nil, apperr.Validation("Invalid card IDs provided")
	}
	seat := g.SeatOf(playerID)
	if seat == models.SeatNone {
		return nil, nil, apperr.Validation(fmt.Sprintf("player %s is not in this game", playerID))
	}
	if n := utf8.RuneCountInString(prompt); n < 1 || n > models.MaxPromptLength {
		return nil, nil, apperr.Validation(fmt.Sprintf("prompt must be between 1 and %d characters", models.MaxPromptLength))
	}

	log := s.logger.WithFields(logrus.Fields{"game_id": g.ID, "player_id": playerID, "turn": g.CurrentTurn})
	now := s.now().UTC()

	if g.PendingTurn == nil {
		g.PendingTurn = &models.TurnRecord{Number: g.CurrentTurn}
	}
	turn := g.PendingTurn
	turn.Fill(seat, &models.Submission{
		PlayerID:    playerID,
		Prompt:      prompt,
		CardIDs:     append([]string{}, cardIDs...),
		SubmittedAt: now,
	})

	if !turn.Ready() {
		g.UpdatedAt = now
		if err := s.store.Save(ctx, g); err != nil {
			return nil, nil, err
		}
		log.Debug("submission stored, waiting for opponent")
		s.publish(ctx, Event{Type: EventTurnPending, GameID: g.ID, Turn: turn.Number, PlayerID: playerID, At: now})
		return g, nil, nil
	}

	outcome, err := s.judge.Judge(ctx, oracle.Battle{
		Player1: oracle.Contender{Name: g.Player1.DisplayName, Submission: turn.Player1},
		Player2: oracle.Contender{Name: g.Player2.DisplayName, Submission: turn.Player2},
	})
	if err != nil {
		log.WithError(err).Warn("turn judgment failed")
		return nil, nil, err
	}

	changes, err := s.resolve(ctx, g, outcome, now)
	if err != nil {
		return nil, nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, nil, fmt.Errorf("resolved game %s is inconsistent: %w", g.ID, err)
	}
	if err := s.store.Save(ctx, g); err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{"winner_id": outcome.WinnerID, "damage": outcome.Damage}).Info("turn resolved")

	s.publish(ctx, Event{Type: EventTurnResolved, GameID: g.ID, Turn: turn.Number, Outcome: outcome, State: g, At: now})
	if g.Status != models.StatusFinished {
		return g, outcome, nil
	}

	loserID := g.Player1.ID
	if g.WinnerID == loserID {
		loserID = g.Player2.ID
	}
	s.publish(ctx, Event{Type: EventGameFinished, GameID: g.ID, Turn: turn.Number, WinnerID: g.WinnerID, LoserID: loserID, State: g, At: now})

	// The turn is already saved; a failed rating write must not report it as failed.
	if err := s.ratings.Persist(ctx, changes); err != nil {
		log.WithError(err).Error("failed to persist ratings")
		return g, outcome, nil
	}
	s.publish(ctx, Event{Type: EventRatingChanged, GameID: g.ID, Ratings: changes[:], At: now})
	log.WithField("winner_id", g.WinnerID).Info("game finished")
	return g, outcome, nil
}

// resolve applies a judged outcome to g: damage, new hands, history and, when a
// player falls, the finish and rating settlement. Nothing is persisted here.
func (s *Service) resolve(ctx context.Context, g *models.GameState, outcome *models.Outcome, now time.Time) ([2]rating.Change, error) {
	var changes [2]rating.Change
	turn := g.PendingTurn

	if !outcome.Tie() {
		winner := g.SeatOf(outcome.WinnerID)
		if winner == models.SeatNone {
			return changes, apperr.Provider(fmt.Sprintf("judge named unknown winner %q", outcome.WinnerID), nil)
		}
		loser := models.Seat1
		if winner == models.Seat1 {
			loser = models.Seat2
		}
		g.Player(loser).TakeDamage(outcome.Damage)
	}

	for _, p := range []*models.PlayerState{g.Player1, g.Player2} {
		hand, err := s.catalog.DrawHand(models.HandSize)
		if err != nil {
			return changes, err
		}
		p.Hand = hand
	}

	completed := now
	turn.Outcome = outcome
	turn.CompletedAt = &completed
	g.TurnHistory = append(g.TurnHistory, turn)
	g.PendingTurn = nil
	g.UpdatedAt = now

	switch {
	case g.Player2.Defeated():
		g.WinnerID = g.Player1.ID
	case g.Player1.Defeated():
		g.WinnerID = g.Player2.ID
	default:
		g.CurrentTurn++
		return changes, nil
	}
	g.Status = models.StatusFinished

	// Ratings may have moved in other games since this one was created.
	if r1, r2, err := s.ratings.Fetch(ctx, g.Player1.ID, g.Player2.ID); err == nil {
		g.Player1.Rating, g.Player2.Rating = r1, r2
	} else {
		s.logger.WithError(err).WithField("game_id", g.ID).Warn("using ratings from game creation")
	}
	return rating.Settle(g.Player1, g.Player2, g.WinnerID), nil
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"game_id": ev.GameID, "event": ev.Type}).Warn("failed to publish game event")
	}
}
