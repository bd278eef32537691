// Package handlers exposes the game over HTTP JSON routes and a WebSocket room per game.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/promptwars/internal/auth"
	"github.com/jason-s-yu/promptwars/internal/catalog"
	"github.com/jason-s-yu/promptwars/internal/game"
	"github.com/jason-s-yu/promptwars/internal/middleware"
	"github.com/jason-s-yu/promptwars/internal/oracle"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

// Judge is the oracle as the transport sees it: judgments plus health.
type Judge interface {
	game.Judge
	IsAvailable(ctx context.Context) bool
	Provider() oracle.Provider
}

// Ratings is a rating store that can also rank players.
type Ratings interface {
	rating.Store
	rating.Leaderboard
}

// MatchQueue stores players waiting for an opponent.
type MatchQueue interface {
	Enqueue(ctx context.Context, playerID string, rating float64) error
	Remove(ctx context.Context, playerID string) (bool, error)
	List(ctx context.Context, limit int) ([]rating.Entry, error)
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Games    *game.Service
	Catalog  *catalog.Catalog
	Judge    Judge
	Ratings  Ratings
	Queue    MatchQueue
	Sessions *auth.Sessions
	Rooms    *Rooms
	Logger   logrus.FieldLogger
	// Checks are reported by /health; a failing check marks the service degraded.
	Checks map[string]func(context.Context) error
}

// Server holds the handler dependencies.
type Server struct {
	games    *game.Service
	catalog  *catalog.Catalog
	judge    Judge
	ratings  Ratings
	queue    MatchQueue
	sessions *auth.Sessions
	rooms    *Rooms
	logger   logrus.FieldLogger
	checks   map[string]func(context.Context) error
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Rooms == nil {
		d.Rooms = NewRooms(d.Logger)
	}
	return &Server{
		games:    d.Games,
		catalog:  d.Catalog,
		judge:    d.Judge,
		ratings:  d.Ratings,
		queue:    d.Queue,
		sessions: d.Sessions,
		rooms:    d.Rooms,
		logger:   d.Logger,
		checks:   d.Checks,
	}
}

// Routes returns the full HTTP handler, wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	// card endpoints
	mux.HandleFunc("GET /cards", s.handleListCards)
	mux.HandleFunc("GET /cards/stats/summary", s.handleCardStats)
	mux.HandleFunc("GET /cards/draw/hand", s.handleDrawHand)
	mux.HandleFunc("GET /cards/type/{type}", s.handleCardsByCategory)
	mux.HandleFunc("GET /cards/{id}", s.handleGetCard)

	mux.HandleFunc("POST /judge/battle", s.handleJudgeBattle)
	mux.HandleFunc("GET /judge/health", s.handleJudgeHealth)
	mux.HandleFunc("POST /session/guest", s.handleGuestSession)

	// game endpoints
	mux.HandleFunc("POST /game/create", s.handleCreateGame)
	mux.HandleFunc("POST /game/{id}/start", s.handleStartGame)
	mux.HandleFunc("POST /game/{id}/submit", s.handleSubmitPrompt)
	mux.HandleFunc("GET /game/{id}", s.handleGetGame)
	mux.HandleFunc("DELETE /game/{id}", s.handleDeleteGame)
	mux.HandleFunc("GET /game/ws/{id}", s.handleGameWS)

	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("POST /matchmaking/join", s.handleJoinQueue)
	mux.HandleFunc("POST /matchmaking/leave", s.handleLeaveQueue)
	mux.HandleFunc("GET /matchmaking/queue", s.handleListQueue)

	return middleware.LogMiddleware(s.logger)(mux)
}

// identify resolves the acting player: the session token when one is sent,
// else the id supplied by the client.
func (s *Server) identify(r *http.Request, claimed string) (string, error) {
	if s.sessions != nil {
		id, err := s.sessions.FromRequest(r)
		switch {
		case err == nil:
			return id, nil
		case !errors.Is(err, auth.ErrNoToken):
			return "", errUnauthorized
		}
	}
	if claimed == "" {
		return "", errMissingPlayer
	}
	return claimed, nil
}

var (
	errUnauthorized  = errors.New("invalid session token")
	errMissingPlayer = errors.New("player_id is required")
)

func (s *Server) writeIdentityError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnauthorized) {
		writeMessage(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		return
	}
	writeMessage(w, http.StatusBadRequest, "VALIDATION", err.Error())
}

type healthResponse struct {
	Status string            `json:"status"`
	Judge  judgeHealth       `json:"judge"`
	Checks map[string]string `json:"checks,omitempty"`
}

type judgeHealth struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Available bool   `json:"available"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", Checks: map[string]string{}}
	if s.judge != nil {
		p := s.judge.Provider()
		resp.Judge = judgeHealth{Provider: p.Name(), Model: p.Model(), Available: s.judge.IsAvailable(r.Context())}
	}
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, http.StatusOK, resp)
}
