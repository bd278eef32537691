package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

// Store persists whole game snapshots with optimistic versioning.
//
// Create stores a new snapshot only if none exists under its id. Save succeeds
// only when g.Version equals the stored version, then bumps g.Version. Both
// report a lost race as an apperr conflict.
type Store interface {
	Create(ctx context.Context, g *models.GameState) error
	Load(ctx context.Context, id uuid.UUID) (*models.GameState, error)
	Save(ctx context.Context, g *models.GameState) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GameStore is the in-process Store used by tests and single-node runs.
type GameStore struct {
	mu    sync.Mutex
	games map[uuid.UUID][]byte
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[uuid.UUID][]byte),
	}
}

func (s *GameStore) Create(_ context.Context, g *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[g.ID]; exists {
		return apperr.Conflict(fmt.Sprintf("game %s already exists", g.ID))
	}
	return s.put(g, 1)
}

func (s *GameStore) Load(_ context.Context, id uuid.UUID) (*models.GameState, error) {
	s.mu.Lock()
	raw, exists := s.games[id]
	s.mu.Unlock()
	if !exists {
		return nil, apperr.NotFound(fmt.Sprintf("game %s not found", id))
	}
	var g models.GameState
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *GameStore) Save(_ context.Context, g *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, exists := s.games[g.ID]
	if !exists {
		return apperr.NotFound(fmt.Sprintf("game %s not found", g.ID))
	}
	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("decode game %s: %w", g.ID, err)
	}
	if stored.Version != g.Version {
		return apperr.Conflict(fmt.Sprintf("game %s was modified concurrently", g.ID))
	}
	return s.put(g, g.Version+1)
}

func (s *GameStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[id]; !exists {
		return apperr.NotFound(fmt.Sprintf("game %s not found", id))
	}
	delete(s.games, id)
	return nil
}

// put must be called with mu held. g.Version is only updated once the write is in place.
func (s *GameStore) put(g *models.GameState, version int64) error {
	prev := g.Version
	g.Version = version
	raw, err := json.Marshal(g)
	if err != nil {
		g.Version = prev
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	s.games[g.ID] = raw
	return nil
}
