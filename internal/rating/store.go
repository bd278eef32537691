package rating

import (
	"context"
	"sort"
	"sync"

	"github.com/jason-s-yu/promptwars/internal/models"
)

// Store is the rating persistence contract. GetRating returns models.DefaultRating
// for players that have never been rated.
type Store interface {
	GetRating(ctx context.Context, playerID string) (float64, error)
	SetRating(ctx context.Context, playerID string, rating float64) error
}

// Entry is one leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Rating   float64 `json:"rating"`
}

// Leaderboard lists the highest rated players.
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// MemoryStore keeps ratings in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ratings map[string]float64
}

// NewMemoryStore returns an empty in-memory rating store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ratings: make(map[string]float64)}
}

func (s *MemoryStore) GetRating(_ context.Context, playerID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.ratings[playerID]; ok {
		return r, nil
	}
	return models.DefaultRating, nil
}

func (s *MemoryStore) SetRating(_ context.Context, playerID string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[playerID] = rating
	return nil
}

func (s *MemoryStore) Top(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	entries := make([]Entry, 0, len(s.ratings))
	for id, r := range s.ratings {
		entries = append(entries, Entry{PlayerID: id, Rating: r})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating == entries[j].Rating {
			return entries[i].PlayerID < entries[j].PlayerID
		}
		return entries[i].Rating > entries[j].Rating
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
