package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/promptwars/internal/apperr"
	"github.com/jason-s-yu/promptwars/internal/models"
)

// GameStore keeps game snapshots under game:{id} with a sliding TTL.
// Saves are guarded by WATCH on the key plus a version comparison.
type GameStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGameStore(rdb *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{rdb: rdb, ttl: ttl}
}

func gameKey(id uuid.UUID) string {
	return "game:" + id.String()
}

func (s *GameStore) Create(ctx context.Context, g *models.GameState) error {
	prev := g.Version
	g.Version = 1
	data, err := json.Marshal(g)
	if err != nil {
		g.Version = prev
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	ok, err := s.rdb.SetNX(ctx, gameKey(g.ID), data, s.ttl).Result()
	if err != nil {
		g.Version = prev
		return fmt.Errorf("store game %s: %w", g.ID, err)
	}
	if !ok {
		g.Version = prev
		return apperr.Conflict(fmt.Sprintf("game %s already exists", g.ID))
	}
	return nil
}

func (s *GameStore) Load(ctx context.Context, id uuid.UUID) (*models.GameState, error) {
	data, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound(fmt.Sprintf("game %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	var g models.GameState
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", id, err)
	}
	return &g, nil
}

func (s *GameStore) Save(ctx context.Context, g *models.GameState) error {
	key := gameKey(g.ID)
	next := *g
	next.Version = g.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperr.NotFound(fmt.Sprintf("game %s not found", g.ID))
		}
		if err != nil {
			return err
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
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		g.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return apperr.Conflict(fmt.Sprintf("game %s was modified concurrently", g.ID))
	case apperr.KindOf(err) != apperr.KindInternal:
		return err
	}
	return fmt.Errorf("save game %s: %w", g.ID, err)
}

func (s *GameStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.rdb.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("game %s not found", id))
	}
	return nil
}
