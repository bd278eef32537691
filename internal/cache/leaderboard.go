package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/promptwars/internal/models"
	"github.com/jason-s-yu/promptwars/internal/rating"
)

const (
	leaderboardKey = "leaderboard"
	matchQueueKey  = "matchmaking_queue"
)

// RatingStore keeps ratings as scores of the leaderboard sorted set.
type RatingStore struct {
	rdb *redis.Client
}

func NewRatingStore(rdb *redis.Client) *RatingStore {
	return &RatingStore{rdb: rdb}
}

func (s *RatingStore) GetRating(ctx context.Context, playerID string) (float64, error) {
	r, err := s.rdb.ZScore(ctx, leaderboardKey, playerID).Result()
	if errors.Is(err, redis.Nil) {
		return models.DefaultRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get rating for %s: %w", playerID, err)
	}
	return r, nil
}

func (s *RatingStore) SetRating(ctx context.Context, playerID string, r float64) error {
	if err := s.rdb.ZAdd(ctx, leaderboardKey, redis.Z{Score: r, Member: playerID}).Err(); err != nil {
		return fmt.Errorf("set rating for %s: %w", playerID, err)
	}
	return nil
}

func (s *RatingStore) Top(ctx context.Context, limit int) ([]rating.Entry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, rangeStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return toEntries(zs), nil
}

// MatchQueue stores players waiting for an opponent, scored by rating.
// Pairing is left to callers.
type MatchQueue struct {
	rdb *redis.Client
}

func NewMatchQueue(rdb *redis.Client) *MatchQueue {
	return &MatchQueue{rdb: rdb}
}

// Enqueue adds or re-scores a player.
func (q *MatchQueue) Enqueue(ctx context.Context, playerID string, r float64) error {
	if err := q.rdb.ZAdd(ctx, matchQueueKey, redis.Z{Score: r, Member: playerID}).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", playerID, err)
	}
	return nil
}

// Remove reports whether the player was queued.
func (q *MatchQueue) Remove(ctx context.Context, playerID string) (bool, error) {
	n, err := q.rdb.ZRem(ctx, matchQueueKey, playerID).Result()
	if err != nil {
		return false, fmt.Errorf("dequeue %s: %w", playerID, err)
	}
	return n > 0, nil
}

// List returns up to limit queued players, highest rating first. limit <= 0 lists everyone.
func (q *MatchQueue) List(ctx context.Context, limit int) ([]rating.Entry, error) {
	zs, err := q.rdb.ZRevRangeWithScores(ctx, matchQueueKey, 0, rangeStop(limit)).Result()
	if err != nil {
		return nil, fmt.Errorf("read matchmaking queue: %w", err)
	}
	return toEntries(zs), nil
}

func rangeStop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit) - 1
}

func toEntries(zs []redis.Z) []rating.Entry {
	out := make([]rating.Entry, 0, len(zs))
	for i, z := range zs {
		id, _ := z.Member.(string)
		out = append(out, rating.Entry{Rank: i + 1, PlayerID: id, Rating: z.Score})
	}
	return out
}
