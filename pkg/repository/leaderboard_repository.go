package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sonastea/HeroClicker/pkg/entity"
)

const leaderboardKey = "leaderboard:coins"

// LeaderboardRepository defines the interface for the richest-players board.
// The board lives in a redis sorted set scored by the player's last
// reconciled balance.
type LeaderboardRepository interface {
	RecordBalance(ctx context.Context, userID, coins int64) error
	TopBalances(ctx context.Context, limit int64) ([]entity.LeaderboardEntry, error)
}

// leaderboardRepository implements LeaderboardRepository with redis
type leaderboardRepository struct {
	redis *redis.Client
}

// NewLeaderboardRepository creates a new redis leaderboard repository
func NewLeaderboardRepository(redis *redis.Client) LeaderboardRepository {
	return &leaderboardRepository{redis: redis}
}

// RecordBalance stores the player's reconciled balance as their board score.
func (r *leaderboardRepository) RecordBalance(ctx context.Context, userID, coins int64) error {
	err := r.redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(coins),
		Member: strconv.FormatInt(userID, 10),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to record balance: %w", err)
	}

	return nil
}

// TopBalances retrieves the top players ordered by balance descending.
func (r *leaderboardRepository) TopBalances(ctx context.Context, limit int64) ([]entity.LeaderboardEntry, error) {
	results, err := r.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}

	entries := make([]entity.LeaderboardEntry, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, entity.LeaderboardEntry{
			UserID: userID,
			Coins:  int64(z.Score),
		})
	}

	return entries, nil
}
