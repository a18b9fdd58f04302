package repo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey = "leaderboard:global"

	// streakWeight packs (streak, xp) into one sorted-set score so redis
	// orders streak-first, then XP. XP stays far below 1e9.
	streakWeight = 1e9
)

type LeaderboardEntry struct {
	UserID string
	Streak int
	XP     int
}

// RedisLeaderboardStorage keeps the global leaderboard in a single ZSET.
type RedisLeaderboardStorage struct {
	client *redis.Client
}

func NewRedisLeaderboardStorage(client *redis.Client) *RedisLeaderboardStorage {
	return &RedisLeaderboardStorage{client: client}
}

func (r *RedisLeaderboardStorage) UpdateScore(ctx context.Context, userID string, streak int, xp int) error {
	score := float64(streak)*streakWeight + float64(xp)
	if err := r.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  score,
		Member: userID,
	}).Err(); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

func (r *RedisLeaderboardStorage) Remove(ctx context.Context, userID string) error {
	return r.client.ZRem(ctx, leaderboardKey, userID).Err()
}

func (r *RedisLeaderboardStorage) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	res, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(res))
	for _, z := range res {
		streak := int(z.Score / streakWeight)
		xp := int(z.Score - float64(streak)*streakWeight)
		entries = append(entries, LeaderboardEntry{
			UserID: z.Member.(string),
			Streak: streak,
			XP:     xp,
		})
	}
	return entries, nil
}
