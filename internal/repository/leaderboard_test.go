package repo_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	repo "streak_hub/internal/repository"
)

func newTestLeaderboard(t *testing.T) *repo.RedisLeaderboardStorage {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repo.NewRedisLeaderboardStorage(client)
}

func TestLeaderboard_StreakBeatsXP(t *testing.T) {
	ctx := context.Background()
	lb := newTestLeaderboard(t)

	require.NoError(t, lb.UpdateScore(ctx, "low-streak-high-xp", 2, 9000))
	require.NoError(t, lb.UpdateScore(ctx, "high-streak-low-xp", 5, 100))
	require.NoError(t, lb.UpdateScore(ctx, "high-streak-high-xp", 5, 400))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)

	require.Equal(t, "high-streak-high-xp", top[0].UserID)
	require.Equal(t, "high-streak-low-xp", top[1].UserID)
	require.Equal(t, "low-streak-high-xp", top[2].UserID)

	require.Equal(t, 5, top[0].Streak)
	require.Equal(t, 400, top[0].XP)
}

func TestLeaderboard_UpdateOverwritesScore(t *testing.T) {
	ctx := context.Background()
	lb := newTestLeaderboard(t)

	require.NoError(t, lb.UpdateScore(ctx, "u1", 1, 50))
	require.NoError(t, lb.UpdateScore(ctx, "u1", 2, 170))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, 2, top[0].Streak)
	require.Equal(t, 170, top[0].XP)
}

func TestLeaderboard_Remove(t *testing.T) {
	ctx := context.Background()
	lb := newTestLeaderboard(t)

	require.NoError(t, lb.UpdateScore(ctx, "u1", 3, 300))
	require.NoError(t, lb.Remove(ctx, "u1"))

	top, err := lb.Top(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, top)
}
