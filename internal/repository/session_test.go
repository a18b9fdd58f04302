package repo_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"streak_hub/internal/domain/room"
	repo "streak_hub/internal/repository"
)

func TestRedisSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repo.NewSessionRedisStorage(client)

	_, ok := store.GetUserIdBySession(ctx, "nope")
	require.False(t, ok)

	require.NoError(t, store.StoreSession(ctx, "sid-1", "user-1"))
	userID, ok := store.GetUserIdBySession(ctx, "sid-1")
	require.True(t, ok)
	require.Equal(t, "user-1", userID)

	require.True(t, store.DeleteSession(ctx, "sid-1"))
	require.False(t, store.DeleteSession(ctx, "sid-1"))
	_, ok = store.GetUserIdBySession(ctx, "sid-1")
	require.False(t, ok)
}

func TestRoomCodesAreFiveDigits(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMapRoomStorage()

	seen := make(map[int]bool)
	for i := 0; i < 50; i++ {
		r, err := store.CreateRoom(ctx, room.Room{Name: "r", HostID: "h"})
		require.NoError(t, err)
		require.GreaterOrEqual(t, r.ID, 10000)
		require.LessOrEqual(t, r.ID, 99999)
		require.False(t, seen[r.ID], "active room codes must be unique")
		seen[r.ID] = true
	}
}
