package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionTTL = 11 * time.Hour

type RedisSessionStorage struct {
	client *redis.Client
}

func NewSessionRedisStorage(client *redis.Client) *RedisSessionStorage {
	return &RedisSessionStorage{client: client}
}

func (r *RedisSessionStorage) GetUserIdBySession(ctx context.Context, sessionID string) (userID string, ok bool) {
	v, err := r.client.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisSessionStorage) StoreSession(ctx context.Context, sessionID string, userID string) error {
	return r.client.Set(ctx, "session:"+sessionID, userID, sessionTTL).Err()
}

func (r *RedisSessionStorage) DeleteSession(ctx context.Context, sessionID string) (ok bool) {
	n, err := r.client.Del(ctx, "session:"+sessionID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false
	}
	return n > 0
}
