package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = 3 * time.Second

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisStore is the Redis-backed counterpart of MemoryStore, shared across instances
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Set stores a key-value pair with expiration
func (rs *RedisStore) Set(key string, value string, expiration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rs.client.Set(ctx, key, value, expiration).Err(); err != nil && rs.logger != nil {
		rs.logger.Error("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

// Get retrieves a value by key
func (rs *RedisStore) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	value, err := rs.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil && rs.logger != nil {
			rs.logger.Error("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Delete removes a key
func (rs *RedisStore) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rs.client.Del(ctx, key).Err(); err != nil && rs.logger != nil {
		rs.logger.Error("redis delete failed", zap.String("key", key), zap.Error(err))
	}
}

// unlockScript deletes the lock only while it still holds the caller's token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock acquires key with SETNX for ttl. The returned token identifies this acquisition.
func (rs *RedisStore) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := rs.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Unlock releases key if it is still held by token. A lock that expired and was
// taken by someone else is left alone.
func (rs *RedisStore) Unlock(ctx context.Context, key, token string) error {
	if err := unlockScript.Run(ctx, rs.client, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
