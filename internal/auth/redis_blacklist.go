package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisBlacklistPrefix = "careerfindr:jwt-blacklist:"

// RedisBlacklistStore keep blacklisted tokens in redis so every instance share them.
// Entries expire by themselves when the token does.
type RedisBlacklistStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisBlacklistStore create store on top of given client
func NewRedisBlacklistStore(client *redis.Client) *RedisBlacklistStore {
	return &RedisBlacklistStore{
		client:  client,
		timeout: 500 * time.Millisecond,
	}
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return redisBlacklistPrefix + hex.EncodeToString(sum[:])
}

// IsBlacklisted implements JwtBlacklistStore
func (s *RedisBlacklistStore) IsBlacklisted(token string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.client.Get(ctx, blacklistKey(token)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// AddToBlacklist implements JwtBlacklistStore
func (s *RedisBlacklistStore) AddToBlacklist(token string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return s.client.Set(ctx, blacklistKey(token), 1, ttl).Err()
}
