package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo stores the single active refresh token per user in Redis.
// The key pattern is "auth:refresh:<user_id>" -> token string, with a TTL
// matching the refresh-token lifetime, so Redis expires sessions on its
// own. One key per user means logging in (or refreshing) on one device
// invalidates the refresh token of every other device.
type TokenRepo struct{ RDB *redis.Client }

func NewTokenRepo(rdb *redis.Client) *TokenRepo { return &TokenRepo{RDB: rdb} }

func refreshKey(userID uint64) string {
	return fmt.Sprintf("auth:refresh:%d", userID)
}

// StoreRefresh saves the token for a user, replacing any previous one.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, token string, ttl time.Duration) error {
	if err := r.RDB.Set(ctx, refreshKey(userID), token, ttl).Err(); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// GetRefresh returns the stored token for a user. ErrNotFound covers both
// "never stored" and "expired"; the two are indistinguishable here.
func (r *TokenRepo) GetRefresh(ctx context.Context, userID uint64) (string, error) {
	token, err := r.RDB.Get(ctx, refreshKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return token, nil
}

// DeleteRefresh removes the stored token immediately (logout).
func (r *TokenRepo) DeleteRefresh(ctx context.Context, userID uint64) error {
	return r.RDB.Del(ctx, refreshKey(userID)).Err()
}
