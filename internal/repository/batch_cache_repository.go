package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

// Cached documents are plain JSON values with a native Redis TTL. The
// TTL handed to SET mirrors the ttl_expires field inside the document;
// removal is the store's job and is eventually consistent with the
// logical expiry, never transactional.
const (
	batchKeyPrefix       = "batches_cache:"
	userBatchesKeyPrefix = "user_batches_cache:"
)

// BatchCacheRepo persists per-batch analysis documents.
type BatchCacheRepo struct{ RDB *redis.Client }

func NewBatchCacheRepo(rdb *redis.Client) *BatchCacheRepo { return &BatchCacheRepo{RDB: rdb} }

// Upsert overwrites the document for a batch. Concurrent writers race and
// the last one wins; the cached data is read-mostly and re-fetchable, so
// no per-key locking is attempted.
func (r *BatchCacheRepo) Upsert(ctx context.Context, rec *model.BatchCache, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch cache %s: %w", rec.BatchID, err)
	}
	if err := r.RDB.Set(ctx, batchKeyPrefix+rec.BatchID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("upsert batch cache %s: %w", rec.BatchID, err)
	}
	return nil
}

// Get loads the cached document for a batch, ErrNotFound when absent or
// already expired out of the store.
func (r *BatchCacheRepo) Get(ctx context.Context, batchID string) (*model.BatchCache, error) {
	raw, err := r.RDB.Get(ctx, batchKeyPrefix+batchID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get batch cache %s: %w", batchID, err)
	}
	var rec model.BatchCache
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode batch cache %s: %w", batchID, err)
	}
	return &rec, nil
}

// CacheStats summarizes the batch cache collection for the admin endpoint.
type CacheStats struct {
	TotalDocs  int64            `json:"totalDocs"`
	LastCached *CacheStatsEntry `json:"lastCached"`
}

// CacheStatsEntry identifies the most recently cached batch.
type CacheStatsEntry struct {
	BatchID  string    `json:"batch_id"`
	CachedAt time.Time `json:"cached_at"`
}

// Stats walks the batch cache keyspace with SCAN and reports the document
// count plus the newest cached_at. This is an admin-only endpoint on a
// keyspace bounded by the TTL, so a full scan is acceptable.
func (r *BatchCacheRepo) Stats(ctx context.Context) (CacheStats, error) {
	var stats CacheStats
	iter := r.RDB.Scan(ctx, 0, batchKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.RDB.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // expired between SCAN and GET
			}
			return stats, fmt.Errorf("cache stats: %w", err)
		}
		var rec model.BatchCache
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue // skip malformed leftovers
		}
		stats.TotalDocs++
		if stats.LastCached == nil || rec.CachedAt.After(stats.LastCached.CachedAt) {
			stats.LastCached = &CacheStatsEntry{BatchID: rec.BatchID, CachedAt: rec.CachedAt}
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("cache stats scan: %w", err)
	}
	return stats, nil
}

// UserBatchesCacheRepo persists per-user batch-list summaries.
type UserBatchesCacheRepo struct{ RDB *redis.Client }

func NewUserBatchesCacheRepo(rdb *redis.Client) *UserBatchesCacheRepo {
	return &UserBatchesCacheRepo{RDB: rdb}
}

// Upsert overwrites the batch list for a user. Same last-write-wins
// semantics as the per-batch documents.
func (r *UserBatchesCacheRepo) Upsert(ctx context.Context, rec *model.UserBatchesCache, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal user batches cache %s: %w", rec.UserID, err)
	}
	if err := r.RDB.Set(ctx, userBatchesKeyPrefix+rec.UserID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("upsert user batches cache %s: %w", rec.UserID, err)
	}
	return nil
}

// Get loads the cached batch list for a user, ErrNotFound when absent.
func (r *UserBatchesCacheRepo) Get(ctx context.Context, userID string) (*model.UserBatchesCache, error) {
	raw, err := r.RDB.Get(ctx, userBatchesKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user batches cache %s: %w", userID, err)
	}
	var rec model.UserBatchesCache
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode user batches cache %s: %w", userID, err)
	}
	return &rec, nil
}
