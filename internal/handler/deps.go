package handler

import (
	"context"
	"time"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

// Handlers depend on the narrow interfaces below instead of the concrete
// repositories so tests can stub storage and the refresh flow without a
// running Redis. The repository and service types satisfy them as-is.

// BatchCacheReader reads cached per-batch documents.
type BatchCacheReader interface {
	Get(ctx context.Context, batchID string) (*model.BatchCache, error)
}

// UserBatchesReader reads cached per-user batch lists.
type UserBatchesReader interface {
	Get(ctx context.Context, userID string) (*model.UserBatchesCache, error)
}

// CacheStatsReader summarizes the batch cache keyspace.
type CacheStatsReader interface {
	Stats(ctx context.Context) (repository.CacheStats, error)
}

// Refresher is the read-through refresh flow of the cache service.
type Refresher interface {
	RefreshBatch(ctx context.Context, batchID, userID string) (*model.BatchCache, error)
	RefreshUserBatches(ctx context.Context, userID string, count int) (*model.UserBatchesCache, error)
}

// opTimeout bounds the storage and upstream round trips made by a single
// handler invocation.
const opTimeout = 30 * time.Second
