package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/motor-health-dashboard/internal/health"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/queue"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

// upstreamAPI is the slice of the upstream client the refresher needs.
type upstreamAPI interface {
	FetchCompleteBatch(ctx context.Context, batchID string) (*model.CompleteBatch, error)
	FetchUserBatches(ctx context.Context, userID string, count int) ([]model.BatchListItem, error)
}

// batchStore persists per-batch cache documents.
type batchStore interface {
	Upsert(ctx context.Context, rec *model.BatchCache, ttl time.Duration) error
	Get(ctx context.Context, batchID string) (*model.BatchCache, error)
}

// userBatchesStore persists per-user batch-list documents.
type userBatchesStore interface {
	Upsert(ctx context.Context, rec *model.UserBatchesCache, ttl time.Duration) error
	Get(ctx context.Context, userID string) (*model.UserBatchesCache, error)
}

// CacheRefresher implements the read-through refresh flow: fetch from
// upstream, derive the summary, upsert with a fresh TTL. Concurrent
// refreshes for the same key race deliberately; the last writer wins and
// both writes carry equivalent, independently re-fetchable data. There is
// no retry or backoff — upstream failures propagate to the caller.
type CacheRefresher struct {
	Upstream  upstreamAPI
	Batches   batchStore
	UserLists userBatchesStore
	BatchTTL  time.Duration
	ListTTL   time.Duration
	RabbitURL string // empty disables event publishing
}

// NewCacheRefresher wires the refresher with the configured TTLs.
func NewCacheRefresher(up upstreamAPI, batches batchStore, lists userBatchesStore, batchTTL, listTTL time.Duration, rabbitURL string) *CacheRefresher {
	return &CacheRefresher{
		Upstream:  up,
		Batches:   batches,
		UserLists: lists,
		BatchTTL:  batchTTL,
		ListTTL:   listTTL,
		RabbitURL: rabbitURL,
	}
}

// RefreshBatch fetches the complete batch, derives its summary and
// overwrites the cached document. The owner recorded on the document is
// the explicit userID when given, else the upstream metadata user, else
// "unknown" (the id is opaque to this service either way).
func (s *CacheRefresher) RefreshBatch(ctx context.Context, batchID, userID string) (*model.BatchCache, error) {
	data, err := s.Upstream.FetchCompleteBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	summary := health.CalcProcessedSummary(data)

	owner := userID
	if owner == "" && data.Metadata != nil && data.Metadata.UserID != "" {
		owner = data.Metadata.UserID
	}
	if owner == "" {
		owner = "unknown"
	}

	now := time.Now().UTC()
	rec := &model.BatchCache{
		BatchID:          batchID,
		UserID:           owner,
		CachedAt:         now,
		TTLExpires:       now.Add(s.BatchTTL),
		CompleteData:     data,
		ProcessedSummary: summary,
	}
	if err := s.Batches.Upsert(ctx, rec, s.BatchTTL); err != nil {
		return nil, err
	}
	log.Printf("[CACHE] Refreshed batch %s", batchID)

	// Best effort: downstream consumers poll nothing, they get told.
	ev := queue.BatchRefreshedEvent{
		BatchID:     batchID,
		UserID:      owner,
		RefreshedAt: now.Format(time.RFC3339),
	}
	if summary != nil {
		ev.TotalWindows = summary.TotalWindows
		ev.AnomalyWindows = summary.AnomalyWindows
	}
	_ = PublishBatchRefreshed(ctx, s.RabbitURL, ev)

	return rec, nil
}

// RefreshUserBatches rebuilds the cached batch list of a user from the
// upstream recent-batches endpoint. An upstream response without batches
// caches an empty list so the dashboard renders instead of erroring.
//
// Health score rule (deterministic): a cached per-batch summary wins,
// the upstream quick_health hint is the fallback, otherwise the score
// stays nil and renders as pending.
func (s *CacheRefresher) RefreshUserBatches(ctx context.Context, userID string, count int) (*model.UserBatchesCache, error) {
	items, err := s.Upstream.FetchUserBatches(ctx, userID, count)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summaries := make([]model.BatchSummaryEntry, 0, len(items))
	for _, item := range items {
		entry := model.BatchSummaryEntry{
			BatchID:   item.ID(),
			Timestamp: item.Time(),
		}
		if entry.Timestamp == "" {
			entry.Timestamp = now.Format(time.RFC3339)
		}
		if item.Metadata != nil && item.Metadata.AnomalyCount != nil {
			entry.AnomalyCount = *item.Metadata.AnomalyCount
		}
		entry.HealthScore = s.healthScoreFor(ctx, entry.BatchID, item.Metadata)
		summaries = append(summaries, entry)
	}

	rec := &model.UserBatchesCache{
		UserID:         userID,
		CachedAt:       now,
		TTLExpires:     now.Add(s.ListTTL),
		BatchesSummary: summaries,
	}
	if err := s.UserLists.Upsert(ctx, rec, s.ListTTL); err != nil {
		return nil, err
	}
	log.Printf("[CACHE] Refreshed user batch list for %s (%d batches)", userID, len(summaries))
	return rec, nil
}

// healthScoreFor resolves the list-level health score for one batch.
func (s *CacheRefresher) healthScoreFor(ctx context.Context, batchID string, meta *model.BatchMetadata) *float64 {
	if cached, err := s.Batches.Get(ctx, batchID); err == nil {
		if score := health.HealthScoreFromSummary(cached.ProcessedSummary); score != nil {
			return score
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[CACHE] batch %s lookup failed during list refresh: %v", batchID, err)
	}
	if meta != nil && meta.QuickHealth != nil {
		return meta.QuickHealth
	}
	return nil
}
