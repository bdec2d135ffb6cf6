package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

type fakeUpstream struct {
	batch *model.CompleteBatch
	items []model.BatchListItem
	err   error
}

func (f *fakeUpstream) FetchCompleteBatch(ctx context.Context, batchID string) (*model.CompleteBatch, error) {
	return f.batch, f.err
}

func (f *fakeUpstream) FetchUserBatches(ctx context.Context, userID string, count int) ([]model.BatchListItem, error) {
	return f.items, f.err
}

type fakeBatchStore struct {
	saved map[string]*model.BatchCache
	ttls  map[string]time.Duration
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{saved: map[string]*model.BatchCache{}, ttls: map[string]time.Duration{}}
}

func (f *fakeBatchStore) Upsert(ctx context.Context, rec *model.BatchCache, ttl time.Duration) error {
	f.saved[rec.BatchID] = rec
	f.ttls[rec.BatchID] = ttl
	return nil
}

func (f *fakeBatchStore) Get(ctx context.Context, batchID string) (*model.BatchCache, error) {
	if rec, ok := f.saved[batchID]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

type fakeListStore struct {
	saved map[string]*model.UserBatchesCache
}

func newFakeListStore() *fakeListStore {
	return &fakeListStore{saved: map[string]*model.UserBatchesCache{}}
}

func (f *fakeListStore) Upsert(ctx context.Context, rec *model.UserBatchesCache, ttl time.Duration) error {
	f.saved[rec.UserID] = rec
	return nil
}

func (f *fakeListStore) Get(ctx context.Context, userID string) (*model.UserBatchesCache, error) {
	if rec, ok := f.saved[userID]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func completeBatch(owner string, anomalyWindows, totalWindows int) *model.CompleteBatch {
	results := make([]model.WindowResult, totalWindows)
	for i := range results {
		n := 0
		if i < anomalyWindows {
			n = 1
		}
		results[i] = model.WindowResult{Overall: &model.WindowOverall{AnomalyCount: n}}
	}
	b := &model.CompleteBatch{Autoencoder: &model.AutoencoderData{Results: results}}
	if owner != "" {
		b.Metadata = &model.BatchMetadata{UserID: owner}
	}
	return b
}

func newRefresher(up upstreamAPI, batches batchStore, lists userBatchesStore) *CacheRefresher {
	return NewCacheRefresher(up, batches, lists, 30*time.Minute, 2*time.Minute, "")
}

func TestRefreshBatch(t *testing.T) {
	store := newFakeBatchStore()
	s := newRefresher(&fakeUpstream{batch: completeBatch("alice", 1, 4)}, store, newFakeListStore())

	rec, err := s.RefreshBatch(context.Background(), "b-1", "")
	require.NoError(t, err)

	// Owner falls back to the upstream metadata when no explicit user given.
	assert.Equal(t, "alice", rec.UserID)
	require.NotNil(t, rec.ProcessedSummary)
	assert.Equal(t, 4, rec.ProcessedSummary.TotalWindows)
	assert.Equal(t, 1, rec.ProcessedSummary.AnomalyWindows)
	assert.Equal(t, 30*time.Minute, store.ttls["b-1"])
	assert.Equal(t, rec.CachedAt.Add(30*time.Minute), rec.TTLExpires)
}

func TestRefreshBatchOwnerPrecedence(t *testing.T) {
	s := newRefresher(&fakeUpstream{batch: completeBatch("alice", 0, 1)}, newFakeBatchStore(), newFakeListStore())
	rec, err := s.RefreshBatch(context.Background(), "b-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", rec.UserID)

	s = newRefresher(&fakeUpstream{batch: completeBatch("", 0, 1)}, newFakeBatchStore(), newFakeListStore())
	rec, err = s.RefreshBatch(context.Background(), "b-1", "")
	require.NoError(t, err)
	assert.Equal(t, "unknown", rec.UserID)
}

func TestRefreshBatchWithoutResults(t *testing.T) {
	store := newFakeBatchStore()
	s := newRefresher(&fakeUpstream{batch: &model.CompleteBatch{}}, store, newFakeListStore())

	rec, err := s.RefreshBatch(context.Background(), "b-1", "alice")
	require.NoError(t, err)
	// A batch still being processed caches with a nil summary so the API
	// can report a pending state rather than re-fetching every request.
	assert.Nil(t, rec.ProcessedSummary)
	assert.Contains(t, store.saved, "b-1")
}

func TestRefreshUserBatchesScorePreference(t *testing.T) {
	quick := 0.5
	up := &fakeUpstream{items: []model.BatchListItem{
		{BatchID: "cached", Timestamp: "2026-08-01T00:00:00Z", Metadata: &model.BatchMetadata{QuickHealth: &quick}},
		{BatchID: "hinted", Timestamp: "2026-08-02T00:00:00Z", Metadata: &model.BatchMetadata{QuickHealth: &quick}},
		{BatchID: "bare", Timestamp: "2026-08-03T00:00:00Z"},
	}}
	batches := newFakeBatchStore()
	// "cached" has a full summary: 1 anomaly window of 10 -> 0.9.
	require.NoError(t, batches.Upsert(context.Background(), &model.BatchCache{
		BatchID: "cached",
		ProcessedSummary: &model.ProcessedSummary{
			TotalWindows:   10,
			AnomalyWindows: 1,
		},
	}, time.Minute))

	lists := newFakeListStore()
	s := newRefresher(up, batches, lists)

	rec, err := s.RefreshUserBatches(context.Background(), "alice", 10)
	require.NoError(t, err)
	require.Len(t, rec.BatchesSummary, 3)

	// Cached summary wins over the quick-health hint.
	require.NotNil(t, rec.BatchesSummary[0].HealthScore)
	assert.Equal(t, 0.9, *rec.BatchesSummary[0].HealthScore)
	// No summary: the hint is used as-is.
	require.NotNil(t, rec.BatchesSummary[1].HealthScore)
	assert.Equal(t, 0.5, *rec.BatchesSummary[1].HealthScore)
	// Neither: pending.
	assert.Nil(t, rec.BatchesSummary[2].HealthScore)

	assert.Contains(t, lists.saved, "alice")
}

func TestRefreshUserBatchesEmptyUpstream(t *testing.T) {
	lists := newFakeListStore()
	s := newRefresher(&fakeUpstream{}, newFakeBatchStore(), lists)

	rec, err := s.RefreshUserBatches(context.Background(), "alice", 10)
	require.NoError(t, err)
	// An empty upstream response caches an empty list, not an error.
	assert.NotNil(t, rec.BatchesSummary)
	assert.Len(t, rec.BatchesSummary, 0)
	assert.Contains(t, lists.saved, "alice")
}
