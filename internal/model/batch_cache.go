package model

import "time"

// BatchCache is one cached analysis result for a single upstream batch.
// It is stored as a JSON document in Redis under `batches_cache:<batch_id>`
// with a TTL matching TTLExpires, so physical removal is owned by the store
// and eventually consistent with the logical expiry timestamp.
type BatchCache struct {
	BatchID          string            `json:"batch_id"`
	UserID           string            `json:"user_id"`
	CachedAt         time.Time         `json:"cached_at"`
	TTLExpires       time.Time         `json:"ttl_expires"`
	CompleteData     *CompleteBatch    `json:"complete_data,omitempty"`
	ProcessedSummary *ProcessedSummary `json:"processed_summary,omitempty"`
}

// ProcessedSummary is the derived aggregate computed from the autoencoder
// window results of a complete batch. Invariant maintained by the
// derivation: 0 <= AnomalyWindows <= TotalWindows.
type ProcessedSummary struct {
	TotalWindows           int                        `json:"total_windows"`
	AnomalyWindows         int                        `json:"anomaly_windows"`
	AvgReconstructionError float64                    `json:"avg_reconstruction_error"`
	ComponentHealth        map[string]ComponentHealth `json:"component_health"`
}

// ComponentHealth holds per-component aggregates across all windows of a
// batch: mean confidence (3 decimal places) and the number of windows in
// which the component was flagged anomalous.
type ComponentHealth struct {
	AvgConfidence float64 `json:"avg_confidence"`
	Anomalies     int     `json:"anomalies"`
}

// UserBatchesCache is the cached batch-list summary for one user, stored
// under `user_batches_cache:<user_id>`. The list goes stale faster than
// individual batch detail, so it carries a shorter TTL.
type UserBatchesCache struct {
	UserID         string              `json:"user_id"`
	CachedAt       time.Time           `json:"cached_at"`
	TTLExpires     time.Time           `json:"ttl_expires"`
	BatchesSummary []BatchSummaryEntry `json:"batches_summary"`
}

// BatchSummaryEntry is one lightweight row of a user's batch list,
// ordered newest first as returned by the upstream /recent endpoint.
// HealthScore is nil while no per-batch summary and no upstream
// quick-health hint are available; the UI renders that as "Pending".
type BatchSummaryEntry struct {
	BatchID      string   `json:"batch_id"`
	Timestamp    string   `json:"timestamp"`
	HealthScore  *float64 `json:"health_score"`
	AnomalyCount int      `json:"anomaly_count"`
}
