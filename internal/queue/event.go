// Package queue defines message payloads exchanged over the message broker.
package queue

// BatchRefreshedEvent is published after a batch cache refresh succeeds.
// It carries enough information for downstream consumers (alerting,
// audit logs, analytics) to react without re-reading the cache.
type BatchRefreshedEvent struct {
	BatchID        string `json:"batch_id"`
	UserID         string `json:"user_id"`
	TotalWindows   int    `json:"total_windows"`
	AnomalyWindows int    `json:"anomaly_windows"`
	RefreshedAt    string `json:"refreshed_at"`
}
