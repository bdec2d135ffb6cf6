// Package report assembles the three exportable report kinds (dashboard,
// batch, window) from cached data and renders each either as JSON or as a
// paginated PDF document. The builders are pure; rendering happens fully
// in memory so a failed render can still become a clean HTTP error.
package report

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/motor-health-dashboard/internal/health"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

// Report type discriminators, also used in download filenames.
const (
	KindDashboard = "dashboard_report"
	KindBatch     = "batch_report"
	KindWindow    = "window_report"
)

// Filename builds a unique download filename for one generated report.
func Filename(kind string) string {
	return kind + "_" + uuid.NewString() + ".pdf"
}

// DashboardRow is one batch line of the dashboard report, carrying the
// banded health status so JSON and PDF exports read identically.
type DashboardRow struct {
	BatchID      string   `json:"batch_id"`
	Timestamp    string   `json:"timestamp"`
	HealthScore  *float64 `json:"health_score"`
	HealthStatus string   `json:"health_status"`
	AnomalyCount int      `json:"anomaly_count"`
}

// DashboardReport summarizes a user's cached batch list.
type DashboardReport struct {
	Type        string         `json:"type"`
	UserID      string         `json:"user_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	CachedAt    *time.Time     `json:"cached_at"`
	Batches     []DashboardRow `json:"batches"`
}

// BuildDashboard derives the dashboard report from the cached batch list.
// A missing cache still yields a report with zero rows.
func BuildDashboard(userID string, cached *model.UserBatchesCache) *DashboardReport {
	r := &DashboardReport{
		Type:        KindDashboard,
		UserID:      userID,
		GeneratedAt: time.Now().UTC(),
		Batches:     []DashboardRow{},
	}
	if cached == nil {
		return r
	}
	at := cached.CachedAt
	r.CachedAt = &at
	for _, b := range cached.BatchesSummary {
		r.Batches = append(r.Batches, DashboardRow{
			BatchID:      b.BatchID,
			Timestamp:    b.Timestamp,
			HealthScore:  b.HealthScore,
			HealthStatus: health.HealthStatus(b.HealthScore),
			AnomalyCount: b.AnomalyCount,
		})
	}
	return r
}

// BatchReport covers one batch: the derived summary plus the per-window
// anomaly timeline.
type BatchReport struct {
	Type             string                  `json:"type"`
	BatchID          string                  `json:"batch_id"`
	UserID           string                  `json:"user_id"`
	GeneratedAt      time.Time               `json:"generated_at"`
	CachedAt         time.Time               `json:"cached_at"`
	ProcessedSummary *model.ProcessedSummary `json:"processed_summary"`
	Timeline         []health.TimelineEntry  `json:"timeline"`
}

// BuildBatch derives the batch report from one cached batch document.
func BuildBatch(batch *model.BatchCache) *BatchReport {
	timeline := health.Timeline(batch.CompleteData)
	if timeline == nil {
		timeline = []health.TimelineEntry{}
	}
	return &BatchReport{
		Type:             KindBatch,
		BatchID:          batch.BatchID,
		UserID:           batch.UserID,
		GeneratedAt:      time.Now().UTC(),
		CachedAt:         batch.CachedAt,
		ProcessedSummary: batch.ProcessedSummary,
		Timeline:         timeline,
	}
}

// componentOrder returns the known component names present in the map, in
// the fixed presentation order, so PDF tables render deterministically.
func componentOrder(m map[string]model.ComponentHealth) []string {
	names := make([]string, 0, len(m))
	for _, c := range health.Components {
		if _, ok := m[c]; ok {
			names = append(names, c)
		}
	}
	return names
}

// WindowComponentRow is one motor component's verdict within a window.
type WindowComponentRow struct {
	Component           string   `json:"component"`
	ReconstructionError float64  `json:"reconstruction_error"`
	ConfidenceScore     float64  `json:"confidence_score"`
	IsAnomaly           bool     `json:"is_anomaly"`
	AnomalySeverity     float64  `json:"anomaly_severity"`
	Top3Features        []string `json:"top3_features,omitempty"`
}

// WindowReport drills into a single window: autoencoder verdicts per
// component, raw attention weights and the LSTM forecast when present.
type WindowReport struct {
	Type        string                     `json:"type"`
	BatchID     string                     `json:"batch_id"`
	WindowIndex int                        `json:"window_index"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Overall     *model.WindowOverall       `json:"overall"`
	Components  []WindowComponentRow       `json:"components"`
	Attention   map[string]json.RawMessage `json:"attention"`
	LSTM        *model.PredictionMatrix    `json:"lstm"`
}

// BuildWindow derives the window report from one cached batch. Returns nil
// when the batch has no autoencoder result at that index.
func BuildWindow(batch *model.BatchCache, windowIndex int) *WindowReport {
	if batch.CompleteData == nil || batch.CompleteData.Autoencoder == nil {
		return nil
	}
	results := batch.CompleteData.Autoencoder.Results
	if windowIndex < 0 || windowIndex >= len(results) {
		return nil
	}
	w := &results[windowIndex]

	r := &WindowReport{
		Type:        KindWindow,
		BatchID:     batch.BatchID,
		WindowIndex: windowIndex,
		GeneratedAt: time.Now().UTC(),
		Overall:     w.Overall,
		Components:  []WindowComponentRow{},
	}
	for _, name := range health.Components {
		cw := w.Component(name)
		if cw == nil {
			continue
		}
		r.Components = append(r.Components, WindowComponentRow{
			Component:           name,
			ReconstructionError: cw.ReconstructionError,
			ConfidenceScore:     cw.ConfidenceScore,
			IsAnomaly:           cw.IsAnomaly,
			AnomalySeverity:     cw.AnomalySeverity,
			Top3Features:        cw.Top3Features,
		})
	}
	if w.Features != nil {
		r.Attention = w.Features.AttentionWeights
	}
	if lstm := batch.CompleteData.DualLSTM; lstm != nil {
		for _, res := range lstm.Results {
			for _, p := range res.Predictions {
				if p.WindowIndex == windowIndex {
					m := p.Predictions
					r.LSTM = &m
				}
			}
		}
	}
	return r
}
