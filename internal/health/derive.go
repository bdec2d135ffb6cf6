// Package health holds the pure derivation functions of the dashboard:
// processed batch summaries, robust statistics and the presentation
// heuristics (risk levels, time-to-failure bands, trend direction). All
// thresholds are fixed constants, not fitted to data; they exist to color
// the UI, not to make engineering claims.
package health

import (
	"math"
	"sort"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

// Components is the fixed set of motor components scored by the upstream
// autoencoder. The order is stable for deterministic output.
var Components = []string{"bearing", "rotor", "stator", "eccentricity"}

// round3 keeps derived aggregates at 3 decimal places so refreshing the
// same upstream payload twice yields byte-identical summaries.
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// CalcProcessedSummary derives the cached aggregate from a complete batch.
// Returns nil when the batch carries no autoencoder results; callers cache
// the nil so the API can report a pending state instead of failing.
func CalcProcessedSummary(data *model.CompleteBatch) *model.ProcessedSummary {
	if data == nil || data.Autoencoder == nil || len(data.Autoencoder.Results) == 0 {
		return nil
	}
	windows := data.Autoencoder.Results
	total := len(windows)

	anomalyWindows := 0
	totalError := 0.0
	type compAgg struct {
		confidenceSum float64
		anomalies     int
	}
	stats := make(map[string]*compAgg, len(Components))
	for _, c := range Components {
		stats[c] = &compAgg{}
	}

	for i := range windows {
		w := &windows[i]
		if w.Overall != nil {
			if w.Overall.AnomalyCount > 0 {
				anomalyWindows++
			}
			totalError += w.Overall.OverallReconstructionError
		}
		for _, c := range Components {
			cw := w.Component(c)
			if cw == nil {
				continue
			}
			stats[c].confidenceSum += cw.ConfidenceScore
			if cw.IsAnomaly {
				stats[c].anomalies++
			}
		}
	}

	componentHealth := make(map[string]model.ComponentHealth, len(Components))
	for _, c := range Components {
		componentHealth[c] = model.ComponentHealth{
			AvgConfidence: round3(stats[c].confidenceSum / float64(total)),
			Anomalies:     stats[c].anomalies,
		}
	}

	return &model.ProcessedSummary{
		TotalWindows:           total,
		AnomalyWindows:         anomalyWindows,
		AvgReconstructionError: round3(totalError / float64(total)),
		ComponentHealth:        componentHealth,
	}
}

// Median returns the middle element of the sorted values, or the mean of
// the two middle elements for even-length input. Empty input yields 0.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// RobustAverage trims the outer 10% of the sorted values on each side and
// averages the rest, so a single outlier batch does not swing the health
// gauge. Inputs of two points or fewer fall back to the median.
func RobustAverage(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n <= 2 {
		return Median(vals)
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	trim := int(float64(n) * 0.10)
	trimmed := sorted[trim : n-trim]
	sum := 0.0
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

// HealthScoreFromSummary maps a processed summary to a 0..1 health score:
// the fraction of windows without anomalies. Nil when no summary or no
// windows exist ("Pending" downstream).
func HealthScoreFromSummary(s *model.ProcessedSummary) *float64 {
	if s == nil || s.TotalWindows == 0 {
		return nil
	}
	score := 1 - float64(s.AnomalyWindows)/float64(s.TotalWindows)
	score = round3(score)
	return &score
}

// Status banding for batch rows in dashboards and reports.
const (
	StatusHealthy  = "Healthy"
	StatusMonitor  = "Monitor"
	StatusCritical = "Critical"
	StatusPending  = "Pending"
)

// TimelineEntry is one window of the per-batch anomaly timeline.
type TimelineEntry struct {
	WindowIndex        int    `json:"window_index"`
	AnomalyCount       int    `json:"anomaly_count"`
	SystemHealthStatus string `json:"system_health_status"`
}

// Timeline flattens the autoencoder results of a batch into per-window
// anomaly counts. Returns nil when the batch has no results yet.
func Timeline(data *model.CompleteBatch) []TimelineEntry {
	if data == nil || data.Autoencoder == nil || len(data.Autoencoder.Results) == 0 {
		return nil
	}
	out := make([]TimelineEntry, 0, len(data.Autoencoder.Results))
	for i := range data.Autoencoder.Results {
		w := &data.Autoencoder.Results[i]
		entry := TimelineEntry{WindowIndex: i, SystemHealthStatus: "Unknown"}
		if w.Overall != nil {
			entry.AnomalyCount = w.Overall.AnomalyCount
			if w.Overall.SystemHealthStatus != "" {
				entry.SystemHealthStatus = w.Overall.SystemHealthStatus
			}
		}
		out = append(out, entry)
	}
	return out
}

// HealthStatus bands a 0..1 health score: >=80% Healthy, >=40% Monitor,
// else Critical; nil scores render as Pending.
func HealthStatus(score *float64) string {
	if score == nil {
		return StatusPending
	}
	pct := *score * 100
	switch {
	case pct >= 80:
		return StatusHealthy
	case pct >= 40:
		return StatusMonitor
	default:
		return StatusCritical
	}
}
