package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

func window(anomalyCount int, err float64, comps map[string]*model.ComponentWindow) model.WindowResult {
	w := model.WindowResult{
		Overall: &model.WindowOverall{
			AnomalyCount:               anomalyCount,
			OverallReconstructionError: err,
		},
	}
	w.Bearing = comps["bearing"]
	w.Rotor = comps["rotor"]
	w.Stator = comps["stator"]
	w.Eccentricity = comps["eccentricity"]
	return w
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 5.0, Median([]float64{5}))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
}

func TestRobustAverage(t *testing.T) {
	assert.Equal(t, 0.0, RobustAverage(nil))
	assert.Equal(t, 0.7, RobustAverage([]float64{0.7}))
	assert.InDelta(t, 0.5, RobustAverage([]float64{0.4, 0.6}), 1e-9)

	// With >=10 values the outer 10% is trimmed on each side, so one
	// extreme outlier cannot move the result to its side of the bulk.
	vals := []float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.0}
	withOutlier := RobustAverage(vals)
	assert.InDelta(t, 0.9, withOutlier, 1e-9)
}

func TestRobustAverageDoesNotMutateInput(t *testing.T) {
	vals := []float64{3, 1, 2, 5, 4}
	_ = RobustAverage(vals)
	assert.Equal(t, []float64{3, 1, 2, 5, 4}, vals)
}

func TestCalcProcessedSummaryEmpty(t *testing.T) {
	assert.Nil(t, CalcProcessedSummary(nil))
	assert.Nil(t, CalcProcessedSummary(&model.CompleteBatch{}))
	assert.Nil(t, CalcProcessedSummary(&model.CompleteBatch{
		Autoencoder: &model.AutoencoderData{},
	}))
}

func TestCalcProcessedSummary(t *testing.T) {
	batch := &model.CompleteBatch{
		Autoencoder: &model.AutoencoderData{
			Results: []model.WindowResult{
				window(0, 0.10, map[string]*model.ComponentWindow{
					"bearing": {ConfidenceScore: 0.9},
					"rotor":   {ConfidenceScore: 0.8},
				}),
				window(2, 0.30, map[string]*model.ComponentWindow{
					"bearing": {ConfidenceScore: 0.5, IsAnomaly: true},
					"rotor":   {ConfidenceScore: 0.6},
				}),
			},
		},
	}

	s := CalcProcessedSummary(batch)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.TotalWindows)
	assert.Equal(t, 1, s.AnomalyWindows)
	assert.InDelta(t, 0.2, s.AvgReconstructionError, 1e-9)
	assert.Equal(t, 0.7, s.ComponentHealth["bearing"].AvgConfidence)
	assert.Equal(t, 1, s.ComponentHealth["bearing"].Anomalies)
	assert.Equal(t, 0.7, s.ComponentHealth["rotor"].AvgConfidence)
	assert.Equal(t, 0, s.ComponentHealth["rotor"].Anomalies)
	// Components absent from every window still report zeroes.
	assert.Contains(t, s.ComponentHealth, "stator")
	assert.Contains(t, s.ComponentHealth, "eccentricity")

	// Invariant: 0 <= AnomalyWindows <= TotalWindows.
	assert.GreaterOrEqual(t, s.AnomalyWindows, 0)
	assert.LessOrEqual(t, s.AnomalyWindows, s.TotalWindows)

	// Deriving twice from the same payload is byte-identical.
	assert.Equal(t, s, CalcProcessedSummary(batch))
}

func TestHealthScoreFromSummary(t *testing.T) {
	assert.Nil(t, HealthScoreFromSummary(nil))
	assert.Nil(t, HealthScoreFromSummary(&model.ProcessedSummary{}))

	score := HealthScoreFromSummary(&model.ProcessedSummary{TotalWindows: 4, AnomalyWindows: 1})
	require.NotNil(t, score)
	assert.Equal(t, 0.75, *score)
}

func TestHealthStatusBanding(t *testing.T) {
	band := func(v float64) string { return HealthStatus(&v) }

	assert.Equal(t, StatusPending, HealthStatus(nil))
	assert.Equal(t, StatusHealthy, band(1.0))
	assert.Equal(t, StatusHealthy, band(0.8))
	assert.Equal(t, StatusMonitor, band(0.79))
	assert.Equal(t, StatusMonitor, band(0.4))
	assert.Equal(t, StatusCritical, band(0.39))
	assert.Equal(t, StatusCritical, band(0))
}

func TestTimeline(t *testing.T) {
	assert.Nil(t, Timeline(nil))
	assert.Nil(t, Timeline(&model.CompleteBatch{}))

	batch := &model.CompleteBatch{
		Autoencoder: &model.AutoencoderData{
			Results: []model.WindowResult{
				{Overall: &model.WindowOverall{AnomalyCount: 2, SystemHealthStatus: "WARNING"}},
				{}, // window without an overall block
			},
		},
	}
	tl := Timeline(batch)
	require.Len(t, tl, 2)
	assert.Equal(t, TimelineEntry{WindowIndex: 0, AnomalyCount: 2, SystemHealthStatus: "WARNING"}, tl[0])
	assert.Equal(t, TimelineEntry{WindowIndex: 1, AnomalyCount: 0, SystemHealthStatus: "Unknown"}, tl[1])
}
