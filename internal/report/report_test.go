package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

func score(v float64) *float64 { return &v }

func testBatch() *model.BatchCache {
	return &model.BatchCache{
		BatchID:  "b-1",
		UserID:   "alice",
		CachedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		CompleteData: &model.CompleteBatch{
			Autoencoder: &model.AutoencoderData{
				Results: []model.WindowResult{
					{
						Overall: &model.WindowOverall{AnomalyCount: 1, SystemHealthStatus: "WARNING"},
						Bearing: &model.ComponentWindow{ReconstructionError: 0.21, ConfidenceScore: 0.66, IsAnomaly: true, Top3Features: []string{"f1", "f2"}},
						Rotor:   &model.ComponentWindow{ReconstructionError: 0.05, ConfidenceScore: 0.95},
					},
					{Overall: &model.WindowOverall{AnomalyCount: 0, SystemHealthStatus: "HEALTHY"}},
				},
			},
			DualLSTM: &model.DualLSTMData{
				Results: []model.LSTMResult{{
					Predictions: []model.LSTMPrediction{{
						WindowIndex: 1,
						Predictions: model.PredictionMatrix{Steps: []int{1, 2}, Features: []string{"f1"}, Values: [][]float64{{0.1}, {0.2}}},
					}},
				}},
			},
		},
		ProcessedSummary: &model.ProcessedSummary{
			TotalWindows:           2,
			AnomalyWindows:         1,
			AvgReconstructionError: 0.13,
			ComponentHealth: map[string]model.ComponentHealth{
				"bearing": {AvgConfidence: 0.66, Anomalies: 1},
				"rotor":   {AvgConfidence: 0.95},
			},
		},
	}
}

func TestBuildDashboard(t *testing.T) {
	cached := &model.UserBatchesCache{
		UserID:   "alice",
		CachedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		BatchesSummary: []model.BatchSummaryEntry{
			{BatchID: "b-1", HealthScore: score(0.95), AnomalyCount: 0},
			{BatchID: "b-2", HealthScore: score(0.5), AnomalyCount: 3},
			{BatchID: "b-3", HealthScore: score(0.1), AnomalyCount: 9},
			{BatchID: "b-4"},
		},
	}
	r := BuildDashboard("alice", cached)

	assert.Equal(t, KindDashboard, r.Type)
	require.NotNil(t, r.CachedAt)
	require.Len(t, r.Batches, 4)
	// Banded identically for JSON and PDF exports.
	assert.Equal(t, "Healthy", r.Batches[0].HealthStatus)
	assert.Equal(t, "Monitor", r.Batches[1].HealthStatus)
	assert.Equal(t, "Critical", r.Batches[2].HealthStatus)
	assert.Equal(t, "Pending", r.Batches[3].HealthStatus)
}

func TestBuildDashboardNoCache(t *testing.T) {
	r := BuildDashboard("alice", nil)
	assert.Nil(t, r.CachedAt)
	assert.NotNil(t, r.Batches)
	assert.Empty(t, r.Batches)
}

func TestBuildBatch(t *testing.T) {
	r := BuildBatch(testBatch())
	assert.Equal(t, KindBatch, r.Type)
	assert.Equal(t, "alice", r.UserID)
	require.NotNil(t, r.ProcessedSummary)
	require.Len(t, r.Timeline, 2)
	assert.Equal(t, "WARNING", r.Timeline[0].SystemHealthStatus)
}

func TestBuildWindow(t *testing.T) {
	r := BuildWindow(testBatch(), 0)
	require.NotNil(t, r)
	assert.Equal(t, KindWindow, r.Type)
	require.NotNil(t, r.Overall)
	// Component rows follow the fixed order; absent components are skipped.
	require.Len(t, r.Components, 2)
	assert.Equal(t, "bearing", r.Components[0].Component)
	assert.Equal(t, "rotor", r.Components[1].Component)
	assert.True(t, r.Components[0].IsAnomaly)
	// The LSTM forecast belongs to window 1, not 0.
	assert.Nil(t, r.LSTM)

	r = BuildWindow(testBatch(), 1)
	require.NotNil(t, r)
	require.NotNil(t, r.LSTM)
	assert.Equal(t, []int{1, 2}, r.LSTM.Steps)
}

func TestBuildWindowOutOfRange(t *testing.T) {
	assert.Nil(t, BuildWindow(testBatch(), 2))
	assert.Nil(t, BuildWindow(testBatch(), -1))
	assert.Nil(t, BuildWindow(&model.BatchCache{}, 0))
}

func TestRenderPDFs(t *testing.T) {
	dash := BuildDashboard("alice", &model.UserBatchesCache{
		UserID:         "alice",
		CachedAt:       time.Now().UTC(),
		BatchesSummary: []model.BatchSummaryEntry{{BatchID: "b-1", HealthScore: score(0.9)}},
	})
	batch := BuildBatch(testBatch())
	win := BuildWindow(testBatch(), 0)
	require.NotNil(t, win)

	for name, render := range map[string]func() ([]byte, error){
		"dashboard": func() ([]byte, error) { return RenderDashboardPDF(dash) },
		"batch":     func() ([]byte, error) { return RenderBatchPDF(batch) },
		"window":    func() ([]byte, error) { return RenderWindowPDF(win) },
	} {
		t.Run(name, func(t *testing.T) {
			b, err := render()
			require.NoError(t, err)
			require.True(t, len(b) > 4)
			assert.Equal(t, "%PDF", string(b[:4]))
		})
	}
}

func TestFilename(t *testing.T) {
	a := Filename(KindBatch)
	b := Filename(KindBatch)
	assert.Contains(t, a, KindBatch)
	assert.Contains(t, a, ".pdf")
	assert.NotEqual(t, a, b)
}
