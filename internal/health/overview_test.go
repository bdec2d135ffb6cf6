package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name string
		conf float64
		rate float64
		want string
	}{
		{"high confidence low rate", 0.9, 0.05, RiskGood},
		{"boundary good confidence", 0.70, 0.0, RiskGood},
		{"mid confidence", 0.5, 0.05, RiskWarning},
		{"rate pushes to warning", 0.9, 0.15, RiskWarning},
		{"low confidence wins", 0.2, 0.0, RiskCritical},
		{"high rate wins", 0.95, 0.5, RiskCritical},
		{"boundary warn rate", 0.9, 0.30, RiskCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.conf, tt.rate))
		})
	}
}

// Lowering confidence or raising the anomaly rate must never soften the
// verdict.
func TestClassifyRiskMonotonic(t *testing.T) {
	confs := []float64{0.0, 0.39, 0.40, 0.69, 0.70, 1.0}
	rates := []float64{0.0, 0.09, 0.10, 0.29, 0.30, 1.0}

	for _, rate := range rates {
		for i := 1; i < len(confs); i++ {
			lower := riskRank(ClassifyRisk(confs[i-1], rate))
			higher := riskRank(ClassifyRisk(confs[i], rate))
			assert.GreaterOrEqual(t, lower, higher,
				"conf %v -> %v at rate %v", confs[i-1], confs[i], rate)
		}
	}
	for _, conf := range confs {
		for i := 1; i < len(rates); i++ {
			lower := riskRank(ClassifyRisk(conf, rates[i-1]))
			higher := riskRank(ClassifyRisk(conf, rates[i]))
			assert.LessOrEqual(t, lower, higher,
				"rate %v -> %v at conf %v", rates[i-1], rates[i], conf)
		}
	}
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, "stable", TrendOf(nil).Direction)
	assert.Equal(t, "stable", TrendOf([]float64{0.5}).Direction)

	// Scores are newest first.
	assert.Equal(t, "improving", TrendOf([]float64{0.9, 0.9, 0.5, 0.5}).Direction)
	assert.Equal(t, "declining", TrendOf([]float64{0.3, 0.3, 0.8, 0.8}).Direction)
	// Differences inside the deadband count as stable.
	assert.Equal(t, "stable", TrendOf([]float64{0.52, 0.52, 0.5, 0.5}).Direction)
}

func TestTimeToFailure(t *testing.T) {
	assert.Equal(t, "Years", TimeToFailure(90, 0).Period)
	assert.Equal(t, "Months", TimeToFailure(90, 1).Period)
	assert.Equal(t, "Months", TimeToFailure(65, 1).Period)
	assert.Equal(t, "Days", TimeToFailure(65, 2).Period)
	assert.Equal(t, "Days", TimeToFailure(45, 0).Period)
	assert.Equal(t, "Hours", TimeToFailure(25, 3).Period)
	assert.Equal(t, "Critical", TimeToFailure(10, 4).Period)
}

func score(v float64) *float64 { return &v }

func TestBuildOverviewEmpty(t *testing.T) {
	assert.Nil(t, BuildOverview(nil, nil))

	// Entries without scores and no summaries still mean "nothing yet".
	entries := []model.BatchSummaryEntry{{BatchID: "b1"}}
	assert.Nil(t, BuildOverview(entries, nil))
}

func TestBuildOverviewScoresOnly(t *testing.T) {
	entries := []model.BatchSummaryEntry{
		{BatchID: "b1", HealthScore: score(0.9)},
		{BatchID: "b2", HealthScore: score(0.9)},
	}
	o := BuildOverview(entries, nil)
	require.NotNil(t, o)
	assert.Equal(t, 90.0, o.AvgHealthPercentage)
	assert.Equal(t, 2, o.TotalBatchesAnalyzed)
	assert.Equal(t, 0, o.TotalWindows)
	// No cached summaries: no component verdicts can be made.
	assert.Empty(t, o.Components)
}

func TestBuildOverviewWithSummaries(t *testing.T) {
	entries := []model.BatchSummaryEntry{
		{BatchID: "b1", HealthScore: score(0.9)},
		{BatchID: "b2", HealthScore: score(0.1)},
	}
	summaries := []*model.ProcessedSummary{
		{
			TotalWindows:   10,
			AnomalyWindows: 2,
			ComponentHealth: map[string]model.ComponentHealth{
				"bearing":      {AvgConfidence: 0.9, Anomalies: 0},
				"rotor":        {AvgConfidence: 0.2, Anomalies: 6},
				"stator":       {AvgConfidence: 0.8},
				"eccentricity": {AvgConfidence: 0.8},
			},
		},
		nil, // uncached batch contributes nothing
	}

	o := BuildOverview(entries, summaries)
	require.NotNil(t, o)
	assert.Equal(t, 10, o.TotalWindows)
	assert.Equal(t, 2, o.TotalAnomalies)
	assert.Equal(t, 20.0, o.AnomalyRate)
	assert.Len(t, o.Components, 4)
	assert.Equal(t, RiskGood, o.Components["bearing"].RiskLevel)
	assert.Equal(t, RiskCritical, o.Components["rotor"].RiskLevel)
	assert.Equal(t, 6, o.Components["rotor"].TotalAnomalies)
	assert.NotEmpty(t, o.TimeToFailure.Period)
	assert.NotEmpty(t, o.Trend.Direction)
}
