package health

import (
	"math"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

// Risk levels assigned per component. Ordered good < warning < critical;
// the classification is monotonic along both input axes.
const (
	RiskGood     = "good"
	RiskWarning  = "warning"
	RiskCritical = "critical"
)

// Confidence and anomaly-rate thresholds for the per-component risk
// classification. Presentation heuristics, fixed by convention.
const (
	confGood      = 0.70
	confWarning   = 0.40
	rateGoodMax   = 0.10
	rateWarnMax   = 0.30
	trendDeadband = 0.08
)

// ClassifyRisk maps mean confidence and anomaly rate onto a risk level.
// The result is the worse of the two axes, so lowering confidence or
// raising the anomaly rate can never soften the verdict.
func ClassifyRisk(avgConfidence, anomalyRate float64) string {
	byConf := RiskCritical
	switch {
	case avgConfidence >= confGood:
		byConf = RiskGood
	case avgConfidence >= confWarning:
		byConf = RiskWarning
	}
	byRate := RiskCritical
	switch {
	case anomalyRate < rateGoodMax:
		byRate = RiskGood
	case anomalyRate < rateWarnMax:
		byRate = RiskWarning
	}
	return worseRisk(byConf, byRate)
}

func riskRank(r string) int {
	switch r {
	case RiskGood:
		return 0
	case RiskWarning:
		return 1
	default:
		return 2
	}
}

func worseRisk(a, b string) string {
	if riskRank(a) >= riskRank(b) {
		return a
	}
	return b
}

// Trend is the health-score direction over a user's recent batches.
type Trend struct {
	Direction string `json:"direction"`
	Text      string `json:"text"`
	Color     string `json:"color"`
}

// FailureBand is the heuristic time-to-failure estimate shown on the
// dashboard clock tile.
type FailureBand struct {
	Period string `json:"period"`
	Text   string `json:"text"`
	Color  string `json:"color"`
}

// ComponentOverview aggregates one component across a user's cached batches.
type ComponentOverview struct {
	AvgConfidence  float64 `json:"avg_confidence"`
	TotalAnomalies int     `json:"total_anomalies"`
	RiskLevel      string  `json:"risk_level"`
}

// Overview is the motor-health payload of GET /dashboard/:user_id/motor-health.
type Overview struct {
	AvgHealthPercentage  float64                      `json:"avg_health_percentage"`
	TotalBatchesAnalyzed int                          `json:"total_batches_analyzed"`
	TotalWindows         int                          `json:"total_windows"`
	TotalAnomalies       int                          `json:"total_anomalies"`
	AnomalyRate          float64                      `json:"anomaly_rate"`
	Trend                Trend                        `json:"trend"`
	TimeToFailure        FailureBand                  `json:"time_to_failure"`
	Components           map[string]ComponentOverview `json:"components"`
}

// UI accent colors, mirrored from the PDF report theme so every surface
// color-codes severity identically.
const (
	colorSuccess = "#10b981"
	colorWarning = "#f59e0b"
	colorDanger  = "#ef4444"
	colorNeutral = "#6366f1"
)

// TrendOf compares the newer half of the recent health scores (newest
// first) against the older half using the robust average. Differences
// inside the +-0.08 deadband count as stable.
func TrendOf(scores []float64) Trend {
	if len(scores) < 2 {
		return Trend{Direction: "stable", Text: "Not enough history", Color: colorNeutral}
	}
	newer := RobustAverage(scores[:len(scores)/2])
	older := RobustAverage(scores[len(scores)/2:])
	diff := newer - older
	switch {
	case diff > trendDeadband:
		return Trend{Direction: "improving", Text: "Health improving", Color: colorSuccess}
	case diff < -trendDeadband:
		return Trend{Direction: "declining", Text: "Health declining", Color: colorDanger}
	default:
		return Trend{Direction: "stable", Text: "Health stable", Color: colorWarning}
	}
}

// TimeToFailure bands the overall health percentage and the number of
// critical components into a coarse operating-time estimate. A heuristic
// for the dashboard, not a validated prognosis.
func TimeToFailure(healthPct float64, criticalComponents int) FailureBand {
	switch {
	case healthPct >= 80 && criticalComponents == 0:
		return FailureBand{Period: "Years", Text: "No failure indicators detected", Color: colorSuccess}
	case healthPct >= 60 && criticalComponents <= 1:
		return FailureBand{Period: "Months", Text: "Schedule routine maintenance", Color: colorSuccess}
	case healthPct >= 40:
		return FailureBand{Period: "Days", Text: "Inspect flagged components soon", Color: colorWarning}
	case healthPct >= 20:
		return FailureBand{Period: "Hours", Text: "Intervention required shortly", Color: colorDanger}
	default:
		return FailureBand{Period: "Critical", Text: "Immediate shutdown recommended", Color: colorDanger}
	}
}

// BuildOverview aggregates a user's cached batch list and whatever
// per-batch summaries are cached into the motor-health overview. Batches
// without a cached summary still contribute their list-level health score;
// component aggregates come only from full summaries. Returns nil when
// nothing at all is available yet.
func BuildOverview(entries []model.BatchSummaryEntry, summaries []*model.ProcessedSummary) *Overview {
	var scores []float64
	for _, e := range entries {
		if e.HealthScore != nil {
			scores = append(scores, *e.HealthScore)
		}
	}

	totalWindows := 0
	totalAnomalies := 0
	compConf := make(map[string][]float64, len(Components))
	compAnoms := make(map[string]int, len(Components))
	analyzed := 0
	for _, s := range summaries {
		if s == nil {
			continue
		}
		analyzed++
		totalWindows += s.TotalWindows
		totalAnomalies += s.AnomalyWindows
		for _, c := range Components {
			if ch, ok := s.ComponentHealth[c]; ok {
				compConf[c] = append(compConf[c], ch.AvgConfidence)
				compAnoms[c] += ch.Anomalies
			}
		}
	}

	if len(scores) == 0 && analyzed == 0 {
		return nil
	}

	avgHealthPct := math.Round(RobustAverage(scores)*1000) / 10 // one decimal, percent

	// Component verdicts need at least one full summary; a bare list-level
	// health score says nothing about individual components.
	components := make(map[string]ComponentOverview, len(Components))
	criticalCount := 0
	for _, c := range Components {
		if analyzed == 0 {
			break
		}
		conf := RobustAverage(compConf[c])
		rate := 0.0
		if totalWindows > 0 {
			rate = float64(compAnoms[c]) / float64(totalWindows)
		}
		risk := ClassifyRisk(conf, rate)
		if risk == RiskCritical {
			criticalCount++
		}
		components[c] = ComponentOverview{
			AvgConfidence:  round3(conf),
			TotalAnomalies: compAnoms[c],
			RiskLevel:      risk,
		}
	}

	anomalyRate := 0.0
	if totalWindows > 0 {
		anomalyRate = math.Round(float64(totalAnomalies)/float64(totalWindows)*10000) / 100
	}

	return &Overview{
		AvgHealthPercentage:  avgHealthPct,
		TotalBatchesAnalyzed: len(entries),
		TotalWindows:         totalWindows,
		TotalAnomalies:       totalAnomalies,
		AnomalyRate:          anomalyRate,
		Trend:                TrendOf(scores),
		TimeToFailure:        TimeToFailure(avgHealthPct, criticalCount),
		Components:           components,
	}
}
