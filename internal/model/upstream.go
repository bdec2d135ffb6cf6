package model

import "encoding/json"

// Typed views of the upstream AI-service payloads. The upstream emits
// schemaless JSON; these structs decode the parts this service actually
// reads and keep everything optional as nil-able pointers, so a missing
// section never panics a handler. Unknown fields are simply dropped.

// CompleteBatch mirrors the response of GET /batches/{batch_id}/complete.
type CompleteBatch struct {
	Metadata    *BatchMetadata   `json:"metadata,omitempty"`
	Autoencoder *AutoencoderData `json:"autoencoder,omitempty"`
	DualLSTM    *DualLSTMData    `json:"dual_lstm,omitempty"`
}

// BatchMetadata carries batch-level hints from the upstream pipeline.
type BatchMetadata struct {
	UserID       string   `json:"user_id,omitempty"`
	Timestamp    string   `json:"timestamp,omitempty"`
	QuickHealth  *float64 `json:"quick_health,omitempty"`
	AnomalyCount *int     `json:"anomaly_count,omitempty"`
}

// AutoencoderData wraps the per-window autoencoder scoring results.
type AutoencoderData struct {
	Results []WindowResult `json:"results"`
}

// WindowResult is one fixed-size window of a batch, scored overall and per
// motor component. The component keys are stable upstream: bearing, rotor,
// stator, eccentricity.
type WindowResult struct {
	Overall      *WindowOverall       `json:"overall,omitempty"`
	Bearing      *ComponentWindow     `json:"bearing,omitempty"`
	Rotor        *ComponentWindow     `json:"rotor,omitempty"`
	Stator       *ComponentWindow     `json:"stator,omitempty"`
	Eccentricity *ComponentWindow     `json:"eccentricity,omitempty"`
	Features     *AutoencoderFeatures `json:"autoencoder_features,omitempty"`
}

// Component returns the named component slice of the window, or nil.
func (w *WindowResult) Component(name string) *ComponentWindow {
	switch name {
	case "bearing":
		return w.Bearing
	case "rotor":
		return w.Rotor
	case "stator":
		return w.Stator
	case "eccentricity":
		return w.Eccentricity
	}
	return nil
}

// WindowOverall summarizes a whole window.
type WindowOverall struct {
	AnomalyCount               int     `json:"anomaly_count"`
	OverallReconstructionError float64 `json:"overall_reconstruction_error"`
	SystemHealthStatus         string  `json:"system_health_status,omitempty"`
}

// ComponentWindow is the autoencoder verdict for one component in one window.
type ComponentWindow struct {
	ReconstructionError float64  `json:"reconstruction_error"`
	ConfidenceScore     float64  `json:"confidence_score"`
	IsAnomaly           bool     `json:"is_anomaly"`
	AnomalySeverity     float64  `json:"anomaly_severity,omitempty"`
	Top3Features        []string `json:"top3_features,omitempty"`
}

// AutoencoderFeatures carries auxiliary model outputs; the attention
// weights stay opaque since the API echoes them verbatim.
type AutoencoderFeatures struct {
	AttentionWeights map[string]json.RawMessage `json:"attention_weights,omitempty"`
}

// DualLSTMData wraps the LSTM forecast results of a batch.
type DualLSTMData struct {
	Results []LSTMResult `json:"results"`
}

// LSTMResult is one forecasting run holding per-window predictions.
type LSTMResult struct {
	Predictions []LSTMPrediction `json:"predictions"`
}

// LSTMPrediction is the forecast slice for one window index.
type LSTMPrediction struct {
	WindowIndex int              `json:"window_index"`
	Predictions PredictionMatrix `json:"predictions"`
}

// PredictionMatrix is a steps x features value grid.
type PredictionMatrix struct {
	Steps    []int       `json:"steps"`
	Features []string    `json:"features"`
	Values   [][]float64 `json:"values"`
}

// BatchListItem is one entry of GET /batches/user/{user_id}/recent.
// The upstream historically emitted either `batch_id` or Mongo-style `_id`.
type BatchListItem struct {
	BatchID   string         `json:"batch_id,omitempty"`
	MongoID   string         `json:"_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	Metadata  *BatchMetadata `json:"metadata,omitempty"`
}

// Time returns the batch timestamp, preferring the metadata block over the
// top-level field; older upstream revisions populated either one.
func (b BatchListItem) Time() string {
	if b.Metadata != nil && b.Metadata.Timestamp != "" {
		return b.Metadata.Timestamp
	}
	return b.Timestamp
}

// ID returns whichever identifier the upstream populated, or "unknown".
func (b BatchListItem) ID() string {
	if b.BatchID != "" {
		return b.BatchID
	}
	if b.MongoID != "" {
		return b.MongoID
	}
	return "unknown"
}

// RecentBatchesResponse is the envelope of the /recent endpoint. Batches
// may be absent entirely; callers must treat that as an empty list.
type RecentBatchesResponse struct {
	UserID      string          `json:"user_id,omitempty"`
	ActualCount int             `json:"actual_count,omitempty"`
	Batches     []BatchListItem `json:"batches,omitempty"`
}
