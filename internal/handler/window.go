package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/health"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/observability"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

// WindowHandler serves per-window detail out of the cached complete batch
// payload. These routes never reach upstream themselves; a batch that was
// not cached yet renders an empty object so the UI can poll.
type WindowHandler struct {
	Batches BatchCacheReader
}

func NewWindowHandler(batches BatchCacheReader) *WindowHandler {
	return &WindowHandler{Batches: batches}
}

// loadBatch resolves the cached batch, translating a miss into (nil, nil).
func (h *WindowHandler) loadBatch(ctx context.Context, batchID string) (*model.BatchCache, error) {
	batch, err := h.Batches.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return batch, nil
}

// parseWindowIndex validates the :window_id path parameter.
func parseWindowIndex(c echo.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("window_id"))
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// GetAutoencoderWindow returns the autoencoder verdicts of one window.
// GET /api/batch/:batch_id/window/:window_id/autoencoder
func (h *WindowHandler) GetAutoencoderWindow(c echo.Context) error {
	batchID := c.Param("batch_id")
	idx, ok := parseWindowIndex(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid window index"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.loadBatch(ctx, batchID)
	if err != nil {
		log.Printf("[WINDOW] autoencoder fetch error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Window fetch failed"})
	}
	if batch == nil || batch.CompleteData == nil || batch.CompleteData.Autoencoder == nil {
		// Not cached yet; the UI treats {} as "still processing".
		return c.JSON(http.StatusOK, echo.Map{})
	}
	results := batch.CompleteData.Autoencoder.Results
	if idx >= len(results) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Window not found"})
	}
	w := results[idx]
	return c.JSON(http.StatusOK, echo.Map{
		"batch_id":     batchID,
		"window_index": idx,
		"overall":      w.Overall,
		"bearing":      w.Bearing,
		"rotor":        w.Rotor,
		"stator":       w.Stator,
		"eccentricity": w.Eccentricity,
	})
}

// GetAttentionWeights returns the raw attention weights of one window.
// GET /api/batch/:batch_id/window/:window_id/attention
func (h *WindowHandler) GetAttentionWeights(c echo.Context) error {
	batchID := c.Param("batch_id")
	idx, ok := parseWindowIndex(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid window index"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.loadBatch(ctx, batchID)
	if err != nil {
		log.Printf("[WINDOW] attention fetch error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Attention fetch failed"})
	}
	if batch == nil || batch.CompleteData == nil || batch.CompleteData.Autoencoder == nil {
		return c.JSON(http.StatusOK, echo.Map{})
	}
	results := batch.CompleteData.Autoencoder.Results
	if idx >= len(results) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Window not found"})
	}
	var weights any
	if f := results[idx].Features; f != nil {
		weights = f.AttentionWeights
	}
	return c.JSON(http.StatusOK, echo.Map{
		"batch_id":          batchID,
		"window_index":      idx,
		"attention_weights": weights,
	})
}

// GetLSTMPrediction returns the LSTM forecast matrix for one window. LSTM
// results carry their own window indices, so this matches on window_index
// rather than slice position.
// GET /api/batch/:batch_id/window/:window_id/lstm
func (h *WindowHandler) GetLSTMPrediction(c echo.Context) error {
	batchID := c.Param("batch_id")
	idx, ok := parseWindowIndex(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid window index"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.loadBatch(ctx, batchID)
	if err != nil {
		log.Printf("[WINDOW] lstm fetch error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "LSTM fetch failed"})
	}
	if batch == nil || batch.CompleteData == nil || batch.CompleteData.DualLSTM == nil {
		return c.JSON(http.StatusOK, echo.Map{})
	}
	for _, res := range batch.CompleteData.DualLSTM.Results {
		for _, p := range res.Predictions {
			if p.WindowIndex == idx {
				return c.JSON(http.StatusOK, echo.Map{
					"batch_id":     batchID,
					"window_index": idx,
					"predictions":  p.Predictions,
				})
			}
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "LSTM prediction not found"})
}

// GetTimeline returns the per-window anomaly timeline of a batch. A batch
// without cached data renders an empty pending timeline instead of an error.
// GET /api/batch/:batch_id/anomalies/timeline
func (h *WindowHandler) GetTimeline(c echo.Context) error {
	batchID := c.Param("batch_id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.loadBatch(ctx, batchID)
	if err != nil {
		log.Printf("[WINDOW] timeline fetch error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Timeline fetch failed"})
	}
	var timeline []health.TimelineEntry
	if batch != nil {
		timeline = health.Timeline(batch.CompleteData)
	}
	if timeline == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"batch_id": batchID,
			"timeline": []health.TimelineEntry{},
			"pending":  true,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"batch_id": batchID,
		"timeline": timeline,
	})
}
