package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/observability"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

// BatchHandler serves cached per-batch overviews.
type BatchHandler struct {
	Batches BatchCacheReader
	Cache   Refresher
}

func NewBatchHandler(batches BatchCacheReader, cache Refresher) *BatchHandler {
	return &BatchHandler{Batches: batches, Cache: cache}
}

// GetBatchOverview returns the cached summary for one batch, refreshing
// through the upstream service on a miss or an explicit `refresh=true`.
// GET /api/batch/:batch_id/overview?user_id=&refresh=
func (h *BatchHandler) GetBatchOverview(c echo.Context) error {
	batchID := c.Param("batch_id")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "batch_id required"})
	}
	userID := c.QueryParam("user_id")
	force := c.QueryParam("refresh") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.Batches.Get(ctx, batchID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[BATCH] Overview error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Batch overview failed"})
	}
	if batch == nil || force {
		batch, err = h.Cache.RefreshBatch(ctx, batchID, userID)
		if err != nil {
			log.Printf("[BATCH] Overview error for %s: %v", batchID, err)
			observability.CaptureError(err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Batch overview failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"batch_id":          batchID,
		"user_id":           batch.UserID,
		"cached_at":         batch.CachedAt,
		"processed_summary": batch.ProcessedSummary,
	})
}
