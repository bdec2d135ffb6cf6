package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/observability"
)

// CacheAdminHandler exposes operator endpoints over the batch cache.
// All routes here are admin-only; the router enforces the role.
type CacheAdminHandler struct {
	Stats CacheStatsReader
	Cache Refresher
}

func NewCacheAdminHandler(stats CacheStatsReader, cache Refresher) *CacheAdminHandler {
	return &CacheAdminHandler{Stats: stats, Cache: cache}
}

// GetStats reports the size of the cache keyspace and the most recent write.
// GET /api/cache/stats
func (h *CacheAdminHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	stats, err := h.Stats.Stats(ctx)
	if err != nil {
		log.Printf("[CACHE] stats error: %v", err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Cache stats failed"})
	}
	return c.JSON(http.StatusOK, stats)
}

// Refresh forces a re-fetch of one batch from the upstream service.
// POST /api/cache/refresh/:batch_id
func (h *CacheAdminHandler) Refresh(c echo.Context) error {
	batchID := c.Param("batch_id")
	if batchID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "batch_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	if _, err := h.Cache.RefreshBatch(ctx, batchID, ""); err != nil {
		log.Printf("[CACHE] refresh error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Cache refresh failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"refreshed": true, "batch_id": batchID})
}
