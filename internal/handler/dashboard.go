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

// DashboardHandler serves the per-user batch list and the derived
// motor-health overview.
type DashboardHandler struct {
	Lists   UserBatchesReader
	Batches BatchCacheReader
	Cache   Refresher
}

func NewDashboardHandler(lists UserBatchesReader, batches BatchCacheReader, cache Refresher) *DashboardHandler {
	return &DashboardHandler{Lists: lists, Batches: batches, Cache: cache}
}

// loadList reads the cached batch list, refreshing it on a miss or when
// the client forces `refresh=true`.
func (h *DashboardHandler) loadList(ctx context.Context, userID string, count int, force bool) (*model.UserBatchesCache, error) {
	cached, err := h.Lists.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if cached == nil || force {
		return h.Cache.RefreshUserBatches(ctx, userID, count)
	}
	return cached, nil
}

// GetDashboard returns the cached batch list summary for a user.
// GET /dashboard/:user_id?count=&refresh=
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	count := 10
	if v := c.QueryParam("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}
	force := c.QueryParam("refresh") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	cached, err := h.loadList(ctx, userID, count, force)
	if err != nil {
		log.Printf("[DASHBOARD] error for %s: %v", userID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Dashboard fetch failed"})
	}
	if cached == nil || cached.BatchesSummary == nil {
		// Nothing upstream yet: render an empty dashboard, not an error.
		return c.JSON(http.StatusOK, echo.Map{
			"user_id":   userID,
			"batches":   []model.BatchSummaryEntry{},
			"cached_at": nil,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":   userID,
		"batches":   cached.BatchesSummary,
		"cached_at": cached.CachedAt,
	})
}

// GetMotorHealth aggregates the user's cached batches into the
// motor-health overview. Overview is null until any data is cached.
// GET /dashboard/:user_id/motor-health
func (h *DashboardHandler) GetMotorHealth(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	cached, err := h.loadList(ctx, userID, 10, false)
	if err != nil {
		log.Printf("[DASHBOARD] motor health error for %s: %v", userID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Motor health fetch failed"})
	}

	var entries []model.BatchSummaryEntry
	var summaries []*model.ProcessedSummary
	if cached != nil {
		entries = cached.BatchesSummary
		for _, e := range entries {
			b, err := h.Batches.Get(ctx, e.BatchID)
			if err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					log.Printf("[DASHBOARD] batch %s lookup failed: %v", e.BatchID, err)
				}
				continue
			}
			summaries = append(summaries, b.ProcessedSummary)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  userID,
		"overview": health.BuildOverview(entries, summaries),
	})
}
