package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/motor-health-dashboard/internal/middleware"
	"github.com/iliyamo/motor-health-dashboard/internal/model"
	"github.com/iliyamo/motor-health-dashboard/internal/observability"
	"github.com/iliyamo/motor-health-dashboard/internal/report"
	"github.com/iliyamo/motor-health-dashboard/internal/repository"
)

// ReportHandler serves the exportable reports. Every report is built from
// the cache only; the format query switches between a JSON body and a PDF
// attachment rendered in memory.
type ReportHandler struct {
	Lists   UserBatchesReader
	Batches BatchCacheReader
}

func NewReportHandler(lists UserBatchesReader, batches BatchCacheReader) *ReportHandler {
	return &ReportHandler{Lists: lists, Batches: batches}
}

// respond sends data as JSON, or as a PDF attachment when format=pdf. The
// PDF is rendered fully before any byte is written, so a render failure
// still produces a clean 500.
func respond(c echo.Context, kind string, data any, render func() ([]byte, error)) error {
	if c.QueryParam("format") != "pdf" {
		return c.JSON(http.StatusOK, data)
	}
	pdf, err := render()
	if err != nil {
		log.Printf("[REPORT] pdf render error: %v", err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Report rendering failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", report.Filename(kind)))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ownsBatch checks that the authenticated principal may read a cached
// batch: admins always, others only their own. Batch ownership is only
// known after the cache lookup, so this cannot live in route middleware.
func ownsBatch(c echo.Context, batch *model.BatchCache) bool {
	if role, _ := c.Get(middleware.CtxRole).(string); role == model.RoleAdmin {
		return true
	}
	username, _ := c.Get(middleware.CtxUsername).(string)
	return username != "" && username == batch.UserID
}

// GetDashboardReport exports a user's batch list with banded health status.
// GET /report/dashboard/:user_id?format=json|pdf
func (h *ReportHandler) GetDashboardReport(c echo.Context) error {
	userID := c.Param("user_id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	cached, err := h.Lists.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("[REPORT] dashboard report error for %s: %v", userID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate dashboard report"})
	}

	r := report.BuildDashboard(userID, cached)
	return respond(c, report.KindDashboard, r, func() ([]byte, error) {
		return report.RenderDashboardPDF(r)
	})
}

// GetBatchReport exports one batch's summary and anomaly timeline.
// GET /report/batch/:batch_id?format=json|pdf
func (h *ReportHandler) GetBatchReport(c echo.Context) error {
	batchID := c.Param("batch_id")

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.Batches.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Batch not found"})
		}
		log.Printf("[REPORT] batch report error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate batch report"})
	}
	if !ownsBatch(c, batch) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
	}

	r := report.BuildBatch(batch)
	return respond(c, report.KindBatch, r, func() ([]byte, error) {
		return report.RenderBatchPDF(r)
	})
}

// GetWindowReport exports the detail of one window of a batch.
// GET /report/batch/:batch_id/window/:window_id?format=json|pdf
func (h *ReportHandler) GetWindowReport(c echo.Context) error {
	batchID := c.Param("batch_id")
	windowIndex, err := strconv.Atoi(c.Param("window_id"))
	if err != nil || windowIndex < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid window index"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), opTimeout)
	defer cancel()

	batch, err := h.Batches.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Batch not found"})
		}
		log.Printf("[REPORT] window report error for %s: %v", batchID, err)
		observability.CaptureError(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to generate window report"})
	}
	if batch.CompleteData == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Batch not found"})
	}
	if !ownsBatch(c, batch) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Access denied"})
	}

	r := report.BuildWindow(batch, windowIndex)
	if r == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Window not found"})
	}
	return respond(c, report.KindWindow, r, func() ([]byte, error) {
		return report.RenderWindowPDF(r)
	})
}
