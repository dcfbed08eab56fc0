package handler

import (
	"net/http"
	"time"

	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AnalyticsHandler serves read-only view aggregates.
type AnalyticsHandler struct {
	store *store.Store
}

func NewAnalyticsHandler(st *store.Store) *AnalyticsHandler {
	return &AnalyticsHandler{store: st}
}

// GetViews returns (day, count) pairs over the requested range, defaulting
// to the last 30 days, optionally filtered by channel.
func (h *AnalyticsHandler) GetViews(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	from, err := parseTimeParam(c, "date_from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_from"})
	}
	to, err := parseTimeParam(c, "date_to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_to"})
	}

	end := time.Now().UTC()
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -30)
	if from != nil {
		start = *from
	}
	if start.After(end) {
		start, end = end, start
	}

	out, err := ts.ViewsByDay(start, end, c.QueryParam("channel_id"))
	if err != nil {
		logger.FromEcho(c).Error("Failed to aggregate views", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GetSummary returns tenant-wide counters. Revenue is a placeholder.
func (h *AnalyticsHandler) GetSummary(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	summary, err := ts.GetSummary()
	if err != nil {
		logger.FromEcho(c).Error("Failed to build summary", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, summary)
}
