package handler

import (
	"net/http"

	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminHandler reads across all tenants. Routed only behind the admin
// guard; the unfiltered store is never reachable otherwise.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// ListChannels returns every channel of every tenant.
func (h *AdminHandler) ListChannels(c echo.Context) error {
	channels, err := h.store.Admin().ListChannels()
	if err != nil {
		logger.FromEcho(c).Error("Failed to list channels", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, channels)
}

// Revenue returns the placeholder revenue report.
func (h *AdminHandler) Revenue(c echo.Context) error {
	total, byTenant, err := h.store.Admin().Revenue()
	if err != nil {
		logger.FromEcho(c).Error("Failed to compute revenue", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_revenue": total,
		"by_tenant":     byTenant,
	})
}
