package handler

import (
	"net/http"
	"time"

	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SlotHandler serves bookable time slots, scoped to the tenant through the
// owning channel.
type SlotHandler struct {
	store *store.Store
}

func NewSlotHandler(st *store.Store) *SlotHandler {
	return &SlotHandler{store: st}
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListSlots returns a channel's slots, optionally bounded by date range.
func (h *SlotHandler) ListSlots(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	channelID := c.QueryParam("channel_id")
	if channelID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "channel_id is required"})
	}
	from, err := parseTimeParam(c, "date_from")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_from"})
	}
	to, err := parseTimeParam(c, "date_to")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_to"})
	}

	slots, err := ts.ListSlots(channelID, from, to)
	if err != nil {
		logger.FromEcho(c).Error("Failed to list slots", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, slots)
}

// GetSlot returns one slot by id.
func (h *SlotHandler) GetSlot(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	slot, err := ts.GetSlot(c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "slot")
	}
	return c.JSON(http.StatusOK, slot)
}

// CreateSlot creates a free slot on one of the tenant's channels.
func (h *SlotHandler) CreateSlot(c echo.Context) error {
	log := logger.FromEcho(c)
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		ChannelID string    `json:"channel_id"`
		StartsAt  time.Time `json:"datetime"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ChannelID == "" || req.StartsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "channel_id and datetime are required"})
	}

	slot := model.Slot{
		ChannelID: req.ChannelID,
		StartsAt:  req.StartsAt,
		Status:    model.SlotStatusFree,
	}
	if err := ts.CreateSlot(&slot); err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFoundOr(c, err, "channel")
		}
		log.Error("Failed to create slot", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "slot creation failed"})
	}

	log.Info("Slot created",
		zap.String("id", slot.ID), zap.String("channel_id", slot.ChannelID))
	return c.JSON(http.StatusCreated, slot)
}
