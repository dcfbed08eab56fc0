package handler

import (
	"net/http"

	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ChannelHandler serves the tenant's channels.
type ChannelHandler struct {
	store *store.Store
}

func NewChannelHandler(st *store.Store) *ChannelHandler {
	return &ChannelHandler{store: st}
}

// ListChannels returns every channel of the current tenant.
func (h *ChannelHandler) ListChannels(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	channels, err := ts.ListChannels()
	if err != nil {
		logger.FromEcho(c).Error("Failed to list channels", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, channels)
}

// GetChannel returns one channel by id.
func (h *ChannelHandler) GetChannel(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	channel, err := ts.GetChannel(c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "channel")
	}
	return c.JSON(http.StatusOK, channel)
}

// CreateChannel registers a channel for the current tenant.
func (h *ChannelHandler) CreateChannel(c echo.Context) error {
	log := logger.FromEcho(c)
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	var req struct {
		Username     string   `json:"username"`
		SlotDuration *int     `json:"slot_duration"`
		PricePerSlot *float64 `json:"price_per_slot"`
		IsActive     *bool    `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username is required"})
	}

	channel := model.Channel{
		Username:     req.Username,
		SlotDuration: 3600,
		PricePerSlot: 1000,
		IsActive:     true,
	}
	if req.SlotDuration != nil {
		channel.SlotDuration = *req.SlotDuration
	}
	if req.PricePerSlot != nil {
		channel.PricePerSlot = *req.PricePerSlot
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}

	if err := ts.CreateChannel(&channel); err != nil {
		log.Error("Failed to create channel", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "channel creation failed"})
	}

	log.Info("Channel created",
		zap.String("id", channel.ID),
		zap.String("username", channel.Username),
		zap.String("tenant_id", ts.TenantID()))
	return c.JSON(http.StatusCreated, channel)
}

// UpdateChannel patches mutable channel fields.
func (h *ChannelHandler) UpdateChannel(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	channel, err := ts.GetChannel(c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "channel")
	}

	var req struct {
		Username     *string  `json:"username"`
		SlotDuration *int     `json:"slot_duration"`
		PricePerSlot *float64 `json:"price_per_slot"`
		IsActive     *bool    `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username != nil {
		channel.Username = *req.Username
	}
	if req.SlotDuration != nil {
		channel.SlotDuration = *req.SlotDuration
	}
	if req.PricePerSlot != nil {
		channel.PricePerSlot = *req.PricePerSlot
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}

	if err := ts.SaveChannel(channel); err != nil {
		logger.FromEcho(c).Error("Failed to update channel", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "channel update failed"})
	}
	return c.JSON(http.StatusOK, channel)
}
