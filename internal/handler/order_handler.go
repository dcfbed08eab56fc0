package handler

import (
	"net/http"
	"strings"

	"github.com/denisok-ai/LytSlot/internal/jobs"
	"github.com/denisok-ai/LytSlot/internal/middleware"
	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderHandler serves orders and fires the publish/notify side effects.
// queue is nil when no broker is configured; dispatch is then skipped with
// a log note and never an error.
type OrderHandler struct {
	store *store.Store
	queue jobs.Queue
}

func NewOrderHandler(st *store.Store, queue jobs.Queue) *OrderHandler {
	return &OrderHandler{store: st, queue: queue}
}

// enqueue fires one job and swallows any failure: order creation/update
// must succeed from the caller's perspective regardless of dispatch.
func (h *OrderHandler) enqueue(c echo.Context, jobType, orderID string) {
	log := logger.FromEcho(c)
	if h.queue == nil {
		log.Info("Worker disabled (QUEUE_BROKER_URL not set); skipping job",
			zap.String("job_type", jobType), zap.String("order_id", orderID))
		return
	}
	err := h.queue.Enqueue(c.Request().Context(), jobType,
		jobs.OrderJobPayload{OrderID: orderID}, middleware.RequestIDFrom(c))
	if err != nil {
		log.Warn("Failed to enqueue job",
			zap.String("job_type", jobType), zap.String("order_id", orderID), zap.Error(err))
	}
}

// ListOrders returns every order of the current tenant.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	orders, err := ts.ListOrders()
	if err != nil {
		logger.FromEcho(c).Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order by id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	order, err := ts.GetOrder(c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "order")
	}
	return c.JSON(http.StatusOK, order)
}

// CreateOrder books a slot. Orders always start in draft regardless of
// input; publish and notify jobs are dispatched fire-and-forget.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}
	subject, err := advertiserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ChannelID string        `json:"channel_id"`
		SlotID    string        `json:"slot_id"`
		Content   model.JSONMap `json:"content"`
		Erid      *string       `json:"erid"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ChannelID == "" || req.SlotID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "channel_id and slot_id are required"})
	}
	if req.Content == nil {
		req.Content = model.JSONMap{}
	}

	order := model.Order{
		AdvertiserID: subject,
		ChannelID:    req.ChannelID,
		SlotID:       req.SlotID,
		Content:      req.Content,
		Erid:         req.Erid,
		Status:       model.OrderStatusDraft,
	}
	if err := ts.CreateOrder(&order); err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFoundOr(c, err, "channel or slot")
		}
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}

	prometheus.RecordOrderOperation("create")
	log.Info("Order created",
		zap.String("id", order.ID),
		zap.String("channel_id", order.ChannelID),
		zap.Int64("advertiser_id", order.AdvertiserID))

	h.enqueue(c, jobs.TypePublishOrder, order.ID)
	h.enqueue(c, jobs.TypeNotifyNewOrder, order.ID)

	return c.JSON(http.StatusCreated, order)
}

// UpdateOrder overwrites the order status. Exactly the six known literals
// are accepted; no transition legality is enforced beyond that.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	ts, err := tenantStore(c, h.store)
	if err != nil {
		return err
	}

	order, err := ts.GetOrder(c.Param("id"))
	if err != nil {
		return notFoundOr(c, err, "order")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if !model.ValidOrderStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid status, allowed: " + strings.Join(model.OrderStatuses, ", "),
		})
	}

	if err := ts.UpdateOrderStatus(order.ID, req.Status); err != nil {
		log.Error("Failed to update order status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order update failed"})
	}
	order.Status = req.Status

	prometheus.RecordOrderOperation("status_change")
	log.Info("Order status updated",
		zap.String("id", order.ID), zap.String("status", order.Status))

	if order.Status == model.OrderStatusCancelled {
		h.enqueue(c, jobs.TypeNotifyOrderCancelled, order.ID)
	}

	return c.JSON(http.StatusOK, order)
}
