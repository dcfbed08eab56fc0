package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/denisok-ai/LytSlot/internal/jobs"
	"github.com/denisok-ai/LytSlot/internal/middleware"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WebhookHandler accepts payment provider callbacks. Processing happens in
// the background; the provider always gets a 200 so it stops retrying.
// TODO: verify provider signatures before enqueueing.
type WebhookHandler struct {
	queue jobs.Queue
}

func NewWebhookHandler(queue jobs.Queue) *WebhookHandler {
	return &WebhookHandler{queue: queue}
}

// Stripe accepts a Stripe callback.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	return h.accept(c, "stripe")
}

// YooKassa accepts a YooKassa callback.
func (h *WebhookHandler) YooKassa(c echo.Context) error {
	return h.accept(c, "yookassa")
}

func (h *WebhookHandler) accept(c echo.Context, provider string) error {
	log := logger.FromEcho(c)
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warn("Failed to read webhook body", zap.String("provider", provider), zap.Error(err))
		body = nil
	}

	if h.queue == nil {
		log.Info("Worker disabled; webhook accepted and dropped",
			zap.String("provider", provider))
		return c.NoContent(http.StatusOK)
	}

	err = h.queue.Enqueue(c.Request().Context(), jobs.TypeProcessWebhook,
		jobs.WebhookJobPayload{Provider: provider, Body: json.RawMessage(body)},
		middleware.RequestIDFrom(c))
	if err != nil {
		// Still 200: the provider must not retry because our queue hiccuped.
		log.Warn("Failed to enqueue webhook", zap.String("provider", provider), zap.Error(err))
	}
	return c.NoContent(http.StatusOK)
}
