package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/denisok-ai/LytSlot/internal/model"
	"github.com/denisok-ai/LytSlot/internal/store"
	"github.com/denisok-ai/LytSlot/internal/telegram"
	"github.com/denisok-ai/LytSlot/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Messenger sends Telegram messages. telegram.Sender satisfies it; tests
// use a fake. A nil Messenger disables sends (jobs log and continue).
type Messenger interface {
	SendMessage(ctx context.Context, chatID any, text string) error
}

// Tasks holds the background job handlers. Each job resolves its order
// without tenant filtering, then pins a tenant store from the order's
// ancestry for any mutation, since jobs run outside any request context.
type Tasks struct {
	store     *store.Store
	messenger Messenger
}

// NewTasks builds the task set. messenger may be nil when no bot token is
// configured.
func NewTasks(st *store.Store, messenger Messenger) *Tasks {
	return &Tasks{store: st, messenger: messenger}
}

// Register binds every task to its job type on the worker.
func (t *Tasks) Register(w *Worker) {
	w.Register(TypePing, t.Ping)
	w.Register(TypePublishOrder, t.PublishOrder)
	w.Register(TypeNotifyNewOrder, t.NotifyNewOrder)
	w.Register(TypeNotifyOrderCancelled, t.NotifyOrderCancelled)
	w.Register(TypeNotifyPaymentReceived, t.NotifyPaymentReceived)
	w.Register(TypeProcessWebhook, t.ProcessWebhook)
}

// Ping verifies the worker and queue are alive.
func (t *Tasks) Ping(ctx context.Context, job *Job) error {
	logger.FromContext(ctx).Info("pong")
	return nil
}

func decodeOrderPayload(job *Job) (*OrderJobPayload, error) {
	var p OrderJobPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", job.Type, err)
	}
	return &p, nil
}

// resolveOrder loads the order with channel and tenant. A missing order is
// not retryable: it is logged and the job completes.
func (t *Tasks) resolveOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := t.store.ResolveOrderForJob(orderID)
	if err == gorm.ErrRecordNotFound {
		logger.FromContext(ctx).Warn("Order not found", zap.String("order_id", orderID))
		return nil, nil
	}
	return order, err
}

// sendTo delivers a direct message to a telegram user.
func (t *Tasks) sendTo(ctx context.Context, telegramID int64, text string) error {
	if t.messenger == nil {
		logger.FromContext(ctx).Warn("BOT_TOKEN not set, skipping notification",
			zap.Int64("telegram_id", telegramID))
		return nil
	}
	return t.messenger.SendMessage(ctx, telegramID, text)
}

// PublishOrder posts the order content to its channel through the bot
// account and appends a view event. A failed channel post returns an error
// so the queue retries; the order status is never rolled back.
func (t *Tasks) PublishOrder(ctx context.Context, job *Job) error {
	log := logger.FromContext(ctx)
	p, err := decodeOrderPayload(job)
	if err != nil {
		return err
	}
	order, err := t.resolveOrder(ctx, p.OrderID)
	if err != nil || order == nil {
		return err
	}
	if order.Channel == nil {
		log.Warn("Order has no channel", zap.String("order_id", order.ID))
		return nil
	}

	// Re-establish tenant context from the order's ancestry.
	ts := t.store.ForTenant(order.Channel.TenantID)

	text, _ := order.Content["text"].(string)
	if text == "" {
		text = "Реклама"
	}
	if order.Erid != nil && *order.Erid != "" {
		text += "\n\n🛍 ERID: " + *order.Erid
	}
	if link, _ := order.Content["link"].(string); link != "" {
		text += "\n\n" + link
	}

	if t.messenger != nil {
		chatID := telegram.ChannelChatID(order.Channel.Username)
		if err := t.messenger.SendMessage(ctx, chatID, text); err != nil {
			return fmt.Errorf("telegram sendMessage to %s: %w", chatID, err)
		}
		if err := ts.UpdateOrderStatus(order.ID, model.OrderStatusPublished); err != nil {
			return err
		}
		log.Info("Published order to channel",
			zap.String("order_id", order.ID), zap.String("channel", chatID))
	} else {
		log.Info("BOT_TOKEN not set, skipping telegram send",
			zap.String("order_id", order.ID))
	}

	return ts.CreateView(&model.View{OrderID: order.ID, Timestamp: time.Now().UTC()})
}

func channelDisplayName(order *model.Order) string {
	if order.Channel != nil && order.Channel.Username != "" {
		return telegram.ChannelChatID(order.Channel.Username)
	}
	return "канал"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "…"
	}
	return id
}

// NotifyNewOrder messages the channel's owning tenant and the advertiser.
func (t *Tasks) NotifyNewOrder(ctx context.Context, job *Job) error {
	p, err := decodeOrderPayload(job)
	if err != nil {
		return err
	}
	order, err := t.resolveOrder(ctx, p.OrderID)
	if err != nil || order == nil {
		return err
	}
	ch := channelDisplayName(order)
	if order.Channel != nil && order.Channel.Tenant != nil {
		ownerText := fmt.Sprintf("📩 Новый заказ на %s\nID: %s\nСтатус: %s", ch, shortID(order.ID), order.Status)
		if err := t.sendTo(ctx, order.Channel.Tenant.TelegramID, ownerText); err != nil {
			return err
		}
	}
	if order.AdvertiserID != 0 {
		advText := fmt.Sprintf("✅ Ваш заказ принят\nКанал: %s\nID: %s", ch, shortID(order.ID))
		if err := t.sendTo(ctx, order.AdvertiserID, advText); err != nil {
			return err
		}
	}
	return nil
}

// NotifyOrderCancelled messages both parties about a cancellation.
func (t *Tasks) NotifyOrderCancelled(ctx context.Context, job *Job) error {
	p, err := decodeOrderPayload(job)
	if err != nil {
		return err
	}
	order, err := t.resolveOrder(ctx, p.OrderID)
	if err != nil || order == nil {
		return err
	}
	text := fmt.Sprintf("❌ Заказ %s отменён.", shortID(order.ID))
	if order.AdvertiserID != 0 {
		if err := t.sendTo(ctx, order.AdvertiserID, text); err != nil {
			return err
		}
	}
	if order.Channel != nil && order.Channel.Tenant != nil {
		if err := t.sendTo(ctx, order.Channel.Tenant.TelegramID, text); err != nil {
			return err
		}
	}
	return nil
}

// NotifyPaymentReceived messages both parties about a received payment.
func (t *Tasks) NotifyPaymentReceived(ctx context.Context, job *Job) error {
	p, err := decodeOrderPayload(job)
	if err != nil {
		return err
	}
	order, err := t.resolveOrder(ctx, p.OrderID)
	if err != nil || order == nil {
		return err
	}
	text := fmt.Sprintf("💰 Оплата получена по заказу %s", shortID(order.ID))
	if p.Amount != "" {
		text += " Сумма: " + p.Amount
	}
	if order.Channel != nil && order.Channel.Tenant != nil {
		if err := t.sendTo(ctx, order.Channel.Tenant.TelegramID, text); err != nil {
			return err
		}
	}
	if order.AdvertiserID != 0 {
		if err := t.sendTo(ctx, order.AdvertiserID, text); err != nil {
			return err
		}
	}
	return nil
}

// ProcessWebhook handles a provider callback delivered through the queue.
// TODO: look the Payment up by invoice_id and update its status and the order.
func (t *Tasks) ProcessWebhook(ctx context.Context, job *Job) error {
	var p WebhookJobPayload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}
	logger.FromContext(ctx).Info("Webhook received",
		zap.String("provider", p.Provider), zap.Int("body_bytes", len(p.Body)))
	return nil
}
