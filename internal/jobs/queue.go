package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Job types dispatched through the queue.
const (
	TypePing                  = "ping"
	TypePublishOrder          = "publish_order"
	TypeNotifyNewOrder        = "notify_new_order"
	TypeNotifyOrderCancelled  = "notify_order_cancelled"
	TypeNotifyPaymentReceived = "notify_payment_received"
	TypeProcessWebhook        = "process_webhook"
)

// Queue names. Routing mirrors the worker deployment: publishing runs apart
// from notifications so a slow channel post never starves DMs.
const (
	QueueDefault       = "lytslot:queue:default"
	QueuePublish       = "lytslot:queue:publish"
	QueueNotifications = "lytslot:queue:notifications"
)

// Queues lists every queue the worker consumes.
var Queues = []string{QueuePublish, QueueNotifications, QueueDefault}

// QueueFor returns the queue a job type is routed to.
func QueueFor(jobType string) string {
	switch jobType {
	case TypePublishOrder:
		return QueuePublish
	case TypeNotifyNewOrder, TypeNotifyOrderCancelled, TypeNotifyPaymentReceived, TypeProcessWebhook:
		return QueueNotifications
	default:
		return QueueDefault
	}
}

// MaxRetries returns the retry budget for a job type (retries after the
// first attempt).
func MaxRetries(jobType string) int {
	switch jobType {
	case TypePublishOrder:
		return 3
	case TypeNotifyNewOrder, TypeNotifyOrderCancelled, TypeNotifyPaymentReceived:
		return 2
	default:
		return 3
	}
}

// Job is the wire format pushed onto a queue.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	RequestID  string          `json:"request_id,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// OrderJobPayload is the payload of every order-centric job.
type OrderJobPayload struct {
	OrderID string `json:"order_id"`
	Amount  string `json:"amount,omitempty"`
}

// WebhookJobPayload carries a raw provider callback body.
type WebhookJobPayload struct {
	Provider string          `json:"provider"`
	Body     json.RawMessage `json:"body"`
}

// Queue enqueues fire-and-forget jobs. Callers never wait for execution;
// enqueue failures are theirs to swallow and log.
type Queue interface {
	Enqueue(ctx context.Context, jobType string, payload any, requestID string) error
}

// RedisQueue is the Redis-list backed Queue implementation.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue wraps an initialized Redis client. The client is created
// once at startup and passed in; there is no lazy global.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue serializes the job and pushes it onto its routed queue.
func (q *RedisQueue) Enqueue(ctx context.Context, jobType string, payload any, requestID string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	job := Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    body,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.rdb.LPush(ctx, QueueFor(jobType), raw).Err()
}

// Push re-enqueues an existing job (used by the worker for retries).
func (q *RedisQueue) Push(ctx context.Context, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, QueueFor(job.Type), raw).Err()
}

// Pop blocks up to timeout waiting for a job on any of the queues. Returns
// nil without error when the wait times out.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.rdb.BRPop(ctx, timeout, Queues...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decode job from %s: %w", res[0], err)
	}
	return &job, nil
}
