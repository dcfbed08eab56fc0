package jobs

import (
	"context"
	"time"

	"github.com/denisok-ai/LytSlot/pkg/logger"
	"github.com/denisok-ai/LytSlot/prometheus"
	"go.uber.org/zap"
)

// Handler executes one job. A returned error triggers a retry while the
// job's budget lasts.
type Handler func(ctx context.Context, job *Job) error

// Broker is the transport the worker polls. RedisQueue satisfies it; tests
// use an in-memory fake.
type Broker interface {
	Pop(ctx context.Context, timeout time.Duration) (*Job, error)
	Push(ctx context.Context, job *Job) error
}

// Worker is a poll-and-execute loop over the job queues with a per-job
// retry budget and a dead-letter log after exhaustion.
type Worker struct {
	broker   Broker
	handlers map[string]Handler
	popWait  time.Duration
}

// NewWorker creates a worker over the given broker.
func NewWorker(broker Broker) *Worker {
	return &Worker{
		broker:   broker,
		handlers: make(map[string]Handler),
		popWait:  5 * time.Second,
	}
}

// Register binds a handler to a job type.
func (w *Worker) Register(jobType string, h Handler) {
	w.handlers[jobType] = h
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log := logger.GetLogger()
	log.Info("Worker started", zap.Strings("queues", Queues))
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		job, err := w.broker.Pop(ctx, w.popWait)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("Failed to poll queue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.Process(ctx, job)
	}
}

// Process dispatches a single job, re-enqueueing it on failure while the
// retry budget lasts.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := logger.GetLogger().With(
		zap.String("job_id", job.ID),
		zap.String("job_type", job.Type),
		zap.String("request_id", job.RequestID),
		zap.Int("attempt", job.Attempt),
	)
	ctx = logger.WithContext(ctx, log)

	h, ok := w.handlers[job.Type]
	if !ok {
		log.Error("No handler registered for job type, dropping")
		prometheus.RecordJob(job.Type, "dropped")
		return
	}

	err := h(ctx, job)
	if err == nil {
		prometheus.RecordJob(job.Type, "ok")
		log.Info("Job completed")
		return
	}

	if job.Attempt < MaxRetries(job.Type) {
		job.Attempt++
		if pushErr := w.broker.Push(ctx, job); pushErr != nil {
			prometheus.RecordJob(job.Type, "lost")
			log.Error("Job failed and could not be re-enqueued",
				zap.Error(err), zap.NamedError("push_error", pushErr))
			return
		}
		prometheus.RecordJob(job.Type, "retried")
		log.Warn("Job failed, re-enqueued", zap.Error(err))
		return
	}

	// Retry budget exhausted: dead-letter log only, never surfaced to the
	// original caller.
	prometheus.RecordJob(job.Type, "dead")
	log.Error("Job failed permanently after retries", zap.Error(err))
}
