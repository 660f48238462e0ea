package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
)

// publisher sends a message to a RabbitMQ exchange.
type publisher interface {
	Publish(exchange, routingKey string, msg amqp.Publishing) error
}

// Worker relays order events from the outbox table to RabbitMQ.
type Worker struct {
	outboxRepo    ioutboxrepo.IOutboxRepository
	publisher     publisher
	pollInterval  time.Duration
	batchSize     int
	retryInterval time.Duration
	now           func() time.Time
	stopCh        chan struct{}
}

// NewWorker creates a new outbox worker.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	publisher publisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 5
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	retryIntervalSeconds := viper.GetInt("rabbitmq.outbox.retry_interval_seconds")
	if retryIntervalSeconds == 0 {
		retryIntervalSeconds = 30
	}

	return &Worker{
		outboxRepo:    outboxRepo,
		publisher:     publisher,
		pollInterval:  time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:     batchSize,
		retryInterval: time.Duration(retryIntervalSeconds) * time.Second,
		now:           time.Now,
		stopCh:        make(chan struct{}),
	}
}

// Start polls the outbox until ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processMessages publishes one batch of due messages.
func (w *Worker) processMessages(ctx context.Context) {
	ctx, span := otel.Tracer("worker").Start(ctx, "OutboxWorker.processMessages")
	defer span.End()

	messages, err := w.outboxRepo.FetchDue(ctx, w.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch due outbox messages", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.DebugContext(ctx, "Relaying order events", "count", len(messages))

	for _, msg := range messages {
		if err := w.publish(msg); err != nil {
			w.recordFailure(ctx, msg, err)

			continue
		}

		if err := w.outboxRepo.MarkPublished(ctx, msg.ID); err != nil {
			// The event will be published again; consumers dedupe on the event id.
			slog.ErrorContext(ctx, "Failed to remove published event from outbox",
				"outbox_id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
		}
	}
}

func (w *Worker) publish(msg outbox.Message) error {
	return w.publisher.Publish(msg.Exchange, msg.RoutingKey, amqp.Publishing{
		ContentType: msg.ContentType,
		MessageId:   msg.EventID,
		Timestamp:   msg.CreatedAt,
		Type:        msg.RoutingKey,
		Body:        msg.Payload,
	})
}

// recordFailure schedules the next attempt. Exhausted messages stay in the table for inspection.
func (w *Worker) recordFailure(ctx context.Context, msg outbox.Message, cause error) {
	attempts, next := msg.Failed(w.now(), w.retryInterval)
	msg.Attempts = attempts

	if msg.Exhausted() {
		slog.ErrorContext(ctx, "Order event exhausted its publish attempts",
			"outbox_id", msg.ID,
			"event_id", msg.EventID,
			"error", cause,
		)
	} else {
		slog.WarnContext(ctx, "Failed to publish order event, will retry",
			"event_id", msg.EventID,
			"attempts", attempts,
			"next_attempt", next,
			"error", cause,
		)
	}

	if err := w.outboxRepo.MarkFailed(ctx, msg.ID, attempts, cause.Error(), next); err != nil {
		slog.ErrorContext(ctx, "Failed to record publish failure", "outbox_id", msg.ID, "error", err)
	}
}
