package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/foodorder/internal/dal/rabbitmq"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// service represents the service layer interface.
type service interface {
	ProcessEvent(ctx context.Context, evt event.OrderEvent) error
}

// broker is the part of the RabbitMQ client the consumer needs.
type broker interface {
	DeclareExchange(name string) error
	DeclareQueue(cfg rabbitmq.DeclareQueueConfig) (amqp.Queue, error)
	BindQueue(queue, pattern, exchange string) error
	Consume(cfg rabbitmq.ConsumeConfig) (<-chan amqp.Delivery, error)
}

var errMalformedEvent = errors.New("malformed order event")

// Consumer feeds order events from RabbitMQ into the audit service.
type Consumer struct {
	client      broker
	service     service
	queue       string
	consumerTag string
	prefetch    int
	stop        chan struct{}
	done        chan struct{}
}

// NewConsumer declares the exchange, the durable audit queue and its binding.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewConsumer(client broker, service service) *Consumer {
	exchange := viper.GetString("rabbitmq.exchange")
	if exchange == "" {
		panic("rabbitmq.exchange is not set in config")
	}
	queueName := viper.GetString("rabbitmq.audit_queue")
	if queueName == "" {
		panic("rabbitmq.audit_queue is not set in config")
	}

	if err := client.DeclareExchange(exchange); err != nil {
		panic(err)
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:    queueName,
		Durable: true,
	})
	if err != nil {
		panic(err)
	}

	if err := client.BindQueue(queue.Name, "order.#", exchange); err != nil {
		panic(err)
	}

	consumerTag := viper.GetString("rabbitmq.consumer_tag")
	if consumerTag == "" {
		consumerTag = "audit-consumer"
	}

	return &Consumer{
		client:      client,
		service:     service,
		queue:       queue.Name,
		consumerTag: consumerTag,
		prefetch:    viper.GetInt("rabbitmq.prefetch"),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run consumes until ctx is done, Shutdown is called or the delivery channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	defer close(c.done)

	msgs, err := c.client.Consume(rabbitmq.ConsumeConfig{
		Queue:    c.queue,
		Consumer: c.consumerTag,
		Prefetch: c.prefetch,
	})
	if err != nil {
		return err
	}

	slog.Info("Consumer started", "queue", c.queue, "consumer_tag", c.consumerTag)

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(50)

loop:
	for {
		select {
		case <-ctx.Done():
			slog.Info("Consumer context done")

			break loop
		case <-c.stop:
			slog.Info("Stopping consumer")

			break loop
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("Message channel closed")

				break loop
			}

			g.Go(func() error {
				c.processMessage(gctx, msg)

				return nil
			})
		}
	}

	return g.Wait()
}

// processMessage acks stored events, requeues on storage failure and rejects malformed payloads.
func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	ctx, span := otel.Tracer("consumer").Start(ctx, "Consumer.processMessage")
	defer span.End()

	evt, err := decodeEvent(msg.Body)
	if err != nil {
		slog.ErrorContext(ctx, "Rejecting malformed message", "delivery_tag", msg.DeliveryTag, "error", err)
		if err := msg.Reject(false); err != nil {
			slog.ErrorContext(ctx, "Failed to reject message", "error", err)
		}

		return
	}

	if err := c.service.ProcessEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to process order event", "event_id", evt.EventID, "error", err)
		if err := msg.Nack(false, true); err != nil {
			slog.ErrorContext(ctx, "Failed to nack message", "error", err)
		}

		return
	}

	if err := msg.Ack(false); err != nil {
		slog.ErrorContext(ctx, "Failed to ack message", "event_id", evt.EventID, "error", err)
	}
}

func decodeEvent(body []byte) (event.OrderEvent, error) {
	var evt event.OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return event.OrderEvent{}, errors.Join(errMalformedEvent, err)
	}

	if evt.EventID == "" || evt.OrderID == "" || !evt.Status.Valid() {
		return event.OrderEvent{}, errMalformedEvent
	}

	return evt, nil
}

// Shutdown stops consuming and waits for in-flight messages.
func (c *Consumer) Shutdown() error {
	slog.Info("Shutting down consumer")
	close(c.stop)

	select {
	case <-c.done:
		slog.Info("Consumer stopped successfully")
	case <-time.After(10 * time.Second):
		slog.Warn("Consumer shutdown timeout")
	}

	return nil
}
