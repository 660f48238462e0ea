package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/dal/rabbitmq"
	auditrepo "github.com/corray333/foodorder/internal/dal/repositories/audit/postgres"
	"github.com/corray333/foodorder/internal/otel"
	"github.com/corray333/foodorder/internal/service/services/auditsvc"
	"github.com/corray333/foodorder/internal/transport/consumer"
)

// AuditApp records order events into the status history.
type AuditApp struct {
	consumer       *consumer.Consumer
	otel           *otel.OtelController
	postgresClient *postgres.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewAuditApp creates the audit consumer application.
func MustNewAuditApp() *AuditApp {
	otelController := otel.MustInitOtel("audit-consumer")

	postgresClient := postgres.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	auditSvc := auditsvc.MustNewAuditService(
		auditsvc.WithAuditRepository(auditrepo.NewAuditRepository(postgresClient.Pool())),
	)

	return &AuditApp{
		consumer:       consumer.NewConsumer(rabbitClient, auditSvc),
		otel:           otelController,
		postgresClient: postgresClient,
		rabbitClient:   rabbitClient,
	}
}

// Run consumes until an interrupt signal arrives.
func (a *AuditApp) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := a.consumer.Run(context.Background()); err != nil {
			slog.Error("Consumer error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	if err := a.consumer.Shutdown(); err != nil {
		slog.Error("Consumer shutdown error", "error", err)
	}

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	}

	a.postgresClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Audit consumer shutdown complete")
}
