package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/foodorder/internal/dal/mercadopago"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/dal/rabbitmq"
	"github.com/corray333/foodorder/internal/dal/redis"
	auditrepo "github.com/corray333/foodorder/internal/dal/repositories/audit/postgres"
	catalogcache "github.com/corray333/foodorder/internal/dal/repositories/catalog/cache"
	catalogrepo "github.com/corray333/foodorder/internal/dal/repositories/catalog/postgres"
	messagerepo "github.com/corray333/foodorder/internal/dal/repositories/message/postgres"
	orderrepo "github.com/corray333/foodorder/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/corray333/foodorder/internal/dal/repositories/outbox/postgres"
	userrepo "github.com/corray333/foodorder/internal/dal/repositories/user/postgres"
	"github.com/corray333/foodorder/internal/otel"
	"github.com/corray333/foodorder/internal/realtime"
	"github.com/corray333/foodorder/internal/service/services/chatsvc"
	"github.com/corray333/foodorder/internal/service/services/ordersvc"
	"github.com/corray333/foodorder/internal/service/services/paymentsvc"
	httptransport "github.com/corray333/foodorder/internal/transport/http"
	"github.com/corray333/foodorder/internal/worker/outbox"
	"github.com/corray333/foodorder/pkg/http/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
)

// App represents the order service.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outbox.Worker
	hub            *realtime.Hub
	otel           *otel.OtelController
	postgresClient *postgres.Client
	redisClient    *redis.Client
	rabbitClient   *rabbitmq.Client
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel(viper.GetString("otel.service_name"))

	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()
	if err := rabbitClient.DeclareExchange(viper.GetString("rabbitmq.exchange")); err != nil {
		panic(err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := realtime.NewHub(realtime.WithMetrics(realtime.NewMetrics(reg)))

	pool := postgresClient.Pool()
	catalog := catalogcache.NewCatalogCache(
		catalogrepo.NewCatalogRepository(pool),
		redisClient.Redis(),
		viper.GetDuration("catalog.cache_ttl"),
	)
	orders := orderrepo.NewPostgresOrderRepository(pool)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalog(catalog),
		ordersvc.WithUserRepository(userrepo.NewUserRepository(pool)),
		ordersvc.WithAuditRepository(auditrepo.NewAuditRepository(pool)),
		ordersvc.WithNotifier(hub),
	)

	paymentSvc := paymentsvc.MustNewPaymentService(
		paymentsvc.WithGateway(mercadopago.MustNewClient()),
		paymentsvc.WithOrders(orderSvc, orders),
		paymentsvc.WithCatalog(catalog),
	)

	chatSvc := chatsvc.NewChatService(messagerepo.NewMessageRepository(pool), orders, hub)

	transport := httptransport.NewHTTPTransport(orderSvc, chatSvc, paymentSvc,
		httptransport.WithRealtime(hub),
		httptransport.WithMetrics(metrics.NewServerMetrics(reg, "order-svc"), reg),
		httptransport.WithHealthCheck(postgresClient.Ping),
	)
	transport.RegisterRoutes()

	return &App{
		transport:      transport,
		outboxWorker:   outbox.NewWorker(outboxrepo.NewOutboxRepository(pool), rabbitClient),
		hub:            hub,
		otel:           otelController,
		postgresClient: postgresClient,
		redisClient:    redisClient,
		rabbitClient:   rabbitClient,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	go a.hub.Run(bgCtx)
	go a.outboxWorker.Start(bgCtx)

	go func() {
		slog.Info("Starting HTTP server", "port", viper.GetString("server.http.port"))
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	a.outboxWorker.Stop()
	cancelBg()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	}

	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
