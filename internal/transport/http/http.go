package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/corray333/foodorder/docs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/message"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/payment"
	countstatus "github.com/corray333/foodorder/internal/transport/http/count_status"
	createorder "github.com/corray333/foodorder/internal/transport/http/create_order"
	getorder "github.com/corray333/foodorder/internal/transport/http/get_order"
	listorders "github.com/corray333/foodorder/internal/transport/http/list_orders"
	"github.com/corray333/foodorder/internal/transport/http/messages"
	"github.com/corray333/foodorder/internal/transport/http/preference"
	updatestatus "github.com/corray333/foodorder/internal/transport/http/update_status"
	"github.com/corray333/foodorder/internal/transport/http/webhook"
	"github.com/corray333/foodorder/pkg/http/middleware/auth"
	"github.com/corray333/foodorder/pkg/http/middleware/metrics"
	"github.com/corray333/foodorder/pkg/http/middleware/trace"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/corray333/foodorder/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type orderService interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.View, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	GetOrderItems(ctx context.Context, id string) ([]order.Item, error)
	GetOrderHistory(ctx context.Context, id string) ([]event.HistoryEntry, error)
	ListOwnerOrders(ctx context.Context, callerID, ownerID string) ([]order.Order, error)
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.View, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (order.Order, error)
	CancelOrder(ctx context.Context, id string) (order.Order, error)
	CountByStatus(ctx context.Context) (order.StatusCounts, error)
}

type chatService interface {
	PostMessage(ctx context.Context, model message.CreateMessageModel) (message.Message, error)
	ListMessages(ctx context.Context, orderID string) ([]message.Message, error)
	CountMessages(ctx context.Context, orderID string) (int64, error)
}

type paymentService interface {
	HandleNotification(ctx context.Context, n payment.Notification) error
	CreatePreference(ctx context.Context, model payment.CreatePreferenceModel) (payment.Preference, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orders   orderService
	chat     chatService
	payments paymentService

	realtime   http.Handler
	metrics    *metrics.ServerMetrics
	gatherer   prometheus.Gatherer
	health     func(ctx context.Context) error
	authSecret []byte
}

// option is a function that configures the HTTPTransport.
type option func(*HTTPTransport)

// WithRealtime mounts the websocket endpoint.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRealtime(h http.Handler) option {
	return func(t *HTTPTransport) {
		t.realtime = h
	}
}

// WithMetrics records request metrics and exposes g on /metrics.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMetrics(m *metrics.ServerMetrics, g prometheus.Gatherer) option {
	return func(t *HTTPTransport) {
		t.metrics = m
		t.gatherer = g
	}
}

// WithHealthCheck sets the probe behind /healthz.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHealthCheck(check func(ctx context.Context) error) option {
	return func(t *HTTPTransport) {
		t.health = check
	}
}

// WithAuthSecret sets the HMAC key tokens are verified with. Defaults to JWT_SECRET.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuthSecret(secret []byte) option {
	return func(t *HTTPTransport) {
		t.authSecret = secret
	}
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewHTTPTransport(orders orderService, chat chatService, payments paymentService, opts ...option) *HTTPTransport {
	t := &HTTPTransport{
		orders:     orders,
		chat:       chat,
		payments:   payments,
		authSecret: []byte(os.Getenv("JWT_SECRET")),
	}
	for _, opt := range opts {
		opt(t)
	}

	if len(t.authSecret) == 0 {
		panic("JWT_SECRET is not set")
	}

	t.router = t.newRouter()
	t.server = newServer(t.router)

	return t
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler returns the router.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/healthz", h.healthz)
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if h.realtime != nil {
		h.router.Handle("/ws", h.realtime)
	}
	if h.gatherer != nil {
		h.router.Handle("/metrics", metrics.Handler(h.gatherer))
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Post("/webhook/mp", h.webhook)

		r.Group(func(r chi.Router) {
			r.Use(auth.NewAuthMiddleware(h.authSecret))

			r.Post("/orders", h.createOrder)
			r.Get("/orders/me", h.listMyOrders)
			r.Get("/orders/user/{userId}", h.listUserOrders)
			r.Get("/orders/admin", h.listOrders)
			r.Get("/orders/countstatus", h.countStatus)
			r.Get("/orders/{id}", h.getOrder)
			r.Get("/orders/{id}/items", h.getOrderItems)
			r.Get("/orders/{id}/history", h.getOrderHistory)
			r.Put("/orders/{id}/status", h.updateStatus)
			r.Put("/orders/{id}/cancel", h.cancelOrder)
			r.Get("/orders/{id}/messages", h.listMessages)
			r.Post("/orders/{id}/messages", h.postMessage)
			r.Get("/orders/{id}/messages/count", h.countMessages)

			r.Post("/mercado-pago/preference", h.createPreference)
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) listMyOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListMyOrders(w, r, h.orders)
}

func (h *HTTPTransport) listUserOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListUserOrders(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) countStatus(w http.ResponseWriter, r *http.Request) {
	countstatus.CountStatus(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) getOrderItems(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrderItems(w, r, h.orders)
}

func (h *HTTPTransport) getOrderHistory(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrderHistory(w, r, h.orders)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	updatestatus.Cancel(w, r, h.orders)
}

func (h *HTTPTransport) listMessages(w http.ResponseWriter, r *http.Request) {
	messages.List(w, r, h.chat)
}

func (h *HTTPTransport) postMessage(w http.ResponseWriter, r *http.Request) {
	messages.Post(w, r, h.chat)
}

func (h *HTTPTransport) countMessages(w http.ResponseWriter, r *http.Request) {
	messages.Count(w, r, h.chat)
}

func (h *HTTPTransport) createPreference(w http.ResponseWriter, r *http.Request) {
	preference.Create(w, r, h.payments)
}

func (h *HTTPTransport) webhook(w http.ResponseWriter, r *http.Request) {
	webhook.Handle(w, r, h.payments)
}

func (h *HTTPTransport) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health(ctx); err != nil {
			slog.ErrorContext(r.Context(), "Health check failed", "error", err)
			response.WriteJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

			return
		}
	}

	response.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPTransport) newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(trace.NewTraceMiddleware("order-svc"))
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	if h.metrics != nil {
		router.Use(h.metrics.Middleware)
	}

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
