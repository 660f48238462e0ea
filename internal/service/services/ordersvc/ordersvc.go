package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iuserrepo"
	"github.com/corray333/foodorder/internal/dal/postgres"
	orderrepo "github.com/corray333/foodorder/internal/dal/repositories/order/postgres"
	"github.com/corray333/foodorder/internal/dal/uow"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/spf13/viper"
)

// OrderService is a service for managing orders.
type OrderService struct {
	newUOW    func() unitOfWork
	orderRepo iorderrepo.IOrderRepository
	catalog   icatalogrepo.ICatalogRepository
	users     iuserrepo.IUserRepository
	history   iauditrepo.IAuditRepository
	notifier  notifier

	initialStatus    order.Status
	strict           bool
	catalogTimeout   time.Duration
	updateRetries    int
	exchange         string
	outboxMaxRetries int
	now              func() time.Time
	newID            func() string
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// notifier delivers realtime events. Delivery is best effort.
type notifier interface {
	Broadcast(ctx context.Context, event string, payload any) error
	BroadcastToRoom(ctx context.Context, room, event string, payload any) error
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. It panics when a required dependency is missing.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		strict:           viper.GetBool("orders.strict_transitions"),
		catalogTimeout:   viper.GetDuration("catalog.timeout"),
		updateRetries:    viper.GetInt("orders.update_retries"),
		exchange:         viper.GetString("rabbitmq.exchange"),
		outboxMaxRetries: viper.GetInt("rabbitmq.outbox.max_retries"),
		now:              time.Now,
		newID:            newID,
	}

	initial, err := order.ParseStatus(viper.GetString("orders.initial_status"))
	if err != nil {
		initial = order.StatusPending
	}
	s.initialStatus = initial

	for _, opt := range opts {
		opt(s)
	}

	if s.catalogTimeout <= 0 {
		s.catalogTimeout = 3 * time.Second
	}
	if s.updateRetries <= 0 {
		s.updateRetries = 3
	}
	if s.outboxMaxRetries <= 0 {
		s.outboxMaxRetries = 8
	}

	switch {
	case s.newUOW == nil:
		panic("ordersvc: unit of work is not configured")
	case s.orderRepo == nil:
		panic("ordersvc: order repository is not configured")
	case s.catalog == nil:
		panic("ordersvc: catalog is not configured")
	case s.notifier == nil:
		panic("ordersvc: notifier is not configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
	}
}

// WithUnitOfWork sets the transaction factory and the repository used for reads.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(newUOW func() unitOfWork, reads iorderrepo.IOrderRepository) option {
	return func(s *OrderService) {
		s.newUOW = newUOW
		s.orderRepo = reads
	}
}

// WithCatalog sets the product lookup.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(catalog icatalogrepo.ICatalogRepository) option {
	return func(s *OrderService) {
		s.catalog = catalog
	}
}

// WithUserRepository sets the owner lookup used to enrich orders.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUserRepository(users iuserrepo.IUserRepository) option {
	return func(s *OrderService) {
		s.users = users
	}
}

// WithAuditRepository sets the status history reader.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(history iauditrepo.IAuditRepository) option {
	return func(s *OrderService) {
		s.history = history
	}
}

// WithNotifier sets the realtime fan-out.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n notifier) option {
	return func(s *OrderService) {
		s.notifier = n
	}
}

// WithStrictTransitions toggles enforcement of the status transition table.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStrictTransitions(strict bool) option {
	return func(s *OrderService) {
		s.strict = strict
	}
}

// WithInitialStatus sets the status new orders start in.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInitialStatus(status order.Status) option {
	return func(s *OrderService) {
		if !status.Valid() {
			panic(fmt.Sprintf("ordersvc: invalid initial status %q", status))
		}
		s.initialStatus = status
	}
}

// WithCatalogTimeout bounds each catalog lookup.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogTimeout(d time.Duration) option {
	return func(s *OrderService) {
		s.catalogTimeout = d
	}
}
