package iorderrepo

import (
	"context"
	"errors"

	"github.com/corray333/foodorder/internal/service/models/order"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicatePayment is returned when an order for the external payment id already exists.
	ErrDuplicatePayment = errors.New("order for payment already exists")
	// ErrStatusChanged is returned when a compare-and-set status update lost a race.
	ErrStatusChanged = errors.New("order status changed concurrently")
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
	FindByID(ctx context.Context, id string) (order.Order, error)
	FindByExternalPaymentID(ctx context.Context, paymentID string) (order.Order, error)
	Query(ctx context.Context, filter order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to order.Status) (order.Order, error)
	CountByStatus(ctx context.Context) (order.StatusCounts, error)
}
