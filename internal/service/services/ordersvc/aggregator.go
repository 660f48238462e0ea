package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/realtime"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

// CreateOrder validates the cart, prices it from the catalog and stores the order.
// On success it broadcasts the new status counts and the new order.
func (s *OrderService) CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.View, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validateCreate(model); err != nil {
		return order.View{}, err
	}

	items, err := s.priceItems(ctx, model.Items)
	if err != nil {
		return order.View{}, err
	}

	o := order.Order{
		ID:                s.newID(),
		OwnerID:           model.OwnerID,
		DeliveryAddress:   model.Address,
		PaymentMethod:     model.PaymentMethod,
		Status:            s.initialStatus,
		Items:             items,
		Amount:            order.Total(items),
		ExternalPaymentID: model.ExternalPaymentID,
	}

	created, err := s.storeNewOrder(ctx, o)
	if err != nil {
		return order.View{}, err
	}

	slog.InfoContext(ctx, "Order created",
		"order_id", created.ID,
		"owner_id", created.OwnerID,
		"amount", created.Amount.StringFixed(2),
		"status", created.Status)

	s.broadcastCounts(ctx)

	view := s.enrich(ctx, created)
	s.broadcast(ctx, realtime.EventNewOrder, view)

	return view, nil
}

func validateCreate(model order.CreateOrderModel) error {
	if len(model.Items) == 0 {
		return errs.Validation(errs.CodeInvalidItem, "order has no items", "items")
	}

	if missing := model.Address.MissingFields(); len(missing) > 0 {
		return errs.MissingAddressFields(missing)
	}

	if !model.PaymentMethod.Valid() {
		return errs.Validation(errs.CodeInvalidPayment, "invalid payment method", "payment")
	}

	for i, it := range model.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			return errs.Validation(
				errs.CodeInvalidItem,
				fmt.Sprintf("invalid item at position %d", i),
				fmt.Sprintf("items[%d]", i),
			)
		}
	}

	return nil
}

// priceItems resolves every cart line concurrently and keeps cart order.
func (s *OrderService) priceItems(ctx context.Context, reqs []order.ItemRequest) ([]order.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, s.catalogTimeout)
	defer cancel()

	items := make([]order.Item, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, req := range reqs {
		g.Go(func() error {
			p, err := s.catalog.GetProduct(gctx, req.ProductID)
			switch {
			case errors.Is(err, icatalogrepo.ErrProductNotFound):
				return productNotFound(req.ProductID)
			case err != nil:
				return errs.ExternalService("catalog lookup failed", err)
			case !p.Active:
				return productNotFound(req.ProductID)
			}

			qty := decimal.NewFromInt(int64(req.Quantity))
			items[i] = order.Item{
				ProductID:   p.ID,
				Title:       p.Title,
				Description: p.Description,
				UnitPrice:   p.Price,
				Quantity:    req.Quantity,
				Subtotal:    p.Price.Mul(qty),
				Image:       p.Image,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return items, nil
}

func productNotFound(id string) error {
	return errs.NotFound(errs.CodeProductNotFound, fmt.Sprintf("product %s not found", id))
}

func (s *OrderService) storeNewOrder(ctx context.Context, o order.Order) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, errs.Internal("failed to start transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to roll back order creation", "error", err)
		}
	}()

	created, err := work.OrderRepository().Create(ctx, o)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrDuplicatePayment) {
			return order.Order{}, errs.Conflict(errs.CodeDuplicatePayment, "order for this payment already exists", err)
		}

		return order.Order{}, errs.Internal("failed to store order", err)
	}

	if err := s.enqueueEvent(ctx, work, event.TypeOrderCreated, created); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, errs.Internal("failed to commit order", err)
	}

	return created, nil
}
