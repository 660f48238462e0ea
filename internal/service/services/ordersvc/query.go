package ordersvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/samber/lo"
)

// GetOrder returns an order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrNotFound) {
			return order.Order{}, errs.NotFound(errs.CodeOrderNotFound, "order not found")
		}

		return order.Order{}, errs.Internal("failed to load order", err)
	}

	return o, nil
}

// GetOrderItems returns the priced items of an order.
func (s *OrderService) GetOrderItems(ctx context.Context, id string) ([]order.Item, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	return o.Items, nil
}

// ListOwnerOrders returns the orders of ownerID, newest first. Callers may only list their own orders.
func (s *OrderService) ListOwnerOrders(ctx context.Context, callerID, ownerID string) ([]order.Order, error) {
	if callerID != ownerID {
		return nil, errs.Forbidden("access denied")
	}

	orders, err := s.orderRepo.Query(ctx, order.QueryOrdersModel{OwnerID: ownerID})
	if err != nil {
		return nil, errs.Internal("failed to list orders", err)
	}

	return orders, nil
}

// ListOrders returns all orders, optionally filtered by status, enriched with owner fields.
func (s *OrderService) ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.View, error) {
	orders, err := s.orderRepo.Query(ctx, filter)
	if err != nil {
		return nil, errs.Internal("failed to list orders", err)
	}

	views := lo.Map(orders, func(o order.Order, _ int) order.View {
		return order.View{Order: o}
	})
	if s.users == nil || len(orders) == 0 {
		return views, nil
	}

	ownerIDs := lo.Uniq(lo.Map(orders, func(o order.Order, _ int) string { return o.OwnerID }))
	owners, err := s.users.GetOwners(ctx, ownerIDs)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load order owners", "error", err)

		return views, nil
	}

	for i := range views {
		if owner, ok := owners[views[i].OwnerID]; ok {
			views[i].Owner = &owner
		}
	}

	return views, nil
}

// GetOrderHistory returns the recorded status changes of an order, oldest first.
func (s *OrderService) GetOrderHistory(ctx context.Context, id string) ([]event.HistoryEntry, error) {
	if s.history == nil {
		return nil, errs.Internal("order history is not available", nil)
	}

	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.history.ListByOrder(ctx, id)
	if err != nil {
		return nil, errs.Internal("failed to load order history", err)
	}

	return entries, nil
}
