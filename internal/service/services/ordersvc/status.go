package ordersvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/realtime"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"go.opentelemetry.io/otel"
)

var errNoop = errors.New("status unchanged")

// UpdateOrderStatus moves an order to a new status. Setting the current status again
// succeeds without side effects.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	target, err := order.ParseStatus(status)
	if err != nil {
		return order.Order{}, errs.Validation(errs.CodeInvalidStatus, err.Error(), "status")
	}

	return s.transition(ctx, id, target, func(current order.Status) error {
		if current == target {
			return errNoop
		}
		if s.strict && !current.CanTransition(target) {
			return errs.InvalidTransition(current.String(), target.String())
		}

		return nil
	})
}

// CancelOrder cancels an order from any non-terminal status. Cancelling a cancelled
// order is a no-op.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	return s.transition(ctx, id, order.StatusCancelled, func(current order.Status) error {
		if current == order.StatusCancelled {
			return errNoop
		}
		if s.strict && current.Terminal() {
			return errs.InvalidTransition(current.String(), order.StatusCancelled.String())
		}

		return nil
	})
}

// transition applies a compare-and-set status update, re-reading and re-checking the
// order when a concurrent writer got there first.
func (s *OrderService) transition(
	ctx context.Context,
	id string,
	target order.Status,
	check func(current order.Status) error,
) (order.Order, error) {
	for attempt := 1; attempt <= s.updateRetries; attempt++ {
		current, err := s.orderRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, iorderrepo.ErrNotFound) {
				return order.Order{}, errs.NotFound(errs.CodeOrderNotFound, "order not found")
			}

			return order.Order{}, errs.Internal("failed to load order", err)
		}

		if err := check(current.Status); err != nil {
			if errors.Is(err, errNoop) {
				return current, nil
			}

			return order.Order{}, err
		}

		updated, err := s.applyStatus(ctx, current, target)
		if errors.Is(err, iorderrepo.ErrStatusChanged) {
			slog.InfoContext(ctx, "Order status changed concurrently, retrying",
				"order_id", id,
				"attempt", attempt)

			continue
		}
		if err != nil {
			return order.Order{}, err
		}

		slog.InfoContext(ctx, "Order status updated",
			"order_id", id,
			"from", current.Status,
			"to", updated.Status)

		s.broadcastCounts(ctx)
		s.broadcast(ctx, realtime.EventOrderStatusUpdated, updated)

		return updated, nil
	}

	return order.Order{}, errs.Conflict(errs.CodeConcurrentUpdate, "order is being updated concurrently", iorderrepo.ErrStatusChanged)
}

func (s *OrderService) applyStatus(ctx context.Context, current order.Order, target order.Status) (order.Order, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, errs.Internal("failed to start transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to roll back status update", "error", err)
		}
	}()

	updated, err := work.OrderRepository().UpdateStatus(ctx, current.ID, current.Status, target)
	if err != nil {
		if errors.Is(err, iorderrepo.ErrStatusChanged) {
			return order.Order{}, err
		}

		return order.Order{}, errs.Internal("failed to update order status", err)
	}

	if err := s.enqueueEvent(ctx, work, event.TypeOrderStatusUpdated, updated); err != nil {
		return order.Order{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, errs.Internal("failed to commit status update", err)
	}

	return updated, nil
}
