package ordersvc

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/corray333/foodorder/internal/realtime"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// enqueueEvent writes the lifecycle event into the outbox of the current transaction.
func (s *OrderService) enqueueEvent(ctx context.Context, work unitOfWork, typ event.Type, o order.Order) error {
	now := s.now()
	evt := event.OrderEvent{
		EventID:    s.newID(),
		Type:       typ,
		OrderID:    o.ID,
		OwnerID:    o.OwnerID,
		Status:     o.Status,
		OccurredAt: now,
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return errs.Internal("failed to encode order event", err)
	}

	msg := outbox.Message{
		EventID:       evt.EventID,
		Exchange:      s.exchange,
		RoutingKey:    string(typ),
		Payload:       payload,
		ContentType:   outbox.ContentTypeJSON,
		MaxAttempts:   s.outboxMaxRetries,
		CreatedAt:     now,
		NextAttemptAt: now,
	}

	if err := work.OutboxRepository().Enqueue(ctx, msg); err != nil {
		return errs.Internal("failed to enqueue order event", err)
	}

	return nil
}

// broadcast sends a realtime event. Failures are logged and never reach the caller.
func (s *OrderService) broadcast(ctx context.Context, evt string, payload any) {
	if err := s.notifier.Broadcast(ctx, evt, payload); err != nil {
		slog.WarnContext(ctx, "Failed to broadcast realtime event", "event", evt, "error", err)
	}
}

func (s *OrderService) broadcastCounts(ctx context.Context) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to recompute status counts", "error", err)

		return
	}

	s.broadcast(ctx, realtime.EventOrdersCountUpdated, counts)
}

// enrich attaches owner display fields. A failed lookup leaves the owner empty.
func (s *OrderService) enrich(ctx context.Context, o order.Order) order.View {
	view := order.View{Order: o}
	if s.users == nil {
		return view
	}

	owner, err := s.users.GetOwner(ctx, o.OwnerID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load order owner", "order_id", o.ID, "owner_id", o.OwnerID, "error", err)

		return view
	}
	view.Owner = &owner

	return view
}
