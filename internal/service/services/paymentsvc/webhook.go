package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/ipaymentgateway"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"go.opentelemetry.io/otel"
)

// HandleNotification turns an approved payment into an order. Notifications that can never
// produce an order are acknowledged with a nil error; a non-nil error asks the provider to retry.
func (s *PaymentService) HandleNotification(ctx context.Context, n payment.Notification) error {
	ctx, span := otel.Tracer("service").Start(ctx, "PaymentService.HandleNotification")
	defer span.End()

	if n.Type != payment.TopicPayment || n.DataID == "" {
		slog.DebugContext(ctx, "Ignoring payment notification", "type", n.Type, "data_id", n.DataID)
		return nil
	}

	p, err := s.fetchPayment(ctx, n.DataID)
	if errors.Is(err, ipaymentgateway.ErrPaymentNotFound) {
		slog.WarnContext(ctx, "Notified payment does not exist", "payment_id", n.DataID)
		return nil
	}
	if err != nil {
		return errs.ExternalService("failed to fetch payment", err)
	}

	if p.Status != payment.StatusApproved {
		slog.InfoContext(ctx, "Payment not approved, skipping", "payment_id", p.ID, "status", p.Status)
		return nil
	}

	_, err = s.lookup.FindByExternalPaymentID(ctx, p.ID)
	switch {
	case err == nil:
		slog.InfoContext(ctx, "Payment already materialized", "payment_id", p.ID)
		return nil
	case !errors.Is(err, iorderrepo.ErrNotFound):
		return errs.Internal("failed to look up order by payment", err)
	}

	model, err := orderFromPayment(p)
	if err != nil {
		slog.ErrorContext(ctx, "Malformed payment metadata", "payment_id", p.ID, "error", err)
		return nil
	}

	created, err := s.orders.CreateOrder(ctx, model)
	if err != nil {
		switch errs.KindOf(err) {
		case errs.KindConflict:
			slog.InfoContext(ctx, "Concurrent delivery already created the order", "payment_id", p.ID)
			return nil
		case errs.KindValidation, errs.KindNotFound:
			slog.ErrorContext(ctx, "Payment cannot be turned into an order", "payment_id", p.ID, "error", err)
			return nil
		}

		return err
	}

	slog.InfoContext(ctx, "Order created from payment", "payment_id", p.ID, "order_id", created.ID)

	return nil
}

func (s *PaymentService) fetchPayment(ctx context.Context, id string) (payment.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.gateway.GetPayment(ctx, id)
}

func orderFromPayment(p payment.Payment) (order.CreateOrderModel, error) {
	if p.Metadata.UserID == "" {
		return order.CreateOrderModel{}, errors.New("user_id is missing")
	}

	var items []order.ItemRequest
	if err := json.Unmarshal([]byte(p.Metadata.Items), &items); err != nil {
		return order.CreateOrderModel{}, fmt.Errorf("failed to decode items: %w", err)
	}

	var addr order.Address
	if p.Metadata.Address != "" {
		if err := json.Unmarshal([]byte(p.Metadata.Address), &addr); err != nil {
			return order.CreateOrderModel{}, fmt.Errorf("failed to decode address: %w", err)
		}
	}

	return order.CreateOrderModel{
		OwnerID:           p.Metadata.UserID,
		Address:           addr,
		PaymentMethod:     p.PaymentMethod(),
		Items:             items,
		ExternalPaymentID: p.ID,
	}, nil
}
