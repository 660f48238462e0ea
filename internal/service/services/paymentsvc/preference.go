package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"go.opentelemetry.io/otel"
)

// CreatePreference prices the cart from the catalog and opens a checkout at the provider.
// The cart and address travel in the preference metadata and come back with the payment.
func (s *PaymentService) CreatePreference(ctx context.Context, model payment.CreatePreferenceModel) (payment.Preference, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "PaymentService.CreatePreference")
	defer span.End()

	if len(model.Items) == 0 {
		return payment.Preference{}, errs.Validation(errs.CodeInvalidItem, "order has no items", "items")
	}
	if missing := model.Address.MissingFields(); len(missing) > 0 {
		return payment.Preference{}, errs.MissingAddressFields(missing)
	}

	items := make([]payment.PreferenceItem, 0, len(model.Items))
	for i, it := range model.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			return payment.Preference{}, errs.Validation(
				errs.CodeInvalidItem,
				fmt.Sprintf("invalid item at position %d", i),
				fmt.Sprintf("items[%d]", i),
			)
		}

		p, err := s.catalog.GetProduct(ctx, it.ProductID)
		switch {
		case errors.Is(err, icatalogrepo.ErrProductNotFound), err == nil && !p.Active:
			return payment.Preference{}, errs.NotFound(errs.CodeProductNotFound, fmt.Sprintf("product %s not found", it.ProductID))
		case err != nil:
			return payment.Preference{}, errs.ExternalService("catalog lookup failed", err)
		}

		items = append(items, payment.PreferenceItem{
			ID:         p.ID,
			Title:      p.Title,
			Quantity:   it.Quantity,
			UnitPrice:  p.Price,
			CurrencyID: s.currency.String(),
			PictureURL: p.Image,
		})
	}

	cart, err := json.Marshal(model.Items)
	if err != nil {
		return payment.Preference{}, errs.Internal("failed to encode cart", err)
	}
	addr, err := json.Marshal(model.Address)
	if err != nil {
		return payment.Preference{}, errs.Internal("failed to encode address", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	pref, err := s.gateway.CreatePreference(ctx, payment.PreferenceRequest{
		Items:           items,
		BackURLs:        s.backURLs,
		NotificationURL: s.notificationURL,
		Metadata: payment.Metadata{
			UserID:  model.OwnerID,
			Items:   string(cart),
			Address: string(addr),
		},
	})
	if err != nil {
		return payment.Preference{}, errs.ExternalService("failed to create payment preference", err)
	}

	slog.InfoContext(ctx, "Payment preference created", "preference_id", pref.ID, "owner_id", model.OwnerID)

	return pref, nil
}
