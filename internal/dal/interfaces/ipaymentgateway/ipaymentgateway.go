package ipaymentgateway

import (
	"context"
	"errors"

	"github.com/corray333/foodorder/internal/service/models/payment"
)

var ErrPaymentNotFound = errors.New("payment not found")

// IPaymentGateway talks to the payment provider.
type IPaymentGateway interface {
	GetPayment(ctx context.Context, id string) (payment.Payment, error)
	CreatePreference(ctx context.Context, req payment.PreferenceRequest) (payment.Preference, error)
}
