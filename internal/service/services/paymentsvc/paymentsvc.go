package paymentsvc

import (
	"context"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/ipaymentgateway"
	"github.com/corray333/foodorder/internal/service/models/currency"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"github.com/spf13/viper"
	xcurrency "golang.org/x/text/currency"
)

// orderCreator runs the full order creation flow.
type orderCreator interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.View, error)
}

// PaymentService materializes orders from payment confirmations and creates checkout preferences.
type PaymentService struct {
	gateway  ipaymentgateway.IPaymentGateway
	orders   orderCreator
	lookup   iorderrepo.IOrderRepository
	catalog  icatalogrepo.ICatalogRepository
	currency xcurrency.Unit
	timeout  time.Duration

	backURLs        payment.BackURLs
	notificationURL string
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService. It panics when a required dependency is missing.
func MustNewPaymentService(opts ...option) *PaymentService {
	unit, err := currency.ParseCurrency(viper.GetString("payment.currency"))
	if err != nil {
		panic(err)
	}

	s := &PaymentService{
		currency: unit,
		timeout:  viper.GetDuration("payment.timeout"),
		backURLs: payment.BackURLs{
			Success: viper.GetString("payment.back_urls.success"),
			Failure: viper.GetString("payment.back_urls.failure"),
			Pending: viper.GetString("payment.back_urls.pending"),
		},
		notificationURL: viper.GetString("payment.notification_url"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}

	switch {
	case s.gateway == nil:
		panic("paymentsvc: payment gateway is not configured")
	case s.orders == nil:
		panic("paymentsvc: order creator is not configured")
	case s.lookup == nil:
		panic("paymentsvc: order repository is not configured")
	case s.catalog == nil:
		panic("paymentsvc: catalog is not configured")
	}

	return s
}

// WithGateway sets the payment provider client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gateway ipaymentgateway.IPaymentGateway) option {
	return func(s *PaymentService) {
		s.gateway = gateway
	}
}

// WithOrders sets the order creation flow and the repository used to detect processed payments.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrders(orders orderCreator, lookup iorderrepo.IOrderRepository) option {
	return func(s *PaymentService) {
		s.orders = orders
		s.lookup = lookup
	}
}

// WithCatalog sets the product lookup used to price preferences.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(catalog icatalogrepo.ICatalogRepository) option {
	return func(s *PaymentService) {
		s.catalog = catalog
	}
}

// WithTimeout bounds each provider call.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTimeout(d time.Duration) option {
	return func(s *PaymentService) {
		s.timeout = d
	}
}

// WithURLs sets the checkout redirect targets and the webhook address.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithURLs(back payment.BackURLs, notificationURL string) option {
	return func(s *PaymentService) {
		s.backURLs = back
		s.notificationURL = notificationURL
	}
}
