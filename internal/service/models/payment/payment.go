package payment

import (
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// StatusApproved is the only provider status that materializes an order.
const StatusApproved = "approved"

// TopicPayment is the only notification topic acted upon.
const TopicPayment = "payment"

// Notification is a webhook call from the payment provider.
type Notification struct {
	Type   string
	DataID string
}

// Payment is the provider's view of a payment, reduced to what order creation needs.
type Payment struct {
	ID            string
	Status        string
	PaymentTypeID string
	Metadata      Metadata
}

// Metadata is attached to the preference at checkout and echoed back on the payment.
type Metadata struct {
	UserID  string `json:"user_id"`
	Items   string `json:"items"`
	Address string `json:"address"`
}

// PaymentMethod maps the provider payment type onto an order payment method.
func (p Payment) PaymentMethod() order.PaymentMethod {
	switch p.PaymentTypeID {
	case "bank_transfer", "pix":
		return order.PaymentPix
	default:
		return order.PaymentCard
	}
}

// PreferenceItem is a priced checkout line.
type PreferenceItem struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
	PictureURL string          `json:"picture_url,omitempty"`
}

// PreferenceRequest is the checkout preference sent to the provider.
type PreferenceRequest struct {
	Items           []PreferenceItem
	BackURLs        BackURLs
	NotificationURL string
	Metadata        Metadata
}

// BackURLs are the provider redirect targets after checkout.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// Preference is the created checkout preference.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePreferenceModel is the client input for checkout.
type CreatePreferenceModel struct {
	OwnerID string
	Items   []order.ItemRequest
	Address order.Address
}
