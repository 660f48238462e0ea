package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the way an order is paid.
type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "cartao"
	PaymentCash PaymentMethod = "dinheiro"
)

// Valid reports whether p is one of the accepted payment methods.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentPix, PaymentCard, PaymentCash:
		return true
	default:
		return false
	}
}

func (p PaymentMethod) String() string {
	return string(p)
}

// Address is a delivery address snapshot copied into the order.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
	Complement string `json:"complement,omitempty"`
}

// MissingFields returns the names of required fields that are blank, in declaration order.
func (a Address) MissingFields() []string {
	required := []struct {
		name  string
		value string
	}{
		{"street", a.Street},
		{"number", a.Number},
		{"district", a.District},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	return missing
}

// Item is a priced line of an order, frozen at creation time.
type Item struct {
	ProductID   string          `json:"productId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"qtd"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Image       string          `json:"image,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"userId"`
	DeliveryAddress   Address         `json:"address"`
	PaymentMethod     PaymentMethod   `json:"payment"`
	Status            Status          `json:"status"`
	Items             []Item          `json:"items"`
	Amount            decimal.Decimal `json:"amount"`
	ExternalPaymentID string          `json:"externalPaymentId,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Total sums item subtotals.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}

	return total
}

// Owner holds the display fields of the user who placed an order.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Image     string `json:"image,omitempty"`
}

// View is an order enriched with its owner's display fields.
type View struct {
	Order
	Owner *Owner `json:"user,omitempty"`
}
