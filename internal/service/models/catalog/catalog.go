package catalog

import "github.com/shopspring/decimal"

// Product is the catalog view the order flow needs.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Active      bool            `json:"active"`
}
