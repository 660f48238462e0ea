package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	OwnerID string  `json:"ownerId,omitempty"`
	Status  *Status `json:"status,omitempty"`
	Limit   int     `json:"limit,omitempty"`
	Offset  int     `json:"offset,omitempty"`
}

// CreateOrderModel is the input of order creation. Items carry product references only;
// prices come from the catalog.
type CreateOrderModel struct {
	OwnerID           string
	Address           Address
	PaymentMethod     PaymentMethod
	Items             []ItemRequest
	ExternalPaymentID string
}

// ItemRequest is a cart line as submitted by the client.
type ItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qtd"`
}
