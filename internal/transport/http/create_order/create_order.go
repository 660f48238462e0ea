package createorder

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/pkg/http/middleware/auth"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.View, error)
}

var validate = validator.New()

// itemInCreateOrderRequest represents a cart line. Prices are never taken from the client.
type itemInCreateOrderRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"qtd"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Address order.Address              `json:"address"`
	Payment string                     `json:"payment"`
	Items   []itemInCreateOrderRequest `json:"items"   validate:"required,min=1"`
}

// Validate only checks that the cart is not empty. Address, payment and item shape are checked
// by the service in that order.
func (r *createOrderRequest) Validate() error {
	return validate.Struct(r)
}

type createOrderResponse struct {
	Order order.View `json:"order"`
}

// toModel converts createOrderRequest to order.CreateOrderModel.
func (r *createOrderRequest) toModel(ownerID string) order.CreateOrderModel {
	items := make([]order.ItemRequest, len(r.Items))
	for i, it := range r.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	return order.CreateOrderModel{
		OwnerID:       ownerID,
		Address:       r.Address,
		PaymentMethod: order.PaymentMethod(r.Payment),
		Items:         items,
	}
}

// CreateOrder handles the create order request.
//
//	@Summary	Create an order from the cart
//	@Tags		orders
//	@Accept		json
//	@Produce	json
//	@Success	201	{object}	createOrderResponse
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/orders [post]
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	ownerID, _ := auth.UserID(r.Context())

	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidBody, "invalid request body"))

		return
	}

	if err := req.Validate(); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidItem, "order must contain at least one item", "items"))

		return
	}

	created, err := service.CreateOrder(r.Context(), req.toModel(ownerID))
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusCreated, createOrderResponse{Order: created})
}
