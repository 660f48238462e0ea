package listorders

import (
	"context"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/pkg/http/middleware/auth"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
)

type service interface {
	ListOwnerOrders(ctx context.Context, callerID, ownerID string) ([]order.Order, error)
	ListOrders(ctx context.Context, filter order.QueryOrdersModel) ([]order.View, error)
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

type queryOrdersRequest struct {
	Status string `schema:"status,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
	Offset int    `schema:"offset,omitempty"`
}

func (q *queryOrdersRequest) ToModel() (order.QueryOrdersModel, error) {
	model := order.QueryOrdersModel{
		Limit:  q.Limit,
		Offset: q.Offset,
	}

	if q.Status != "" {
		status, err := order.ParseStatus(q.Status)
		if err != nil {
			return order.QueryOrdersModel{}, errs.Validation(errs.CodeInvalidStatus, err.Error(), "status")
		}
		model.Status = &status
	}

	return model, nil
}

// ListOrders returns every order, optionally filtered by status, with owner details.
//
//	@Summary	List all orders
//	@Tags		orders
//	@Produce	json
//	@Param		status	query		string	false	"status filter"
//	@Success	200		{array}		order.View
//	@Failure	400		{object}	response.ErrorBody
//	@Router		/orders/admin [get]
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidBody, err.Error()))

		return
	}

	model, err := query.ToModel()
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	orders, err := service.ListOrders(r.Context(), model)
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, orders)
}

// ListMyOrders returns the caller's orders, newest first.
//
//	@Summary	List the caller's orders
//	@Tags		orders
//	@Produce	json
//	@Success	200	{array}	order.Order
//	@Router		/orders/me [get]
func ListMyOrders(w http.ResponseWriter, r *http.Request, service service) {
	callerID, _ := auth.UserID(r.Context())
	listOwnerOrders(w, r, service, callerID, callerID)
}

// ListUserOrders returns the orders of the user in the path. Callers may only read their own.
//
//	@Summary	List a user's orders
//	@Tags		orders
//	@Produce	json
//	@Param		userId	path		string	true	"user id"
//	@Success	200		{array}		order.Order
//	@Failure	403		{object}	response.ErrorBody
//	@Router		/orders/user/{userId} [get]
func ListUserOrders(w http.ResponseWriter, r *http.Request, service service) {
	callerID, _ := auth.UserID(r.Context())
	listOwnerOrders(w, r, service, callerID, chi.URLParam(r, "userId"))
}

func listOwnerOrders(w http.ResponseWriter, r *http.Request, service service, callerID, ownerID string) {
	orders, err := service.ListOwnerOrders(r.Context(), callerID, ownerID)
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, orders)
}
