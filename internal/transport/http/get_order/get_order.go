package getorder

import (
	"context"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetOrder(ctx context.Context, id string) (order.Order, error)
	GetOrderItems(ctx context.Context, id string) ([]order.Item, error)
	GetOrderHistory(ctx context.Context, id string) ([]event.HistoryEntry, error)
}

// GetOrder writes the order, or an empty array when it does not exist. Web clients rely on
// the empty array instead of a 404.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	o, err := service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if errs.IsKind(err, errs.KindNotFound) {
		response.WriteJSON(w, r, http.StatusOK, []order.Order{})

		return
	}
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, o)
}

func GetOrderItems(w http.ResponseWriter, r *http.Request, service service) {
	items, err := service.GetOrderItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, items)
}

func GetOrderHistory(w http.ResponseWriter, r *http.Request, service service) {
	entries, err := service.GetOrderHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, entries)
}
