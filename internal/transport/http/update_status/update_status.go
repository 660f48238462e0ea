package updatestatus

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/go-chi/chi/v5"
)

type service interface {
	UpdateOrderStatus(ctx context.Context, id, status string) (order.Order, error)
	CancelOrder(ctx context.Context, id string) (order.Order, error)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Message string      `json:"message"`
	Order   order.Order `json:"order"`
}

type cancelResponse struct {
	Message string `json:"message"`
}

func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidBody, "invalid request body"))

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, updateStatusResponse{
		Message: "order status updated",
		Order:   updated,
	})
}

func Cancel(w http.ResponseWriter, r *http.Request, service service) {
	if _, err := service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, cancelResponse{Message: "order cancelled"})
}
