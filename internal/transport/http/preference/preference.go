package preference

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/payment"
	"github.com/corray333/foodorder/pkg/http/middleware/auth"
	"github.com/corray333/foodorder/pkg/http/response"
)

type service interface {
	CreatePreference(ctx context.Context, model payment.CreatePreferenceModel) (payment.Preference, error)
}

type createPreferenceRequest struct {
	Items   []order.ItemRequest `json:"items"`
	Address order.Address       `json:"address"`
}

// Create opens a checkout for the caller's cart.
func Create(w http.ResponseWriter, r *http.Request, service service) {
	ownerID, _ := auth.UserID(r.Context())

	req := createPreferenceRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, r, errs.Validation(errs.CodeInvalidBody, "invalid request body"))

		return
	}

	pref, err := service.CreatePreference(r.Context(), payment.CreatePreferenceModel{
		OwnerID: ownerID,
		Items:   req.Items,
		Address: req.Address,
	})
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, pref)
}
