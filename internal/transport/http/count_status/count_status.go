package countstatus

import (
	"context"
	"net/http"

	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/pkg/http/response"
)

type service interface {
	CountByStatus(ctx context.Context) (order.StatusCounts, error)
}

// CountStatus writes the number of orders per status. Every status is present.
func CountStatus(w http.ResponseWriter, r *http.Request, service service) {
	counts, err := service.CountByStatus(r.Context())
	if err != nil {
		response.WriteError(w, r, err)

		return
	}

	response.WriteJSON(w, r, http.StatusOK, counts)
}
