package ordersvc

import (
	"context"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/order"
)

// CountByStatus returns the number of orders in every status. It always reads fresh data.
func (s *OrderService) CountByStatus(ctx context.Context) (order.StatusCounts, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, errs.Internal("failed to count orders", err)
	}

	return counts, nil
}
