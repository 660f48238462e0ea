package iauditrepo

import (
	"context"

	"github.com/corray333/foodorder/internal/service/models/event"
)

// IAuditRepository stores and reads the order status history.
type IAuditRepository interface {
	// SaveHistory stores the entry once per event id and reports whether it was new.
	SaveHistory(ctx context.Context, entry event.HistoryEntry) (bool, error)
	ListByOrder(ctx context.Context, orderID string) ([]event.HistoryEntry, error)
}
