package event

import (
	"time"

	"github.com/corray333/foodorder/internal/service/models/order"
)

// Type names a lifecycle event. It doubles as the AMQP routing key.
type Type string

const (
	TypeOrderCreated       Type = "order.created"
	TypeOrderStatusUpdated Type = "order.status_updated"
)

// OrderEvent is published for every order creation and status change.
type OrderEvent struct {
	EventID    string       `json:"eventId"`
	Type       Type         `json:"type"`
	OrderID    string       `json:"orderId"`
	OwnerID    string       `json:"ownerId"`
	Status     order.Status `json:"status"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// HistoryEntry is a stored status change of an order.
type HistoryEntry struct {
	ID         int64        `json:"id"`
	EventID    string       `json:"eventId"`
	OrderID    string       `json:"orderId"`
	Status     order.Status `json:"status"`
	EventType  Type         `json:"eventType"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// ToHistoryEntry converts the event into its audit record.
func (e OrderEvent) ToHistoryEntry() HistoryEntry {
	return HistoryEntry{
		EventID:    e.EventID,
		OrderID:    e.OrderID,
		Status:     e.Status,
		EventType:  e.Type,
		OccurredAt: e.OccurredAt,
	}
}
