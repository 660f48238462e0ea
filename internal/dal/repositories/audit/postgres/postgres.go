package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
)

// AuditRepository implements the order status history repository for PostgreSQL.
type AuditRepository struct {
	conn postgres.GenericConn
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(conn postgres.GenericConn) *AuditRepository {
	return &AuditRepository{
		conn: conn,
	}
}

// SaveHistory stores a history entry. Redelivered events hit the event_id constraint
// and are skipped; the returned flag is false for them.
func (r *AuditRepository) SaveHistory(ctx context.Context, entry event.HistoryEntry) (bool, error) {
	query, args, err := sq.Insert("order_status_history").
		Columns(
			"event_id",
			"order_id",
			"status",
			"event_type",
			"occurred_at",
		).
		Values(
			entry.EventID,
			entry.OrderID,
			entry.Status.String(),
			string(entry.EventType),
			entry.OccurredAt,
		).
		Suffix("ON CONFLICT (event_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build history insert query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert history entry: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListByOrder returns the history of an order, oldest first.
func (r *AuditRepository) ListByOrder(ctx context.Context, orderID string) ([]event.HistoryEntry, error) {
	query, args, err := sq.Select(
		"id",
		"event_id",
		"order_id",
		"status",
		"event_type",
		"occurred_at",
	).
		From("order_status_history").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("occurred_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]event.HistoryEntry, 0)
	for rows.Next() {
		var (
			entry     event.HistoryEntry
			status    string
			eventType string
		)
		if err := rows.Scan(&entry.ID, &entry.EventID, &entry.OrderID, &status, &eventType, &entry.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entry.Status = order.Status(status)
		entry.EventType = event.Type(eventType)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}
