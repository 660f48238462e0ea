package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"go.opentelemetry.io/otel"
)

const table = "order_events_outbox"

var columns = []string{
	"id",
	"event_id",
	"exchange",
	"routing_key",
	"payload",
	"content_type",
	"attempts",
	"max_attempts",
	"last_error",
	"created_at",
	"next_attempt_at",
}

// OutboxRepository keeps order events in PostgreSQL until the relay publishes them.
type OutboxRepository struct {
	conn postgres.GenericConn
}

// NewOutboxRepository creates a new outbox repository on a pool or a transaction.
func NewOutboxRepository(conn postgres.GenericConn) *OutboxRepository {
	return &OutboxRepository{
		conn: conn,
	}
}

func (r *OutboxRepository) Enqueue(ctx context.Context, msg outbox.Message) error {
	contentType := msg.ContentType
	if contentType == "" {
		contentType = outbox.ContentTypeJSON
	}

	query, args, err := sq.Insert(table).
		Columns(columns[1:]...).
		Values(
			msg.EventID,
			msg.Exchange,
			msg.RoutingKey,
			msg.Payload,
			contentType,
			msg.Attempts,
			msg.MaxAttempts,
			msg.LastError,
			msg.CreatedAt,
			msg.NextAttemptAt,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", msg.EventID, err)
	}

	return nil
}

// FetchDue returns due messages, oldest schedule first.
func (r *OutboxRepository) FetchDue(ctx context.Context, limit int) ([]outbox.Message, error) {
	ctx, span := otel.Tracer("repository").Start(ctx, "OutboxRepository.FetchDue")
	defer span.End()

	query, args, err := sq.Select(columns...).
		From(table).
		Where(sq.LtOrEq{"next_attempt_at": time.Now()}).
		Where(sq.Expr("attempts < max_attempts")).
		OrderBy("next_attempt_at ASC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	messages := make([]outbox.Message, 0, limit)
	for rows.Next() {
		var msg outbox.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.Exchange,
			&msg.RoutingKey,
			&msg.Payload,
			&msg.ContentType,
			&msg.Attempts,
			&msg.MaxAttempts,
			&msg.LastError,
			&msg.CreatedAt,
			&msg.NextAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox: %w", err)
	}

	return messages, nil
}

// MarkPublished drops a delivered message.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	query, args, err := sq.Delete(table).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}

	return nil
}

func (r *OutboxRepository) MarkFailed(
	ctx context.Context,
	id int64,
	attempts int,
	lastError string,
	nextAttemptAt time.Time,
) error {
	query, args, err := sq.Update(table).
		Set("attempts", attempts).
		Set("last_error", lastError).
		Set("next_attempt_at", nextAttemptAt).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record outbox failure: %w", err)
	}

	return nil
}
