package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/service/models/message"
)

// MessageRepository stores order chat messages.
type MessageRepository struct {
	conn postgres.GenericConn
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(conn postgres.GenericConn) *MessageRepository {
	return &MessageRepository{
		conn: conn,
	}
}

// Insert stores msg and returns it with the database timestamp.
func (r *MessageRepository) Insert(ctx context.Context, msg message.Message) (message.Message, error) {
	query, args, err := sq.Insert("order_messages").
		Columns("id", "order_id", "user_id", "text", "sender").
		Values(msg.ID, msg.OrderID, msg.UserID, msg.Text, string(msg.Sender)).
		Suffix("RETURNING created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return message.Message{}, fmt.Errorf("failed to build message insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&msg.CreatedAt); err != nil {
		return message.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

// ListByOrder returns the messages of an order, oldest first.
func (r *MessageRepository) ListByOrder(ctx context.Context, orderID string) ([]message.Message, error) {
	query, args, err := sq.Select("id", "order_id", "user_id", "text", "sender", "created_at").
		From("order_messages").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]message.Message, 0)
	for rows.Next() {
		var (
			m      message.Message
			sender string
		)
		if err := rows.Scan(&m.ID, &m.OrderID, &m.UserID, &m.Text, &sender, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Sender = message.Sender(sender)
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}

// CountByOrder returns the number of messages of an order.
func (r *MessageRepository) CountByOrder(ctx context.Context, orderID string) (int64, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("order_messages").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build message count query: %w", err)
	}

	var n int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return n, nil
}
