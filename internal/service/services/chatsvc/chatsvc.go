package chatsvc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/corray333/foodorder/internal/dal/interfaces/imessagerepo"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/realtime"
	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/internal/service/models/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

const maxMessageLength = 2000

type notifier interface {
	Broadcast(ctx context.Context, event string, payload any) error
	BroadcastToRoom(ctx context.Context, room, event string, payload any) error
}

// Notice is broadcast to the other side of the conversation.
type Notice struct {
	OrderID string          `json:"orderId"`
	Message message.Message `json:"message"`
}

// ChatService handles the per-order conversation between a customer and the restaurant.
type ChatService struct {
	messages imessagerepo.IMessageRepository
	orders   iorderrepo.IOrderRepository
	notifier notifier
	newID    func() string
}

// NewChatService creates a new ChatService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewChatService(messages imessagerepo.IMessageRepository, orders iorderrepo.IOrderRepository, n notifier) *ChatService {
	return &ChatService{
		messages: messages,
		orders:   orders,
		notifier: n,
		newID:    uuid.NewString,
	}
}

// PostMessage stores a message and pushes it to the order room and the other party.
func (s *ChatService) PostMessage(ctx context.Context, model message.CreateMessageModel) (message.Message, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "ChatService.PostMessage")
	defer span.End()

	text := strings.TrimSpace(model.Text)
	switch {
	case text == "":
		return message.Message{}, errs.Validation(errs.CodeInvalidMessage, "message text is empty", "text")
	case utf8.RuneCountInString(text) > maxMessageLength:
		return message.Message{}, errs.Validation(errs.CodeInvalidMessage, "message text is too long", "text")
	case !model.Sender.Valid():
		return message.Message{}, errs.Validation(errs.CodeInvalidMessage, "invalid sender", "sender")
	}

	if err := s.ensureOrder(ctx, model.OrderID); err != nil {
		return message.Message{}, err
	}

	msg, err := s.messages.Insert(ctx, message.Message{
		ID:      s.newID(),
		OrderID: model.OrderID,
		UserID:  model.UserID,
		Text:    text,
		Sender:  model.Sender,
	})
	if err != nil {
		return message.Message{}, errs.Internal("failed to store message", err)
	}

	if err := s.notifier.BroadcastToRoom(ctx, msg.OrderID, realtime.EventNewMessage, msg); err != nil {
		slog.WarnContext(ctx, "Failed to push message to order room", "order_id", msg.OrderID, "error", err)
	}

	notice := realtime.EventNotifyAdmin
	if msg.Sender == message.SenderAdmin {
		notice = realtime.EventNotifyUser
	}
	if err := s.notifier.Broadcast(ctx, notice, Notice{OrderID: msg.OrderID, Message: msg}); err != nil {
		slog.WarnContext(ctx, "Failed to broadcast message notice", "event", notice, "error", err)
	}

	return msg, nil
}

// ListMessages returns the conversation of an order, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, orderID string) ([]message.Message, error) {
	msgs, err := s.messages.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, errs.Internal("failed to list messages", err)
	}

	return msgs, nil
}

// CountMessages returns the number of messages of an order.
func (s *ChatService) CountMessages(ctx context.Context, orderID string) (int64, error) {
	n, err := s.messages.CountByOrder(ctx, orderID)
	if err != nil {
		return 0, errs.Internal("failed to count messages", err)
	}

	return n, nil
}

func (s *ChatService) ensureOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return errs.Validation(errs.CodeInvalidMessage, "order id is required", "orderId")
	}

	_, err := s.orders.FindByID(ctx, orderID)
	switch {
	case errors.Is(err, iorderrepo.ErrNotFound):
		return errs.NotFound(errs.CodeOrderNotFound, "order not found")
	case err != nil:
		return errs.Internal("failed to load order", err)
	}

	return nil
}
