package imessagerepo

import (
	"context"

	"github.com/corray333/foodorder/internal/service/models/message"
)

// IMessageRepository stores order chat messages.
type IMessageRepository interface {
	Insert(ctx context.Context, msg message.Message) (message.Message, error)
	ListByOrder(ctx context.Context, orderID string) ([]message.Message, error)
	CountByOrder(ctx context.Context, orderID string) (int64, error)
}
