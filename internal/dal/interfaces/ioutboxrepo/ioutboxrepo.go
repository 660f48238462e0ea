package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/foodorder/internal/service/models/outbox"
)

// IOutboxRepository stores order events until they reach the broker.
type IOutboxRepository interface {
	Enqueue(ctx context.Context, msg outbox.Message) error
	// FetchDue returns up to limit messages whose next attempt is due and that still have attempts left.
	FetchDue(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastError string, nextAttemptAt time.Time) error
}
