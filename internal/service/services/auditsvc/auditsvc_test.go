package auditsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAudit struct {
	byEvent map[string]event.HistoryEntry
	err     error
}

func (m *memAudit) SaveHistory(_ context.Context, entry event.HistoryEntry) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.byEvent[entry.EventID]; ok {
		return false, nil
	}
	m.byEvent[entry.EventID] = entry

	return true, nil
}

func (m *memAudit) ListByOrder(context.Context, string) ([]event.HistoryEntry, error) {
	return nil, nil
}

func TestProcessEvent_StoresOnce(t *testing.T) {
	repo := &memAudit{byEvent: map[string]event.HistoryEntry{}}
	svc := MustNewAuditService(WithAuditRepository(repo))

	evt := event.OrderEvent{
		EventID:    "e1",
		Type:       event.TypeOrderStatusUpdated,
		OrderID:    "o1",
		Status:     order.StatusPreparing,
		OccurredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, svc.ProcessEvent(context.Background(), evt))
	require.NoError(t, svc.ProcessEvent(context.Background(), evt))

	require.Len(t, repo.byEvent, 1)
	got := repo.byEvent["e1"]
	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, order.StatusPreparing, got.Status)
	assert.Equal(t, event.TypeOrderStatusUpdated, got.EventType)
}

func TestProcessEvent_StorageFailure(t *testing.T) {
	cause := errors.New("db down")
	svc := MustNewAuditService(WithAuditRepository(&memAudit{err: cause}))

	err := svc.ProcessEvent(context.Background(), event.OrderEvent{EventID: "e1"})
	assert.ErrorIs(t, err, cause)
}

func TestMustNewAuditService_RequiresRepository(t *testing.T) {
	assert.Panics(t, func() { MustNewAuditService() })
}
