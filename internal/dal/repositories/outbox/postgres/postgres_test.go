package postgres_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/corray333/foodorder/internal/dal/postgres/postgrestest"
	auditrepo "github.com/corray333/foodorder/internal/dal/repositories/audit/postgres"
	outboxrepo "github.com/corray333/foodorder/internal/dal/repositories/outbox/postgres"
	"github.com/corray333/foodorder/internal/service/models/event"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

// eventStoreSuite covers the tables the event pipeline writes: the outbox and the status history.
type eventStoreSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	outbox    *outboxrepo.OutboxRepository
	audit     *auditrepo.AuditRepository
	container testcontainers.Container
}

func TestEventStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	suite.Run(t, new(eventStoreSuite))
}

func (suite *eventStoreSuite) SetupSuite() {
	var err error

	suite.container, suite.pool, err = postgrestest.StartPostgres(suite.T().Context())
	suite.Require().NoError(err)

	suite.outbox = outboxrepo.NewOutboxRepository(suite.pool)
	suite.audit = auditrepo.NewAuditRepository(suite.pool)
}

func (suite *eventStoreSuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *eventStoreSuite) SetupTest() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE order_events_outbox, order_status_history")
	suite.Require().NoError(err)
}

func (suite *eventStoreSuite) TestOutbox_PendingRetryDelete() {
	t := suite.T()
	ctx := t.Context()
	now := time.Now()

	due := fakeMessage(now.Add(-time.Minute))
	later := fakeMessage(now.Add(time.Hour))
	exhausted := fakeMessage(now.Add(-time.Minute))
	exhausted.Attempts = exhausted.MaxAttempts

	for _, msg := range []outbox.Message{due, later, exhausted} {
		require.NoError(t, suite.outbox.Enqueue(ctx, msg))
	}

	pending, err := suite.outbox.FetchDue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.EventID, pending[0].EventID)
	assert.Equal(t, due.Payload, pending[0].Payload)

	id := pending[0].ID
	require.NoError(t, suite.outbox.MarkFailed(ctx, id, 1, "channel closed", now.Add(time.Hour)))

	pending, err = suite.outbox.FetchDue(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, suite.outbox.MarkFailed(ctx, id, 1, "channel closed", now.Add(-time.Second)))
	pending, err = suite.outbox.FetchDue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "channel closed", pending[0].LastError)

	require.NoError(t, suite.outbox.MarkPublished(ctx, id))
	pending, err = suite.outbox.FetchDue(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func (suite *eventStoreSuite) TestHistory_SkipsRedelivery() {
	t := suite.T()
	ctx := t.Context()
	orderID := gofakeit.UUID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	created := event.HistoryEntry{
		EventID:    gofakeit.UUID(),
		OrderID:    orderID,
		Status:     order.StatusPending,
		EventType:  event.TypeOrderCreated,
		OccurredAt: base,
	}
	updated := event.HistoryEntry{
		EventID:    gofakeit.UUID(),
		OrderID:    orderID,
		Status:     order.StatusPreparing,
		EventType:  event.TypeOrderStatusUpdated,
		OccurredAt: base.Add(time.Second),
	}

	stored, err := suite.audit.SaveHistory(ctx, updated)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = suite.audit.SaveHistory(ctx, created)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = suite.audit.SaveHistory(ctx, created)
	require.NoError(t, err)
	assert.False(t, stored)

	entries, err := suite.audit.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, created.EventID, entries[0].EventID)
	assert.Equal(t, order.StatusPreparing, entries[1].Status)
	assert.Equal(t, event.TypeOrderStatusUpdated, entries[1].EventType)
}

func fakeMessage(nextAttemptAt time.Time) outbox.Message {
	return outbox.Message{
		EventID:       gofakeit.UUID(),
		Exchange:      "orders.events",
		RoutingKey:    string(event.TypeOrderCreated),
		Payload:       []byte(`{"orderId":"` + gofakeit.UUID() + `"}`),
		MaxAttempts:   8,
		CreatedAt:     time.Now(),
		NextAttemptAt: nextAttemptAt,
	}
}
