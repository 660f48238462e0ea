package postgresrepo_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/corray333/foodorder/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/corray333/foodorder/internal/dal/postgres/postgrestest"
	orderrepo "github.com/corray333/foodorder/internal/dal/repositories/order/postgres"
	"github.com/corray333/foodorder/internal/dal/uow"
	"github.com/corray333/foodorder/internal/service/models/order"
	"github.com/corray333/foodorder/internal/service/models/outbox"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type orderRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      iorderrepo.IOrderRepository
	container testcontainers.Container
}

func TestOrderRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	suite.Run(t, new(orderRepositorySuite))
}

func (suite *orderRepositorySuite) SetupSuite() {
	var err error

	suite.container, suite.pool, err = postgrestest.StartPostgres(suite.T().Context())
	suite.Require().NoError(err)

	suite.repo = orderrepo.NewPostgresOrderRepository(suite.pool)
}

func (suite *orderRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *orderRepositorySuite) SetupTest() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE orders, order_events_outbox")
	suite.Require().NoError(err)
}

func (suite *orderRepositorySuite) TestCreateAndFind() {
	t := suite.T()
	ctx := t.Context()

	want := fakeOrder(gofakeit.UUID())
	want.ExternalPaymentID = gofakeit.Numerify("##########")

	created, err := suite.repo.Create(ctx, want)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := suite.repo.FindByID(ctx, want.ID)
	require.NoError(t, err)
	assertOrder(t, want, byID)

	byPayment, err := suite.repo.FindByExternalPaymentID(ctx, want.ExternalPaymentID)
	require.NoError(t, err)
	assertOrder(t, want, byPayment)
}

func (suite *orderRepositorySuite) TestCreate_DuplicatePayment() {
	t := suite.T()
	ctx := t.Context()

	first := fakeOrder(gofakeit.UUID())
	first.ExternalPaymentID = "mp-1"
	_, err := suite.repo.Create(ctx, first)
	require.NoError(t, err)

	second := fakeOrder(first.OwnerID)
	second.ExternalPaymentID = "mp-1"
	_, err = suite.repo.Create(ctx, second)
	require.ErrorIs(t, err, iorderrepo.ErrDuplicatePayment)

	_, err = suite.repo.FindByID(ctx, second.ID)
	require.ErrorIs(t, err, iorderrepo.ErrNotFound)
}

func (suite *orderRepositorySuite) TestCreate_OrdersWithoutPaymentDoNotCollide() {
	t := suite.T()
	ctx := t.Context()

	for range 2 {
		_, err := suite.repo.Create(ctx, fakeOrder(gofakeit.UUID()))
		require.NoError(t, err)
	}
}

func (suite *orderRepositorySuite) TestFindByID_NotFound() {
	_, err := suite.repo.FindByID(suite.T().Context(), gofakeit.UUID())
	suite.ErrorIs(err, iorderrepo.ErrNotFound)
}

func (suite *orderRepositorySuite) TestQuery() {
	ctx := suite.T().Context()
	owner := gofakeit.UUID()
	other := gofakeit.UUID()

	older := fakeOrder(owner)
	newer := fakeOrder(owner)
	newer.Status = order.StatusPreparing
	foreign := fakeOrder(other)

	for _, o := range []order.Order{older, newer, foreign} {
		_, err := suite.repo.Create(ctx, o)
		suite.Require().NoError(err)
	}

	preparing := order.StatusPreparing

	tests := []struct {
		name    string
		filter  order.QueryOrdersModel
		wantIDs []string
	}{
		{
			name:    "by owner, newest first",
			filter:  order.QueryOrdersModel{OwnerID: owner},
			wantIDs: []string{newer.ID, older.ID},
		},
		{
			name:    "by status",
			filter:  order.QueryOrdersModel{Status: &preparing},
			wantIDs: []string{newer.ID},
		},
		{
			name:    "limit and offset",
			filter:  order.QueryOrdersModel{Limit: 1, Offset: 1},
			wantIDs: []string{newer.ID},
		},
		{
			name:    "unknown owner",
			filter:  order.QueryOrdersModel{OwnerID: gofakeit.UUID()},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			got, err := suite.repo.Query(t.Context(), tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, o := range got {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func (suite *orderRepositorySuite) TestUpdateStatus() {
	t := suite.T()
	ctx := t.Context()

	o := fakeOrder(gofakeit.UUID())
	_, err := suite.repo.Create(ctx, o)
	require.NoError(t, err)

	updated, err := suite.repo.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = suite.repo.UpdateStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled)
	require.ErrorIs(t, err, iorderrepo.ErrStatusChanged)

	stored, err := suite.repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, stored.Status)
}

func (suite *orderRepositorySuite) TestCountByStatus() {
	t := suite.T()
	ctx := t.Context()

	for _, status := range []order.Status{order.StatusPending, order.StatusPending, order.StatusCompleted} {
		o := fakeOrder(gofakeit.UUID())
		o.Status = status
		_, err := suite.repo.Create(ctx, o)
		require.NoError(t, err)
	}

	counts, err := suite.repo.CountByStatus(ctx)
	require.NoError(t, err)

	want := order.NewStatusCounts()
	want[order.StatusPending] = 2
	want[order.StatusCompleted] = 1
	assert.Equal(t, want, counts)
}

func (suite *orderRepositorySuite) TestUnitOfWork() {
	client := postgres.NewClientFromPool(suite.pool)

	write := func(t *testing.T, o order.Order, commit bool) {
		t.Helper()
		ctx := t.Context()

		work := uow.NewUnitOfWork(client)
		require.NoError(t, work.Begin(ctx))
		defer func() { require.NoError(t, work.Rollback(ctx)) }()

		_, err := work.OrderRepository().Create(ctx, o)
		require.NoError(t, err)
		require.NoError(t, work.OutboxRepository().Enqueue(ctx, outbox.Message{
			EventID:     gofakeit.UUID(),
			Exchange:    "orders.events",
			RoutingKey:  "order.created",
			Payload:     []byte(`{}`),
			MaxAttempts: 8,
		}))

		if commit {
			require.NoError(t, work.Commit(ctx))
		}
	}

	suite.Run("rollback discards order and event", func() {
		t := suite.T()
		o := fakeOrder(gofakeit.UUID())

		write(t, o, false)

		_, err := suite.repo.FindByID(t.Context(), o.ID)
		require.ErrorIs(t, err, iorderrepo.ErrNotFound)
		assert.Equal(t, 0, suite.outboxRows())
	})

	suite.Run("commit keeps both", func() {
		t := suite.T()
		o := fakeOrder(gofakeit.UUID())

		write(t, o, true)

		_, err := suite.repo.FindByID(t.Context(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, suite.outboxRows())
	})
}

func (suite *orderRepositorySuite) outboxRows() int {
	var n int
	suite.Require().NoError(suite.pool.QueryRow(suite.T().Context(), "SELECT COUNT(*) FROM order_events_outbox").Scan(&n))

	return n
}

func fakeOrder(ownerID string) order.Order {
	price := decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2)
	qty := gofakeit.IntRange(1, 5)
	subtotal := price.Mul(decimal.NewFromInt(int64(qty)))

	return order.Order{
		ID:      gofakeit.UUID(),
		OwnerID: ownerID,
		DeliveryAddress: order.Address{
			Street:   gofakeit.Street(),
			Number:   gofakeit.StreetNumber(),
			District: gofakeit.StreetName(),
			City:     gofakeit.City(),
			State:    gofakeit.StateAbr(),
			ZipCode:  gofakeit.Zip(),
		},
		PaymentMethod: order.PaymentPix,
		Status:        order.StatusPending,
		Items: []order.Item{{
			ProductID: gofakeit.UUID(),
			Title:     gofakeit.ProductName(),
			UnitPrice: price,
			Quantity:  qty,
			Subtotal:  subtotal,
		}},
		Amount: subtotal,
	}
}

func assertOrder(t *testing.T, expected, actual order.Order) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(order.Order{}, "CreatedAt", "UpdatedAt"),
		cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	}

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
