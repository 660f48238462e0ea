package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/dal/repositories/catalog/cache"
	"github.com/corray333/foodorder/internal/service/models/catalog"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func newCache(t *testing.T, next icatalogrepo.ICatalogRepository) (*cache.CatalogCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return cache.NewCatalogCache(next, rdb, 30*time.Second), mr
}

func TestCatalogCache_ReadThrough(t *testing.T) {
	product := catalog.Product{ID: "p1", Title: "X-Burger", Price: decimal.RequireFromString("12.50"), Active: true}

	next := &mockCatalog{}
	next.On("GetProduct", mock.Anything, "p1").Return(product, nil).Once()

	c, mr := newCache(t, next)
	ctx := context.Background()

	got, err := c.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "X-Burger", got.Title)
	assert.True(t, mr.Exists("catalog:product:p1"))

	got, err = c.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, product.Price.Equal(got.Price))

	next.AssertExpectations(t)
}

func TestCatalogCache_EntryExpires(t *testing.T) {
	product := catalog.Product{ID: "p1", Title: "X-Burger", Price: decimal.RequireFromString("12.50"), Active: true}

	next := &mockCatalog{}
	next.On("GetProduct", mock.Anything, "p1").Return(product, nil).Twice()

	c, mr := newCache(t, next)
	ctx := context.Background()

	_, err := c.GetProduct(ctx, "p1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)

	_, err = c.GetProduct(ctx, "p1")
	require.NoError(t, err)

	next.AssertExpectations(t)
}

func TestCatalogCache_MissIsNotCached(t *testing.T) {
	next := &mockCatalog{}
	next.On("GetProduct", mock.Anything, "ghost").Return(catalog.Product{}, icatalogrepo.ErrProductNotFound).Twice()

	c, mr := newCache(t, next)
	ctx := context.Background()

	for range 2 {
		_, err := c.GetProduct(ctx, "ghost")
		require.ErrorIs(t, err, icatalogrepo.ErrProductNotFound)
	}
	assert.False(t, mr.Exists("catalog:product:ghost"))

	next.AssertExpectations(t)
}

func TestCatalogCache_RedisDownFallsThrough(t *testing.T) {
	product := catalog.Product{ID: "p1", Title: "X-Burger", Price: decimal.RequireFromString("12.50"), Active: true}

	next := &mockCatalog{}
	next.On("GetProduct", mock.Anything, "p1").Return(product, nil)

	c, mr := newCache(t, next)
	mr.Close()

	got, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}
