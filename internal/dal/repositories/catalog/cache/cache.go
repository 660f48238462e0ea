package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/corray333/foodorder/internal/dal/interfaces/icatalogrepo"
	"github.com/corray333/foodorder/internal/service/models/catalog"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "catalog:product:"

// CatalogCache is a read-through Redis cache in front of a catalog repository.
// Misses are never cached so a product added to the catalog is visible immediately.
type CatalogCache struct {
	next icatalogrepo.ICatalogRepository
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCatalogCache wraps next with a cache whose entries live for ttl.
func NewCatalogCache(next icatalogrepo.ICatalogRepository, rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

// GetProduct serves from Redis when possible. Redis failures fall through to the repository.
func (c *CatalogCache) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	key := keyPrefix + id

	cached, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p catalog.Product
		if err := json.Unmarshal(cached, &p); err == nil {
			return p, nil
		}
		slog.WarnContext(ctx, "Dropping undecodable catalog cache entry", "product_id", id)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "Catalog cache read failed", "product_id", id, "error", err)
	}

	p, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return catalog.Product{}, err
	}

	data, err := json.Marshal(p)
	if err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "Catalog cache write failed", "product_id", id, "error", err)
		}
	}

	return p, nil
}
