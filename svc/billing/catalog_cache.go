package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/subscriptions/pkg/logger"
	redisx "github.com/dmitrymomot/subscriptions/pkg/redis"
)

// CatalogKeyPrefix prefixes every cached plan list.
const CatalogKeyPrefix = "subscriptions:catalog:"

// DefaultCatalogTTL is used when NewCachedCatalog gets a non-positive ttl.
const DefaultCatalogTTL = 5 * time.Minute

// CachedCatalog stores plan lists in Redis. Concurrent misses for the same
// key share one upstream call. Redis failures fall through to the wrapped
// catalog.
type CachedCatalog struct {
	next   Catalog
	client redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedCatalog wraps next with a Redis cache.
func NewCachedCatalog(next Catalog, client redis.Cmdable, ttl time.Duration, log *slog.Logger) *CachedCatalog {
	if next == nil || client == nil {
		panic("billing: cached catalog requires a catalog and a redis client")
	}
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CachedCatalog{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: log.With(logger.Component("catalog_cache")),
	}
}

func (c *CachedCatalog) Plans(ctx context.Context, productID string) ([]Plan, error) {
	key := catalogKey(productID)

	var plans []Plan
	found, err := redisx.GetJSON(ctx, c.client, key, &plans)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache read failed", slog.String("key", key), logger.Error(err))
	}
	if found {
		return plans, nil
	}

	// The shared call outlives any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		plans, err := c.next.Plans(shared, productID)
		if err != nil {
			return nil, err
		}
		if err := redisx.SetJSON(shared, c.client, key, plans, c.ttl); err != nil {
			c.logger.WarnContext(shared, "catalog cache write failed", slog.String("key", key), logger.Error(err))
		}
		return plans, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Plan), nil
	}
}

// Invalidate drops every cached plan list.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	return redisx.DeleteByPrefix(ctx, c.client, CatalogKeyPrefix)
}

func catalogKey(productID string) string {
	if productID == "" {
		return CatalogKeyPrefix + "all"
	}
	return CatalogKeyPrefix + productID
}
