package data

import (
	"context"

	"modqueue/internal/biz"
	pkgredis "modqueue/internal/pkg/redis"
)

type storeHealth struct {
	data *Data
}

// NewStoreHealth exposes the database connection for health checks.
func NewStoreHealth(data *Data) biz.StorePinger {
	return &storeHealth{data: data}
}

func (h *storeHealth) Ping(ctx context.Context) error {
	return h.data.Ping(ctx)
}

type cacheHealth struct {
	cache pkgredis.Cache
}

// NewCacheHealth exposes the Redis connection for health checks.
func NewCacheHealth(cache pkgredis.Cache) biz.CachePinger {
	return &cacheHealth{cache: cache}
}

func (h *cacheHealth) Ping(ctx context.Context) error {
	return h.cache.Ping(ctx)
}
