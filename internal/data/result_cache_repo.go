package data

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"modqueue/internal/biz"
	pkgredis "modqueue/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

// Key layout shared with the read path: "{id}" holds the cached provider
// result, "status:{id}" the ephemeral pending marker.
const pendingKeyPrefix = "status:"

type resultCacheRepo struct {
	cache pkgredis.Cache
	log   *log.Helper
}

// NewResultCache creates the fast cache fronting the result store.
func NewResultCache(cache pkgredis.Cache, logger log.Logger) biz.ResultCache {
	return &resultCacheRepo{
		cache: cache,
		log:   log.NewHelper(logger),
	}
}

func (r *resultCacheRepo) SetResult(ctx context.Context, id string, result []byte, ttl time.Duration) error {
	return r.cache.SetString(ctx, id, string(result), ttl)
}

func (r *resultCacheRepo) GetResult(ctx context.Context, id string) ([]byte, error) {
	val, err := r.cache.GetString(ctx, id)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(val), nil
}

func (r *resultCacheRepo) SetPending(ctx context.Context, id string, status *biz.PendingStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.cache.SetString(ctx, pendingKeyPrefix+id, string(data), ttl)
}

func (r *resultCacheRepo) DeletePending(ctx context.Context, id string) error {
	_, err := r.cache.Del(ctx, pendingKeyPrefix+id)
	return err
}

func (r *resultCacheRepo) GetPending(ctx context.Context, id string) (*biz.PendingStatus, error) {
	val, err := r.cache.GetString(ctx, pendingKeyPrefix+id)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var status biz.PendingStatus
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		return nil, err
	}
	return &status, nil
}
