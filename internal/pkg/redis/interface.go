package redis

import (
	"context"
	"time"
)

// Cache is the Redis surface the pipeline depends on: plain keys for the
// result cache and pending markers, lists for the dead letter queue and the
// ready queue, and a sorted set for delayed retries.
type Cache interface {
	SetString(ctx context.Context, key, value string, exp time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	Del(ctx context.Context, keys ...string) (int64, error)

	RPush(ctx context.Context, key string, values ...string) (int64, error)

	// LPop pops the head of the list. A missing or empty key yields Nil.
	LPop(ctx context.Context, key string) (string, error)

	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	LLen(ctx context.Context, key string) (int64, error)

	// LRemByJSONField atomically rewrites the list without the entries whose
	// JSON payload carries field = value, returning how many were removed.
	LRemByJSONField(ctx context.Context, key, field, value string) (int64, error)

	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZMoveByScore atomically pops up to count members of src with
	// score <= max, lowest scores first, and appends them to the dst list.
	ZMoveByScore(ctx context.Context, src, dst string, max float64, count int64) ([]string, error)

	Ping(ctx context.Context) error
}
