package data

import (
	"context"
	"fmt"
	"time"

	"modqueue/internal/conf"
	pkgredis "modqueue/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient creates the shared Redis client from configuration.
func NewRedisClient(c *conf.Data, logger log.Logger) (*redis.Client, func(), error) {
	helper := log.NewHelper(logger)

	// Build connection options from config
	opts := &redis.Options{
		Addr:    c.Redis.Addr,
		Network: c.Redis.Network,
	}
	opts.ReadTimeout = conf.ParseDuration(c.Redis.ReadTimeout, 0)
	opts.WriteTimeout = conf.ParseDuration(c.Redis.WriteTimeout, 0)

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		helper.Errorf("failed to connect to Redis at %s: %v", c.Redis.Addr, err)
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	helper.Infof("connected to Redis at %s", c.Redis.Addr)

	cleanup := func() {
		helper.Info("closing Redis connection")
		client.Close()
	}

	return client, cleanup, nil
}

// NewRedisCache wraps the client behind the Cache interface.
func NewRedisCache(client *redis.Client) pkgredis.Cache {
	return &RedisWrapper{client: client}
}

// RedisWrapper wraps redis.Client to implement pkgredis.Cache.
type RedisWrapper struct {
	client *redis.Client
}

// zmoveByScoreScript pops due members from a sorted set and appends them to
// the destination list in one round trip, so two promoters cannot hand out
// the same member and a crash cannot drop a popped member before the push.
var zmoveByScoreScript = pkgredis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
if #due > 0 then
    redis.call('ZREM', KEYS[1], unpack(due))
    redis.call('RPUSH', KEYS[2], unpack(due))
end
return due
`)

// lremByJSONFieldScript rewrites a list without the entries whose decoded
// payload carries the given field value. Server-side so entries pushed
// concurrently are never dropped by a read-modify-write race.
var lremByJSONFieldScript = pkgredis.NewScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
local kept = {}
local removed = 0
for _, item in ipairs(items) do
    local ok, entry = pcall(cjson.decode, item)
    if ok and type(entry) == 'table' and entry[ARGV[1]] == ARGV[2] then
        removed = removed + 1
    else
        table.insert(kept, item)
    end
end
if removed > 0 then
    redis.call('DEL', KEYS[1])
    if #kept > 0 then
        redis.call('RPUSH', KEYS[1], unpack(kept))
    end
end
return removed
`)

func (r *RedisWrapper) SetString(ctx context.Context, key, value string, exp time.Duration) error {
	return r.client.Set(ctx, key, value, exp).Err()
}

func (r *RedisWrapper) GetString(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisWrapper) Del(ctx context.Context, keys ...string) (int64, error) {
	return r.client.Del(ctx, keys...).Result()
}

func (r *RedisWrapper) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return r.client.RPush(ctx, key, args...).Result()
}

func (r *RedisWrapper) LPop(ctx context.Context, key string) (string, error) {
	return r.client.LPop(ctx, key).Result()
}

func (r *RedisWrapper) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.client.LRange(ctx, key, start, stop).Result()
}

func (r *RedisWrapper) LLen(ctx context.Context, key string) (int64, error) {
	return r.client.LLen(ctx, key).Result()
}

func (r *RedisWrapper) LRemByJSONField(ctx context.Context, key, field, value string) (int64, error) {
	return lremByJSONFieldScript.Run(ctx, r.client, []string{key}, field, value).Int64()
}

func (r *RedisWrapper) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

func (r *RedisWrapper) ZMoveByScore(ctx context.Context, src, dst string, max float64, count int64) ([]string, error) {
	res, err := zmoveByScoreScript.Run(ctx, r.client, []string{src, dst}, max, count).Result()
	if err != nil {
		return nil, err
	}
	raw, ok := res.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected script result type %T", res)
	}
	members := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected script member type %T", v)
		}
		members = append(members, s)
	}
	return members, nil
}

func (r *RedisWrapper) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
