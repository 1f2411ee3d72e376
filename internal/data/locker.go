package data

import (
	"context"
	"errors"
	"time"

	"modqueue/internal/biz"

	"github.com/bsm/redislock"
	"github.com/go-kratos/kratos/v2/log"
	redis "github.com/redis/go-redis/v9"
)

const retryLockKey = "dlq:retry_lock"

type sweepLocker struct {
	locker *redislock.Client
	log    *log.Helper
}

// NewSweepLocker creates the cross-process lock guarding DLQ sweeps. The
// TTL is the only recovery mechanism for a crashed holder.
func NewSweepLocker(client *redis.Client, logger log.Logger) biz.SweepLocker {
	return &sweepLocker{
		locker: redislock.New(client),
		log:    log.NewHelper(logger),
	}
}

func (l *sweepLocker) Obtain(ctx context.Context, ttl time.Duration) (biz.SweepLock, error) {
	lock, err := l.locker.Obtain(ctx, retryLockKey, ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, biz.ErrLockNotObtained
		}
		return nil, err
	}
	return &sweepLock{lock: lock}, nil
}

type sweepLock struct {
	lock *redislock.Lock
}

func (l *sweepLock) Release(ctx context.Context) error {
	return l.lock.Release(ctx)
}
