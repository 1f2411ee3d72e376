package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modqueue/internal/biz"
	pkgredis "modqueue/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	readyQueueKey   = "queue:moderation:ready"
	delayedQueueKey = "queue:moderation:delayed"

	// promoteBatch bounds how many delayed tasks one promotion moves.
	promoteBatch = 100
)

type taskQueue struct {
	cache pkgredis.Cache
	log   *log.Helper
}

// NewTaskQueue creates the durable ordered task queue: a ready list for FIFO
// dispatch and a sorted set holding delayed retries scored by ready time.
func NewTaskQueue(cache pkgredis.Cache, logger log.Logger) biz.TaskQueue {
	return &taskQueue{
		cache: cache,
		log:   log.NewHelper(logger),
	}
}

func (q *taskQueue) Enqueue(ctx context.Context, task *biz.ModerationTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	_, err = q.cache.RPush(ctx, readyQueueKey, string(data))
	return err
}

func (q *taskQueue) EnqueueAfter(ctx context.Context, task *biz.ModerationTask, delay time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	readyAt := float64(time.Now().Add(delay).Unix())
	return q.cache.ZAdd(ctx, delayedQueueKey, readyAt, string(data))
}

func (q *taskQueue) Dequeue(ctx context.Context) (*biz.ModerationTask, error) {
	item, err := q.cache.LPop(ctx, readyQueueKey)
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	task := new(biz.ModerationTask)
	if err := json.Unmarshal([]byte(item), task); err != nil {
		// The payload is already popped; surface the decode failure.
		return nil, fmt.Errorf("decode queued task: %w", err)
	}
	return task, nil
}

func (q *taskQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	// Pop and push happen server-side in one operation so a crash between
	// them cannot drop a due retry.
	due, err := q.cache.ZMoveByScore(ctx, delayedQueueKey, readyQueueKey, float64(now.Unix()), promoteBatch)
	if err != nil {
		return 0, err
	}
	return len(due), nil
}

func (q *taskQueue) Depth(ctx context.Context) (int64, error) {
	return q.cache.LLen(ctx, readyQueueKey)
}
