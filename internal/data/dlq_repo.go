package data

import (
	"context"
	"encoding/json"
	"errors"

	"modqueue/internal/biz"
	pkgredis "modqueue/internal/pkg/redis"

	"github.com/go-kratos/kratos/v2/log"
)

const deadLetterKey = "dlq:moderation_failed"

type deadLetterRepo struct {
	cache pkgredis.Cache
	log   *log.Helper
}

// NewDeadLetterRepo creates the dead letter queue repo backed by a Redis list.
func NewDeadLetterRepo(cache pkgredis.Cache, logger log.Logger) biz.DeadLetterRepo {
	return &deadLetterRepo{
		cache: cache,
		log:   log.NewHelper(logger),
	}
}

func (r *deadLetterRepo) Push(ctx context.Context, entry *biz.DLQEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := r.cache.RPush(ctx, deadLetterKey, string(data)); err != nil {
		return err
	}
	r.log.Warnf("task %s added to dead letter queue: %s", entry.ID, entry.Error)
	return nil
}

func (r *deadLetterRepo) List(ctx context.Context) ([]*biz.DLQEntry, error) {
	raw, err := r.cache.LRange(ctx, deadLetterKey, 0, -1)
	if err != nil {
		return nil, err
	}
	entries := make([]*biz.DLQEntry, 0, len(raw))
	for _, item := range raw {
		entry := new(biz.DLQEntry)
		if err := json.Unmarshal([]byte(item), entry); err != nil {
			r.log.Warnf("skipping undecodable dead letter entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Drain pops until the list is empty. Each pop is an independent round trip,
// so the queue connection is never held across the caller's reprocessing.
func (r *deadLetterRepo) Drain(ctx context.Context) ([]*biz.DLQEntry, error) {
	var entries []*biz.DLQEntry
	for {
		item, err := r.cache.LPop(ctx, deadLetterKey)
		if err != nil {
			if errors.Is(err, pkgredis.Nil) {
				return entries, nil
			}
			return entries, err
		}
		entry := new(biz.DLQEntry)
		if err := json.Unmarshal([]byte(item), entry); err != nil {
			r.log.Warnf("dropping undecodable dead letter entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
}

func (r *deadLetterRepo) Clear(ctx context.Context) (int64, error) {
	count, err := r.cache.LLen(ctx, deadLetterKey)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if _, err := r.cache.Del(ctx, deadLetterKey); err != nil {
		return 0, err
	}
	return count, nil
}

// Remove deletes every entry for id. The rewrite runs server-side, so an
// entry pushed concurrently is kept; non-matching entries keep their
// original encoding and order.
func (r *deadLetterRepo) Remove(ctx context.Context, id string) (bool, error) {
	removed, err := r.cache.LRemByJSONField(ctx, deadLetterKey, "id", id)
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}
