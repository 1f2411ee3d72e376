package data

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	pkgredis "modqueue/internal/pkg/redis"
)

// fakeCache is an in-memory stand-in for the Redis surface, good enough for
// repo tests: expirations are recorded but never enforced.
type fakeCache struct {
	mu      sync.Mutex
	strings map[string]string
	lists   map[string][]string
	zsets   map[string]map[string]float64
	ttls    map[string]time.Duration
	pingErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
		zsets:   make(map[string]map[string]float64),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeCache) SetString(_ context.Context, key, value string, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = value
	f.ttls[key] = exp
	return nil
}

func (f *fakeCache) GetString(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.strings[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return val, nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := f.strings[key]; ok {
			delete(f.strings, key)
			n++
		}
		if _, ok := f.lists[key]; ok {
			delete(f.lists, key)
			n++
		}
		if _, ok := f.zsets[key]; ok {
			delete(f.zsets, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) RPush(_ context.Context, key string, values ...string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[key] = append(f.lists[key], values...)
	return int64(len(f.lists[key])), nil
}

func (f *fakeCache) LPop(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	if len(list) == 0 {
		return "", pkgredis.Nil
	}
	head := list[0]
	f.lists[key] = list[1:]
	return head, nil
}

func (f *fakeCache) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.lists[key]
	if start == 0 && stop == -1 {
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	}
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if start >= int64(len(list)) {
		return nil, nil
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	out := make([]string, 0, stop-start+1)
	out = append(out, list[start:stop+1]...)
	return out, nil
}

func (f *fakeCache) LLen(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.lists[key])), nil
}

func (f *fakeCache) LRemByJSONField(_ context.Context, key, field, value string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make([]string, 0, len(f.lists[key]))
	var removed int64
	for _, item := range f.lists[key] {
		var entry map[string]any
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			if s, ok := entry[field].(string); ok && s == value {
				removed++
				continue
			}
		}
		kept = append(kept, item)
	}
	if removed > 0 {
		f.lists[key] = kept
	}
	return removed, nil
}

func (f *fakeCache) ZAdd(_ context.Context, key string, score float64, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	f.zsets[key][member] = score
	return nil
}

func (f *fakeCache) ZMoveByScore(_ context.Context, src, dst string, max float64, count int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := f.zsets[src]
	type pair struct {
		member string
		score  float64
	}
	var due []pair
	for member, score := range set {
		if score <= max {
			due = append(due, pair{member, score})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].score < due[j].score })
	if int64(len(due)) > count {
		due = due[:count]
	}
	out := make([]string, 0, len(due))
	for _, p := range due {
		delete(set, p.member)
		out = append(out, p.member)
	}
	f.lists[dst] = append(f.lists[dst], out...)
	return out, nil
}

func (f *fakeCache) Ping(context.Context) error {
	return f.pingErr
}
