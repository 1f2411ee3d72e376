package biz

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
)

// StorePinger checks reachability of the durable store.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks reachability of the cache/queue backend.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthReport summarizes component reachability.
type HealthReport struct {
	OK         bool              `json:"ok"`
	Components map[string]string `json:"components"`
	QueueDepth int64             `json:"queue_depth"`
}

// HealthUsecase checks the pipeline's external collaborators.
type HealthUsecase struct {
	store StorePinger
	cache CachePinger
	queue TaskQueue
	log   *log.Helper
}

// NewHealthUsecase creates a new HealthUsecase.
func NewHealthUsecase(store StorePinger, cache CachePinger, queue TaskQueue, logger log.Logger) *HealthUsecase {
	return &HealthUsecase{
		store: store,
		cache: cache,
		queue: queue,
		log:   log.NewHelper(logger),
	}
}

// Check pings the store and cache and reports the ready-queue depth.
func (uc *HealthUsecase) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		OK:         true,
		Components: map[string]string{"database": "connected", "redis": "connected"},
	}

	if err := uc.store.Ping(ctx); err != nil {
		uc.log.Errorf("database health check: %v", err)
		report.OK = false
		report.Components["database"] = err.Error()
	}

	if err := uc.cache.Ping(ctx); err != nil {
		uc.log.Errorf("redis health check: %v", err)
		report.OK = false
		report.Components["redis"] = err.Error()
	}

	if report.Components["redis"] == "connected" {
		depth, err := uc.queue.Depth(ctx)
		if err != nil {
			uc.log.Warnf("queue depth: %v", err)
		} else {
			report.QueueDepth = depth
		}
	}

	return report
}
