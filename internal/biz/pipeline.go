package biz

import (
	"context"
	"fmt"
	"time"

	"modqueue/internal/pkg/provider"

	"github.com/go-kratos/kratos/v2/log"
)

// PipelineUsecase runs one moderation job end-to-end: classify through the
// provider chain, persist the durable record, then warm the result cache.
type PipelineUsecase struct {
	provider provider.Client
	records  RecordRepo
	cache    ResultCache
	log      *log.Helper
}

// NewPipelineUsecase creates a new PipelineUsecase.
func NewPipelineUsecase(client provider.Client, records RecordRepo, cache ResultCache, logger log.Logger) *PipelineUsecase {
	return &PipelineUsecase{
		provider: client,
		records:  records,
		cache:    cache,
		log:      log.NewHelper(logger),
	}
}

// Process classifies the task payload and persists the outcome. The durable
// store is authoritative: its failure fails the job with a wrapped error the
// caller can distinguish from a provider failure. The cache write is
// best-effort and never fails the job.
func (uc *PipelineUsecase) Process(ctx context.Context, task *ModerationTask) (*provider.Result, error) {
	req := provider.Request{}
	switch task.Kind {
	case KindText:
		req.Input = task.Payload
	case KindImage:
		req.ImageURL = task.Payload
	default:
		return nil, fmt.Errorf("unknown content kind %q", task.Kind)
	}

	result, err := uc.provider.Moderate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &ModerationRecord{
		ID:        task.ID,
		Payload:   task.Payload,
		Kind:      task.Kind,
		Status:    StatusCompleted,
		Result:    result.Raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.records.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("store moderation result: %w", err)
	}

	if err := uc.cache.SetResult(ctx, task.ID, result.Raw, ResultTTL); err != nil {
		uc.log.Warnf("cache moderation result for %s: %v", task.ID, err)
	}

	// The marker would otherwise shadow the stored result until its TTL.
	if err := uc.cache.DeletePending(ctx, task.ID); err != nil {
		uc.log.Warnf("clear pending marker for %s: %v", task.ID, err)
	}

	uc.log.Infof("moderation result stored for %s", task.ID)
	return result, nil
}
