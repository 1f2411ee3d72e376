package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"modqueue/internal/biz"
	"modqueue/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

const defaultSweepInterval = time.Hour

// Sweeper periodically drains the dead letter queue and resubmits each entry
// as a fresh task. A short-TTL distributed lock keeps at most one sweep
// running across all processes; a crashed holder is recovered by expiry.
type Sweeper struct {
	locker   biz.SweepLocker
	dlq      biz.DeadLetterRepo
	queue    biz.TaskQueue
	log      *log.Helper
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates the DLQ reprocessor.
func NewSweeper(c *conf.Worker, locker biz.SweepLocker, dlq biz.DeadLetterRepo, queue biz.TaskQueue, logger log.Logger) *Sweeper {
	interval := defaultSweepInterval
	if c != nil {
		interval = conf.ParseDuration(c.SweepInterval, defaultSweepInterval)
	}
	return &Sweeper{
		locker:   locker,
		dlq:      dlq,
		queue:    queue,
		log:      log.NewHelper(logger),
		interval: interval,
	}
}

// Sweep drains the dead letter queue and resubmits its entries, returning
// the number resubmitted. When another sweep holds the lock this is a no-op.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	lock, err := s.locker.Obtain(ctx, biz.SweepTTL)
	if err != nil {
		if errors.Is(err, biz.ErrLockNotObtained) {
			s.log.Info("dead letter sweep already running, skipping")
			return 0, nil
		}
		return 0, err
	}
	defer func() {
		// Release must run even when ctx was canceled mid-sweep.
		if rerr := lock.Release(context.WithoutCancel(ctx)); rerr != nil {
			s.log.Warnf("release sweep lock: %v", rerr)
		}
	}()

	// Drain everything first so resubmission never holds the queue open.
	entries, err := s.dlq.Drain(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	resubmitted := 0
	for _, entry := range entries {
		task, ok := entry.Task()
		if !ok {
			s.log.Warnf("unknown payload shape for dead letter %q, dropping", entry.ID)
			continue
		}
		if err := s.queue.Enqueue(ctx, task); err != nil {
			s.log.Errorf("resubmit dead letter %s: %v", entry.ID, err)
			continue
		}
		s.log.Infof("retrying failed %s moderation task %s", task.Kind, task.ID)
		resubmitted++
	}

	s.log.Infof("dead letter sweep resubmitted %d of %d entries", resubmitted, len(entries))
	return resubmitted, nil
}

// Start runs the sweep loop on a fixed schedule. It implements kratos
// transport.Server.
func (s *Sweeper) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					s.log.Errorf("dead letter sweep: %v", err)
				}
			}
		}
	}()

	s.log.Infof("dead letter reprocessor started: interval=%s", s.interval)
	return nil
}

// Stop terminates the sweep loop.
func (s *Sweeper) Stop(context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("dead letter reprocessor stopped")
	return nil
}
