package worker

import (
	"context"
	"sync"
	"time"

	"modqueue/internal/biz"
	"modqueue/internal/conf"
	"modqueue/internal/pkg/provider"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	defaultConcurrency  = 5
	defaultMaxAttempts  = 3
	defaultPollInterval = 250 * time.Millisecond

	// deadLetterBuffer bounds the dispatcher queue so a burst of exhausted
	// tasks cannot pile up unbounded in memory.
	deadLetterBuffer = 64

	// deadLetterPushTimeout bounds each push once it leaves the job's own
	// failure path.
	deadLetterPushTimeout = 5 * time.Second
)

// Outcome of one executed attempt.
const (
	outcomeCompleted      = "completed"
	outcomeRetryScheduled = "retry_scheduled"
	outcomeFailed         = "failed"
)

type attemptResult struct {
	Status string
	Reason string
}

// Pool executes moderation tasks from the queue with a fixed number of
// workers. Failed attempts are re-queued with exponential backoff; exhausted
// tasks are handed to a dispatcher goroutine that appends them to the dead
// letter queue without blocking the worker.
type Pool struct {
	queue biz.TaskQueue
	pipe  *biz.PipelineUsecase
	dlq   biz.DeadLetterRepo
	log   *log.Helper

	concurrency  int
	maxAttempts  int
	pollInterval time.Duration

	dlqCh      chan *biz.DLQEntry
	cancel     context.CancelFunc
	workerWg   sync.WaitGroup
	dispatchWg sync.WaitGroup
}

// NewPool creates the executor pool from config.
func NewPool(c *conf.Worker, queue biz.TaskQueue, pipe *biz.PipelineUsecase, dlq biz.DeadLetterRepo, logger log.Logger) *Pool {
	concurrency := defaultConcurrency
	maxAttempts := defaultMaxAttempts
	if c != nil {
		if c.Concurrency > 0 {
			concurrency = c.Concurrency
		}
		if c.MaxAttempts > 0 {
			maxAttempts = c.MaxAttempts
		}
	}
	pollInterval := defaultPollInterval
	if c != nil {
		pollInterval = conf.ParseDuration(c.PollInterval, defaultPollInterval)
	}

	return &Pool{
		queue:        queue,
		pipe:         pipe,
		dlq:          dlq,
		log:          log.NewHelper(logger),
		concurrency:  concurrency,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		dlqCh:        make(chan *biz.DLQEntry, deadLetterBuffer),
	}
}

// Start launches the workers, the delayed-task promoter, and the dead letter
// dispatcher. It implements kratos transport.Server.
func (p *Pool) Start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.dispatchWg.Add(1)
	go p.dispatchDeadLetters()

	p.workerWg.Add(1)
	go p.promote(ctx)

	for i := 0; i < p.concurrency; i++ {
		p.workerWg.Add(1)
		go p.run(ctx, i)
	}

	p.log.Infof("executor pool started: workers=%d maxAttempts=%d", p.concurrency, p.maxAttempts)
	return nil
}

// Stop drains the pool: workers finish their current task, then the
// dispatcher flushes any pending dead letter pushes.
func (p *Pool) Stop(context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.workerWg.Wait()
	close(p.dlqCh)
	p.dispatchWg.Wait()
	p.log.Info("executor pool stopped")
	return nil
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.workerWg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debugf("worker %d shutting down", id)
			return
		case <-ticker.C:
			p.drainReady(ctx, id)
		}
	}
}

// drainReady processes ready tasks until the queue is empty or shutdown.
func (p *Pool) drainReady(ctx context.Context, id int) {
	for ctx.Err() == nil {
		task, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.log.Errorf("worker %d: dequeue: %v", id, err)
			return
		}
		if task == nil {
			return
		}
		p.handle(ctx, task)
	}
}

func (p *Pool) handle(ctx context.Context, task *biz.ModerationTask) attemptResult {
	if _, err := p.pipe.Process(ctx, task); err != nil {
		return p.handleFailure(ctx, task, err)
	}
	p.log.Infof("task %s completed (attempt %d)", task.ID, task.Attempt)
	return attemptResult{Status: outcomeCompleted}
}

func (p *Pool) handleFailure(ctx context.Context, task *biz.ModerationTask, err error) attemptResult {
	// Quota failures are an account-level problem: no retries, no dead
	// letter entry, no durable record. They terminate quietly.
	if provider.IsQuotaExceeded(err) {
		p.log.Errorf("task %s: provider quota exceeded, skipping retries", task.ID)
		return attemptResult{Status: outcomeFailed, Reason: "Quota Exceeded"}
	}

	if task.Attempt < p.maxAttempts {
		retry := *task
		retry.Attempt++
		delay := backoffDelay(task.Attempt)
		if qerr := p.queue.EnqueueAfter(ctx, &retry, delay); qerr != nil {
			// The retry cannot be scheduled, so the task would be lost;
			// dead-letter it instead.
			p.log.Errorf("task %s: schedule retry: %v", task.ID, qerr)
			p.deadLetter(ctx, task, err)
			return attemptResult{Status: outcomeFailed, Reason: err.Error()}
		}
		p.log.Warnf("task %s failed (attempt %d): %v; retrying in %s", task.ID, task.Attempt, err, delay)
		return attemptResult{Status: outcomeRetryScheduled}
	}

	p.log.Warnf("task %s moved to dead letter queue after %d attempts: %v", task.ID, task.Attempt, err)
	p.deadLetter(ctx, task, err)
	return attemptResult{Status: outcomeFailed, Reason: err.Error()}
}

// backoffDelay returns the retry delay for a zero-indexed attempt count:
// 5^attempt seconds, so 1s, 5s, 25s for the three scheduled retries.
func backoffDelay(attempt int) time.Duration {
	delay := time.Second
	for i := 0; i < attempt; i++ {
		delay *= 5
	}
	return delay
}

func (p *Pool) deadLetter(ctx context.Context, task *biz.ModerationTask, err error) {
	entry := biz.NewDLQEntry(task, err.Error())
	select {
	case p.dlqCh <- entry:
	case <-ctx.Done():
		// Shutting down: push inline so the entry is not lost.
		p.pushDeadLetter(entry)
	}
}

func (p *Pool) dispatchDeadLetters() {
	defer p.dispatchWg.Done()
	for entry := range p.dlqCh {
		p.pushDeadLetter(entry)
	}
}

func (p *Pool) pushDeadLetter(entry *biz.DLQEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), deadLetterPushTimeout)
	defer cancel()
	if err := p.dlq.Push(ctx, entry); err != nil {
		p.log.Errorf("push %s to dead letter queue: %v", entry.ID, err)
	}
}

func (p *Pool) promote(ctx context.Context) {
	defer p.workerWg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.queue.PromoteDue(ctx, time.Now())
			if err != nil {
				p.log.Errorf("promote delayed tasks: %v", err)
				continue
			}
			if n > 0 {
				p.log.Debugf("promoted %d delayed tasks", n)
			}
		}
	}
}
