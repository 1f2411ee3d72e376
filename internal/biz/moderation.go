package biz

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"modqueue/internal/pkg/pagination"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// ContentKind selects the moderation job type.
type ContentKind string

const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
)

// RecordStatus is the lifecycle state of a durable moderation record.
type RecordStatus string

const (
	StatusPending   RecordStatus = "pending"
	StatusCompleted RecordStatus = "completed"
	StatusFailed    RecordStatus = "failed"
)

// Cache expirations and the sweep lock expiry.
const (
	ResultTTL  = time.Hour
	PendingTTL = 10 * time.Minute
	SweepTTL   = 60 * time.Second
)

// ModerationTask is the unit of work carried on the queue. Fields other than
// Attempt are fixed at submission time.
type ModerationTask struct {
	ID      string      `json:"id"`
	Kind    ContentKind `json:"kind"`
	Payload string      `json:"payload"`
	Attempt int         `json:"attempt"`
}

// ModerationRecord is the durable outcome, keyed by id with upsert semantics.
type ModerationRecord struct {
	ID        string
	Payload   string
	Kind      ContentKind
	Status    RecordStatus
	Result    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PendingStatus is the ephemeral in-flight marker written at submission.
type PendingStatus struct {
	Status  string      `json:"status"`
	Payload string      `json:"payload"`
	Kind    ContentKind `json:"kind"`
}

// DLQEntry is one failed item on the dead letter queue. The populated payload
// field (text vs image_url) selects the job type on reprocessing; duplicate
// entries for one id may coexist.
type DLQEntry struct {
	ID       string `json:"id"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error"`
}

// NewDLQEntry builds a dead letter entry from an exhausted task.
func NewDLQEntry(task *ModerationTask, errMsg string) *DLQEntry {
	e := &DLQEntry{ID: task.ID, Error: errMsg}
	if task.Kind == KindImage {
		e.ImageURL = task.Payload
	} else {
		e.Text = task.Payload
	}
	return e
}

// Task converts the entry back into a fresh task, selecting the kind by which
// payload field is present. ok is false when neither is set.
func (e *DLQEntry) Task() (*ModerationTask, bool) {
	switch {
	case e.Text != "":
		return &ModerationTask{ID: e.ID, Kind: KindText, Payload: e.Text}, true
	case e.ImageURL != "":
		return &ModerationTask{ID: e.ID, Kind: KindImage, Payload: e.ImageURL}, true
	default:
		return nil, false
	}
}

var (
	// ErrNotFound is returned when neither cache nor store knows the id.
	ErrNotFound = errors.New("moderation record not found")
	// ErrLockNotObtained signals that another sweep holds the retry lock.
	ErrLockNotObtained = errors.New("sweep lock not obtained")
)

// RecordRepo is the durable result store. Get returns (nil, nil) when absent.
type RecordRepo interface {
	Upsert(ctx context.Context, record *ModerationRecord) error
	Get(ctx context.Context, id string) (*ModerationRecord, error)
	List(ctx context.Context, offset, limit int) ([]*ModerationRecord, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ResultCache fronts the record store with short-TTL reads. Getters return
// (nil, nil) on a miss; writes are best-effort from the caller's view.
type ResultCache interface {
	SetResult(ctx context.Context, id string, result []byte, ttl time.Duration) error
	GetResult(ctx context.Context, id string) ([]byte, error)
	SetPending(ctx context.Context, id string, status *PendingStatus, ttl time.Duration) error
	GetPending(ctx context.Context, id string) (*PendingStatus, error)
	// DeletePending clears the in-flight marker once the outcome is stored.
	DeletePending(ctx context.Context, id string) error
}

// DeadLetterRepo is the ordered durable list of failed items.
type DeadLetterRepo interface {
	Push(ctx context.Context, entry *DLQEntry) error
	List(ctx context.Context) ([]*DLQEntry, error)
	// Drain pops entries until the queue is empty and returns them in order.
	Drain(ctx context.Context) ([]*DLQEntry, error)
	Clear(ctx context.Context) (int64, error)
	Remove(ctx context.Context, id string) (bool, error)
}

// TaskQueue is the durable ordered job queue with delayed re-queueing.
// Dequeue returns (nil, nil) when no task is ready.
type TaskQueue interface {
	Enqueue(ctx context.Context, task *ModerationTask) error
	EnqueueAfter(ctx context.Context, task *ModerationTask, delay time.Duration) error
	Dequeue(ctx context.Context) (*ModerationTask, error)
	// PromoteDue moves delayed tasks whose delay elapsed onto the ready queue.
	PromoteDue(ctx context.Context, now time.Time) (int, error)
	Depth(ctx context.Context) (int64, error)
}

// SweepLock is a held mutual-exclusion lock.
type SweepLock interface {
	Release(ctx context.Context) error
}

// SweepLocker hands out the cross-process lock guarding DLQ sweeps. Obtain
// returns ErrLockNotObtained when another holder is active.
type SweepLocker interface {
	Obtain(ctx context.Context, ttl time.Duration) (SweepLock, error)
}

// StatusView is the read-path answer for one id.
type StatusView struct {
	ID        string
	Status    string
	Message   string
	Payload   string
	Result    json.RawMessage
	CreatedAt time.Time
}

// ModerationUsecase handles submission, the status read path, and the
// administrative operations over records and the dead letter queue.
type ModerationUsecase struct {
	records RecordRepo
	cache   ResultCache
	dlq     DeadLetterRepo
	queue   TaskQueue
	log     *log.Helper
}

// NewModerationUsecase creates a new ModerationUsecase.
func NewModerationUsecase(
	records RecordRepo,
	cache ResultCache,
	dlq DeadLetterRepo,
	queue TaskQueue,
	logger log.Logger,
) *ModerationUsecase {
	return &ModerationUsecase{
		records: records,
		cache:   cache,
		dlq:     dlq,
		queue:   queue,
		log:     log.NewHelper(logger),
	}
}

// SubmitText enqueues a text moderation job and returns its generated id.
func (uc *ModerationUsecase) SubmitText(ctx context.Context, text string) (string, error) {
	return uc.submit(ctx, KindText, text)
}

// SubmitImage enqueues an image moderation job and returns its generated id.
func (uc *ModerationUsecase) SubmitImage(ctx context.Context, imageURL string) (string, error) {
	return uc.submit(ctx, KindImage, imageURL)
}

func (uc *ModerationUsecase) submit(ctx context.Context, kind ContentKind, payload string) (string, error) {
	task := &ModerationTask{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: payload,
	}

	if err := uc.queue.Enqueue(ctx, task); err != nil {
		return "", err
	}

	// The pending marker is an accelerator only; losing it just means the
	// read path falls through to cache and store.
	pending := &PendingStatus{Status: "Processing", Payload: payload, Kind: kind}
	if err := uc.cache.SetPending(ctx, task.ID, pending, PendingTTL); err != nil {
		uc.log.Warnf("store pending status for %s: %v", task.ID, err)
	}

	uc.log.Infof("%s moderation task queued: id=%s", kind, task.ID)
	return task.ID, nil
}

// GetStatus resolves an id: pending marker first, then the cached result,
// then the durable store. ErrNotFound when all three miss.
func (uc *ModerationUsecase) GetStatus(ctx context.Context, id string) (*StatusView, error) {
	pending, err := uc.cache.GetPending(ctx, id)
	if err != nil {
		uc.log.Warnf("read pending status for %s: %v", id, err)
	}
	if pending != nil {
		return &StatusView{
			ID:      id,
			Status:  pending.Status,
			Message: "moderation task is currently processing",
			Payload: pending.Payload,
		}, nil
	}

	cached, err := uc.cache.GetResult(ctx, id)
	if err != nil {
		uc.log.Warnf("read cached result for %s: %v", id, err)
	}
	if cached != nil {
		return &StatusView{
			ID:        id,
			Status:    string(StatusCompleted),
			Message:   "moderation result found in cache",
			Result:    cached,
			CreatedAt: time.Now(),
		}, nil
	}

	record, err := uc.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return &StatusView{
		ID:        record.ID,
		Status:    string(record.Status),
		Message:   "moderation result found in database",
		Payload:   record.Payload,
		Result:    record.Result,
		CreatedAt: record.CreatedAt,
	}, nil
}

// ListRecords returns a page of durable records with the total count.
func (uc *ModerationUsecase) ListRecords(ctx context.Context, req *pagination.OffsetRequest) (*pagination.OffsetResponse[*ModerationRecord], error) {
	total, err := uc.records.Count(ctx)
	if err != nil {
		return nil, err
	}
	records, err := uc.records.List(ctx, req.GetOffset(), req.GetLimit())
	if err != nil {
		return nil, err
	}
	return pagination.NewOffsetResponse(req, records, total), nil
}

// CountRecords returns the number of durable records.
func (uc *ModerationUsecase) CountRecords(ctx context.Context) (int64, error) {
	return uc.records.Count(ctx)
}

// DeleteRecord removes one durable record by id.
func (uc *ModerationUsecase) DeleteRecord(ctx context.Context, id string) error {
	deleted, err := uc.records.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// DeleteAllRecords clears the durable store and returns the removed count.
func (uc *ModerationUsecase) DeleteAllRecords(ctx context.Context) (int64, error) {
	return uc.records.DeleteAll(ctx)
}

// ListFailed returns the dead letter queue contents without mutating it.
func (uc *ModerationUsecase) ListFailed(ctx context.Context) ([]*DLQEntry, error) {
	return uc.dlq.List(ctx)
}

// ClearFailed removes every dead letter entry and returns the removed count.
func (uc *ModerationUsecase) ClearFailed(ctx context.Context) (int64, error) {
	return uc.dlq.Clear(ctx)
}

// ClearFailedByID removes all dead letter entries for one id.
func (uc *ModerationUsecase) ClearFailedByID(ctx context.Context, id string) error {
	removed, err := uc.dlq.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
