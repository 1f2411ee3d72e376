package service

import (
	"encoding/json"
	"strconv"
	"time"

	"modqueue/internal/biz"
	"modqueue/internal/pkg/pagination"
	"modqueue/internal/worker"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// AdminService exposes record administration, DLQ inspection, the on-demand
// sweep, and monitoring endpoints.
type AdminService struct {
	uc      *biz.ModerationUsecase
	health  *biz.HealthUsecase
	sweeper *worker.Sweeper
	log     *log.Helper
}

// NewAdminService creates a new AdminService.
func NewAdminService(uc *biz.ModerationUsecase, health *biz.HealthUsecase, sweeper *worker.Sweeper, logger log.Logger) *AdminService {
	return &AdminService{
		uc:      uc,
		health:  health,
		sweeper: sweeper,
		log:     log.NewHelper(logger),
	}
}

// RecordReply is one durable record in listing responses.
type RecordReply struct {
	ID        string          `json:"id"`
	Payload   string          `json:"payload"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListRecordsReply is the body of GET /api/v1/moderation/all.
type ListRecordsReply struct {
	TotalCount int64          `json:"total_count"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	Tasks      []*RecordReply `json:"tasks"`
}

// FailedTasksReply is the body of GET /api/v1/moderation/failed.
type FailedTasksReply struct {
	FailedTasks []*biz.DLQEntry `json:"failed_tasks"`
}

// StatusMessageReply carries a status and human-readable message.
type StatusMessageReply struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SweepReply is the body of POST /api/v1/moderation/failed/retry.
type SweepReply struct {
	Status      string `json:"status"`
	Resubmitted int    `json:"resubmitted"`
}

// ListAll returns a page of durable moderation records.
func (s *AdminService) ListAll(ctx khttp.Context) error {
	offset, _ := strconv.Atoi(ctx.Query().Get("offset"))
	limit, _ := strconv.Atoi(ctx.Query().Get("limit"))

	page, err := s.uc.ListRecords(ctx, pagination.NewOffsetRequest(offset, limit))
	if err != nil {
		return err
	}

	tasks := make([]*RecordReply, len(page.Items))
	for i, r := range page.Items {
		tasks[i] = &RecordReply{
			ID:        r.ID,
			Payload:   r.Payload,
			Kind:      string(r.Kind),
			Status:    string(r.Status),
			Result:    r.Result,
			CreatedAt: r.CreatedAt,
		}
	}
	return ctx.Result(200, &ListRecordsReply{
		TotalCount: page.TotalItems,
		Offset:     page.Offset,
		Limit:      page.Limit,
		Tasks:      tasks,
	})
}

// ClearAll deletes every durable moderation record.
func (s *AdminService) ClearAll(ctx khttp.Context) error {
	n, err := s.uc.DeleteAllRecords(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, &StatusMessageReply{
		Status:  "success",
		Message: "deleted " + strconv.FormatInt(n, 10) + " moderation records",
	})
}

// ClearByID deletes one durable moderation record.
func (s *AdminService) ClearByID(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")
	if err := s.uc.DeleteRecord(ctx, id); err != nil {
		if err == biz.ErrNotFound {
			return errors.NotFound("RESULT_NOT_FOUND", "moderation result "+id+" not found")
		}
		return err
	}
	return ctx.Result(200, &StatusMessageReply{
		Status:  "success",
		Message: "moderation result " + id + " deleted",
	})
}

// ListFailed returns the dead letter queue contents.
func (s *AdminService) ListFailed(ctx khttp.Context) error {
	entries, err := s.uc.ListFailed(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*biz.DLQEntry{}
	}
	return ctx.Result(200, &FailedTasksReply{FailedTasks: entries})
}

// ClearFailed removes every dead letter entry.
func (s *AdminService) ClearFailed(ctx khttp.Context) error {
	n, err := s.uc.ClearFailed(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ctx.Result(200, &StatusMessageReply{
			Status:  "not_found",
			Message: "no failed tasks in dead letter queue",
		})
	}
	return ctx.Result(200, &StatusMessageReply{
		Status:  "success",
		Message: "cleared " + strconv.FormatInt(n, 10) + " failed tasks",
	})
}

// ClearFailedByID removes the dead letter entries for one id.
func (s *AdminService) ClearFailedByID(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")
	if err := s.uc.ClearFailedByID(ctx, id); err != nil {
		if err == biz.ErrNotFound {
			return errors.NotFound("FAILED_TASK_NOT_FOUND", "no failed task with id "+id)
		}
		return err
	}
	return ctx.Result(200, &StatusMessageReply{
		Status:  "success",
		Message: "failed task " + id + " removed from dead letter queue",
	})
}

// RetryFailed triggers an on-demand dead letter sweep.
func (s *AdminService) RetryFailed(ctx khttp.Context) error {
	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, &SweepReply{Status: "success", Resubmitted: n})
}

// Health reports component reachability; failures yield 503.
func (s *AdminService) Health(ctx khttp.Context) error {
	report := s.health.Check(ctx)
	if !report.OK {
		return errors.ServiceUnavailable("UNHEALTHY", "one or more components are unreachable").
			WithMetadata(report.Components)
	}
	return ctx.Result(200, report)
}

// DebugDB reports the durable record count.
func (s *AdminService) DebugDB(ctx khttp.Context) error {
	count, err := s.uc.CountRecords(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, map[string]any{
		"database_status": "connected",
		"row_count":       count,
	})
}
