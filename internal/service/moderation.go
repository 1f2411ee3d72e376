package service

import (
	"encoding/json"
	"strings"
	"time"

	"modqueue/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// ModerationService exposes the submission and read endpoints.
type ModerationService struct {
	uc  *biz.ModerationUsecase
	log *log.Helper
}

// NewModerationService creates a new ModerationService.
func NewModerationService(uc *biz.ModerationUsecase, logger log.Logger) *ModerationService {
	return &ModerationService{
		uc:  uc,
		log: log.NewHelper(logger),
	}
}

// TextModerationRequest is the body of POST /api/v1/moderate/text.
type TextModerationRequest struct {
	Text string `json:"text"`
}

// ImageModerationRequest is the body of POST /api/v1/moderate/image.
type ImageModerationRequest struct {
	ImageURL string `json:"image_url"`
}

// SubmitReply acknowledges a queued moderation task.
type SubmitReply struct {
	Message  string `json:"message"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	ID       string `json:"id"`
}

// StatusReply is the read-path answer for one id.
type StatusReply struct {
	Message   string          `json:"message"`
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Payload   string          `json:"payload,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
}

// SubmitText queues a text moderation task and acknowledges immediately.
func (s *ModerationService) SubmitText(ctx khttp.Context) error {
	var req TextModerationRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return errors.BadRequest("TEXT_EMPTY", "text cannot be empty")
	}

	id, err := s.uc.SubmitText(ctx, req.Text)
	if err != nil {
		return err
	}
	return ctx.Result(200, &SubmitReply{
		Message: "Text Moderation Task Queued",
		Text:    req.Text,
		ID:      id,
	})
}

// SubmitImage queues an image moderation task and acknowledges immediately.
func (s *ModerationService) SubmitImage(ctx khttp.Context) error {
	var req ImageModerationRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	url := strings.TrimSpace(req.ImageURL)
	if url == "" || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
		return errors.BadRequest("IMAGE_URL_INVALID", "image_url must be a valid http(s) URL")
	}

	id, err := s.uc.SubmitImage(ctx, url)
	if err != nil {
		return err
	}
	return ctx.Result(200, &SubmitReply{
		Message:  "Image Moderation Task Queued",
		ImageURL: url,
		ID:       id,
	})
}

// GetStatus resolves an id against the pending marker, cache, and store.
func (s *ModerationService) GetStatus(ctx khttp.Context) error {
	id := ctx.Vars().Get("id")

	view, err := s.uc.GetStatus(ctx, id)
	if err != nil {
		if err == biz.ErrNotFound {
			return errors.NotFound("RESULT_NOT_FOUND", "moderation result not found")
		}
		return err
	}

	reply := &StatusReply{
		Message: view.Message,
		ID:      view.ID,
		Status:  view.Status,
		Payload: view.Payload,
		Result:  view.Result,
	}
	if !view.CreatedAt.IsZero() {
		createdAt := view.CreatedAt
		reply.CreatedAt = &createdAt
	}
	return ctx.Result(200, reply)
}
