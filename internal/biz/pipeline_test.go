package biz

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"modqueue/internal/pkg/provider"

	"github.com/go-kratos/kratos/v2/log"
)

type stubProvider struct {
	result *provider.Result
	err    error
	last   provider.Request
}

func (s *stubProvider) Moderate(_ context.Context, req provider.Request) (*provider.Result, error) {
	s.last = req
	return s.result, s.err
}

type failingRecords struct {
	memRecords
	upsertErr error
}

func (f *failingRecords) Upsert(ctx context.Context, record *ModerationRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.memRecords.Upsert(ctx, record)
}

func TestPipelineUsecase_Process_Text(t *testing.T) {
	raw := json.RawMessage(`{"id":"modr-1","results":[{"flagged":true}]}`)
	client := &stubProvider{result: &provider.Result{ID: "modr-1", Raw: raw}}
	records := newMemRecords()
	cache := newMemCache()
	uc := NewPipelineUsecase(client, records, cache, log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: KindText, Payload: "hello"}
	result, err := uc.Process(context.Background(), task)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.ID != "modr-1" {
		t.Errorf("Expected provider result, got %s", result.ID)
	}
	if client.last.Input != "hello" || client.last.ImageURL != "" {
		t.Errorf("Expected text request, got %+v", client.last)
	}

	record := records.records["t1"]
	if record == nil {
		t.Fatal("Expected durable record")
	}
	if record.Status != StatusCompleted {
		t.Errorf("Expected completed status, got %s", record.Status)
	}
	if string(record.Result) != string(raw) {
		t.Errorf("Expected raw payload on record, got %s", record.Result)
	}
	if string(cache.results["t1"]) != string(raw) {
		t.Errorf("Expected warmed cache, got %s", cache.results["t1"])
	}
}

func TestPipelineUsecase_Process_ClearsPendingMarker(t *testing.T) {
	raw := json.RawMessage(`{"id":"modr-1","results":[{"flagged":false}]}`)
	client := &stubProvider{result: &provider.Result{ID: "modr-1", Raw: raw}}
	records := newMemRecords()
	cache := newMemCache()
	queue := &memQueue{}
	submitUC := NewModerationUsecase(records, cache, &memDLQ{}, queue, log.DefaultLogger)
	pipeUC := NewPipelineUsecase(client, records, cache, log.DefaultLogger)
	ctx := context.Background()

	id, err := submitUC.SubmitText(ctx, "hello")
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if cache.pending[id] == nil {
		t.Fatal("Expected pending marker after submission")
	}

	task, err := queue.Dequeue(ctx)
	if err != nil || task == nil {
		t.Fatalf("Dequeue: task=%+v err=%v", task, err)
	}
	if _, err := pipeUC.Process(ctx, task); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if cache.pending[id] != nil {
		t.Error("Expected pending marker cleared after processing")
	}

	view, err := submitUC.GetStatus(ctx, id)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if view.Status != string(StatusCompleted) {
		t.Errorf("Expected status %q after processing, got %q", StatusCompleted, view.Status)
	}
	if string(view.Result) != string(raw) {
		t.Errorf("Expected stored result, got %s", view.Result)
	}
}

func TestPipelineUsecase_Process_ImageRequestShape(t *testing.T) {
	client := &stubProvider{result: &provider.Result{Raw: json.RawMessage(`{}`)}}
	uc := NewPipelineUsecase(client, newMemRecords(), newMemCache(), log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: KindImage, Payload: "https://cdn.example.com/a.png"}
	if _, err := uc.Process(context.Background(), task); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if client.last.ImageURL != task.Payload || client.last.Input != "" {
		t.Errorf("Expected image request, got %+v", client.last)
	}
}

func TestPipelineUsecase_Process_ProviderError(t *testing.T) {
	client := &stubProvider{err: errors.New("status 500")}
	records := newMemRecords()
	uc := NewPipelineUsecase(client, records, newMemCache(), log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: KindText, Payload: "hello"}
	_, err := uc.Process(context.Background(), task)
	if err == nil {
		t.Fatal("Expected provider error to surface")
	}
	if len(records.records) != 0 {
		t.Error("Expected no durable record on provider failure")
	}
}

func TestPipelineUsecase_Process_StoreErrorWrapped(t *testing.T) {
	client := &stubProvider{result: &provider.Result{Raw: json.RawMessage(`{}`)}}
	records := &failingRecords{memRecords: *newMemRecords(), upsertErr: errors.New("db down")}
	uc := NewPipelineUsecase(client, records, newMemCache(), log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: KindText, Payload: "hello"}
	_, err := uc.Process(context.Background(), task)
	if err == nil {
		t.Fatal("Expected store error to surface")
	}
	if !strings.Contains(err.Error(), "store moderation result") {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
	if !strings.Contains(err.Error(), "db down") {
		t.Errorf("Expected cause preserved, got %v", err)
	}
}

func TestPipelineUsecase_Process_CacheFailureIsBestEffort(t *testing.T) {
	client := &stubProvider{result: &provider.Result{Raw: json.RawMessage(`{}`)}}
	cache := newMemCache()
	cache.setErr = errors.New("redis down")
	uc := NewPipelineUsecase(client, newMemRecords(), cache, log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: KindText, Payload: "hello"}
	if _, err := uc.Process(context.Background(), task); err != nil {
		t.Fatalf("Expected cache failure not to fail the job, got %v", err)
	}
}

func TestPipelineUsecase_Process_UnknownKind(t *testing.T) {
	uc := NewPipelineUsecase(&stubProvider{}, newMemRecords(), newMemCache(), log.DefaultLogger)

	task := &ModerationTask{ID: "t1", Kind: ContentKind("audio"), Payload: "x"}
	if _, err := uc.Process(context.Background(), task); err == nil {
		t.Fatal("Expected error for unknown content kind")
	}
}
