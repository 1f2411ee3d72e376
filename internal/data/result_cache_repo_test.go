package data

import (
	"context"
	"testing"

	"modqueue/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
)

func TestResultCacheRepo_Result(t *testing.T) {
	cache := newFakeCache()
	repo := NewResultCache(cache, log.DefaultLogger)
	ctx := context.Background()

	payload := []byte(`{"id":"modr-1","results":[{"flagged":true}]}`)
	if err := repo.SetResult(ctx, "task-1", payload, biz.ResultTTL); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	got, err := repo.GetResult(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("GetResult = %s, want %s", got, payload)
	}
	if cache.ttls["task-1"] != biz.ResultTTL {
		t.Errorf("Expected result TTL %s, got %s", biz.ResultTTL, cache.ttls["task-1"])
	}
}

func TestResultCacheRepo_ResultMiss(t *testing.T) {
	repo := NewResultCache(newFakeCache(), log.DefaultLogger)

	got, err := repo.GetResult(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Expected nil error on miss, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil result on miss, got %s", got)
	}
}

func TestResultCacheRepo_Pending(t *testing.T) {
	cache := newFakeCache()
	repo := NewResultCache(cache, log.DefaultLogger)
	ctx := context.Background()

	status := &biz.PendingStatus{Status: "Processing", Payload: "some text", Kind: biz.KindText}
	if err := repo.SetPending(ctx, "task-1", status, biz.PendingTTL); err != nil {
		t.Fatalf("SetPending: %v", err)
	}

	// The marker lives under its own keyspace, not the result key.
	if _, ok := cache.strings["task-1"]; ok {
		t.Error("Expected pending marker not to occupy the result key")
	}
	if _, ok := cache.strings["status:task-1"]; !ok {
		t.Error("Expected pending marker under status: prefix")
	}

	got, err := repo.GetPending(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetPending: %v", err)
	}
	if got == nil {
		t.Fatal("Expected pending status, got nil")
	}
	if got.Status != "Processing" || got.Payload != "some text" || got.Kind != biz.KindText {
		t.Errorf("GetPending = %+v, want %+v", got, status)
	}
}

func TestResultCacheRepo_PendingMiss(t *testing.T) {
	repo := NewResultCache(newFakeCache(), log.DefaultLogger)

	got, err := repo.GetPending(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Expected nil error on miss, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil status on miss, got %+v", got)
	}
}
