package redis

import (
	"context"
	"testing"
	"time"

	"github.com/iho/loanledger/internal/usecase"
)

func TestIdempotencyStore_CheckAndSetExisting(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := client.Set(ctx, store.prefix+"key", "cached", time.Minute).Err(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "key", nil, time.Minute)
	if err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}

	if !exists || string(resp) != "cached" {
		t.Fatalf("expected existing cached response, got exists=%v resp=%s", exists, resp)
	}
}

func TestIdempotencyStore_CheckAndSetLocksNewKey(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, resp, err := store.CheckAndSet(ctx, "pending", nil, time.Minute)
	if err != nil || exists || resp != nil {
		t.Fatalf("unexpected result: exists=%v resp=%v err=%v", exists, resp, err)
	}

	val, err := client.Get(ctx, store.prefix+"pending").Result()
	if err != nil || val != "processing" {
		t.Fatalf("expected placeholder lock, got val=%s err=%v", val, err)
	}
}

func TestIdempotencyStore_CheckAndSetSecondCallerSeesMarker(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if exists, _, err := store.CheckAndSet(ctx, "race", nil, time.Minute); err != nil || exists {
		t.Fatalf("first caller should claim the key, exists=%v err=%v", exists, err)
	}

	exists, resp, err := store.CheckAndSet(ctx, "race", nil, time.Minute)
	if err != nil || !exists {
		t.Fatalf("second caller should see the key, exists=%v err=%v", exists, err)
	}
	if string(resp) != usecase.IdempotencyProcessing {
		t.Fatalf("expected processing marker, got %s", resp)
	}
}

func TestIdempotencyStore_CheckAndSetWithResponse(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "direct", []byte("final"), time.Minute)
	if err != nil || exists {
		t.Fatalf("unexpected result: exists=%v err=%v", exists, err)
	}

	val, err := client.Get(ctx, store.prefix+"direct").Result()
	if err != nil || val != "final" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
	if ttl := mr.TTL(store.prefix + "direct"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}
}

func TestIdempotencyStore_Update(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if err := store.Update(ctx, "complete", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	val, err := client.Get(ctx, store.prefix+"complete").Result()
	if err != nil || val != "done" {
		t.Fatalf("expected stored response, got val=%s err=%v", val, err)
	}
}

func TestIdempotencyStore_Release(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewIdempotencyStore(client)
	ctx := context.Background()

	if _, _, err := store.CheckAndSet(ctx, "retry", nil, time.Minute); err != nil {
		t.Fatalf("CheckAndSet failed: %v", err)
	}
	if err := store.Release(ctx, "retry"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	exists, _, err := store.CheckAndSet(ctx, "retry", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected released key to be claimable again, exists=%v err=%v", exists, err)
	}
}
