package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	data map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{data: make(map[string]string)}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "refsync:lock:sheet", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed, ok=%v err=%v", ok, err)
	}

	other, err := NewRedisLock(store, "refsync:lock:sheet", time.Minute)
	if err != nil {
		t.Fatalf("construct second lock: %v", err)
	}
	ok, err = other.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatalf("held lock must not be acquired twice")
	}

	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err = other.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("released lock should be acquirable, ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newFakeRedisStore()
	ctx := context.Background()

	holder, _ := NewRedisLock(store, "refsync:lock:sheet", time.Minute)
	if ok, err := holder.Acquire(ctx); err != nil || !ok {
		t.Fatalf("acquire failed, ok=%v err=%v", ok, err)
	}

	// Simulate an expired claim being replaced by another worker.
	store.data["refsync:lock:sheet"] = "someone-else"
	if err := holder.Release(ctx); err != nil {
		t.Fatalf("release should not error: %v", err)
	}
	if store.data["refsync:lock:sheet"] != "someone-else" {
		t.Fatalf("release must not evict another owner")
	}
}

func TestRedisLockReleaseWithoutAcquireIsNoop(t *testing.T) {
	store := newFakeRedisStore()
	lock, _ := NewRedisLock(store, "refsync:lock:sheet", time.Minute)
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("idle release should be a no-op: %v", err)
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "key", time.Minute); err == nil {
		t.Fatalf("expected error without client")
	}
	if _, err := NewRedisLock(newFakeRedisStore(), "", time.Minute); err == nil {
		t.Fatalf("expected error without key")
	}
}
