package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *red.Client {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client
}

func TestRateLimitStore_RecordAndCount(t *testing.T) {
	store := NewRateLimitStore(newTestRedis(t), "rl", 2*time.Minute)

	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := store.RecordAttempt(ctx, "login:10.0.0.1", base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	count, err := store.CountAttempts(ctx, "login:10.0.0.1", time.Minute, base.Add(3*time.Second))
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 attempts, got %d", count)
	}

	// A different identifier keeps its own counter.
	count, err = store.CountAttempts(ctx, "login:10.0.0.2", time.Minute, base)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 attempts, got %d", count)
	}
}

func TestRateLimitStore_TrimWindow(t *testing.T) {
	store := NewRateLimitStore(newTestRedis(t), "rl", 2*time.Minute)

	ctx := context.Background()
	base := time.Now().UTC()

	if err := store.RecordAttempt(ctx, "login:10.0.0.1", base.Add(-2*time.Minute)); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "login:10.0.0.1", base); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	if err := store.TrimWindow(ctx, "login:10.0.0.1", time.Minute, base); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}

	count, err := store.CountAttempts(ctx, "login:10.0.0.1", time.Hour, base)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected stale attempt trimmed, got %d left", count)
	}
}

func TestRateLimitStore_OldestAttempt(t *testing.T) {
	store := NewRateLimitStore(newTestRedis(t), "rl", 2*time.Minute)

	ctx := context.Background()
	base := time.Now().UTC()

	_, found, err := store.OldestAttempt(ctx, "login:10.0.0.1", time.Minute, base)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if found {
		t.Fatal("expected no attempt for empty key")
	}

	first := base.Add(-30 * time.Second)
	if err := store.RecordAttempt(ctx, "login:10.0.0.1", first); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}
	if err := store.RecordAttempt(ctx, "login:10.0.0.1", base); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	oldest, found, err := store.OldestAttempt(ctx, "login:10.0.0.1", time.Minute, base)
	if err != nil {
		t.Fatalf("OldestAttempt returned error: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}
	if !oldest.Equal(first) {
		t.Fatalf("expected oldest %v, got %v", first, oldest)
	}
}

func TestRateLimitStore_RejectsNonPositiveWindow(t *testing.T) {
	store := NewRateLimitStore(newTestRedis(t), "rl", 0)

	ctx := context.Background()

	if _, err := store.CountAttempts(ctx, "id", 0, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window in CountAttempts")
	}
	if err := store.TrimWindow(ctx, "id", 0, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window in TrimWindow")
	}
	if _, _, err := store.OldestAttempt(ctx, "id", 0, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window in OldestAttempt")
	}
}
