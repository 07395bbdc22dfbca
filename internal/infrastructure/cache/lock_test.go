package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocker_TryLock(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewLocker(rdb, "lock:")
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "overdue", "replica-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first TryLock = %v, %v", ok, err)
	}
	if _, ok, _ := l.TryLock(ctx, "overdue", "replica-b", time.Minute); ok {
		t.Fatal("second holder must not acquire")
	}
	if ttl := s.TTL("lock:overdue"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}

	release()
	if s.Exists("lock:overdue") {
		t.Fatal("release did not delete key")
	}
	if _, ok, _ := l.TryLock(ctx, "overdue", "replica-b", time.Minute); !ok {
		t.Fatal("lock should be free after release")
	}
}

func TestLocker_ReleaseKeepsForeignToken(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewLocker(rdb, "lock:")
	release, ok, err := l.TryLock(context.Background(), "expire", "a", time.Second)
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	// lock expired and was taken by someone else
	s.FastForward(2 * time.Second)
	if err := s.Set("lock:expire", "b"); err != nil {
		t.Fatal(err)
	}
	release()
	if v, _ := s.Get("lock:expire"); v != "b" {
		t.Fatalf("foreign lock removed, value=%q", v)
	}
}

func TestLocker_RedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s.Close()

	if _, ok, err := NewLocker(rdb, "lock:").TryLock(context.Background(), "x", "t", time.Second); err == nil || ok {
		t.Fatalf("expected error when redis is down, got ok=%v err=%v", ok, err)
	}
}
