package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("hunter2")

	if _, err := OpenRedis(s.Addr(), "wrong", 0); err == nil {
		t.Fatal("bad password should fail the ping")
	}

	c, err := OpenRedis(s.Addr(), "hunter2", 2)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("SET: %v", err)
	}
	if err := Ping(c)(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	s.Close()
	if err := Ping(c)(ctx); err == nil {
		t.Fatal("Ping should fail once the server is gone")
	}
}

func TestOpenRedis_Unreachable(t *testing.T) {
	if _, err := OpenRedis("not-a-real-host:6379", "", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}
