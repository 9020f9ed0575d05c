package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := NewClient(Config{URL: "not-a-url://"}); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestClient_UnreachableServerReportsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewFromRedis(rdb, 0)
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "fallback_theme", []byte(`"dark"`)); err == nil {
		t.Error("expected set to fail against an unreachable server")
	}
	_, found, err := c.Get(ctx, "fallback_theme")
	if err == nil || found {
		t.Errorf("expected get error, got found=%v err=%v", found, err)
	}
}
