package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"pet-wellness/internal/domain/wellness"
)

// Requiere un Redis real: REDIS_TEST_ADDR=localhost:6379 go test ./...
func TestReportCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	c, err := New(ctx, Config{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	key := "test-" + time.Now().Format("150405.000000000")
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	want := wellness.Report{PetID: "pet-1", SeriesVersion: 7, Trend: wellness.Trend{Direction: wellness.DirectionUp, Magnitude: 8}}
	if err := c.Set(ctx, key, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("get ok=%v err=%v", ok, err)
	}
	if got.PetID != want.PetID || got.SeriesVersion != 7 || got.Trend.Direction != wellness.DirectionUp {
		t.Fatalf("got=%+v", got)
	}
}
