package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type brokenCounter struct{}

func (brokenCounter) Incr(ctx context.Context, _ string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetErr(errors.New("redis down"))
	return cmd
}

func (brokenCounter) Expire(ctx context.Context, _ string, _ time.Duration) *redis.BoolCmd {
	return redis.NewBoolCmd(ctx)
}

func TestFixedWindowCountsPerKey(t *testing.T) {
	w := newFixedWindow(&memCounter{counts: map[string]int64{}}, "t:", 2, time.Minute)
	ctx := context.Background()
	for i, want := range []bool{true, true, false} {
		ok, _, err := w.Allow(ctx, "1.2.3.4")
		if err != nil || ok != want {
			t.Fatalf("call %d: ok=%v err=%v, want %v", i, ok, err, want)
		}
	}
	if ok, remaining, _ := w.Allow(ctx, "5.6.7.8"); !ok || remaining != 1 {
		t.Fatalf("other key: ok=%v remaining=%d", ok, remaining)
	}
}

func TestFixedWindowFailsOpen(t *testing.T) {
	w := newFixedWindow(brokenCounter{}, "t:", 1, time.Minute)
	ok, _, err := w.Allow(context.Background(), "k")
	if !ok || err == nil {
		t.Fatalf("ok=%v err=%v, want allowed with error", ok, err)
	}
	if newFixedWindow(nil, "t:", 1, time.Minute) != nil || newFixedWindow(brokenCounter{}, "t:", 0, time.Minute) != nil {
		t.Fatal("missing counter or limit disables the limiter")
	}
}
