package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter 是 *redis.Client 的子集，测试中用内存计数替换。
type RateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// fixedWindow 按 key 在固定时间窗内计数，超过 limit 即拒绝。nil 表示不限流。
type fixedWindow struct {
	counter RateCounter
	prefix  string
	limit   int64
	window  time.Duration
}

func newFixedWindow(counter RateCounter, prefix string, limit int, window time.Duration) *fixedWindow {
	if counter == nil || limit <= 0 {
		return nil
	}
	return &fixedWindow{counter: counter, prefix: prefix, limit: int64(limit), window: window}
}

// Allow 返回是否放行与窗口内剩余次数；计数失败时放行并返回错误。
func (w *fixedWindow) Allow(ctx context.Context, key string) (bool, int64, error) {
	if w == nil {
		return true, 0, nil
	}
	k := w.prefix + key
	count, err := w.counter.Incr(ctx, k).Result()
	if err != nil {
		return true, 0, fmt.Errorf("incr %s: %w", k, err)
	}
	// 只有窗口内第一次计数设置过期，否则窗口会被不断续期。
	if count == 1 {
		if err := w.counter.Expire(ctx, k, w.window).Err(); err != nil {
			return true, w.limit - count, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return count <= w.limit, max(w.limit-count, 0), nil
}
