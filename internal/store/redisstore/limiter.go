package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-user rate limit for chat sends. The hosted
// generation API allows 15 requests per minute on the free tier, so the
// server refuses locally instead of burning quota on 429s.
type Limiter struct {
	rdb       *redis.Client
	perMinute int
}

func NewLimiter(addr, password string, db, perMinute int) *Limiter {
	return &Limiter{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		perMinute: perMinute,
	}
}

func (l *Limiter) Close() error {
	return l.rdb.Close()
}

// Allow reports whether userID may send another chat message this minute.
// Redis errors fail open; rate limiting is protection, not correctness.
func (l *Limiter) Allow(ctx context.Context, userID string) (bool, error) {
	if l == nil || l.perMinute <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("petchat:chat_rate:%s:%d", userID, time.Now().Unix()/60)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return incr.Val() <= int64(l.perMinute), nil
}
