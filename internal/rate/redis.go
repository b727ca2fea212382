package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisLimiter: ventana fija sobre Redis (INCR + EXPIRE). Mismo modelo
// de ventana-con-reset que MemoryLimiter, pero compartido entre
// réplicas del servicio.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Points int
	Window time.Duration
}

// NewRedis crea un limiter respaldado por Redis.
func NewRedis(client *rdb.Client, prefix string, points int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{Client: client, Prefix: prefix, Points: points, Window: window}
}

// windowKey arma la key del bucket vigente. Truncar a la ventana hace
// que todas las réplicas compartan el mismo bucket.
func (l *RedisLimiter) windowKey(key string, now time.Time) string {
	winStart := now.Truncate(l.Window)
	return fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	hits, err := l.Client.Get(ctx, l.windowKey(key, time.Now().UTC())).Int64()
	if err == rdb.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return hits < int64(l.Points), nil
}

func (l *RedisLimiter) Consume(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	redisKey := l.windowKey(key, now)

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// set expiry on first hit
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
		ttl = l.Client.TTL(ctx, redisKey)
	}

	hits := incr.Val()
	if hits > int64(l.Points) {
		retry := ttl.Val()
		if retry < 0 {
			retry = l.Window
		}
		return Result{Allowed: false, RetryAfter: retry}, ErrRateExceeded
	}
	return Result{Allowed: true, Remaining: l.Points - int(hits)}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.Client.Del(ctx, l.windowKey(key, time.Now().UTC())).Err()
}
