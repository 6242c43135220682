package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter считает запросы в Redis: INCR по ключу окна плюс EXPIRE
// при его создании. Пригоден, когда счетчики нужно вынести из процесса,
// но несколько экземпляров сервиса он не координирует точнее, чем то же
// фиксированное окно.
type RedisLimiter struct {
	db          *redis.Client
	maxRequests int
	window      time.Duration
	keyPrefix   string
}

// NewRedisLimiter создает ограничитель поверх клиента Redis.
func NewRedisLimiter(db *redis.Client, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		db:          db,
		maxRequests: maxRequests,
		window:      window,
		keyPrefix:   "ratelimit:",
	}
}

// Allow инкрементирует счетчик клиента и сравнивает с максимумом.
// Окно задается TTL ключа. INCR и EXPIRE NX идут одним пайплайном:
// срок жизни выставляется только ключу без TTL, поэтому ключ,
// оставшийся без срока после сбоя между командами, получит его
// на следующем запросе, а не будет жить вечно.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	const op = "ratelimit.RedisLimiter.Allow"

	redisKey := l.keyPrefix + key
	pipe := l.db.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return incr.Val() <= int64(l.maxRequests), nil
}
