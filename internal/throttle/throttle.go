// Package throttle limits how often a keyed action may run, backed by Redis.
package throttle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis allows one action per key per window using SET NX with expiry.
// A nil client allows everything.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

// Allow reports whether the action may run now and, if so, starts a new
// window for key.
func (t *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if t == nil || t.rdb == nil {
		return true, nil
	}
	return t.rdb.SetNX(ctx, t.prefix+key, time.Now().Unix(), window).Result()
}
