package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard remembers keys for a TTL so a repeated submission can be refused.
type Guard struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewGuard(rdb *redis.Client, ttl time.Duration, prefix string) *Guard {
	return &Guard{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (g *Guard) Enabled() bool { return g != nil && g.rdb != nil && g.ttl > 0 }

func (g *Guard) key(k string) string { return g.prefix + ":" + k }

// Claim returns true the first time k is seen within the TTL.
func (g *Guard) Claim(ctx context.Context, k string) (bool, error) {
	if !g.Enabled() {
		return true, nil
	}
	return g.rdb.SetNX(ctx, g.key(k), time.Now().UTC().Unix(), g.ttl).Result()
}

// Release forgets k so a failed request can be retried with the same key.
func (g *Guard) Release(ctx context.Context, k string) error {
	if !g.Enabled() {
		return nil
	}
	return g.rdb.Del(ctx, g.key(k)).Err()
}
