// Package cache keeps short-lived JSON snapshots and dedupe keys in redis.
// A nil client turns every operation into a miss / no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_tool_ledger/logging"

	"github.com/redis/go-redis/v9"
)

const genKey = "reports:gen"

// Reports caches report results under the current generation. Bumping the
// generation orphans every older snapshot, so a read after a mutation never
// sees data computed before it.
type Reports struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewReports(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Reports {
	if log == nil {
		log = logging.Discard()
	}
	return &Reports{rdb: rdb, ttl: ttl, log: log}
}

func (s *Reports) Enabled() bool { return s != nil && s.rdb != nil && s.ttl > 0 }

func reportKey(gen int64, name string) string { return fmt.Sprintf("reports:%d:%s", gen, name) }

func (s *Reports) generation(ctx context.Context) (int64, error) {
	gen, err := s.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// set writes under gen, the generation observed before v was computed.
func (s *Reports) set(ctx context.Context, gen int64, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, reportKey(gen, name), b, s.ttl).Err()
}

// Invalidate drops every cached report.
func (s *Reports) Invalidate(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Incr(ctx, genKey).Err()
}

// Load returns the cached snapshot for name or computes and stores it. Redis
// failures degrade to computing every time; compute errors are returned as is.
func Load[T any](ctx context.Context, s *Reports, name string, compute func(context.Context) (T, error)) (T, bool, error) {
	if !s.Enabled() {
		v, err := compute(ctx)
		return v, false, err
	}

	gen, err := s.generation(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "report cache unavailable", "report", name, "err", err)
		v, err := compute(ctx)
		return v, false, err
	}

	var cached T
	b, err := s.rdb.Get(ctx, reportKey(gen, name)).Bytes()
	switch {
	case err == nil:
		if uerr := json.Unmarshal(b, &cached); uerr == nil {
			return cached, true, nil
		}
		s.log.WarnContext(ctx, "discarding undecodable report snapshot", "report", name)
	case !errors.Is(err, redis.Nil):
		s.log.WarnContext(ctx, "report cache read failed", "report", name, "err", err)
	}

	v, err := compute(ctx)
	if err != nil {
		return v, false, err
	}
	if err := s.set(ctx, gen, name, v); err != nil {
		s.log.WarnContext(ctx, "report cache write failed", "report", name, "err", err)
	}
	return v, false, nil
}
