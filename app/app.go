package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"Gin_postgres_redis_tool_ledger/cache"
	"Gin_postgres_redis_tool_ledger/config"
	"Gin_postgres_redis_tool_ledger/db"
	"Gin_postgres_redis_tool_ledger/events"
	"Gin_postgres_redis_tool_ledger/logging"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// short aliases for handlers
type Ctx = gin.Context
type H = gin.H

// App holds every long-lived dependency; nothing here is global.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client // nil when REDIS_ADDR is empty
	Events events.Publisher
	Log    *slog.Logger
	Config config.Config

	guard *cache.Guard
}

// Idempotency returns the duplicate-submission guard for write endpoints.
func (a *App) Idempotency() gin.HandlerFunc { return Idempotency(a.guard, a.Log) }

// MustNew loads .env and configuration and connects everything, exiting on
// failure.
func MustNew() *App {
	if err := config.LoadEnv(); err != nil {
		slog.Error("load .env", "err", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(log)

	a, err := New(cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	return a
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	gormLevel := logger.Warn
	if cfg.Log.Level == "debug" {
		gormLevel = logger.Info
	}
	dbConn, err := db.Open(db.Options{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN(), LogLevel: gormLevel}, log)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr)
	} else {
		log.Warn("REDIS_ADDR not set, report cache and idempotency guard disabled")
	}

	var pub events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		pub = events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		log.Info("loan events enabled", "queue", cfg.AMQP.Queue)
	}

	return NewWithDeps(cfg, log, dbConn, rdb, pub), nil
}

// NewWithDeps wires an App around already-open connections.
func NewWithDeps(cfg config.Config, log *slog.Logger, dbConn *gorm.DB, rdb *redis.Client, pub events.Publisher) *App {
	if log == nil {
		log = logging.Discard()
	}
	if pub == nil {
		pub = events.Noop{}
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Events: pub, Log: log, Config: cfg,
		guard: cache.NewGuard(rdb, cfg.IdempotencyTTL, "idem"),
	}
}

func (a *App) Close() {
	if a.Events != nil {
		_ = a.Events.Close()
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// ErrorBody is the JSON error envelope shared by every endpoint.
func ErrorBody(code, message string) H {
	return H{"error": H{"code": code, "message": message}}
}
