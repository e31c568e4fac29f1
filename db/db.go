package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"Gin_postgres_redis_tool_ledger/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options describes how to reach the store. DSN is a postgres URL/keyword DSN
// or a sqlite file path.
type Options struct {
	Driver   string
	DSN      string
	LogLevel logger.LogLevel
}

// Open connects, tunes the pool and migrates the schema.
func Open(opt Options, log *slog.Logger) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)
	switch strings.ToLower(opt.Driver) {
	case "", DriverPostgres:
		conn, err = gorm.Open(postgres.Open(opt.DSN), gormConfig(opt))
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	case DriverSQLite:
		conn, err = OpenSQLite(opt.DSN, opt.LogLevel)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opt.Driver)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if log != nil {
		log.Info("database connected", "driver", conn.Dialector.Name())
	}
	return conn, nil
}

// OpenSQLite opens a file-backed sqlite database. SQLite has no row locks, so
// the pool is pinned to one connection and writers are serialized.
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(Options{LogLevel: level}))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

func gormConfig(opt Options) *gorm.Config {
	level := opt.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Employee{}, &models.Category{}, &models.Tool{}, &models.Loan{}); err != nil {
		return err
	}

	// overdue scans only look at active loans
	if db.Dialector.Name() == DriverPostgres {
		if err := db.Exec(fmt.Sprintf(`
		  CREATE INDEX IF NOT EXISTS %s_active_due
		  ON %s (due_at)
		  WHERE status = 'active';
		`, models.LoanTable, models.LoanTable)).Error; err != nil {
			return err
		}
	}
	return nil
}
