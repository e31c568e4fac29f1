package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"Gin_postgres_redis_tool_ledger/logging"

	"gorm.io/gorm"
)

// Repo is the catalog, ledger and reporting store. It owns no global state:
// every call runs against the injected *gorm.DB, one transaction per write.
type Repo struct {
	DB  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

type Option func(*Repo)

// WithClock overrides the time source used for defaults and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(r *Repo) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRepo(db *gorm.DB, opts ...Option) *Repo {
	r := &Repo{
		DB:  db,
		now: func() time.Time { return time.Now().UTC() },
		log: logging.Discard(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Now exposes the repo clock so callers stamp events consistently.
func (r *Repo) Now() time.Time { return r.now() }

// Page bounds a listing. Zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// untranslated driver errors (sqlite, or TranslateError disabled)
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern turns free text into a lower-cased LIKE pattern matching it
// anywhere; use it with ESCAPE '\'.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (r *Repo) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}
