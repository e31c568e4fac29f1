package controllers

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_tool_ledger/app"
	"Gin_postgres_redis_tool_ledger/cache"
	"Gin_postgres_redis_tool_ledger/db"
	"Gin_postgres_redis_tool_ledger/events"
	"Gin_postgres_redis_tool_ledger/logging"
	"Gin_postgres_redis_tool_ledger/models"
)

// Srv is shared by every controller.
type Srv struct {
	Repo    *db.Repo
	Reports *cache.Reports
	Events  events.Publisher
	Log     *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:    db.NewRepo(a.DB, db.WithLogger(a.Log)),
		Reports: cache.NewReports(a.RDB, a.Config.ReportCacheTTL, a.Log),
		Events:  a.Events,
		Log:     a.Log,
	}
}

// changed runs after every committed mutation so no report read afterwards
// is served from an older snapshot.
func (s *Srv) changed(ctx context.Context) {
	if err := s.Reports.Invalidate(ctx); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "report cache invalidation failed", "err", err)
	}
}

// publish is best-effort; the loan is already committed.
func (s *Srv) publish(ctx context.Context, typ string, l *models.Loan) {
	ev := events.NewLoanEvent(typ, l, s.Repo.Now())
	if err := s.Events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "loan event not published", "type", typ, "loan_id", l.ID, "err", err)
	}
}
