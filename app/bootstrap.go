package app

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_tool_ledger/db"
)

// LogLedgerSummary logs headline counts once at start-up.
func LogLedgerSummary(ctx context.Context, repo *db.Repo, log *slog.Logger) {
	s, err := repo.GeneralStats(ctx)
	if err != nil {
		log.WarnContext(ctx, "ledger summary unavailable", "err", err)
		return
	}
	log.InfoContext(ctx, "ledger ready",
		"employees", s.ActiveEmployees,
		"tools", s.ActiveTools,
		"available_units", s.AvailableUnits,
		"active_loans", s.LoansByStatus["active"],
		"overdue_loans", s.OverdueLoans,
	)
	if s.OverdueLoans > 0 {
		log.WarnContext(ctx, "overdue loans outstanding", "count", s.OverdueLoans)
	}
}
