package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"Gin_postgres_redis_tool_ledger/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepo(conn, WithClock(func() time.Time { return testNow }))
}

func ptr[T any](v T) *T { return &v }

func mustEmployee(t *testing.T, r *Repo, name string) *models.Employee {
	t.Helper()
	e, err := r.CreateEmployee(context.Background(), EmployeeInput{Name: name, Surname: "Doe", Area: "Workshop"})
	require.NoError(t, err)
	return e
}

func mustTool(t *testing.T, r *Repo, name string, qty int) *models.Tool {
	t.Helper()
	tool, err := r.CreateTool(context.Background(), ToolInput{Name: name, Quantity: &qty})
	require.NoError(t, err)
	return tool
}

func mustLoan(t *testing.T, r *Repo, empID, toolID uint) *models.Loan {
	t.Helper()
	l, err := r.CreateLoan(context.Background(), CreateLoanInput{EmployeeID: empID, ToolID: toolID})
	require.NoError(t, err)
	return l
}

func stockOf(t *testing.T, r *Repo, toolID uint) int {
	t.Helper()
	tool, err := r.GetTool(context.Background(), toolID)
	require.NoError(t, err)
	require.NotNil(t, tool)
	return tool.AvailableQuantity
}
