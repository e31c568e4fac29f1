package db

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_tool_ledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports_EmptyLedger(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	tools, err := r.MostRequestedTools(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, tools)
	assert.Empty(t, tools)

	emps, err := r.MostActiveEmployees(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, emps)

	overdue, err := r.OverdueReport(ctx)
	require.NoError(t, err)
	assert.NotNil(t, overdue)
	assert.Empty(t, overdue)

	s, err := r.GeneralStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.Employees)
	assert.Zero(t, s.AvailableUnits)
	assert.Equal(t, int64(0), s.LoansByStatus["active"])

	p, err := r.PeriodSummary(ctx, testNow.Add(-time.Hour), testNow)
	require.NoError(t, err)
	assert.Zero(t, p.Total)
	assert.Empty(t, p.Loans)
}

func TestMostRequestedTools_RankingAndTies(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	emp := mustEmployee(t, r, "Ana")
	a := mustTool(t, r, "Alpha", 10)
	b := mustTool(t, r, "Bravo", 10)
	c := mustTool(t, r, "Charlie", 10)
	_ = mustTool(t, r, "Delta", 10)

	bo := mustEmployee(t, r, "Bo")
	for i := 0; i < 2; i++ {
		mustLoan(t, r, emp.ID, c.ID)
	}
	mustLoan(t, r, bo.ID, b.ID)
	mustLoan(t, r, emp.ID, b.ID)
	l := mustLoan(t, r, emp.ID, a.ID)
	// cancelled loans still count as requests
	_, err := r.CancelLoan(ctx, l.ID)
	require.NoError(t, err)

	top, err := r.MostRequestedTools(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, b.ID, top[0].ToolID)
	assert.Equal(t, c.ID, top[1].ToolID)
	assert.Equal(t, a.ID, top[2].ToolID)
	assert.Equal(t, int64(2), top[0].LoanCount)
	assert.Equal(t, "Bravo", top[0].Name)
	assert.Equal(t, b.Code, top[0].Code)
	assert.Equal(t, []string{"Ana Doe", "Bo Doe"}, top[0].Borrowers)
	assert.Equal(t, []string{"Ana Doe"}, top[1].Borrowers)
	assert.Equal(t, []string{"Ana Doe"}, top[2].Borrowers)

	top1, err := r.MostRequestedTools(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, b.ID, top1[0].ToolID)
}

func TestMostActiveEmployees(t *testing.T) {
	r := newTestRepo(t)
	emp1 := mustEmployee(t, r, "Ana")
	emp2 := mustEmployee(t, r, "Bo")
	tool := mustTool(t, r, "Pliers", 10)

	mustLoan(t, r, emp2.ID, tool.ID)
	mustLoan(t, r, emp2.ID, tool.ID)
	mustLoan(t, r, emp1.ID, tool.ID)

	top, err := r.MostActiveEmployees(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, emp2.ID, top[0].EmployeeID)
	assert.Equal(t, int64(2), top[0].LoanCount)
	assert.Equal(t, "Bo", top[0].Name)
	assert.Equal(t, "Workshop", top[0].Area)
	assert.Equal(t, emp1.ID, top[1].EmployeeID)
}

func TestOverdueReport(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	emp := mustEmployee(t, r, "Ana")
	tool := mustTool(t, r, "Scaffold", 2)

	loaned := testNow.Add(-5 * 24 * time.Hour)
	due := testNow.Add(-3*24*time.Hour - time.Hour)
	l, err := r.CreateLoan(ctx, CreateLoanInput{EmployeeID: emp.ID, ToolID: tool.ID, LoanedAt: &loaned, DueAt: &due})
	require.NoError(t, err)
	mustLoan(t, r, emp.ID, tool.ID)

	rows, err := r.OverdueReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, l.ID, rows[0].LoanID)
	assert.Equal(t, "Ana Doe", rows[0].EmployeeName)
	assert.Equal(t, "Scaffold", rows[0].ToolName)
	assert.Equal(t, tool.Code, rows[0].ToolCode)
	assert.Equal(t, 3, rows[0].DaysOverdue)
}

func TestGeneralStats(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	emp := mustEmployee(t, r, "Ana")
	retired := mustEmployee(t, r, "Bo")
	_, err := r.SetEmployeeActive(ctx, retired.ID, false)
	require.NoError(t, err)
	_, err = r.CreateCategory(ctx, CategoryInput{Name: "Misc"})
	require.NoError(t, err)

	t1 := mustTool(t, r, "Hammer", 3)
	t2 := mustTool(t, r, "Broken saw", 2)
	_, err = r.SetToolActive(ctx, t2.ID, false)
	require.NoError(t, err)

	l1 := mustLoan(t, r, emp.ID, t1.ID)
	mustLoan(t, r, emp.ID, t1.ID)
	_, err = r.ReturnLoan(ctx, l1.ID, nil)
	require.NoError(t, err)

	s, err := r.GeneralStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Employees)
	assert.Equal(t, int64(1), s.ActiveEmployees)
	assert.Equal(t, int64(1), s.InactiveEmployees)
	assert.Equal(t, int64(1), s.Categories)
	assert.Equal(t, int64(2), s.Tools)
	assert.Equal(t, int64(1), s.InactiveTools)
	assert.Equal(t, int64(4), s.AvailableUnits)
	assert.Equal(t, int64(2), s.Loans)
	assert.Equal(t, int64(1), s.LoansByStatus[string(models.LoanActive)])
	assert.Equal(t, int64(1), s.LoansByStatus[string(models.LoanReturned)])
	assert.Equal(t, int64(0), s.LoansByStatus[string(models.LoanCancelled)])
	assert.Zero(t, s.OverdueLoans)
}

func TestPeriodSummary(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	emp := mustEmployee(t, r, "Ana")
	tool := mustTool(t, r, "Router", 10)

	day := 24 * time.Hour
	var ids []uint
	for _, off := range []time.Duration{-10 * day, -5 * day, -4 * day, 0} {
		at := testNow.Add(off)
		l, err := r.CreateLoan(ctx, CreateLoanInput{EmployeeID: emp.ID, ToolID: tool.ID, LoanedAt: &at})
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	_, err := r.ReturnLoan(ctx, ids[1], nil)
	require.NoError(t, err)
	_, err = r.CancelLoan(ctx, ids[2])
	require.NoError(t, err)

	p, err := r.PeriodSummary(ctx, testNow.Add(-6*day), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, 1, p.Returned)
	assert.Equal(t, 1, p.Cancelled)
	assert.Equal(t, 0, p.Active)

	_, err = r.PeriodSummary(ctx, testNow, testNow)
	assert.True(t, IsKind(err, KindValidationFailed))
}
