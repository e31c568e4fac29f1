package db

import (
	"context"
	"time"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
)

// DefaultTopN is used when a ranking is asked for with n <= 0.
const DefaultTopN = 5

type ToolUsage struct {
	ToolID    uint     `json:"toolId"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	LoanCount int64    `json:"loanCount"`
	Borrowers []string `gorm:"-" json:"borrowers"` // distinct employees, by employee id
}

type EmployeeActivity struct {
	EmployeeID uint   `json:"employeeId"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Area       string `json:"area"`
	LoanCount  int64  `json:"loanCount"`
}

type OverdueRow struct {
	LoanID       uint      `json:"loanId"`
	EmployeeID   uint      `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	ToolID       uint      `json:"toolId"`
	ToolName     string    `json:"toolName"`
	ToolCode     string    `json:"toolCode"`
	LoanedAt     time.Time `json:"loanedAt"`
	DueAt        time.Time `json:"dueAt"`
	DaysOverdue  int       `json:"daysOverdue"`
}

type Stats struct {
	Employees         int64            `json:"employees"`
	ActiveEmployees   int64            `json:"activeEmployees"`
	InactiveEmployees int64            `json:"inactiveEmployees"`
	Categories        int64            `json:"categories"`
	ActiveCategories  int64            `json:"activeCategories"`
	Tools             int64            `json:"tools"`
	ActiveTools       int64            `json:"activeTools"`
	InactiveTools     int64            `json:"inactiveTools"`
	AvailableUnits    int64            `json:"availableUnits"`
	Loans             int64            `json:"loans"`
	LoansByStatus     map[string]int64 `json:"loansByStatus"`
	OverdueLoans      int64            `json:"overdueLoans"`
}

type PeriodSummary struct {
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	Total     int           `json:"total"`
	Active    int           `json:"active"`
	Returned  int           `json:"returned"`
	Cancelled int           `json:"cancelled"`
	Loans     []models.Loan `json:"loans"`
}

type borrowerRow struct {
	ToolID     uint
	EmployeeID uint
	Name       string
	Surname    string
}

type statusCount struct {
	Status string
	N      int64
}

func topN(n int) int {
	if n <= 0 {
		return DefaultTopN
	}
	return n
}

// MostRequestedTools ranks tools by number of loans ever opened (any status)
// and names everyone who borrowed each one. Ties go to the older tool.
func (r *Repo) MostRequestedTools(ctx context.Context, n int) ([]ToolUsage, error) {
	out := []ToolUsage{}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Table(models.LoanTable+" l").
			Select("t.id AS tool_id, t.name AS name, t.code AS code, COUNT(l.id) AS loan_count").
			Joins("JOIN "+models.ToolTable+" t ON t.id = l.tool_id").
			Group("t.id, t.name, t.code").
			Order("loan_count DESC, t.id ASC").
			Limit(topN(n)).
			Scan(&out).Error; err != nil {
			return err
		}
		if len(out) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(out))
		for _, u := range out {
			ids = append(ids, u.ToolID)
		}
		var rows []borrowerRow
		if err := tx.Table(models.LoanTable+" l").
			Select("DISTINCT l.tool_id AS tool_id, e.id AS employee_id, e.name AS name, e.surname AS surname").
			Joins("JOIN "+models.EmployeeTable+" e ON e.id = l.employee_id").
			Where("l.tool_id IN ?", ids).
			Order("l.tool_id ASC, e.id ASC").
			Scan(&rows).Error; err != nil {
			return err
		}
		byTool := make(map[uint][]string, len(out))
		for _, b := range rows {
			byTool[b.ToolID] = append(byTool[b.ToolID], models.Employee{Name: b.Name, Surname: b.Surname}.FullName())
		}
		for i := range out {
			out[i].Borrowers = byTool[out[i].ToolID]
			if out[i].Borrowers == nil {
				out[i].Borrowers = []string{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, storage("most requested tools", err)
	}
	return out, nil
}

func (r *Repo) MostActiveEmployees(ctx context.Context, n int) ([]EmployeeActivity, error) {
	out := []EmployeeActivity{}
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select("e.id AS employee_id, e.name AS name, e.surname AS surname, e.area AS area, COUNT(l.id) AS loan_count").
		Joins("JOIN "+models.EmployeeTable+" e ON e.id = l.employee_id").
		Group("e.id, e.name, e.surname, e.area").
		Order("loan_count DESC, e.id ASC").
		Limit(topN(n)).
		Scan(&out).Error
	if err != nil {
		return nil, storage("most active employees", err)
	}
	return out, nil
}

// OverdueReport lists overdue loans with the names a person needs to chase
// them, oldest due date first.
func (r *Repo) OverdueReport(ctx context.Context) ([]OverdueRow, error) {
	now := r.now()
	out := []OverdueRow{}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var loans []models.Loan
		if err := tx.Where("status = ? AND due_at < ?", string(models.LoanActive), now).
			Order("due_at ASC").Order("id ASC").
			Find(&loans).Error; err != nil {
			return err
		}
		if len(loans) == 0 {
			return nil
		}

		empIDs := make([]uint, 0, len(loans))
		toolIDs := make([]uint, 0, len(loans))
		for _, l := range loans {
			empIDs = append(empIDs, l.EmployeeID)
			toolIDs = append(toolIDs, l.ToolID)
		}
		var emps []models.Employee
		if err := tx.Where("id IN ?", empIDs).Find(&emps).Error; err != nil {
			return err
		}
		var tools []models.Tool
		if err := tx.Where("id IN ?", toolIDs).Find(&tools).Error; err != nil {
			return err
		}
		empByID := make(map[uint]models.Employee, len(emps))
		for _, e := range emps {
			empByID[e.ID] = e
		}
		toolByID := make(map[uint]models.Tool, len(tools))
		for _, t := range tools {
			toolByID[t.ID] = t
		}

		for _, l := range loans {
			row := OverdueRow{
				LoanID:      l.ID,
				EmployeeID:  l.EmployeeID,
				ToolID:      l.ToolID,
				LoanedAt:    l.LoanedAt,
				DueAt:       l.DueAt,
				DaysOverdue: int(now.Sub(l.DueAt) / (24 * time.Hour)),
			}
			if e, ok := empByID[l.EmployeeID]; ok {
				row.EmployeeName = e.FullName()
			}
			if t, ok := toolByID[l.ToolID]; ok {
				row.ToolName = t.Name
				row.ToolCode = t.Code
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, storage("overdue report", err)
	}
	return out, nil
}

func (r *Repo) GeneralStats(ctx context.Context) (*Stats, error) {
	now := r.now()
	s := &Stats{LoansByStatus: map[string]int64{
		string(models.LoanActive):    0,
		string(models.LoanReturned):  0,
		string(models.LoanCancelled): 0,
	}}
	err := r.tx(ctx, func(tx *gorm.DB) error {
		counts := []struct {
			model any
			where string
			args  []any
			dst   *int64
		}{
			{&models.Employee{}, "", nil, &s.Employees},
			{&models.Employee{}, "active = ?", []any{true}, &s.ActiveEmployees},
			{&models.Category{}, "", nil, &s.Categories},
			{&models.Category{}, "active = ?", []any{true}, &s.ActiveCategories},
			{&models.Tool{}, "", nil, &s.Tools},
			{&models.Tool{}, "active = ?", []any{true}, &s.ActiveTools},
			{&models.Loan{}, "", nil, &s.Loans},
			{&models.Loan{}, "status = ? AND due_at < ?", []any{string(models.LoanActive), now}, &s.OverdueLoans},
		}
		for _, c := range counts {
			q := tx.Model(c.model)
			if c.where != "" {
				q = q.Where(c.where, c.args...)
			}
			if err := q.Count(c.dst).Error; err != nil {
				return err
			}
		}
		s.InactiveEmployees = s.Employees - s.ActiveEmployees
		s.InactiveTools = s.Tools - s.ActiveTools

		if err := tx.Model(&models.Tool{}).
			Select("COALESCE(SUM(available_quantity), 0)").
			Scan(&s.AvailableUnits).Error; err != nil {
			return err
		}

		var byStatus []statusCount
		if err := tx.Model(&models.Loan{}).
			Select("status, COUNT(*) AS n").
			Group("status").
			Scan(&byStatus).Error; err != nil {
			return err
		}
		for _, b := range byStatus {
			s.LoansByStatus[b.Status] = b.N
		}
		return nil
	})
	if err != nil {
		return nil, storage("general stats", err)
	}
	return s, nil
}

// PeriodSummary reports loans opened in [from, to).
func (r *Repo) PeriodSummary(ctx context.Context, from, to time.Time) (*PeriodSummary, error) {
	if !to.After(from) {
		return nil, invalid("to", "must be after from")
	}
	loans, err := r.ListLoans(ctx, LoanFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	p := &PeriodSummary{From: from.UTC(), To: to.UTC(), Total: len(loans), Loans: loans}
	for _, l := range loans {
		switch l.Status {
		case models.LoanActive:
			p.Active++
		case models.LoanReturned:
			p.Returned++
		case models.LoanCancelled:
			p.Cancelled++
		}
	}
	return p, nil
}
