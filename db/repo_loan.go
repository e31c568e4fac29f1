package db

import (
	"context"
	"time"

	"Gin_postgres_redis_tool_ledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultLoanPeriod is added to loaned_at when no due date is given.
const DefaultLoanPeriod = 24 * time.Hour

type CreateLoanInput struct {
	EmployeeID uint
	ToolID     uint
	LoanedAt   *time.Time
	DueAt      *time.Time
	Notes      *string
}

// LoanPatch cannot reach status or stock; use ReturnLoan / CancelLoan.
type LoanPatch struct {
	Notes    *string
	LoanedAt *time.Time
	DueAt    *time.Time
}

type LoanFilter struct {
	Status      *models.LoanStatus
	EmployeeID  *uint
	ToolID      *uint
	OverdueOnly bool
	From        *time.Time // loaned_at >= From
	To          *time.Time // loaned_at < To
	Page
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// CreateLoan hands one unit of a tool to an employee. The tool row is locked,
// checked (exists, active, in stock) and decremented in the same transaction
// that inserts the loan.
func (r *Repo) CreateLoan(ctx context.Context, in CreateLoanInput) (*models.Loan, error) {
	var loan *models.Loan
	err := r.tx(ctx, func(tx *gorm.DB) error {
		var t models.Tool
		if err := tx.Clauses(forUpdate).First(&t, in.ToolID).Error; err != nil {
			if isNotFound(err) {
				return ErrToolNotFound
			}
			return err
		}
		if !t.Active {
			return ErrToolInactive
		}
		if t.AvailableQuantity <= 0 {
			return ErrToolOutOfStock
		}

		var n int64
		if err := tx.Model(&models.Employee{}).Where("id = ?", in.EmployeeID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrEmployeeNotFound
		}

		res := tx.Model(&models.Tool{}).
			Where("id = ? AND available_quantity > 0", t.ID).
			Update("available_quantity", gorm.Expr("available_quantity - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrToolOutOfStock
		}

		loanedAt := r.now()
		if in.LoanedAt != nil {
			loanedAt = in.LoanedAt.UTC()
		}
		dueAt := loanedAt.Add(DefaultLoanPeriod)
		if in.DueAt != nil {
			dueAt = in.DueAt.UTC()
		}
		if dueAt.Before(loanedAt) {
			return ErrInvalidDueDate
		}

		l := &models.Loan{
			EmployeeID: in.EmployeeID,
			ToolID:     t.ID,
			LoanedAt:   loanedAt,
			DueAt:      dueAt,
			Notes:      trimPtr(in.Notes),
			Status:     models.LoanActive,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, storage("create loan", err)
	}
	return loan, nil
}

// ReturnLoan closes an active loan and gives the unit back to stock.
// returnedAt defaults to now.
func (r *Repo) ReturnLoan(ctx context.Context, id uint, returnedAt *time.Time) (*models.Loan, error) {
	at := r.now()
	if returnedAt != nil {
		at = returnedAt.UTC()
	}
	return r.closeLoan(ctx, id, models.LoanReturned, &at)
}

// CancelLoan voids an active loan (data-entry correction). Stock is restored
// exactly as for a return; returned_at stays NULL.
func (r *Repo) CancelLoan(ctx context.Context, id uint) (*models.Loan, error) {
	return r.closeLoan(ctx, id, models.LoanCancelled, nil)
}

func (r *Repo) closeLoan(ctx context.Context, id uint, to models.LoanStatus, returnedAt *time.Time) (*models.Loan, error) {
	var l models.Loan
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&l, id).Error; err != nil {
			if isNotFound(err) {
				return ErrLoanNotFound
			}
			return err
		}
		if l.Status.Terminal() {
			return ErrLoanNotActive
		}
		if returnedAt != nil && returnedAt.Before(l.LoanedAt) {
			return ErrInvalidReturn
		}

		updates := map[string]any{"status": string(to)}
		if returnedAt != nil {
			updates["returned_at"] = *returnedAt
		}
		// the status guard also rejects any value that is not active
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status = ?", id, string(models.LoanActive)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLoanNotActive
		}

		// inactive tools still get their stock back
		res = tx.Model(&models.Tool{}).
			Where("id = ?", l.ToolID).
			Update("available_quantity", gorm.Expr("available_quantity + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			r.log.WarnContext(ctx, "tool missing on loan close, stock not restored",
				"loan_id", l.ID, "tool_id", l.ToolID, "status", to)
		}
		return tx.First(&l, id).Error
	})
	if err != nil {
		return nil, storage(string(to)+" loan", err)
	}
	return &l, nil
}

// UpdateLoan patches notes and dates only.
func (r *Repo) UpdateLoan(ctx context.Context, id uint, p LoanPatch) (*models.Loan, error) {
	var l models.Loan
	err := r.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&l, id).Error; err != nil {
			if isNotFound(err) {
				return ErrLoanNotFound
			}
			return err
		}
		updates := map[string]any{}
		loanedAt, dueAt := l.LoanedAt, l.DueAt
		if p.LoanedAt != nil {
			loanedAt = p.LoanedAt.UTC()
			updates["loaned_at"] = loanedAt
		}
		if p.DueAt != nil {
			dueAt = p.DueAt.UTC()
			updates["due_at"] = dueAt
		}
		if dueAt.Before(loanedAt) {
			return ErrInvalidDueDate
		}
		if p.Notes != nil {
			updates["notes"] = trimPtr(p.Notes)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Loan{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&l, id).Error
	})
	if err != nil {
		return nil, storage("update loan", err)
	}
	return &l, nil
}

func (r *Repo) GetLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, storage("get loan", err)
	}
	return &l, nil
}

// ListLoans is a single SELECT, newest first; OverdueOnly switches to due date
// ascending.
func (r *Repo) ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{})
	if f.Status != nil {
		if !f.Status.Valid() {
			return nil, invalid("status", "unknown loan status "+string(*f.Status))
		}
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.ToolID != nil {
		q = q.Where("tool_id = ?", *f.ToolID)
	}
	if f.From != nil {
		q = q.Where("loaned_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("loaned_at < ?", f.To.UTC())
	}
	if f.OverdueOnly {
		q = q.Where("status = ? AND due_at < ?", string(models.LoanActive), r.now()).
			Order("due_at ASC").Order("id ASC")
	} else {
		q = q.Order("loaned_at DESC").Order("id DESC")
	}
	out := []models.Loan{}
	if err := f.Page.apply(q).Find(&out).Error; err != nil {
		return nil, storage("list loans", err)
	}
	return out, nil
}

func (r *Repo) ListActiveLoans(ctx context.Context) ([]models.Loan, error) {
	s := models.LoanActive
	return r.ListLoans(ctx, LoanFilter{Status: &s})
}

func (r *Repo) ListLoansByEmployee(ctx context.Context, employeeID uint) ([]models.Loan, error) {
	return r.ListLoans(ctx, LoanFilter{EmployeeID: &employeeID})
}

func (r *Repo) ListLoansByTool(ctx context.Context, toolID uint) ([]models.Loan, error) {
	return r.ListLoans(ctx, LoanFilter{ToolID: &toolID})
}

// ListOverdueLoans returns active loans past their due date, oldest due first.
func (r *Repo) ListOverdueLoans(ctx context.Context) ([]models.Loan, error) {
	return r.ListLoans(ctx, LoanFilter{OverdueOnly: true})
}
