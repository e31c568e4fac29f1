package models

import "time"

const LoanTable = "loans"

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanReturned  LoanStatus = "returned"
	LoanCancelled LoanStatus = "cancelled"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanReturned, LoanCancelled:
		return true
	}
	return false
}

// Terminal states never transition again.
func (s LoanStatus) Terminal() bool { return s == LoanReturned || s == LoanCancelled }

type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EmployeeID uint       `gorm:"index;not null" json:"employeeId"`
	ToolID     uint       `gorm:"index;not null" json:"toolId"`
	LoanedAt   time.Time  `gorm:"index;not null" json:"loanedAt"`
	DueAt      time.Time  `gorm:"index:idx_loans_status_due,priority:2;not null" json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Notes      *string    `gorm:"type:text" json:"notes,omitempty"`
	Status     LoanStatus `gorm:"size:20;not null;index:idx_loans_status_due,priority:1" json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// Overdue is evaluated against the caller's clock, not stored.
func (l Loan) Overdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueAt.Before(now)
}
