// Package events publishes loan lifecycle events after the ledger commits.
// Delivery is best-effort: a broker outage never fails a loan operation.
package events

import (
	"context"
	"time"

	"Gin_postgres_redis_tool_ledger/models"
)

const (
	LoanCreated   = "loan.created"
	LoanReturned  = "loan.returned"
	LoanCancelled = "loan.cancelled"
)

type Event struct {
	Type       string            `json:"type"`
	LoanID     uint              `json:"loan_id"`
	EmployeeID uint              `json:"employee_id"`
	ToolID     uint              `json:"tool_id"`
	Status     models.LoanStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func NewLoanEvent(typ string, l *models.Loan, at time.Time) Event {
	return Event{
		Type:       typ,
		LoanID:     l.ID,
		EmployeeID: l.EmployeeID,
		ToolID:     l.ToolID,
		Status:     l.Status,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
